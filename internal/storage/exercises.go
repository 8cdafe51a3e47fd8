package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// ExerciseDir answers "does local content exist for this exercise" by
// probing for the per-exercise asset file <dir>/<slug>.html.
type ExerciseDir struct {
	dir string
}

// NewExerciseDir creates a checker over the given exercises directory.
func NewExerciseDir(dir string) (*ExerciseDir, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve exercises dir: %w", err)
	}
	return &ExerciseDir{dir: abs}, nil
}

// HasExercise reports whether the asset file for slug exists.
func (e *ExerciseDir) HasExercise(slug string) bool {
	info, err := os.Stat(filepath.Join(e.dir, slug+".html"))
	return err == nil && info.Mode().IsRegular()
}
