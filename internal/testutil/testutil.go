// Package testutil provides shared test helpers for building raw and
// normalized topic trees and temporary data directories.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkimber/ka-lite/internal/models"
	"github.com/pkimber/ka-lite/internal/storage"
)

// TestStore creates a temporary data directory with a storage.Provider.
func TestStore(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dataDir := t.TempDir()
	store, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	return dataDir, store
}

// TestExercises creates a temporary exercises directory containing an
// asset file for each given slug.
func TestExercises(t *testing.T, slugs ...string) *storage.ExerciseDir {
	t.Helper()
	dir := t.TempDir()
	for _, slug := range slugs {
		if err := os.WriteFile(filepath.Join(dir, slug+".html"), []byte("<html/>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	checker, err := storage.NewExerciseDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return checker
}

// RawRoot builds a raw root topic node as the upstream API ships it.
func RawRoot(children ...map[string]any) map[string]any {
	return map[string]any{
		"kind":      "Topic",
		"node_slug": "root",
		"id":        "root",
		"title":     "The Root of All Knowledge",
		"children":  toAny(children),
	}
}

// RawTopic builds a raw topic node.
func RawTopic(slug string, children ...map[string]any) map[string]any {
	return map[string]any{
		"kind":      "Topic",
		"node_slug": slug,
		"id":        slug,
		"title":     "Topic " + slug,
		"children":  toAny(children),
	}
}

// RawVideo builds a raw video node with complete download formats.
func RawVideo(slug, youtubeID string) map[string]any {
	return map[string]any{
		"kind":        "Video",
		"readable_id": slug,
		"id":          youtubeID,
		"title":       "Video " + slug,
		"youtube_id":  youtubeID,
		"duration":    float64(120),
		"download_urls": map[string]any{
			"mp4": "http://cdn.example.org/" + slug + ".mp4",
			"png": "http://cdn.example.org/" + slug + ".png",
		},
	}
}

// RawExercise builds a raw exercise node.
func RawExercise(name string) map[string]any {
	return map[string]any{
		"kind":         "Exercise",
		"name":         name,
		"id":           name,
		"display_name": "Exercise " + name,
		"live":         true,
	}
}

func toAny(children []map[string]any) []any {
	out := make([]any, len(children))
	for i, c := range children {
		out[i] = c
	}
	return out
}

// Topic builds a normalized topic node with its contains set computed
// from the given children, the way the normalizer would.
func Topic(slug string, children ...*models.Node) *models.Node {
	n := &models.Node{
		Kind:  models.KindTopic,
		Slug:  slug,
		ID:    slug,
		Path:  "/" + slug + "/",
		Title: "Topic " + slug,
	}
	kinds := make(map[models.Kind]bool)
	for _, child := range children {
		n.Children = append(n.Children, child)
		kinds[child.Kind] = true
		for _, k := range child.Contains {
			kinds[k] = true
		}
	}
	n.SetContains(kinds)
	return n
}

// Video builds a normalized video node.
func Video(slug string) *models.Node {
	return &models.Node{
		Kind:      models.KindVideo,
		Slug:      slug,
		ID:        slug,
		Path:      "/v/" + slug + "/",
		Title:     "Video " + slug,
		YoutubeID: "yt-" + slug,
	}
}

// Exercise builds a normalized exercise node.
func Exercise(slug string) *models.Node {
	return &models.Node{
		Kind:  models.KindExercise,
		Slug:  slug,
		ID:    slug,
		Path:  "/e/" + slug + "/",
		Title: "Exercise " + slug,
		Live:  true,
	}
}
