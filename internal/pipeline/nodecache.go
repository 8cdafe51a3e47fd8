package pipeline

import (
	"fmt"
	"strings"

	"github.com/pkimber/ka-lite/internal/apperr"
	"github.com/pkimber/ka-lite/internal/models"
)

// BuildNodeCache flattens the final tree into the kind → slug → summary
// index. A slug arriving twice is only legal for kinds declared multipath,
// and every arrival must agree field-for-field with the first; anything
// else indicates an upstream data-shape change and aborts the run.
func BuildNodeCache(tree *models.Node) (models.NodeCache, error) {
	cache := make(models.NodeCache)
	if err := cacheNode(cache, tree); err != nil {
		return nil, err
	}
	return cache, nil
}

func cacheNode(cache models.NodeCache, node *models.Node) error {
	byKind := cache[node.Kind]
	if byKind == nil {
		byKind = make(map[string]*models.Summary)
		cache[node.Kind] = byKind
	}

	if stored, ok := byKind[node.Slug]; ok {
		if !models.MultipathKinds[node.Kind] {
			return fmt.Errorf("duplicate slug %q for non-multipath kind %s: %w",
				node.Slug, node.Kind, apperr.ErrIntegrity)
		}
		if diff := stored.MustAgree(node); len(diff) > 0 {
			return fmt.Errorf("multipath node %s/%s diverges in fields [%s]: %w",
				node.Kind, node.Slug, strings.Join(diff, " "), apperr.ErrIntegrity)
		}
		// Same node, found at another path.
		stored.Paths = append(stored.Paths, node.Path)
	} else {
		byKind[node.Slug] = models.NewSummary(node)
	}

	for _, child := range node.Children {
		if err := cacheNode(cache, child); err != nil {
			return err
		}
	}
	return nil
}
