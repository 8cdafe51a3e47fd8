package pipeline

import (
	"log/slog"

	"github.com/pkimber/ka-lite/internal/models"
)

// PruneExercises removes child exercises that have no local content and
// cascades: topics emptied by the removal are dropped, and topics whose
// remaining subtree carries no exercises lose Exercise from their contains
// set. Returns the slugs of the removed exercises.
func PruneExercises(node *models.Node, content ContentChecker, logger *slog.Logger) []string {
	// Leaves end the recursion.
	if node.Kind != models.KindTopic {
		return nil
	}

	var removed []string
	var toDelete []int

	for i, child := range node.Children {
		switch {
		case child.Kind == models.KindExercise:
			if !content.HasExercise(child.Slug) {
				toDelete = append(toDelete, i)
				removed = append(removed, child.Slug)
			}
		case len(child.Children) > 0:
			removed = append(removed, PruneExercises(child, content, logger)...)
			if len(child.Children) == 0 {
				// Dead-end cascade: all of its children were removed.
				logger.Debug("prune: removing now-childless topic", slog.String("slug", child.Slug))
				toDelete = append(toDelete, i)
			} else if !subtreeHasExercise(child) {
				// Truthful downgrade: never claim content that no longer
				// exists.
				child.Contains = withoutKind(child.Contains, models.KindExercise)
			}
		}
	}

	for i := len(toDelete) - 1; i >= 0; i-- {
		idx := toDelete[i]
		logger.Debug("prune: deleting exercise without content", slog.String("slug", node.Children[idx].Slug))
		node.Children = append(node.Children[:idx], node.Children[idx+1:]...)
	}
	return removed
}

// PruneChildlessTopics removes topics left with no children. This runs
// after exercise pruning because the upstream feed also ships dead-end
// topics that were never exercise-driven.
func PruneChildlessTopics(node *models.Node, logger *slog.Logger) {
	var toDelete []int
	for i, child := range node.Children {
		if child.Kind != models.KindTopic {
			continue
		}
		PruneChildlessTopics(child, logger)
		if len(child.Children) == 0 {
			toDelete = append(toDelete, i)
			logger.Debug("prune: removing upstream childless topic", slog.String("slug", child.Slug))
		}
	}
	for i := len(toDelete) - 1; i >= 0; i-- {
		idx := toDelete[i]
		node.Children = append(node.Children[:idx], node.Children[idx+1:]...)
	}
}

// subtreeHasExercise reports whether any remaining child is an exercise or
// claims one among its descendants.
func subtreeHasExercise(topic *models.Node) bool {
	for _, ch := range topic.Children {
		if ch.Kind == models.KindExercise || ch.ContainsKind(models.KindExercise) {
			return true
		}
	}
	return false
}

func withoutKind(kinds []models.Kind, drop models.Kind) []models.Kind {
	out := kinds[:0]
	for _, k := range kinds {
		if k != drop {
			out = append(out, k)
		}
	}
	return out
}
