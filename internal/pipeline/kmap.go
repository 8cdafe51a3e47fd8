package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/pkimber/ka-lite/internal/apperr"
	"github.com/pkimber/ka-lite/internal/models"
	"github.com/pkimber/ka-lite/internal/storage"
)

// ReconcileKnowledgeMap filters the external map dataset down to topics
// that survived pruning, cascades membership flags back into the tree and
// node cache, resolves icons, and drops polylines touching removed points.
// Returns the flattened Exercise leaves per surviving map topic.
//
// The scrub and extract stages are distinct on purpose: whether a topic has
// any Exercise leaves left is only knowable after flattening, so emptiness
// removals happen in the second stage even when the topic passed the first.
func ReconcileKnowledgeMap(ctx context.Context, km *models.KnowledgeMap, tree *models.Node, cache models.NodeCache, icons IconFetcher, store storage.Provider, forceIcons bool, logger *slog.Logger) map[string][]*models.Node {
	scrubKnowledgeMap(km, tree, cache, logger)

	topicExercises := make(map[string][]*models.Node)
	extractKnowledgeMap(km, tree, cache, topicExercises, logger)

	resolveIcons(ctx, km, icons, store, forceIcons, logger)
	cleanOrphanedPolylines(km, logger)
	return topicExercises
}

// scrubKnowledgeMap drops map topics we do not keep in the tree or node
// cache: unknown slugs, childless topics, and topics without exercises.
func scrubKnowledgeMap(km *models.KnowledgeMap, tree *models.Node, cache models.NodeCache, logger *slog.Logger) {
	for _, slug := range sortedSlugs(km.Topics) {
		summary, _ := cache.Get(models.KindTopic, slug)
		var treeNode *models.Node
		if summary != nil {
			treeNode = findTopicByPath(tree, summary.Node.Path)
		}

		switch {
		case summary == nil || treeNode == nil:
			logger.Debug("kmap: removing unrecognized topic", slog.String("slug", slug))
		case len(treeNode.Children) == 0:
			logger.Debug("kmap: removing topic with no children", slog.String("slug", slug))
		case !treeNode.ContainsKind(models.KindExercise):
			logger.Debug("kmap: removing topic with no exercises", slog.String("slug", slug))
		default:
			continue
		}

		delete(km.Topics, slug)
		if summary != nil {
			summary.InKnowledgeMap = false
		}
		if treeNode != nil {
			treeNode.InKnowledgeMap = false
		}
	}
}

// extractKnowledgeMap walks topic nodes depth-first, reconciling each
// topic's membership flag with the scrubbed map and collecting the
// flattened Exercise leaves of every member.
func extractKnowledgeMap(km *models.KnowledgeMap, node *models.Node, cache models.NodeCache, topicExercises map[string][]*models.Node, logger *slog.Logger) {
	if node.InKnowledgeMap {
		if _, ok := km.Topics[node.Slug]; !ok {
			// Flagged but absent from the scrubbed map: the flag loses.
			logger.Debug("kmap: not in knowledge map", slog.String("slug", node.Slug))
			setMembership(node, cache, false)
		} else {
			leaves := exerciseLeaves(node)
			if len(leaves) == 0 {
				// Emptiness only shows up after flattening, so this is a
				// second removal stage distinct from the scrub.
				logger.Warn("kmap: removing topic with no exercise leaves", slog.String("slug", node.Slug))
				delete(km.Topics, node.Slug)
				setMembership(node, cache, false)
			} else {
				topicExercises[node.Slug] = leaves
			}
		}
	} else if _, ok := km.Topics[node.Slug]; ok {
		logger.Warn("kmap: topic does not belong in map", slog.String("slug", node.Slug))
		delete(km.Topics, node.Slug)
	}

	for _, child := range node.Children {
		if child.Kind == models.KindTopic {
			extractKnowledgeMap(km, child, cache, topicExercises, logger)
		}
	}
}

// resolveIcons derives each surviving topic's icon path and downloads the
// icon unless it is already on disk. Failures degrade: not-found falls back
// to the default icon, anything else is logged and skipped.
func resolveIcons(ctx context.Context, km *models.KnowledgeMap, icons IconFetcher, store storage.Provider, force bool, logger *slog.Logger) {
	for _, slug := range sortedSlugs(km.Topics) {
		topic := km.Topics[slug]
		topic.IconURL = iconURL(topic.ID)

		localPath := models.IconDir + "/" + topic.ID + models.IconExtension
		if store.Exists(localPath) && !force {
			continue
		}

		data, err := icons.FetchIcon(ctx, topic.IconURL)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			logger.Debug("kmap: icon not found, using default", slog.String("slug", slug))
			topic.IconURL = iconURL(models.DefaultIconName)
		case err != nil:
			logger.Warn("kmap: icon download failed",
				slog.String("slug", slug), slog.String("error", err.Error()))
		default:
			if err := store.Write(localPath, data); err != nil {
				logger.Warn("kmap: icon write failed",
					slog.String("slug", slug), slog.String("error", err.Error()))
			}
		}
	}
}

// cleanOrphanedPolylines drops any polyline containing a point whose
// coordinates no longer match a surviving topic. A partially valid
// polyline cannot be meaningfully drawn, so removal is wholesale.
func cleanOrphanedPolylines(km *models.KnowledgeMap, logger *slog.Logger) {
	points := make(map[models.Point]bool, len(km.Topics))
	for _, t := range km.Topics {
		points[models.Point{X: t.X, Y: t.Y}] = true
	}

	var toDelete []int
	for i, line := range km.Polylines {
		for _, pt := range line.Path {
			if !points[pt] {
				toDelete = append(toDelete, i)
				break
			}
		}
	}
	logger.Debug("kmap: removing orphaned polylines",
		slog.Int("removed", len(toDelete)), slog.Int("total", len(km.Polylines)))
	for i := len(toDelete) - 1; i >= 0; i-- {
		idx := toDelete[i]
		km.Polylines = append(km.Polylines[:idx], km.Polylines[idx+1:]...)
	}
}

func iconURL(id string) string {
	return "/" + models.IconDir + "/" + id + models.IconExtension
}

// setMembership flips the in_knowledge_map flag on the tree node and its
// node-cache summary together, so the artifacts cannot disagree.
func setMembership(node *models.Node, cache models.NodeCache, member bool) {
	node.InKnowledgeMap = member
	if summary, ok := cache.Get(models.KindTopic, node.Slug); ok {
		summary.InKnowledgeMap = member
	}
}

// exerciseLeaves flattens the Exercise leaves of a subtree in
// depth-first order.
func exerciseLeaves(node *models.Node) []*models.Node {
	var out []*models.Node
	for _, child := range node.Children {
		if child.Kind == models.KindExercise {
			out = append(out, child)
			continue
		}
		out = append(out, exerciseLeaves(child)...)
	}
	return out
}

// findTopicByPath locates the topic node with the given materialized path.
func findTopicByPath(node *models.Node, path string) *models.Node {
	if node.Kind != models.KindTopic {
		return nil
	}
	if node.Path == path {
		return node
	}
	for _, child := range node.Children {
		if found := findTopicByPath(child, path); found != nil {
			return found
		}
	}
	return nil
}

func sortedSlugs(topics map[string]*models.MapTopic) []string {
	slugs := make([]string, 0, len(topics))
	for s := range topics {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs
}
