// Package pipeline derives the local Khan dataset from the upstream topic
// tree: a normalized/pruned tree, a flat node cache, a reconciled knowledge
// map, and per-topic exercise lists. Passes run in a fixed order; each one
// depends on invariants established by its predecessor.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkimber/ka-lite/internal/models"
	"github.com/pkimber/ka-lite/internal/storage"
)

// Fetcher retrieves upstream Khan data. Implementations may serve from an
// on-disk cache transparently.
type Fetcher interface {
	TopicTree(ctx context.Context) (map[string]any, error)
	ExerciseVideos(ctx context.Context, name string) ([]string, error)
	MapLayout(ctx context.Context) (*models.KnowledgeMap, error)
}

// ContentChecker reports whether local content exists for an exercise.
type ContentChecker interface {
	HasExercise(slug string) bool
}

// IconFetcher downloads icon bytes by site-relative URL, returning an error
// wrapping apperr.ErrNotFound when the icon does not exist upstream.
type IconFetcher interface {
	FetchIcon(ctx context.Context, iconURL string) ([]byte, error)
}

// Options are the two user-facing toggles of the pipeline.
type Options struct {
	// KeepNewExercises skips the exercise-pruning pass, keeping exercises
	// that have no local content yet.
	KeepNewExercises bool
	// ForceIcons re-downloads knowledge-map icons even when present on disk.
	ForceIcons bool
}

// Result bundles the derived artifacts of one pipeline run.
type Result struct {
	Tree           *models.Node
	Cache          models.NodeCache
	Map            *models.KnowledgeMap
	TopicExercises map[string][]*models.Node
	YoutubeToSlug  map[string]string
	RemovedSlugs   []string
}

// Pipeline wires the passes to their collaborators.
type Pipeline struct {
	fetch   Fetcher
	content ContentChecker
	icons   IconFetcher
	store   storage.Provider
	logger  *slog.Logger
	opts    Options
}

// New creates a Pipeline. store receives the persisted artifacts.
func New(fetch Fetcher, content ContentChecker, icons IconFetcher, store storage.Provider, logger *slog.Logger, opts Options) *Pipeline {
	return &Pipeline{
		fetch:   fetch,
		content: content,
		icons:   icons,
		store:   store,
		logger:  logger,
		opts:    opts,
	}
}

// Run executes the full pass sequence and persists the artifacts. The order
// is fixed: normalize → prune exercises → annotate related → prune childless
// topics → build node cache → youtube remap → reconcile knowledge map →
// validate. Data-shape anomalies are logged and worked around; node-cache
// consistency violations abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	raw, err := p.fetch.TopicTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: fetch topic tree: %w", err)
	}

	tree, related, err := Normalize(ctx, raw, p.fetch, p.logger)
	if err != nil {
		return nil, fmt.Errorf("pipeline: normalize: %w", err)
	}

	var removed []string
	if !p.opts.KeepNewExercises {
		removed = PruneExercises(tree, p.content, p.logger)
		// Null out index entries for pruned exercises so videos resolve
		// to nothing instead of a dangling stub.
		deleted := make(map[string]bool, len(removed))
		for _, slug := range removed {
			deleted[slug] = true
		}
		for vid, ex := range related {
			if ex != nil && deleted[ex.Slug] {
				related[vid] = nil
			}
		}
	}

	AnnotateRelated(tree, related)
	PruneChildlessTopics(tree, p.logger)

	cache, err := BuildNodeCache(tree)
	if err != nil {
		return nil, fmt.Errorf("pipeline: build node cache: %w", err)
	}

	yt, err := BuildYoutubeMap(cache)
	if err != nil {
		return nil, fmt.Errorf("pipeline: build youtube map: %w", err)
	}
	if err := storage.WriteJSON(p.store, models.VideoRemapFile, yt); err != nil {
		return nil, fmt.Errorf("pipeline: write youtube map: %w", err)
	}

	km, err := p.fetch.MapLayout(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: fetch map layout: %w", err)
	}
	topicExercises := ReconcileKnowledgeMap(ctx, km, tree, cache, p.icons, p.store, p.opts.ForceIcons, p.logger)

	if err := storage.WriteJSON(p.store, models.MapLayoutFile, km); err != nil {
		return nil, fmt.Errorf("pipeline: write map layout: %w", err)
	}
	if err := p.writeTopicData(topicExercises); err != nil {
		return nil, err
	}
	// The tree and node cache go to disk only after reconciliation, so the
	// persisted membership flags agree with maplayout.json.
	if err := storage.WriteJSON(p.store, models.TopicsFile, tree); err != nil {
		return nil, fmt.Errorf("pipeline: write topic tree: %w", err)
	}
	if err := storage.WriteJSON(p.store, models.NodeCacheFile, cache); err != nil {
		return nil, fmt.Errorf("pipeline: write node cache: %w", err)
	}

	for _, finding := range Validate(tree, cache, km, p.store) {
		p.logger.Warn("validate: "+finding.Check, slog.String("detail", finding.Detail))
	}

	return &Result{
		Tree:           tree,
		Cache:          cache,
		Map:            km,
		TopicExercises: topicExercises,
		YoutubeToSlug:  yt,
		RemovedSlugs:   removed,
	}, nil
}

// writeTopicData obliterates the topicdata directory and rewrites one
// exercise-leaf file per surviving knowledge-map topic.
func (p *Pipeline) writeTopicData(topicExercises map[string][]*models.Node) error {
	if err := p.store.RemoveAll(models.TopicDataDir); err != nil {
		return fmt.Errorf("pipeline: clear topicdata: %w", err)
	}
	for slug, leaves := range topicExercises {
		path := models.TopicDataDir + "/" + slug + ".json"
		if err := storage.WriteJSON(p.store, path, leaves); err != nil {
			return fmt.Errorf("pipeline: write topicdata %s: %w", slug, err)
		}
	}
	return nil
}
