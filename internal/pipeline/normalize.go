package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkimber/ka-lite/internal/models"
)

// normalizer carries the traversal state of the normalization pass. The
// related-exercise index is an explicit accumulator rather than a captured
// closure variable so the data flow stays visible.
type normalizer struct {
	ctx     context.Context
	fetch   Fetcher
	logger  *slog.Logger
	related models.RelatedExerciseIndex
}

// Normalize converts the raw heterogeneous tree into uniform typed nodes:
// whitelisted attributes only, unified slug/id, materialized paths, uniform
// titles, per-topic descendant-kind sets, and the raw related-exercise
// cross-index. Missing fields are anomalies, not failures; only a malformed
// root aborts.
func Normalize(ctx context.Context, raw map[string]any, fetch Fetcher, logger *slog.Logger) (*models.Node, models.RelatedExerciseIndex, error) {
	rootKind := models.Kind(rawString(raw, "kind"))
	if _, ok := models.AttributeWhitelist[rootKind]; !ok {
		return nil, nil, fmt.Errorf("malformed root node: unknown kind %q", rootKind)
	}

	n := &normalizer{
		ctx:     ctx,
		fetch:   fetch,
		logger:  logger,
		related: make(models.RelatedExerciseIndex),
	}
	root, _ := n.walk(raw, "")
	return root, n.related, nil
}

// walk normalizes one raw node and its subtree, returning the typed node
// and the set of kinds found in the subtree (itself included).
func (n *normalizer) walk(raw map[string]any, parentPath string) (*models.Node, map[models.Kind]bool) {
	kind := models.Kind(rawString(raw, "kind"))

	// The raw identifier is consulted as the slug fallback, even for kinds
	// whose whitelist drops it.
	rawID := rawString(raw, "id")
	filterWhitelist(raw, kind)

	slug := rawString(raw, models.SlugField[kind])
	if slug == "" {
		n.logger.Warn("normalize: missing slug field",
			slog.String("kind", string(kind)),
			slog.String("field", models.SlugField[kind]),
			slog.String("id", rawID))
		slug = rawID
	}
	if slug == "root" {
		slug = ""
	}

	node := &models.Node{
		Kind:        kind,
		Slug:        slug,
		ID:          slug, // historical alias unification, no separate id
		Path:        parentPath + models.PathSegment[kind] + slug + "/",
		Description: rawString(raw, "description"),
	}
	node.Title = rawString(raw, models.TitleField[kind])
	if node.Title == "" {
		n.logger.Warn("normalize: missing title field",
			slog.String("kind", string(kind)),
			slog.String("slug", slug))
		node.Title = slug
	}

	switch kind {
	case models.KindTopic:
		node.Hide = rawBool(raw, "hide")
		node.TopicPageURL = rawString(raw, "topic_page_url")
		node.ExtendedSlug = rawString(raw, "extended_slug")
		node.InKnowledgeMap = rawBool(raw, "in_knowledge_map")
		node.XPos = rawFloat(raw, "x_pos")
		node.YPos = rawFloat(raw, "y_pos")
		node.IconSrc = rawString(raw, "icon_src")
	case models.KindVideo:
		node.Duration = int(rawFloat(raw, "duration"))
		node.Keywords = rawKeywords(raw, "keywords")
		node.YoutubeID = rawString(raw, "youtube_id")
		node.DownloadURLs = rawStringMap(raw, "download_urls")
	case models.KindExercise:
		node.Live = rawBool(raw, "live")
		node.SecondsPerFastProblem = rawFloat(raw, "seconds_per_fast_problem")
		node.Prerequisites = rawStringSlice(raw, "prerequisites")
		node.HPosition = rawFloat(raw, "h_position")
		node.VPosition = rawFloat(raw, "v_position")
		n.indexExercise(node)
	}

	// descendants aggregates the kinds found below this node; the node's
	// own kind is added only for the set returned to the parent, so a
	// topic's contains never claims the topic itself.
	descendants := make(map[models.Kind]bool)
	for _, rawChild := range rawChildren(raw) {
		if !n.keepChild(rawChild) {
			continue
		}
		child, childKinds := n.walk(rawChild, node.Path)
		node.Children = append(node.Children, child)
		for k := range childKinds {
			descendants[k] = true
		}
	}

	if kind == models.KindTopic {
		node.SetContains(descendants)
	}

	kinds := map[models.Kind]bool{kind: true}
	for k := range descendants {
		kinds[k] = true
	}
	return node, kinds
}

// indexExercise performs the side retrieval of related videos and records
// both directions of the cross-reference.
func (n *normalizer) indexExercise(node *models.Node) {
	slugs, err := n.fetch.ExerciseVideos(n.ctx, node.Slug)
	if err != nil {
		n.logger.Warn("normalize: related videos fetch failed",
			slog.String("exercise", node.Slug),
			slog.String("error", err.Error()))
		slugs = nil
	}
	node.RelatedVideoSlugs = slugs

	stub := &models.ExerciseStub{Slug: node.Slug, Title: node.Title, Path: node.Path}
	for _, vid := range slugs {
		n.related[vid] = stub
	}
}

// keepChild applies the kind and slug blacklists and warns on videos with
// incomplete download formats (kept: upstream is expected to fill them in).
// Kinds we have no field table for are dropped too: normalizing them would
// strip every attribute and yield a hollow node.
func (n *normalizer) keepChild(raw map[string]any) bool {
	kind := rawString(raw, "kind")
	if models.KindBlacklist[kind] {
		n.logger.Debug("normalize: dropping blacklisted kind", slog.String("kind", kind))
		return false
	}
	if _, ok := models.AttributeWhitelist[models.Kind(kind)]; !ok {
		n.logger.Warn("normalize: dropping unknown kind", slog.String("kind", kind))
		return false
	}
	slug := rawString(raw, models.SlugField[models.Kind(kind)])
	if models.SlugBlacklist[slug] {
		n.logger.Debug("normalize: dropping blacklisted slug", slog.String("slug", slug))
		return false
	}
	if models.Kind(kind) == models.KindVideo {
		urls := rawStringMap(raw, "download_urls")
		if _, ok := urls["mp4"]; !ok {
			n.logger.Warn("normalize: video missing mp4 download", slog.String("video", slug))
		} else if _, ok := urls["png"]; !ok {
			n.logger.Warn("normalize: video missing png download", slog.String("video", slug))
		}
	}
	return true
}

// filterWhitelist deletes every attribute not on the kind's whitelist.
func filterWhitelist(raw map[string]any, kind models.Kind) {
	allowed := make(map[string]bool, len(models.AttributeWhitelist[kind]))
	for _, a := range models.AttributeWhitelist[kind] {
		allowed[a] = true
	}
	for key := range raw {
		if !allowed[key] {
			delete(raw, key)
		}
	}
}

func rawChildren(raw map[string]any) []map[string]any {
	list, _ := raw["children"].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, c := range list {
		if m, ok := c.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func rawString(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func rawBool(raw map[string]any, key string) bool {
	b, _ := raw[key].(bool)
	return b
}

func rawFloat(raw map[string]any, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

func rawStringSlice(raw map[string]any, key string) []string {
	list, _ := raw[key].([]any)
	var out []string
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func rawStringMap(raw map[string]any, key string) map[string]string {
	m, _ := raw[key].(map[string]any)
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// rawKeywords accepts either a list of strings or a single comma-separated
// string, both shapes the upstream API has used.
func rawKeywords(raw map[string]any, key string) []string {
	switch v := raw[key].(type) {
	case []any:
		return rawStringSlice(raw, key)
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}
