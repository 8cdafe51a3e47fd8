package pipeline

import (
	"fmt"
	"sort"

	"github.com/pkimber/ka-lite/internal/models"
	"github.com/pkimber/ka-lite/internal/storage"
)

// Finding is one referential-integrity violation found in the derived
// artifacts. Findings are advisory: they are reported, never raised.
type Finding struct {
	Check  string
	Detail string
}

// Validate cross-checks the four derived artifacts for referential
// consistency. It is a read-only pass; the caller decides how to surface
// the findings.
func Validate(tree *models.Node, cache models.NodeCache, km *models.KnowledgeMap, store storage.Provider) []Finding {
	var findings []Finding
	report := func(check, format string, args ...any) {
		findings = append(findings, Finding{Check: check, Detail: fmt.Sprintf(format, args...)})
	}

	// Every exercise's related videos resolve in the video cache.
	for _, slug := range cacheSlugs(cache, models.KindExercise) {
		ex := cache[models.KindExercise][slug]
		for _, vid := range ex.RelatedVideoSlugs {
			if _, ok := cache.Get(models.KindVideo, vid); !ok {
				report("related video unresolved", "video %s (from exercise %s)", vid, slug)
			}
		}
	}

	// Every video's related exercise resolves in the exercise cache.
	for _, slug := range cacheSlugs(cache, models.KindVideo) {
		v := cache[models.KindVideo][slug]
		if ex := v.RelatedExercise; ex != nil {
			if _, ok := cache.Get(models.KindExercise, ex.Slug); !ok {
				report("related exercise unresolved", "exercise %s (from video %s)", ex.Slug, slug)
			}
		}
	}

	// Every cached topic's path resolves to a tree node with children.
	for _, slug := range cacheSlugs(cache, models.KindTopic) {
		t := cache[models.KindTopic][slug]
		node := findTopicByPath(tree, t.Node.Path)
		if node == nil || len(node.Children) == 0 {
			report("topic without children", "%s", t.Node.Path)
		}
	}

	// Every knowledge-map slug resolves in the cache and has its
	// per-topic leaf-data file on disk.
	for _, slug := range sortedSlugs(km.Topics) {
		if _, ok := cache.Get(models.KindTopic, slug); !ok {
			report("unknown knowledge-map topic", "%s", slug)
		}
		if !store.Exists(models.TopicDataDir + "/" + slug + ".json") {
			report("missing topic data file", "%s", slug)
		}
	}

	// Every topic's membership flag agrees with the map, its children, and
	// its exercise leaves.
	for _, slug := range cacheSlugs(cache, models.KindTopic) {
		t := cache[models.KindTopic][slug]
		_, inMap := km.Topics[slug]
		node := findTopicByPath(tree, t.Node.Path)

		switch {
		case t.InKnowledgeMap && !inMap:
			report("membership disagreement", "topic %s flagged in map but absent from it", slug)
		case !t.InKnowledgeMap && inMap:
			report("membership disagreement", "topic %s in map but not flagged", slug)
		case t.InKnowledgeMap && (node == nil || len(node.Children) == 0):
			report("membership disagreement", "topic %s in map but has no children", slug)
		case t.InKnowledgeMap && len(exerciseLeaves(node)) == 0:
			report("membership disagreement", "topic %s in map but has no exercises", slug)
		}
	}

	return findings
}

func cacheSlugs(cache models.NodeCache, kind models.Kind) []string {
	slugs := make([]string, 0, len(cache[kind]))
	for s := range cache[kind] {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs
}
