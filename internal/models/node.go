// Package models defines the domain types for the derived Khan dataset:
// the normalized topic tree, the flat node cache, and the knowledge map.
package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Node is one normalized node of the topic tree. It is a tagged variant
// over Kind: only the field group matching Kind is meaningful, and
// MarshalJSON emits only that group.
type Node struct {
	Kind        Kind
	Slug        string
	ID          string
	Path        string
	Title       string
	Description string

	// Topic fields.
	Hide           bool
	TopicPageURL   string
	ExtendedSlug   string
	InKnowledgeMap bool
	XPos           float64
	YPos           float64
	IconSrc        string
	Children       []*Node
	Contains       []Kind

	// Video fields.
	Duration        int
	Keywords        []string
	YoutubeID       string
	DownloadURLs    map[string]string
	RelatedExercise *ExerciseStub

	// Exercise fields.
	RelatedVideoSlugs     []string
	Live                  bool
	SecondsPerFastProblem float64
	Prerequisites         []string
	HPosition             float64
	VPosition             float64
}

// ExerciseStub is the non-owning reference a Video carries to its related
// Exercise. The slug must be re-resolved against the node cache, since the
// exercise may have been pruned after the stub was built.
type ExerciseStub struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// RelatedExerciseIndex maps video slugs to the exercise that references
// them. Pruning an exercise nils its entries rather than deleting them, so
// every video slug still resolves, just possibly to nothing.
type RelatedExerciseIndex map[string]*ExerciseStub

// ContainsKind reports whether kind appears in a topic's aggregate
// descendant-kind set.
func (n *Node) ContainsKind(kind Kind) bool {
	for _, k := range n.Contains {
		if k == kind {
			return true
		}
	}
	return false
}

// SetContains stores the descendant-kind set in deterministic order.
func (n *Node) SetContains(kinds map[Kind]bool) {
	n.Contains = n.Contains[:0]
	for k := range kinds {
		n.Contains = append(n.Contains, k)
	}
	sort.Slice(n.Contains, func(i, j int) bool { return n.Contains[i] < n.Contains[j] })
}

// fields returns the JSON field map for the node's kind, children included.
func (n *Node) fields() map[string]any {
	m := map[string]any{
		"kind":  n.Kind,
		"slug":  n.Slug,
		"id":    n.ID,
		"path":  n.Path,
		"title": n.Title,
	}
	if n.Description != "" {
		m["description"] = n.Description
	}
	switch n.Kind {
	case KindTopic:
		m["hide"] = n.Hide
		m["in_knowledge_map"] = n.InKnowledgeMap
		m["x_pos"] = n.XPos
		m["y_pos"] = n.YPos
		contains := n.Contains
		if contains == nil {
			contains = []Kind{}
		}
		m["contains"] = contains
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		m["children"] = children
		if n.TopicPageURL != "" {
			m["topic_page_url"] = n.TopicPageURL
		}
		if n.ExtendedSlug != "" {
			m["extended_slug"] = n.ExtendedSlug
		}
		if n.IconSrc != "" {
			m["icon_src"] = n.IconSrc
		}
	case KindVideo:
		m["duration"] = n.Duration
		m["keywords"] = n.Keywords
		m["youtube_id"] = n.YoutubeID
		m["download_urls"] = n.DownloadURLs
		m["related_exercise"] = n.RelatedExercise
	case KindExercise:
		m["related_video_readable_ids"] = n.RelatedVideoSlugs
		m["live"] = n.Live
		m["seconds_per_fast_problem"] = n.SecondsPerFastProblem
		m["prerequisites"] = n.Prerequisites
		m["h_position"] = n.HPosition
		m["v_position"] = n.VPosition
	}
	return m
}

// MarshalJSON emits only the field group matching the node's kind.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.fields())
}

// Summary is a node-cache entry: a node with its child list stripped. For
// multipath kinds Paths carries every path the node was reached by and the
// embedded Path field is unset.
type Summary struct {
	Node
	Paths []string
}

// NewSummary copies node into a cache entry, stripping children.
func NewSummary(node *Node) *Summary {
	s := &Summary{Node: *node}
	s.Children = nil
	if MultipathKinds[node.Kind] {
		s.Paths = []string{node.Path}
		s.Node.Path = ""
	}
	return s
}

// MarshalJSON emits the kind's field group without children, using "paths"
// instead of "path" for multipath kinds.
func (s *Summary) MarshalJSON() ([]byte, error) {
	m := s.Node.fields()
	delete(m, "children")
	if s.Paths != nil {
		delete(m, "path")
		m["paths"] = s.Paths
	}
	return json.Marshal(m)
}

// MustAgree compares the summary's simple-valued fields against another
// arrival of the same slug and returns the names of any that differ. Two
// instances of "the same" multipath node diverging indicates a
// normalization bug upstream.
func (s *Summary) MustAgree(other *Node) []string {
	type pair struct {
		name string
		a, b any
	}
	pairs := []pair{
		{"kind", s.Node.Kind, other.Kind},
		{"slug", s.Slug, other.Slug},
		{"id", s.ID, other.ID},
		{"title", s.Title, other.Title},
		{"description", s.Description, other.Description},
	}
	switch s.Node.Kind {
	case KindVideo:
		pairs = append(pairs,
			pair{"duration", s.Duration, other.Duration},
			pair{"youtube_id", s.YoutubeID, other.YoutubeID},
		)
	case KindExercise:
		pairs = append(pairs,
			pair{"live", s.Live, other.Live},
			pair{"seconds_per_fast_problem", s.SecondsPerFastProblem, other.SecondsPerFastProblem},
			pair{"h_position", s.HPosition, other.HPosition},
			pair{"v_position", s.VPosition, other.VPosition},
		)
	}
	var diff []string
	for _, p := range pairs {
		if p.a != p.b {
			diff = append(diff, p.name)
		}
	}
	return diff
}

// NodeCache is the flat kind → slug → summary index built from the final
// tree.
type NodeCache map[Kind]map[string]*Summary

// Get returns the cached summary for kind and slug, if present.
func (c NodeCache) Get(kind Kind, slug string) (*Summary, bool) {
	s, ok := c[kind][slug]
	return s, ok
}

// String renders per-kind entry counts, for log lines.
func (c NodeCache) String() string {
	return fmt.Sprintf("NodeCache(topics=%d videos=%d exercises=%d)",
		len(c[KindTopic]), len(c[KindVideo]), len(c[KindExercise]))
}
