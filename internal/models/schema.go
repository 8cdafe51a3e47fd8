package models

// Kind identifies one of the three content-node kinds in the Khan topic tree.
type Kind string

// Content-node kinds.
const (
	KindTopic    Kind = "Topic"
	KindVideo    Kind = "Video"
	KindExercise Kind = "Exercise"
)

// SlugField maps each kind to the upstream field carrying its slug.
var SlugField = map[Kind]string{
	KindTopic:    "node_slug",
	KindVideo:    "readable_id",
	KindExercise: "name",
}

// TitleField maps each kind to the upstream field carrying its display title.
var TitleField = map[Kind]string{
	KindTopic:    "title",
	KindVideo:    "title",
	KindExercise: "display_name",
}

// PathSegment maps each kind to the segment inserted between the parent path
// and the slug when materializing node paths. Topics nest directly.
var PathSegment = map[Kind]string{
	KindTopic:    "",
	KindVideo:    "v/",
	KindExercise: "e/",
}

// AttributeWhitelist lists the upstream attributes kept per kind. Anything
// else is dropped during normalization so unknown fields never leak into
// derived output.
var AttributeWhitelist = map[Kind][]string{
	KindTopic: {
		"kind", "hide", "description", "id", "topic_page_url", "title",
		"extended_slug", "children", "node_slug", "in_knowledge_map",
		"y_pos", "x_pos", "icon_src",
	},
	KindVideo: {
		"kind", "description", "title", "duration", "keywords",
		"youtube_id", "download_urls", "readable_id",
	},
	KindExercise: {
		"kind", "description", "related_video_readable_ids", "display_name",
		"live", "name", "seconds_per_fast_problem", "prerequisites",
		"v_position", "h_position",
	},
}

// KindBlacklist names child kinds that carry no local content and are
// removed during normalization. The empty string covers nodes with no
// kind attribute at all.
var KindBlacklist = map[string]bool{
	"":            true,
	"Separator":   true,
	"CustomStack": true,
	"Scratchpad":  true,
	"Article":     true,
}

// SlugBlacklist names specific subtrees that are removed during
// normalization: non-content containers, plus exercises known to render
// incorrectly.
var SlugBlacklist = map[string]bool{
	"new-and-noteworthy":   true,
	"talks-and-interviews": true,
	"coach-res":            true,
	"partner-content":      true,
	"cs":                   true,

	"ordering_improper_fractions_and_mixed_numbers": true,
	"ordering_numbers":         true,
	"conditional_statements_2": true,
}

// MultipathKinds are kinds whose nodes may legitimately appear under more
// than one parent path with the same slug. Any other kind arriving twice in
// the node cache is a fatal integrity violation.
var MultipathKinds = map[Kind]bool{
	KindVideo:    true,
	KindExercise: true,
}

// Artifact file names under the data directory.
const (
	TopicsFile      = "topics.json"
	NodeCacheFile   = "nodecache.json"
	MapLayoutFile   = "maplayout.json"
	VideoRemapFile  = "youtube_to_slug.json"
	TopicDataDir    = "topicdata"
	IconDir         = "images/power-mode/badges"
	IconExtension   = "-40x40.png"
	DefaultIconName = "default"
)
