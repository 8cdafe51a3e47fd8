package models

// KnowledgeMap is the external diagram dataset: topics placed at
// coordinates, connected by polylines.
type KnowledgeMap struct {
	Topics    map[string]*MapTopic `json:"topics"`
	Polylines []Polyline           `json:"polylines"`
}

// MapTopic is one diagram entry. ID is kept separately from the tree's
// slug unification because icon paths derive from it.
type MapTopic struct {
	ID      string  `json:"id"`
	Title   string  `json:"standalone_title,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	IconURL string  `json:"icon_url,omitempty"`
}

// Polyline is an ordered connector between diagram points. It is only
// meaningful whole: if any point stops matching a topic coordinate the
// entire polyline is dropped.
type Polyline struct {
	Path []Point `json:"path"`
}

// Point is one diagram coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
