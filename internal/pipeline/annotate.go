package pipeline

import "github.com/pkimber/ka-lite/internal/models"

// AnnotateRelated attaches the related-exercise stub to every video from
// the cross-index built during normalization. Videos whose exercise was
// pruned resolve to nil, never to a dangling stub.
func AnnotateRelated(node *models.Node, related models.RelatedExerciseIndex) {
	if node.Kind == models.KindVideo {
		node.RelatedExercise = related[node.Slug]
	}
	for _, child := range node.Children {
		AnnotateRelated(child, related)
	}
}
