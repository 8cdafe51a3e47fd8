package pipeline

import (
	"fmt"

	"github.com/pkimber/ka-lite/internal/apperr"
	"github.com/pkimber/ka-lite/internal/models"
)

// BuildYoutubeMap builds the youtube-id → slug remap from the final video
// cache. The mapping must be one-to-one; a duplicate youtube id is fatal.
func BuildYoutubeMap(cache models.NodeCache) (map[string]string, error) {
	out := make(map[string]string, len(cache[models.KindVideo]))
	for slug, v := range cache[models.KindVideo] {
		if prev, ok := out[v.YoutubeID]; ok {
			return nil, fmt.Errorf("youtube id %q maps to both %q and %q: %w",
				v.YoutubeID, prev, slug, apperr.ErrIntegrity)
		}
		out[v.YoutubeID] = slug
	}
	return out, nil
}
