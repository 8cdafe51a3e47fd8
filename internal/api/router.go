package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all dataset routes mounted.
// sseHandler, if non-nil, is mounted at GET /events for reload
// notifications.
func NewRouter(svc *Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Get("/topics", h.Topics)
	r.Get("/map", h.MapLayout)
	r.Get("/nodes/{kind}", h.ListSlugs)
	r.Get("/nodes/{kind}/{slug}", h.GetNode)
	r.Get("/topicdata/{slug}", h.TopicData)
	r.Get("/videos/youtube/{id}", h.ResolveYoutubeID)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
