// Package api implements the read-only dataset preview API using chi.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkimber/ka-lite/internal/apperr"
)

// Handler holds API route handlers over the loaded dataset.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Topics handles GET /api/topics: the full normalized tree.
func (h *Handler) Topics(w http.ResponseWriter, _ *http.Request) {
	writeRaw(w, http.StatusOK, h.svc.Topics())
}

// MapLayout handles GET /api/map: the reconciled knowledge map.
func (h *Handler) MapLayout(w http.ResponseWriter, _ *http.Request) {
	writeRaw(w, http.StatusOK, h.svc.MapLayout())
}

// ListSlugs handles GET /api/nodes/{kind}: the cached slugs for a kind.
func (h *Handler) ListSlugs(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	writeJSON(w, http.StatusOK, map[string]any{
		"kind":  kind,
		"slugs": h.svc.Slugs(kind),
	})
}

// GetNode handles GET /api/nodes/{kind}/{slug}: one node-cache summary.
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	slug := chi.URLParam(r, "slug")
	raw, err := h.svc.Node(kind, slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get node failed", slog.String("kind", kind), slog.String("slug", slug), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

// TopicData handles GET /api/topicdata/{slug}: the flattened exercise
// leaves of a knowledge-map topic.
func (h *Handler) TopicData(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	data, err := h.svc.TopicData(slug)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeRaw(w, http.StatusOK, data)
}

// ResolveYoutubeID handles GET /api/videos/youtube/{id}.
func (h *Handler) ResolveYoutubeID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	slug, err := h.svc.YoutubeSlug(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"youtube_id": id,
		"slug":       slug,
	})
}
