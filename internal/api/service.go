package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkimber/ka-lite/internal/apperr"
	"github.com/pkimber/ka-lite/internal/models"
	"github.com/pkimber/ka-lite/internal/storage"
)

// Service holds the generated dataset in memory and serves lookups over
// it. Reload swaps the dataset wholesale when the artifacts on disk
// change, so readers never observe a half-loaded state.
type Service struct {
	store storage.Provider

	mu          sync.RWMutex
	topics      json.RawMessage
	nodes       map[string]map[string]json.RawMessage
	mapLayout   json.RawMessage
	youtube     map[string]string
	fingerprint string
}

// NewService creates a Service over the data directory. Call Load before
// serving.
func NewService(store storage.Provider) *Service {
	return &Service{store: store}
}

// Load reads the four dataset artifacts into memory.
func (s *Service) Load() error {
	topics, err := s.store.Read(models.TopicsFile)
	if err != nil {
		return fmt.Errorf("api: load topic tree: %w", err)
	}

	rawCache, err := s.store.Read(models.NodeCacheFile)
	if err != nil {
		return fmt.Errorf("api: load node cache: %w", err)
	}
	var nodes map[string]map[string]json.RawMessage
	if err := json.Unmarshal(rawCache, &nodes); err != nil {
		return fmt.Errorf("api: decode node cache: %w", err)
	}

	mapLayout, err := s.store.Read(models.MapLayoutFile)
	if err != nil {
		return fmt.Errorf("api: load map layout: %w", err)
	}

	rawYoutube, err := s.store.Read(models.VideoRemapFile)
	if err != nil {
		return fmt.Errorf("api: load youtube map: %w", err)
	}
	var youtube map[string]string
	if err := json.Unmarshal(rawYoutube, &youtube); err != nil {
		return fmt.Errorf("api: decode youtube map: %w", err)
	}

	fp, err := s.currentFingerprint()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.topics = topics
	s.nodes = nodes
	s.mapLayout = mapLayout
	s.youtube = youtube
	s.fingerprint = fp
	s.mu.Unlock()
	return nil
}

// Reload re-reads the dataset if any artifact changed on disk. Returns
// whether a reload happened.
func (s *Service) Reload() (bool, error) {
	fp, err := s.currentFingerprint()
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	unchanged := fp == s.fingerprint
	s.mu.RUnlock()
	if unchanged {
		return false, nil
	}
	if err := s.Load(); err != nil {
		return false, err
	}
	return true, nil
}

// currentFingerprint summarizes the checksums of every artifact on disk.
func (s *Service) currentFingerprint() (string, error) {
	infos, err := s.store.List("")
	if err != nil {
		return "", fmt.Errorf("api: list artifacts: %w", err)
	}
	parts := make([]string, 0, len(infos))
	for _, info := range infos {
		parts = append(parts, info.Path+":"+info.Checksum)
	}
	sort.Strings(parts)
	return strings.Join(parts, "\n"), nil
}

// Topics returns the raw normalized topic tree.
func (s *Service) Topics() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topics
}

// MapLayout returns the raw reconciled knowledge map.
func (s *Service) MapLayout() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapLayout
}

// Node returns the cached summary for kind and slug.
func (s *Service) Node(kind, slug string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.nodes[kind][slug]
	if !ok {
		return nil, fmt.Errorf("api: node %s/%s: %w", kind, slug, apperr.ErrNotFound)
	}
	return raw, nil
}

// Slugs returns the sorted slugs cached for kind.
func (s *Service) Slugs(kind string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slugs := make([]string, 0, len(s.nodes[kind]))
	for slug := range s.nodes[kind] {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// YoutubeSlug resolves a youtube id to its video slug.
func (s *Service) YoutubeSlug(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slug, ok := s.youtube[id]
	if !ok {
		return "", fmt.Errorf("api: youtube id %s: %w", id, apperr.ErrNotFound)
	}
	return slug, nil
}

// TopicData reads a per-topic exercise-leaf file. Topic data files are
// read through to disk rather than held in memory.
func (s *Service) TopicData(slug string) ([]byte, error) {
	data, err := s.store.Read(models.TopicDataDir + "/" + slug + ".json")
	if err != nil {
		return nil, fmt.Errorf("api: topic data %s: %w", slug, apperr.ErrNotFound)
	}
	return data, nil
}
