package khan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkimber/ka-lite/internal/apperr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/topictree", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, `{"kind":"Topic","node_slug":"root","children":[]}`)
	})
	mux.HandleFunc("/api/v1/exercises/addition_1/videos", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"readable_id":"adding"},{"readable_id":"carrying"}]`)
	})
	mux.HandleFunc("/api/v1/maplayout", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"topics":{"arith":{"id":"arith","x":1,"y":2}},"polylines":[]}`)
	})
	mux.HandleFunc("/images/power-mode/badges/arith-40x40.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientTopicTreeCaching(t *testing.T) {
	var hits atomic.Int64
	srv := testServer(t, &hits)
	cache := testCache(t, time.Hour)
	client := NewClient(srv.URL, 5*time.Second, cache, discardLogger())

	for i := 0; i < 2; i++ {
		tree, err := client.TopicTree(context.Background())
		if err != nil {
			t.Fatalf("TopicTree: %v", err)
		}
		if tree["node_slug"] != "root" {
			t.Errorf("node_slug = %v, want root", tree["node_slug"])
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hits = %d, want 1 (second call served from cache)", got)
	}
}

func TestClientExerciseVideos(t *testing.T) {
	var hits atomic.Int64
	srv := testServer(t, &hits)
	client := NewClient(srv.URL, 5*time.Second, nil, discardLogger())

	slugs, err := client.ExerciseVideos(context.Background(), "addition_1")
	if err != nil {
		t.Fatalf("ExerciseVideos: %v", err)
	}
	if want := []string{"adding", "carrying"}; !reflect.DeepEqual(slugs, want) {
		t.Errorf("slugs = %v, want %v", slugs, want)
	}
}

func TestClientMapLayout(t *testing.T) {
	var hits atomic.Int64
	srv := testServer(t, &hits)
	client := NewClient(srv.URL, 5*time.Second, nil, discardLogger())

	km, err := client.MapLayout(context.Background())
	if err != nil {
		t.Fatalf("MapLayout: %v", err)
	}
	topic := km.Topics["arith"]
	if topic == nil || topic.X != 1 || topic.Y != 2 {
		t.Errorf("map topic = %+v, want arith at (1,2)", topic)
	}
}

func TestClientFetchIcon(t *testing.T) {
	var hits atomic.Int64
	srv := testServer(t, &hits)
	client := NewClient(srv.URL, 5*time.Second, nil, discardLogger())

	data, err := client.FetchIcon(context.Background(), "/images/power-mode/badges/arith-40x40.png")
	if err != nil {
		t.Fatalf("FetchIcon: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("icon bytes = %q", data)
	}

	_, err = client.FetchIcon(context.Background(), "/images/power-mode/badges/nope-40x40.png")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing icon err = %v, want not-found", err)
	}
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()
	client := NewClient(srv.URL, 5*time.Second, nil, discardLogger())

	if _, err := client.TopicTree(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
