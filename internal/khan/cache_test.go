package khan

import (
	"path/filepath"
	"testing"
	"time"
)

func testCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"), ttl)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCacheRoundTrip(t *testing.T) {
	cache := testCache(t, time.Hour)

	if _, ok, err := cache.Get("http://example.org/a"); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v, want miss", ok, err)
	}

	if err := cache.Put("http://example.org/a", []byte("body-1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	body, ok, err := cache.Get("http://example.org/a")
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v, want hit", ok, err)
	}
	if string(body) != "body-1" {
		t.Errorf("body = %q, want body-1", body)
	}

	// Refresh overwrites.
	if err := cache.Put("http://example.org/a", []byte("body-2")); err != nil {
		t.Fatalf("Put refresh: %v", err)
	}
	body, _, _ = cache.Get("http://example.org/a")
	if string(body) != "body-2" {
		t.Errorf("body after refresh = %q, want body-2", body)
	}
}

func TestCacheZeroTTLAlwaysMisses(t *testing.T) {
	cache := testCache(t, 0)

	if err := cache.Put("http://example.org/a", []byte("body")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, err := cache.Get("http://example.org/a"); err != nil || ok {
		t.Errorf("ok=%v err=%v, want miss with disabled ttl", ok, err)
	}
}
