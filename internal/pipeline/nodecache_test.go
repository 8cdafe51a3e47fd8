package pipeline

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pkimber/ka-lite/internal/apperr"
	"github.com/pkimber/ka-lite/internal/models"
	"github.com/pkimber/ka-lite/internal/testutil"
)

func TestBuildNodeCacheMergesMultipath(t *testing.T) {
	first := testutil.Video("shared")
	second := testutil.Video("shared")
	second.Path = "/algebra/v/shared/"
	root := testutil.Topic("",
		testutil.Topic("arith", first),
		testutil.Topic("algebra", second),
	)

	cache, err := BuildNodeCache(root)
	if err != nil {
		t.Fatalf("BuildNodeCache: %v", err)
	}

	summary, ok := cache.Get(models.KindVideo, "shared")
	if !ok {
		t.Fatal("shared video missing from cache")
	}
	if want := []string{first.Path, second.Path}; !reflect.DeepEqual(summary.Paths, want) {
		t.Errorf("paths = %v, want %v", summary.Paths, want)
	}
	if summary.Node.Path != "" {
		t.Errorf("single path = %q, want empty for multipath node", summary.Node.Path)
	}
}

func TestBuildNodeCacheDuplicateTopicIsFatal(t *testing.T) {
	root := testutil.Topic("",
		testutil.Topic("dup", testutil.Video("a")),
		testutil.Topic("dup", testutil.Video("b")),
	)

	_, err := BuildNodeCache(root)
	if !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("err = %v, want integrity violation", err)
	}
}

func TestBuildNodeCacheDivergentMultipathIsFatal(t *testing.T) {
	first := testutil.Video("shared")
	second := testutil.Video("shared")
	second.Duration = first.Duration + 30
	root := testutil.Topic("",
		testutil.Topic("arith", first),
		testutil.Topic("algebra", second),
	)

	_, err := BuildNodeCache(root)
	if !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("err = %v, want integrity violation", err)
	}
}
