package pipeline

import (
	"errors"
	"testing"

	"github.com/pkimber/ka-lite/internal/apperr"
	"github.com/pkimber/ka-lite/internal/testutil"
)

func TestBuildYoutubeMap(t *testing.T) {
	root := testutil.Topic("",
		testutil.Topic("arith", testutil.Video("adding"), testutil.Video("carrying")),
	)
	cache, err := BuildNodeCache(root)
	if err != nil {
		t.Fatalf("BuildNodeCache: %v", err)
	}

	yt, err := BuildYoutubeMap(cache)
	if err != nil {
		t.Fatalf("BuildYoutubeMap: %v", err)
	}
	if got := yt["yt-adding"]; got != "adding" {
		t.Errorf("yt-adding = %q, want adding", got)
	}
	if got := yt["yt-carrying"]; got != "carrying" {
		t.Errorf("yt-carrying = %q, want carrying", got)
	}
}

func TestBuildYoutubeMapDuplicateIDIsFatal(t *testing.T) {
	clash := testutil.Video("carrying")
	clash.YoutubeID = "yt-adding"
	root := testutil.Topic("",
		testutil.Topic("arith", testutil.Video("adding"), clash),
	)
	cache, err := BuildNodeCache(root)
	if err != nil {
		t.Fatalf("BuildNodeCache: %v", err)
	}

	if _, err := BuildYoutubeMap(cache); !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("err = %v, want integrity violation", err)
	}
}
