package pipeline

import (
	"context"
	"testing"

	"github.com/pkimber/ka-lite/internal/models"
	"github.com/pkimber/ka-lite/internal/testutil"
)

func TestReconcileKnowledgeMap(t *testing.T) {
	good := testutil.Topic("good", testutil.Exercise("ex1"))
	good.InKnowledgeMap = true
	hollow := testutil.Topic("hollow")
	hollow.InKnowledgeMap = true
	videoOnly := testutil.Topic("video-only", testutil.Video("vid-1"))
	videoOnly.InKnowledgeMap = true
	unflagged := testutil.Topic("unflagged", testutil.Exercise("ex2"))
	root := testutil.Topic("", good, hollow, videoOnly, unflagged)

	cache, err := BuildNodeCache(root)
	if err != nil {
		t.Fatalf("BuildNodeCache: %v", err)
	}

	km := &models.KnowledgeMap{
		Topics: map[string]*models.MapTopic{
			"good":       {ID: "good", X: 1, Y: 1},
			"hollow":     {ID: "hollow", X: 2, Y: 2},
			"video-only": {ID: "video-only", X: 3, Y: 3},
			"unflagged":  {ID: "unflagged", X: 4, Y: 4},
			"ghost":      {ID: "ghost", X: 5, Y: 5},
		},
		Polylines: []models.Polyline{
			{Path: []models.Point{{X: 1, Y: 1}}},
			{Path: []models.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}},
		},
	}
	_, store := testutil.TestStore(t)

	topicExercises := ReconcileKnowledgeMap(context.Background(), km, root, cache, &fakeIcons{}, store, false, discardLogger())

	if len(km.Topics) != 1 || km.Topics["good"] == nil {
		t.Fatalf("surviving topics = %v, want only good", km.Topics)
	}
	leaves := topicExercises["good"]
	if len(leaves) != 1 || leaves[0].Slug != "ex1" {
		t.Errorf("good leaves = %+v, want [ex1]", leaves)
	}

	// Membership flags flip on tree nodes and cache summaries together.
	for _, topic := range []*models.Node{hollow, videoOnly} {
		if topic.InKnowledgeMap {
			t.Errorf("topic %s still flagged after removal", topic.Slug)
		}
		if summary, _ := cache.Get(models.KindTopic, topic.Slug); summary.InKnowledgeMap {
			t.Errorf("summary %s still flagged after removal", topic.Slug)
		}
	}

	// No upstream icon: good falls back to the default badge.
	if got, want := km.Topics["good"].IconURL, iconURL(models.DefaultIconName); got != want {
		t.Errorf("icon url = %q, want %q", got, want)
	}

	// The polyline touching a removed point goes wholesale.
	if len(km.Polylines) != 1 || len(km.Polylines[0].Path) != 1 {
		t.Errorf("polylines = %+v, want the single-point line only", km.Polylines)
	}

	// A second pass over the reconciled artifacts changes nothing.
	again := ReconcileKnowledgeMap(context.Background(), km, root, cache, &fakeIcons{}, store, false, discardLogger())
	if len(km.Topics) != 1 || len(again["good"]) != 1 {
		t.Errorf("reconciliation is not stable: topics=%v leaves=%v", km.Topics, again)
	}
}

func TestResolveIconsSkipsExisting(t *testing.T) {
	_, store := testutil.TestStore(t)
	local := models.IconDir + "/good" + models.IconExtension
	if err := store.Write(local, []byte("png")); err != nil {
		t.Fatal(err)
	}
	km := &models.KnowledgeMap{Topics: map[string]*models.MapTopic{
		"good": {ID: "good"},
	}}

	icons := &fakeIcons{}
	resolveIcons(context.Background(), km, icons, store, false, discardLogger())
	if len(icons.calls) != 0 {
		t.Errorf("icon fetched despite local copy: %v", icons.calls)
	}

	// force re-downloads even when present.
	icons = &fakeIcons{icons: map[string][]byte{iconURL("good"): []byte("fresh")}}
	resolveIcons(context.Background(), km, icons, store, true, discardLogger())
	if len(icons.calls) != 1 {
		t.Errorf("forced fetch calls = %v, want 1", icons.calls)
	}
}

func TestResolveIconsWritesDownload(t *testing.T) {
	_, store := testutil.TestStore(t)
	km := &models.KnowledgeMap{Topics: map[string]*models.MapTopic{
		"good": {ID: "good"},
	}}
	icons := &fakeIcons{icons: map[string][]byte{iconURL("good"): []byte("png")}}

	resolveIcons(context.Background(), km, icons, store, false, discardLogger())

	if !store.Exists(models.IconDir + "/good" + models.IconExtension) {
		t.Error("downloaded icon not persisted")
	}
	if got, want := km.Topics["good"].IconURL, iconURL("good"); got != want {
		t.Errorf("icon url = %q, want %q", got, want)
	}
}
