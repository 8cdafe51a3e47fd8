package pipeline

import (
	"reflect"
	"testing"

	"github.com/pkimber/ka-lite/internal/models"
	"github.com/pkimber/ka-lite/internal/testutil"
)

func TestPruneExercisesRemovesContentless(t *testing.T) {
	arith := testutil.Topic("arith",
		testutil.Exercise("ex-kept"),
		testutil.Exercise("ex-gone"),
	)
	root := testutil.Topic("", arith)
	content := testutil.TestExercises(t, "ex-kept")

	removed := PruneExercises(root, content, discardLogger())

	if !reflect.DeepEqual(removed, []string{"ex-gone"}) {
		t.Errorf("removed = %v, want [ex-gone]", removed)
	}
	if len(arith.Children) != 1 || arith.Children[0].Slug != "ex-kept" {
		t.Errorf("children = %+v, want only ex-kept", arith.Children)
	}
	if want := []models.Kind{models.KindExercise}; !reflect.DeepEqual(arith.Contains, want) {
		t.Errorf("contains = %v, want %v", arith.Contains, want)
	}
}

func TestPruneExercisesCascades(t *testing.T) {
	inner := testutil.Topic("inner", testutil.Exercise("ex-gone"))
	outer := testutil.Topic("outer", inner)
	root := testutil.Topic("", outer)

	removed := PruneExercises(root, testutil.TestExercises(t), discardLogger())

	if !reflect.DeepEqual(removed, []string{"ex-gone"}) {
		t.Errorf("removed = %v, want [ex-gone]", removed)
	}
	if len(root.Children) != 0 {
		t.Errorf("root children = %+v, want cascade to empty", root.Children)
	}
}

func TestPruneExercisesDowngradesContains(t *testing.T) {
	mixed := testutil.Topic("mixed",
		testutil.Exercise("ex-gone"),
		testutil.Video("vid-1"),
	)
	root := testutil.Topic("", mixed)

	PruneExercises(root, testutil.TestExercises(t), discardLogger())

	if len(mixed.Children) != 1 || mixed.Children[0].Slug != "vid-1" {
		t.Fatalf("children = %+v, want only vid-1", mixed.Children)
	}
	// The topic keeps its video but must no longer claim exercises.
	if want := []models.Kind{models.KindVideo}; !reflect.DeepEqual(mixed.Contains, want) {
		t.Errorf("contains = %v, want %v", mixed.Contains, want)
	}
}

func TestPruneChildlessTopics(t *testing.T) {
	root := testutil.Topic("",
		testutil.Topic("hollow"),
		testutil.Topic("full", testutil.Video("vid-1")),
	)

	PruneChildlessTopics(root, discardLogger())

	if len(root.Children) != 1 || root.Children[0].Slug != "full" {
		t.Errorf("children = %+v, want only full", root.Children)
	}
}
