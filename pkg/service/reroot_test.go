package service_test

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/vanderheijden86/treebrowse/pkg/loader"
	"github.com/vanderheijden86/treebrowse/pkg/model"
	"github.com/vanderheijden86/treebrowse/pkg/service"
	"github.com/vanderheijden86/treebrowse/pkg/testutil"
)

func trifurcatingService(t *testing.T) *service.Service {
	t.Helper()
	root := testutil.Internal(0,
		testutil.Internal(2, testutil.Tip("A", 2), testutil.Tip("B", 2)),
		testutil.Tip("C", 4),
		testutil.Tip("D", 4),
	)
	model.Renumber(root)
	return service.New(&loader.Data{Snapshot: testutil.MustSnapshot(t, root)})
}

func tipID(snap *model.Snapshot, name string) int {
	id := -1
	snap.Root.Walk(func(n *model.TreeNode) {
		if n.Name == name {
			id = n.ID
		}
	})
	return id
}

func TestRerootSplitsBranch(t *testing.T) {
	svc := trifurcatingService(t)
	before := svc.Tree()
	beforeHash := before.DataHash

	rerooted, err := svc.Reroot(tipID(before, "A"))
	if err != nil {
		t.Fatalf("reroot: %v", err)
	}

	// New root sits on the middle of A's branch.
	if len(rerooted.Root.Children) != 2 {
		t.Fatalf("new root arity = %d, want 2", len(rerooted.Root.Children))
	}
	down := rerooted.Root.Children[0]
	up := rerooted.Root.Children[1]
	if down.Name != "A" || down.BranchLength != 1 {
		t.Errorf("down side = %q bl %g, want A bl 1", down.Name, down.BranchLength)
	}
	if up.BranchLength != 1 {
		t.Errorf("up side bl = %g, want the other half", up.BranchLength)
	}

	// Same taxa either side of the operation.
	got := append([]string(nil), rerooted.Root.Tips()...)
	want := append([]string(nil), before.Root.Tips()...)
	sort.Strings(got)
	sort.Strings(want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tip sets differ: %v vs %v", got, want)
	}

	// Fresh sequential ids in the derived snapshot.
	next := 0
	rerooted.Root.Walk(func(n *model.TreeNode) {
		if n.ID != next {
			t.Errorf("node id %d at pre-order position %d", n.ID, next)
		}
		next++
	})

	// The original snapshot is untouched.
	if before.DataHash != beforeHash || svc.Tree() != before {
		t.Error("reroot must not modify the current snapshot")
	}
}

func TestRerootInternalNode(t *testing.T) {
	svc := trifurcatingService(t)
	snap := svc.Tree()
	clade := snap.Root.Children[0] // (A, B), bl 2

	rerooted, err := svc.Reroot(clade.ID)
	if err != nil {
		t.Fatalf("reroot: %v", err)
	}
	down := rerooted.Root.Children[0]
	if down.BranchLength != 1 {
		t.Errorf("down bl = %g, want half of 2", down.BranchLength)
	}
	gotTips := down.Tips()
	sort.Strings(gotTips)
	if !reflect.DeepEqual(gotTips, []string{"A", "B"}) {
		t.Errorf("down subtree tips = %v", gotTips)
	}
	if rerooted.TipCount != snap.TipCount {
		t.Errorf("tip count changed: %d -> %d", snap.TipCount, rerooted.TipCount)
	}
}

// A former two-child root becomes unary when flipped and is spliced out,
// merging its branch lengths.
func TestRerootSplicesOldBinaryRoot(t *testing.T) {
	root := testutil.Internal(0,
		testutil.Internal(1,
			testutil.Internal(1, testutil.Tip("A", 1), testutil.Tip("B", 1)),
			testutil.Tip("C", 2),
		),
		testutil.Internal(1, testutil.Tip("D", 2), testutil.Tip("E", 3)),
	)
	model.Renumber(root)
	snap := testutil.MustSnapshot(t, root)
	svc := service.New(&loader.Data{Snapshot: snap})

	rerooted, err := svc.Reroot(tipID(snap, "A"))
	if err != nil {
		t.Fatalf("reroot: %v", err)
	}
	// Every internal node of the result must branch.
	rerooted.Root.Walk(func(n *model.TreeNode) {
		if len(n.Children) == 1 {
			t.Errorf("unary node %d survived rerooting", n.ID)
		}
	})
	if rerooted.TipCount != 5 {
		t.Errorf("tip count = %d", rerooted.TipCount)
	}
}

func TestRerootDegenerateTargets(t *testing.T) {
	svc := trifurcatingService(t)
	snap := svc.Tree()

	if _, err := svc.Reroot(snap.Root.ID); !errors.Is(err, service.ErrRerootTarget) {
		t.Errorf("reroot at root: err = %v", err)
	}
	if _, err := svc.Reroot(9999); !errors.Is(err, service.ErrNodeNotFound) {
		t.Errorf("unknown node: err = %v", err)
	}

	// Direct child of a two-child root reproduces the current topology.
	binary := testutil.Internal(0,
		testutil.Internal(1, testutil.Tip("A", 1), testutil.Tip("B", 1)),
		testutil.Tip("C", 2),
	)
	model.Renumber(binary)
	bsnap := testutil.MustSnapshot(t, binary)
	bsvc := service.New(&loader.Data{Snapshot: bsnap})
	if _, err := bsvc.Reroot(bsnap.Root.Children[0].ID); !errors.Is(err, service.ErrRerootTarget) {
		t.Errorf("direct child of binary root: err = %v", err)
	}

	// A grandchild is a valid target even under a binary root.
	if _, err := bsvc.Reroot(tipID(bsnap, "A")); err != nil {
		t.Errorf("grandchild reroot failed: %v", err)
	}
}
