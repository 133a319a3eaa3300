package layout_test

import (
	"math/rand"
	"testing"

	"github.com/vanderheijden86/treebrowse/pkg/layout"
	"github.com/vanderheijden86/treebrowse/pkg/model"
	"github.com/vanderheijden86/treebrowse/pkg/testutil"
)

func TestAutoCollapseBelowThreshold(t *testing.T) {
	snap := fiveTipSnapshot(t)
	got := layout.AutoCollapse(snap, layout.DefaultAutoCollapseOptions())
	if len(got) != 0 {
		t.Fatalf("small tree auto-collapsed %d nodes", len(got))
	}
}

func TestAutoCollapseLargeTree(t *testing.T) {
	root := testutil.BalancedTree(10) // 1024 tips
	snap := testutil.MustSnapshot(t, root)

	opts := layout.DefaultAutoCollapseOptions()
	got := layout.AutoCollapse(snap, opts)
	if len(got) == 0 {
		t.Fatal("large tree produced no auto-collapse set")
	}

	// groupSize = max(20, 1024/50) = 20; a balanced tree collapses at the
	// 16-tip level, never above it.
	for id := range got {
		n := snap.Node(id)
		if n == nil {
			t.Fatalf("collapsed id %d not in snapshot", id)
		}
		tips := model.CountAllTips(n)
		if tips > 20 || tips < 2 {
			t.Errorf("collapsed node %d has %d tips, want 2..20", id, tips)
		}
	}

	// No collapsed node is a descendant of another: the walk stops at the
	// first small-enough node.
	for id := range got {
		n := snap.Node(id)
		for _, c := range n.Children {
			c.Walk(func(d *model.TreeNode) {
				if got[d.ID] {
					t.Errorf("collapsed node %d nested under collapsed node %d", d.ID, id)
				}
			})
		}
	}
}

func TestAutoCollapseMinGroupFloor(t *testing.T) {
	root := testutil.RandomTree(rand.New(rand.NewSource(7)), 400)
	snap := testutil.MustSnapshot(t, root)

	opts := layout.AutoCollapseOptions{TipThreshold: 300, MinGroupTips: 50, TargetGroups: 50}
	got := layout.AutoCollapse(snap, opts)
	// 400/50 = 8 < floor, so the effective group size is 50.
	for id := range got {
		if tips := model.CountAllTips(snap.Node(id)); tips > 50 {
			t.Errorf("collapsed node %d has %d tips, above the 50-tip floor", id, tips)
		}
	}
}
