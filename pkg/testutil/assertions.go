package testutil

import (
	"math"
	"testing"

	"github.com/vanderheijden86/treebrowse/pkg/layout"
	"github.com/vanderheijden86/treebrowse/pkg/model"
)

// Epsilon is the tolerance for geometry comparisons.
const Epsilon = 1e-9

// AssertFloatEqual verifies two floats agree to Epsilon.
func AssertFloatEqual(t *testing.T, label string, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > Epsilon {
		t.Errorf("%s: want %v, got %v", label, want, got)
	}
}

// AssertNoDuplicateIDs verifies node ids are unique across the tree.
func AssertNoDuplicateIDs(t *testing.T, root *model.TreeNode) {
	t.Helper()
	seen := make(map[int]bool)
	root.Walk(func(n *model.TreeNode) {
		if seen[n.ID] {
			t.Errorf("duplicate node id: %d", n.ID)
		}
		seen[n.ID] = true
	})
}

// AssertTipCount verifies the expected number of tips under root.
func AssertTipCount(t *testing.T, root *model.TreeNode, expected int) {
	t.Helper()
	if got := model.CountAllTips(root); got != expected {
		t.Errorf("expected %d tips, got %d", expected, got)
	}
}

// AssertSameTipNames verifies two trees carry the same tip name set.
func AssertSameTipNames(t *testing.T, a, b *model.TreeNode) {
	t.Helper()
	names := func(n *model.TreeNode) map[string]bool {
		out := make(map[string]bool)
		for _, tip := range n.Tips() {
			out[tip] = true
		}
		return out
	}
	na, nb := names(a), names(b)
	if len(na) != len(nb) {
		t.Fatalf("tip count differs: %d vs %d", len(na), len(nb))
	}
	for name := range na {
		if !nb[name] {
			t.Errorf("tip %q missing from second tree", name)
		}
	}
}

// LayoutByName indexes a layout result's nodes by tip name.
func LayoutByName(res *layout.Result) map[string]*layout.Node {
	out := make(map[string]*layout.Node)
	for _, n := range res.Nodes {
		if n.Tree.IsTip() {
			out[n.Tree.Name] = n
		}
	}
	return out
}

// AssertSameLayout verifies two layout results place every node at the
// same coordinates in the same order.
func AssertSameLayout(t *testing.T, a, b *layout.Result) {
	t.Helper()
	if len(a.Nodes) != len(b.Nodes) {
		t.Fatalf("node count differs: %d vs %d", len(a.Nodes), len(b.Nodes))
	}
	for i := range a.Nodes {
		na, nb := a.Nodes[i], b.Nodes[i]
		if na.Tree.ID != nb.Tree.ID {
			t.Fatalf("node %d: id %d vs %d", i, na.Tree.ID, nb.Tree.ID)
		}
		if math.Abs(na.X-nb.X) > Epsilon || math.Abs(na.Y-nb.Y) > Epsilon {
			t.Errorf("node %d (id %d): position (%v,%v) vs (%v,%v)",
				i, na.Tree.ID, na.X, na.Y, nb.X, nb.Y)
		}
	}
}
