// Package model defines the phylogenetic tree data model shared by the
// layout engines, render pipeline and view controller.
package model

import "fmt"

// TreeNode is a single node in a phylogenetic tree. A node is a tip iff it
// has no children. Nodes are treated as immutable once a snapshot has been
// built; structural operations (subtree focus, reroot) derive a new tree
// rather than mutating in place, so retained references stay valid.
type TreeNode struct {
	ID           int         `json:"id"`
	Name         string      `json:"name,omitempty"` // tips only; unique tip identifier
	BranchLength float64     `json:"bl"`
	Support      *float64    `json:"sup,omitempty"` // bootstrap/confidence, internal nodes only
	Species      string      `json:"sp,omitempty"`  // tips only, derived externally
	Children     []*TreeNode `json:"ch,omitempty"`  // traversal order, never resorted
}

// IsTip reports whether the node is a terminal taxon.
func (n *TreeNode) IsTip() bool {
	return len(n.Children) == 0
}

// Validate checks structural sanity of the subtree rooted at n:
// unique IDs, non-negative branch lengths, named tips.
func (n *TreeNode) Validate() error {
	seen := make(map[int]bool)
	var walk func(node *TreeNode) error
	walk = func(node *TreeNode) error {
		if node == nil {
			return fmt.Errorf("nil node in tree")
		}
		if seen[node.ID] {
			return fmt.Errorf("duplicate node id %d", node.ID)
		}
		seen[node.ID] = true
		if node.BranchLength < 0 {
			return fmt.Errorf("node %d: negative branch length %g", node.ID, node.BranchLength)
		}
		if node.IsTip() && node.Name == "" {
			return fmt.Errorf("node %d: tip without a name", node.ID)
		}
		for _, c := range node.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(n)
}

// Clone creates a deep copy of the subtree rooted at n. IDs are preserved;
// callers that need an independent snapshot (subtree focus) reindex the
// result via NewSnapshot.
func (n *TreeNode) Clone() *TreeNode {
	if n == nil {
		return nil
	}
	clone := *n
	if n.Support != nil {
		v := *n.Support
		clone.Support = &v
	}
	if n.Children != nil {
		clone.Children = make([]*TreeNode, len(n.Children))
		for i, c := range n.Children {
			clone.Children[i] = c.Clone()
		}
	}
	return &clone
}

// Walk visits the subtree rooted at n in pre-order.
func (n *TreeNode) Walk(fn func(*TreeNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Tips returns the names of all tip descendants in traversal order.
func (n *TreeNode) Tips() []string {
	var tips []string
	n.Walk(func(node *TreeNode) {
		if node.IsTip() {
			tips = append(tips, node.Name)
		}
	})
	return tips
}

// TipNodes returns the tip descendants themselves in traversal order, for
// callers that need more than the names.
func (n *TreeNode) TipNodes() []*TreeNode {
	var tips []*TreeNode
	n.Walk(func(node *TreeNode) {
		if node.IsTip() {
			tips = append(tips, node)
		}
	})
	return tips
}

// CountAllTips returns the number of tip descendants of n, ignoring any
// collapse state. Used for summary-glyph sizing and status displays.
func CountAllTips(n *TreeNode) int {
	if n.IsTip() {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += CountAllTips(c)
	}
	return total
}

// CountLeaves returns the number of visible terminal units under n: a tip
// counts as 1, a collapsed internal node counts as exactly 1, otherwise the
// sum over children. This drives proportional vertical/angular allocation,
// so collapsing a clade reclaims its visual space immediately.
func CountLeaves(n *TreeNode, collapsed map[int]bool) int {
	if n.IsTip() || collapsed[n.ID] {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += CountLeaves(c, collapsed)
	}
	return total
}
