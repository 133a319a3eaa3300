package service

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/treebrowse/pkg/model"
)

// ErrRerootTarget marks reroot requests that cannot produce a new tree.
var ErrRerootTarget = errors.New("cannot reroot here")

// Reroot computes a new tree rooted on the branch above the given node and
// returns it as a fresh snapshot with renumbered ids. The current snapshot
// is never modified; on error the caller keeps using it unchanged.
//
// Degenerate requests fail: the root itself, and a direct child of a
// two-child root (rerooting there reproduces the current topology).
func (s *Service) Reroot(nodeID int) (*model.Snapshot, error) {
	target := s.snap.Node(nodeID)
	if target == nil {
		return nil, fmt.Errorf("%w: id %d", ErrNodeNotFound, nodeID)
	}
	if target == s.snap.Root {
		return nil, fmt.Errorf("%w: node %d is already the root", ErrRerootTarget, nodeID)
	}
	parent := s.snap.Parent(nodeID)
	if parent == s.snap.Root && len(s.snap.Root.Children) == 2 {
		return nil, fmt.Errorf("%w: tree is already rooted on this branch", ErrRerootTarget)
	}

	// The new root splits the target's branch in half: one half leads down
	// into the target's (cloned) subtree, the other half up into the
	// reversed remainder of the tree.
	down := target.Clone()
	half := down.BranchLength / 2
	down.BranchLength = half

	up := s.flipTowards(parent, target, half)

	newRoot := &model.TreeNode{
		Children: []*model.TreeNode{down, up},
	}
	model.Renumber(newRoot)
	return model.NewSnapshot(newRoot)
}

// flipTowards rebuilds the tree as seen from a node being approached from
// one of its former children: the excluded child is dropped, the former
// parent edge is reversed into a new child carrying the traversed edge's
// length, and unary nodes produced along the way are spliced out with
// their branch lengths merged.
func (s *Service) flipTowards(node, exclude *model.TreeNode, incomingBL float64) *model.TreeNode {
	flipped := &model.TreeNode{
		Name:         node.Name,
		Support:      cloneSupport(node.Support),
		BranchLength: incomingBL,
	}
	for _, c := range node.Children {
		if c == exclude {
			continue
		}
		flipped.Children = append(flipped.Children, c.Clone())
	}

	if parent := s.snap.Parent(node.ID); parent != nil {
		flipped.Children = append(flipped.Children, s.flipTowards(parent, node, node.BranchLength))
	}

	// Splice out unary nodes (an old two-child root reduces to one).
	if len(flipped.Children) == 1 {
		only := flipped.Children[0]
		only.BranchLength += flipped.BranchLength
		return only
	}
	return flipped
}

func cloneSupport(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
