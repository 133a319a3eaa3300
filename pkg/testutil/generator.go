// Package testutil provides tree generators and assertion helpers shared
// by the package tests.
package testutil

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/vanderheijden86/treebrowse/pkg/model"
)

// FiveTipNewick is a small balanced fixture: a three-tip clade (A, B, C)
// and a two-tip clade (D, E) with simple integer branch lengths.
const FiveTipNewick = "(((A:1,B:1)90:1,C:2)80:1,(D:2,E:3)70:1)root:0;"

// Tip builds a named tip node.
func Tip(name string, bl float64) *model.TreeNode {
	return &model.TreeNode{Name: name, BranchLength: bl}
}

// Internal builds an internal node over the given children.
func Internal(bl float64, children ...*model.TreeNode) *model.TreeNode {
	return &model.TreeNode{BranchLength: bl, Children: children}
}

// BalancedTree builds a complete binary tree of the given depth with unit
// branch lengths. Tips are named t0, t1, ... left to right.
func BalancedTree(depth int) *model.TreeNode {
	next := 0
	var build func(d int) *model.TreeNode
	build = func(d int) *model.TreeNode {
		if d == 0 {
			n := Tip(fmt.Sprintf("t%d", next), 1)
			next++
			return n
		}
		return Internal(1, build(d-1), build(d-1))
	}
	root := build(depth)
	model.Renumber(root)
	return root
}

// CaterpillarTree builds a maximally unbalanced tree with the given number
// of tips, unit branch lengths throughout.
func CaterpillarTree(tips int) *model.TreeNode {
	if tips < 1 {
		tips = 1
	}
	node := Tip("t0", 1)
	for i := 1; i < tips; i++ {
		node = Internal(1, node, Tip(fmt.Sprintf("t%d", i), 1))
	}
	model.Renumber(node)
	return node
}

// RandomTree builds a random binary tree over the given number of tips by
// repeatedly splitting a random tip. Branch lengths are uniform in (0, 2).
func RandomTree(r *rand.Rand, tips int) *model.TreeNode {
	if tips < 1 {
		tips = 1
	}
	root := Tip("t0", r.Float64()*2)
	leaves := []*model.TreeNode{root}
	for i := 1; i < tips; i++ {
		idx := r.Intn(len(leaves))
		leaf := leaves[idx]
		left := Tip(leaf.Name, r.Float64()*2)
		right := Tip(fmt.Sprintf("t%d", i), r.Float64()*2)
		leaf.Name = ""
		leaf.Children = []*model.TreeNode{left, right}
		leaves[idx] = left
		leaves = append(leaves, right)
	}
	model.Renumber(root)
	return root
}

// MustSnapshot wraps a root in a snapshot, failing the test on error.
func MustSnapshot(t *testing.T, root *model.TreeNode) *model.Snapshot {
	t.Helper()
	snap, err := model.NewSnapshot(root)
	if err != nil {
		t.Fatalf("building snapshot: %v", err)
	}
	return snap
}
