package layout

import "github.com/vanderheijden86/treebrowse/pkg/model"

// computeRectangular lays the tree out left-to-right: x grows with branch
// length (phylogram) or a constant step per level (cladogram); y is assigned
// by a running leaf counter at each visible terminal, and an internal node's
// y is the midpoint of its first and last child's y.
func computeRectangular(snap *model.Snapshot, p Params) *Result {
	nextLeaf := 0
	terminals := 0

	var place func(t *model.TreeNode, parentX float64, isRoot bool) *Node
	place = func(t *model.TreeNode, parentX float64, isRoot bool) *Node {
		n := &Node{Tree: t}
		if isRoot {
			// A single-tip tree (and any root) lays out trivially at depth 0.
			n.X = parentX
		} else {
			n.X = parentX + depthStep(t, p)
		}
		n.AnchorX = parentX

		switch {
		case t.IsTip():
			n.Y = float64(nextLeaf) * p.TipSpacing
			nextLeaf++
			terminals++
		case p.Collapsed[t.ID]:
			n.Collapsed = true
			n.TipCount = model.CountAllTips(t)
			n.Height = collapsedHeight(n.TipCount, p)
			slots := leafSlots(n.Height, p.TipSpacing)
			// Centre the glyph on the slots it occupies.
			n.Y = (float64(nextLeaf) + float64(slots-1)/2) * p.TipSpacing
			nextLeaf += slots
			terminals++
		default:
			n.Children = make([]*Node, len(t.Children))
			for i, c := range t.Children {
				n.Children[i] = place(c, n.X, false)
			}
			first := n.Children[0]
			last := n.Children[len(n.Children)-1]
			n.Y = (first.Y + last.Y) / 2
		}

		n.AnchorY = n.Y
		return n
	}

	root := place(snap.Root, 0, true)
	return finish(root, terminals)
}
