package layout

import (
	"math"

	"github.com/vanderheijden86/treebrowse/pkg/model"
)

// computeUnrooted implements the equal-angle (Felsenstein) layout. Every
// node owns an angular wedge; the root gets the full circle. A node's wedge
// is subdivided among its children proportionally to each child's visible
// leaf count, children tiling the parent's wedge exactly, and a child is
// placed at branch-length distance from its parent along its wedge's
// bisector.
func computeUnrooted(snap *model.Snapshot, p Params) *Result {
	terminals := 0

	var place func(t *model.TreeNode, px, py, wedgeStart, wedgeSpan float64, isRoot bool) *Node
	place = func(t *model.TreeNode, px, py, wedgeStart, wedgeSpan float64, isRoot bool) *Node {
		n := &Node{Tree: t, WedgeStart: wedgeStart, WedgeSpan: wedgeSpan}
		bisector := wedgeStart + wedgeSpan/2
		n.Angle = bisector

		if isRoot {
			n.X, n.Y = px, py
			n.AnchorX, n.AnchorY = px, py
		} else {
			dist := depthStep(t, p)
			n.X = px + dist*math.Cos(bisector)
			n.Y = py + dist*math.Sin(bisector)
			n.AnchorX, n.AnchorY = px, py
		}
		n.LabelAngle, n.LabelFlip = RadialLabel(bisector)

		if t.IsTip() || p.Collapsed[t.ID] {
			if !t.IsTip() {
				n.Collapsed = true
				n.TipCount = model.CountAllTips(t)
				n.Height = collapsedHeight(n.TipCount, p)
			}
			terminals++
			return n
		}

		totalLeaves := 0
		for _, c := range t.Children {
			totalLeaves += model.CountLeaves(c, p.Collapsed)
		}
		if totalLeaves < 1 {
			totalLeaves = 1
		}

		n.Children = make([]*Node, len(t.Children))
		start := wedgeStart
		for i, c := range t.Children {
			span := wedgeSpan * float64(model.CountLeaves(c, p.Collapsed)) / float64(totalLeaves)
			n.Children[i] = place(c, n.X, n.Y, start, span, false)
			start += span
		}
		return n
	}

	root := place(snap.Root, 0, 0, 0, 2*math.Pi, true)
	return finish(root, terminals)
}
