package layout

import (
	"math"

	"github.com/vanderheijden86/treebrowse/pkg/model"
)

// computeCircular lays the tree out radially: the rectangular depth rule
// becomes radius, and each visible terminal gets an angle proportional to
// its index out of the total visible terminal count. An internal node's
// angle is the midpoint of its first and last child's angle.
func computeCircular(snap *model.Snapshot, p Params) *Result {
	total := model.CountLeaves(snap.Root, p.Collapsed)
	if total < 1 {
		total = 1
	}
	index := 0
	terminals := 0

	var place func(t *model.TreeNode, parentR float64, isRoot bool) *Node
	place = func(t *model.TreeNode, parentR float64, isRoot bool) *Node {
		n := &Node{Tree: t}
		if isRoot {
			n.Radius = parentR
		} else {
			n.Radius = parentR + depthStep(t, p)
		}

		switch {
		case t.IsTip(), p.Collapsed[t.ID]:
			if p.Collapsed[t.ID] && !t.IsTip() {
				n.Collapsed = true
				n.TipCount = model.CountAllTips(t)
				n.Height = collapsedHeight(n.TipCount, p)
			}
			n.Angle = 2 * math.Pi * float64(index) / float64(total)
			index++
			terminals++
		default:
			n.Children = make([]*Node, len(t.Children))
			for i, c := range t.Children {
				n.Children[i] = place(c, n.Radius, false)
			}
			first := n.Children[0]
			last := n.Children[len(n.Children)-1]
			n.Angle = (first.Angle + last.Angle) / 2
		}

		n.X = n.Radius * math.Cos(n.Angle)
		n.Y = n.Radius * math.Sin(n.Angle)
		// The branch is the radial segment at the node's own angle, from the
		// parent's radius out to the node's radius.
		n.AnchorX = parentR * math.Cos(n.Angle)
		n.AnchorY = parentR * math.Sin(n.Angle)

		n.LabelAngle, n.LabelFlip = RadialLabel(n.Angle)
		return n
	}

	root := place(snap.Root, 0, true)
	return finish(root, terminals)
}

// RadialLabel converts a node angle to a text rotation in degrees, flipping
// labels that would otherwise render upside-down in the left half-plane
// (91 to 269 degrees, or the negative-angle mirror).
func RadialLabel(angle float64) (deg float64, flip bool) {
	deg = angle * 180 / math.Pi
	norm := math.Mod(deg, 360)
	if norm < 0 {
		norm += 360
	}
	if norm > 90 && norm < 270 {
		return deg + 180, true
	}
	return deg, false
}
