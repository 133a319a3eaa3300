package render

import (
	"fmt"
	"math"
	"time"

	"github.com/vanderheijden86/treebrowse/pkg/debug"
	"github.com/vanderheijden86/treebrowse/pkg/layout"
)

const (
	branchWidth   = 1.2
	labelSize     = 11.0
	supportSize   = 9.0
	labelPad      = 6.0
	glyphArcSteps = 6 // arc resolution of circular fan glyphs
)

// Render walks the laid-out geometry and emits a drawable scene, choosing
// the per-element or batched strategy by p.FastMode.
func Render(lay *layout.Result, p Params) *Scene {
	start := time.Now()
	var scene *Scene
	if p.FastMode {
		scene = renderFast(lay, p)
	} else {
		scene = renderElements(lay, p)
	}
	scene.MinX, scene.MinY = lay.MinX, lay.MinY
	scene.MaxX, scene.MaxY = lay.MaxX, lay.MaxY
	debug.LogTiming(fmt.Sprintf("render (fast=%v, %d prims)", p.FastMode, len(scene.Primitives)), time.Since(start))
	return scene
}

// renderElements emits one primitive per branch, node dot, label and
// collapsed glyph. Tips matching several motifs get a pie-divided dot with
// one wedge per motif in registration order.
func renderElements(lay *layout.Result, p Params) *Scene {
	scene := &Scene{}
	if lay.Root == nil {
		return scene
	}

	var walk func(n *layout.Node)
	walk = func(n *layout.Node) {
		emitBranch(scene, n, p, nil)
		if p.Mode == layout.Rectangular && len(n.Children) > 0 {
			emitConnector(scene, n, nil)
		}

		if n.Collapsed {
			scene.Primitives = append(scene.Primitives, collapsedGlyph(n, p))
			if p.ShowTipLabels {
				scene.Primitives = append(scene.Primitives, glyphLabel(n, p))
			}
		} else if n.Tree.IsTip() {
			emitTipDot(scene, n, p)
			if p.ShowTipLabels {
				scene.Primitives = append(scene.Primitives, tipLabel(n, p))
			}
		} else {
			fill, r := dotOverride(n.Tree.ID, "", css(colorDotDefault), p)
			scene.Primitives = append(scene.Primitives, Dot{
				X: n.X, Y: n.Y, R: r, Fill: fill, NodeID: n.Tree.ID,
			})
			if p.ShowSupport && n.Tree.Support != nil {
				scene.Primitives = append(scene.Primitives, Label{
					X: n.X + labelPad/2, Y: n.Y - labelPad/2,
					Text: fmt.Sprintf("%g", *n.Tree.Support),
					Size: supportSize, Fill: css(colorSupport),
				})
			}
		}

		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(lay.Root)
	return scene
}

// emitBranch draws the segment from a node's parent anchor to its draw
// position. When sink is non-nil the segment is collected for batching
// instead of being appended to the scene.
func emitBranch(scene *Scene, n *layout.Node, p Params, sink map[string][]Line) {
	if n.X == n.AnchorX && n.Y == n.AnchorY {
		return // root, or a zero-length phylogram branch
	}
	stroke := branchStroke(n.Tree.Name, n.Tree.Species, n.Tree.IsTip(), p)
	seg := Line{X1: n.AnchorX, Y1: n.AnchorY, X2: n.X, Y2: n.Y, Stroke: stroke, StrokeWidth: branchWidth}
	if sink != nil {
		sink[stroke] = append(sink[stroke], seg)
		return
	}
	scene.Primitives = append(scene.Primitives, seg)
}

// emitConnector draws the vertical joint of a rectangular internal node,
// spanning its first to last child.
func emitConnector(scene *Scene, n *layout.Node, sink map[string][]Line) {
	first := n.Children[0]
	last := n.Children[len(n.Children)-1]
	if first.Y == last.Y {
		return
	}
	stroke := css(colorBranch)
	seg := Line{X1: n.X, Y1: first.Y, X2: n.X, Y2: last.Y, Stroke: stroke, StrokeWidth: branchWidth}
	if sink != nil {
		sink[stroke] = append(sink[stroke], seg)
		return
	}
	scene.Primitives = append(scene.Primitives, seg)
}

func emitTipDot(scene *Scene, n *layout.Node, p Params) {
	solid, pie := tipDotStyle(n.Tree.Name, n.Tree.Species, p)
	fill, r := dotOverride(n.Tree.ID, n.Tree.Name, solid, p)
	if len(pie) > 1 && fill == solid {
		scene.Primitives = append(scene.Primitives, PieDot{
			X: n.X, Y: n.Y, R: r, Colors: pie, NodeID: n.Tree.ID, TipName: n.Tree.Name,
		})
		return
	}
	scene.Primitives = append(scene.Primitives, Dot{
		X: n.X, Y: n.Y, R: r, Fill: fill, NodeID: n.Tree.ID, TipName: n.Tree.Name,
	})
}

func tipLabel(n *layout.Node, p Params) Label {
	l := Label{
		Text: n.Tree.Name,
		Size: labelSize,
		Fill: css(colorLabel),
	}
	switch p.Mode {
	case layout.Rectangular:
		l.X, l.Y = n.X+labelPad, n.Y+labelSize/3
	default:
		// Radial label anchored just past the tip, rotated to the tip's
		// angle and flipped so it never renders upside-down.
		l.X = n.X + labelPad*math.Cos(n.Angle)
		l.Y = n.Y + labelPad*math.Sin(n.Angle)
		l.Rotate = n.LabelAngle
		l.AnchorEnd = n.LabelFlip
	}
	return l
}

func glyphLabel(n *layout.Node, p Params) Label {
	l := tipLabel(n, p)
	l.Text = fmt.Sprintf("%s (%d)", clipName(n.Tree.Name), n.TipCount)
	return l
}

func clipName(name string) string {
	if name == "" {
		return "clade"
	}
	return name
}

// collapsedGlyph builds the summary shape for a collapsed clade: a triangle
// in rectangular mode, a fan in the radial modes. The glyph keeps its node
// id so it remains an independent click target even in fast mode.
func collapsedGlyph(n *layout.Node, p Params) Glyph {
	g := Glyph{
		Fill:     css(colorGlyphFill),
		Stroke:   css(colorGlyphEdge),
		NodeID:   n.Tree.ID,
		TipCount: n.TipCount,
	}
	depth := n.Height // isoceles: glyph extends as deep as it is tall

	switch p.Mode {
	case layout.Rectangular:
		g.XS = []float64{n.X, n.X + depth, n.X + depth}
		g.YS = []float64{n.Y, n.Y - n.Height/2, n.Y + n.Height/2}
	case layout.Circular:
		baseR := n.Radius + depth
		half := (n.Height / 2) / math.Max(baseR, 1)
		g.XS, g.YS = fanPoints(n.X, n.Y, n.Angle, baseR-n.Radius, half)
	default: // unrooted
		half := (n.Height / 2) / math.Max(depth, 1)
		g.XS, g.YS = fanPoints(n.X, n.Y, n.Angle, depth, half)
	}
	return g
}

// fanPoints approximates a wedge of the given angular half-width opening
// from (x, y) along the bearing angle, with an arc base at the given depth.
func fanPoints(x, y, bearing, depth, half float64) (xs, ys []float64) {
	xs = append(xs, x)
	ys = append(ys, y)
	for i := 0; i <= glyphArcSteps; i++ {
		a := bearing - half + 2*half*float64(i)/glyphArcSteps
		xs = append(xs, x+depth*math.Cos(a))
		ys = append(ys, y+depth*math.Sin(a))
	}
	return xs, ys
}
