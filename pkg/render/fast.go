package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/treebrowse/pkg/layout"
)

// renderFast emits the batched scene: branch segments grouped into one
// compound path per stroke color, dot markers grouped per fill+radius, tip
// dots simplified to a single solid color, and all text suppressed
// regardless of individual label toggles. Collapsed glyphs stay individual
// because they need independent click targets.
func renderFast(lay *layout.Result, p Params) *Scene {
	scene := &Scene{Batched: true}
	if lay.Root == nil {
		return scene
	}

	segments := make(map[string][]Line)
	type dotKey struct {
		fill string
		r    float64
	}
	dots := make(map[dotKey]*DotGroup)
	var glyphs []Glyph

	addDot := func(x, y, r float64, fill string) {
		k := dotKey{fill, r}
		g := dots[k]
		if g == nil {
			g = &DotGroup{Fill: fill, R: r}
			dots[k] = g
		}
		g.XS = append(g.XS, x)
		g.YS = append(g.YS, y)
	}

	var walk func(n *layout.Node)
	walk = func(n *layout.Node) {
		emitBranch(scene, n, p, segments)
		if p.Mode == layout.Rectangular && len(n.Children) > 0 {
			emitConnector(scene, n, segments)
		}

		switch {
		case n.Collapsed:
			glyphs = append(glyphs, collapsedGlyph(n, p))
		case n.Tree.IsTip():
			// No pie charts in fast mode: first-motif precedence wins.
			solid, _ := tipDotStyle(n.Tree.Name, n.Tree.Species, p)
			fill, r := dotOverride(n.Tree.ID, n.Tree.Name, solid, p)
			addDot(n.X, n.Y, r, fill)
		default:
			fill, r := dotOverride(n.Tree.ID, "", css(colorDotDefault), p)
			addDot(n.X, n.Y, r, fill)
		}

		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(lay.Root)

	// Deterministic primitive order: compound paths sorted by stroke, then
	// dot groups sorted by fill/radius, then glyphs in traversal order.
	strokes := make([]string, 0, len(segments))
	for s := range segments {
		strokes = append(strokes, s)
	}
	sort.Strings(strokes)
	for _, s := range strokes {
		scene.Primitives = append(scene.Primitives, compoundPath(segments[s], s))
	}

	keys := make([]dotKey, 0, len(dots))
	for k := range dots {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].fill != keys[j].fill {
			return keys[i].fill < keys[j].fill
		}
		return keys[i].r < keys[j].r
	})
	for _, k := range keys {
		scene.Primitives = append(scene.Primitives, *dots[k])
	}

	for _, g := range glyphs {
		scene.Primitives = append(scene.Primitives, g)
	}
	return scene
}

// compoundPath joins many segments of one stroke color into a single path
// primitive.
func compoundPath(segs []Line, stroke string) Path {
	var d strings.Builder
	for _, s := range segs {
		fmt.Fprintf(&d, "M%.2f %.2fL%.2f %.2f", s.X1, s.Y1, s.X2, s.Y2)
	}
	return Path{D: d.String(), Stroke: stroke, StrokeWidth: branchWidth, Segments: len(segs)}
}
