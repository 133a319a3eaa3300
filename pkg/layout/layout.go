// Package layout computes 2-D geometry for phylogenetic trees. Three
// engines share one contract: given a tree snapshot, a collapse set and
// view parameters, annotate every visible node with a draw position and its
// immediate-parent anchor position, such that a straight segment between
// them draws the branch. All engines are pure, single-pass and O(nodes).
package layout

import (
	"math"

	"github.com/vanderheijden86/treebrowse/pkg/model"
)

// Mode selects one of the three layout geometries.
type Mode int

const (
	Rectangular Mode = iota
	Circular
	Unrooted
)

func (m Mode) String() string {
	switch m {
	case Circular:
		return "circular"
	case Unrooted:
		return "unrooted"
	default:
		return "rectangular"
	}
}

// ParseMode maps a config string to a Mode; unknown strings fall back to
// rectangular.
func ParseMode(s string) Mode {
	switch s {
	case "circular":
		return Circular
	case "unrooted":
		return Unrooted
	default:
		return Rectangular
	}
}

// Params are the view parameters consumed by every engine.
type Params struct {
	Mode      Mode
	Phylogram bool // branch length determines drawn depth

	// Collapsed marks internal nodes rendered as single summary glyphs;
	// their descendants are excluded from layout.
	Collapsed map[int]bool

	TipSpacing       float64 // vertical pixels per leaf slot (rectangular)
	BranchScale      float64 // pixels per branch-length unit (phylogram)
	LevelStep        float64 // pixels per level (cladogram)
	TriangleScale    float64 // collapsed glyph scale, percent (10-200)
	UniformTriangles bool    // fixed-size glyphs regardless of tip count
}

// DefaultParams returns layout parameters matching the default view.
func DefaultParams() Params {
	return Params{
		Mode:          Rectangular,
		Phylogram:     true,
		Collapsed:     map[int]bool{},
		TipSpacing:    18,
		BranchScale:   80,
		LevelStep:     40,
		TriangleScale: 100,
	}
}

// Node is the per-render layout record for one visible tree node. It is
// created fresh every layout pass, never mutated after creation, and
// discarded once the render pass has consumed it.
type Node struct {
	Tree *model.TreeNode

	// Draw position and immediate-parent anchor. For the root the anchor
	// equals the position (zero-length branch).
	X, Y           float64
	AnchorX        float64
	AnchorY        float64

	// Radial bookkeeping, set by the circular and unrooted engines.
	Radius     float64
	Angle      float64 // radians
	LabelAngle float64 // degrees, text rotation for radial labels
	LabelFlip  bool    // true when the label falls in the left half-plane

	// Wedge assigned by the unrooted engine (radians). For internal nodes
	// the children's spans tile this wedge exactly.
	WedgeStart float64
	WedgeSpan  float64

	Collapsed bool
	TipCount  int     // descendant tips when collapsed
	Height    float64 // collapsed glyph extent along the leaf axis

	Children []*Node
}

// IsTerminal reports whether the layout node is a visible terminal unit:
// a tip, or a collapsed internal node.
func (n *Node) IsTerminal() bool {
	return n.Tree.IsTip() || n.Collapsed
}

// Result is the output of one layout pass.
type Result struct {
	Root  *Node
	Nodes []*Node // pre-order

	// Terminals is the count of visible terminal units laid out.
	Terminals int

	// Bounding box of all draw positions, for viewport sizing.
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of the layout.
func (r *Result) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of the layout.
func (r *Result) Height() float64 { return r.MaxY - r.MinY }

// Compute runs the engine selected by p.Mode over the snapshot.
func Compute(snap *model.Snapshot, p Params) *Result {
	if snap.IsEmpty() {
		return &Result{}
	}
	if p.Collapsed == nil {
		p.Collapsed = map[int]bool{}
	}
	switch p.Mode {
	case Circular:
		return computeCircular(snap, p)
	case Unrooted:
		return computeUnrooted(snap, p)
	default:
		return computeRectangular(snap, p)
	}
}

// depthStep returns the drawn length of one branch: branch length scaled in
// phylogram mode, a constant per level in cladogram mode. Zero branch
// lengths in phylogram mode yield a zero-length segment, not an error.
func depthStep(n *model.TreeNode, p Params) float64 {
	if p.Phylogram {
		return n.BranchLength * p.BranchScale
	}
	return p.LevelStep
}

// collapsedHeight returns the leaf-axis extent of a collapsed glyph:
// min(tipCount*2, 40) scaled by TriangleScale, or a fixed 30 when uniform
// triangles are enabled.
func collapsedHeight(tipCount int, p Params) float64 {
	if p.UniformTriangles {
		return 30
	}
	h := math.Min(float64(tipCount)*2, 40)
	return h * p.TriangleScale / 100
}

// leafSlots returns how many leaf slots a collapsed glyph occupies so that
// large triangles do not overlap their neighbours.
func leafSlots(height, tipSpacing float64) int {
	if tipSpacing <= 0 {
		return 1
	}
	slots := int(math.Ceil(height / tipSpacing))
	if slots < 1 {
		slots = 1
	}
	return slots
}

// finish computes the pre-order node list and bounding box of a laid-out
// tree and wraps it in a Result.
func finish(root *Node, terminals int) *Result {
	res := &Result{Root: root, Terminals: terminals}
	res.MinX, res.MinY = math.Inf(1), math.Inf(1)
	res.MaxX, res.MaxY = math.Inf(-1), math.Inf(-1)
	var walk func(n *Node)
	walk = func(n *Node) {
		res.Nodes = append(res.Nodes, n)
		res.MinX = math.Min(res.MinX, n.X)
		res.MinY = math.Min(res.MinY, n.Y)
		res.MaxX = math.Max(res.MaxX, n.X)
		res.MaxY = math.Max(res.MaxY, n.Y)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return res
}
