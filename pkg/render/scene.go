// Package render walks laid-out tree geometry and emits drawable
// primitives. Two interchangeable strategies consume the same layout: a
// per-element pipeline that favours per-node interactivity, and a batched
// "fast" pipeline that collapses thousands of elements into a handful of
// compound primitives for very large trees.
package render

// Scene is the drawable output of one render pass: an ordered list of
// primitives in layout coordinates. The pan/zoom transform is applied by
// the consumer at draw time, so a cached Scene stays valid across pans.
type Scene struct {
	Primitives []Primitive

	// Bounding box of the underlying layout, for viewport sizing.
	MinX, MinY, MaxX, MaxY float64

	// Batched is true when the scene was produced by the fast pipeline.
	Batched bool
}

// Primitive is one drawable element.
type Primitive interface {
	primitive()
}

// Line is a single branch segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	StrokeWidth    float64
}

// Path is a compound path of many branch segments sharing one stroke
// color, used by the fast pipeline to cut primitive count.
type Path struct {
	D           string // SVG path data, "M x y L x y" repeated
	Stroke      string
	StrokeWidth float64
	Segments    int
}

// Dot is a node marker. NodeID and TipName identify the click target.
type Dot struct {
	X, Y    float64
	R       float64
	Fill    string
	NodeID  int
	TipName string
}

// DotGroup batches markers sharing identical fill and radius.
type DotGroup struct {
	Fill string
	R    float64
	XS   []float64
	YS   []float64
}

// PieDot is a tip marker divided into equal angular wedges, one per
// matching motif, in motif-registration order.
type PieDot struct {
	X, Y    float64
	R       float64
	Colors  []string
	NodeID  int
	TipName string
}

// Glyph is a collapsed-clade summary shape (triangle, wedge or fan
// depending on layout mode). Glyphs stay individual elements even in fast
// mode because they need independent click targets.
type Glyph struct {
	XS, YS   []float64
	Fill     string
	Stroke   string
	NodeID   int
	TipCount int
}

// Label is a text element, optionally rotated for radial layouts.
type Label struct {
	X, Y      float64
	Text      string
	Size      float64
	Fill      string
	Rotate    float64 // degrees around (X, Y)
	AnchorEnd bool    // text-anchor:end, used for flipped radial labels
}

func (Line) primitive()     {}
func (Path) primitive()     {}
func (Dot) primitive()      {}
func (DotGroup) primitive() {}
func (PieDot) primitive()   {}
func (Glyph) primitive()    {}
func (Label) primitive()    {}
