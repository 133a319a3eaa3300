package export

import (
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/treebrowse/pkg/render"
)

const (
	svgBackdrop = "#ffffff"
	svgHeaderFG = "#111111"
	svgSubtle   = "#666666"
)

func renderSVGFile(opts TreeSnapshotOptions, fr frame) error {
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, opts, fr)
}

func renderSVGToWriter(w io.Writer, opts TreeSnapshotOptions, fr frame) error {
	canvas := svg.New(w)
	canvas.Start(fr.Width, fr.Height)
	canvas.Rect(0, 0, fr.Width, fr.Height, fmt.Sprintf("fill:%s", svgBackdrop))

	if fr.Header > 0 {
		title := opts.Title
		if title == "" {
			title = "Tree Snapshot"
		}
		canvas.Text(16, 22, title,
			fmt.Sprintf("fill:%s;font-size:15px;font-family:monospace;font-weight:bold", svgHeaderFG))
		canvas.Text(16, 40, fmt.Sprintf("tips: %d  data_hash: %s", opts.TipCount, opts.DataHash),
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", svgSubtle))
	}

	canvas.Gtransform(fmt.Sprintf("translate(%.2f %.2f) scale(%.3f)", fr.OffsetX, fr.OffsetY, fr.Scale))
	for _, prim := range opts.Scene.Primitives {
		writePrimitiveSVG(canvas, prim)
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func writePrimitiveSVG(canvas *svg.SVG, prim render.Primitive) {
	switch p := prim.(type) {
	case render.Line:
		canvas.Path(fmt.Sprintf("M%.2f %.2fL%.2f %.2f", p.X1, p.Y1, p.X2, p.Y2),
			strokeStyle(p.Stroke, p.StrokeWidth))
	case render.Path:
		canvas.Path(p.D, strokeStyle(p.Stroke, p.StrokeWidth))
	case render.Dot:
		canvas.Circle(int(p.X), int(p.Y), int(math.Max(p.R, 1)),
			fmt.Sprintf("fill:%s", p.Fill))
	case render.DotGroup:
		canvas.Gstyle(fmt.Sprintf("fill:%s", p.Fill))
		for i := range p.XS {
			canvas.Circle(int(p.XS[i]), int(p.YS[i]), int(math.Max(p.R, 1)), "")
		}
		canvas.Gend()
	case render.PieDot:
		writePieSVG(canvas, p)
	case render.Glyph:
		xs := make([]int, len(p.XS))
		ys := make([]int, len(p.YS))
		for i := range p.XS {
			xs[i] = int(p.XS[i])
			ys[i] = int(p.YS[i])
		}
		canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", p.Fill, p.Stroke))
	case render.Label:
		style := fmt.Sprintf("fill:%s;font-size:%.0fpx;font-family:monospace", p.Fill, p.Size)
		if p.AnchorEnd {
			style += ";text-anchor:end"
		}
		if p.Rotate != 0 {
			canvas.Gtransform(fmt.Sprintf("rotate(%.1f %.2f %.2f)", p.Rotate, p.X, p.Y))
			canvas.Text(int(p.X), int(p.Y), p.Text, style)
			canvas.Gend()
		} else {
			canvas.Text(int(p.X), int(p.Y), p.Text, style)
		}
	}
}

// writePieSVG draws a pie-divided tip marker as one wedge path per color,
// starting at twelve o'clock and sweeping clockwise.
func writePieSVG(canvas *svg.SVG, p render.PieDot) {
	n := len(p.Colors)
	if n == 0 {
		return
	}
	if n == 1 {
		canvas.Circle(int(p.X), int(p.Y), int(math.Max(p.R, 1)),
			fmt.Sprintf("fill:%s", p.Colors[0]))
		return
	}
	span := 2 * math.Pi / float64(n)
	for i, fill := range p.Colors {
		a0 := -math.Pi/2 + float64(i)*span
		a1 := a0 + span
		x0 := p.X + p.R*math.Cos(a0)
		y0 := p.Y + p.R*math.Sin(a0)
		x1 := p.X + p.R*math.Cos(a1)
		y1 := p.Y + p.R*math.Sin(a1)
		large := 0
		if span > math.Pi {
			large = 1
		}
		d := fmt.Sprintf("M%.2f %.2fL%.2f %.2fA%.2f %.2f 0 %d 1 %.2f %.2fZ",
			p.X, p.Y, x0, y0, p.R, p.R, large, x1, y1)
		canvas.Path(d, fmt.Sprintf("fill:%s", fill))
	}
}

func strokeStyle(stroke string, width float64) string {
	return fmt.Sprintf("stroke:%s;stroke-width:%.1f;fill:none;stroke-linecap:round", stroke, width)
}
