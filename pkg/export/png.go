package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/treebrowse/pkg/render"
)

func renderPNG(opts TreeSnapshotOptions, fr frame) error {
	dc := gg.NewContext(fr.Width, fr.Height)
	dc.SetHexColor(svgBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if fr.Header > 0 {
		title := opts.Title
		if title == "" {
			title = "Tree Snapshot"
		}
		dc.SetHexColor(svgHeaderFG)
		dc.DrawStringAnchored(title, 16, 20, 0, 0.5)
		dc.SetHexColor(svgSubtle)
		dc.DrawStringAnchored(fmt.Sprintf("tips: %d  data_hash: %s", opts.TipCount, opts.DataHash), 16, 38, 0, 0.5)
	}

	dc.Push()
	dc.Translate(fr.OffsetX, fr.OffsetY)
	dc.Scale(fr.Scale, fr.Scale)
	for _, prim := range opts.Scene.Primitives {
		drawPrimitivePNG(dc, prim)
	}
	dc.Pop()

	return dc.SavePNG(opts.Path)
}

func drawPrimitivePNG(dc *gg.Context, prim render.Primitive) {
	switch p := prim.(type) {
	case render.Line:
		dc.SetHexColor(p.Stroke)
		dc.SetLineWidth(p.StrokeWidth)
		dc.DrawLine(p.X1, p.Y1, p.X2, p.Y2)
		dc.Stroke()
	case render.Path:
		dc.SetHexColor(p.Stroke)
		dc.SetLineWidth(p.StrokeWidth)
		for _, seg := range parsePathSegments(p.D) {
			dc.DrawLine(seg[0], seg[1], seg[2], seg[3])
		}
		dc.Stroke()
	case render.Dot:
		dc.SetHexColor(p.Fill)
		dc.DrawCircle(p.X, p.Y, p.R)
		dc.Fill()
	case render.DotGroup:
		dc.SetHexColor(p.Fill)
		for i := range p.XS {
			dc.DrawCircle(p.XS[i], p.YS[i], p.R)
		}
		dc.Fill()
	case render.PieDot:
		drawPiePNG(dc, p)
	case render.Glyph:
		if len(p.XS) == 0 {
			return
		}
		dc.MoveTo(p.XS[0], p.YS[0])
		for i := 1; i < len(p.XS); i++ {
			dc.LineTo(p.XS[i], p.YS[i])
		}
		dc.ClosePath()
		dc.SetHexColor(p.Fill)
		dc.FillPreserve()
		dc.SetHexColor(p.Stroke)
		dc.SetLineWidth(1)
		dc.Stroke()
	case render.Label:
		dc.SetHexColor(p.Fill)
		ax := 0.0
		if p.AnchorEnd {
			ax = 1.0
		}
		if p.Rotate != 0 {
			dc.Push()
			dc.RotateAbout(gg.Radians(p.Rotate), p.X, p.Y)
			dc.DrawStringAnchored(p.Text, p.X, p.Y, ax, 0.5)
			dc.Pop()
		} else {
			dc.DrawStringAnchored(p.Text, p.X, p.Y, ax, 0.5)
		}
	}
}

func drawPiePNG(dc *gg.Context, p render.PieDot) {
	n := len(p.Colors)
	if n == 0 {
		return
	}
	if n == 1 {
		dc.SetHexColor(p.Colors[0])
		dc.DrawCircle(p.X, p.Y, p.R)
		dc.Fill()
		return
	}
	span := 2 * math.Pi / float64(n)
	for i, fill := range p.Colors {
		a0 := -math.Pi/2 + float64(i)*span
		dc.SetHexColor(fill)
		dc.MoveTo(p.X, p.Y)
		dc.DrawArc(p.X, p.Y, p.R, a0, a0+span)
		dc.ClosePath()
		dc.Fill()
	}
}

// parsePathSegments decodes the compound path data emitted by the fast
// pipeline, which is strictly "M x y L x y" repeated.
func parsePathSegments(d string) [][4]float64 {
	var segs [][4]float64
	for _, move := range strings.Split(d, "M") {
		if move == "" {
			continue
		}
		parts := strings.Split(move, "L")
		if len(parts) != 2 {
			continue
		}
		x1, y1, ok1 := parsePoint(parts[0])
		x2, y2, ok2 := parsePoint(parts[1])
		if ok1 && ok2 {
			segs = append(segs, [4]float64{x1, y1, x2, y2})
		}
	}
	return segs
}

func parsePoint(s string) (x, y float64, ok bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return 0, 0, false
	}
	x, err1 := strconv.ParseFloat(fields[0], 64)
	y, err2 := strconv.ParseFloat(fields[1], 64)
	return x, y, err1 == nil && err2 == nil
}
