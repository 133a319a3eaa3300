package render

import (
	"fmt"
	"image/color"
)

var (
	colorBranch     = color.RGBA{0x55, 0x5a, 0x66, 0xff}
	colorDotDefault = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	colorDotShared  = color.RGBA{0xf9, 0x73, 0x16, 0xff}
	colorDotSelect  = color.RGBA{0xef, 0x44, 0x44, 0xff}
	colorNameMatch  = color.RGBA{0xfb, 0xbf, 0x24, 0xff}
	colorGlyphFill  = color.RGBA{0xcb, 0xd5, 0xe1, 0xff}
	colorGlyphEdge  = color.RGBA{0x47, 0x55, 0x69, 0xff}
	colorLabel      = color.RGBA{0x11, 0x18, 0x27, 0xff}
	colorSupport    = color.RGBA{0x66, 0x66, 0x66, 0xff}
)

// speciesPalette cycles over checked species and registered motifs. Hues
// are spaced so adjacent assignments stay distinguishable.
var speciesPalette = []color.RGBA{
	{0x22, 0xc5, 0x5e, 0xff},
	{0x38, 0xbd, 0xf8, 0xff},
	{0xa8, 0x55, 0xf7, 0xff},
	{0xec, 0x48, 0x99, 0xff},
	{0xea, 0xb3, 0x08, 0xff},
	{0x14, 0xb8, 0xa6, 0xff},
	{0xf9, 0x73, 0x16, 0xff},
	{0x84, 0xcc, 0x16, 0xff},
	{0x63, 0x66, 0xf1, 0xff},
	{0xf4, 0x3f, 0x5e, 0xff},
}

// PaletteColor returns the i-th palette color as a CSS hex string, cycling
// past the palette end.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return css(speciesPalette[i%len(speciesPalette)])
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Dot radii by styling tier: selected > shared > default.
const (
	radiusSelected = 6.0
	radiusShared   = 5.0
	radiusDefault  = 3.0
)

// tipDotStyle resolves tip-dot color precedence: motif match > name-search
// match > checked-species color > default neutral. When the tip matches
// more than one motif the per-element pipeline renders a pie with one wedge
// per motif in registration order; the fast pipeline keeps only the first
// motif's solid color.
func tipDotStyle(name, species string, p Params) (solid string, pie []string) {
	for _, m := range p.Motifs {
		if m.Tips[name] {
			pie = append(pie, m.Color)
		}
	}
	if len(pie) > 0 {
		return pie[0], pie
	}
	if p.NameMatches[name] {
		return css(colorNameMatch), nil
	}
	if c, ok := p.SpeciesColors[species]; ok {
		return c, nil
	}
	return css(colorDotDefault), nil
}

// dotOverride applies the selection/shared-set styling tier to a resolved
// dot color, returning the final fill and radius.
func dotOverride(nodeID int, tipName, fill string, p Params) (string, float64) {
	switch {
	case p.SelectedNodeID == nodeID && nodeID >= 0,
		tipName != "" && tipName == p.SelectedTipName:
		return css(colorDotSelect), radiusSelected
	case p.SharedNodes[nodeID]:
		return css(colorDotShared), radiusShared
	default:
		return fill, radiusDefault
	}
}

// branchStroke picks the stroke color for the branch leading into a node.
// Branches into checked-species tips take the species color so fast-mode
// color grouping carries the highlight; everything else uses the neutral
// branch color.
func branchStroke(name, species string, isTip bool, p Params) string {
	if isTip {
		if c, ok := p.SpeciesColors[species]; ok {
			return c
		}
	}
	return css(colorBranch)
}
