// Package view owns the mutable session view state and the interaction
// controller that operates on it. The tree data itself is immutable; every
// structural operation swaps in a new snapshot, and the view state is the
// single source of truth consulted by every layout and render pass.
package view

import (
	"sort"

	"github.com/vanderheijden86/treebrowse/pkg/config"
	"github.com/vanderheijden86/treebrowse/pkg/layout"
	"github.com/vanderheijden86/treebrowse/pkg/render"
)

// Transform is the pan/zoom affine transform applied at draw time. It is
// purely a view transform and never affects layout coordinates.
type Transform struct {
	Scale float64 `json:"scale"`
	TX    float64 `json:"tx"`
	TY    float64 `json:"ty"`
}

// IdentityTransform returns the neutral transform.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// State is the consolidated, session-lifetime view state. Keeping it in
// one explicit object makes undo/redo a matter of snapshotting and lets
// layout/render run without a live UI.
type State struct {
	Mode             layout.Mode
	Phylogram        bool
	TipSpacing       float64
	TriangleScale    float64
	UniformTriangles bool
	FastMode         bool
	ShowTipLabels    bool
	ShowSupport      bool

	CollapsedIDs    map[int]bool
	SelectedNodeID  int // -1 when nothing selected
	SelectedTipName string
	FocusedRootID   int // id within the full tree; -1 when unfocused

	Transform Transform

	NamePattern    string
	NameMatches    map[string]bool
	Motifs         []render.MotifHighlight
	SharedNodes    map[int]bool
	CheckedSpecies map[string]bool
}

// NewState builds the default view state from config.
func NewState(cfg config.Config) *State {
	return &State{
		Mode:            layout.ParseMode(cfg.UI.DefaultMode),
		Phylogram:       cfg.UI.Phylogram,
		TipSpacing:      cfg.UI.TipSpacing,
		TriangleScale:   cfg.UI.TriangleScale,
		ShowTipLabels:   true,
		ShowSupport:     true,
		CollapsedIDs:    make(map[int]bool),
		SelectedNodeID:  -1,
		FocusedRootID:   -1,
		Transform:       IdentityTransform(),
		NameMatches:     make(map[string]bool),
		SharedNodes:     make(map[int]bool),
		CheckedSpecies:  make(map[string]bool),
	}
}

// Clone deep-copies the state for undo snapshots.
func (s *State) Clone() *State {
	c := *s
	c.CollapsedIDs = copyIntSet(s.CollapsedIDs)
	c.NameMatches = copyStringSet(s.NameMatches)
	c.SharedNodes = copyIntSet(s.SharedNodes)
	c.CheckedSpecies = copyStringSet(s.CheckedSpecies)
	c.Motifs = make([]render.MotifHighlight, len(s.Motifs))
	for i, m := range s.Motifs {
		c.Motifs[i] = render.MotifHighlight{
			Pattern: m.Pattern,
			Color:   m.Color,
			Tips:    copyStringSet(m.Tips),
		}
	}
	return &c
}

// LayoutParams derives the layout engine parameters for the current state.
func (s *State) LayoutParams() layout.Params {
	p := layout.DefaultParams()
	p.Mode = s.Mode
	p.Phylogram = s.Phylogram
	p.Collapsed = s.CollapsedIDs
	p.TipSpacing = s.TipSpacing
	p.TriangleScale = s.TriangleScale
	p.UniformTriangles = s.UniformTriangles
	return p
}

// RenderParams derives the render pipeline parameters for the current
// state. Checked species are assigned palette colors in sorted order so
// the assignment is stable across renders.
func (s *State) RenderParams() render.Params {
	p := render.Params{
		Mode:             s.Mode,
		Phylogram:        s.Phylogram,
		TipSpacing:       s.TipSpacing,
		TriangleScale:    s.TriangleScale,
		UniformTriangles: s.UniformTriangles,
		FastMode:         s.FastMode,
		ShowTipLabels:    s.ShowTipLabels,
		ShowSupport:      s.ShowSupport,
		SelectedNodeID:   s.SelectedNodeID,
		SelectedTipName:  s.SelectedTipName,
		CollapsedIDs:     s.CollapsedIDs,
		NameMatches:      s.NameMatches,
		Motifs:           s.Motifs,
		SharedNodes:      s.SharedNodes,
		SpeciesColors:    s.speciesColors(),
	}
	return p
}

func (s *State) speciesColors() map[string]string {
	if len(s.CheckedSpecies) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.CheckedSpecies))
	for sp := range s.CheckedSpecies {
		names = append(names, sp)
	}
	sort.Strings(names)
	colors := make(map[string]string, len(names))
	for i, sp := range names {
		colors[sp] = render.PaletteColor(i)
	}
	return colors
}

func copyIntSet(in map[int]bool) map[int]bool {
	out := make(map[int]bool, len(in))
	for k, v := range in {
		if v {
			out[k] = true
		}
	}
	return out
}

func copyStringSet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		if v {
			out[k] = true
		}
	}
	return out
}
