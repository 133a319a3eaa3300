package render

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/vanderheijden86/treebrowse/pkg/layout"
)

// MotifHighlight is one registered motif search: the pattern it was
// registered under, its assigned color, and the set of matching tips.
// Registration order is significant for pie-wedge ordering.
type MotifHighlight struct {
	Pattern string
	Color   string
	Tips    map[string]bool
}

// Params is everything that can affect the visual output of a render pass.
// The view controller derives it from the current view state; the cache
// fingerprints it.
type Params struct {
	Mode             layout.Mode
	Phylogram        bool
	TipSpacing       float64
	TriangleScale    float64
	UniformTriangles bool
	FastMode         bool
	ShowTipLabels    bool
	ShowSupport      bool

	SelectedNodeID  int // -1 when nothing is selected
	SelectedTipName string

	CollapsedIDs  map[int]bool
	NameMatches   map[string]bool
	Motifs        []MotifHighlight
	SharedNodes   map[int]bool
	SpeciesColors map[string]string // checked species -> assigned color
}

// DefaultParams returns render parameters for an empty view state.
func DefaultParams() Params {
	return Params{
		Mode:           layout.Rectangular,
		Phylogram:      true,
		TipSpacing:     18,
		TriangleScale:  100,
		ShowTipLabels:  true,
		ShowSupport:    true,
		SelectedNodeID: -1,
	}
}

// Fingerprint concatenates every render-affecting state variable, plus the
// tree's data hash, into a deterministic cache key. Sets are emitted in
// sorted order so map iteration cannot perturb the key.
func (p Params) Fingerprint(dataHash string) string {
	var b strings.Builder
	b.WriteString(dataHash)
	b.WriteByte('|')
	b.WriteString(p.Mode.String())
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(p.Phylogram))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(p.TipSpacing, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(p.TriangleScale, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(p.UniformTriangles))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(p.FastMode))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(p.ShowTipLabels))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(p.ShowSupport))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(p.SelectedNodeID))
	b.WriteByte('|')
	b.WriteString(p.SelectedTipName)
	b.WriteByte('|')
	writeSortedInts(&b, p.CollapsedIDs)
	writeSortedInts(&b, p.SharedNodes)
	writeSortedStrings(&b, p.NameMatches)
	for _, m := range p.Motifs {
		b.WriteString(m.Pattern)
		b.WriteByte(':')
		b.WriteString(m.Color)
		b.WriteByte(':')
		writeSortedStrings(&b, m.Tips)
	}
	b.WriteByte('|')
	species := make([]string, 0, len(p.SpeciesColors))
	for sp := range p.SpeciesColors {
		species = append(species, sp)
	}
	sort.Strings(species)
	for _, sp := range species {
		b.WriteString(sp)
		b.WriteByte('=')
		b.WriteString(p.SpeciesColors[sp])
		b.WriteByte(',')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func writeSortedInts(b *strings.Builder, set map[int]bool) {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		b.WriteString(strconv.Itoa(id))
		b.WriteByte(',')
	}
	b.WriteByte('|')
}

func writeSortedStrings(b *strings.Builder, set map[string]bool) {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte(',')
	}
	b.WriteByte('|')
}
