package view

import (
	"fmt"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/treebrowse/pkg/layout"
	"github.com/vanderheijden86/treebrowse/pkg/render"
)

// SessionState is the serialized form of a view State. Sets are flattened
// to sorted slices so the encoding is deterministic and diffs cleanly.
type SessionState struct {
	Mode             string         `json:"mode"`
	Phylogram        bool           `json:"phylogram"`
	TipSpacing       float64        `json:"tip_spacing"`
	TriangleScale    float64        `json:"triangle_scale"`
	UniformTriangles bool           `json:"uniform_triangles,omitempty"`
	FastMode         bool           `json:"fast_mode"`
	ShowTipLabels    bool           `json:"show_tip_labels"`
	ShowSupport      bool           `json:"show_support"`
	CollapsedIDs     []int          `json:"collapsed_ids,omitempty"`
	SelectedNodeID   int            `json:"selected_node_id"`
	SelectedTipName  string         `json:"selected_tip_name,omitempty"`
	FocusedRootID    int            `json:"focused_root_id"`
	Transform        Transform      `json:"transform"`
	NamePattern      string         `json:"name_pattern,omitempty"`
	NameMatches      []string       `json:"name_matches,omitempty"`
	Motifs           []SessionMotif `json:"motifs,omitempty"`
	SharedNodes      []int          `json:"shared_nodes,omitempty"`
	CheckedSpecies   []string       `json:"checked_species,omitempty"`
}

// SessionMotif is the serialized form of a motif highlight.
type SessionMotif struct {
	Pattern string   `json:"pattern"`
	Color   string   `json:"color"`
	Tips    []string `json:"tips,omitempty"`
}

// ToSession flattens the state into its serialized form.
func (s *State) ToSession() SessionState {
	sess := SessionState{
		Mode:             s.Mode.String(),
		Phylogram:        s.Phylogram,
		TipSpacing:       s.TipSpacing,
		TriangleScale:    s.TriangleScale,
		UniformTriangles: s.UniformTriangles,
		FastMode:         s.FastMode,
		ShowTipLabels:    s.ShowTipLabels,
		ShowSupport:      s.ShowSupport,
		CollapsedIDs:     sortedIntSet(s.CollapsedIDs),
		SelectedNodeID:   s.SelectedNodeID,
		SelectedTipName:  s.SelectedTipName,
		FocusedRootID:    s.FocusedRootID,
		Transform:        s.Transform,
		NamePattern:      s.NamePattern,
		NameMatches:      sortedStringSet(s.NameMatches),
		SharedNodes:      sortedIntSet(s.SharedNodes),
		CheckedSpecies:   sortedStringSet(s.CheckedSpecies),
	}
	for _, m := range s.Motifs {
		sess.Motifs = append(sess.Motifs, SessionMotif{
			Pattern: m.Pattern,
			Color:   m.Color,
			Tips:    sortedStringSet(m.Tips),
		})
	}
	return sess
}

// FromSession rebuilds a State from its serialized form.
func FromSession(sess SessionState) *State {
	s := &State{
		Mode:             layout.ParseMode(sess.Mode),
		Phylogram:        sess.Phylogram,
		TipSpacing:       sess.TipSpacing,
		TriangleScale:    sess.TriangleScale,
		UniformTriangles: sess.UniformTriangles,
		FastMode:         sess.FastMode,
		ShowTipLabels:    sess.ShowTipLabels,
		ShowSupport:      sess.ShowSupport,
		CollapsedIDs:     intSet(sess.CollapsedIDs),
		SelectedNodeID:   sess.SelectedNodeID,
		SelectedTipName:  sess.SelectedTipName,
		FocusedRootID:    sess.FocusedRootID,
		Transform:        sess.Transform,
		NamePattern:      sess.NamePattern,
		NameMatches:      stringSet(sess.NameMatches),
		SharedNodes:      intSet(sess.SharedNodes),
		CheckedSpecies:   stringSet(sess.CheckedSpecies),
	}
	if s.Transform.Scale == 0 {
		s.Transform = IdentityTransform()
	}
	for _, m := range sess.Motifs {
		s.Motifs = append(s.Motifs, render.MotifHighlight{
			Pattern: m.Pattern,
			Color:   m.Color,
			Tips:    stringSet(m.Tips),
		})
	}
	return s
}

// MarshalSession encodes the current view state as JSON.
func (c *Controller) MarshalSession() ([]byte, error) {
	data, err := json.MarshalIndent(c.state.ToSession(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return data, nil
}

// RestoreSession replaces the view state from serialized JSON. Only view
// state is restored; the tree snapshot is whatever is currently loaded, so
// stale node ids are dropped rather than trusted.
func (c *Controller) RestoreSession(data []byte) error {
	var sess SessionState
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("decoding session: %w", err)
	}
	state := FromSession(sess)
	snap := c.svc.Tree()
	for id := range state.CollapsedIDs {
		if snap.Node(id) == nil {
			delete(state.CollapsedIDs, id)
		}
	}
	for id := range state.SharedNodes {
		if snap.Node(id) == nil {
			delete(state.SharedNodes, id)
		}
	}
	if state.SelectedNodeID >= 0 && snap.Node(state.SelectedNodeID) == nil {
		state.SelectedNodeID = -1
		state.SelectedTipName = ""
	}
	// Focus cannot be reconstructed from a session: the focus id refers to
	// the full tree retained when focus began, and that tree is gone. Keep
	// the controller's current focus status instead of trusting the session.
	if c.full == nil {
		state.FocusedRootID = -1
	} else {
		state.FocusedRootID = c.state.FocusedRootID
	}
	c.state = state
	c.cache.Invalidate()
	return nil
}

func sortedIntSet(in map[int]bool) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func sortedStringSet(in map[string]bool) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func intSet(in []int) map[int]bool {
	out := make(map[int]bool, len(in))
	for _, k := range in {
		out[k] = true
	}
	return out
}

func stringSet(in []string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, k := range in {
		out[k] = true
	}
	return out
}
