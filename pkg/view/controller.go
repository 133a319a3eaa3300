package view

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/vanderheijden86/treebrowse/pkg/config"
	"github.com/vanderheijden86/treebrowse/pkg/debug"
	"github.com/vanderheijden86/treebrowse/pkg/layout"
	"github.com/vanderheijden86/treebrowse/pkg/model"
	"github.com/vanderheijden86/treebrowse/pkg/render"
	"github.com/vanderheijden86/treebrowse/pkg/service"
)

// Modifiers carries the modifier keys held during a node activation.
type Modifiers struct {
	Shift bool
	Ctrl  bool
}

// undoEntry captures everything a structural operation can change. Snapshot
// pointers are cheap to retain because snapshots are immutable.
type undoEntry struct {
	state *State
	snap  *model.Snapshot
	full  *model.Snapshot
}

// Controller mediates all interactions against the tree. It owns the view
// state, the undo/redo history, and the single-entry render cache, and it
// swaps snapshots on the service when the structure changes.
type Controller struct {
	svc   *service.Service
	cfg   config.Config
	state *State

	// full retains the complete tree while a subtree is focused; nil
	// means the service snapshot is the complete tree.
	full *model.Snapshot

	undo []undoEntry
	redo []undoEntry

	cache *render.Cache

	// copyFn writes text to the system clipboard; swappable in tests.
	copyFn func(string) error

	// Notice holds a transient status message for the UI, replaced by
	// the next operation that produces one.
	Notice string
}

// NewController builds a controller over a loaded service. Large trees are
// seeded with an automatic collapse set and degrade labels and per-element
// rendering per the configured thresholds.
func NewController(svc *service.Service, cfg config.Config) *Controller {
	c := &Controller{
		svc:    svc,
		cfg:    cfg,
		state:  NewState(cfg),
		cache:  render.NewCache(),
		copyFn: clipboard.WriteAll,
	}
	snap := svc.Tree()
	c.state.CollapsedIDs = layout.AutoCollapse(snap, layout.AutoCollapseOptions{
		TipThreshold: cfg.Tuning.AutoCollapseTipThreshold,
		MinGroupTips: cfg.Tuning.MinGroupTips,
		TargetGroups: cfg.Tuning.TargetGroups,
	})
	if snap.TipCount > cfg.Tuning.FastModeTipThreshold {
		c.state.FastMode = true
	}
	if snap.TipCount > cfg.Tuning.LabelTipThreshold {
		c.state.ShowTipLabels = false
	}
	debug.Log("controller: %d tips, %d auto-collapsed, fast=%v",
		snap.TipCount, len(c.state.CollapsedIDs), c.state.FastMode)
	return c
}

// State exposes the live view state. Callers must treat it as read-only;
// all mutation goes through controller methods so history stays coherent.
func (c *Controller) State() *State {
	return c.state
}

// Snapshot returns the tree currently displayed (the focused subtree when
// focus is active).
func (c *Controller) Snapshot() *model.Snapshot {
	return c.svc.Tree()
}

// Service exposes the underlying query service.
func (c *Controller) Service() *service.Service {
	return c.svc
}

// Focused reports whether a subtree focus is active.
func (c *Controller) Focused() bool {
	return c.state.FocusedRootID >= 0
}

// Layout computes node positions for the current state.
func (c *Controller) Layout() *layout.Result {
	return layout.Compute(c.svc.Tree(), c.state.LayoutParams())
}

// Render produces the current scene. In fast mode the scene is memoized on
// a fingerprint of every render-affecting input; pan/zoom is excluded from
// the fingerprint because the transform is applied at draw time.
func (c *Controller) Render() *render.Scene {
	p := c.state.RenderParams()
	if p.FastMode {
		key := p.Fingerprint(c.svc.Tree().DataHash)
		if scene, ok := c.cache.Get(key); ok {
			return scene
		}
		scene := render.Render(c.Layout(), p)
		c.cache.Put(key, scene)
		return scene
	}
	return render.Render(c.Layout(), p)
}

// CacheStats reports render cache hits and lookups.
func (c *Controller) CacheStats() (hits, lookups int) {
	return c.cache.Stats()
}

// Activate dispatches a node activation by its modifier keys: plain selects,
// ctrl toggles collapse, shift focuses the subtree, ctrl+shift reroots.
// Structural gestures on tips fall back to selection.
func (c *Controller) Activate(nodeID int, mods Modifiers) error {
	node := c.svc.Tree().Node(nodeID)
	if node == nil {
		return fmt.Errorf("%w: %d", service.ErrNodeNotFound, nodeID)
	}
	switch {
	case mods.Ctrl && mods.Shift:
		return c.Reroot(nodeID)
	case mods.Ctrl && !node.IsTip():
		return c.ToggleCollapse(nodeID)
	case mods.Shift && !node.IsTip():
		return c.FocusSubtree(nodeID)
	default:
		return c.Select(nodeID)
	}
}

// Select marks a node as selected. Selecting a tip also copies its aligned
// sequence to the clipboard when an alignment is loaded; selecting an
// internal node copies the aligned sequences of its subtree tips. Clipboard
// failure downgrades to a notice, never an error. Selection is not a
// structural change and is not undoable.
func (c *Controller) Select(nodeID int) error {
	node := c.svc.Tree().Node(nodeID)
	if node == nil {
		return fmt.Errorf("%w: %d", service.ErrNodeNotFound, nodeID)
	}
	c.state.SelectedNodeID = nodeID
	if node.IsTip() {
		c.state.SelectedTipName = node.Name
	} else {
		c.state.SelectedTipName = ""
	}
	c.copySelection(node)
	return nil
}

// ClearSelection resets the selected node.
func (c *Controller) ClearSelection() {
	c.state.SelectedNodeID = -1
	c.state.SelectedTipName = ""
}

func (c *Controller) copySelection(node *model.TreeNode) {
	if !c.svc.HasAlignment() || c.copyFn == nil {
		return
	}
	var b strings.Builder
	for _, name := range node.Tips() {
		seq, err := c.svc.TipSequence(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, ">%s\n%s\n", name, seq)
	}
	if b.Len() == 0 {
		return
	}
	if err := c.copyFn(b.String()); err != nil {
		c.Notice = "clipboard copy failed"
		debug.Log("clipboard: %v", err)
		return
	}
	c.Notice = fmt.Sprintf("copied %d sequence(s)", strings.Count(b.String(), ">"))
}

// ToggleCollapse flips the collapsed flag of an internal node. The tree
// structure is untouched; only the view's collapse set changes.
func (c *Controller) ToggleCollapse(nodeID int) error {
	node := c.svc.Tree().Node(nodeID)
	if node == nil {
		return fmt.Errorf("%w: %d", service.ErrNodeNotFound, nodeID)
	}
	if node.IsTip() {
		return fmt.Errorf("cannot collapse tip %q", node.Name)
	}
	c.pushUndo()
	if c.state.CollapsedIDs[nodeID] {
		delete(c.state.CollapsedIDs, nodeID)
	} else {
		c.state.CollapsedIDs[nodeID] = true
	}
	c.cache.Invalidate()
	return nil
}

// ExpandAll clears the entire collapse set.
func (c *Controller) ExpandAll() {
	if len(c.state.CollapsedIDs) == 0 {
		return
	}
	c.pushUndo()
	c.state.CollapsedIDs = make(map[int]bool)
	c.cache.Invalidate()
}

// FocusSubtree re-roots the display on a subtree. The subtree is cloned and
// renumbered into a fresh snapshot; the full tree is retained so focus can
// be undone or restored. Collapse state, selection and the transform reset
// because ids and geometry both change.
func (c *Controller) FocusSubtree(nodeID int) error {
	snap := c.svc.Tree()
	node := snap.Node(nodeID)
	if node == nil {
		return fmt.Errorf("%w: %d", service.ErrNodeNotFound, nodeID)
	}
	if node.IsTip() {
		return fmt.Errorf("cannot focus tip %q", node.Name)
	}
	if node == snap.Root {
		return nil
	}
	c.pushUndo()
	if c.full == nil {
		c.full = snap
	}
	sub := node.Clone()
	model.Renumber(sub)
	focused, err := model.NewSnapshot(sub)
	if err != nil {
		return fmt.Errorf("focusing subtree: %w", err)
	}
	c.svc.SetTree(focused)
	c.state.FocusedRootID = nodeID
	c.resetAfterStructure()
	return nil
}

// RestoreFull leaves subtree focus and redisplays the complete tree.
func (c *Controller) RestoreFull() {
	if c.full == nil {
		return
	}
	c.pushUndo()
	c.svc.SetTree(c.full)
	c.full = nil
	c.state.FocusedRootID = -1
	c.resetAfterStructure()
}

// Reroot re-roots the displayed tree at the midpoint of a node's branch.
// An invalid target leaves state untouched and surfaces a notice. Rerooting
// inside a focused subtree ends the focus: the retained full tree no longer
// contains the new root, so restoring it would discard the reroot.
func (c *Controller) Reroot(nodeID int) error {
	rerooted, err := c.svc.Reroot(nodeID)
	if err != nil {
		c.Notice = fmt.Sprintf("reroot: %v", err)
		return err
	}
	c.pushUndo()
	c.svc.SetTree(rerooted)
	c.full = nil
	c.state.FocusedRootID = -1
	c.resetAfterStructure()
	return nil
}

// resetAfterStructure clears view state that is meaningless after node ids
// or geometry change wholesale.
func (c *Controller) resetAfterStructure() {
	c.state.CollapsedIDs = make(map[int]bool)
	c.state.SharedNodes = make(map[int]bool)
	c.ClearSelection()
	c.state.Transform = IdentityTransform()
	c.cache.Invalidate()
}

// SetMode switches the layout mode.
func (c *Controller) SetMode(m layout.Mode) {
	if c.state.Mode == m {
		return
	}
	c.state.Mode = m
	c.cache.Invalidate()
}

// TogglePhylogram flips between branch-length and equal-step depth.
func (c *Controller) TogglePhylogram() {
	c.state.Phylogram = !c.state.Phylogram
	c.cache.Invalidate()
}

// ToggleFastMode flips batched rendering.
func (c *Controller) ToggleFastMode() {
	c.state.FastMode = !c.state.FastMode
}

// ToggleTipLabels flips tip label visibility.
func (c *Controller) ToggleTipLabels() {
	c.state.ShowTipLabels = !c.state.ShowTipLabels
}

// ToggleSupport flips support value visibility.
func (c *Controller) ToggleSupport() {
	c.state.ShowSupport = !c.state.ShowSupport
}

// Pan shifts the view transform by a screen-space delta.
func (c *Controller) Pan(dx, dy float64) {
	c.state.Transform.TX += dx
	c.state.Transform.TY += dy
}

// ZoomAt scales the view around a cursor position so the point under the
// cursor stays fixed.
func (c *Controller) ZoomAt(cx, cy, factor float64) {
	t := &c.state.Transform
	t.Scale *= factor
	t.TX = cx - factor*(cx-t.TX)
	t.TY = cy - factor*(cy-t.TY)
}

// ResetTransform restores the identity pan/zoom.
func (c *Controller) ResetTransform() {
	c.state.Transform = IdentityTransform()
}

// SetNameSearch highlights tips whose names match a case-insensitive
// regular expression. A bad pattern clears the highlight and reports the
// error; an empty pattern just clears.
func (c *Controller) SetNameSearch(pattern string) error {
	c.state.NamePattern = pattern
	c.state.NameMatches = make(map[string]bool)
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		c.state.NamePattern = ""
		return fmt.Errorf("%w: %v", service.ErrInvalidPattern, err)
	}
	for _, name := range c.svc.Tree().TipNames() {
		if re.MatchString(name) {
			c.state.NameMatches[name] = true
		}
	}
	return nil
}

// AddMotif runs a motif search over the alignment and registers the
// matching tip set as a highlight. Colors are drawn from the shared palette
// in registration order.
func (c *Controller) AddMotif(pattern string, kind service.MotifKind) error {
	matches, err := c.svc.MotifMatches(pattern, kind)
	if err != nil {
		return err
	}
	tips := make(map[string]bool, len(matches))
	for _, name := range matches {
		tips[name] = true
	}
	c.state.Motifs = append(c.state.Motifs, render.MotifHighlight{
		Pattern: pattern,
		Color:   render.PaletteColor(len(c.state.Motifs)),
		Tips:    tips,
	})
	c.Notice = fmt.Sprintf("motif %q: %d tips", pattern, len(matches))
	return nil
}

// ClearMotifs drops every motif highlight.
func (c *Controller) ClearMotifs() {
	c.state.Motifs = nil
}

// SetSharedNodes highlights internal nodes whose subtrees span all of the
// required species and none of the excluded ones.
func (c *Controller) SetSharedNodes(required, excluded []string) {
	ids := c.svc.NodesBySpecies(required, excluded)
	c.state.SharedNodes = make(map[int]bool, len(ids))
	for _, id := range ids {
		c.state.SharedNodes[id] = true
	}
	c.Notice = fmt.Sprintf("%d shared node(s)", len(ids))
}

// ToggleSpecies checks or unchecks a species for branch coloring.
func (c *Controller) ToggleSpecies(name string) {
	if c.state.CheckedSpecies[name] {
		delete(c.state.CheckedSpecies, name)
	} else {
		c.state.CheckedSpecies[name] = true
	}
}

// pushUndo records the pre-operation state. A fresh structural operation
// invalidates the redo stack, and the undo stack is capped by evicting the
// oldest entry.
func (c *Controller) pushUndo() {
	c.undo = append(c.undo, undoEntry{
		state: c.state.Clone(),
		snap:  c.svc.Tree(),
		full:  c.full,
	})
	depth := c.cfg.Tuning.UndoDepth
	if depth > 0 && len(c.undo) > depth {
		c.undo = c.undo[len(c.undo)-depth:]
	}
	c.redo = nil
}

// CanUndo reports whether an undo entry is available.
func (c *Controller) CanUndo() bool { return len(c.undo) > 0 }

// CanRedo reports whether a redo entry is available.
func (c *Controller) CanRedo() bool { return len(c.redo) > 0 }

// Undo reverts the most recent structural operation, restoring both the
// view state and the tree snapshots.
func (c *Controller) Undo() bool {
	if len(c.undo) == 0 {
		return false
	}
	entry := c.undo[len(c.undo)-1]
	c.undo = c.undo[:len(c.undo)-1]
	c.redo = append(c.redo, undoEntry{
		state: c.state.Clone(),
		snap:  c.svc.Tree(),
		full:  c.full,
	})
	c.apply(entry)
	return true
}

// Redo re-applies the most recently undone operation.
func (c *Controller) Redo() bool {
	if len(c.redo) == 0 {
		return false
	}
	entry := c.redo[len(c.redo)-1]
	c.redo = c.redo[:len(c.redo)-1]
	c.undo = append(c.undo, undoEntry{
		state: c.state.Clone(),
		snap:  c.svc.Tree(),
		full:  c.full,
	})
	c.apply(entry)
	return true
}

func (c *Controller) apply(entry undoEntry) {
	c.state = entry.state
	c.svc.SetTree(entry.snap)
	c.full = entry.full
	c.cache.Invalidate()
}

// SelectionSummary counts, per species and per motif, the tips of the
// selected subtree. A nil summary means nothing is selected.
type SelectionSummary struct {
	TipCount int
	Species  map[string]int
	Motifs   map[string]int
}

// Summary recomputes the selection summary on demand.
func (c *Controller) Summary() *SelectionSummary {
	if c.state.SelectedNodeID < 0 {
		return nil
	}
	node := c.svc.Tree().Node(c.state.SelectedNodeID)
	if node == nil {
		return nil
	}
	sum := &SelectionSummary{
		Species: make(map[string]int),
		Motifs:  make(map[string]int),
	}
	for _, tip := range node.TipNodes() {
		sum.TipCount++
		sp := tip.Species
		if sp == "" {
			sp = "unknown"
		}
		sum.Species[sp]++
		for _, m := range c.state.Motifs {
			if m.Tips[tip.Name] {
				sum.Motifs[m.Pattern]++
			}
		}
	}
	return sum
}
