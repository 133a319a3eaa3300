package view

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/vanderheijden86/treebrowse/pkg/config"
	"github.com/vanderheijden86/treebrowse/pkg/layout"
	"github.com/vanderheijden86/treebrowse/pkg/loader"
	"github.com/vanderheijden86/treebrowse/pkg/model"
	"github.com/vanderheijden86/treebrowse/pkg/service"
	"github.com/vanderheijden86/treebrowse/pkg/testutil"
)

const ctrlAlignment = `>A
MKRT-A
>B
MK-TLA
>C
GGKRAA
>D
GG-TAA
>E
MMMM-M
`

func newTestController(t *testing.T) *Controller {
	t.Helper()
	root := testutil.Internal(0,
		testutil.Internal(1,
			testutil.Internal(1, testutil.Tip("A", 1), testutil.Tip("B", 1)),
			testutil.Tip("C", 2),
		),
		testutil.Internal(1, testutil.Tip("D", 2), testutil.Tip("E", 3)),
	)
	root.Walk(func(n *model.TreeNode) {
		switch n.Name {
		case "A", "B":
			n.Species = "Pvul"
		case "C", "D", "E":
			n.Species = "Atha"
		}
	})
	model.Renumber(root)
	snap := testutil.MustSnapshot(t, root)
	aln, err := loader.ParseFasta(strings.NewReader(ctrlAlignment))
	if err != nil {
		t.Fatalf("alignment fixture: %v", err)
	}
	svc := service.New(&loader.Data{Snapshot: snap, Alignment: aln})
	c := NewController(svc, config.DefaultConfig())
	c.copyFn = func(string) error { return nil }
	return c
}

func nodeByName(snap *model.Snapshot, name string) *model.TreeNode {
	var found *model.TreeNode
	snap.Root.Walk(func(n *model.TreeNode) {
		if n.Name == name {
			found = n
		}
	})
	return found
}

func cladeOver(snap *model.Snapshot, names ...string) *model.TreeNode {
	want := strings.Join(names, ",")
	var found *model.TreeNode
	snap.Root.Walk(func(n *model.TreeNode) {
		if !n.IsTip() && strings.Join(n.Tips(), ",") == want {
			found = n
		}
	})
	return found
}

func TestActivateDispatch(t *testing.T) {
	c := newTestController(t)
	snap := c.Snapshot()
	ab := cladeOver(snap, "A", "B")
	tipA := nodeByName(snap, "A")

	if err := c.Activate(tipA.ID, Modifiers{}); err != nil {
		t.Fatalf("plain activate: %v", err)
	}
	if c.State().SelectedNodeID != tipA.ID || c.State().SelectedTipName != "A" {
		t.Error("plain activation must select")
	}

	if err := c.Activate(ab.ID, Modifiers{Ctrl: true}); err != nil {
		t.Fatalf("ctrl activate: %v", err)
	}
	if !c.State().CollapsedIDs[ab.ID] {
		t.Error("ctrl activation on an internal node must collapse")
	}

	// Ctrl on a tip falls back to selection.
	if err := c.Activate(tipA.ID, Modifiers{Ctrl: true}); err != nil {
		t.Fatalf("ctrl on tip: %v", err)
	}
	if c.State().SelectedNodeID != tipA.ID {
		t.Error("ctrl on a tip must select it")
	}

	if err := c.Activate(ab.ID, Modifiers{Shift: true}); err != nil {
		t.Fatalf("shift activate: %v", err)
	}
	if !c.Focused() || c.Snapshot().TipCount != 2 {
		t.Error("shift activation must focus the subtree")
	}
	c.RestoreFull()

	tipE := nodeByName(c.Snapshot(), "E")
	before := c.Snapshot()
	if err := c.Activate(tipE.ID, Modifiers{Ctrl: true, Shift: true}); err != nil {
		t.Fatalf("ctrl+shift activate: %v", err)
	}
	if c.Snapshot() == before {
		t.Error("ctrl+shift activation must reroot")
	}

	if err := c.Activate(99999, Modifiers{}); err == nil {
		t.Error("unknown node must error")
	}
}

func TestSelectCopiesAlignedSequences(t *testing.T) {
	c := newTestController(t)
	var copied string
	c.copyFn = func(s string) error { copied = s; return nil }
	snap := c.Snapshot()

	if err := c.Select(nodeByName(snap, "A").ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	if copied != ">A\nMKRT-A\n" {
		t.Errorf("tip copy = %q", copied)
	}
	if !strings.Contains(c.Notice, "1 sequence") {
		t.Errorf("notice = %q", c.Notice)
	}

	if err := c.Select(cladeOver(snap, "A", "B").ID); err != nil {
		t.Fatalf("select clade: %v", err)
	}
	if copied != ">A\nMKRT-A\n>B\nMK-TLA\n" {
		t.Errorf("clade copy = %q", copied)
	}
	if c.State().SelectedTipName != "" {
		t.Error("internal selection must not set a selected tip name")
	}
}

func TestSelectClipboardFailureIsANotice(t *testing.T) {
	c := newTestController(t)
	c.copyFn = func(string) error { return errors.New("no display") }
	if err := c.Select(nodeByName(c.Snapshot(), "A").ID); err != nil {
		t.Fatalf("clipboard failure must not fail the selection: %v", err)
	}
	if c.Notice != "clipboard copy failed" {
		t.Errorf("notice = %q", c.Notice)
	}
}

func TestSelectionIsNotUndoable(t *testing.T) {
	c := newTestController(t)
	if err := c.Select(nodeByName(c.Snapshot(), "A").ID); err != nil {
		t.Fatal(err)
	}
	if c.CanUndo() {
		t.Error("selection must not create undo history")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	c := newTestController(t)
	ab := cladeOver(c.Snapshot(), "A", "B")
	before := c.state.ToSession()

	if err := c.ToggleCollapse(ab.ID); err != nil {
		t.Fatalf("collapse: %v", err)
	}
	after := c.state.ToSession()
	if reflect.DeepEqual(before, after) {
		t.Fatal("collapse changed nothing")
	}

	if !c.Undo() {
		t.Fatal("undo unavailable")
	}
	if got := c.state.ToSession(); !reflect.DeepEqual(got, before) {
		t.Errorf("undo state = %+v, want %+v", got, before)
	}
	if !c.CanRedo() {
		t.Fatal("redo should be available after undo")
	}

	if !c.Redo() {
		t.Fatal("redo unavailable")
	}
	if got := c.state.ToSession(); !reflect.DeepEqual(got, after) {
		t.Errorf("redo state = %+v, want %+v", got, after)
	}
}

func TestNewOperationClearsRedo(t *testing.T) {
	c := newTestController(t)
	snap := c.Snapshot()
	ab := cladeOver(snap, "A", "B")
	de := cladeOver(snap, "D", "E")

	if err := c.ToggleCollapse(ab.ID); err != nil {
		t.Fatal(err)
	}
	c.Undo()
	if err := c.ToggleCollapse(de.ID); err != nil {
		t.Fatal(err)
	}
	if c.CanRedo() {
		t.Error("a fresh operation must clear the redo stack")
	}
}

func TestUndoDepthCap(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tuning.UndoDepth = 3

	root := testutil.BalancedTree(3)
	snap, err := model.NewSnapshot(root)
	if err != nil {
		t.Fatal(err)
	}
	svc := service.New(&loader.Data{Snapshot: snap})
	c := NewController(svc, cfg)

	var internals []int
	snap.Root.Walk(func(n *model.TreeNode) {
		if !n.IsTip() && n != snap.Root {
			internals = append(internals, n.ID)
		}
	})
	if len(internals) < 5 {
		t.Fatalf("fixture too small: %d internals", len(internals))
	}
	for _, id := range internals[:5] {
		if err := c.ToggleCollapse(id); err != nil {
			t.Fatal(err)
		}
	}

	undos := 0
	for c.Undo() {
		undos++
	}
	if undos != 3 {
		t.Errorf("undo count = %d, want the configured cap 3", undos)
	}
}

func TestUndoRestoresSnapshots(t *testing.T) {
	c := newTestController(t)
	fullSnap := c.Snapshot()
	ab := cladeOver(fullSnap, "A", "B")

	if err := c.FocusSubtree(ab.ID); err != nil {
		t.Fatalf("focus: %v", err)
	}
	if c.Snapshot() == fullSnap {
		t.Fatal("focus must swap the snapshot")
	}
	if !c.Undo() {
		t.Fatal("undo unavailable")
	}
	if c.Snapshot() != fullSnap {
		t.Error("undo must restore the previous snapshot pointer")
	}
	if c.Focused() {
		t.Error("undo must restore the unfocused state")
	}
}

func TestFocusSubtreeAndRestore(t *testing.T) {
	c := newTestController(t)
	fullSnap := c.Snapshot()
	ab := cladeOver(fullSnap, "A", "B")

	c.Pan(40, 40)
	if err := c.Select(nodeByName(fullSnap, "C").ID); err != nil {
		t.Fatal(err)
	}
	if err := c.FocusSubtree(ab.ID); err != nil {
		t.Fatalf("focus: %v", err)
	}

	focused := c.Snapshot()
	if focused.TipCount != 2 {
		t.Errorf("focused tip count = %d", focused.TipCount)
	}
	if focused.Root.ID != 0 {
		t.Errorf("focused root id = %d, want renumbered 0", focused.Root.ID)
	}
	st := c.State()
	if st.SelectedNodeID != -1 || st.Transform != IdentityTransform() {
		t.Error("focus must reset selection and transform")
	}
	if st.FocusedRootID != ab.ID {
		t.Errorf("focused root id in state = %d, want %d", st.FocusedRootID, ab.ID)
	}

	// Focusing never mutates the full tree.
	if fullSnap.TipCount != 5 {
		t.Error("full snapshot mutated")
	}

	c.RestoreFull()
	if c.Snapshot() != fullSnap || c.Focused() {
		t.Error("restore must bring back the retained full tree")
	}
}

func TestFocusErrors(t *testing.T) {
	c := newTestController(t)
	snap := c.Snapshot()
	if err := c.FocusSubtree(nodeByName(snap, "A").ID); err == nil {
		t.Error("focusing a tip must fail")
	}
	if err := c.FocusSubtree(snap.Root.ID); err != nil {
		t.Errorf("focusing the root is a no-op, not an error: %v", err)
	}
	if c.Focused() {
		t.Error("root focus must not activate focus")
	}
}

func TestRerootErrorLeavesStateUntouched(t *testing.T) {
	c := newTestController(t)
	snap := c.Snapshot()
	before := c.state.ToSession()

	err := c.Reroot(snap.Root.ID)
	if !errors.Is(err, service.ErrRerootTarget) {
		t.Fatalf("err = %v", err)
	}
	if c.Snapshot() != snap {
		t.Error("failed reroot must keep the snapshot")
	}
	if !reflect.DeepEqual(c.state.ToSession(), before) {
		t.Error("failed reroot must keep the view state")
	}
	if c.CanUndo() {
		t.Error("failed reroot must not create history")
	}
	if c.Notice == "" {
		t.Error("failed reroot should surface a notice")
	}
}

func TestRerootResetsViewState(t *testing.T) {
	c := newTestController(t)
	snap := c.Snapshot()
	ab := cladeOver(snap, "A", "B")
	if err := c.ToggleCollapse(ab.ID); err != nil {
		t.Fatal(err)
	}
	if err := c.Reroot(nodeByName(snap, "E").ID); err != nil {
		t.Fatalf("reroot: %v", err)
	}
	st := c.State()
	if len(st.CollapsedIDs) != 0 {
		t.Error("reroot must clear the collapse set (old ids are meaningless)")
	}
	if c.Snapshot().TipCount != 5 {
		t.Errorf("tip count = %d", c.Snapshot().TipCount)
	}
}

func TestRerootEndsSubtreeFocus(t *testing.T) {
	c := newTestController(t)
	full := c.Snapshot()
	abc := cladeOver(full, "A", "B", "C")
	if err := c.FocusSubtree(abc.ID); err != nil {
		t.Fatalf("focus: %v", err)
	}

	tipA := nodeByName(c.Snapshot(), "A")
	if err := c.Reroot(tipA.ID); err != nil {
		t.Fatalf("reroot: %v", err)
	}
	if c.Focused() || c.State().FocusedRootID != -1 {
		t.Error("reroot must end subtree focus")
	}

	// The retained pre-focus tree no longer contains the new root, so
	// restoring must be a no-op rather than discarding the reroot.
	rerooted := c.Snapshot()
	c.RestoreFull()
	if c.Snapshot() != rerooted {
		t.Error("restore after reroot must keep the rerooted tree")
	}

	if !c.Undo() {
		t.Fatal("undo after reroot")
	}
	if !c.Focused() || c.Snapshot().TipCount != 3 {
		t.Error("undo must return to the focused subtree")
	}
	if !c.Undo() {
		t.Fatal("undo after focus")
	}
	if c.Focused() || c.Snapshot() != full {
		t.Error("second undo must return to the full tree")
	}
}

func TestZoomAtKeepsCursorFixed(t *testing.T) {
	c := newTestController(t)
	c.Pan(10, -5)
	tr := c.State().Transform

	// The world point under the cursor must stay under it after zooming.
	cx, cy := 100.0, 60.0
	wx := (cx - tr.TX) / tr.Scale
	wy := (cy - tr.TY) / tr.Scale

	c.ZoomAt(cx, cy, 1.5)
	tr = c.State().Transform
	if got := tr.Scale*wx + tr.TX; got != cx {
		t.Errorf("cursor x drifted to %g", got)
	}
	if got := tr.Scale*wy + tr.TY; got != cy {
		t.Errorf("cursor y drifted to %g", got)
	}
	if tr.Scale != 1.5 {
		t.Errorf("scale = %g", tr.Scale)
	}

	c.ResetTransform()
	if c.State().Transform != IdentityTransform() {
		t.Error("reset must restore the identity transform")
	}
}

func TestNameSearch(t *testing.T) {
	c := newTestController(t)

	if err := c.SetNameSearch("^[ab]$"); err != nil {
		t.Fatalf("search: %v", err)
	}
	st := c.State()
	if !st.NameMatches["A"] || !st.NameMatches["B"] || st.NameMatches["C"] {
		t.Errorf("matches = %v", st.NameMatches)
	}

	if err := c.SetNameSearch("["); !errors.Is(err, service.ErrInvalidPattern) {
		t.Errorf("bad pattern err = %v", err)
	}
	if len(c.State().NameMatches) != 0 || c.State().NamePattern != "" {
		t.Error("bad pattern must clear the highlight")
	}

	if err := c.SetNameSearch(""); err != nil {
		t.Fatal(err)
	}
	if len(c.State().NameMatches) != 0 {
		t.Error("empty pattern must clear the highlight")
	}
}

func TestAddMotifAssignsPaletteInOrder(t *testing.T) {
	c := newTestController(t)

	if err := c.AddMotif("KR", service.MotifRegex); err != nil {
		t.Fatalf("first motif: %v", err)
	}
	if err := c.AddMotif("G-G", service.MotifProsite); err != nil {
		t.Fatalf("second motif: %v", err)
	}
	motifs := c.State().Motifs
	if len(motifs) != 2 {
		t.Fatalf("motif count = %d", len(motifs))
	}
	if motifs[0].Color == motifs[1].Color {
		t.Error("consecutive motifs must take distinct palette colors")
	}
	if !motifs[0].Tips["A"] || !motifs[0].Tips["C"] {
		t.Errorf("KR tips = %v", motifs[0].Tips)
	}
	if !motifs[1].Tips["C"] || !motifs[1].Tips["D"] {
		t.Errorf("GG tips = %v", motifs[1].Tips)
	}

	if err := c.AddMotif("[", service.MotifRegex); err == nil {
		t.Error("bad motif pattern must fail")
	}
	if len(c.State().Motifs) != 2 {
		t.Error("failed motif search must not register a highlight")
	}

	c.ClearMotifs()
	if len(c.State().Motifs) != 0 {
		t.Error("clear must drop all motifs")
	}
}

func TestSharedNodesHighlight(t *testing.T) {
	c := newTestController(t)
	c.SetSharedNodes([]string{"Pvul", "Atha"}, nil)
	if len(c.State().SharedNodes) != 2 {
		t.Errorf("shared nodes = %v", c.State().SharedNodes)
	}
}

func TestCheckedSpeciesColoring(t *testing.T) {
	c := newTestController(t)
	c.ToggleSpecies("Pvul")
	c.ToggleSpecies("Atha")
	p := c.State().RenderParams()
	if len(p.SpeciesColors) != 2 {
		t.Fatalf("species colors = %v", p.SpeciesColors)
	}
	if p.SpeciesColors["Atha"] == p.SpeciesColors["Pvul"] {
		t.Error("checked species must get distinct colors")
	}
	c.ToggleSpecies("Pvul")
	if _, ok := c.State().RenderParams().SpeciesColors["Pvul"]; ok {
		t.Error("unchecking must remove the species color")
	}
}

func TestLargeTreeSeedsDegradations(t *testing.T) {
	root := testutil.BalancedTree(11) // 2048 tips
	snap, err := model.NewSnapshot(root)
	if err != nil {
		t.Fatal(err)
	}
	c := NewController(service.New(&loader.Data{Snapshot: snap}), config.DefaultConfig())
	st := c.State()
	if len(st.CollapsedIDs) == 0 {
		t.Error("large tree must be seeded with an auto-collapse set")
	}
	if !st.FastMode {
		t.Error("large tree must start in fast mode")
	}
	if st.ShowTipLabels {
		t.Error("large tree must start without tip labels")
	}
}

func TestSmallTreeSkipsDegradations(t *testing.T) {
	c := newTestController(t)
	st := c.State()
	if len(st.CollapsedIDs) != 0 || st.FastMode || !st.ShowTipLabels {
		t.Errorf("small tree state: collapsed=%d fast=%v labels=%v",
			len(st.CollapsedIDs), st.FastMode, st.ShowTipLabels)
	}
}

func TestRenderCacheLifecycle(t *testing.T) {
	c := newTestController(t)
	c.ToggleFastMode()

	c.Render()
	c.Render()
	if hits, lookups := c.CacheStats(); hits != 1 || lookups != 2 {
		t.Errorf("stats after repeat render = %d/%d, want 1/2", hits, lookups)
	}

	ab := cladeOver(c.Snapshot(), "A", "B")
	if err := c.ToggleCollapse(ab.ID); err != nil {
		t.Fatal(err)
	}
	c.Render()
	if hits, _ := c.CacheStats(); hits != 1 {
		t.Error("collapse must invalidate the cached scene")
	}

	// Pan/zoom is draw-time only and must keep the cache warm.
	c.Pan(25, 0)
	c.ZoomAt(0, 0, 2)
	c.Render()
	if hits, _ := c.CacheStats(); hits != 2 {
		t.Error("pan/zoom must not invalidate the cached scene")
	}
}

func TestExpandAll(t *testing.T) {
	c := newTestController(t)
	snap := c.Snapshot()
	if err := c.ToggleCollapse(cladeOver(snap, "A", "B").ID); err != nil {
		t.Fatal(err)
	}
	if err := c.ToggleCollapse(cladeOver(snap, "D", "E").ID); err != nil {
		t.Fatal(err)
	}
	c.ExpandAll()
	if len(c.State().CollapsedIDs) != 0 {
		t.Error("expand all must clear the collapse set")
	}
	if !c.Undo() {
		t.Fatal("expand all must be undoable")
	}
	if len(c.State().CollapsedIDs) != 2 {
		t.Errorf("undo restored %d collapsed", len(c.State().CollapsedIDs))
	}
}

func TestSummaryCounts(t *testing.T) {
	c := newTestController(t)
	if c.Summary() != nil {
		t.Error("no selection means no summary")
	}
	if err := c.AddMotif("KR", service.MotifRegex); err != nil {
		t.Fatal(err)
	}
	abc := cladeOver(c.Snapshot(), "A", "B", "C")
	if err := c.Select(abc.ID); err != nil {
		t.Fatal(err)
	}
	sum := c.Summary()
	if sum == nil {
		t.Fatal("summary missing")
	}
	if sum.TipCount != 3 || sum.Species["Pvul"] != 2 || sum.Species["Atha"] != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Motifs["KR"] != 2 {
		t.Errorf("motif count = %d, want A and C", sum.Motifs["KR"])
	}
}

func TestLayoutUsesCurrentState(t *testing.T) {
	c := newTestController(t)
	if got := c.Layout().Terminals; got != 5 {
		t.Errorf("terminals = %d", got)
	}
	c.SetMode(layout.Circular)
	res := c.Layout()
	if res.Root.Radius != 0 {
		t.Errorf("circular root radius = %g", res.Root.Radius)
	}
}
