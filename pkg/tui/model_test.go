package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/treebrowse/pkg/config"
	"github.com/vanderheijden86/treebrowse/pkg/layout"
	"github.com/vanderheijden86/treebrowse/pkg/loader"
	"github.com/vanderheijden86/treebrowse/pkg/model"
	"github.com/vanderheijden86/treebrowse/pkg/service"
	"github.com/vanderheijden86/treebrowse/pkg/testutil"
	"github.com/vanderheijden86/treebrowse/pkg/view"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	root := testutil.Internal(0,
		testutil.Internal(1,
			testutil.Internal(1, testutil.Tip("A", 1), testutil.Tip("B", 1)),
			testutil.Tip("C", 2),
		),
		testutil.Internal(1, testutil.Tip("D", 2), testutil.Tip("E", 3)),
	)
	model.Renumber(root)
	snap := testutil.MustSnapshot(t, root)
	ctrl := view.NewController(service.New(&loader.Data{Snapshot: snap}), config.DefaultConfig())

	m := NewModel(Options{Controller: ctrl, Config: config.DefaultConfig()})
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return sized.(Model)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestRowsFollowCollapseState(t *testing.T) {
	m := newTestModel(t)
	if len(m.rows) != 9 {
		t.Fatalf("row count = %d, want every node visible", len(m.rows))
	}

	// Cursor to the (A, B) clade (root, left clade, then AB) and collapse.
	m = press(t, m, keyRune('j'))
	m = press(t, m, keyRune('j'))
	if m.currentNode().IsTip() {
		t.Fatalf("cursor landed on a tip: %v", m.currentNode().Name)
	}
	m = press(t, m, keyRune('c'))
	if len(m.rows) != 7 {
		t.Errorf("row count after collapse = %d, want descendants hidden", len(m.rows))
	}

	m = press(t, m, keyRune('x'))
	if len(m.rows) != 9 {
		t.Errorf("row count after expand all = %d", len(m.rows))
	}
}

func TestCursorClamps(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyRune('k'))
	if m.cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.cursor)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	if m.cursor != len(m.rows)-1 {
		t.Errorf("cursor = %d, want the last row", m.cursor)
	}
}

func TestModeCycle(t *testing.T) {
	m := newTestModel(t)
	modes := []layout.Mode{layout.Circular, layout.Unrooted, layout.Rectangular}
	for _, want := range modes {
		m = press(t, m, keyRune('m'))
		if got := m.ctrl.State().Mode; got != want {
			t.Errorf("mode = %v, want %v", got, want)
		}
	}
}

func TestFocusAndRestoreKeys(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyRune('j'))
	m = press(t, m, keyRune('f'))
	if !m.ctrl.Focused() {
		t.Fatal("focus key did not focus the subtree")
	}
	if got := m.ctrl.Snapshot().TipCount; got != 3 {
		t.Errorf("focused tips = %d, want the (A, B, C) clade", got)
	}
	if len(m.rows) != 5 {
		t.Errorf("focused rows = %d", len(m.rows))
	}

	m = press(t, m, keyRune('F'))
	if m.ctrl.Focused() || len(m.rows) != 9 {
		t.Error("restore key did not bring back the full tree")
	}
}

func TestUndoKey(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyRune('j'))
	m = press(t, m, keyRune('c'))
	if len(m.rows) != 5 {
		t.Fatalf("rows after collapsing the left clade = %d", len(m.rows))
	}
	m = press(t, m, keyRune('u'))
	if len(m.rows) != 9 {
		t.Errorf("undo did not restore the outline: %d rows", len(m.rows))
	}
	if m.statusMsg != "undo" {
		t.Errorf("status = %q", m.statusMsg)
	}
	m = press(t, m, keyRune('u'))
	if m.statusMsg != "nothing to undo" {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, keyRune('?'))
	if !m.showHelp {
		t.Fatal("help not shown")
	}
	if !strings.Contains(m.View(), "enter select") {
		t.Error("help text missing from view")
	}
	m = press(t, m, keyRune('?'))
	if m.showHelp {
		t.Error("help not hidden again")
	}
}

func TestViewShowsOutline(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	if !strings.Contains(out, "treebrowse") || !strings.Contains(out, "5 tips") {
		t.Errorf("title line missing:\n%s", out)
	}
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		if !strings.Contains(out, name) {
			t.Errorf("tip %s missing from outline", name)
		}
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key did not produce a quit message")
	}
}

func TestTreeReloadReplacesController(t *testing.T) {
	m := newTestModel(t)
	old := m.ctrl

	root := testutil.CaterpillarTree(4)
	snap := testutil.MustSnapshot(t, root)
	next, _ := m.Update(TreeReloadedMsg{Data: &loader.Data{Snapshot: snap}})
	m = next.(Model)

	if m.ctrl == old {
		t.Error("reload must rebuild the controller")
	}
	if m.ctrl.Snapshot().TipCount != 4 {
		t.Errorf("reloaded tips = %d", m.ctrl.Snapshot().TipCount)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want reset", m.cursor)
	}
	if !strings.Contains(m.statusMsg, "reloaded") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestReloadFailureKeepsTree(t *testing.T) {
	m := newTestModel(t)
	old := m.ctrl
	next, _ := m.Update(TreeReloadedMsg{Err: errFake})
	m = next.(Model)
	if m.ctrl != old {
		t.Error("failed reload must keep the current controller")
	}
	if !strings.Contains(m.statusMsg, "reload failed") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

var errFake = &fakeErr{}

type fakeErr struct{}

func (*fakeErr) Error() string { return "boom" }
