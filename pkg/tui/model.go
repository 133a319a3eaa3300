// Package tui is the terminal front-end of the tree browser: an outline
// view over the current snapshot driven by the view controller, with
// reload-on-change and snapshot export.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/treebrowse/pkg/config"
	"github.com/vanderheijden86/treebrowse/pkg/export"
	"github.com/vanderheijden86/treebrowse/pkg/layout"
	"github.com/vanderheijden86/treebrowse/pkg/loader"
	"github.com/vanderheijden86/treebrowse/pkg/model"
	"github.com/vanderheijden86/treebrowse/pkg/service"
	"github.com/vanderheijden86/treebrowse/pkg/session"
	"github.com/vanderheijden86/treebrowse/pkg/view"
	"github.com/vanderheijden86/treebrowse/pkg/watcher"
)

const defaultSessionName = "default"

// FileChangedMsg signals the watched tree file changed on disk.
type FileChangedMsg struct{}

// TreeReloadedMsg carries the result of an async reload.
type TreeReloadedMsg struct {
	Data *loader.Data
	Err  error
}

// row is one visible line of the outline: a node reachable from the root
// without passing through a collapsed ancestor.
type row struct {
	node  *model.TreeNode
	depth int
}

// Model is the bubbletea model for the tree browser.
type Model struct {
	ctrl   *view.Controller
	cfg    config.Config
	keys   KeyMap
	store  *session.Store
	w      *watcher.Watcher
	inputs loader.Inputs

	rows   []row
	cursor int
	offset int

	width, height int
	showHelp      bool
	statusMsg     string
	exportBase    string
}

// Options configures the TUI model.
type Options struct {
	Controller *view.Controller
	Config     config.Config
	Store      *session.Store // optional session store
	Watcher    *watcher.Watcher
	Inputs     loader.Inputs
	ExportBase string // base filename for snapshot export
}

// NewModel builds the TUI model.
func NewModel(opts Options) Model {
	m := Model{
		ctrl:       opts.Controller,
		cfg:        opts.Config,
		keys:       DefaultKeyMap(),
		store:      opts.Store,
		w:          opts.Watcher,
		inputs:     opts.Inputs,
		exportBase: opts.ExportBase,
	}
	if m.exportBase == "" {
		m.exportBase = "tree-snapshot"
	}
	m.rebuildRows()
	return m
}

// Init starts the file watcher listener when one is attached.
func (m Model) Init() tea.Cmd {
	if m.w != nil {
		return WatchFileCmd(m.w)
	}
	return nil
}

// WatchFileCmd blocks on the watcher's change channel.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ReloadCmd reloads the tree inputs asynchronously.
func ReloadCmd(inputs loader.Inputs) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		data, err := loader.Load(ctx, inputs)
		return TreeReloadedMsg{Data: data, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case FileChangedMsg:
		m.statusMsg = "tree file changed, reloading..."
		cmds := []tea.Cmd{ReloadCmd(m.inputs)}
		if m.w != nil {
			cmds = append(cmds, WatchFileCmd(m.w))
		}
		return m, tea.Batch(cmds...)

	case TreeReloadedMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("reload failed: %v", msg.Err)
			return m, nil
		}
		// A reload replaces the snapshot wholesale, so the controller
		// restarts with fresh state; ids from the old tree are stale.
		m.ctrl = view.NewController(service.New(msg.Data), m.cfg)
		m.cursor = 0
		m.offset = 0
		m.rebuildRows()
		m.statusMsg = fmt.Sprintf("reloaded: %d tips", m.ctrl.Snapshot().TipCount)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.viewportHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.viewportHeight())

	case key.Matches(msg, m.keys.Select):
		if n := m.currentNode(); n != nil {
			if err := m.ctrl.Select(n.ID); err != nil {
				m.statusMsg = err.Error()
			} else {
				m.statusMsg = m.selectionStatus(n)
			}
		}

	case key.Matches(msg, m.keys.Collapse):
		if n := m.currentNode(); n != nil && !n.IsTip() {
			if err := m.ctrl.ToggleCollapse(n.ID); err != nil {
				m.statusMsg = err.Error()
			}
			m.rebuildRows()
		}

	case key.Matches(msg, m.keys.ExpandAll):
		m.ctrl.ExpandAll()
		m.rebuildRows()

	case key.Matches(msg, m.keys.Focus):
		if n := m.currentNode(); n != nil && !n.IsTip() {
			if err := m.ctrl.FocusSubtree(n.ID); err != nil {
				m.statusMsg = err.Error()
			} else {
				m.cursor, m.offset = 0, 0
				m.statusMsg = fmt.Sprintf("focused subtree (%d tips)", m.ctrl.Snapshot().TipCount)
			}
			m.rebuildRows()
		}

	case key.Matches(msg, m.keys.RestoreFull):
		m.ctrl.RestoreFull()
		m.cursor, m.offset = 0, 0
		m.rebuildRows()

	case key.Matches(msg, m.keys.Reroot):
		if n := m.currentNode(); n != nil {
			if err := m.ctrl.Reroot(n.ID); err != nil {
				m.statusMsg = m.ctrl.Notice
			} else {
				m.cursor, m.offset = 0, 0
				m.statusMsg = "rerooted"
			}
			m.rebuildRows()
		}

	case key.Matches(msg, m.keys.CycleMode):
		m.ctrl.SetMode(nextMode(m.ctrl.State().Mode))
	case key.Matches(msg, m.keys.Phylogram):
		m.ctrl.TogglePhylogram()
	case key.Matches(msg, m.keys.Labels):
		m.ctrl.ToggleTipLabels()
	case key.Matches(msg, m.keys.FastMode):
		m.ctrl.ToggleFastMode()

	case key.Matches(msg, m.keys.Undo):
		if m.ctrl.Undo() {
			m.cursor, m.offset = 0, 0
			m.rebuildRows()
			m.statusMsg = "undo"
		} else {
			m.statusMsg = "nothing to undo"
		}
	case key.Matches(msg, m.keys.Redo):
		if m.ctrl.Redo() {
			m.cursor, m.offset = 0, 0
			m.rebuildRows()
			m.statusMsg = "redo"
		} else {
			m.statusMsg = "nothing to redo"
		}

	case key.Matches(msg, m.keys.ZoomIn):
		m.ctrl.ZoomAt(float64(m.width)/2, float64(m.viewportHeight())/2, 1.25)
	case key.Matches(msg, m.keys.ZoomOut):
		m.ctrl.ZoomAt(float64(m.width)/2, float64(m.viewportHeight())/2, 0.8)
	case key.Matches(msg, m.keys.PanLeft):
		m.ctrl.Pan(-40, 0)
	case key.Matches(msg, m.keys.PanRight):
		m.ctrl.Pan(40, 0)

	case key.Matches(msg, m.keys.Export):
		m.statusMsg = m.exportSnapshot("svg")
	case key.Matches(msg, m.keys.ExportPNG):
		m.statusMsg = m.exportSnapshot("png")

	case key.Matches(msg, m.keys.SaveSession):
		m.statusMsg = m.saveSession()
	case key.Matches(msg, m.keys.LoadSession):
		m.statusMsg = m.loadSession()
		m.cursor, m.offset = 0, 0
		m.rebuildRows()
	}
	return m, nil
}

func nextMode(mode layout.Mode) layout.Mode {
	switch mode {
	case layout.Rectangular:
		return layout.Circular
	case layout.Circular:
		return layout.Unrooted
	default:
		return layout.Rectangular
	}
}

func (m *Model) exportSnapshot(format string) string {
	snap := m.ctrl.Snapshot()
	opts := export.TreeSnapshotOptions{
		Path:     fmt.Sprintf("%s.%s", m.exportBase, format),
		Format:   format,
		Scene:    m.ctrl.Render(),
		DataHash: snap.DataHash,
		TipCount: snap.TipCount,
	}
	if err := export.SaveTreeSnapshot(opts); err != nil {
		return fmt.Sprintf("export failed: %v", err)
	}
	return fmt.Sprintf("wrote %s", opts.Path)
}

func (m *Model) saveSession() string {
	if m.store == nil {
		return "no session store"
	}
	data, err := m.ctrl.MarshalSession()
	if err != nil {
		return err.Error()
	}
	if err := m.store.Save(defaultSessionName, m.ctrl.Snapshot().DataHash, data); err != nil {
		return err.Error()
	}
	return "session saved"
}

func (m *Model) loadSession() string {
	if m.store == nil {
		return "no session store"
	}
	data, hash, err := m.store.Load(defaultSessionName)
	if err != nil {
		return err.Error()
	}
	if err := m.ctrl.RestoreSession(data); err != nil {
		return err.Error()
	}
	if hash != m.ctrl.Snapshot().DataHash {
		return "session restored (saved against a different tree)"
	}
	return "session restored"
}

// rebuildRows flattens the visible outline: pre-order, stopping descent at
// collapsed nodes.
func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]
	snap := m.ctrl.Snapshot()
	if snap.IsEmpty() {
		return
	}
	collapsed := m.ctrl.State().CollapsedIDs
	var walk func(n *model.TreeNode, depth int)
	walk = func(n *model.TreeNode, depth int) {
		m.rows = append(m.rows, row{node: n, depth: depth})
		if collapsed[n.ID] {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(snap.Root, 0)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampScroll()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.clampScroll()
}

func (m *Model) clampScroll() {
	h := m.viewportHeight()
	if h <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) viewportHeight() int {
	h := m.height - 2 // title + status
	if m.showHelp {
		h -= 3
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) currentNode() *model.TreeNode {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

func (m Model) selectionStatus(n *model.TreeNode) string {
	if n.IsTip() {
		if m.ctrl.Notice != "" {
			return fmt.Sprintf("selected tip %s (%s)", n.Name, m.ctrl.Notice)
		}
		return fmt.Sprintf("selected tip %s", n.Name)
	}
	sum := m.ctrl.Summary()
	if sum == nil {
		return "selected"
	}
	return fmt.Sprintf("selected clade: %d tips, %d species", sum.TipCount, len(sum.Species))
}

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteByte('\n')

	h := m.viewportHeight()
	end := m.offset + h
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteByte('\n')
	}
	for i := end - m.offset; i < h; i++ {
		b.WriteByte('\n')
	}

	if m.showHelp {
		b.WriteString(m.helpLines())
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) titleLine() string {
	snap := m.ctrl.Snapshot()
	st := m.ctrl.State()
	mode := st.Mode.String()
	if !st.Phylogram {
		mode += " cladogram"
	}
	focus := ""
	if m.ctrl.Focused() {
		focus = "  [focused]"
	}
	title := fmt.Sprintf("treebrowse  %d tips  %s%s", snap.TipCount, mode, focus)
	return titleStyle.Render(runewidth.Truncate(title, m.width-2, "…"))
}

func (m Model) renderRow(i int) string {
	r := m.rows[i]
	n := r.node
	st := m.ctrl.State()

	indent := strings.Repeat("  ", r.depth)
	var marker, text string
	switch {
	case st.CollapsedIDs[n.ID]:
		marker = collapseStyle.Render("▶ ")
		text = fmt.Sprintf("clade (%d tips)", model.CountAllTips(n))
	case n.IsTip():
		marker = "· "
		text = n.Name
		if n.Species != "" {
			text += supportStyle.Render("  [" + n.Species + "]")
		}
	default:
		marker = "▼ "
		text = fmt.Sprintf("(%d tips)", model.CountAllTips(n))
		if n.Support != nil {
			text += supportStyle.Render(fmt.Sprintf("  %.0f", *n.Support))
		}
	}

	style := internalStyle
	switch {
	case n.ID == st.SelectedNodeID:
		style = selectedStyle
	case st.SharedNodes[n.ID]:
		style = sharedStyle
	case n.IsTip() && st.NameMatches[n.Name]:
		style = matchStyle
	case n.IsTip():
		style = tipStyle
	}

	line := indent + marker + style.Render(text)
	line = runewidth.Truncate(line, m.width-1, "…")
	if i == m.cursor {
		return cursorStyle.Render(line)
	}
	return line
}

func (m Model) statusLine() string {
	if m.statusMsg != "" {
		return noticeStyle.Render(runewidth.Truncate(m.statusMsg, m.width-2, "…"))
	}
	st := m.ctrl.State()
	hits, lookups := m.ctrl.CacheStats()
	parts := []string{
		fmt.Sprintf("zoom %.0f%%", st.Transform.Scale*100),
	}
	if st.FastMode {
		parts = append(parts, fmt.Sprintf("fast (cache %d/%d)", hits, lookups))
	}
	if len(st.CollapsedIDs) > 0 {
		parts = append(parts, fmt.Sprintf("%d collapsed", len(st.CollapsedIDs)))
	}
	parts = append(parts, "? help")
	return statusStyle.Render(strings.Join(parts, "  ·  "))
}

func (m Model) helpLines() string {
	rows := []string{
		"enter select   c collapse   f focus   F restore   r reroot   x expand all",
		"m mode   p phylogram   L labels   b fast mode   u undo   U redo",
		"+/- zoom   ←/→ pan   e/E export svg/png   w/W save/load session   q quit",
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(helpStyle.Render(runewidth.Truncate(r, m.width-2, "…")))
		b.WriteByte('\n')
	}
	return b.String()
}
