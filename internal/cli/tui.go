package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowcanvas/pkg/action"
	ferrors "github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// addableTypes are the element types the editor cycles through with "t".
var addableTypes = []flow.ElementType{
	flow.ElementScreen,
	flow.ElementAssignment,
	flow.ElementDecision,
	flow.ElementLoop,
	flow.ElementWait,
	flow.ElementRecordCreate,
	flow.ElementRecordUpdate,
	flow.ElementSubflow,
}

// editorKeys is the help line of the editor.
const editorKeys = "↑/↓ move  a add  t type  d delete  space select  u undo  r redo  " +
	"s/e/x session  c canvas  w save  q quit"

// =============================================================================
// EditorModel - Interactive flow editor
// =============================================================================

// EditorModel is the bubbletea model of the flow editor. Every key press
// becomes one action dispatched to the store.
type EditorModel struct {
	Store   store.Store
	Save    func(*flow.Model) error
	Cursor  int
	AddType int
	Changes int
	Dirty   bool
	Status  string
	Err     error
	Height  int
	Offset  int

	unsubscribe func()
}

// NewEditorModel creates an editor over s. save is called by "w" and may
// be nil for a read-only session.
func NewEditorModel(s store.Store, save func(*flow.Model) error) *EditorModel {
	m := &EditorModel{Store: s, Save: save, Height: 15}
	m.unsubscribe = s.Subscribe(func(*flow.Model) {
		m.Changes++
		m.Dirty = true
	})
	return m
}

// Close removes the editor's store subscription.
func (m *EditorModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *EditorModel) Init() tea.Cmd {
	return nil
}

func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// handleKey applies one key press. It returns tea.Quit for "q".
func (m *EditorModel) handleKey(key string) tea.Cmd {
	m.Err, m.Status = nil, ""
	elements := m.elements()
	current := ""
	if m.Cursor < len(elements) {
		current = elements[m.Cursor].GUID
	}

	switch key {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "up", "k":
		m.moveCursor(-1, len(elements))
	case "down", "j":
		m.moveCursor(1, len(elements))
	case "t":
		m.AddType = (m.AddType + 1) % len(addableTypes)
	case "a":
		t := addableTypes[m.AddType]
		m.dispatch(action.AddElement{
			Element:  action.NewElement{Type: t, Label: strings.ToLower(string(t))},
			Position: action.Position{Prev: current},
		}, "Added "+string(t))
	case "d":
		m.dispatch(action.DeleteElements{Guids: []string{current}}, "Deleted element")
	case " ", "space":
		m.dispatch(action.ToggleSelection{GUID: current}, "")
	case "u":
		m.dispatch(action.Undo{}, "Undone")
	case "r":
		m.dispatch(action.Redo{}, "Redone")
	case "s":
		m.dispatch(action.StartEditSession{}, "Session started")
	case "e":
		m.dispatch(action.EndEditSession{}, "Session committed")
	case "x":
		m.dispatch(action.DiscardEditSession{}, "Session discarded")
	case "c":
		auto := !m.Store.State().Properties.IsAutoLayoutCanvas
		mode := modeFree
		if auto {
			mode = modeAuto
		}
		m.dispatch(action.UpdateProperties{AutoLayout: &auto}, "Canvas is now "+mode)
	case "w":
		m.save()
	}
	m.moveCursor(0, len(m.elements()))
	return nil
}

func (m *EditorModel) dispatch(a action.Action, status string) {
	if err := m.Store.Dispatch(a); err != nil {
		m.Err = err
		return
	}
	m.Status = status
}

func (m *EditorModel) save() {
	if m.Save == nil {
		m.Err = ferrors.New(ferrors.ErrCodeUnsupported, "no save target")
		return
	}
	if err := m.Save(m.Store.State()); err != nil {
		m.Err = err
		return
	}
	m.Dirty = false
	m.Status = "Saved"
}

// moveCursor moves the cursor by delta and clamps it and the scroll offset
// to n rows.
func (m *EditorModel) moveCursor(delta, n int) {
	m.Cursor += delta
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// elements returns the canvas elements in canvas order.
func (m *EditorModel) elements() []*flow.Element {
	state := m.Store.State()
	out := make([]*flow.Element, 0, len(state.CanvasElements))
	for _, guid := range state.CanvasElements {
		if e, ok := state.Elements[guid]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (m *EditorModel) View() string {
	var b strings.Builder
	state := m.Store.State()

	title := state.Properties.Label
	if title == "" {
		title = "Untitled flow"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s canvas", canvasMode(state))))
	if m.Dirty {
		b.WriteString(StyleWarning.Render("  ● unsaved"))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(editorKeys))
	b.WriteString("\n\n")

	elements := m.elements()
	end := min(m.Offset+m.Height, len(elements))
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.renderRow(state, elements[i], i == m.Cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *EditorModel) renderRow(state *flow.Model, e *flow.Element, current bool) string {
	cursor := "  "
	if current {
		cursor = "▸ "
	}
	mark := " "
	if e.Config.IsSelected {
		mark = "*"
	}
	label := e.Label
	if label == "" {
		label = "—"
	}
	targets := make([]string, 0, len(state.Outgoing(e.GUID)))
	for _, c := range state.Outgoing(e.GUID) {
		if t, ok := state.Elements[c.Target]; ok {
			targets = append(targets, t.Label)
		}
	}
	line := fmt.Sprintf("%s%s %-14s %-24s", cursor, mark, e.Type, label)
	if len(targets) > 0 {
		line += listDimStyle.Render(" " + iconArrow + " " + strings.Join(targets, ", "))
	}

	switch {
	case current:
		return listSelectedStyle.Render(line)
	case e.Config.IsSelected:
		return listMarkedStyle.Render(line)
	}
	return listNormalStyle.Render(line)
}

func (m *EditorModel) renderFooter() string {
	parts := []string{
		"add " + string(addableTypes[m.AddType]),
		plural(m.Changes, "change"),
	}
	if m.Store.IsUndoAvailable() {
		parts = append(parts, "undo")
	}
	if m.Store.IsRedoAvailable() {
		parts = append(parts, "redo")
	}
	if m.Store.InSession() {
		parts = append(parts, StyleWarning.Render("session open"))
	}
	line := listDimStyle.Render("  " + strings.Join(parts, " · "))

	switch {
	case m.Err != nil:
		line += "\n" + styleIconError.Render(iconError) + " " + ferrors.UserMessage(ferrors.Classify(m.Err))
	case m.Status != "":
		line += "\n" + styleIconSuccess.Render(iconSuccess) + " " + m.Status
	}
	return line
}
