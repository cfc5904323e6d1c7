package tui

import (
	"context"
	"fmt"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TranscriptEditor is the part of editor.Editor the TUI drives.
type TranscriptEditor interface {
	Records() []*domain.DebateRecord
	SetAgentVotes(key domain.Key, text string) (*domain.DebateRecord, error)
	Save(ctx context.Context) error
	Dirty() bool
}

type editorMode int

const (
	modeBrowse editorMode = iota
	modeEdit
)

// debateItem wraps a record for the list display.
type debateItem struct {
	rec *domain.DebateRecord
}

func (i debateItem) Title() string {
	return fmt.Sprintf("%s #%d", i.rec.Topic, i.rec.Number())
}
func (i debateItem) Description() string { return "Winner: " + i.rec.Outcome.String() }
func (i debateItem) FilterValue() string { return i.rec.Topic }

type savedMsg struct{ err error }

// EditorModel browses debates and overwrites their agent votes.
//
//	enter   edit the agent votes of the selected debate
//	ctrl+s  apply the edit and save the transcript
//	esc     discard the edit
//	q       quit
type EditorModel struct {
	ctx      context.Context
	editor   TranscriptEditor
	list     list.Model
	input    textarea.Model
	mode     editorMode
	selected domain.Key
	status   string
	errorMsg string
}

// NewEditorModel creates the editor model over the loaded records.
func NewEditorModel(ctx context.Context, ed TranscriptEditor) *EditorModel {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)
	debates := list.New(items(ed.Records()), delegate, 0, 0)
	debates.Title = "Debates"
	debates.SetShowStatusBar(false)
	debates.SetFilteringEnabled(true)

	input := textarea.New()
	input.Placeholder = `{"Player 1": "stance", "Player 2": "stance", "Player 3": "stance"}`
	input.ShowLineNumbers = false
	input.SetHeight(5)

	return &EditorModel{
		ctx:    ctx,
		editor: ed,
		list:   debates,
		input:  input,
		status: fmt.Sprintf("%d debates loaded", len(ed.Records())),
	}
}

func items(records []*domain.DebateRecord) []list.Item {
	out := make([]list.Item, len(records))
	for i, r := range records {
		out[i] = debateItem{rec: r}
	}
	return out
}

// Init implements tea.Model.
func (m *EditorModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		m.input.SetWidth(msg.Width - 4)
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			m.status = "Save failed"
			return m, nil
		}
		m.errorMsg = ""
		m.status = fmt.Sprintf("Saved %s #%d", m.selected.Topic, m.selected.Number)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == modeEdit {
			return m.updateEdit(msg)
		}
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "enter":
				return m.startEdit()
			}
		}
	}

	if m.mode == modeEdit {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *EditorModel) startEdit() (tea.Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(debateItem)
	if !ok {
		return m, nil
	}
	m.selected = item.rec.Key()
	m.mode = modeEdit
	m.errorMsg = ""
	m.status = fmt.Sprintf("Editing %s #%d", m.selected.Topic, m.selected.Number)
	m.input.SetValue(item.rec.AgentVotes.String())
	return m, m.input.Focus()
}

func (m *EditorModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		m.errorMsg = ""
		m.status = "Edit discarded"
		return m, nil
	case "ctrl+s":
		rec, err := m.editor.SetAgentVotes(m.selected, m.input.Value())
		if err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.mode = modeBrowse
		m.input.Blur()
		m.list.SetItems(items(m.editor.Records()))
		m.status = fmt.Sprintf("Saving %s #%d", rec.Topic, rec.Number())
		return m, m.save()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *EditorModel) save() tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: m.editor.Save(m.ctx)}
	}
}

// View implements tea.Model.
func (m *EditorModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#a78bfa")).
		MarginBottom(1)

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1)

	header := titleStyle.Render("AGORA TRANSCRIPT EDITOR")

	var content string
	if m.mode == modeEdit {
		content = fmt.Sprintf("Agent votes for %s #%d\n\n%s\n\nctrl+s save • esc cancel",
			m.selected.Topic, m.selected.Number, m.input.View())
	} else {
		content = m.list.View()
	}

	if m.errorMsg != "" {
		errBlock := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1).
			Render(fmt.Sprintf("⚠ %s", m.errorMsg))
		content = fmt.Sprintf("%s\n\n%s", content, errBlock)
	}

	status := m.status
	if m.editor.Dirty() {
		status += " (unsaved changes)"
	}
	return fmt.Sprintf("%s\n%s\n%s", header, content, statusStyle.Render(status))
}

// RunEditor runs the editor full screen until the user quits.
func RunEditor(ctx context.Context, ed TranscriptEditor) error {
	_, err := tea.NewProgram(NewEditorModel(ctx, ed), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
