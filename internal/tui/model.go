// Package tui is the terminal view: a four-field form above the records
// table, driven by a form.Session.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/aanand-mishra/student-records/internal/form"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Input positions; focusTable follows the last input.
const (
	fieldName = iota
	fieldID
	fieldEmail
	fieldContact
	focusTable
)

var fieldLabels = [...]string{"Name", "Student ID", "Email", "Contact"}

var fieldPlaceholders = [...]string{"Jane Doe", "101", "jane@example.com", "5551234567"}

// Model is the bubbletea model for the TUI.
type Model struct {
	ctx     context.Context
	store   form.Recorder
	session *form.Session
	logger  *zap.Logger
	keys    KeyMap

	inputs []textinput.Model
	table  table.Model
	rows   int
	focus  int

	confirming bool
	pending    int

	status    string
	statusErr bool
	width     int
}

// New builds the model over store. ctx bounds every store call.
func New(ctx context.Context, store form.Recorder, logger *zap.Logger) Model {
	inputs := make([]textinput.Model, len(fieldLabels))
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = fieldPlaceholders[i]
		ti.CharLimit = 128
		ti.Width = 40
		ti.Prompt = ""
		inputs[i] = ti
	}
	inputs[fieldName].Focus()

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Name", Width: 24},
			{Title: "Student ID", Width: 12},
			{Title: "Email", Width: 28},
			{Title: "Contact", Width: 14},
		}),
		table.WithHeight(10),
	)
	t.SetStyles(TableStyles())

	m := Model{
		ctx:     ctx,
		store:   store,
		session: form.NewSession(store),
		logger:  logger,
		keys:    DefaultKeyMap(),
		inputs:  inputs,
		table:   t,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > 4 {
			m.table.SetWidth(m.width - 4)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.confirming {
			return m.answerDelete(msg), nil
		}

		// Commands are taken before returning m so the returned copy
		// carries the focus change.
		var cmd tea.Cmd
		switch {
		case key.Matches(msg, m.keys.Next):
			cmd = m.setFocus((m.focus + 1) % (focusTable + 1))
			return m, cmd
		case key.Matches(msg, m.keys.Prev):
			cmd = m.setFocus((m.focus + focusTable) % (focusTable + 1))
			return m, cmd
		case key.Matches(msg, m.keys.Cancel):
			m.session.CancelEdit()
			m.clearInputs()
			m.setStatus("", false)
			cmd = m.setFocus(fieldName)
			return m, cmd
		case key.Matches(msg, m.keys.Enter):
			if m.focus == focusTable {
				cmd = m.startEdit()
				return m, cmd
			}
			return m.submit()
		}

		if m.focus == focusTable {
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.Delete):
				m.askDelete()
				return m, nil
			}
		}
	}

	return m.forward(msg)
}

// forward hands msg to the focused component.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusTable {
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	if i == focusTable {
		m.table.Focus()
		return nil
	}
	m.table.Blur()
	return m.inputs[i].Focus()
}

func (m Model) submit() (Model, tea.Cmd) {
	in := types.Student{
		Name:    m.inputs[fieldName].Value(),
		ID:      m.inputs[fieldID].Value(),
		Email:   m.inputs[fieldEmail].Value(),
		Contact: m.inputs[fieldContact].Value(),
	}

	outcome, err := m.session.Submit(m.ctx, in)
	if err != nil {
		m.logger.Debug("submit rejected", zap.Error(err))
		m.setStatus(form.Message(err), true)
		return m, nil
	}

	m.clearInputs()
	m.refresh()
	m.setStatus(form.SuccessMessage(outcome), false)
	cmd := m.setFocus(fieldName)
	return m, cmd
}

func (m *Model) startEdit() tea.Cmd {
	if m.rows == 0 {
		return nil
	}

	st, err := m.session.StartEdit(m.table.Cursor())
	if err != nil {
		m.setStatus(form.Message(err), true)
		m.refresh()
		return nil
	}

	m.inputs[fieldName].SetValue(st.Name)
	m.inputs[fieldID].SetValue(st.ID)
	m.inputs[fieldEmail].SetValue(st.Email)
	m.inputs[fieldContact].SetValue(st.Contact)
	m.setStatus("", false)
	return m.setFocus(fieldName)
}

func (m *Model) askDelete() {
	if m.rows == 0 {
		return
	}
	m.confirming = true
	m.pending = m.table.Cursor()
}

func (m Model) answerDelete(msg tea.KeyMsg) Model {
	m.confirming = false
	_, wasEditing := m.session.Editing()

	deleted, err := m.session.Delete(m.ctx, m.pending, func() bool {
		return key.Matches(msg, m.keys.Confirm)
	})
	switch {
	case err != nil:
		m.setStatus(form.Message(err), true)
	case deleted:
		m.setStatus("Student deleted.", false)
	default:
		m.setStatus("Delete cancelled.", false)
	}

	if _, editing := m.session.Editing(); wasEditing && !editing {
		m.clearInputs()
	}
	m.refresh()
	return m
}

// refresh rebuilds the table rows from the store.
func (m *Model) refresh() {
	list := m.store.List()

	rows := make([]table.Row, 0, len(list))
	for i, s := range list {
		rows = append(rows, table.Row{strconv.Itoa(i + 1), s.Name, s.ID, s.Email, s.Contact})
	}
	m.table.SetRows(rows)
	m.rows = len(rows)

	if m.rows > 0 && m.table.Cursor() >= m.rows {
		m.table.SetCursor(m.rows - 1)
	}
}

func (m *Model) clearInputs() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(m.session.SubmitLabel()))
	b.WriteString("\n")

	for i, in := range m.inputs {
		label := LabelStyle
		if m.focus == i {
			label = LabelFocusedStyle
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label.Render(fieldLabels[i]), in.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	panel := PanelStyle
	if m.focus == focusTable {
		panel = PanelFocusedStyle
	}
	if m.rows == 0 {
		b.WriteString(panel.Render(EmptyStyle.Render(form.EmptyTableText)))
	} else {
		b.WriteString(panel.Render(m.table.View()))
	}
	b.WriteString("\n")

	switch {
	case m.confirming:
		b.WriteString(ConfirmStyle.Render(form.ConfirmDeletePrompt + " (y/n)"))
	case m.statusErr:
		b.WriteString(StatusErrorStyle.Render(m.status))
	default:
		b.WriteString(StatusOKStyle.Render(m.status))
	}
	b.WriteString("\n")

	b.WriteString(HelpStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) helpLine() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, fmt.Sprintf("%s %s", h.Key, h.Desc))
	}
	return strings.Join(parts, " • ")
}

// Run starts the TUI on the alternate screen and blocks until it quits.
func Run(ctx context.Context, store form.Recorder, logger *zap.Logger) error {
	p := tea.NewProgram(New(ctx, store, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui.Run: %w", err)
	}
	return nil
}
