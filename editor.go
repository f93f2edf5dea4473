package main

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const editorHeight = 4

func newEditor() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Label…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "│ "
	ta.SetHeight(editorHeight)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("enter"))
	ta.Blur()
	return ta
}

func (m *model) startEditing(n *Node) tea.Cmd {
	m.ctrl.EndMove()
	m.mouseDown = false
	m.editingID = n.ID
	m.mode = ModeEditing
	_ = m.ctrl.Select(n.ID)
	m.editor.SetWidth(max(m.width-2, 10))
	m.editor.SetValue(n.Label)
	m.editor.CursorEnd()
	return m.editor.Focus()
}

// commitEdit writes the edited label back; an unchanged label leaves no
// history entry.
func (m *model) commitEdit() {
	if m.mode != ModeEditing {
		return
	}
	if err := m.ctrl.EditLabel(m.editingID, m.editor.Value()); err != nil {
		m.errorMessage = err.Error()
	}
	m.stopEditing()
}

func (m *model) discardEdit() {
	m.stopEditing()
	m.successMessage = "Edit discarded"
}

func (m *model) stopEditing() {
	m.editor.Blur()
	m.editor.Reset()
	m.editingID = ""
	m.mode = ModeNormal
}

func (m model) handleEditingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Commit):
		m.commitEdit()
		return m, nil
	case key.Matches(msg, m.keys.Discard):
		m.discardEdit()
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}
