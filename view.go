package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	toolbarStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#e5e7eb")).Foreground(lipgloss.Color("#111827"))
	activeToolStyle = lipgloss.NewStyle().Background(lipgloss.Color(selectedStroke)).Foreground(lipgloss.Color("#ffffff")).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")).Bold(true)
	successStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

func (m model) View() string {
	if m.help {
		return m.helpView()
	}

	width := max(m.width, 1)
	var result strings.Builder
	result.WriteString(m.toolbarView(width))
	result.WriteString("\n")

	if m.mode == ModeFileInput && m.fileOp == FileOpImport {
		result.WriteString(m.fileListView(width))
	} else {
		result.WriteString(strings.Join(m.canvasView(), "\n"))
	}

	if m.mode == ModeEditing {
		result.WriteString("\n")
		result.WriteString(m.editor.View())
	}

	result.WriteString("\n")
	result.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(m.statusLine()))
	return result.String()
}

func (m model) toolbarView(width int) string {
	tool := m.ctrl.Tool()
	item := func(label string, active bool) string {
		if active {
			return activeToolStyle.Render(" " + label + " ")
		}
		return toolbarStyle.Render(" " + label + " ")
	}

	parts := []string{
		item("v select", tool == ToolSelect),
		item("s sticky", tool == ToolSticky),
		item("a connect", tool == ToolConnect),
		toolbarStyle.Render("│"),
	}
	for i, kind := range paletteKinds {
		parts = append(parts, item(fmt.Sprintf("%d %s", i+1, kind), false))
	}
	parts = append(parts, toolbarStyle.Render("│"), item("? help", false))

	bar := strings.Join(parts, "")
	return toolbarStyle.Width(width).MaxWidth(width).Render(bar)
}

func (m model) canvasView() []string {
	v := m.viewport()
	g := renderScene(m.ctrl.Scene(), v, highlight{
		selected: m.ctrl.SelectedID(),
		pending:  m.ctrl.PendingSource(),
	})
	if m.mode == ModeNormal || m.mode == ModeMove {
		g.set(m.cursorX, m.cursorY, '█', "")
	}
	return g.styled()
}

func (m model) fileListView(width int) string {
	var b strings.Builder
	b.WriteString("Select a whiteboard to import:\n")
	b.WriteString(strings.Repeat("─", width))
	b.WriteString("\n")

	rows := m.canvasHeight() - 3
	if len(m.fileList) == 0 {
		b.WriteString(mutedStyle.Render("(No .json files found)"))
		b.WriteString("\n")
		rows--
	} else {
		maxFiles := max(rows, 1)
		start := 0
		if m.selectedFileIndex >= maxFiles {
			start = m.selectedFileIndex - maxFiles + 1
		}
		end := min(start+maxFiles, len(m.fileList))
		for i := start; i < end; i++ {
			if i == m.selectedFileIndex {
				b.WriteString("> " + m.fileList[i] + " <")
			} else {
				b.WriteString("  " + m.fileList[i])
			}
			b.WriteString("\n")
			rows--
		}
	}
	for ; rows > 0; rows-- {
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", width))
	b.WriteString("\n")
	b.WriteString("Filename: " + m.filename + "█")
	return b.String()
}

func (m model) statusLine() string {
	switch m.mode {
	case ModeEditing:
		return fmt.Sprintf("Mode: EDIT | %s | Ctrl+S=save, click elsewhere=save, Esc=discard", m.editingID)
	case ModeMove:
		return fmt.Sprintf("Mode: MOVE | %s | hjkl/arrows=move, Enter=finish, Esc=cancel", m.ctrl.SelectedID())
	case ModeFileInput:
		return m.fileStatusLine()
	case ModeConfirm:
		return "Mode: CONFIRM | " + m.confirmMessage()
	}

	mode := strings.ToUpper(m.ctrl.Tool().String())
	if m.zPanMode {
		mode += " (PAN)"
	}
	status := fmt.Sprintf("Mode: %s | Cursor: (%d,%d)", mode, m.cursorX+m.panX, m.cursorY+m.panY)
	if src := m.ctrl.PendingSource(); src != "" {
		status += fmt.Sprintf(" | Connecting from %s (select target)", src)
	}
	if id := m.ctrl.SelectedID(); id != "" {
		status += " | Selected: " + id
	}
	switch {
	case m.errorMessage != "":
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	case m.successMessage != "":
		status += " | " + successStyle.Render(m.successMessage)
	default:
		status += mutedStyle.Render(" | ? for help | q to quit")
	}
	return status
}

func (m model) fileStatusLine() string {
	var op string
	switch m.fileOp {
	case FileOpExport:
		op = "Export JSON"
	case FileOpImport:
		op = "Import"
	case FileOpSavePNG:
		op = "Export PNG"
	case FileOpSaveVisualTXT:
		op = "Export text"
	}
	hints := "Enter=confirm, Esc=cancel"
	if m.fileOp == FileOpImport {
		hints = "↑/↓=navigate list, Type=enter name, " + hints
	}
	if m.errorMessage != "" {
		return fmt.Sprintf("Mode: FILE | %s | %s filename: %s | %s",
			errorStyle.Render("ERROR: "+m.errorMessage), op, m.filename, hints)
	}
	return fmt.Sprintf("Mode: FILE | %s filename: %s%s | %s", op, m.filename, m.fileExtension(), hints)
}

func (m model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmDeleteNode:
		return fmt.Sprintf("Delete %s and its connectors? (y/n)", m.confirmNodeID)
	case ConfirmClearBoard:
		return "Clear the whole board? (y/n)"
	case ConfirmQuit:
		return "Quit pinboard? Unsaved changes will be lost. (y/n)"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.pendingPath)
	}
	return "(y/n)"
}

func (m model) helpLines() []string {
	lines := []string{
		"Pinboard Help",
		"=============",
		"",
	}
	for _, section := range m.keys.sections() {
		lines = append(lines, section.title+":", strings.Repeat("-", len(section.title)+1))
		for _, b := range section.bindings {
			h := b.Help()
			lines = append(lines, fmt.Sprintf("  %-16s %s", h.Key, h.Desc))
		}
		lines = append(lines, "")
	}
	return append(lines,
		"Mouse:",
		"------",
		"  click            select a node, or add a sticky note with the sticky tool",
		"  drag             move a node; connectors follow",
		"  double-click     edit a label",
		"  wheel            scroll the board",
	)
}

func (m model) helpView() string {
	lines := m.helpLines()
	visible := max(m.height-1, 1)

	start := min(m.helpScroll, max(len(lines)-visible, 0))
	end := min(start+visible, len(lines))

	status := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close", start+1, end, len(lines))
	return strings.Join(lines[start:end], "\n") + "\n" + status
}
