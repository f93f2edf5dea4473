package main

import tea "github.com/charmbracelet/bubbletea"

const toolbarHeight = 1

func (m *model) handleNavigation(key string, speed int) {
	if m.zPanMode {
		m.handlePan(key, speed)
		return
	}
	m.handleCursorMove(key, speed)
}

func (m *model) handlePan(key string, speed int) {
	dx, dy := direction(key)
	m.panX += dx * speed
	m.panY += dy * speed
}

func (m *model) handleCursorMove(key string, speed int) {
	dx, dy := direction(key)
	m.cursorX += dx * speed
	m.cursorY += dy * speed
	m.ensureCursorInBounds()
}

// direction maps a navigation key to a unit step in cells.
func direction(key string) (int, int) {
	switch key {
	case "h", "left", "H", "shift+left":
		return -1, 0
	case "l", "right", "L", "shift+right":
		return 1, 0
	case "k", "up", "K", "shift+up":
		return 0, -1
	case "j", "down", "J", "shift+down":
		return 0, 1
	}
	return 0, 0
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

func (m *model) canvasHeight() int {
	h := m.height - toolbarHeight - 1
	if m.mode == ModeEditing {
		h -= editorHeight
	}
	return max(h, 1)
}

func (m *model) ensureCursorInBounds() {
	m.cursorX = max(m.cursorX, 0)
	m.cursorY = max(m.cursorY, 0)
	if m.width > 0 && m.cursorX >= m.width {
		m.cursorX = m.width - 1
	}
	if maxY := m.canvasHeight() - 1; m.cursorY > maxY {
		m.cursorY = maxY
	}
}

func (m *model) viewport() viewport {
	return viewport{
		panX:   m.panX,
		panY:   m.panY,
		cellW:  m.config.CellWidth,
		cellH:  m.config.CellHeight,
		width:  max(m.width, 1),
		height: m.canvasHeight(),
	}
}

// handleMoveKey nudges the node being moved one cell per step. Enter keeps
// the new position, Esc puts it back.
func (m model) handleMoveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.ctrl.EndMove() {
			m.successMessage = "Moved"
		}
		m.mode = ModeNormal
		return m, nil
	case "esc":
		m.ctrl.CancelMove()
		m.mode = ModeNormal
		m.successMessage = "Cancelled"
		return m, nil
	}

	dx, dy := direction(msg.String())
	if dx == 0 && dy == 0 {
		return m, nil
	}
	speed := float64(m.getMoveSpeed(msg.String()))
	m.movePointer = m.movePointer.Add(Point{
		X: float64(dx) * speed * m.config.CellWidth,
		Y: float64(dy) * speed * m.config.CellHeight,
	})
	if err := m.ctrl.DragTo(m.movePointer); err != nil {
		m.errorMessage = err.Error()
	}
	return m, nil
}
