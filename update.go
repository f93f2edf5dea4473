package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m model) Init() tea.Cmd {
	if m.config.Open != "" {
		return readDocumentCmd(m.config.Open, true)
	}
	return nil
}

func readDocumentCmd(path string, startup bool) tea.Cmd {
	return func() tea.Msg {
		doc, err := readDocumentFile(path)
		return documentReadMsg{path: path, doc: doc, err: err, startup: startup}
	}
}

func writeFileCmd(path string, data []byte) tea.Cmd {
	return func() tea.Msg {
		return fileWrittenMsg{path: path, err: writeDocumentFile(path, data)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(m.width-2, 10))
		m.ensureCursorInBounds()
		return m, nil

	case fileWrittenMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("Export failed: %v", msg.err)
			m.logger.Error("export failed", zap.String("path", msg.path), zap.Error(msg.err))
			return m, nil
		}
		m.successMessage = "Exported to " + msg.path
		m.logger.Info("board exported", zap.String("path", msg.path))
		return m, nil

	case documentReadMsg:
		m.applyDocument(msg)
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == ModeEditing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) applyDocument(msg documentReadMsg) {
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("Import failed: %v", msg.err)
		m.logger.Warn("import failed", zap.String("path", msg.path), zap.Error(msg.err))
		return
	}

	var dropped int
	var err error
	if msg.startup {
		dropped, err = m.ctrl.Open(msg.doc)
	} else {
		dropped, err = m.ctrl.ImportDocument(msg.doc)
	}
	m.ctrl.TakeStatus()
	if err != nil {
		m.errorMessage = fmt.Sprintf("Import failed: %v", err)
		return
	}

	m.panX, m.panY = 0, 0
	m.successMessage = "Imported " + filepath.Base(msg.path)
	if dropped > 0 {
		m.successMessage += fmt.Sprintf(" (%d dangling connectors dropped)", dropped)
	}
}

// flash surfaces the controller's message unless something more specific
// was already reported.
func (m *model) flash() {
	if s := m.ctrl.TakeStatus(); s != "" && m.successMessage == "" && m.errorMessage == "" {
		m.successMessage = s
	}
}

func (m *model) fail(err error) {
	if err != nil {
		m.errorMessage = err.Error()
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.help {
		return m.handleHelpKey(msg)
	}

	switch m.mode {
	case ModeEditing:
		return m.handleEditingKey(msg)
	case ModeMove:
		return m.handleMoveKey(msg)
	case ModeFileInput:
		return m.handleFileInputKey(msg)
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	}

	m.errorMessage = ""
	m.successMessage = ""
	cmd := m.handleNormalKey(msg)
	m.flash()
	return m, cmd
}

func (m model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		m.helpScroll++
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	}
	return m, nil
}

func (m *model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.confirm(ConfirmQuit, "")
	case key.Matches(msg, k.Help):
		m.help = true
	case key.Matches(msg, k.SelectTool):
		m.ctrl.SetTool(ToolSelect)
	case key.Matches(msg, k.StickyTool):
		m.ctrl.SetTool(ToolSticky)
	case key.Matches(msg, k.ConnectTool):
		m.ctrl.SetTool(ToolConnect)
	case key.Matches(msg, k.Palette):
		kind := paletteKinds[msg.Runes[0]-'1']
		if _, err := m.ctrl.PlaceShape(kind); err != nil {
			m.fail(err)
		}

	case key.Matches(msg, k.Click):
		_, err := m.ctrl.Click(m.cursorScene())
		m.fail(err)
	case key.Matches(msg, k.Edit):
		if n := m.nodeUnderCursor(); n != nil {
			return m.startEditing(n)
		}
	case key.Matches(msg, k.Move):
		m.startMove()
	case key.Matches(msg, k.Delete):
		m.deleteSelected()
	case key.Matches(msg, k.Copy):
		m.copyLabel()
	case key.Matches(msg, k.Paste):
		m.pasteSticky()
	case key.Matches(msg, k.Undo):
		if err := m.ctrl.Undo(); err != nil && !errors.Is(err, ErrNothingToUndo) {
			m.fail(err)
		}
	case key.Matches(msg, k.Cancel):
		m.ctrl.CancelPending()
		m.ctrl.ClearSelection()

	case key.Matches(msg, k.Export):
		m.startFileInput(FileOpExport)
	case key.Matches(msg, k.Import):
		m.startFileInput(FileOpImport)
	case key.Matches(msg, k.SavePNG):
		m.startFileInput(FileOpSavePNG)
	case key.Matches(msg, k.SaveText):
		m.startFileInput(FileOpSaveVisualTXT)
	case key.Matches(msg, k.Clear):
		if !m.ctrl.Scene().Empty() {
			m.confirm(ConfirmClearBoard, "")
		}

	case key.Matches(msg, k.Pan):
		m.zPanMode = !m.zPanMode
	case key.Matches(msg, k.Navigate):
		m.handleNavigation(msg.String(), m.getMoveSpeed(msg.String()))
	}
	return nil
}

func (m *model) startMove() {
	n := m.nodeUnderCursor()
	if n == nil {
		return
	}
	if err := m.ctrl.BeginMove(n.ID, n.Position()); err != nil {
		m.fail(err)
		return
	}
	_ = m.ctrl.Select(n.ID)
	m.movePointer = n.Position()
	m.mode = ModeMove
}

// deleteSelected asks first when confirmations are on. Nothing selected is
// a no-op.
func (m *model) deleteSelected() {
	id := m.ctrl.SelectedID()
	if id == "" {
		return
	}
	if m.config.Confirmations {
		m.confirm(ConfirmDeleteNode, id)
		return
	}
	m.fail(m.ctrl.Delete(id))
}

func (m *model) copyLabel() {
	n := m.ctrl.Selected()
	if n == nil {
		m.errorMessage = "Nothing selected"
		return
	}
	if err := writeClipboardText(n.Label); err != nil {
		m.errorMessage = fmt.Sprintf("Clipboard unavailable: %v", err)
		return
	}
	m.successMessage = "Copied label"
}

func (m *model) pasteSticky() {
	raw, err := readClipboardText()
	if err != nil {
		m.errorMessage = fmt.Sprintf("Clipboard unavailable: %v", err)
		return
	}
	label := pastedLabel(raw)
	if label == "" {
		m.errorMessage = "Clipboard is empty"
		return
	}
	if _, err := m.ctrl.CreateSticky(m.cursorScene(), label); err != nil {
		m.fail(err)
		return
	}
	m.successMessage = "Pasted"
}

func (m *model) confirm(action ConfirmAction, nodeID string) {
	m.mode = ModeConfirm
	m.confirmAction = action
	m.confirmNodeID = nodeID
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		m.errorMessage, m.successMessage = "", ""
		switch m.confirmAction {
		case ConfirmDeleteNode:
			m.fail(m.ctrl.Delete(m.confirmNodeID))
		case ConfirmClearBoard:
			m.ctrl.Clear()
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmOverwriteFile:
			cmd = m.performFileOp(m.pendingPath)
			m.pendingPath = ""
		}
		m.confirmNodeID = ""
		m.flash()
	case "n", "N", "esc":
		m.mode = ModeNormal
		m.confirmNodeID = ""
		m.pendingPath = ""
		m.successMessage = "Cancelled"
	}
	return m, cmd
}

func (m *model) startFileInput(op FileOperation) {
	if (op == FileOpSavePNG || op == FileOpSaveVisualTXT) && m.ctrl.Scene().Empty() {
		m.errorMessage = "Nothing to export"
		return
	}
	m.fileOp = op
	m.mode = ModeFileInput
	m.errorMessage = ""
	if op == FileOpImport {
		m.scanDocuments()
		return
	}
	m.filename = strings.TrimSuffix(exportFileName(m.now()), ".json")
}

func (m *model) fileExtension() string {
	switch m.fileOp {
	case FileOpSavePNG:
		return ".png"
	case FileOpSaveVisualTXT:
		return ".txt"
	default:
		return ".json"
	}
}

func (m *model) filePath() string {
	name := m.filename
	ext := m.fileExtension()
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return m.config.GetSavePath(name)
}

// scanDocuments lists the JSON files in the save directory for the import
// picker.
func (m *model) scanDocuments() {
	m.fileList = nil
	m.selectedFileIndex = -1
	m.filename = ""

	dir := m.config.SaveDirectory
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			m.fileList = append(m.fileList, entry.Name())
		}
	}
	sort.Strings(m.fileList)
	if len(m.fileList) > 0 {
		m.selectFile(0)
	}
}

func (m *model) selectFile(i int) {
	m.selectedFileIndex = i
	m.filename = strings.TrimSuffix(m.fileList[i], filepath.Ext(m.fileList[i]))
}

func (m model) handleFileInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.filename = ""
		m.errorMessage = ""
		return m, nil

	case tea.KeyEnter:
		if m.filename == "" {
			m.errorMessage = "Filename cannot be empty"
			return m, nil
		}
		path := m.filePath()
		m.errorMessage = ""
		if m.fileOp == FileOpImport {
			m.mode = ModeNormal
			return m, readDocumentCmd(path, false)
		}
		if _, err := os.Stat(path); err == nil {
			m.pendingPath = path
			m.confirm(ConfirmOverwriteFile, "")
			return m, nil
		}
		m.mode = ModeNormal
		cmd := m.performFileOp(path)
		return m, cmd

	case tea.KeyUp:
		if m.fileOp == FileOpImport && m.selectedFileIndex > 0 {
			m.selectFile(m.selectedFileIndex - 1)
		}
	case tea.KeyDown:
		if m.fileOp == FileOpImport && m.selectedFileIndex < len(m.fileList)-1 {
			m.selectFile(m.selectedFileIndex + 1)
		}
	case tea.KeyBackspace:
		if runes := []rune(m.filename); len(runes) > 0 {
			m.filename = string(runes[:len(runes)-1])
		}
	case tea.KeySpace:
		m.filename += " "
	case tea.KeyRunes:
		m.filename += string(msg.Runes)
	}
	return m, nil
}

// performFileOp runs the chosen export. JSON is written in the background;
// the image and text renderers read the live scene so they run here.
func (m *model) performFileOp(path string) tea.Cmd {
	switch m.fileOp {
	case FileOpExport:
		data, err := m.ctrl.Export(m.now())
		if err != nil {
			m.errorMessage = fmt.Sprintf("Export failed: %v", err)
			return nil
		}
		return writeFileCmd(path, data)
	case FileOpSavePNG:
		if err := ExportToPNG(m.ctrl.Scene(), path); err != nil {
			m.errorMessage = fmt.Sprintf("PNG export failed: %v", err)
			return nil
		}
		m.successMessage = "Saved " + path
	case FileOpSaveVisualTXT:
		if err := exportVisualTXT(m.ctrl.Scene(), path, m.config.CellWidth, m.config.CellHeight); err != nil {
			m.errorMessage = fmt.Sprintf("Text export failed: %v", err)
			return nil
		}
		m.successMessage = "Saved " + path
	}
	m.logger.Info("file written", zap.String("path", path))
	return nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.help || m.mode == ModeFileInput || m.mode == ModeConfirm {
		return m, nil
	}
	row := msg.Y - toolbarHeight

	switch msg.Type {
	case tea.MouseWheelUp:
		m.panY -= 3
	case tea.MouseWheelDown:
		m.panY += 3

	case tea.MouseLeft:
		if row < 0 || row >= m.canvasHeight() {
			return m, nil
		}
		switch m.mode {
		case ModeEditing:
			m.commitEdit()
		case ModeMove:
			m.ctrl.EndMove()
			m.mode = ModeNormal
		}
		m.errorMessage = ""
		m.successMessage = ""
		m.cursorX, m.cursorY = msg.X, row
		m.ensureCursorInBounds()

		pos := m.sceneAt(msg.X, row)
		hit, err := m.ctrl.Click(pos)
		m.fail(err)
		m.flash()
		if hit == nil {
			m.lastClickID = ""
			return m, nil
		}
		now := m.now()
		if hit.ID == m.lastClickID && now.Sub(m.lastClickAt) <= doubleClickInterval {
			m.lastClickID = ""
			cmd := m.startEditing(hit)
			return m, cmd
		}
		m.lastClickID, m.lastClickAt = hit.ID, now
		if err := m.ctrl.BeginMove(hit.ID, pos); err == nil {
			m.mouseDown = true
		}

	case tea.MouseMotion:
		if !m.mouseDown || !m.ctrl.Dragging() {
			return m, nil
		}
		m.cursorX, m.cursorY = msg.X, row
		m.ensureCursorInBounds()
		m.fail(m.ctrl.DragTo(m.sceneAt(msg.X, row)))

	case tea.MouseRelease:
		if !m.mouseDown {
			return m, nil
		}
		m.mouseDown = false
		if m.ctrl.EndMove() {
			m.successMessage = "Moved"
		}
	}
	return m, nil
}
