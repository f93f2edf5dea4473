package main

import "time"

type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
	ModeMove
	ModeFileInput
	ModeConfirm
)

type Tool int

const (
	ToolSelect Tool = iota
	ToolSticky
	ToolShape
	ToolConnect
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolSticky:
		return "sticky"
	case ToolShape:
		return "shape"
	case ToolConnect:
		return "connect"
	default:
		return "unknown"
	}
}

type FileOperation int

const (
	FileOpExport FileOperation = iota
	FileOpImport
	FileOpSavePNG
	FileOpSaveVisualTXT
)

type ConfirmAction int

const (
	ConfirmDeleteNode ConfirmAction = iota
	ConfirmClearBoard
	ConfirmQuit
	ConfirmOverwriteFile
)

const (
	defaultHistoryLimit    = 50
	defaultConnectorOffset = 80.0
	defaultCellWidth       = 8.0
	defaultCellHeight      = 16.0

	defaultStickyText = "New note"
	stickyWidth       = 160.0
	stickyHeight      = 90.0
	stickyPadding     = 8.0

	arrowPointerLength = 10.0
	arrowPointerWidth  = 10.0

	// Shapes picked from the palette land at a random spot inside this area.
	paletteOriginX = 300.0
	paletteOriginY = 120.0
	paletteSpread  = 200.0

	doubleClickInterval = 400 * time.Millisecond
)

// Board limits. The x/y validate tags on NodeRecord repeat maxCoordinate.
const (
	maxCoordinate = 100000.0

	maxConnectorSamples = 4096
	maxExportPixels     = 64 << 20
	maxExportCells      = 4 << 20
)

const (
	selectedStroke      = "#7c3aed"
	selectedStrokeWidth = 3.0
	pendingStroke       = "#0ea5e9"
	connectorStroke     = "#1f2937"
	connectorWidth      = 3.0
	labelColor          = "#111111"
)
