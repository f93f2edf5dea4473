package main

import (
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"go.uber.org/zap"
)

type model struct {
	width      int
	height     int
	cursorX    int
	cursorY    int
	zPanMode   bool
	panX       int
	panY       int
	mode       Mode
	help       bool
	helpScroll int

	ctrl   *Controller
	config *Config
	logger *zap.Logger
	keys   keyMap

	editor    textarea.Model
	editingID string

	// keyboard move mode
	movePointer Point

	mouseDown   bool
	lastClickID string
	lastClickAt time.Time

	filename          string
	fileList          []string
	selectedFileIndex int
	fileOp            FileOperation
	pendingPath       string

	confirmAction ConfirmAction
	confirmNodeID string

	errorMessage   string
	successMessage string

	now func() time.Time
}

// fileWrittenMsg reports the result of a background JSON export.
type fileWrittenMsg struct {
	path string
	err  error
}

// documentReadMsg carries a parsed document back from disk.
type documentReadMsg struct {
	path    string
	doc     Document
	err     error
	startup bool
}

func newModel(cfg *Config, logger *zap.Logger) model {
	return model{
		ctrl:              NewController(cfg.HistoryLimit, cfg.ConnectorOffset, logger),
		config:            cfg,
		logger:            logger,
		keys:              newKeyMap(),
		editor:            newEditor(),
		selectedFileIndex: -1,
		now:               time.Now,
	}
}
