package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportToPNGEmptyBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	assert.ErrorIs(t, ExportToPNG(NewScene(), path), ErrEmptyBoard)
	assert.NoFileExists(t, path)
}

func TestExportToPNGCropsToContents(t *testing.T) {
	s := NewScene()
	addTestSticky(t, s, "g_1", 0, 0)
	path := filepath.Join(t.TempDir(), "board.png")
	require.NoError(t, ExportToPNG(s, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 240, cfg.Width)
	assert.Equal(t, 170, cfg.Height)
}

func TestExportToPNGAllKinds(t *testing.T) {
	c := newTestController()
	prev, err := c.CreateSticky(Point{0, 0}, "start here")
	require.NoError(t, err)
	for i, kind := range paletteKinds {
		n, err := c.CreateShape(Point{float64(200 + i*150), float64(i * 40)}, kind)
		require.NoError(t, err)
		_, err = c.Connect(prev.ID, n.ID)
		require.NoError(t, err)
		prev = n
	}

	path := filepath.Join(t.TempDir(), "all.png")
	require.NoError(t, ExportToPNG(c.Scene(), path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExportVisualTXT(t *testing.T) {
	s := NewScene()
	addTestSticky(t, s, "g_1", 0, 0)
	path := filepath.Join(t.TempDir(), "board.txt")
	require.NoError(t, exportVisualTXT(s, path, defaultCellWidth, defaultCellHeight))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "note g_1")
	assert.Contains(t, text, "+-")

	assert.ErrorIs(t, exportVisualTXT(NewScene(), path, defaultCellWidth, defaultCellHeight), ErrEmptyBoard)
}

func TestExportsRefuseOversizedBoard(t *testing.T) {
	s := NewScene()
	addTestSticky(t, s, "g_1", 0, 0)
	addTestSticky(t, s, "g_2", 90000, 90000)
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "board.png")
	assert.ErrorIs(t, ExportToPNG(s, pngPath), ErrBoardTooLarge)
	assert.NoFileExists(t, pngPath)

	txt := filepath.Join(dir, "board.txt")
	assert.ErrorIs(t, exportVisualTXT(s, txt, defaultCellWidth, defaultCellHeight), ErrBoardTooLarge)
	assert.NoFileExists(t, txt)
}
