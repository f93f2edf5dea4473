package main

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
)

// sceneAt converts a canvas cell (row 0 is the first row under the toolbar)
// to the scene point at its centre.
func (m *model) sceneAt(col, row int) Point {
	return m.viewport().centerOf(col, row)
}

func (m *model) cursorScene() Point {
	return m.sceneAt(m.cursorX, m.cursorY)
}

// nodeUnderCursor falls back to the selection when the cursor is on empty
// canvas.
func (m *model) nodeUnderCursor() *Node {
	if n := m.ctrl.Scene().NodeAt(m.cursorScene()); n != nil {
		return n
	}
	return m.ctrl.Selected()
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

// pastedLabel turns whatever the clipboard held into plain label text.
func pastedLabel(raw string) string {
	switch {
	case isRTF(raw):
		raw = extractTextFromRTF(raw)
	case isHTML(raw):
		raw = extractTextFromHTML(raw)
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r == '\t' {
			r = ' '
		}
		if r == '\n' || r >= 32 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<") &&
		(strings.Contains(text, "<html") || strings.Contains(text, "<body") || strings.Contains(text, "<div"))
}

func extractTextFromRTF(rtf string) string {
	var result strings.Builder
	result.Grow(len(rtf))
	data := []byte(rtf)

	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b == '{' || b == '}':
			continue
		case b != '\\':
			if b >= 32 && b < 127 || b == '\n' {
				result.WriteByte(b)
			}
			continue
		case i+1 >= len(data):
			continue
		}

		next := data[i+1]
		switch {
		case next == '\'' && i+3 < len(data):
			if val, err := strconv.ParseUint(string(data[i+2:i+4]), 16, 8); err == nil {
				result.WriteByte(byte(val))
				i += 3
			}
		case next == '\\' || next == '{' || next == '}':
			result.WriteByte(next)
			i++
		case next == '~' || next == '_':
			result.WriteByte(' ')
			i++
		case isASCIILetter(next):
			start := i + 1
			for i+1 < len(data) && isASCIILetter(data[i+1]) {
				i++
			}
			word := string(data[start : i+1])
			for i+1 < len(data) && (data[i+1] == '-' || data[i+1] >= '0' && data[i+1] <= '9') {
				i++
			}
			if i+1 < len(data) && data[i+1] == ' ' {
				i++
			}
			switch word {
			case "par", "line":
				result.WriteByte('\n')
			case "tab":
				result.WriteByte(' ')
			}
		}
	}
	return result.String()
}

func isASCIILetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

var htmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

func extractTextFromHTML(html string) string {
	var result strings.Builder
	result.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}
	return htmlEntities.Replace(result.String())
}
