package main

import "errors"

var ErrNothingToUndo = errors.New("nothing to undo")

// History is a bounded stack of whole-scene snapshots. When full, the oldest
// snapshot is dropped. There is no redo: undoing discards the snapshot.
type History struct {
	entries [][]byte
	limit   int
}

func NewHistory(limit int) *History {
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	return &History{limit: limit}
}

func (h *History) Snapshot(s *Scene) error {
	data, err := encodeDocument(Serialize(s))
	if err != nil {
		return err
	}
	h.Push(data)
	return nil
}

func (h *History) Push(entry []byte) {
	h.entries = append(h.entries, entry)
	if over := len(h.entries) - h.limit; over > 0 {
		n := copy(h.entries, h.entries[over:])
		clear(h.entries[n:])
		h.entries = h.entries[:n]
	}
}

// Peek returns the most recent snapshot without removing it.
func (h *History) Peek() ([]byte, error) {
	if len(h.entries) == 0 {
		return nil, ErrNothingToUndo
	}
	return h.entries[len(h.entries)-1], nil
}

// Undo pops the most recent snapshot.
func (h *History) Undo() ([]byte, error) {
	if len(h.entries) == 0 {
		return nil, ErrNothingToUndo
	}
	last := len(h.entries) - 1
	entry := h.entries[last]
	h.entries[last] = nil
	h.entries = h.entries[:last]
	return entry, nil
}

func (h *History) Len() int { return len(h.entries) }

func (h *History) Limit() int { return h.limit }

func (h *History) Clear() {
	h.entries = nil
}
