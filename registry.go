package main

import (
	"math"
	"strconv"
	"strings"
)

const (
	nodeIDPrefix      = "g_"
	connectorIDPrefix = "c_"
)

// Registry hands out identifiers that stay unique for the life of the
// process. Scenes are replaced on undo and import; the registry is not, so an
// id is never handed to a second entity.
type Registry struct {
	next uint64
}

func NewRegistry() *Registry {
	return &Registry{next: 1}
}

func (r *Registry) Assign(prefix string) string {
	id := prefix + strconv.FormatUint(r.next, 10)
	if r.next < math.MaxUint64 {
		r.next++
	}
	return id
}

// Ensure gives n an id unless it already carries one.
func (r *Registry) Ensure(n *Node) {
	if n.ID == "" {
		n.ID = r.Assign(nodeIDPrefix)
	}
}

func (r *Registry) EnsureConnector(c *Connector) {
	if c.ID == "" {
		c.ID = r.Assign(connectorIDPrefix)
	}
}

// Reserve advances the counter past the numeric suffix of id, so ids loaded
// from a document cannot collide with ones assigned later. A suffix of
// MaxUint64 has nothing past it and is skipped; the counter never wraps.
func (r *Registry) Reserve(id string) {
	suffix := id[strings.LastIndexByte(id, '_')+1:]
	n, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil || n < r.next || n == math.MaxUint64 {
		return
	}
	r.next = n + 1
}
