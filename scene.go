package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrSelfConnector = errors.New("connector source and target are the same node")
)

// Entity is anything the scene holds: a *Node or a *Connector.
type Entity interface {
	EntityID() string
}

// PositionListener is notified synchronously, before MoveNode returns, each
// time a node it subscribed to moves.
type PositionListener interface {
	NodeMoved(n *Node)
}

// Scene is the whole board: nodes in z-order (insertion order) and the
// connectors between them.
type Scene struct {
	BoardID string
	Title   string

	nodes      []*Node
	nodeIndex  map[string]*Node
	connectors []*Connector
	connIndex  map[string]*Connector
	listeners  map[string][]PositionListener
}

func NewScene() *Scene {
	return &Scene{
		BoardID:   uuid.NewString(),
		nodeIndex: make(map[string]*Node),
		connIndex: make(map[string]*Connector),
		listeners: make(map[string][]PositionListener),
	}
}

// emptyCopy keeps the board identity and drops the contents.
func (s *Scene) emptyCopy() *Scene {
	e := NewScene()
	e.BoardID = s.BoardID
	e.Title = s.Title
	return e
}

func (s *Scene) Nodes() []*Node { return s.nodes }

func (s *Scene) Connectors() []*Connector { return s.connectors }

func (s *Scene) Empty() bool {
	return len(s.nodes) == 0 && len(s.connectors) == 0
}

func (s *Scene) Node(id string) *Node { return s.nodeIndex[id] }

func (s *Scene) Connector(id string) *Connector { return s.connIndex[id] }

// Find looks an id up among nodes and connectors.
func (s *Scene) Find(id string) (Entity, bool) {
	if n, ok := s.nodeIndex[id]; ok {
		return n, true
	}
	if c, ok := s.connIndex[id]; ok {
		return c, true
	}
	return nil, false
}

func (s *Scene) Add(e Entity) error {
	switch e := e.(type) {
	case *Node:
		return s.AddNode(e)
	case *Connector:
		return s.AddConnector(e)
	default:
		return fmt.Errorf("unsupported entity %T", e)
	}
}

func (s *Scene) AddNode(n *Node) error {
	if n.ID == "" {
		return errors.New("node has no id")
	}
	if _, taken := s.Find(n.ID); taken {
		return fmt.Errorf("duplicate id %q", n.ID)
	}
	s.nodes = append(s.nodes, n)
	s.nodeIndex[n.ID] = n
	return nil
}

// AddConnector binds c to its endpoints by id, subscribes it to both and
// derives its initial path.
func (s *Scene) AddConnector(c *Connector) error {
	if c.ID == "" {
		return errors.New("connector has no id")
	}
	if _, taken := s.Find(c.ID); taken {
		return fmt.Errorf("duplicate id %q", c.ID)
	}
	if c.SourceID == c.TargetID {
		return ErrSelfConnector
	}
	for _, id := range []string{c.SourceID, c.TargetID} {
		if s.nodeIndex[id] == nil {
			return fmt.Errorf("connector %s endpoint %s: %w", c.ID, id, ErrNodeNotFound)
		}
	}
	c.scene = s
	s.connectors = append(s.connectors, c)
	s.connIndex[c.ID] = c
	s.Subscribe(c.SourceID, c)
	s.Subscribe(c.TargetID, c)
	c.refresh()
	return nil
}

// Remove deletes a node (and every connector touching it) or a connector.
func (s *Scene) Remove(id string) error {
	if _, ok := s.nodeIndex[id]; ok {
		_, err := s.RemoveNode(id)
		return err
	}
	if _, ok := s.connIndex[id]; ok {
		s.removeConnector(id)
		return nil
	}
	return fmt.Errorf("remove %s: %w", id, ErrNodeNotFound)
}

// RemoveNode deletes the node and returns the connectors that went with it.
func (s *Scene) RemoveNode(id string) ([]*Connector, error) {
	if s.nodeIndex[id] == nil {
		return nil, fmt.Errorf("remove %s: %w", id, ErrNodeNotFound)
	}

	var dropped []*Connector
	for _, c := range s.ConnectorsOf(id) {
		s.removeConnector(c.ID)
		dropped = append(dropped, c)
	}

	for i, n := range s.nodes {
		if n.ID == id {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			break
		}
	}
	delete(s.nodeIndex, id)
	delete(s.listeners, id)
	return dropped, nil
}

func (s *Scene) removeConnector(id string) {
	c := s.connIndex[id]
	if c == nil {
		return
	}
	s.Unsubscribe(c.SourceID, c)
	s.Unsubscribe(c.TargetID, c)
	for i, other := range s.connectors {
		if other.ID == id {
			s.connectors = append(s.connectors[:i], s.connectors[i+1:]...)
			break
		}
	}
	delete(s.connIndex, id)
	c.scene = nil
}

func (s *Scene) ConnectorsOf(nodeID string) []*Connector {
	var out []*Connector
	for _, c := range s.connectors {
		if c.References(nodeID) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Scene) Subscribe(nodeID string, l PositionListener) {
	s.listeners[nodeID] = append(s.listeners[nodeID], l)
}

func (s *Scene) Unsubscribe(nodeID string, l PositionListener) {
	ls := s.listeners[nodeID]
	for i, other := range ls {
		if other == l {
			s.listeners[nodeID] = append(ls[:i], ls[i+1:]...)
			return
		}
	}
}

// MoveNode repositions a node and notifies its listeners before returning.
func (s *Scene) MoveNode(id string, pos Point) error {
	n := s.nodeIndex[id]
	if n == nil {
		return fmt.Errorf("move %s: %w", id, ErrNodeNotFound)
	}
	if n.pos == pos {
		return nil
	}
	n.pos = pos
	for _, l := range append([]PositionListener(nil), s.listeners[id]...) {
		l.NodeMoved(n)
	}
	return nil
}

// NodeAt returns the topmost node containing p.
func (s *Scene) NodeAt(p Point) *Node {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if s.nodes[i].Contains(p) {
			return s.nodes[i]
		}
	}
	return nil
}

// Bounds covers every node and every connector curve.
func (s *Scene) Bounds() (Rect, bool) {
	var r Rect
	have := false
	grow := func(o Rect) {
		if !have {
			r, have = o, true
			return
		}
		r = r.Union(o)
	}
	for _, n := range s.nodes {
		grow(n.Bounds())
	}
	for _, c := range s.connectors {
		p := c.Path()
		grow(boundsOf([]Point{p.Start, p.Via, p.End}))
	}
	return r, have
}
