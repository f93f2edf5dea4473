package main

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

var (
	ErrEmptyBoard    = errors.New("nothing to export")
	ErrBoardTooLarge = errors.New("board is too large to export")
)

type ConnectOutcome int

const (
	ConnectNone ConnectOutcome = iota
	ConnectPending
	ConnectCancelled
	ConnectCreated
)

type dragState struct {
	nodeID string
	grab   Point // pointer minus node position when the gesture began
	origin Point
	before []byte
}

// Controller owns the board and everything the user is in the middle of:
// the active tool, the selection, a pending connector source and a drag.
// Every mutation pushes the scene as it was beforehand onto the history.
type Controller struct {
	scene    *Scene
	registry *Registry
	history  *History
	logger   *zap.Logger
	rng      *rand.Rand
	offset   float64

	tool          Tool
	selected      string
	pendingSource string
	drag          *dragState
	status        string
}

func NewController(historyLimit int, connectorOffset float64, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		scene:    NewScene(),
		registry: NewRegistry(),
		history:  NewHistory(historyLimit),
		logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		offset:   connectorOffset,
	}
}

func (c *Controller) Scene() *Scene         { return c.scene }
func (c *Controller) History() *History     { return c.history }
func (c *Controller) Tool() Tool            { return c.tool }
func (c *Controller) SelectedID() string    { return c.selected }
func (c *Controller) PendingSource() string { return c.pendingSource }
func (c *Controller) Dragging() bool        { return c.drag != nil }

// TakeStatus returns the last user-facing message an operation produced
// and clears it.
func (c *Controller) TakeStatus() string {
	s := c.status
	c.status = ""
	return s
}

func (c *Controller) Selected() *Node {
	if c.selected == "" {
		return nil
	}
	return c.scene.Node(c.selected)
}

func (c *Controller) notify(msg string) {
	c.status = msg
}

func (c *Controller) checkpoint() {
	if err := c.history.Snapshot(c.scene); err != nil {
		c.logger.Error("snapshot failed", zap.Error(err))
	}
}

// preimage encodes the scene as it is now, for a mutation that may still
// fail. Pass the result to commit once it has succeeded.
func (c *Controller) preimage() []byte {
	data, err := encodeDocument(Serialize(c.scene))
	if err != nil {
		c.logger.Error("snapshot failed", zap.Error(err))
		return nil
	}
	return data
}

func (c *Controller) commit(before []byte) {
	if before != nil {
		c.history.Push(before)
	}
}

func (c *Controller) SetTool(t Tool) {
	c.tool = t
	if t != ToolConnect {
		c.pendingSource = ""
	}
	c.notify("Mode: " + t.String())
}

func (c *Controller) Select(id string) error {
	if c.scene.Node(id) == nil {
		return fmt.Errorf("select %s: %w", id, ErrNodeNotFound)
	}
	c.selected = id
	return nil
}

func (c *Controller) ClearSelection() {
	c.selected = ""
}

// CancelPending abandons a half-made connection.
func (c *Controller) CancelPending() bool {
	if c.pendingSource == "" {
		return false
	}
	c.pendingSource = ""
	c.notify("Cancelled")
	return true
}

func (c *Controller) CreateSticky(pos Point, text string) (*Node, error) {
	return c.place(newSticky(pos, text))
}

func (c *Controller) CreateShape(pos Point, kind Kind) (*Node, error) {
	n, err := newShape(pos, kind)
	if err != nil {
		return nil, err
	}
	return c.place(n)
}

// PlaceShape drops a palette shape at a loosely random spot, the way a
// toolbar pick does.
func (c *Controller) PlaceShape(kind Kind) (*Node, error) {
	c.SetTool(ToolShape)
	pos := Point{
		X: paletteOriginX + c.rng.Float64()*paletteSpread,
		Y: paletteOriginY + c.rng.Float64()*paletteSpread,
	}
	return c.CreateShape(pos, kind)
}

func (c *Controller) place(n *Node) (*Node, error) {
	n.pos = clampToBoard(n.pos)
	c.registry.Ensure(n)
	before := c.preimage()
	if err := c.scene.AddNode(n); err != nil {
		return nil, err
	}
	c.commit(before)
	c.selected = n.ID
	c.logger.Debug("node created",
		zap.String("node", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.Float64("x", n.pos.X),
		zap.Float64("y", n.pos.Y))
	return n, nil
}

func (c *Controller) EditLabel(id, text string) error {
	n := c.scene.Node(id)
	if n == nil {
		return fmt.Errorf("edit %s: %w", id, ErrNodeNotFound)
	}
	if n.Label == text {
		return nil
	}
	c.checkpoint()
	n.Label = text
	c.logger.Debug("label edited", zap.String("node", id))
	return nil
}

// BeginMove starts a drag gesture on a node. Nothing reaches the history
// until EndMove.
func (c *Controller) BeginMove(id string, pointer Point) error {
	n := c.scene.Node(id)
	if n == nil {
		return fmt.Errorf("move %s: %w", id, ErrNodeNotFound)
	}
	before, err := encodeDocument(Serialize(c.scene))
	if err != nil {
		return err
	}
	c.drag = &dragState{
		nodeID: id,
		grab:   pointer.Sub(n.pos),
		origin: n.pos,
		before: before,
	}
	return nil
}

// DragTo moves the dragged node so it keeps its offset from the pointer.
// Connectors follow before this returns.
func (c *Controller) DragTo(pointer Point) error {
	if c.drag == nil {
		return nil
	}
	return c.scene.MoveNode(c.drag.nodeID, clampToBoard(pointer.Sub(c.drag.grab)))
}

// EndMove finishes the gesture and records a single undo step if the node
// actually moved.
func (c *Controller) EndMove() bool {
	d := c.drag
	c.drag = nil
	if d == nil {
		return false
	}
	n := c.scene.Node(d.nodeID)
	if n == nil || n.pos == d.origin {
		return false
	}
	c.history.Push(d.before)
	c.logger.Debug("node moved",
		zap.String("node", n.ID),
		zap.Float64("x", n.pos.X),
		zap.Float64("y", n.pos.Y))
	return true
}

func (c *Controller) CancelMove() {
	d := c.drag
	c.drag = nil
	if d == nil {
		return
	}
	_ = c.scene.MoveNode(d.nodeID, d.origin)
}

// Move is a complete drag in one call.
func (c *Controller) Move(id string, pos Point) error {
	n := c.scene.Node(id)
	if n == nil {
		return fmt.Errorf("move %s: %w", id, ErrNodeNotFound)
	}
	if err := c.BeginMove(id, n.pos); err != nil {
		return err
	}
	if err := c.DragTo(pos); err != nil {
		c.CancelMove()
		return err
	}
	c.EndMove()
	return nil
}

// DeleteSelected is a silent no-op when nothing is selected.
func (c *Controller) DeleteSelected() bool {
	if c.selected == "" {
		return false
	}
	return c.Delete(c.selected) == nil
}

func (c *Controller) Delete(id string) error {
	if c.scene.Node(id) == nil {
		return fmt.Errorf("delete %s: %w", id, ErrNodeNotFound)
	}
	c.checkpoint()
	dropped, err := c.scene.RemoveNode(id)
	if err != nil {
		return err
	}
	if c.selected == id {
		c.selected = ""
	}
	if c.pendingSource == id {
		c.pendingSource = ""
	}
	if c.drag != nil && c.drag.nodeID == id {
		c.drag = nil
	}
	c.notify("Deleted")
	c.logger.Debug("node deleted", zap.String("node", id), zap.Int("connectors", len(dropped)))
	return nil
}

// Connect joins two distinct nodes with a new connector. Repeating a pair
// yields another, independent connector.
func (c *Controller) Connect(sourceID, targetID string) (*Connector, error) {
	if sourceID == targetID {
		return nil, ErrSelfConnector
	}
	for _, id := range []string{sourceID, targetID} {
		if c.scene.Node(id) == nil {
			return nil, fmt.Errorf("connect %s: %w", id, ErrNodeNotFound)
		}
	}
	conn := newConnector(sourceID, targetID, c.offset)
	c.registry.EnsureConnector(conn)
	before := c.preimage()
	if err := c.scene.AddConnector(conn); err != nil {
		return nil, err
	}
	c.commit(before)
	c.notify("Connection created")
	c.logger.Debug("connector created",
		zap.String("connector", conn.ID),
		zap.String("source", sourceID),
		zap.String("target", targetID))
	return conn, nil
}

// ConnectClick drives the two-click connect gesture. Clicking the pending
// source a second time cancels it.
func (c *Controller) ConnectClick(id string) (ConnectOutcome, error) {
	switch c.pendingSource {
	case "":
		c.pendingSource = id
		c.notify("Select target node to connect")
		return ConnectPending, nil
	case id:
		c.pendingSource = ""
		c.notify("Cancelled")
		return ConnectCancelled, nil
	}
	source := c.pendingSource
	c.pendingSource = ""
	if _, err := c.Connect(source, id); err != nil {
		return ConnectNone, err
	}
	return ConnectCreated, nil
}

// ClickNode always selects; with the connect tool it also advances the
// connect gesture.
func (c *Controller) ClickNode(id string) (ConnectOutcome, error) {
	outcome := ConnectNone
	if c.tool == ToolConnect {
		var err error
		if outcome, err = c.ConnectClick(id); err != nil {
			return outcome, err
		}
	}
	return outcome, c.Select(id)
}

// ClickCanvas handles a click on empty canvas. Only the sticky tool does
// anything with it.
func (c *Controller) ClickCanvas(pos Point) (*Node, error) {
	if c.tool != ToolSticky {
		return nil, nil
	}
	return c.CreateSticky(pos, defaultStickyText)
}

// Click routes a primary click to the node under the pointer or to the
// canvas. It returns the node that was hit, if any.
func (c *Controller) Click(pos Point) (*Node, error) {
	if n := c.scene.NodeAt(pos); n != nil {
		_, err := c.ClickNode(n.ID)
		return n, err
	}
	_, err := c.ClickCanvas(pos)
	return nil, err
}

// Undo restores the most recent snapshot. A snapshot that fails to decode
// stays on the history.
func (c *Controller) Undo() error {
	data, err := c.history.Peek()
	if err != nil {
		c.notify("Nothing to undo")
		return err
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	s, dropped, err := Deserialize(doc, c.registry, c.offset)
	if err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	if _, err := c.history.Undo(); err != nil {
		return err
	}
	if dropped > 0 {
		c.logger.Warn("dropped dangling connectors", zap.Int("count", dropped))
	}
	c.install(s)
	c.notify("Undone")
	c.logger.Info("undo", zap.Int("remaining", c.history.Len()))
	return nil
}

// Clear wipes the board, keeping its identity. Confirmation is the caller's
// job.
func (c *Controller) Clear() {
	c.checkpoint()
	c.install(c.scene.emptyCopy())
	c.selected = ""
	c.notify("Cleared")
	c.logger.Info("board cleared")
}

// Import replaces the board with the document in data. A document that
// fails to parse or validate leaves the board untouched. It returns the
// number of connectors dropped for pointing at missing nodes.
func (c *Controller) Import(data []byte) (int, error) {
	doc, err := DecodeDocument(data)
	if err != nil {
		return 0, err
	}
	return c.ImportDocument(doc)
}

func (c *Controller) ImportDocument(doc Document) (int, error) {
	s, dropped, err := Deserialize(doc, c.registry, c.offset)
	if err != nil {
		c.logger.Warn("import failed", zap.Error(err))
		return 0, err
	}
	c.checkpoint()
	c.install(s)
	c.selected = ""
	if dropped > 0 {
		c.logger.Warn("dropped dangling connectors", zap.Int("count", dropped))
	}
	c.notify("Imported")
	c.logger.Info("board imported",
		zap.String("board", s.BoardID),
		zap.Int("nodes", len(s.nodes)),
		zap.Int("connectors", len(s.connectors)))
	return dropped, nil
}

// Open loads a document as a fresh session: the history starts empty.
func (c *Controller) Open(doc Document) (int, error) {
	dropped, err := c.ImportDocument(doc)
	if err != nil {
		return 0, err
	}
	c.history.Clear()
	return dropped, nil
}

func (c *Controller) Export(now time.Time) ([]byte, error) {
	doc := Serialize(c.scene)
	doc.SavedAt = &now
	return encodeDocument(doc)
}

func (c *Controller) install(s *Scene) {
	c.scene = s
	if s.Node(c.selected) == nil {
		c.selected = ""
	}
	c.pendingSource = ""
	c.drag = nil
}
