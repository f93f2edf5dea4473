package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestController() *Controller {
	return NewController(defaultHistoryLimit, defaultConnectorOffset, zap.NewNop())
}

func assertConnectorsFresh(t *testing.T, s *Scene) {
	t.Helper()
	for _, c := range s.Connectors() {
		src, tgt := s.Node(c.SourceID), s.Node(c.TargetID)
		require.NotNil(t, src, "connector %s source", c.ID)
		require.NotNil(t, tgt, "connector %s target", c.ID)
		want, wantArrow := connectorGeometry(src.Center(), tgt.Center(), defaultConnectorOffset)
		assert.Equal(t, want, c.Path(), "connector %s path", c.ID)
		assert.Equal(t, wantArrow, c.Arrow(), "connector %s arrow", c.ID)
	}
}

func TestStickyRectangleConnectExample(t *testing.T) {
	c := newTestController()
	c.SetTool(ToolSticky)
	a, err := c.Click(Point{100, 100})
	require.NoError(t, err)
	assert.Nil(t, a, "canvas click hits nothing")

	sticky := c.Scene().NodeAt(Point{110, 110})
	require.NotNil(t, sticky)
	assert.Equal(t, "New note", sticky.Label)
	assert.Equal(t, Point{100, 100}, sticky.Position())

	rect, err := c.CreateShape(Point{300, 100}, KindRectangle)
	require.NoError(t, err)
	assert.Equal(t, rect.ID, c.SelectedID())

	c.SetTool(ToolConnect)
	outcome, err := c.ClickNode(sticky.ID)
	require.NoError(t, err)
	assert.Equal(t, ConnectPending, outcome)
	assert.Equal(t, sticky.ID, c.PendingSource())
	assert.Equal(t, "Select target node to connect", c.TakeStatus())

	outcome, err = c.ClickNode(rect.ID)
	require.NoError(t, err)
	assert.Equal(t, ConnectCreated, outcome)
	assert.Empty(t, c.PendingSource())
	assert.Equal(t, "Connection created", c.TakeStatus())

	conns := c.Scene().Connectors()
	require.Len(t, conns, 1)
	assert.Equal(t, sticky.ID, conns[0].SourceID)
	assert.Equal(t, rect.ID, conns[0].TargetID)
	assert.Equal(t, Point{180, 145}, conns[0].Path().Start)
	assert.Equal(t, Point{360, 135}, conns[0].Path().End)
	assert.Equal(t, 3, c.History().Len())
}

func TestConnectClickSameNodeCancels(t *testing.T) {
	c := newTestController()
	n, err := c.CreateSticky(Point{0, 0}, "a")
	require.NoError(t, err)
	before := c.History().Len()

	c.SetTool(ToolConnect)
	outcome, err := c.ClickNode(n.ID)
	require.NoError(t, err)
	assert.Equal(t, ConnectPending, outcome)

	outcome, err = c.ClickNode(n.ID)
	require.NoError(t, err)
	assert.Equal(t, ConnectCancelled, outcome)
	assert.Empty(t, c.PendingSource())
	assert.Empty(t, c.Scene().Connectors())
	assert.Equal(t, before, c.History().Len())
}

func TestRepeatedConnectCreatesIndependentConnectors(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{0, 0}, "a")
	b, _ := c.CreateSticky(Point{400, 0}, "b")

	first, err := c.Connect(a.ID, b.ID)
	require.NoError(t, err)
	second, err := c.Connect(a.ID, b.ID)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, c.Scene().Connectors(), 2)

	_, err = c.Connect(a.ID, a.ID)
	assert.ErrorIs(t, err, ErrSelfConnector)
	_, err = c.Connect(a.ID, "g_404")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestSwitchingToolClearsPendingSource(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{0, 0}, "a")
	c.SetTool(ToolConnect)
	_, err := c.ClickNode(a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, c.PendingSource())

	c.SetTool(ToolSelect)
	assert.Empty(t, c.PendingSource())
	assert.Equal(t, "Mode: select", c.TakeStatus())
	assert.Empty(t, c.TakeStatus())
}

func TestCanvasClickOutsideStickyModeDoesNothing(t *testing.T) {
	c := newTestController()
	for _, tool := range []Tool{ToolSelect, ToolShape, ToolConnect} {
		c.SetTool(tool)
		n, err := c.ClickCanvas(Point{50, 50})
		require.NoError(t, err)
		assert.Nil(t, n)
	}
	assert.True(t, c.Scene().Empty())
	assert.Zero(t, c.History().Len())
}

func TestPlaceShapeLandsInPaletteArea(t *testing.T) {
	c := newTestController()
	n, err := c.PlaceShape(KindStar)
	require.NoError(t, err)

	assert.Equal(t, ToolShape, c.Tool())
	p := n.Position()
	assert.GreaterOrEqual(t, p.X, paletteOriginX)
	assert.Less(t, p.X, paletteOriginX+paletteSpread)
	assert.GreaterOrEqual(t, p.Y, paletteOriginY)
	assert.Less(t, p.Y, paletteOriginY+paletteSpread)

	_, err = c.PlaceShape(Kind("blob"))
	assert.Error(t, err)
	assert.Len(t, c.Scene().Nodes(), 1)
}

func TestEditLabel(t *testing.T) {
	c := newTestController()
	n, _ := c.CreateSticky(Point{0, 0}, "draft")
	before := c.History().Len()

	require.NoError(t, c.EditLabel(n.ID, "draft"))
	assert.Equal(t, before, c.History().Len(), "unchanged label leaves no history")

	require.NoError(t, c.EditLabel(n.ID, "final"))
	assert.Equal(t, "final", n.Label)
	assert.Equal(t, before+1, c.History().Len())

	require.NoError(t, c.Undo())
	assert.Equal(t, "draft", c.Scene().Node(n.ID).Label)

	assert.ErrorIs(t, c.EditLabel("g_404", "x"), ErrNodeNotFound)
}

func TestDragGesture(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{100, 100}, "a")
	b, _ := c.CreateSticky(Point{400, 100}, "b")
	_, err := c.Connect(a.ID, b.ID)
	require.NoError(t, err)
	before := c.History().Len()

	require.NoError(t, c.BeginMove(a.ID, Point{110, 110}))
	assert.True(t, c.Dragging())
	for _, p := range []Point{{130, 120}, {170, 200}, {210, 310}} {
		require.NoError(t, c.DragTo(p))
		assertConnectorsFresh(t, c.Scene())
	}
	assert.Equal(t, Point{200, 300}, a.Position())
	assert.Equal(t, before, c.History().Len(), "nothing recorded mid-gesture")

	assert.True(t, c.EndMove())
	assert.False(t, c.Dragging())
	assert.Equal(t, before+1, c.History().Len())

	require.NoError(t, c.Undo())
	assert.Equal(t, Point{100, 100}, c.Scene().Node(a.ID).Position())
	assertConnectorsFresh(t, c.Scene())
}

func TestDragWithoutMovementRecordsNothing(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{100, 100}, "a")
	before := c.History().Len()

	require.NoError(t, c.BeginMove(a.ID, Point{120, 120}))
	assert.False(t, c.EndMove())
	assert.Equal(t, before, c.History().Len())
	assert.False(t, c.EndMove(), "no gesture in progress")
}

func TestCancelMoveRestoresOrigin(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{100, 100}, "a")
	b, _ := c.CreateSticky(Point{400, 100}, "b")
	_, err := c.Connect(a.ID, b.ID)
	require.NoError(t, err)
	before := c.History().Len()

	require.NoError(t, c.BeginMove(b.ID, b.Position()))
	require.NoError(t, c.DragTo(Point{600, 600}))
	c.CancelMove()

	assert.Equal(t, Point{400, 100}, b.Position())
	assertConnectorsFresh(t, c.Scene())
	assert.Equal(t, before, c.History().Len())
}

func TestConnectorsStayFreshUnderRandomMoves(t *testing.T) {
	c := newTestController()
	var ids []string
	for i := 0; i < 6; i++ {
		n, err := c.CreateSticky(Point{float64(i * 200), 0}, "n")
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	for i := 0; i < len(ids); i++ {
		_, err := c.Connect(ids[i], ids[(i+1)%len(ids)])
		require.NoError(t, err)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		id := ids[rng.Intn(len(ids))]
		p := Point{rng.Float64()*2000 - 1000, rng.Float64()*2000 - 1000}
		require.NoError(t, c.Move(id, p))
		assertConnectorsFresh(t, c.Scene())
	}
}

func TestDeleteSelected(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{0, 0}, "a")
	b, _ := c.CreateSticky(Point{300, 0}, "b")
	d, _ := c.CreateSticky(Point{600, 0}, "d")
	_, err := c.Connect(a.ID, b.ID)
	require.NoError(t, err)
	_, err = c.Connect(b.ID, d.ID)
	require.NoError(t, err)
	_, err = c.Connect(a.ID, d.ID)
	require.NoError(t, err)

	require.NoError(t, c.Select(b.ID))
	assert.True(t, c.DeleteSelected())
	assert.Empty(t, c.SelectedID())
	assert.Nil(t, c.Scene().Node(b.ID))
	assert.Len(t, c.Scene().Connectors(), 1)
	assertConnectorsFresh(t, c.Scene())
	assert.Equal(t, "Deleted", c.TakeStatus())

	require.NoError(t, c.Undo())
	assert.NotNil(t, c.Scene().Node(b.ID))
	assert.Len(t, c.Scene().Connectors(), 3)
	assertConnectorsFresh(t, c.Scene())
}

func TestDeleteWithNothingSelectedIsSilent(t *testing.T) {
	c := newTestController()
	_, _ = c.CreateSticky(Point{0, 0}, "a")
	c.ClearSelection()
	before := c.History().Len()

	assert.False(t, c.DeleteSelected())
	assert.Equal(t, before, c.History().Len())
	assert.Len(t, c.Scene().Nodes(), 1)
}

func TestDeletingPendingSourceClearsIt(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{0, 0}, "a")
	c.SetTool(ToolConnect)
	_, err := c.ClickNode(a.ID)
	require.NoError(t, err)

	require.NoError(t, c.Delete(a.ID))
	assert.Empty(t, c.PendingSource())
}

func TestUndoRestoresExactPriorStates(t *testing.T) {
	c := newTestController()
	var states []Document
	record := func() { states = append(states, Serialize(c.Scene())) }

	record()
	a, _ := c.CreateSticky(Point{10, 10}, "a")
	record()
	b, _ := c.CreateShape(Point{300, 40}, KindDiamond)
	record()
	_, err := c.Connect(a.ID, b.ID)
	require.NoError(t, err)
	record()
	require.NoError(t, c.Move(b.ID, Point{500, 500}))
	record()
	require.NoError(t, c.EditLabel(a.ID, "renamed"))
	record()
	require.NoError(t, c.Delete(a.ID))

	for i := len(states) - 1; i >= 0; i-- {
		require.NoError(t, c.Undo())
		assert.Equal(t, states[i], Serialize(c.Scene()), "undo to state %d", i)
		assertConnectorsFresh(t, c.Scene())
	}
	assert.ErrorIs(t, c.Undo(), ErrNothingToUndo)
	assert.Equal(t, "Nothing to undo", c.TakeStatus())
}

func TestHistoryCapKeepsLastFifty(t *testing.T) {
	c := newTestController()
	for i := 0; i < 60; i++ {
		_, err := c.CreateSticky(Point{float64(i), 0}, "n")
		require.NoError(t, err)
	}
	assert.Equal(t, 50, c.History().Len())

	for i := 0; i < 50; i++ {
		require.NoError(t, c.Undo())
	}
	assert.Len(t, c.Scene().Nodes(), 10)
	assert.ErrorIs(t, c.Undo(), ErrNothingToUndo)
}

func TestUndoKeepsSelectionWhenNodeSurvives(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{0, 0}, "a")
	require.NoError(t, c.EditLabel(a.ID, "changed"))
	require.NoError(t, c.Select(a.ID))

	require.NoError(t, c.Undo())
	assert.Equal(t, a.ID, c.SelectedID())
	require.NotNil(t, c.Selected())
	assert.NotSame(t, a, c.Selected(), "undo installs a rebuilt scene")

	require.NoError(t, c.Undo())
	assert.Empty(t, c.SelectedID())
}

func TestIDsAreNeverReused(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{0, 0}, "a")
	require.NoError(t, c.Delete(a.ID))
	require.NoError(t, c.Undo())
	b, _ := c.CreateSticky(Point{300, 0}, "b")

	assert.Equal(t, "g_1", a.ID)
	assert.Equal(t, "g_2", b.ID)
	assert.NotNil(t, c.Scene().Node("g_1"))
}

func TestClear(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{0, 0}, "a")
	b, _ := c.CreateSticky(Point{300, 0}, "b")
	_, err := c.Connect(a.ID, b.ID)
	require.NoError(t, err)
	board := c.Scene().BoardID

	c.Clear()
	assert.True(t, c.Scene().Empty())
	assert.Equal(t, board, c.Scene().BoardID)
	assert.Empty(t, c.SelectedID())

	require.NoError(t, c.Undo())
	assert.Len(t, c.Scene().Nodes(), 2)
	assert.Len(t, c.Scene().Connectors(), 1)
}

func TestImport(t *testing.T) {
	src := newTestController()
	a, _ := src.CreateSticky(Point{0, 0}, "a")
	b, _ := src.CreateShape(Point{300, 0}, KindTriangle)
	_, err := src.Connect(a.ID, b.ID)
	require.NoError(t, err)
	data, err := src.Export(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	c := newTestController()
	mine, _ := c.CreateSticky(Point{50, 50}, "mine")
	before := Serialize(c.Scene())
	history := c.History().Len()

	dropped, err := c.Import(data)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Equal(t, src.Scene().BoardID, c.Scene().BoardID)
	assert.Len(t, c.Scene().Nodes(), 2)
	assertConnectorsFresh(t, c.Scene())
	assert.Equal(t, history+1, c.History().Len())
	assert.Empty(t, c.SelectedID())

	next, _ := c.CreateSticky(Point{0, 0}, "next")
	assert.Equal(t, "g_4", next.ID)

	require.NoError(t, c.Undo())
	require.NoError(t, c.Undo())
	assert.Equal(t, before, Serialize(c.Scene()))
	assert.NotNil(t, c.Scene().Node(mine.ID))
}

func TestImportFailureLeavesSceneUntouched(t *testing.T) {
	c := newTestController()
	_, _ = c.CreateSticky(Point{50, 50}, "mine")
	before := Serialize(c.Scene())
	history := c.History().Len()

	_, err := c.Import([]byte(`{"version":1,"nodes":[{"id":"g_1","kind":"blob"}]}`))
	assert.Error(t, err)
	_, err = c.Import([]byte(`not json`))
	assert.Error(t, err)

	assert.Equal(t, before, Serialize(c.Scene()))
	assert.Equal(t, history, c.History().Len())
}

func TestImportCountsDanglingConnectors(t *testing.T) {
	c := newTestController()
	doc := Document{
		Version: 1,
		Nodes: []NodeRecord{{
			ID: "g_1", Kind: KindCircle, Radius: 40, Label: "circle",
			Style: StyleRecord{Fill: "#ffffff", Stroke: "#475569", StrokeWidth: 1},
		}},
		Connectors: []ConnectorRecord{{ID: "c_2", SourceID: "g_1", TargetID: "g_9"}},
	}
	dropped, err := c.ImportDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.Empty(t, c.Scene().Connectors())
}

func TestOpenStartsWithEmptyHistory(t *testing.T) {
	src := newTestController()
	_, _ = src.CreateSticky(Point{0, 0}, "a")
	doc := Serialize(src.Scene())

	c := newTestController()
	_, err := c.Open(doc)
	require.NoError(t, err)
	assert.Zero(t, c.History().Len())
	assert.Len(t, c.Scene().Nodes(), 1)
}

func TestExportStampsSavedAt(t *testing.T) {
	c := newTestController()
	_, _ = c.CreateSticky(Point{0, 0}, "a")
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	data, err := c.Export(now)
	require.NoError(t, err)
	doc, err := DecodeDocument(data)
	require.NoError(t, err)
	require.NotNil(t, doc.SavedAt)
	assert.True(t, now.Equal(*doc.SavedAt))
	assert.Len(t, doc.Nodes, 1)
}

func TestUndoClearsPendingSource(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{0, 0}, "a")
	_, _ = c.CreateSticky(Point{300, 0}, "b")
	c.SetTool(ToolConnect)
	_, err := c.ClickNode(a.ID)
	require.NoError(t, err)

	require.NoError(t, c.Undo())
	assert.Empty(t, c.PendingSource())
	assert.False(t, c.CancelPending())
}

func TestCreateAfterImportingLargestID(t *testing.T) {
	c := newTestController()
	doc := Document{
		Version: 1,
		Nodes: []NodeRecord{
			{ID: "g_1", Kind: KindCircle, Radius: 40, Style: StyleRecord{StrokeWidth: 1}},
			{ID: "g_18446744073709551615", Kind: KindCircle, X: 200, Radius: 40, Style: StyleRecord{StrokeWidth: 1}},
		},
	}
	_, err := c.Open(doc)
	require.NoError(t, err)

	a, err := c.CreateSticky(Point{400, 0}, "a")
	require.NoError(t, err)
	b, err := c.CreateSticky(Point{600, 0}, "b")
	require.NoError(t, err)

	assert.Equal(t, "g_2", a.ID)
	assert.Equal(t, "g_3", b.ID)
	assert.Equal(t, 2, c.History().Len())
	assert.Len(t, c.Scene().Nodes(), 4)
}

func TestFailedCreateLeavesNoHistory(t *testing.T) {
	c := newTestController()
	a, err := c.CreateSticky(Point{0, 0}, "a")
	require.NoError(t, err)
	before := c.History().Len()

	dup := newSticky(Point{300, 0}, "dup")
	dup.ID = a.ID
	_, err = c.place(dup)
	assert.ErrorContains(t, err, "duplicate id")
	assert.Equal(t, before, c.History().Len())
	assert.Len(t, c.Scene().Nodes(), 1)
}

func TestFailedConnectLeavesNoHistory(t *testing.T) {
	c := newTestController()
	a, _ := c.CreateSticky(Point{0, 0}, "a")
	b, _ := c.CreateSticky(Point{300, 0}, "b")
	first, err := c.Connect(a.ID, b.ID)
	require.NoError(t, err)
	before := c.History().Len()

	c.registry.next--
	_, err = c.Connect(b.ID, a.ID)
	assert.ErrorContains(t, err, "duplicate id "+`"`+first.ID+`"`)
	assert.Equal(t, before, c.History().Len())
	assert.Len(t, c.Scene().Connectors(), 1)
}

func TestUndoKeepsSnapshotThatFailsToDecode(t *testing.T) {
	c := newTestController()
	_, err := c.CreateSticky(Point{0, 0}, "a")
	require.NoError(t, err)
	c.History().Push([]byte("not a document"))
	before := Serialize(c.Scene())

	assert.Error(t, c.Undo())
	assert.Equal(t, 2, c.History().Len())
	assert.Equal(t, before, Serialize(c.Scene()))
}

func TestPositionsStayOnTheBoard(t *testing.T) {
	c := newTestController()
	n, err := c.CreateSticky(Point{5e6, -5e6}, "far")
	require.NoError(t, err)
	assert.Equal(t, Point{maxCoordinate, -maxCoordinate}, n.Position())

	require.NoError(t, c.Move(n.ID, Point{-1e9, 1e9}))
	assert.Equal(t, Point{-maxCoordinate, maxCoordinate}, n.Position())

	data, err := c.Export(time.Now())
	require.NoError(t, err)
	_, err = DecodeDocument(data)
	assert.NoError(t, err, "an exported board always imports again")
}
