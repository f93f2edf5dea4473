package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const documentVersion = 1

var validate = validator.New()

// Document is the serialized form of a scene, used for export/import and
// for history snapshots.
type Document struct {
	Version    int               `json:"version" validate:"eq=1"`
	BoardID    string            `json:"boardId,omitempty" validate:"omitempty,uuid"`
	Title      string            `json:"title,omitempty"`
	SavedAt    *time.Time        `json:"savedAt,omitempty"`
	Nodes      []NodeRecord      `json:"nodes" validate:"dive"`
	Connectors []ConnectorRecord `json:"connectors" validate:"dive"`
}

type NodeRecord struct {
	ID          string      `json:"id" validate:"required"`
	Kind        Kind        `json:"kind" validate:"required,oneof=sticky rectangle circle diamond star triangle speech-bubble"`
	X           float64     `json:"x" validate:"gte=-100000,lte=100000"`
	Y           float64     `json:"y" validate:"gte=-100000,lte=100000"`
	Width       float64     `json:"width,omitempty" validate:"gte=0,lte=4000"`
	Height      float64     `json:"height,omitempty" validate:"gte=0,lte=4000"`
	Radius      float64     `json:"radius,omitempty" validate:"gte=0,lte=2000"`
	InnerRadius float64     `json:"innerRadius,omitempty" validate:"gte=0,lte=2000"`
	Points      int         `json:"points,omitempty" validate:"gte=0,lte=64"`
	Label       string      `json:"label"`
	Style       StyleRecord `json:"style"`
}

type StyleRecord struct {
	Fill         string  `json:"fill" validate:"omitempty,hexcolor"`
	Stroke       string  `json:"stroke" validate:"omitempty,hexcolor"`
	StrokeWidth  float64 `json:"strokeWidth" validate:"gte=0"`
	CornerRadius float64 `json:"cornerRadius,omitempty" validate:"gte=0"`
}

type ConnectorRecord struct {
	ID       string `json:"id" validate:"required"`
	SourceID string `json:"sourceId" validate:"required"`
	TargetID string `json:"targetId" validate:"required"`
}

// Serialize captures everything needed to rebuild the scene exactly.
func Serialize(s *Scene) Document {
	doc := Document{
		Version:    documentVersion,
		BoardID:    s.BoardID,
		Title:      s.Title,
		Nodes:      make([]NodeRecord, 0, len(s.nodes)),
		Connectors: make([]ConnectorRecord, 0, len(s.connectors)),
	}
	for _, n := range s.nodes {
		g := n.Geometry
		doc.Nodes = append(doc.Nodes, NodeRecord{
			ID:          n.ID,
			Kind:        n.Kind,
			X:           n.pos.X,
			Y:           n.pos.Y,
			Width:       g.Width,
			Height:      g.Height,
			Radius:      g.Radius,
			InnerRadius: g.InnerRadius,
			Points:      g.Points,
			Label:       n.Label,
			Style: StyleRecord{
				Fill:         n.Style.Fill,
				Stroke:       n.Style.Stroke,
				StrokeWidth:  n.Style.StrokeWidth,
				CornerRadius: n.Style.CornerRadius,
			},
		})
	}
	for _, c := range s.connectors {
		doc.Connectors = append(doc.Connectors, ConnectorRecord{
			ID:       c.ID,
			SourceID: c.SourceID,
			TargetID: c.TargetID,
		})
	}
	return doc
}

// Deserialize builds a fresh scene from doc. Connectors whose endpoints are
// missing (or identical) are dropped and counted rather than failing the
// whole document. Every id is reserved in reg.
func Deserialize(doc Document, reg *Registry, connectorOffset float64) (*Scene, int, error) {
	s := NewScene()
	if doc.BoardID != "" {
		s.BoardID = doc.BoardID
	}
	s.Title = doc.Title

	for _, rec := range doc.Nodes {
		n := &Node{
			ID:   rec.ID,
			Kind: rec.Kind,
			Geometry: Geometry{
				Width:       rec.Width,
				Height:      rec.Height,
				Radius:      rec.Radius,
				InnerRadius: rec.InnerRadius,
				Points:      rec.Points,
			},
			Label: rec.Label,
			Style: Style{
				Fill:         rec.Style.Fill,
				Stroke:       rec.Style.Stroke,
				StrokeWidth:  rec.Style.StrokeWidth,
				CornerRadius: rec.Style.CornerRadius,
			},
			pos: Point{rec.X, rec.Y},
		}
		if err := s.AddNode(n); err != nil {
			return nil, 0, fmt.Errorf("node %s: %w", rec.ID, err)
		}
		reg.Reserve(rec.ID)
	}

	dropped := 0
	for _, rec := range doc.Connectors {
		c := newConnector(rec.SourceID, rec.TargetID, connectorOffset)
		c.ID = rec.ID
		if err := s.AddConnector(c); err != nil {
			if errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrSelfConnector) {
				dropped++
				continue
			}
			return nil, 0, fmt.Errorf("connector %s: %w", rec.ID, err)
		}
		reg.Reserve(rec.ID)
	}
	return s, dropped, nil
}

func encodeDocument(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeDocument parses and validates a document. Nothing is touched on
// failure.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("invalid document: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return Document{}, fmt.Errorf("invalid document: %w", err)
	}
	return doc, nil
}

func validateDocument(doc Document) error {
	if err := validate.Struct(doc); err != nil {
		return formatValidationError(err)
	}
	seen := make(map[string]bool, len(doc.Nodes)+len(doc.Connectors))
	for _, rec := range doc.Nodes {
		if seen[rec.ID] {
			return fmt.Errorf("duplicate id %q", rec.ID)
		}
		seen[rec.ID] = true
		if err := rec.checkGeometry(); err != nil {
			return fmt.Errorf("node %s: %w", rec.ID, err)
		}
	}
	for _, rec := range doc.Connectors {
		if seen[rec.ID] {
			return fmt.Errorf("duplicate id %q", rec.ID)
		}
		seen[rec.ID] = true
	}
	return nil
}

// checkGeometry rejects records missing the size parameters their kind
// draws with.
func (rec NodeRecord) checkGeometry() error {
	switch rec.Kind {
	case KindSticky, KindRectangle, KindSpeechBubble:
		if rec.Width <= 0 || rec.Height <= 0 {
			return fmt.Errorf("%s needs a positive width and height", rec.Kind)
		}
	case KindCircle, KindDiamond, KindTriangle:
		if rec.Radius <= 0 {
			return fmt.Errorf("%s needs a positive radius", rec.Kind)
		}
	case KindStar:
		if rec.Radius <= 0 || rec.InnerRadius <= 0 || rec.Points < 2 {
			return fmt.Errorf("star needs radius, innerRadius and at least 2 points")
		}
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", field)
	case "gte":
		if e.Param() == "0" {
			return fmt.Sprintf("%s must not be negative", field)
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "eq":
		return fmt.Sprintf("%s must be %s", field, e.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a uuid", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// exportFileName names an export after the day it was made.
func exportFileName(now time.Time) string {
	return "whiteboard_" + now.Format("2006-01-02") + ".json"
}

func writeDocumentFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func readDocumentFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return DecodeDocument(data)
}
