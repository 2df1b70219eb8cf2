package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// FormatVersion is the document version written by [WriteJSON].
const FormatVersion = 1

type document struct {
	Version        int         `json:"version"`
	Properties     properties  `json:"properties"`
	CanvasElements []string    `json:"canvasElements"`
	Elements       []element   `json:"elements"`
	Connectors     []connector `json:"connectors"`
}

type properties struct {
	Label              string `json:"label,omitempty"`
	ProcessType        string `json:"processType,omitempty"`
	Description        string `json:"description,omitempty"`
	IsAutoLayoutCanvas bool   `json:"isAutoLayoutCanvas"`
}

type element struct {
	GUID            string   `json:"guid"`
	Type            string   `json:"elementType"`
	Label           string   `json:"label,omitempty"`
	Name            string   `json:"name,omitempty"`
	Description     string   `json:"description,omitempty"`
	LocationX       float64  `json:"locationX,omitempty"`
	LocationY       float64  `json:"locationY,omitempty"`
	ChildReferences []string `json:"childReferences,omitempty"`
	NotSelectable   bool     `json:"notSelectable,omitempty"`
}

type connector struct {
	GUID        string `json:"guid"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	ChildSource string `json:"childSource,omitempty"`
	Label       string `json:"label,omitempty"`
}

func toDocument(m *flow.Model) document {
	doc := document{
		Version: FormatVersion,
		Properties: properties{
			Label:              m.Properties.Label,
			ProcessType:        m.Properties.ProcessType,
			Description:        m.Properties.Description,
			IsAutoLayoutCanvas: m.Properties.IsAutoLayoutCanvas,
		},
		CanvasElements: append([]string{}, m.CanvasElements...),
		Elements:       make([]element, 0, len(m.Elements)),
		Connectors:     make([]connector, len(m.Connectors)),
	}

	ids := make([]string, 0, len(m.Elements))
	for id := range m.Elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		e := m.Elements[id]
		doc.Elements = append(doc.Elements, element{
			GUID:            e.GUID,
			Type:            string(e.Type),
			Label:           e.Label,
			Name:            e.Name,
			Description:     e.Description,
			LocationX:       e.LocationX,
			LocationY:       e.LocationY,
			ChildReferences: e.ChildReferences,
			NotSelectable:   e.Config.NotSelectable,
		})
	}
	for i, c := range m.Connectors {
		doc.Connectors[i] = connector{
			GUID:        c.GUID,
			Source:      c.Source,
			Target:      c.Target,
			Type:        string(c.Type),
			ChildSource: c.ChildSource,
			Label:       c.Label,
		}
	}
	return doc
}

// WriteJSON encodes a flow as indented JSON and writes it to w.
// Elements are written sorted by GUID and connectors in model order, so the
// output is stable for a given model.
func WriteJSON(m *flow.Model, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(m)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the JSON encoding of m as written by [WriteJSON].
func Marshal(m *flow.Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes a flow to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(m *flow.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}
