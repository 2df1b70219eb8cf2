package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

// ReadJSON decodes a flow document from r.
//
// ReadJSON returns an error if:
//   - The JSON is malformed or has an unsupported version
//   - An element or connector has an unknown type
//   - An element GUID is repeated
//   - The decoded model violates a structural invariant ([flow.AssertState])
//
// Derived fields are recomputed rather than read. For auto-layout documents
// navigation data is derived with [layout.Annotate]. The returned model is
// independent of r; ReadJSON does not close r.
func ReadJSON(r io.Reader) (*flow.Model, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if doc.Version > FormatVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}

	m := &flow.Model{
		Elements:       make(map[string]*flow.Element, len(doc.Elements)),
		Connectors:     make([]*flow.Connector, 0, len(doc.Connectors)),
		CanvasElements: doc.CanvasElements,
		Properties: flow.Properties{
			Label:              doc.Properties.Label,
			ProcessType:        doc.Properties.ProcessType,
			Description:        doc.Properties.Description,
			IsAutoLayoutCanvas: doc.Properties.IsAutoLayoutCanvas,
		},
	}
	for _, e := range doc.Elements {
		t := flow.ElementType(e.Type)
		if !t.Valid() {
			return nil, fmt.Errorf("element %s: unknown type %q", e.GUID, e.Type)
		}
		if _, dup := m.Elements[e.GUID]; dup {
			return nil, fmt.Errorf("element %s: %w", e.GUID, flow.ErrDuplicateGUID)
		}
		m.Elements[e.GUID] = &flow.Element{
			GUID:            e.GUID,
			Type:            t,
			Label:           e.Label,
			Name:            e.Name,
			Description:     e.Description,
			LocationX:       e.LocationX,
			LocationY:       e.LocationY,
			ChildReferences: flow.Branches(e.ChildReferences),
			Config:          flow.Config{NotSelectable: e.NotSelectable},
		}
	}
	for _, c := range doc.Connectors {
		t := flow.ConnectorType(c.Type)
		if !t.Valid() {
			return nil, fmt.Errorf("connector %s: unknown type %q", c.GUID, c.Type)
		}
		m.Connectors = append(m.Connectors, &flow.Connector{
			GUID:        c.GUID,
			Source:      c.Source,
			Target:      c.Target,
			Type:        t,
			ChildSource: c.ChildSource,
			Label:       c.Label,
		})
	}

	m.Refresh()
	if err := flow.AssertState(m); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	if m.Properties.IsAutoLayoutCanvas {
		annotated, err := layout.Annotate(m)
		if err != nil {
			return nil, fmt.Errorf("annotate: %w", err)
		}
		m = annotated
	}
	return m, nil
}

// Unmarshal decodes a flow document from data. See [ReadJSON].
func Unmarshal(data []byte) (*flow.Model, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a JSON file at path and returns the decoded flow.
//
// ImportJSON returns the same validation errors as [ReadJSON], wrapped with
// the file path for context.
func ImportJSON(path string) (*flow.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	m, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
