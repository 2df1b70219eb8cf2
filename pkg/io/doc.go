// Package io provides JSON import and export for flow documents.
//
// # Overview
//
// The flow core has no file format of its own; this package is the
// persistence boundary used by the CLI, the document store and the HTTP API.
// It maps a [flow.Model] onto a flat JSON document:
//
//	{
//	  "version": 1,
//	  "properties": {"label": "Onboarding", "processType": "Flow", "isAutoLayoutCanvas": false},
//	  "canvasElements": ["a1", "b2"],
//	  "elements": [
//	    {"guid": "a1", "elementType": "START", "label": "Start", "locationX": 50, "locationY": 50},
//	    {"guid": "b2", "elementType": "END", "label": "End", "locationX": 50, "locationY": 190}
//	  ],
//	  "connectors": [
//	    {"guid": "c3", "source": "a1", "target": "b2", "type": "REGULAR"}
//	  ]
//	}
//
// # Derived Data
//
// Connector counts, capacities, available connections and auto-layout
// navigation data are derived from the connectors and are never written.
// [ReadJSON] re-derives them, so a document edited by hand cannot carry
// inconsistent counts. Transient UI flags (selection, highlight) are not
// persisted either.
//
// # Validation
//
// [ReadJSON] runs [flow.AssertState] on the decoded model and fails with the
// violation if the document is structurally invalid. Auto-layout documents
// are annotated with [layout.Annotate] after decoding.
//
// # Import and Export
//
// Use [ImportJSON]/[ExportJSON] for files and [ReadJSON]/[WriteJSON] for any
// io.Reader/io.Writer. [Marshal] and [Unmarshal] work on byte slices and are
// used by the document store backends.
//
//	m, err := io.ImportJSON("onboarding.flow.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = io.ExportJSON(m, "copy.flow.json")
package io
