// Package pkg provides the core libraries for flowcanvas flow authoring.
//
// # Overview
//
// flowcanvas edits automation flows: graphs of elements (screens, decisions,
// loops, record operations) joined by typed connectors. Every edit goes
// through a pure reducer that keeps the structural invariants of the graph,
// and every committed edit can be undone. The pkg directory is organized
// into four main areas:
//
//  1. Core - the flow model, actions, reducer, layout engine and history
//  2. Store - the per-document graph store that ties the core together
//  3. Infrastructure - persistence, configuration, errors, observability
//  4. Presentation - JSON codec and node-link rendering
//
// # Architecture
//
// The typical data flow through flowcanvas:
//
//	action (CLI, HTTP, editor)
//	         ↓
//	    [store] package (dispatch, listeners, decorators)
//	         ↓
//	    [history] package (undo/redo entries, edit sessions)
//	         ↓
//	    [reducer] package (copy-on-write structural edits)
//	         ↓
//	    [layout] package (auto-layout navigation, canvas conversion)
//	         ↓
//	    new [flow] model, persisted with [io] and [docstore]
//
// # Quick Start
//
// Create a flow, add an element and undo it:
//
//	import (
//	    "github.com/matzehuels/flowcanvas/pkg/action"
//	    "github.com/matzehuels/flowcanvas/pkg/flow"
//	    "github.com/matzehuels/flowcanvas/pkg/store"
//	)
//
//	m := flow.New(flow.Properties{Label: "Onboarding"})
//	g, _ := store.New(m)
//	_ = g.Dispatch(action.AddElement{
//	    Element:  action.NewElement{Type: flow.ElementScreen, Label: "Welcome"},
//	    Position: action.Position{Prev: m.Start().GUID},
//	})
//	_ = g.Dispatch(action.Undo{})
//
// # Main Packages
//
// ## Core
//
// [flow] - Elements, connectors, attachment slots and the invariant checker.
//
// [action] - The closed set of edit actions and their JSON envelope codec.
//
// [reducer] - Applies one action to a model, returning a new model that
// shares every unchanged element and connector with the old one.
//
// [layout] - Derives auto-layout navigation from connectors and converts
// between free-form and auto-layout canvases.
//
// [history] - Undo/redo stacks with grouping, blacklisting and edit sessions.
//
// [store] - One document's current flow, its history and its subscribers.
//
// ## Infrastructure
//
// [docstore] - Document persistence with file, memory, Redis and MongoDB
// backends.
//
// [config] - TOML configuration.
//
// [errors] - Machine-readable error codes for the CLI and HTTP API.
//
// [observability] - Hooks for dispatch, storage and HTTP metrics.
//
// ## Presentation
//
// [io] - Flow document JSON.
//
// [render] - SVG/PDF/PNG conversion and node-link diagrams.
//
// [flow]: github.com/matzehuels/flowcanvas/pkg/flow
// [action]: github.com/matzehuels/flowcanvas/pkg/action
// [reducer]: github.com/matzehuels/flowcanvas/pkg/reducer
// [layout]: github.com/matzehuels/flowcanvas/pkg/layout
// [history]: github.com/matzehuels/flowcanvas/pkg/history
// [store]: github.com/matzehuels/flowcanvas/pkg/store
// [docstore]: github.com/matzehuels/flowcanvas/pkg/docstore
// [config]: github.com/matzehuels/flowcanvas/pkg/config
// [errors]: github.com/matzehuels/flowcanvas/pkg/errors
// [observability]: github.com/matzehuels/flowcanvas/pkg/observability
// [io]: github.com/matzehuels/flowcanvas/pkg/io
// [render]: github.com/matzehuels/flowcanvas/pkg/render
package pkg
