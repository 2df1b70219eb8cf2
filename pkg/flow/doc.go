// Package flow provides the in-memory flow graph model edited on a flow canvas.
//
// # Overview
//
// A flow is a directed, branching process graph. Its nodes are [Element]
// values keyed by GUID, its edges are typed [Connector] values, and the
// [Model] aggregate ties both together with the ordered list of canvas-visible
// elements and the document [Properties]. The model is the unit that is
// persisted, converted between layouts and tracked by undo/redo.
//
// # Slots and Branches
//
// Every element type declares an ordered list of outgoing attachment points,
// called slots (see [Element.Slots]). A slot is a (connector type, child
// source) pair and holds at most one connector:
//
//	screen:    [REGULAR]
//	subflow:   [REGULAR, FAULT]
//	decision:  [REGULAR(outcome1), REGULAR(outcome2), DEFAULT]
//	wait:      [REGULAR(event1), DEFAULT, FAULT]
//	loop:      [LOOP_NEXT, LOOP_END]
//
// Multi-outcome elements own child elements (decision outcomes, wait events,
// scheduled paths) listed in [Element.ChildReferences]. Branch index i below
// the number of children addresses a named branch; the index equal to the
// number of children addresses the parent's default branch, which always
// comes last. [Branches] offers named insert/remove operations so callers
// never splice child lists by raw position.
//
// # Derived Fields
//
// ConnectorCount, MaxConnections and AvailableConnections are never trusted
// from callers. [Model.Refresh] recomputes them from the connector list,
// replacing only the elements whose derived fields actually changed so that
// untouched elements keep their pointer identity.
//
// # Invariants
//
// [AssertState] is the structural invariant checker. It is meant to run after
// every mutation in debug and test builds and reports the first violation as
// a [*Violation] naming the offending GUIDs. Structural errors wrap the
// sentinel errors declared in this package and can be tested with errors.Is.
//
// # Immutability
//
// Models are treated as immutable values once published. Code that derives a
// new model starts from [Model.Clone], which copies the element map and the
// slices but shares element and connector pointers, and clones individual
// elements or connectors before changing them.
//
// # Concurrency
//
// Model values are not safe for concurrent mutation. Published models are
// never mutated, so concurrent reads of the same model are safe.
package flow
