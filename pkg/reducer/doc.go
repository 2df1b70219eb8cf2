// Package reducer applies actions to flow models.
//
// [Reduce] is a pure function from (model, action) to model. It never
// modifies its input: changed elements and connectors are cloned, and
// everything else keeps pointer identity with the previous model so callers
// can detect changes by comparing pointers. An action that changes nothing
// returns the input pointer unchanged.
//
// # Structural Edits
//
// AddElement splices a new element into the connector chain at a slot named
// by its previous element or by a (parent, branch index) pair. The connector
// that occupied the slot is re-pointed at the new element, keeping its GUID,
// and a new connector continues to the old target. New decisions and waits
// start with open named branches and send their default branch to the
// continuation; new loops start with an empty body (a LOOP_NEXT connector to
// themselves) and leave through LOOP_END.
//
// DeleteElements removes canvas elements and re-threads every incoming
// connector to the element that continues the flow: the REGULAR target, the
// LOOP_END target, the head of the branch to keep, or the merge point.
// Elements that become unreachable from start are pruned.
//
// Connect fills a free slot. Closing a cycle is only allowed onto a loop.
//
// UpdateElement merges a patch and, for branch lists, drops the connectors
// of removed branches and prunes what they alone reached.
//
// Every structural edit re-derives connector counts, capacities and labels
// and, on auto-layout canvases, the navigation data.
//
// # Errors
//
// Structural errors are [*flow.Violation] values wrapping a sentinel from
// package flow and naming the offending GUIDs. They indicate a caller bug
// and are never recovered inside the reducer.
package reducer
