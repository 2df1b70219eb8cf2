// Package layout converts flows between the free-form and the auto-layout
// representation.
//
// # Overview
//
// Both representations hold the same elements and connectors. They differ in
// how placement is expressed:
//
//   - Free-form: every canvas element carries explicit LocationX/LocationY
//     and branch ordering is incidental.
//   - Auto-layout: coordinates are zero and every canvas element carries a
//     [flow.Nav] derived purely from connector topology: its previous and
//     next element in the branch, the branch it heads, the heads of its own
//     branches, its merge point and any go-to jumps that do not nest.
//
// [ToAutoLayout] derives the navigation data with [Annotate] and discards the
// coordinates. [ToFreeForm] runs a deterministic tree layout over the
// navigation data, assigns coordinates and drops the navigation data.
// Neither function changes elements or connectors otherwise, so the round
// trip free-form → auto-layout → free-form preserves topology exactly and
// auto-layout → free-form → auto-layout is a no-op on structure.
// [CheckRoundTrip] asserts both laws for a given model.
//
// # Merge Points
//
// The merge point of a branching element is found by traversal. For each
// connected branch the set of elements reachable from its head is computed,
// ignoring fault connectors and loop back edges and stopping at the enclosing
// merge point. The merge point is the earliest element (in topological order)
// reached by the most branches, provided at least two branches meet there.
// When more branches leave towards the enclosing merge point than meet
// inside, the element merges outward and has no next element of its own.
// Without any meeting point the element is terminal.
//
// Branches without elements (open slots, or slots wired straight to the
// merge point) are kept as empty placeholder branches so that every branch
// still merges structurally.
//
// # Go-To Jumps
//
// Connectors that jump into an element already placed elsewhere, or into an
// enclosing merge point that is not the branch's own, cannot be expressed by
// nesting. They are recorded as go-to jumps in Nav.GoTos of the source
// (keyed by [flow.Slot.Key]) and Nav.IncomingGoTo of the target.
package layout
