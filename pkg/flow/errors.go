package flow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNilModel is returned when a nil model is checked or reduced.
	ErrNilModel = errors.New("model is nil")

	// ErrElementNotFound is returned when a GUID does not resolve to an element.
	ErrElementNotFound = errors.New("element not found")

	// ErrDuplicateGUID is returned when two elements or connectors share a GUID,
	// or when an element is stored under a key other than its own GUID.
	ErrDuplicateGUID = errors.New("duplicate guid")

	// ErrInvalidElementType is returned for unknown element types or for
	// elements used where their type is not allowed.
	ErrInvalidElementType = errors.New("invalid element type")

	// ErrInvalidAttachment is returned when an insertion point does not denote
	// an existing, compatible slot.
	ErrInvalidAttachment = errors.New("invalid attachment point")

	// ErrInvalidBranch is returned for malformed child references.
	ErrInvalidBranch = errors.New("invalid branch reference")

	// ErrSlotOccupied is returned when a second connector would use a slot.
	ErrSlotOccupied = errors.New("connection slot already occupied")

	// ErrDanglingConnector is returned when a connector endpoint is missing.
	ErrDanglingConnector = errors.New("connector references a missing element")

	// ErrDuplicateBranchConnector is returned when two connectors claim the
	// same (source, child source, type) triple.
	ErrDuplicateBranchConnector = errors.New("duplicate branch connector")

	// ErrConnectorCount is returned when a declared connector count differs
	// from the number of connectors actually leaving the element.
	ErrConnectorCount = errors.New("connector count mismatch")

	// ErrMaxConnections is returned when MaxConnections or
	// AvailableConnections disagree with the element's slots.
	ErrMaxConnections = errors.New("connection capacity mismatch")

	// ErrNoStart is returned when a flow has no start element.
	ErrNoStart = errors.New("flow has no start element")

	// ErrMultipleStarts is returned when a flow has more than one start element.
	ErrMultipleStarts = errors.New("flow has more than one start element")

	// ErrUnreachable is returned when canvas elements cannot be reached from start.
	ErrUnreachable = errors.New("element not reachable from start")

	// ErrCycle is returned for a cycle that does not close on a loop element.
	ErrCycle = errors.New("unsanctioned cycle")

	// ErrCanvasMismatch is returned when CanvasElements does not list exactly
	// the non-child elements of the flow.
	ErrCanvasMismatch = errors.New("canvas elements mismatch")

	// ErrLoopWithoutNext is returned when a loop has no LOOP_NEXT connector.
	ErrLoopWithoutNext = errors.New("loop has no next connector")

	// ErrProtectedElement is returned when deleting an element that must exist.
	ErrProtectedElement = errors.New("element cannot be deleted")
)

// Violation is a structural error. It wraps one of the sentinel errors of
// this package and names the GUIDs involved so a failing edit can be traced
// back to the offending elements and connectors.
type Violation struct {
	Err    error    // Sentinel describing the violated rule
	Detail string   // Human-readable context (optional)
	Guids  []string // Offending element or connector GUIDs
}

// Error implements the error interface.
func (v *Violation) Error() string {
	var b strings.Builder
	b.WriteString(v.Err.Error())
	if v.Detail != "" {
		b.WriteString(": ")
		b.WriteString(v.Detail)
	}
	if len(v.Guids) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(v.Guids, ", "))
	}
	return b.String()
}

// Unwrap returns the wrapped sentinel.
func (v *Violation) Unwrap() error { return v.Err }

// Violationf builds a [*Violation] wrapping err with a formatted detail.
func Violationf(err error, guids []string, format string, args ...any) *Violation {
	return &Violation{Err: err, Detail: fmt.Sprintf(format, args...), Guids: guids}
}

// GuidsOf extracts the offending GUIDs from err if it is (or wraps) a
// [*Violation]. Returns nil otherwise.
func GuidsOf(err error) []string {
	var v *Violation
	if errors.As(err, &v) {
		return v.Guids
	}
	return nil
}
