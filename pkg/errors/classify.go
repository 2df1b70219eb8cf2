package errors

import (
	"errors"

	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/history"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/reducer"
	"github.com/matzehuels/flowcanvas/pkg/store"
)

// classes maps core sentinels to codes. The first match wins, so more
// specific sentinels come first.
var classes = []struct {
	err  error
	code Code
}{
	{flow.ErrElementNotFound, ErrCodeNotFound},
	{flow.ErrNilModel, ErrCodeInvalidInput},
	{flow.ErrInvalidElementType, ErrCodeInvalidInput},

	{history.ErrNothingToUndo, ErrCodeHistoryMisuse},
	{history.ErrNothingToRedo, ErrCodeHistoryMisuse},
	{history.ErrSessionOpen, ErrCodeHistoryMisuse},
	{history.ErrNoSession, ErrCodeHistoryMisuse},
	{store.ErrReentrantDispatch, ErrCodeHistoryMisuse},
	{history.ErrNilState, ErrCodeInternal},

	{layout.ErrRoundTrip, ErrCodeConversion},

	{action.ErrUnknownType, ErrCodeInvalidFormat},
	{action.ErrInvalidPayload, ErrCodeInvalidInput},
	{reducer.ErrUnknownAction, ErrCodeUnsupported},
	{reducer.ErrNotReducible, ErrCodeUnsupported},
}

// Classify attaches a code to err. Errors that already carry a code are
// returned unchanged; flow violations are STRUCTURAL unless a more specific
// sentinel matches; anything else is INTERNAL. Classify(nil) is nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if GetCode(err) != "" {
		return err
	}
	for _, c := range classes {
		if errors.Is(err, c.err) {
			return &Error{Code: c.code, Message: err.Error(), Cause: err}
		}
	}
	var v *flow.Violation
	if errors.As(err, &v) {
		return &Error{Code: ErrCodeStructural, Message: err.Error(), Cause: err}
	}
	return &Error{Code: ErrCodeInternal, Message: err.Error(), Cause: err}
}
