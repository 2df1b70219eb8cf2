package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/history"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/reducer"
	"github.com/matzehuels/flowcanvas/pkg/store"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"missing element", &flow.Violation{Err: flow.ErrElementNotFound, Guids: []string{"a"}}, ErrCodeNotFound},
		{"cycle", &flow.Violation{Err: flow.ErrCycle, Guids: []string{"a", "b"}}, ErrCodeStructural},
		{"slot occupied", &flow.Violation{Err: flow.ErrSlotOccupied}, ErrCodeStructural},
		{"bad element type", &flow.Violation{Err: flow.ErrInvalidElementType}, ErrCodeInvalidInput},
		{"nothing to undo", history.ErrNothingToUndo, ErrCodeHistoryMisuse},
		{"session open", fmt.Errorf("apply: %w", history.ErrSessionOpen), ErrCodeHistoryMisuse},
		{"reentrant", store.ErrReentrantDispatch, ErrCodeHistoryMisuse},
		{"round trip", &flow.Violation{Err: layout.ErrRoundTrip}, ErrCodeConversion},
		{"unknown action type", fmt.Errorf("%w: Paint", action.ErrUnknownType), ErrCodeInvalidFormat},
		{"history action in reducer", reducer.ErrNotReducible, ErrCodeUnsupported},
		{"already coded", New(ErrCodeInvalidID, "bad id"), ErrCodeInvalidID},
		{"plain error", errors.New("disk full"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if code := GetCode(got); code != tt.want {
				t.Errorf("GetCode(Classify()) = %v, want %v", code, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("Classify() lost the cause %v", tt.err)
			}
		})
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) != nil")
	}
}
