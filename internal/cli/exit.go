package cli

import (
	"context"
	"errors"

	ferrors "github.com/matzehuels/flowcanvas/pkg/errors"
)

// Process exit statuses.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInvalidFlow = 2
	ExitInterrupted = 130
)

// ExitCode maps the error returned by the root command to an exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, errInvalid), ferrors.Is(ferrors.Classify(err), ferrors.ErrCodeStructural):
		return ExitInvalidFlow
	}
	return ExitFailure
}

// Report prints err the way commands print failures and returns its exit
// status. Interrupts and already reported validation failures stay quiet.
func Report(err error) int {
	code := ExitCode(err)
	if code == ExitFailure || (code == ExitInvalidFlow && !errors.Is(err, errInvalid)) {
		printError("%s", ferrors.Detail(ferrors.Classify(err)))
	}
	return code
}
