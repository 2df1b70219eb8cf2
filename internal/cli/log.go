// Package cli implements the flowcanvas command-line interface.
//
// The commands create, validate, convert and render flow documents, replay
// action scripts through a graph store, edit flows in an interactive
// terminal editor, manage the document store and serve the HTTP API. The
// CLI is built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - new: Write a flow holding a start and an end element
//   - validate: Check a flow document against the structural invariants
//   - convert: Switch between free-form and auto-layout canvases
//   - apply: Replay an action script against a flow
//   - render: Generate DOT, SVG, PDF or PNG node-link diagrams
//   - edit: Edit a flow in the terminal
//   - flows: List, push, pull and delete stored flows
//   - serve: Run the HTTP API
//
// # Configuration
//
// All commands read the TOML file named by --config, or the default config
// path when it exists. History, debug assertions, storage and layout
// settings come from there.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/flowcanvas/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. At debug level it also reports the
// caller, which is where assertion failures from the store surface.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one command step against one flow.
type progress struct {
	logger *log.Logger
	step   string
	start  time.Time
}

// startProgress begins a step on the flow at path. The step logger carries
// the flow path as a field for everything logged through it.
func startProgress(ctx context.Context, step, path string) *progress {
	l := loggerFromContext(ctx)
	if path != "" {
		l = l.With("flow", path)
	}
	l.Debug("starting", "step", step)
	return &progress{logger: l, step: step, start: time.Now()}
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// done logs msg with keyvals and the elapsed time.
// Example output: "Applied 12 actions flow=order.json took=4ms"
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "took", p.elapsed())...)
}

// fail logs err against the step and returns it unchanged.
func (p *progress) fail(err error) error {
	p.logger.Debug(p.step+" failed", "err", err, "took", p.elapsed())
	return err
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() for commands run without the root pre-run hook.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
