package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/config"
	"github.com/matzehuels/flowcanvas/pkg/docstore"
	ferrors "github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	flowio "github.com/matzehuels/flowcanvas/pkg/io"
	"github.com/matzehuels/flowcanvas/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "flowcanvas"

	// stdio names standard input or output in file arguments.
	stdio = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	out        io.Writer
	errOut     io.Writer
	in         io.Reader
}

// New creates a CLI logging to w. Spinners also draw on w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
		errOut: w,
		in:     os.Stdin,
	}
}

// SetLogLevel updates the logger's level. Debug level also reports callers.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportCaller(level <= log.DebugLevel)
}

// SetOutput redirects command output, which is stdout by default.
func (c *CLI) SetOutput(w io.Writer) { c.out = w }

// SetInput redirects standard input for "-" file arguments.
func (c *CLI) SetInput(r io.Reader) { c.in = r }

// loadConfig reads the --config file, or the default path when it exists.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "storage", cfg.Storage.Backend,
		"history_limit", cfg.History.Limit)
	return nil
}

// =============================================================================
// Store Factory
// =============================================================================

// newStore wraps m in a graph store configured from c.Config.
func (c *CLI) newStore(m *flow.Model) (*store.Graph, store.Store, error) {
	g, err := store.New(m,
		store.WithHistory(c.Config.HistoryOptions()...),
		store.WithLogger(c.Logger))
	if err != nil {
		return nil, nil, err
	}
	var s store.Store = g
	if c.Config.Debug.AssertState || c.Config.Debug.AssertRoundTrip {
		s = store.WithAssertions(s, store.AssertOptions{
			RoundTrip: c.Config.Debug.AssertRoundTrip,
			Layout:    c.Config.LayoutOptions(),
			Logger:    c.Logger,
		})
	}
	return g, store.WithLogging(s, c.Logger), nil
}

// openDocs opens the configured document store.
func (c *CLI) openDocs(ctx context.Context) (docstore.Store, error) {
	return docstore.Open(ctx, c.Config.Storage)
}

// =============================================================================
// Flow Files
// =============================================================================

// readFlow decodes a flow document from path, or from stdin for "-".
func (c *CLI) readFlow(path string) (*flow.Model, error) {
	if path == stdio {
		return flowio.ReadJSON(c.in)
	}
	if err := ferrors.ValidatePath(path); err != nil {
		return nil, err
	}
	return flowio.ImportJSON(path)
}

// writeFlow encodes m to path, or to the command output for "" and "-".
func (c *CLI) writeFlow(m *flow.Model, path string) error {
	if path == "" || path == stdio {
		return flowio.WriteJSON(m, c.out)
	}
	if err := ferrors.ValidatePath(path); err != nil {
		return err
	}
	if err := flowio.ExportJSON(m, path); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// writeOutput writes data to path, or to the command output for "" and "-".
func (c *CLI) writeOutput(data []byte, path string) error {
	if path == "" || path == stdio {
		_, err := c.out.Write(data)
		return err
	}
	if err := ferrors.ValidatePath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// documentID derives a document id from a file name ("flows/order.json" → "order").
func documentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
