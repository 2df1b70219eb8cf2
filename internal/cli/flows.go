package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/config"
	"github.com/matzehuels/flowcanvas/pkg/docstore"
)

// flowsCommand creates the document store management command.
func (c *CLI) flowsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flows",
		Short: "Manage flows in the document store",
	}

	cmd.AddCommand(c.flowsListCommand())
	cmd.AddCommand(c.flowsPushCommand())
	cmd.AddCommand(c.flowsPullCommand())
	cmd.AddCommand(c.flowsDeleteCommand())
	cmd.AddCommand(c.flowsPathCommand())

	return cmd
}

// withDocs opens the document store, runs fn and closes the store. Remote
// backends show a spinner while connecting.
func (c *CLI) withDocs(ctx context.Context, fn func(docstore.Store) error) error {
	var docs docstore.Store
	connect := func() (err error) {
		docs, err = c.openDocs(ctx)
		return err
	}

	var err error
	if b := c.Config.Storage.Backend; b == config.BackendRedis || b == config.BackendMongo {
		err = withSpinner(ctx, c.errOut, "Connecting to "+b+"...", "Could not connect to "+b, connect)
	} else {
		err = connect()
	}
	if err != nil {
		return err
	}
	defer docs.Close()
	return fn(docs)
}

// flowsListCommand creates the "flows list" subcommand.
func (c *CLI) flowsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDocs(cmd.Context(), func(docs docstore.Store) error {
				metas, err := docs.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(metas) == 0 {
					printInfo("No stored flows")
					return nil
				}
				fmt.Fprintln(c.out, renderFlowTable(metas, time.Now()))
				return nil
			})
		},
	}
}

// flowsPushCommand creates the "flows push" subcommand.
func (c *CLI) flowsPushCommand() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "push <file>",
		Short: "Store a flow document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.readFlow(args[0])
			if err != nil {
				return err
			}
			if id == "" {
				if args[0] == stdio {
					return fmt.Errorf("--id is required when reading from stdin")
				}
				id = documentID(args[0])
			}
			return c.withDocs(cmd.Context(), func(docs docstore.Store) error {
				if err := docstore.Save(cmd.Context(), docs, id, m); err != nil {
					return err
				}
				printSuccess("Stored %s", StyleHighlight.Render(id))
				stats := m.Stats()
				printStats(stats.Elements, stats.Connectors, m.Properties.IsAutoLayoutCanvas)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "document id (default file name without extension)")

	return cmd
}

// flowsPullCommand creates the "flows pull" subcommand.
func (c *CLI) flowsPullCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull <id>",
		Short: "Write a stored flow document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDocs(cmd.Context(), func(docs docstore.Store) error {
				m, err := docstore.Load(cmd.Context(), docs, args[0])
				if err != nil {
					return err
				}
				return c.writeFlow(m, output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// flowsDeleteCommand creates the "flows delete" subcommand.
func (c *CLI) flowsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete stored flows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDocs(cmd.Context(), func(docs docstore.Store) error {
				for _, id := range args {
					if err := docs.Delete(cmd.Context(), id); err != nil {
						return fmt.Errorf("delete %s: %w", id, err)
					}
					printSuccess("Deleted %s", id)
				}
				return nil
			})
		},
	}
}

// flowsPathCommand creates the "flows path" subcommand.
func (c *CLI) flowsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file store directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Storage.Backend != config.BackendFile {
				return fmt.Errorf("storage backend is %s, not %s", c.Config.Storage.Backend, config.BackendFile)
			}
			dir := c.Config.Storage.Dir
			if dir == "" {
				var err error
				if dir, err = docstore.DefaultDir(); err != nil {
					return fmt.Errorf("get flows dir: %w", err)
				}
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}

// renderFlowTable formats stored flows as a table.
func renderFlowTable(metas []docstore.Meta, now time.Time) string {
	rows := make([][]string, len(metas))
	for i, m := range metas {
		label := m.Label
		if label == "" {
			label = "—"
		}
		rows[i] = []string{m.ID, label, shortHash(m.Hash), formatRelativeTime(m.UpdatedAt, now)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Label", "Hash", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col >= 2:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// formatRelativeTime formats t relative to now ("3h ago").
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return strings.TrimSpace(t.Format("Jan 2, 2006"))
}
