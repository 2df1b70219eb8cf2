package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/docstore"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	flowio "github.com/matzehuels/flowcanvas/pkg/io"
)

// editCommand creates the "edit" command that opens the terminal editor on
// a flow file or, with --doc, on a stored flow.
func (c *CLI) editCommand() *cobra.Command {
	var doc bool

	cmd := &cobra.Command{
		Use:   "edit <file|id>",
		Short: "Edit a flow interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if doc {
				return c.withDocs(cmd.Context(), func(docs docstore.Store) error {
					m, err := docstore.Load(cmd.Context(), docs, args[0])
					if err != nil {
						return err
					}
					return c.runEditor(cmd.Context(), m, func(m *flow.Model) error {
						return docstore.Save(cmd.Context(), docs, args[0], m)
					})
				})
			}
			m, err := flowio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			return c.runEditor(cmd.Context(), m, func(m *flow.Model) error {
				return flowio.ExportJSON(m, args[0])
			})
		},
	}

	cmd.Flags().BoolVar(&doc, "doc", false, "treat the argument as a document store id")

	return cmd
}

func (c *CLI) runEditor(ctx context.Context, m *flow.Model, save func(*flow.Model) error) error {
	_, s, err := c.newStore(m)
	if err != nil {
		return err
	}
	editor := NewEditorModel(s, save)
	defer editor.Close()

	if _, err := tea.NewProgram(editor, tea.WithContext(ctx), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if editor.Dirty {
		printWarning("Quit with unsaved changes")
	}
	return nil
}
