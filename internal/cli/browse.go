package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/pkg/notes"
)

// browseCommand creates the browse command, an interactive node browser.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		flags     notesFlags
		workspace string
		refresh   bool
	)

	cmd := &cobra.Command{
		Use:   "browse [document]",
		Short: "Browse a document's nodes, tags and notes interactively",
		Long: `Browse a document's nodes, tags and notes interactively.

With a notes backend and no --workspace, a workspace is picked from a list
first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := c.loadDocument(ctx, args[0], false)
			if err != nil {
				return err
			}
			tags, err := c.tagCatalog()
			if err != nil {
				return err
			}

			var n notes.Notes
			if flags.url != "" || flags.file != "" {
				src, closeFn, err := c.openNotes(&flags, refresh)
				if err != nil {
					return err
				}
				defer closeFn()

				if workspace == "" {
					ws, err := src.Workspaces(ctx)
					if err != nil {
						return fmt.Errorf("list workspaces: %w", err)
					}
					picked, err := pickWorkspace(ws)
					if err != nil || picked == nil {
						return err
					}
					workspace = picked.ID
				}
				if n, err = src.Notes(ctx, workspace); err != nil {
					return fmt.Errorf("load notes: %w", err)
				}
			}

			_, err = tea.NewProgram(NewNodeListModel(doc, n, tags), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&workspace, "workspace", "", "notes workspace to show")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")

	return cmd
}

// pickWorkspace runs the workspace list and returns the selection, or nil
// when the user quit.
func pickWorkspace(ws []notes.Workspace) (*notes.Workspace, error) {
	if len(ws) == 0 {
		printInfo("No workspaces")
		return nil, nil
	}
	final, err := tea.NewProgram(NewWorkspaceListModel(ws)).Run()
	if err != nil {
		return nil, err
	}
	return final.(WorkspaceListModel).Selected, nil
}
