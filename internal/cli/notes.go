package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/pkg/cache"
	"github.com/matzehuels/swimlane/pkg/notes"
)

// notesCommand creates the notes command group.
func (c *CLI) notesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Inspect per-node notes from a notes backend",
	}

	cmd.AddCommand(c.notesWorkspacesCommand())
	cmd.AddCommand(c.notesSummaryCommand())

	return cmd
}

// notesWorkspacesCommand creates the "notes workspaces" subcommand.
func (c *CLI) notesWorkspacesCommand() *cobra.Command {
	var (
		flags   notesFlags
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "List notes workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, closeFn, err := c.openNotes(&flags, refresh)
			if err != nil {
				return err
			}
			defer closeFn()

			ws, err := src.Workspaces(cmd.Context())
			if err != nil {
				return fmt.Errorf("list workspaces: %w", err)
			}
			if len(ws) == 0 {
				printInfo("No workspaces")
				return nil
			}
			fmt.Println(workspaceTable(ws))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")

	return cmd
}

// notesSummaryCommand creates the "notes summary" subcommand.
func (c *CLI) notesSummaryCommand() *cobra.Command {
	var (
		flags     notesFlags
		workspace string
		output    string
		asJSON    bool
		refresh   bool
	)

	cmd := &cobra.Command{
		Use:   "summary [document]",
		Short: "Summarize a workspace's notes in diagram order",
		Long: `Summarize a workspace's notes in diagram order.

Notes are listed by phase, then lane, then node label, as Markdown (default)
or JSON. Notes whose node is not in the document are listed separately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" {
				return fmt.Errorf("--workspace is required")
			}
			return c.runNotesSummary(cmd.Context(), args[0], &flags, workspace, output, asJSON, refresh)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&workspace, "workspace", "", "workspace id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON instead of Markdown")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")

	return cmd
}

func (c *CLI) runNotesSummary(ctx context.Context, input string, flags *notesFlags, workspace, output string, asJSON, refresh bool) error {
	doc, err := c.loadDocument(ctx, input, false)
	if err != nil {
		return err
	}

	src, closeFn, err := c.openNotes(flags, refresh)
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := loadNotes(ctx, src, workspace)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	summary := notes.Summarize(doc, workspace, n)

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(summary)
	} else {
		err = notes.WriteMarkdown(out, summary)
	}
	if err != nil {
		return err
	}

	for _, id := range summary.Orphans {
		c.Logger.Warn("note for unknown node", "node", id)
	}
	if output != "" && output != "-" {
		printSuccess("Summarized %d note(s)", len(summary.Entries))
		printFile(output)
	}
	return nil
}

// openNotes builds the configured notes source backed by the file cache.
func (c *CLI) openNotes(flags *notesFlags, refresh bool) (notes.Source, func(), error) {
	fc, err := newCache(false)
	if err != nil {
		fc = cache.NewNullCache()
	}
	closeFn := func() { fc.Close() }

	src, err := flags.source(fc, refresh)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if src == nil {
		closeFn()
		return nil, nil, fmt.Errorf("--notes-url or --notes-file is required")
	}
	return src, closeFn, nil
}

// workspaceTable renders workspaces as a bordered table.
func workspaceTable(ws []notes.Workspace) string {
	rows := make([][]string, len(ws))
	for i, w := range ws {
		rows[i] = []string{w.ID, w.Name, formatRelativeTime(w.Created())}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 2:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		String()
}

