package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/swimlane/pkg/flow"
)

// nodesCommand creates the nodes command, which lists a document's nodes.
func (c *CLI) nodesCommand() *cobra.Command {
	var (
		phase   string
		lane    string
		tag     string
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "nodes [document]",
		Short: "List the nodes of a flow document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadDocument(cmd.Context(), args[0], noCache)
			if err != nil {
				return err
			}
			nodes := filterNodes(doc.Nodes, phase, lane, tag)
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(nodes)
			}
			tags, err := c.tagCatalog()
			if err != nil {
				return err
			}
			fmt.Println(nodeTable(nodes, tags))
			printStats(len(nodes), 0, cacheUnused)
			return nil
		},
	}

	cmd.Flags().StringVar(&phase, "phase", "", "only nodes in this phase")
	cmd.Flags().StringVar(&lane, "lane", "", "only nodes in this lane")
	cmd.Flags().StringVar(&tag, "tag", "", "only nodes carrying this tag")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// loadDocument opens and loads a document reference through the runner.
func (c *CLI) loadDocument(ctx context.Context, input string, noCache bool) (*flow.Document, error) {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.baseOptions()
	opts.Source = input
	src, err := runner.Open(opts)
	if err != nil {
		return nil, err
	}
	doc, err := runner.Load(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}
	return doc, nil
}

// tagCatalog resolves the tag metadata of the configured preset and config.
func (c *CLI) tagCatalog() (flow.TagCatalog, error) {
	opts := c.baseOptions()
	cfg, err := opts.ResolveConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Tags, nil
}

// filterNodes keeps the nodes matching every non-empty criterion.
func filterNodes(nodes []flow.Node, phase, lane, tag string) []flow.Node {
	out := make([]flow.Node, 0, len(nodes))
	for _, n := range nodes {
		if phase != "" && n.Phase != phase {
			continue
		}
		if lane != "" && n.Lane != lane {
			continue
		}
		if tag != "" && !hasTag(n, tag) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func hasTag(n flow.Node, tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// nodeTable renders nodes as a bordered table.
func nodeTable(nodes []flow.Node, tags flow.TagCatalog) string {
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		labels := make([]string, len(n.Tags))
		for j, id := range n.Tags {
			info, _ := tags.Lookup(id)
			labels[j] = info.Short
		}
		rows[i] = []string{n.ID, strings.ReplaceAll(n.Label, "\n", " "), n.Phase, n.Lane, string(n.Kind), strings.Join(labels, " ")}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Label", "Phase", "Lane", "Kind", "Tags").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col >= 4:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		String()
}
