package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/notes"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorValue)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// NodeListModel - Interactive node browser
// =============================================================================

// NodeListModel is the bubbletea model for browsing a document's nodes
// together with their tags and notes.
type NodeListModel struct {
	Nodes  []flow.Node
	Notes  notes.Notes
	Tags   flow.TagCatalog
	Cursor int
	Height int
	Offset int
	// Noted restricts the list to nodes with a note when toggled with "n".
	Noted bool

	all []flow.Node
}

// NewNodeListModel creates a node browser in document order.
func NewNodeListModel(doc *flow.Document, n notes.Notes, tags flow.TagCatalog) NodeListModel {
	return NodeListModel{
		Nodes:  doc.Nodes,
		Notes:  n,
		Tags:   tags,
		Height: 15,
		all:    doc.Nodes,
	}
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "n":
			m.Noted = !m.Noted
			m.Nodes = m.filtered()
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m NodeListModel) filtered() []flow.Node {
	if !m.Noted {
		return m.all
	}
	var out []flow.Node
	for _, n := range m.all {
		if strings.TrimSpace(m.Notes[n.ID]) != "" {
			out = append(out, n)
		}
	}
	return out
}

// Current returns the node under the cursor.
func (m NodeListModel) Current() (flow.Node, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Nodes) {
		return flow.Node{}, false
	}
	return m.Nodes[m.Cursor], true
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Nodes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  n noted only  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		noted := ""
		if strings.TrimSpace(m.Notes[n.ID]) != "" {
			noted = "✎"
		}
		rows = append(rows, []string{cursor, n.ID, n.Phase, n.Lane, string(n.Kind), m.chips(n), noted})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Phase", "Lane", "Kind", "Tags", "Note").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorOK).Bold(true)
			}
			if col == 4 || col == 5 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if n, ok := m.Current(); ok {
		b.WriteString(m.detail(n))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Nodes)), len(m.Nodes))))

	return b.String()
}

func (m NodeListModel) chips(n flow.Node) string {
	shorts := make([]string, len(n.Tags))
	for i, id := range n.Tags {
		info, _ := m.Tags.Lookup(id)
		shorts[i] = info.Short
	}
	return strings.Join(shorts, " ")
}

func (m NodeListModel) detail(n flow.Node) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(strings.ReplaceAll(n.Label, "\n", " ")))
	b.WriteString("\n")
	for _, id := range n.Tags {
		info, _ := m.Tags.Lookup(id)
		b.WriteString(listNormalStyle.Render("  " + info.Label))
		b.WriteString(listDimStyle.Render("  " + info.Source))
		b.WriteString("\n")
	}
	if note := strings.TrimSpace(m.Notes[n.ID]); note != "" {
		b.WriteString(StyleWarning.Render("  ✎ " + note))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// WorkspaceListModel - Interactive workspace selection
// =============================================================================

// WorkspaceListModel is the bubbletea model for picking a notes workspace.
type WorkspaceListModel struct {
	Workspaces []notes.Workspace
	Cursor     int
	Selected   *notes.Workspace
}

// NewWorkspaceListModel creates a new workspace list model.
func NewWorkspaceListModel(ws []notes.Workspace) WorkspaceListModel {
	return WorkspaceListModel{Workspaces: ws}
}

func (m WorkspaceListModel) Init() tea.Cmd {
	return nil
}

func (m WorkspaceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Workspaces)-1 {
				m.Cursor++
			}
		case "enter":
			if len(m.Workspaces) == 0 {
				return m, nil
			}
			m.Selected = &m.Workspaces[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m WorkspaceListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Workspace"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, ws := range m.Workspaces {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-25s  %s", cursor, ws.Name, listDimStyle.Render(formatRelativeTime(ws.Created())))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
