package notes

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/matzehuels/swimlane/pkg/flow"
)

// Entry is one noted node.
type Entry struct {
	NodeID string `json:"node_id"`
	Label  string `json:"label"`
	Phase  string `json:"phase"`
	Lane   string `json:"lane"`
	Note   string `json:"note"`
}

// Summary pairs a workspace's notes with the diagram's nodes.
type Summary struct {
	Workspace string  `json:"workspace"`
	Entries   []Entry `json:"entries"`
	// Orphans are noted ids that are not nodes of the document.
	Orphans []string `json:"orphans,omitempty"`
}

// Summarize orders the notes by the document's phase and lane order, then
// by label. Blank notes are skipped.
func Summarize(doc *flow.Document, workspace string, notes Notes) Summary {
	s := Summary{Workspace: workspace}
	phaseIdx, laneIdx := doc.PhaseIndex(), doc.LaneIndex()

	for _, id := range notes.NodeIDs() {
		n, ok := doc.NodeByID(id)
		if !ok {
			s.Orphans = append(s.Orphans, id)
			continue
		}
		s.Entries = append(s.Entries, Entry{
			NodeID: id,
			Label:  n.Label,
			Phase:  n.Phase,
			Lane:   n.Lane,
			Note:   strings.TrimSpace(notes[id]),
		})
	}

	rank := func(m map[string]int, k string) int {
		if i, ok := m[k]; ok {
			return i
		}
		return len(m)
	}
	sort.SliceStable(s.Entries, func(i, j int) bool {
		a, b := s.Entries[i], s.Entries[j]
		if pa, pb := rank(phaseIdx, a.Phase), rank(phaseIdx, b.Phase); pa != pb {
			return pa < pb
		}
		if la, lb := rank(laneIdx, a.Lane), rank(laneIdx, b.Lane); la != lb {
			return la < lb
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.NodeID < b.NodeID
	})
	return s
}

// WriteMarkdown writes the summary as a markdown document, one section per
// phase.
func WriteMarkdown(w io.Writer, s Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Notes: %s\n", s.Workspace)
	if len(s.Entries) == 0 {
		b.WriteString("\n_No notes._\n")
	}
	phase := ""
	for i, e := range s.Entries {
		if i == 0 || e.Phase != phase {
			phase = e.Phase
			fmt.Fprintf(&b, "\n## %s\n\n", phase)
		}
		fmt.Fprintf(&b, "- **%s** (%s): %s\n", e.Label, e.Lane, indentContinuation(e.Note))
	}
	if len(s.Orphans) > 0 {
		b.WriteString("\n## Notes for removed nodes\n\n")
		for _, id := range s.Orphans {
			fmt.Fprintf(&b, "- `%s`\n", id)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func indentContinuation(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
