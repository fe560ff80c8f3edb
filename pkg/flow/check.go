package flow

import (
	"fmt"
	"strings"
)

// IssueKind classifies a document problem.
type IssueKind string

const (
	IssueUnknownPhase IssueKind = "unknown-phase"
	IssueUnknownLane  IssueKind = "unknown-lane"
	IssueDuplicateID  IssueKind = "duplicate-id"
	IssueEmptyID      IssueKind = "empty-id"
	IssueDanglingFlow IssueKind = "dangling-flow"
	IssueNoPhases     IssueKind = "no-phases"
	IssueNoLanes      IssueKind = "no-lanes"
)

// Issue is a single problem found by [Document.Check].
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Subject string    `json:"subject"`
	Detail  string    `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Kind, i.Subject, i.Detail)
}

// Report collects the issues of a document. None of them prevent layout:
// the engine drops the affected nodes and flows.
type Report struct {
	Issues []Issue `json:"issues"`
}

// OK reports whether no issues were found.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// Count returns the number of issues of the given kind.
func (r Report) Count(kind IssueKind) int {
	n := 0
	for _, i := range r.Issues {
		if i.Kind == kind {
			n++
		}
	}
	return n
}

// String renders one issue per line.
func (r Report) String() string {
	var b strings.Builder
	for _, i := range r.Issues {
		b.WriteString(i.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Report) add(kind IssueKind, subject, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Subject: subject, Detail: fmt.Sprintf(format, args...)})
}

// Check reports dangling references and duplicate identifiers. Issues are
// listed in document order.
func (d *Document) Check() Report {
	var r Report
	if len(d.Phases) == 0 {
		r.add(IssueNoPhases, "phases", "document has no phases")
	}
	if len(d.Lanes) == 0 {
		r.add(IssueNoLanes, "lanes", "document has no lanes")
	}

	phases, lanes := d.PhaseIndex(), d.LaneIndex()
	ids := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		subject := n.ID
		if n.ID == "" {
			subject = fmt.Sprintf("nodes[%d]", i)
			r.add(IssueEmptyID, subject, "node %q has no id", n.Label)
		} else if ids[n.ID] {
			r.add(IssueDuplicateID, subject, "id used by more than one node")
		}
		if n.ID != "" {
			ids[n.ID] = true
		}
		if _, ok := phases[n.Phase]; !ok {
			r.add(IssueUnknownPhase, subject, "phase %q is not declared", n.Phase)
		}
		if _, ok := lanes[n.Lane]; !ok {
			r.add(IssueUnknownLane, subject, "lane %q is not declared", n.Lane)
		}
	}

	for i, f := range d.Flows {
		subject := fmt.Sprintf("flows[%d]", i)
		if !ids[f.From] {
			r.add(IssueDanglingFlow, subject, "source %q does not exist", f.From)
		}
		if !ids[f.To] {
			r.add(IssueDanglingFlow, subject, "target %q does not exist", f.To)
		}
	}
	return r
}
