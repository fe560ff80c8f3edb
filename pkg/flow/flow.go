package flow

import (
	"sort"
	"strings"
)

// Kind is the visual variant of a node.
type Kind string

const (
	KindTask    Kind = "task"
	KindEvent   Kind = "event"
	KindGateway Kind = "gateway"
)

// ParseKind converts s to a Kind. Matching is case-insensitive; anything
// unrecognized (including the empty string) is a task.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindEvent:
		return KindEvent
	case KindGateway:
		return KindGateway
	default:
		return KindTask
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// Node is a single task, event or gateway placed in a (phase, lane) cell.
type Node struct {
	ID        string   `json:"id" yaml:"id"`
	Label     string   `json:"label" yaml:"label"`
	Phase     string   `json:"phase" yaml:"phase"`
	Lane      string   `json:"lane" yaml:"lane"`
	Kind      Kind     `json:"kind" yaml:"kind"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Highlight bool     `json:"highlight,omitempty" yaml:"highlight,omitempty"`
}

// PrimaryTag returns the first tag, which is the default click target, or ""
// if the node has no tags.
func (n Node) PrimaryTag() string {
	if len(n.Tags) == 0 {
		return ""
	}
	return n.Tags[0]
}

// Flow is a directed connection between two nodes.
type Flow struct {
	From string
	To   string
}

// Document is the abstract swimlane diagram.
type Document struct {
	Phases []string `json:"phases" yaml:"phases"`
	Lanes  []string `json:"lanes" yaml:"lanes"`
	Nodes  []Node   `json:"nodes" yaml:"nodes"`
	Flows  []Flow   `json:"flows" yaml:"flows"`
}

// PhaseIndex returns a map from phase name to column index. When a phase is
// listed more than once, the first occurrence wins.
func (d *Document) PhaseIndex() map[string]int {
	return indexOf(d.Phases)
}

// LaneIndex returns a map from lane name to row index. When a lane is listed
// more than once, the first occurrence wins.
func (d *Document) LaneIndex() map[string]int {
	return indexOf(d.Lanes)
}

// NodeByID returns the node with the given id. If several nodes share an id,
// the first one is returned.
func (d *Document) NodeByID(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Labels returns the stable node id → label mapping used by note-taking and
// summary features.
func (d *Document) Labels() map[string]string {
	labels := make(map[string]string, len(d.Nodes))
	for _, n := range d.Nodes {
		if _, ok := labels[n.ID]; !ok {
			labels[n.ID] = n.Label
		}
	}
	return labels
}

// TagsUsed returns the distinct tags referenced by any node, sorted.
func (d *Document) TagsUsed() []string {
	seen := make(map[string]struct{})
	for _, n := range d.Nodes {
		for _, t := range n.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func indexOf(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}
