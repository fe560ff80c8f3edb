package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/swimlane/pkg/flow"
)

func testNodes() []flow.Node {
	return []flow.Node{
		{ID: "a", Label: "Draft\nrequest", Phase: "Request", Lane: "Requester", Kind: flow.KindTask, Tags: []string{"kpis"}},
		{ID: "b", Label: "Approve", Phase: "Approve", Lane: "Manager", Kind: flow.KindGateway},
		{ID: "c", Label: "Archive", Phase: "Approve", Lane: "Requester", Kind: flow.KindTask, Tags: []string{"kpis", "custom-tag"}},
	}
}

func TestFilterNodes(t *testing.T) {
	tests := []struct {
		name  string
		phase string
		lane  string
		tag   string
		want  []string
	}{
		{"no filter", "", "", "", []string{"a", "b", "c"}},
		{"phase", "Approve", "", "", []string{"b", "c"}},
		{"lane", "", "Requester", "", []string{"a", "c"}},
		{"phase and lane", "Approve", "Requester", "", []string{"c"}},
		{"tag", "", "", "custom-tag", []string{"c"}},
		{"no match", "Nowhere", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterNodes(testNodes(), tt.phase, tt.lane, tt.tag)
			var ids []string
			for _, n := range got {
				ids = append(ids, n.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Errorf("filterNodes() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestNodeTable(t *testing.T) {
	out := nodeTable(testNodes(), flow.DefaultTags())

	for _, want := range []string{"ID", "Draft request", "Manager", "gateway", "KPI", "CT"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestNodesCommand(t *testing.T) {
	path := writeTestDocument(t, "process.json", testDocumentJSON)

	if err := execute(t, "nodes", path, "--phase", "Request"); err != nil {
		t.Fatalf("nodes error: %v", err)
	}
	if err := execute(t, "nodes", path, "--json"); err != nil {
		t.Fatalf("nodes --json error: %v", err)
	}
}
