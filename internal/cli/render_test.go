package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/swimlane/pkg/pipeline"
)

const testDocumentJSON = `{
  "phases": ["Request", "Approve"],
  "lanes": ["Requester", "Manager"],
  "nodes": [
    {"id": "start", "label": "Need", "phase": "Request", "lane": "Requester", "kind": "event"},
    {"id": "submit", "label": "Submit purchase request", "phase": "Request", "lane": "Requester", "tags": ["kpis"]},
    {"id": "review", "label": "Review", "phase": "Approve", "lane": "Manager", "kind": "gateway"}
  ],
  "flows": [["start", "submit"], ["submit", "review"]]
}`

// writeTestDocument writes the test document into a temp dir and returns its path.
func writeTestDocument(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// execute runs the root command with args.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"dot only", "dot", []string{"dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derived from input", "", "process.json", "process"},
		{"derived from nested input", "", "docs/process.yaml", "docs/process"},
		{"stdin", "", "-", "diagram"},
		{"url", "", "https://example.com/process.json", "diagram"},
		{"known extension stripped", "out.svg", "process.json", "out"},
		{"unknown extension kept", "out.v2", "process.json", "out.v2"},
		{"no extension", "out", "process.json", "out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestLayoutPaths(t *testing.T) {
	if got := layoutPath("docs/process.json"); got != "docs/process.layout.json" {
		t.Errorf("layoutPath() = %q", got)
	}
	if got := trimLayoutSuffix("docs/process.layout.json"); got != "docs/process.json" {
		t.Errorf("trimLayoutSuffix() = %q", got)
	}
	if got := trimLayoutSuffix("geometry.json"); got != "geometry.json" {
		t.Errorf("trimLayoutSuffix() = %q, want unchanged", got)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "process.json")

	t.Run("multiple formats share a base path", func(t *testing.T) {
		err := writeArtifacts(artifactWriteParams{
			artifacts: map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")},
			formats:   []string{"svg", "json"},
			input:     input,
		})
		if err != nil {
			t.Fatalf("writeArtifacts() error: %v", err)
		}
		for _, name := range []string{"process.svg", "process.json"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("%s not written: %v", name, err)
			}
		}
	})

	t.Run("single format uses output verbatim", func(t *testing.T) {
		out := filepath.Join(dir, "custom.name")
		err := writeArtifacts(artifactWriteParams{
			artifacts: map[string][]byte{"svg": []byte("<svg/>")},
			formats:   []string{"svg"},
			input:     input,
			output:    out,
		})
		if err != nil {
			t.Fatalf("writeArtifacts() error: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil || string(data) != "<svg/>" {
			t.Errorf("custom output = %q, %v", data, err)
		}
	})
}

func TestRenderCommand(t *testing.T) {
	path := writeTestDocument(t, "process.json", testDocumentJSON)

	if err := execute(t, "render", path, "-f", "svg,json", "--no-measure", "--title", "Purchasing"); err != nil {
		t.Fatalf("render error: %v", err)
	}

	svg, err := os.ReadFile(strings.TrimSuffix(path, ".json") + ".svg")
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(svg), "Purchasing") {
		t.Error("svg should contain the title")
	}
}

func TestRenderCommandOverview(t *testing.T) {
	path := writeTestDocument(t, "process.json", testDocumentJSON)
	out := filepath.Join(filepath.Dir(path), "overview.dot")

	if err := execute(t, "render", path, "--view", "overview", "-f", "dot", "-o", out, "--no-cache"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	dot, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.Contains(string(dot), "digraph") {
		t.Errorf("dot output = %q", dot)
	}
}

func TestRenderCommandInvalid(t *testing.T) {
	path := writeTestDocument(t, "process.json", testDocumentJSON)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"render", path, "-f", "gif"}},
		{"dot in swimlane view", []string{"render", path, "-f", "dot"}},
		{"json in overview", []string{"render", path, "--view", "overview", "-f", "json"}},
		{"unknown preset", []string{"render", path, "--preset", "huge"}},
		{"workspace without backend", []string{"render", path, "--workspace", "w1"}},
		{"missing file", []string{"render", path + ".missing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(t, tt.args...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestLayoutThenVisualize(t *testing.T) {
	path := writeTestDocument(t, "process.json", testDocumentJSON)
	base := strings.TrimSuffix(path, ".json")

	if err := execute(t, "layout", path, "--no-measure"); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	layoutFile := base + ".layout.json"
	if _, err := os.Stat(layoutFile); err != nil {
		t.Fatalf("layout file not written: %v", err)
	}

	if err := execute(t, "visualize", layoutFile, "-f", "svg"); err != nil {
		t.Fatalf("visualize error: %v", err)
	}
	if _, err := os.Stat(base + ".svg"); err != nil {
		t.Errorf("svg not written: %v", err)
	}
}

func TestRenderDefaults(t *testing.T) {
	opts := pipeline.Options{}
	opts.SetRenderDefaults()
	if opts.View != pipeline.ViewSwimlane {
		t.Errorf("default view = %q, want %q", opts.View, pipeline.ViewSwimlane)
	}
	if opts.Scale != pipeline.DefaultScale {
		t.Errorf("default scale = %v, want %v", opts.Scale, pipeline.DefaultScale)
	}
}
