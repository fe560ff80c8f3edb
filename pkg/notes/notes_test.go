package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/swimlane/pkg/cache"
	errs "github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/httputil"
)

func testDocument() *flow.Document {
	return &flow.Document{
		Phases: []string{"Plan", "Pay"},
		Lanes:  []string{"Requester", "Finance"},
		Nodes: []flow.Node{
			{ID: "pay", Label: "Pay supplier", Phase: "Pay", Lane: "Finance"},
			{ID: "req", Label: "Create requisition", Phase: "Plan", Lane: "Requester"},
			{ID: "budget", Label: "Check budget", Phase: "Plan", Lane: "Finance"},
		},
	}
}

func TestNotesNodeIDs(t *testing.T) {
	n := Notes{"b": "x", "a": "y", "c": "  "}
	assert.Equal(t, []string{"a", "b"}, n.NodeIDs())
}

func TestWorkspaceCreated(t *testing.T) {
	assert.True(t, Workspace{}.Created().IsZero())
	ws := Workspace{CreatedAt: 1700000000000}
	assert.Equal(t, int64(1700000000), ws.Created().Unix())
}

func newNotesServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/api/workspaces":
			json.NewEncoder(w).Encode([]Workspace{
				{ID: "w2", Name: "Zeta"},
				{ID: "w1", Name: "Alpha", CreatedAt: 1700000000000},
			})
		case "/api/workspaces/w1/notes":
			json.NewEncoder(w).Encode(Notes{"req": "Needs a cost center", "pay": "Net 30"})
		case "/api/workspaces/broken/notes":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.Error(w, `{"error":"Workspace not found"}`, http.StatusNotFound)
		}
	}))
}

func TestHTTPSource(t *testing.T) {
	server := newNotesServer(t, nil)
	defer server.Close()

	client := httputil.NewClient(nil, "notes", 0, nil, httputil.WithHTTPClient(server.Client()))
	src, err := NewHTTPSource(server.URL+"/", client)
	require.NoError(t, err)
	ctx := context.Background()

	ws, err := src.Workspaces(ctx)
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, "Alpha", ws[0].Name, "workspaces are sorted by name")

	n, err := src.Notes(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "Net 30", n["pay"])

	_, err = src.Notes(ctx, "missing")
	assert.True(t, errs.Is(err, errs.ErrCodeNotFound), "got %v", err)

	_, err = src.Notes(ctx, "broken")
	assert.True(t, errs.Is(err, errs.ErrCodeFetchFailed), "got %v", err)

	_, err = src.Notes(ctx, "../etc")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidWorkspace), "got %v", err)
}

func TestHTTPSourceCaching(t *testing.T) {
	var hits atomic.Int32
	server := newNotesServer(t, &hits)
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	client := httputil.NewClient(fc, "notes", time.Hour, nil, httputil.WithHTTPClient(server.Client()))
	src, err := NewHTTPSource(server.URL, client)
	require.NoError(t, err)
	ctx := context.Background()

	for range 3 {
		_, err := src.Notes(ctx, "w1")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())

	_, err = src.Refresh().Notes(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestNewHTTPSourceBadURL(t *testing.T) {
	_, err := NewHTTPSource("ftp://notes", nil)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidURL))
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	content := `{"w1": {"req": "Needs a cost center"}, "a-empty": null}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src := FileSource{Path: path}
	ctx := context.Background()

	ws, err := src.Workspaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Workspace{{ID: "a-empty", Name: "a-empty"}, {ID: "w1", Name: "w1"}}, ws)

	n, err := src.Notes(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, Notes{"req": "Needs a cost center"}, n)

	n, err = src.Notes(ctx, "a-empty")
	require.NoError(t, err)
	assert.NotNil(t, n)

	_, err = src.Notes(ctx, "w9")
	assert.True(t, errs.Is(err, errs.ErrCodeNotFound))
}

func TestFileSourceErrors(t *testing.T) {
	ctx := context.Background()
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}.Workspaces(ctx)
	assert.True(t, errs.Is(err, errs.ErrCodeFetchFailed))

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("[1,2]"), 0o644))
	_, err = FileSource{Path: path}.Workspaces(ctx)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidFormat))
}

func TestSummarize(t *testing.T) {
	n := Notes{
		"pay":    "Net 30",
		"req":    "  Needs a cost center  ",
		"budget": "Ask controller",
		"gone":   "Old step",
		"blank":  " ",
	}
	s := Summarize(testDocument(), "w1", n)

	require.Len(t, s.Entries, 3)
	got := []string{s.Entries[0].NodeID, s.Entries[1].NodeID, s.Entries[2].NodeID}
	assert.Equal(t, []string{"req", "budget", "pay"}, got, "ordered by phase, then lane")
	assert.Equal(t, "Needs a cost center", s.Entries[0].Note)
	assert.Equal(t, "Requester", s.Entries[0].Lane)
	assert.Equal(t, []string{"gone"}, s.Orphans)
}

func TestWriteMarkdown(t *testing.T) {
	s := Summarize(testDocument(), "w1", Notes{"req": "line one\nline two", "gone": "x"})

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, s))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Notes: w1\n"))
	assert.Contains(t, out, "## Plan")
	assert.Contains(t, out, "- **Create requisition** (Requester): line one\n  line two")
	assert.Contains(t, out, "## Notes for removed nodes")
	assert.Contains(t, out, "- `gone`")

	buf.Reset()
	require.NoError(t, WriteMarkdown(&buf, Summary{Workspace: "empty"}))
	assert.Contains(t, buf.String(), "_No notes._")
}
