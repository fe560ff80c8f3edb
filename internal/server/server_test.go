package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/swimlane/pkg/notes"
	"github.com/matzehuels/swimlane/pkg/pipeline"
)

const testFlow = `phases: [Request, Approve]
lanes: [Requester, Manager]
nodes:
  - {id: start, label: Need, phase: Request, lane: Requester, kind: event}
  - {id: submit, label: Submit request, phase: Request, lane: Requester, tags: [kpis]}
  - {id: review, label: Review, phase: Approve, lane: Manager, highlight: true}
flows:
  - [start, submit]
  - [submit, review]
`

const testNotes = `{"ws1": {"review": "Check the budget", "gone": "Old note"}}`

func testServer(t *testing.T, cfg Config, opts ...Option) *Server {
	t.Helper()
	dir := t.TempDir()
	if cfg.Source == "" {
		cfg.Source = filepath.Join(dir, "flow.yaml")
		require.NoError(t, os.WriteFile(cfg.Source, []byte(testFlow), 0o644))
	} else if cfg.Source == "-" {
		cfg.Source = ""
	}
	cfg.NoMeasure = true
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(cfg, pipeline.NewRunner(nil, nil, logger), logger, opts...)
}

func withFileNotes(t *testing.T) Option {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte(testNotes), 0o644))
	return WithNotes(notes.FileSource{Path: path})
}

func do(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"].Code
}

func TestHealthz(t *testing.T) {
	s := testServer(t, Config{})
	rec := do(t, s, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "response carries a UUID request id")
}

func TestRequestIDReused(t *testing.T) {
	s := testServer(t, Config{})
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestDiagramSVG(t *testing.T) {
	s := testServer(t, Config{})
	rec := do(t, s, http.MethodGet, "/api/diagram.svg?title=Purchasing&minimap=0.2", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, StatusLoaded, rec.Header().Get(StatusHeader))
	assert.Equal(t, "0", rec.Header().Get("X-Layout-Dropped"))
	body := rec.Body.String()
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "<title>Purchasing</title>")
	assert.Contains(t, body, `id="node-review"`)
}

func TestDiagramWithWorkspaceNotes(t *testing.T) {
	s := testServer(t, Config{}, withFileNotes(t))
	rec := do(t, s, http.MethodGet, "/api/diagram.svg?workspace=ws1", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Check the budget")
}

func TestDiagramOverviewDOT(t *testing.T) {
	s := testServer(t, Config{})
	rec := do(t, s, http.MethodGet, "/api/diagram.dot", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "digraph"))
}

func TestLayoutPost(t *testing.T) {
	s := testServer(t, Config{Source: "-"})
	body := `{"phases":["P"],"lanes":["L"],"nodes":[{"id":"a","label":"A","phase":"P","lane":"L"},{"id":"x","label":"X","phase":"Q","lane":"L"}],"flows":[["a","x"]]}`
	rec := do(t, s, http.MethodPost, "/api/layout", strings.NewReader(body))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2", rec.Header().Get("X-Layout-Dropped"))

	var g struct {
		Anchors map[string]any `json:"anchors"`
		Dropped struct {
			Nodes []string `json:"nodes"`
		} `json:"dropped"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Contains(t, g.Anchors, "a")
	assert.Equal(t, []string{"x"}, g.Dropped.Nodes)
}

func TestErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name       string
		cfg        Config
		method     string
		target     string
		body       string
		wantStatus int
		wantCode   string
		wantFailed bool
	}{
		{"invalid document", Config{Source: "-"}, http.MethodPost, "/api/layout", "{not json", http.StatusUnprocessableEntity, "INVALID_DOCUMENT", true},
		{"empty body", Config{Source: "-"}, http.MethodPost, "/api/layout", "", http.StatusUnprocessableEntity, "INVALID_DOCUMENT", true},
		{"no source configured", Config{Source: "-"}, http.MethodGet, "/api/layout", "", http.StatusUnprocessableEntity, "INVALID_INPUT", true},
		{"unreachable source", Config{Source: missing}, http.MethodGet, "/api/diagram.svg", "", http.StatusBadGateway, "FETCH_FAILED", true},
		{"unknown format", Config{}, http.MethodGet, "/api/diagram.gif", "", http.StatusUnprocessableEntity, "INVALID_FORMAT", true},
		{"unknown preset", Config{}, http.MethodGet, "/api/layout?preset=huge", "", http.StatusUnprocessableEntity, "INVALID_CONFIG", true},
		{"bad minimap", Config{}, http.MethodGet, "/api/diagram.svg?minimap=big", "", http.StatusUnprocessableEntity, "INVALID_INPUT", true},
		{"no notes backend", Config{}, http.MethodGet, "/api/diagram.svg?workspace=ws1", "", http.StatusBadRequest, "UNSUPPORTED", true},
		{"body over limit", Config{Source: "-", MaxBodyBytes: 64}, http.MethodPost, "/api/layout", testFlow, http.StatusRequestEntityTooLarge, "TOO_LARGE", true},
		{"unknown route", Config{}, http.MethodGet, "/api/nothing", "", http.StatusNotFound, "NOT_FOUND", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer(t, tt.cfg)
			var body io.Reader
			if tt.body != "" || tt.method == http.MethodPost {
				body = strings.NewReader(tt.body)
			}
			rec := do(t, s, tt.method, tt.target, body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
			if tt.wantFailed {
				assert.Equal(t, StatusFailed, rec.Header().Get(StatusHeader))
			}
		})
	}
}

func TestDefaultBodyLimit(t *testing.T) {
	s := testServer(t, Config{Source: "-"})
	assert.Equal(t, int64(DefaultMaxBodyBytes), s.cfg.MaxBodyBytes)

	body := strings.NewReader(testFlow + strings.Repeat("#", DefaultMaxBodyBytes))
	rec := do(t, s, http.MethodPost, "/api/layout", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "TOO_LARGE", errorCode(t, rec))

	rec = do(t, s, http.MethodPost, "/api/layout", strings.NewReader(testFlow))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestNodes(t *testing.T) {
	s := testServer(t, Config{}, withFileNotes(t))
	rec := do(t, s, http.MethodGet, "/api/nodes?workspace=ws1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp nodesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Nodes, 3)
	assert.Equal(t, "Review", resp.Labels["review"])

	byID := map[string]nodeView{}
	for _, n := range resp.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, "kpis", byID["submit"].PrimaryTag)
	assert.Equal(t, []string{}, byID["review"].Tags)
	assert.Equal(t, "Check the budget", byID["review"].Note)
	assert.True(t, byID["review"].Highlight)
	assert.Equal(t, "KPI", resp.Tags["kpis"].Short)
}

func TestNodesUnknownWorkspace(t *testing.T) {
	s := testServer(t, Config{}, withFileNotes(t))

	rec := do(t, s, http.MethodGet, "/api/nodes?workspace=nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/nodes?workspace=..%2Fetc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_WORKSPACE", errorCode(t, rec))
}

func TestNode(t *testing.T) {
	s := testServer(t, Config{}, withFileNotes(t))

	rec := do(t, s, http.MethodGet, "/api/nodes/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp nodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Submit request", resp.Node.Label)
	assert.Equal(t, "kpis", resp.Node.PrimaryTag)
	assert.Equal(t, "KPI", resp.Tags["kpis"].Short)

	rec = do(t, s, http.MethodGet, "/api/nodes/review?workspace=ws1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var noted nodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &noted))
	assert.Equal(t, "Check the budget", noted.Node.Note)
	assert.Empty(t, noted.Tags)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"unknown", "/api/nodes/missing", http.StatusNotFound, "NOT_FOUND"},
		{"control character", "/api/nodes/a%01b", http.StatusUnprocessableEntity, "INVALID_INPUT"},
		{"too long", "/api/nodes/" + strings.Repeat("n", 300), http.StatusUnprocessableEntity, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestWorkspaces(t *testing.T) {
	s := testServer(t, Config{}, withFileNotes(t))
	rec := do(t, s, http.MethodGet, "/api/workspaces", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"workspaces":[{"id":"ws1","name":"ws1"}]}`, rec.Body.String())

	s = testServer(t, Config{})
	rec = do(t, s, http.MethodGet, "/api/workspaces", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummary(t *testing.T) {
	s := testServer(t, Config{}, withFileNotes(t))

	rec := do(t, s, http.MethodGet, "/api/workspaces/ws1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary notes.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Len(t, summary.Entries, 1)
	assert.Equal(t, "review", summary.Entries[0].NodeID)
	assert.Equal(t, []string{"gone"}, summary.Orphans)

	rec = do(t, s, http.MethodGet, "/api/workspaces/ws1/summary?format=markdown", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Notes: ws1"))
}
