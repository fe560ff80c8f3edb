package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/notes"
	"github.com/matzehuels/swimlane/pkg/pipeline"
	"github.com/matzehuels/swimlane/pkg/source"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, pipeline.FormatJSON)
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, chi.URLParam(r, "format"))
}

// render runs the full pipeline for one format and writes the artifact.
func (s *Server) render(w http.ResponseWriter, r *http.Request, format string) {
	opts, err := s.options(w, r)
	if err == nil {
		opts.Formats = []string{format}
		if format == pipeline.FormatDOT && r.URL.Query().Get("view") == "" {
			opts.View = pipeline.ViewOverview
		}
	}
	var result *pipeline.Result
	if err == nil {
		result, err = s.runner.Execute(r.Context(), opts)
	}
	if err != nil {
		w.Header().Set(StatusHeader, StatusFailed)
		s.writeError(w, r, err)
		return
	}

	w.Header().Set(StatusHeader, StatusLoaded)
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Layout-Dropped", strconv.Itoa(result.Stats.DroppedNodes+result.Stats.DroppedFlows))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// options builds pipeline options from the request. POST bodies are the
// document; GET requests use the configured source.
func (s *Server) options(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Preset:     s.cfg.Preset,
		ConfigPath: s.cfg.ConfigPath,
		NoMeasure:  s.cfg.NoMeasure,
		View:       q.Get("view"),
		Title:      q.Get("title"),
		Refresh:    queryBool(q.Get("refresh")),
		Static:     queryBool(q.Get("static")),
		Detailed:   queryBool(q.Get("detailed")),
		Logger:     s.logger.With("request_id", RequestID(r.Context())),
	}
	if p := q.Get("preset"); p != "" {
		opts.Preset = p
	}
	var err error
	if opts.Minimap, err = queryFloat(q.Get("minimap"), "minimap"); err != nil {
		return opts, err
	}
	if opts.Scale, err = queryFloat(q.Get("scale"), "scale"); err != nil {
		return opts, err
	}

	input, err := s.input(w, r)
	if err != nil {
		return opts, err
	}
	opts.Input = input

	if ws := q.Get("workspace"); ws != "" {
		if opts.Notes, err = s.workspaceNotes(r, ws, opts.Refresh); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// input returns the document source for the request.
func (s *Server) input(w http.ResponseWriter, r *http.Request) (source.Source, error) {
	if r.Method == http.MethodPost {
		return source.Reader{R: http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes), Label: "request body"}, nil
	}
	if s.cfg.Source == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "no document configured; POST one instead")
	}
	return s.runner.Open(pipeline.Options{Source: s.cfg.Source})
}

func (s *Server) workspaceNotes(r *http.Request, workspace string, refresh bool) (notes.Notes, error) {
	if s.notes == nil {
		return nil, errs.New(errs.ErrCodeUnsupported, "no notes backend configured")
	}
	if err := errs.ValidateWorkspaceID(workspace); err != nil {
		return nil, err
	}
	src := s.notes
	if h, ok := src.(*notes.HTTPSource); ok && refresh {
		src = h.Refresh()
	}
	return src.Notes(r.Context(), workspace)
}

// nodeView is a node as exposed to interactive clients.
type nodeView struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Phase      string   `json:"phase"`
	Lane       string   `json:"lane"`
	Kind       string   `json:"kind"`
	Tags       []string `json:"tags"`
	PrimaryTag string   `json:"primary_tag,omitempty"`
	Highlight  bool     `json:"highlight,omitempty"`
	Note       string   `json:"note,omitempty"`
}

type nodesResponse struct {
	Nodes  []nodeView              `json:"nodes"`
	Labels map[string]string       `json:"labels"`
	Tags   map[string]flow.TagInfo `json:"tags"`
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	doc, opts, err := s.document(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg, err := opts.ResolveConfig()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := nodesResponse{
		Nodes:  make([]nodeView, 0, len(doc.Nodes)),
		Labels: doc.Labels(),
		Tags:   make(map[string]flow.TagInfo),
	}
	for _, n := range doc.Nodes {
		resp.Nodes = append(resp.Nodes, newNodeView(n, opts.Notes))
	}
	for _, id := range doc.TagsUsed() {
		info, _ := cfg.Tags.Lookup(id)
		resp.Tags[id] = info
	}
	writeJSON(w, http.StatusOK, resp)
}

type nodeResponse struct {
	Node nodeView                `json:"node"`
	Tags map[string]flow.TagInfo `json:"tags"`
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateNodeID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, opts, err := s.document(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg, err := opts.ResolveConfig()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	for _, n := range doc.Nodes {
		if n.ID != id {
			continue
		}
		resp := nodeResponse{Node: newNodeView(n, opts.Notes), Tags: make(map[string]flow.TagInfo)}
		for _, t := range n.Tags {
			info, _ := cfg.Tags.Lookup(t)
			resp.Tags[t] = info
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	s.writeError(w, r, errs.New(errs.ErrCodeNotFound, "node %q not found", id))
}

func newNodeView(n flow.Node, nn notes.Notes) nodeView {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return nodeView{
		ID:         n.ID,
		Label:      n.Label,
		Phase:      n.Phase,
		Lane:       n.Lane,
		Kind:       n.Kind.String(),
		Tags:       tags,
		PrimaryTag: n.PrimaryTag(),
		Highlight:  n.Highlight,
		Note:       nn[n.ID],
	}
}

// document loads the configured document with the request's notes.
func (s *Server) document(w http.ResponseWriter, r *http.Request) (*flow.Document, pipeline.Options, error) {
	opts, err := s.options(w, r)
	if err != nil {
		return nil, opts, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, opts, err
	}
	doc, err := s.runner.Load(r.Context(), opts.Input, opts)
	return doc, opts, err
}

func (s *Server) handleWorkspaces(w http.ResponseWriter, r *http.Request) {
	if s.notes == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeUnsupported, "no notes backend configured"))
		return
	}
	list, err := s.notes.Workspaces(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []notes.Workspace{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"workspaces": list})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ws := chi.URLParam(r, "id")
	q := r.URL.Query()
	q.Set("workspace", ws)
	r.URL.RawQuery = q.Encode()

	doc, opts, err := s.document(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary := notes.Summarize(doc, ws, opts.Notes)

	if q.Get("format") == "markdown" || strings.Contains(r.Header.Get("Accept"), "text/markdown") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = notes.WriteMarkdown(w, summary)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// Helpers
// =============================================================================

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func queryFloat(v, name string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "%s must be a number", name)
	}
	return f, nil
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidDocument, errs.ErrCodeInvalidConfig,
		errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidWorkspace, errs.ErrCodeInvalidURL,
		errs.ErrCodeInvalidPath:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case errs.ErrCodeFetchFailed, errs.ErrCodeNetwork, errs.ErrCodeTimeout:
		return http.StatusBadGateway
	case errs.ErrCodeUnsupported:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func errorBody(r *http.Request, code, message string) map[string]apiError {
	return map[string]apiError{"error": {
		Code:      code,
		Message:   message,
		RequestID: RequestID(r.Context()),
	}}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errs.GetCode(err))
	if code == "" {
		code = string(errs.ErrCodeInternal)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	} else {
		s.logger.Warn("request rejected", "id", RequestID(r.Context()), "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, errorBody(r, code, errs.UserMessage(err)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
