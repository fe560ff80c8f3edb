// Package source loads flow documents from files, HTTP endpoints, readers
// and memory.
//
// Every [Source] reports retrieval failures as FETCH_FAILED and parse
// failures as INVALID_DOCUMENT (see pkg/errors), so callers can tell "could
// not get it" from "got it, but it is not a diagram". No partial document
// is ever returned.
//
//	src, err := source.Open("https://example.com/flows/p2p.json")
//	doc, err := src.Load(ctx)
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/httputil"
)

// Stdin is the reference that selects standard input in [Open].
const Stdin = "-"

// Source produces a flow document.
type Source interface {
	// Name identifies the source in logs and cache keys.
	Name() string
	// Load retrieves and decodes the document.
	Load(ctx context.Context) (*flow.Document, error)
}

// =============================================================================
// File
// =============================================================================

// File reads a JSON or YAML document from disk; the extension selects the
// decoder (.yaml and .yml are YAML, anything else JSON).
type File struct {
	Path string
}

// Name returns the file path.
func (f File) Name() string { return f.Path }

// Load reads and decodes the file.
func (f File) Load(ctx context.Context) (*flow.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "read %s", f.Path)
	}
	var doc *flow.Document
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		doc, err = flow.ReadYAML(bytes.NewReader(data))
	default:
		doc, err = flow.ReadJSON(bytes.NewReader(data))
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDocument, err, "parse %s", f.Path)
	}
	return doc, nil
}

// =============================================================================
// Reader
// =============================================================================

// Reader decodes a document from an io.Reader, sniffing JSON or YAML.
// It can be loaded once.
type Reader struct {
	R     io.Reader
	Label string
}

// Name returns the label, or "reader".
func (r Reader) Name() string {
	if r.Label != "" {
		return r.Label
	}
	return "reader"
}

// Load reads everything from R and decodes it. Input cut off by an
// [http.MaxBytesReader] yields TOO_LARGE.
func (r Reader) Load(ctx context.Context) (*flow.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r.R)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.Wrap(errs.ErrCodeTooLarge, err, "%s exceeds %d bytes", r.Name(), tooLarge.Limit)
		}
		return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "read %s", r.Name())
	}
	return parse(r.Name(), data)
}

// =============================================================================
// Static
// =============================================================================

// Static serves a document held in memory.
type Static struct {
	Doc   *flow.Document
	Label string
}

// Name returns the label, or "static".
func (s Static) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "static"
}

// Load returns the document.
func (s Static) Load(ctx context.Context) (*flow.Document, error) {
	if s.Doc == nil {
		return nil, errs.New(errs.ErrCodeInvalidDocument, "%s: no document", s.Name())
	}
	return s.Doc, ctx.Err()
}

// =============================================================================
// HTTP
// =============================================================================

// HTTP fetches a document with a GET request. The body may be JSON or YAML.
type HTTP struct {
	URL    string
	Client *httputil.Client
}

// NewHTTP returns an HTTP source for url. The URL must be http or https.
func NewHTTP(url string, client *httputil.Client) (*HTTP, error) {
	if err := errs.ValidateURL(url); err != nil {
		return nil, err
	}
	if client == nil {
		client = httputil.NewClient(nil, "document", 0, nil)
	}
	return &HTTP{URL: url, Client: client}, nil
}

// Name returns the URL.
func (h *HTTP) Name() string { return h.URL }

// Load fetches and decodes the document.
func (h *HTTP) Load(ctx context.Context) (*flow.Document, error) {
	data, err := h.Client.GetBytes(ctx, h.URL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "fetch %s", h.URL)
	}
	return parse(h.URL, data)
}

// =============================================================================
// Open
// =============================================================================

// Option configures sources created by [Open].
type Option func(*openOptions)

type openOptions struct {
	client *httputil.Client
	stdin  io.Reader
}

// WithClient sets the HTTP client for URL references.
func WithClient(c *httputil.Client) Option {
	return func(o *openOptions) { o.client = c }
}

// WithStdin replaces os.Stdin for the "-" reference.
func WithStdin(r io.Reader) Option {
	return func(o *openOptions) { o.stdin = r }
}

// Open picks a source for ref: "-" reads standard input, http:// and
// https:// references are fetched, anything else is a file path.
func Open(ref string, opts ...Option) (Source, error) {
	o := openOptions{stdin: os.Stdin}
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case ref == "":
		return nil, errs.New(errs.ErrCodeInvalidInput, "no document given")
	case ref == Stdin:
		return Reader{R: o.stdin, Label: "stdin"}, nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return NewHTTP(ref, o.client)
	default:
		return File{Path: ref}, nil
	}
}

func parse(name string, data []byte) (*flow.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidDocument, "%s: empty document", name)
	}
	doc, err := flow.Parse(data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDocument, err, "parse %s", name)
	}
	return doc, nil
}

// Describe returns a short human description of a source.
func Describe(s Source) string {
	switch s.(type) {
	case File:
		return fmt.Sprintf("file %s", s.Name())
	case *HTTP:
		return fmt.Sprintf("url %s", s.Name())
	default:
		return s.Name()
	}
}
