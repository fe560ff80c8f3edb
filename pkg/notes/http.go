package notes

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/matzehuels/swimlane/pkg/cache"
	errs "github.com/matzehuels/swimlane/pkg/errors"
	"github.com/matzehuels/swimlane/pkg/httputil"
)

// HTTPSource reads notes from a workspace service.
type HTTPSource struct {
	base    string
	client  *httputil.Client
	refresh bool
}

// NewHTTPSource returns a source for the service at base
// (e.g. "https://notes.example.com"). A nil client gets an uncached one.
func NewHTTPSource(base string, client *httputil.Client) (*HTTPSource, error) {
	if err := errs.ValidateURL(base); err != nil {
		return nil, err
	}
	if client == nil {
		client = httputil.NewClient(cache.NewNullCache(), "notes", 0, nil)
	}
	return &HTTPSource{base: strings.TrimRight(base, "/"), client: client}, nil
}

// Refresh makes subsequent reads bypass the client's cache.
func (s *HTTPSource) Refresh() *HTTPSource {
	s.refresh = true
	return s
}

// Workspaces lists the service's workspaces, sorted by name.
func (s *HTTPSource) Workspaces(ctx context.Context) ([]Workspace, error) {
	var out []Workspace
	err := s.client.Cached(ctx, "workspaces:"+s.base, s.refresh, &out, func() error {
		return s.client.Get(ctx, s.base+"/api/workspaces", &out)
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "list workspaces")
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Notes reads the notes of one workspace. An unknown workspace is a
// NOT_FOUND error.
func (s *HTTPSource) Notes(ctx context.Context, workspaceID string) (Notes, error) {
	if err := errs.ValidateWorkspaceID(workspaceID); err != nil {
		return nil, err
	}
	endpoint := s.base + "/api/workspaces/" + url.PathEscape(workspaceID) + "/notes"

	out := Notes{}
	err := s.client.Cached(ctx, "notes:"+s.base+":"+workspaceID, s.refresh, &out, func() error {
		return s.client.Get(ctx, endpoint, &out)
	})
	if err != nil {
		if errs.Is(err, errs.ErrCodeNotFound) {
			return nil, errs.Wrap(errs.ErrCodeNotFound, err, "workspace %q", workspaceID)
		}
		return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "read notes of %q", workspaceID)
	}
	return out, nil
}

var _ Source = (*HTTPSource)(nil)
