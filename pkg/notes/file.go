package notes

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	errs "github.com/matzehuels/swimlane/pkg/errors"
)

// FileSource reads notes from a JSON file of the form
//
//	{"<workspaceId>": {"<nodeId>": "<text>"}}
//
// Workspace names equal their ids.
type FileSource struct {
	Path string
}

func (s FileSource) read() (map[string]Notes, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFetchFailed, err, "read notes file")
	}
	var all map[string]Notes
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse notes file %s", s.Path)
	}
	return all, nil
}

// Workspaces lists the file's workspaces, sorted by id.
func (s FileSource) Workspaces(ctx context.Context) ([]Workspace, error) {
	all, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]Workspace, 0, len(all))
	for id := range all {
		out = append(out, Workspace{ID: id, Name: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Notes returns one workspace's notes.
func (s FileSource) Notes(ctx context.Context, workspaceID string) (Notes, error) {
	if err := errs.ValidateWorkspaceID(workspaceID); err != nil {
		return nil, err
	}
	all, err := s.read()
	if err != nil {
		return nil, err
	}
	n, ok := all[workspaceID]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "workspace %q not found", workspaceID)
	}
	if n == nil {
		n = Notes{}
	}
	return n, nil
}

var _ Source = FileSource{}
