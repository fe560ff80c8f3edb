package notes

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Notes maps node ids to note text.
type Notes map[string]string

// NodeIDs returns the ids that have a non-blank note, sorted.
func (n Notes) NodeIDs() []string {
	ids := make([]string, 0, len(n))
	for id, text := range n {
		if strings.TrimSpace(text) != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Workspace is a named collection of notes.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// CreatedAt is milliseconds since the Unix epoch.
	CreatedAt int64 `json:"createdAt,omitempty"`
}

// Created returns CreatedAt as a time, or the zero time when unset.
func (w Workspace) Created() time.Time {
	if w.CreatedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(w.CreatedAt)
}

// Source lists workspaces and reads their notes.
type Source interface {
	Workspaces(ctx context.Context) ([]Workspace, error)
	Notes(ctx context.Context, workspaceID string) (Notes, error)
}
