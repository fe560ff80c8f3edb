package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/swimlane/pkg/cache"
	"github.com/matzehuels/swimlane/pkg/notes"
)

const testNotesJSON = `{
  "w1": {"submit": "Needs a second approver", "ghost": "orphaned"},
  "w2": {}
}`

func TestNotesFlagsSource(t *testing.T) {
	nc := cache.NewNullCache()

	t.Run("none", func(t *testing.T) {
		src, err := (&notesFlags{}).source(nc, false)
		require.NoError(t, err)
		assert.Nil(t, src)
	})

	t.Run("file", func(t *testing.T) {
		src, err := (&notesFlags{file: "notes.json"}).source(nc, false)
		require.NoError(t, err)
		assert.IsType(t, notes.FileSource{}, src)
	})

	t.Run("http", func(t *testing.T) {
		src, err := (&notesFlags{url: "https://notes.example.com"}).source(nc, true)
		require.NoError(t, err)
		assert.IsType(t, &notes.HTTPSource{}, src)
	})

	t.Run("both", func(t *testing.T) {
		_, err := (&notesFlags{url: "https://notes.example.com", file: "notes.json"}).source(nc, false)
		assert.Error(t, err)
	})
}

func TestLoadNotes(t *testing.T) {
	ctx := context.Background()
	src := notes.FileSource{Path: writeTestDocument(t, "notes.json", testNotesJSON)}

	n, err := loadNotes(ctx, src, "w1")
	require.NoError(t, err)
	assert.Equal(t, "Needs a second approver", n["submit"])

	n, err = loadNotes(ctx, src, "")
	require.NoError(t, err)
	assert.Nil(t, n)

	_, err = loadNotes(ctx, nil, "w1")
	assert.Error(t, err)
}

func TestNotesCommands(t *testing.T) {
	doc := writeTestDocument(t, "process.json", testDocumentJSON)
	file := writeTestDocument(t, "notes.json", testNotesJSON)

	require.NoError(t, execute(t, "notes", "workspaces", "--notes-file", file))
	require.NoError(t, execute(t, "notes", "summary", doc, "--notes-file", file, "--workspace", "w1"))
	require.NoError(t, execute(t, "notes", "summary", doc, "--notes-file", file, "--workspace", "w1", "--json"))

	assert.Error(t, execute(t, "notes", "workspaces"), "backend is required")
	assert.Error(t, execute(t, "notes", "summary", doc, "--notes-file", file), "workspace is required")
}

func TestRenderWithNotes(t *testing.T) {
	doc := writeTestDocument(t, "process.json", testDocumentJSON)
	file := writeTestDocument(t, "notes.json", testNotesJSON)

	require.NoError(t, execute(t, "render", doc, "--notes-file", file, "--workspace", "w1", "--no-measure"))
}
