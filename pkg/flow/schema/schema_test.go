package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/swimlane/pkg/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		wantLoc string
	}{
		{
			name:  "minimal",
			input: `{"phases": ["Plan"], "lanes": ["Ops"], "nodes": []}`,
		},
		{
			name: "full",
			input: `{"phases": ["Plan"], "lanes": ["Ops"],
				"nodes": [{"id": "a", "label": "A", "phase": "Plan", "lane": "Ops", "kind": "gateway", "tags": ["kpis"], "highlight": true}],
				"flows": [["a", "a"], {"from": "a", "to": "a"}]}`,
		},
		{
			name: "legacy aliases",
			input: `{"phases": ["Plan"], "lanes": ["Ops"],
				"nodes": [{"id": "a", "phase": "Plan", "lane": "Ops", "type": "event", "icons": ["kpis"]}]}`,
		},
		{
			name:    "missing lanes",
			input:   `{"phases": ["Plan"], "nodes": []}`,
			wantErr: true,
		},
		{
			name:    "empty phases",
			input:   `{"phases": [], "lanes": ["Ops"], "nodes": []}`,
			wantErr: true,
			wantLoc: "/phases",
		},
		{
			name:    "node without id",
			input:   `{"phases": ["P"], "lanes": ["L"], "nodes": [{"phase": "P", "lane": "L"}]}`,
			wantErr: true,
			wantLoc: "/nodes/0",
		},
		{
			name:    "unknown kind",
			input:   `{"phases": ["P"], "lanes": ["L"], "nodes": [{"id": "a", "phase": "P", "lane": "L", "kind": "loop"}]}`,
			wantErr: true,
			wantLoc: "/nodes/0/kind",
		},
		{
			name:    "flow with three endpoints",
			input:   `{"phases": ["P"], "lanes": ["L"], "nodes": [], "flows": [["a", "b", "c"]]}`,
			wantErr: true,
		},
		{
			name:    "unknown node field",
			input:   `{"phases": ["P"], "lanes": ["L"], "nodes": [{"id": "a", "phase": "P", "lane": "L", "colour": "red"}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.input))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeInvalidDocument), "code = %s", errs.GetCode(err))
			assert.NotEmpty(t, Violations(err))
			if tt.wantLoc != "" {
				assert.Contains(t, strings.Join(Violations(err), "\n"), tt.wantLoc)
			}
		})
	}
}

func TestValidateNotJSON(t *testing.T) {
	err := Validate([]byte("phases: [a]"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidFormat))
	assert.Nil(t, Violations(err))
}

func TestValidateValue(t *testing.T) {
	doc := map[string]any{
		"phases": []string{"P"},
		"lanes":  []string{"L"},
		"nodes":  []any{},
	}
	assert.NoError(t, ValidateValue(doc))

	delete(doc, "lanes")
	assert.Error(t, ValidateValue(doc))
}

func TestSourceIsValidJSON(t *testing.T) {
	_, err := documentSchema()
	require.NoError(t, err)
	assert.Contains(t, Source(), schemaURL)
}
