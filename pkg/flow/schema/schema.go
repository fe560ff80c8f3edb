// Package schema validates raw swimlane documents against a JSON Schema.
//
// The layout engine is deliberately lenient (dangling references are simply
// dropped), so schema validation is a separate, opt-in lint step used by the
// CLI's validate command and the HTTP service. It catches structural
// mistakes such as a flow with three endpoints or a node without an id
// before the document is decoded.
//
// The schema accepts the legacy aliases understood by pkg/flow ("type" for
// "kind", "icons" for "tags") and both flow spellings.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	errs "github.com/matzehuels/swimlane/pkg/errors"
)

const schemaURL = "https://swimlane.dev/schemas/document.json"

// documentSchemaJSON is the JSON Schema (draft 2020-12) for documents.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://swimlane.dev/schemas/document.json",
  "type": "object",
  "required": ["phases", "lanes", "nodes"],
  "properties": {
    "phases": {
      "type": "array",
      "minItems": 1,
      "items": { "type": "string", "minLength": 1 }
    },
    "lanes": {
      "type": "array",
      "minItems": 1,
      "items": { "type": "string", "minLength": 1 }
    },
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "flows": {
      "type": "array",
      "items": { "$ref": "#/$defs/flow" }
    }
  },
  "$defs": {
    "node": {
      "type": "object",
      "required": ["id", "phase", "lane"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "label": { "type": "string" },
        "phase": { "type": "string" },
        "lane": { "type": "string" },
        "kind": { "$ref": "#/$defs/kind" },
        "type": { "$ref": "#/$defs/kind" },
        "tags": { "$ref": "#/$defs/tags" },
        "icons": { "$ref": "#/$defs/tags" },
        "highlight": { "type": "boolean" }
      },
      "additionalProperties": false
    },
    "kind": {
      "type": "string",
      "enum": ["task", "event", "gateway", ""]
    },
    "tags": {
      "type": "array",
      "items": { "type": "string", "minLength": 1 }
    },
    "flow": {
      "oneOf": [
        {
          "type": "array",
          "minItems": 2,
          "maxItems": 2,
          "items": { "type": "string" }
        },
        {
          "type": "object",
          "required": ["from", "to"],
          "properties": {
            "from": { "type": "string" },
            "to": { "type": "string" }
          },
          "additionalProperties": false
        }
      ]
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// documentSchema compiles the embedded schema once. The compiled schema is
// safe for concurrent use.
func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.AssertFormat()

		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal document schema: %w", err)
			return
		}
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add document schema resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Source returns the schema text, for tooling that wants to publish it.
func Source() string {
	return documentSchemaJSON
}

// Validate checks raw JSON bytes against the document schema. A nil return
// means the document is structurally valid; it may still contain dangling
// references (see flow.Document.Check).
//
// Schema violations are reported as an ErrCodeInvalidDocument error whose
// message lists every violation with its instance location.
func Validate(data []byte) error {
	s, err := documentSchema()
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "compile document schema")
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "document is not valid JSON")
	}

	if err := s.Validate(inst); err != nil {
		return toDocumentError(err)
	}
	return nil
}

// ValidateValue checks an already-decoded value (for example a document read
// from YAML) by round-tripping it through JSON.
func ValidateValue(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "encode document")
	}
	return Validate(b)
}

// Violations returns the individual violation messages of an error returned
// by Validate, or nil if err carries none.
func Violations(err error) []string {
	var e *violationError
	if errors.As(err, &e) {
		return e.violations
	}
	return nil
}

type violationError struct {
	violations []string
}

func (e *violationError) Error() string {
	return strings.Join(e.violations, "; ")
}

func toDocumentError(err error) error {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return errs.Wrap(errs.ErrCodeInvalidDocument, err, "schema validation failed")
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		violations = []string{verr.Error()}
	}
	cause := &violationError{violations: violations}
	if len(violations) == 1 {
		return errs.Wrap(errs.ErrCodeInvalidDocument, cause, "document does not match schema")
	}
	return errs.Wrap(errs.ErrCodeInvalidDocument, cause, "document does not match schema (%d violations)", len(violations))
}

// collectViolations walks a ValidationError tree and collects the leaf
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
