package flow

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// nodeWire is the on-disk node shape, including legacy aliases.
type nodeWire struct {
	ID        string   `json:"id" yaml:"id"`
	Label     string   `json:"label" yaml:"label"`
	Phase     string   `json:"phase" yaml:"phase"`
	Lane      string   `json:"lane" yaml:"lane"`
	Kind      string   `json:"kind" yaml:"kind"`
	Type      string   `json:"type" yaml:"type"`
	Tags      []string `json:"tags" yaml:"tags"`
	Icons     []string `json:"icons" yaml:"icons"`
	Highlight bool     `json:"highlight" yaml:"highlight"`
}

func (w nodeWire) node() Node {
	kind := w.Kind
	if kind == "" {
		kind = w.Type
	}
	tags := w.Tags
	if len(tags) == 0 {
		tags = w.Icons
	}
	return Node{
		ID:        w.ID,
		Label:     w.Label,
		Phase:     w.Phase,
		Lane:      w.Lane,
		Kind:      ParseKind(kind),
		Tags:      tags,
		Highlight: w.Highlight,
	}
}

// UnmarshalJSON decodes a node, accepting "type" and "icons" aliases.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = w.node()
	return nil
}

// UnmarshalYAML decodes a node, accepting "type" and "icons" aliases.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var w nodeWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	*n = w.node()
	return nil
}

type flowObject struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// MarshalJSON writes the flow as a [from, to] pair.
func (f Flow) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{f.From, f.To})
}

// UnmarshalJSON accepts either a [from, to] pair or a {"from", "to"} object.
func (f *Flow) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []string
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("flow: %w", err)
		}
		return f.setPair(pair)
	}
	var obj flowObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("flow: %w", err)
	}
	f.From, f.To = obj.From, obj.To
	return nil
}

// MarshalYAML writes the flow as a [from, to] sequence.
func (f Flow) MarshalYAML() (any, error) {
	return []string{f.From, f.To}, nil
}

// UnmarshalYAML accepts either a [from, to] sequence or a from/to mapping.
func (f *Flow) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var pair []string
		if err := value.Decode(&pair); err != nil {
			return fmt.Errorf("flow: %w", err)
		}
		return f.setPair(pair)
	}
	var obj flowObject
	if err := value.Decode(&obj); err != nil {
		return fmt.Errorf("flow: %w", err)
	}
	f.From, f.To = obj.From, obj.To
	return nil
}

func (f *Flow) setPair(pair []string) error {
	if len(pair) != 2 {
		return fmt.Errorf("flow: want [from, to], got %d elements", len(pair))
	}
	f.From, f.To = pair[0], pair[1]
	return nil
}
