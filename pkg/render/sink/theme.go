package sink

import (
	"bytes"
	"encoding/xml"
)

// Theme holds the colors used by the SVG and PNG renderers. Values are
// hex colors ("#rrggbb").
type Theme struct {
	Background  string
	LaneFill    [2]string // Alternating lane backgrounds
	GridLine    string
	LabelText   string
	NodeFill    string
	NodeStroke  string
	NodeText    string
	Highlight   string
	EventFill   string
	GatewayFill string
	Edge        string
	ChipFill    string
	ChipText    string
	NoteFill    string
}

// DefaultTheme returns the standard light theme.
func DefaultTheme() Theme {
	return Theme{
		Background:  "#ffffff",
		LaneFill:    [2]string{"#f7f9fc", "#eef2f7"},
		GridLine:    "#c7d0db",
		LabelText:   "#33404d",
		NodeFill:    "#ffffff",
		NodeStroke:  "#4a6785",
		NodeText:    "#1f2933",
		Highlight:   "#d9822b",
		EventFill:   "#e6f4ea",
		GatewayFill: "#fff4d6",
		Edge:        "#6b7c8f",
		ChipFill:    "#dbe7f3",
		ChipText:    "#274763",
		NoteFill:    "#f2c94c",
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
