package flow

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultTagWidth is the chip width used for tags missing from a catalog.
const DefaultTagWidth = 40

// TagInfo is the display metadata of an attachment tag.
type TagInfo struct {
	Label  string  `json:"label" toml:"label"`   // Heading shown in menus and tables
	Short  string  `json:"short" toml:"short"`   // Chip text
	Width  float64 `json:"width" toml:"width"`   // Chip width in pixels
	Source string  `json:"source" toml:"source"` // Relative path of the tag's data table
}

// TagCatalog maps tag identifiers to display metadata.
type TagCatalog map[string]TagInfo

// DefaultTags returns the built-in tag categories. The returned map is a
// fresh copy and may be modified by the caller.
func DefaultTags() TagCatalog {
	return TagCatalog{
		"leading-practices":  {Label: "Leading Practices", Short: "LP", Width: 40, Source: "data/leading-practices.csv"},
		"kpis":               {Label: "KPIs", Short: "KPI", Width: 42, Source: "data/kpis.csv"},
		"persona-models":     {Label: "Persona Models", Short: "PM", Width: 42, Source: "data/persona-models.csv"},
		"activity-placement": {Label: "Activity Placement", Short: "AP", Width: 42, Source: "data/activity-placement.csv"},
	}
}

// Lookup returns the metadata for id. Unknown tags get a derived label
// (title-cased words), a short code built from the word initials and the
// default chip width; ok reports whether id was in the catalog.
func (c TagCatalog) Lookup(id string) (info TagInfo, ok bool) {
	if info, ok = c[id]; ok {
		if info.Width <= 0 {
			info.Width = DefaultTagWidth
		}
		return info, true
	}
	return derivedTag(id), false
}

// Merge returns a new catalog with the entries of other layered over c.
// Zero-valued fields in other keep the value from c.
func (c TagCatalog) Merge(other TagCatalog) TagCatalog {
	out := make(TagCatalog, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		base := out[k]
		if v.Label != "" {
			base.Label = v.Label
		}
		if v.Short != "" {
			base.Short = v.Short
		}
		if v.Width > 0 {
			base.Width = v.Width
		}
		if v.Source != "" {
			base.Source = v.Source
		}
		out[k] = base
	}
	return out
}

// IDs returns the catalog's tag identifiers, sorted.
func (c TagCatalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func derivedTag(id string) TagInfo {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	var label, short strings.Builder
	for i, w := range words {
		r := []rune(w)
		if i > 0 {
			label.WriteByte(' ')
		}
		label.WriteString(strings.ToUpper(string(r[0])) + string(r[1:]))
		short.WriteString(strings.ToUpper(string(r[0])))
	}
	return TagInfo{Label: label.String(), Short: short.String(), Width: DefaultTagWidth}
}
