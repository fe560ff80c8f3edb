// Package flow defines the abstract swimlane document: phases, lanes, nodes
// and flows.
//
// A [Document] is the input to the layout engine in pkg/layout. It is owned
// by whatever loaded it (a file, an HTTP endpoint, stdin) and is never
// mutated by layout or rendering.
//
// # Document Format
//
// Documents are JSON (or YAML) objects with four fields:
//
//	{
//	  "phases": ["Plan", "Build"],
//	  "lanes":  ["Ops"],
//	  "nodes":  [{"id": "a", "label": "Review", "phase": "Plan", "lane": "Ops", "kind": "task"}],
//	  "flows":  [["a", "b"]]
//	}
//
// Phases are columns (left to right), lanes are rows (top to bottom). A
// (phase, lane) pair is a cell and may hold any number of nodes.
//
// For compatibility with older documents, "type" is accepted as an alias of
// "kind" and "icons" as an alias of "tags". Flows may be written either as
// two-element arrays or as {"from": ..., "to": ...} objects; they are always
// written back as arrays.
//
// # Node Kinds
//
//	flow.KindTask     // rectangle with wrapped label
//	flow.KindEvent    // circle, label to the right
//	flow.KindGateway  // diamond, label to the right
//
// Unknown or empty kinds parse as [KindTask].
//
// # Tags
//
// Nodes may carry attachment tags (e.g. "kpis", "leading-practices"). Tags
// are resolved to display metadata through a [TagCatalog]; [DefaultTags]
// holds the built-in categories.
//
// # Checking Documents
//
// The layout engine tolerates dangling references and simply drops them.
// [Document.Check] reports the same problems up front so that CLIs and
// services can warn about them:
//
//	report := doc.Check()
//	for _, issue := range report.Issues {
//	    fmt.Println(issue)
//	}
package flow
