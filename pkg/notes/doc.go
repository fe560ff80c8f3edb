// Package notes reads the per-node notes that users attach to a diagram
// in a workspace, and pairs them with the diagram's node labels.
//
// Notes live in an external workspace service; this package only reads
// them. [HTTPSource] talks to the service's API:
//
//	GET {base}/api/workspaces              -> [{"id","name","createdAt"}]
//	GET {base}/api/workspaces/{id}/notes   -> {"<nodeId>": "<text>"}
//
// [FileSource] reads the same data from a JSON file mapping workspace ids
// to note maps, for offline use and tests.
//
// [Summarize] joins a workspace's notes with a document: every noted node
// gets its label, phase and lane, and notes for ids that no longer exist in
// the document are reported as orphans. [WriteMarkdown] formats a summary.
package notes
