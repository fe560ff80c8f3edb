// Package server implements the swimlane HTTP rendering service.
//
// The service wraps the same [pipeline.Runner] the CLI uses and exposes it
// over a small chi router:
//
//	GET  /healthz                       liveness probe
//	GET  /metrics                       Prometheus metrics
//	GET  /api/layout                    geometry JSON for the configured document
//	POST /api/layout                    geometry JSON for the posted document
//	GET  /api/diagram.{format}          svg, png, pdf, json or dot for the configured document
//	POST /api/diagram.{format}          the same for the posted document
//	GET  /api/nodes                     node list with labels, tags and notes
//	GET  /api/nodes/{id}                one node with its tag details and note
//	GET  /api/workspaces                workspaces of the notes backend
//	GET  /api/workspaces/{id}/summary   notes summary as JSON or markdown
//
// Diagram and layout requests accept the query parameters preset, view,
// minimap, title, scale, static, detailed, refresh and workspace. A
// workspace attaches that workspace's notes as note badges.
//
// Every response carries an X-Request-ID header. Diagram and layout
// responses also carry X-Diagram-Status, either "Diagram loaded" or
// "Failed to load layout". Errors are JSON:
//
//	{"error": {"code": "FETCH_FAILED", "message": "...", "request_id": "..."}}
//
// Invalid input answers 422, an oversized body 413 and an unreachable
// document 502.
package server
