// Package layout computes swimlane diagram geometry.
//
// Given a [flow.Document], [Compute] produces a [Geometry]: the phase
// columns, the lane rows, a box for every node and a routed path for every
// flow. The pass runs in a fixed order:
//
//  1. [LaneHeights] sizes every lane to fit its fullest cell.
//  2. [PlaceNodes] stacks the nodes of each cell, sorted by label, and
//     centers the stack in the lane. Task labels are wrapped with
//     pkg/layout/text.
//  3. [Route] connects the final anchors. Connectors that are not level
//     take a vertical "bus" run whose x comes from a [BusAllocator], so no
//     two vertical runs overlap.
//
// # Coordinates
//
// All values are in canvas pixels with the origin at the top left and y
// growing downwards, matching SVG. Columns span GridLeft..GridRight evenly;
// lanes start at GridTop.
//
// # Configuration
//
// [Config] holds every constant. [Preset] provides three sizes (compact,
// standard, large); [DefaultConfig] is the large preset. [LoadConfig] reads
// overrides from a TOML file:
//
//	[node]
//	width = 180
//	max_lines = 3
//
//	[tags.kpis]
//	label = "Key Metrics"
//
// # Determinism
//
// Layout is a pure function of the document and the configuration. The
// only state, the bus allocator, is created per call. Sibling order never
// depends on input order.
package layout
