package pipeline

import (
	"github.com/matzehuels/swimlane/pkg/flow"
	"github.com/matzehuels/swimlane/pkg/layout"
)

// ComputeLayout computes the swimlane geometry for doc with the resolved
// configuration. The overview view shares this geometry: Dropped still
// reports which nodes fall outside the grid.
func ComputeLayout(doc *flow.Document, opts Options) (*layout.Geometry, error) {
	cfg, err := opts.ResolveConfig()
	if err != nil {
		return nil, err
	}
	var layoutOpts []layout.Option
	if opts.NoMeasure {
		layoutOpts = append(layoutOpts, layout.WithoutMeasurer())
	}
	return layout.Compute(doc, cfg, layoutOpts...)
}
