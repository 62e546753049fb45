// Package render draws villa plans.
//
// # Overview
//
// This package turns a [plan.Plan] and its [plan.Analysis] into output
// artifacts:
//
//   - [Text]: the grid drawing, optionally framed
//   - [SVG]: one rectangle per cell with an optional region overlay
//   - [JSON]: a machine-readable dump of tiles, regions and passages
//   - Region graphs as node-link diagrams (in the [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := render.SVG(p, render.WithAnalysis(a), render.WithCellSize(24))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/villas/pkg/render/nodelink
package render
