// Package nodelink renders region graphs as node-link diagrams.
//
// # Overview
//
// Each region of a plan becomes a box and each passage an edge between the
// regions it joins. Regions that no passage reaches stand out with a dashed
// outline.
//
// # Usage
//
//	g := p.Analyze().Graph()
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
