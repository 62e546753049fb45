package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/plan"
	"github.com/matzehuels/villas/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes size, stair count and rooms in node labels.
	// When false, only the region ID is shown.
	Detailed bool
}

// ToDOT converts a region graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Regions no passage reaches are drawn with dashed outlines and grey fill.
// Edges are labeled with the passage joining the two regions.
func ToDOT(g plan.Graph, opts Options) string {
	linked := make(map[string]bool)
	for _, e := range g.Edges {
		linked[e.From] = true
		linked[e.To] = true
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"#f4efe6\", fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#b5651d\", fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if !linked[n.ID] && len(g.Nodes) > 1 {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", e.From, e.To, e.Passage)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n plan.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	parts := []string{fmt.Sprintf("cells: %d", n.Size)}
	if n.Stairs > 0 {
		parts = append(parts, fmt.Sprintf("stairs: %d", n.Stairs))
	}
	if len(n.Rooms) > 0 {
		parts = append(parts, "rooms: "+strings.Join(n.Rooms, ", "))
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

// RenderSVG lays out a DOT graph with Graphviz and returns the SVG document.
// The root element is rewritten so the drawing scales with its container.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "start graphviz")
	}
	defer gv.Close()

	var out bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "layout region graph")
	}
	return fitSVG(out.Bytes()), nil
}

// RenderPDF renders a DOT graph to PDF through [render.ToPDF].
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph to PNG through [render.ToPNG] at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

var (
	rootTagRe = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// fitSVG replaces the point-sized root tag Graphviz emits with one sized in
// user units from its viewBox. SVGs without a usable viewBox pass through.
func fitSVG(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, errW := strconv.ParseFloat(string(m[3]), 64)
	h, errH := strconv.ParseFloat(string(m[4]), 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return svg
	}

	root := fmt.Appendf(nil, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	done := false
	return rootTagRe.ReplaceAllFunc(svg, func(tag []byte) []byte {
		if done {
			return tag
		}
		done = true
		return root
	})
}
