package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/villas/pkg/plan"
	"github.com/matzehuels/villas/pkg/villa"
)

// Cell size limits in SVG user units.
const (
	DefaultCellSize = 24
	MinCellSize     = 4
	MaxCellSize     = 128
)

var tileFill = map[villa.Tile]string{
	villa.Wall:  "#3b3b3b",
	villa.Floor: "#f4efe6",
	villa.Door:  "#b5651d",
	villa.Stair: "#7a9cc6",
}

const svgCSS = `
    .cell { stroke: #2a2a2a; stroke-width: 0.5; }
    .path { fill: #d33; fill-opacity: 0.55; }
    .region-label { font-family: sans-serif; fill: #222; text-anchor: middle; dominant-baseline: central; pointer-events: none; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	cellSize int
	analysis *plan.Analysis
	path     []villa.Pos
	title    string
}

// WithCellSize sets the side of one cell. Values are clamped to
// [MinCellSize, MaxCellSize].
func WithCellSize(n int) SVGOption {
	return func(r *svgRenderer) { r.cellSize = max(MinCellSize, min(MaxCellSize, n)) }
}

// WithAnalysis overlays region labels at region centroids.
func WithAnalysis(a *plan.Analysis) SVGOption { return func(r *svgRenderer) { r.analysis = a } }

// WithRoute highlights a path through the plan.
func WithRoute(path []villa.Pos) SVGOption { return func(r *svgRenderer) { r.path = path } }

// WithTitle sets the document title.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// SVG renders the plan grid as an SVG document.
func SVG(p *plan.Plan, opts ...SVGOption) []byte {
	r := svgRenderer{cellSize: DefaultCellSize}
	for _, opt := range opts {
		opt(&r)
	}

	b := p.Bounds()
	size := float64(r.cellSize)
	w, h := float64(b.Columns())*size, float64(b.Rows())*size

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgCSS)

	for i, row := range p.Grid().Rows() {
		for j, t := range row {
			fmt.Fprintf(&buf, `  <rect class="cell tile-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
				t.Name(), float64(j)*size, float64(i)*size, size, size, tileFill[t])
		}
	}

	for _, c := range r.path {
		fmt.Fprintf(&buf, `  <rect class="path" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
			float64(c.J)*size, float64(c.I)*size, size, size)
	}

	if r.analysis != nil {
		renderRegionLabels(&buf, r.analysis, size)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderRegionLabels(buf *bytes.Buffer, a *plan.Analysis, size float64) {
	fontSize := max(6, size*0.5)
	for _, region := range a.Regions {
		ci, cj := region.Center()
		x, y := (cj+0.5)*size, (ci+0.5)*size
		fmt.Fprintf(buf, `  <text id="region-%s" class="region-label" x="%.1f" y="%.1f" font-size="%.1f">%s`,
			escapeXML(region.ID), x, y, fontSize, escapeXML(region.ID))
		if len(region.Rooms) > 0 {
			fmt.Fprintf(buf, "<title>%s</title>", escapeXML(strings.Join(region.Rooms, ", ")))
		}
		buf.WriteString("</text>\n")
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
