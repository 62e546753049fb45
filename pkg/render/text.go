package render

import (
	"strings"

	"github.com/matzehuels/villas/pkg/villa"
)

// TextOption configures text rendering.
type TextOption func(*textRenderer)

type textRenderer struct {
	frame   bool
	visible bool
	path    map[villa.Pos]bool
}

// WithFrame surrounds the drawing with a box border.
func WithFrame() TextOption { return func(r *textRenderer) { r.frame = true } }

// WithVisibleWalls draws walls as '#' instead of spaces.
func WithVisibleWalls() TextOption { return func(r *textRenderer) { r.visible = true } }

// WithPath marks the given cells with '*'.
func WithPath(path []villa.Pos) TextOption {
	return func(r *textRenderer) {
		r.path = make(map[villa.Pos]bool, len(path))
		for _, p := range path {
			r.path[p] = true
		}
	}
}

// Text renders the grid drawing, one line per row.
func Text(g *villa.Grid, opts ...TextOption) string {
	var r textRenderer
	for _, opt := range opts {
		opt(&r)
	}

	b := g.Bounds()
	lines := make([]string, 0, b.Rows()+2)
	if r.frame {
		lines = append(lines, "+"+strings.Repeat("-", b.Columns())+"+")
	}
	for i, row := range g.Rows() {
		var sb strings.Builder
		if r.frame {
			sb.WriteByte('|')
		}
		for j, t := range row {
			switch {
			case r.path[villa.Pos{I: i, J: j}]:
				sb.WriteRune('*')
			case t == villa.Wall && r.visible:
				sb.WriteRune('#')
			default:
				sb.WriteRune(t.Rune())
			}
		}
		if r.frame {
			sb.WriteByte('|')
		}
		lines = append(lines, sb.String())
	}
	if r.frame {
		lines = append(lines, lines[0])
	}
	return strings.Join(lines, "\n") + "\n"
}
