package pipeline

import (
	"context"

	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/plan"
	"github.com/matzehuels/villas/pkg/render"
	"github.com/matzehuels/villas/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
// a may be nil, in which case the plan is analyzed here.
func Render(ctx context.Context, name string, p *plan.Plan, a *plan.Analysis, opts Options) (map[string][]byte, error) {
	if a == nil {
		a = p.Analyze()
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, name, p, a, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat generates a single artifact.
func RenderFormat(ctx context.Context, name string, p *plan.Plan, a *plan.Analysis, format string, opts Options) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatText:
		var textOpts []render.TextOption
		if opts.Frame {
			textOpts = append(textOpts, render.WithFrame())
		}
		data = []byte(render.Text(p.Grid(), textOpts...))
	case FormatSVG:
		data = render.SVG(p, svgOptions(name, a, opts)...)
	case FormatPNG:
		data, err = render.ToPNG(ctx, render.SVG(p, svgOptions(name, a, opts)...), opts.Scale)
	case FormatPDF:
		data, err = render.ToPDF(ctx, render.SVG(p, svgOptions(name, a, opts)...))
	case FormatJSON:
		data, err = render.JSON(name, p, a)
	case FormatDOT:
		data = []byte(nodelink.ToDOT(a.Graph(), nodelink.Options{Detailed: opts.Detailed}))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "render %s", format)
	}
	return data, nil
}

func svgOptions(name string, a *plan.Analysis, opts Options) []render.SVGOption {
	svgOpts := []render.SVGOption{render.WithCellSize(opts.CellSize)}
	if name != "" {
		svgOpts = append(svgOpts, render.WithTitle(name))
	}
	if opts.Regions {
		svgOpts = append(svgOpts, render.WithAnalysis(a))
	}
	return svgOpts
}
