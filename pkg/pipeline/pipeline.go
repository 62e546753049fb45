// Package pipeline turns blueprints into analyzed plans and rendered artifacts.
//
// The CLI and the HTTP server both go through a [Runner], which runs three
// stages and caches the last two:
//
//  1. Load decodes a TOML, YAML or JSON blueprint and builds its plan.
//  2. Analyze partitions the plan into regions and passages.
//  3. Render writes txt, svg, png, pdf, json or dot artifacts.
//
// Stages can also be run on their own.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "wing.toml",
//	    Data:    data,
//	    Formats: []string{"svg", "txt"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/cache"
	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/plan"
	"github.com/matzehuels/villas/pkg/render"
)

// Defaults shared by the CLI and the HTTP API.

const (
	// DefaultCellSize is the SVG side of one grid cell.
	DefaultCellSize = render.DefaultCellSize

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// MinScale and MaxScale bound the PNG scale factor.
	MinScale = 0.5
	MaxScale = 8.0
)

// Output formats.
const (
	FormatText = "txt"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Formats lists the supported output formats in a stable order.
var Formats = []string{FormatText, FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// ContentTypes maps each output format to its MIME type.
var ContentTypes = map[string]string{
	FormatText: "text/plain; charset=utf-8",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
}

// Options describes one pipeline run. The HTTP API decodes it from request
// bodies; blueprint data travels separately.
type Options struct {
	// Blueprint input
	Source string           `json:"source,omitempty"` // file name or label, used in logs and hooks
	Data   []byte           `json:"-"`
	Format blueprint.Format `json:"format,omitempty"` // inferred from Source when empty

	// Artifacts
	Formats  []string `json:"formats,omitempty"`
	CellSize int      `json:"cell_size,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Regions  bool     `json:"regions,omitempty"`  // overlay region labels in SVG
	Detailed bool     `json:"detailed,omitempty"` // detailed node labels in DOT
	Frame    bool     `json:"frame,omitempty"`    // frame the text drawing
	Refresh  bool     `json:"refresh,omitempty"`  // bypass cache reads

	validated bool // set once ValidateAndSetDefaults succeeds
}

// Loaded is the output of the load stage.
type Loaded struct {
	Blueprint *blueprint.Blueprint
	Plan      *plan.Plan

	// Hash identifies the plan's content. Blueprints that describe the same
	// plan share a hash regardless of encoding or formatting.
	Hash string
}

// Result holds everything a run produced.
type Result struct {
	*Loaded

	Analysis  *plan.Analysis
	Artifacts map[string][]byte // keyed by format
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats counts what a run found and how long each stage took.
type Stats struct {
	RoomCount    int
	RegionCount  int
	PassageCount int
	LoadTime     time.Duration
	AnalyzeTime  time.Duration
	RenderTime   time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	AnalyzeHit bool
	RenderHit  bool // every requested artifact was cached
}

// ValidateFormat reports an INVALID_FORMAT error for unknown formats.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateFormats validates each entry of formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCellSize checks the SVG cell size bounds.
func ValidateCellSize(n int) error {
	if n < render.MinCellSize || n > render.MaxCellSize {
		return errors.New(errors.ErrCodeInvalidInput,
			"cell size must be between %d and %d, got %d", render.MinCellSize, render.MaxCellSize, n)
	}
	return nil
}

// ValidateScale checks the PNG scale bounds.
func ValidateScale(s float64) error {
	if s < MinScale || s > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput,
			"scale must be between %.1f and %.1f, got %g", MinScale, MaxScale, s)
	}
	return nil
}

// ValidateAndSetDefaults runs the load and render checks once. Later calls
// return nil without repeating them.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that there is a blueprint to load and resolves its format.
func (o *Options) ValidateForLoad() error {
	if len(o.Data) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "blueprint data is required")
	}
	if o.Format == "" {
		if o.Source == "" {
			return errors.New(errors.ErrCodeInvalidFormat, "format is required when source has no extension")
		}
		f, err := blueprint.FormatFromPath(o.Source)
		if err != nil {
			return err
		}
		o.Format = f
	}
	if _, err := blueprint.ParseFormat(string(o.Format)); err != nil {
		return err
	}
	return nil
}

// SetRenderDefaults fills unset render options: svg output, the default cell
// size and the default PNG scale.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.CellSize == 0 {
		o.CellSize = DefaultCellSize
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// ValidateForRender applies render defaults and checks their bounds.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateCellSize(o.CellSize); err != nil {
		return err
	}
	return ValidateScale(o.Scale)
}

// Name returns the plan name used in artifacts: the blueprint name, or the
// source file name without extension.
func (o *Options) Name(bp *blueprint.Blueprint) string {
	if bp != nil && bp.Name != "" {
		return bp.Name
	}
	base := o.Source[strings.LastIndexAny(o.Source, `/\`)+1:]
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}
	return base
}

// ArtifactKeyOpts returns the cache key inputs for format. Only the
// options that change that format's output are included.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatText:
		k.Frame = o.Frame
	case FormatSVG, FormatPDF:
		k.CellSize, k.Regions = o.CellSize, o.Regions
	case FormatPNG:
		k.CellSize, k.Regions, k.Scale = o.CellSize, o.Regions, o.Scale
	case FormatDOT:
		k.Detailed = o.Detailed
	}
	return k
}
