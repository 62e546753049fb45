package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command that are
// not configuration. Cell size, scale, region labels and the text frame come
// from the merged config so villas.yaml can set them.
type renderOpts struct {
	output   string   // output file (single format), base path (multiple), or "-" for stdout
	formats  []string // output formats: txt, svg, png, pdf, json, dot
	input    string   // blueprint format when reading stdin
	detailed bool     // detailed node labels in DOT
	noCache  bool     // disable the render cache
	refresh  bool     // recompute and overwrite cached entries
}

// renderCommand creates the render command for generating plan outputs.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a blueprint to txt, SVG, PNG, PDF, JSON or DOT",
		Long: `Render builds the plan described by a blueprint and writes it in the requested
formats. With a single format, -o names the output file; with several, -o is a
base path and each format gets its own extension. Use "-" as FILE to read the
blueprint from stdin and -o - to write a single artifact to stdout.

PNG and PDF output require rsvg-convert on PATH.`,
		Example: `  villas render wing.toml -f txt -o -
  villas render wing.toml -f svg,png --regions -o out/wing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd, args[0], &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", `output file (single format), base path (multiple), or "-" for stdout`)
	f.StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(pipeline.Formats, ", ")+" (comma-separated, default svg)")
	f.StringVar(&opts.input, "input", "", "blueprint format when reading stdin: toml, yaml, json")
	f.Int("cell-size", pipeline.DefaultCellSize, "SVG cell size in pixels")
	f.Float64("scale", pipeline.DefaultScale, "PNG scale factor")
	f.Bool("regions", false, "label regions in SVG, PNG and PDF output")
	f.Bool("frame", false, "frame the text drawing")
	f.BoolVar(&opts.detailed, "detailed", false, "detailed region labels in DOT output")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached results and render again")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, input string, opts *renderOpts) error {
	toStdout := opts.output == "-"
	if toStdout && len(opts.formats) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "writing to stdout needs exactly one format, got %d", len(opts.formats))
	}

	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	source := input
	if input == "-" {
		source = ""
	}
	render := c.cfg.Render
	pipeOpts := pipeline.Options{
		Source:   source,
		Data:     data,
		Format:   blueprint.Format(opts.input),
		Formats:  opts.formats,
		CellSize: render.CellSize,
		Scale:    render.Scale,
		Regions:  render.Regions,
		Frame:    render.Frame,
		Detailed: opts.detailed,
		Refresh:  opts.refresh,
	}

	prog := newProgress(c.Logger)
	var spin *spinner
	if !toStdout {
		spin = startSpinner(ctx, cmd.ErrOrStderr(), "Rendering "+displayName(input)+"...")
	}
	result, err := runner.Execute(ctx, pipeOpts)
	if spin != nil {
		spin.stop()
	}
	if err != nil {
		return err
	}

	if toStdout {
		_, err := cmd.OutOrStdout().Write(result.Artifacts[opts.formats[0]])
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, opts.formats, outputPaths(opts.output, input, opts.formats))
	if err != nil {
		return err
	}
	prog.done("Rendered artifacts", "count", len(paths))

	printSuccess("Rendered %s", pipeOpts.Name(result.Blueprint))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats, result.CacheInfo.RenderHit)
	return nil
}

// outputPaths maps each format to its output file. A single format with an
// explicit output uses it verbatim; otherwise the base path gets one
// extension per format.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && basePath(output, input) != output {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input ("plan" for stdin).
// If output has a format extension (.svg, .txt, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "plan"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes each artifact and returns the written paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, paths map[string]string) ([]string, error) {
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		path := paths[f]
		if err := writeFile(path, artifacts[f]); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeOutput writes data to path, or to w when path is "" or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	return writeFile(path, data)
}

func displayName(input string) string {
	if input == "-" {
		return "stdin"
	}
	return filepath.Base(input)
}
