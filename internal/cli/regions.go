package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/pipeline"
	"github.com/matzehuels/villas/pkg/plan"
	"github.com/matzehuels/villas/pkg/render"
	"github.com/matzehuels/villas/pkg/render/nodelink"
	"github.com/matzehuels/villas/pkg/villa"
)

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// newTable returns a table in the CLI's border style.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if col == 0 {
				return StyleHighlight.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// loadPlan reads and builds a blueprint file through the runner.
func (c *CLI) loadPlan(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, input, format string) (*pipeline.Loaded, pipeline.Options, error) {
	data, err := readInput(cmd, input)
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	opts := pipeline.Options{Data: data}
	if input != "-" {
		opts.Source = input
	}
	if format != "" {
		opts.Format = blueprint.Format(format)
	}
	loaded, err := runner.Load(ctx, opts)
	return loaded, opts, err
}

// regionsCommand creates the regions command.
func (c *CLI) regionsCommand() *cobra.Command {
	var (
		graphOut string
		detailed bool
		input    string
	)

	cmd := &cobra.Command{
		Use:   "regions FILE",
		Short: "List the regions and passages of a plan",
		Long: `Regions partitions the walkable cells of a plan into regions separated by
doors, lists the passages between them and reports regions no passage reaches.

With --graph, the region graph is also written as DOT, SVG, PDF or PNG,
chosen by the file extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			loaded, opts, err := c.loadPlan(ctx, cmd, runner, args[0], input)
			if err != nil {
				return err
			}
			a, hit := runner.AnalyzeWithCacheInfo(ctx, loaded, opts)
			c.Logger.Debug("analysis", "cached", hit)

			writeRegions(cmd.OutOrStdout(), a)

			g := a.Graph()
			if isolated := a.Isolated(); len(isolated) > 0 {
				printWarning("%s not reachable through any passage: %s",
					plural(len(isolated), "region"), strings.Join(isolated, ", "))
			} else if g.Connected() {
				printSuccess("All regions are connected")
			} else {
				printWarning("The region graph is not connected")
			}

			if graphOut != "" {
				if err := writeGraph(ctx, graphOut, g, detailed, c.cfg.Render.Scale); err != nil {
					return err
				}
				printFile(graphOut)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&graphOut, "graph", "", "write the region graph to this file (.dot, .svg, .pdf, .png)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include sizes, stairs and rooms in graph labels")
	cmd.Flags().StringVar(&input, "input", "", "blueprint format when reading stdin: toml, yaml, json")

	return cmd
}

// writeRegions prints the region and passage tables.
func writeRegions(w io.Writer, a *plan.Analysis) {
	regions := newTable("Region", "Cells", "Stairs", "Rooms")
	for _, r := range a.Regions {
		regions.Row(r.ID, fmt.Sprint(r.Size()), fmt.Sprint(r.Stairs), orDash(strings.Join(r.Rooms, ", ")))
	}
	fmt.Fprintln(w, regions.Render())

	if len(a.Passages) == 0 {
		return
	}
	passages := newTable("Passage", "Doors", "Joins")
	for _, p := range a.Passages {
		passages.Row(p.ID, formatCells(p.Doors), strings.Join(p.Regions, " ↔ "))
	}
	fmt.Fprintln(w, passages.Render())
}

// writeGraph renders the region graph in the format named by path's extension.
func writeGraph(ctx context.Context, path string, g plan.Graph, detailed bool, scale float64) error {
	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: detailed})

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dot", ".gv":
		data = []byte(dot)
	case ".svg":
		data, err = nodelink.RenderSVG(ctx, dot)
	case ".pdf":
		data, err = nodelink.RenderPDF(ctx, dot)
	case ".png":
		data, err = nodelink.RenderPNG(ctx, dot, scale)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported graph format %q (use .dot, .svg, .pdf or .png)", ext)
	}
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// pathCommand creates the path command.
func (c *CLI) pathCommand() *cobra.Command {
	var (
		from, to string
		output   string
		input    string
	)

	cmd := &cobra.Command{
		Use:   "path FILE --from I,J --to I,J",
		Short: "Find the shortest walk between two cells",
		Long: `Path finds a shortest orthogonal walk over floor, door and stair cells and
prints the plan with the route marked '*'. With -o, the route is drawn on an
SVG of the plan instead.`,
		Example: `  villas path wing.toml --from 1,1 --to 3,2`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := villa.ParsePos(from)
			if err != nil {
				return err
			}
			end, err := villa.ParsePos(to)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			loaded, opts, err := c.loadPlan(ctx, cmd, runner, args[0], input)
			if err != nil {
				return err
			}
			route, err := loaded.Plan.Path(start, end)
			if err != nil {
				return err
			}

			if output != "" {
				svg := render.SVG(loaded.Plan,
					render.WithCellSize(c.cfg.Render.CellSize),
					render.WithRoute(route),
					render.WithTitle(opts.Name(loaded.Blueprint)))
				if err := writeFile(output, svg); err != nil {
					return err
				}
				printFile(output)
			} else {
				textOpts := []render.TextOption{render.WithPath(route)}
				if c.cfg.Render.Frame {
					textOpts = append(textOpts, render.WithFrame())
				}
				fmt.Fprint(cmd.OutOrStdout(), render.Text(loaded.Plan.Grid(), textOpts...))
			}
			printInfo("%s from %s to %s", plural(len(route)-1, "step"), start, end)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start cell as I,J")
	cmd.Flags().StringVar(&to, "to", "", "end cell as I,J")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write an SVG with the route to this file")
	cmd.Flags().StringVar(&input, "input", "", "blueprint format when reading stdin: toml, yaml, json")
	cmd.Flags().Bool("frame", false, "frame the text drawing")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func formatCells(cells []villa.Pos) string {
	parts := make([]string, len(cells))
	for i, p := range cells {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
