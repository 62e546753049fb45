package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/pipeline"
	"github.com/matzehuels/villas/pkg/villa"
)

// defaultJobs is the number of blueprints validated concurrently.
const defaultJobs = 4

// validateResult is the outcome of checking one blueprint file.
type validateResult struct {
	path     string
	name     string
	rooms    int
	regions  int
	isolated int
	err      error
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that blueprint files describe valid plans",
		Long: `Validate decodes each blueprint (TOML, YAML or JSON), places its rooms and
tiles, and analyzes the resulting plan. Files are checked concurrently and
reported in the order given. The command fails if any blueprint is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer runner.Close()
			return c.runValidate(cmd.Context(), cmd.ErrOrStderr(), runner, args, jobs)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", defaultJobs, "number of files to check concurrently")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, status io.Writer, runner *pipeline.Runner, paths []string, jobs int) error {
	if jobs < 1 {
		jobs = 1
	}
	prog := newProgress(c.Logger)
	results := make([]validateResult, len(paths))

	var checked atomic.Int64
	spin := startSpinner(ctx, status, fmt.Sprintf("Validating 0/%d", len(paths)))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = validateFile(gctx, runner, path)
			spin.set("Validating %d/%d", checked.Add(1), len(paths))
			return nil
		})
	}
	err := g.Wait()
	spin.stop()
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			printError("%s: %s", r.path, errors.UserMessage(r.err))
			continue
		}
		printSuccess("%s: %s", r.path, r.name)
		detail := fmt.Sprintf("%s · %s", plural(r.rooms, "room"), plural(r.regions, "region"))
		if r.isolated > 0 {
			detail += fmt.Sprintf(" · %d isolated", r.isolated)
		}
		printDetail("%s", detail)
	}
	prog.done("Checked blueprints", "count", len(paths), "invalid", failed)

	if failed > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%d of %d blueprints are invalid", failed, len(paths))
	}
	return nil
}

func validateFile(ctx context.Context, runner *pipeline.Runner, path string) validateResult {
	res := validateResult{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.err = err
		return res
	}
	opts := pipeline.Options{Source: path, Data: data}
	loaded, err := runner.Load(ctx, opts)
	if err != nil {
		res.err = err
		return res
	}
	a := runner.Analyze(ctx, loaded, opts)

	res.name = opts.Name(loaded.Blueprint)
	if res.name == "" {
		res.name = filepath.Base(path)
	}
	res.rooms = len(loaded.Plan.Rooms())
	res.regions = len(a.Regions)
	res.isolated = len(a.Isolated())
	return res
}

// roomCommand creates the room command, which checks a single room drawing.
func (c *CLI) roomCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room [FILE]",
		Short: "Check a room drawing",
		Long: `Room reads a drawing from FILE, or stdin when FILE is "-" or omitted, and
checks that it forms a valid room. Drawings use '-' for floor, 'D' for door
and ' ' or '.' for wall, one grid row per line.`,
		Example: `  printf 'D---\n----\n' | villas room`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd, path)
			if err != nil {
				return err
			}
			room, err := parseRoom(string(data))
			if err != nil {
				return err
			}

			box := room.Box()
			printSuccess("Valid room")
			printKeyValue("floors", fmt.Sprint(len(room.Floors())))
			printKeyValue("doors", fmt.Sprint(len(room.Doors())))
			printKeyValue("size", fmt.Sprintf("%dx%d", box.Columns(), box.Rows()))
			fmt.Fprint(cmd.OutOrStdout(), blueprint.Draw(room))
			return nil
		},
	}
	return cmd
}

func parseRoom(drawing string) (*villa.Room, error) {
	features, err := blueprint.ParseDrawing(drawing)
	if err != nil {
		return nil, err
	}
	return villa.NewRoom(features...)
}
