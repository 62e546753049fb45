package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/store"
)

// storeCommand creates the store command for managing saved blueprints.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Save, list, fetch and delete stored blueprints",
		Long: `Store manages blueprints kept in the configured backend: a directory of JSON
files (default), Redis or MongoDB. Select one with --store or store.backend
in villas.yaml.`,
	}

	cmd.AddCommand(c.storeSaveCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	s, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func (c *CLI) storeSaveCommand() *cobra.Command {
	var id, name string

	cmd := &cobra.Command{
		Use:   "save FILE",
		Short: "Validate a blueprint and save it",
		Long: `Save checks that the blueprint builds a valid plan and stores it. Without --id
a new ID is assigned; with an existing ID the record is replaced and keeps its
creation time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, err := blueprint.Load(args[0])
			if err != nil {
				return err
			}
			if _, err := blueprint.Build(bp); err != nil {
				return err
			}
			rec := &store.Record{ID: id, Name: name, Blueprint: bp}
			return c.withStore(cmd.Context(), func(s store.Store) error {
				if err := s.Save(cmd.Context(), rec); err != nil {
					return err
				}
				printSuccess("Saved %s", rec.ID)
				if rec.Name != "" {
					printDetail("Name: %s", rec.Name)
				}
				printNextStep("Fetch it with", "villas store get "+rec.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "record ID (default: generated)")
	cmd.Flags().StringVar(&name, "name", "", "record name (default: blueprint name)")

	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored blueprints",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				records, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(records) == 0 {
					printInfo("No stored blueprints")
					return nil
				}
				t := newTable("ID", "Name", "Size", "Rooms", "Updated")
				for _, r := range records {
					t.Row(r.ID, orDash(r.Name),
						fmt.Sprintf("%dx%d", r.Blueprint.Width, r.Blueprint.Height),
						fmt.Sprint(len(r.Blueprint.Rooms)),
						formatRelativeTime(r.UpdatedAt))
				}
				fmt.Fprintln(cmd.OutOrStdout(), t.Render())
				return nil
			})
		},
	}
}

func (c *CLI) storeGetCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Print or export a stored blueprint",
		Long: `Get writes a stored blueprint to stdout, or to the file named by -o. The
encoding follows the output file extension, or --format for stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				rec, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				f, err := blueprint.ParseFormat(format)
				if err != nil {
					return err
				}
				if output != "" && output != "-" {
					if f, err = blueprint.FormatFromPath(output); err != nil {
						return err
					}
				}
				data, err := blueprint.Encode(rec.Blueprint, f)
				if err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), output, data); err != nil {
					return err
				}
				if output != "" && output != "-" {
					printFile(filepath.Clean(output))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&format, "format", string(blueprint.FormatTOML), "encoding for stdout: toml, yaml, json")

	return cmd
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID...",
		Aliases: []string{"rm"},
		Short:   "Delete stored blueprints",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				for _, id := range args {
					if err := s.Delete(cmd.Context(), id); err != nil {
						return err
					}
					printSuccess("Deleted %s", id)
				}
				return nil
			})
		},
	}
}

// formatRelativeTime formats t relative to now ("5m ago"), falling back to
// a date after a week.
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
