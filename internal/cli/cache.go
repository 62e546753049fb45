package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/villas/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the render cache",
		Long: `Cache manages the local file cache of plan analyses and rendered artifacts.
A Redis cache (cache.redis_url) expires entries on its own and is not touched.`,
	}

	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// fileCacheDir returns the configured file cache directory.
func (c *CLI) fileCacheDir() (string, error) {
	if dir := c.cfg.Cache.Dir; dir != "" {
		return dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}

// withFileCache opens the file cache for fn. fn is skipped when Redis is
// configured or the cache directory does not exist yet.
func (c *CLI) withFileCache(fn func(*cache.FileCache) error) error {
	if c.cfg.Cache.RedisURL != "" {
		printWarning("The Redis cache expires on its own; nothing to do locally")
		return nil
	}
	dir, err := c.fileCacheDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	return fn(fc)
}

func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cached entries by kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withFileCache(func(fc *cache.FileCache) error {
				st, err := fc.Stats()
				if err != nil {
					return err
				}
				if st.Total() == 0 {
					printInfo("Cache is empty")
					return nil
				}
				kinds := make([]string, 0, len(st.Entries))
				for k := range st.Entries {
					kinds = append(kinds, k)
				}
				slices.Sort(kinds)

				t := newTable("Kind", "Entries")
				for _, k := range kinds {
					t.Row(k, fmt.Sprint(st.Entries[k]))
				}
				fmt.Fprintln(cmd.OutOrStdout(), t.Render())
				printDetail("%s, %s in %s", plural(st.Total(), "entry"), formatBytes(st.Bytes), fc.Dir())
				return nil
			})
		},
	}
}

func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired and unreadable entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withFileCache(func(fc *cache.FileCache) error {
				n, err := fc.Prune()
				if err != nil {
					return err
				}
				printSuccess("Pruned %s", plural(n, "entry"))
				return nil
			})
		},
	}
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached analyses and artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withFileCache(func(fc *cache.FileCache) error {
				n, err := fc.Clear()
				if err != nil {
					return err
				}
				printSuccess("Cleared %s", plural(n, "cached entry"))
				printDetail("Directory: %s", fc.Dir())
				return nil
			})
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// formatBytes renders n as B, KB or MB.
func formatBytes(n int64) string {
	switch {
	case n < 1<<10:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	}
}
