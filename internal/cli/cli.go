// Package cli implements the villas command-line interface.
//
// Commands are cobra commands built as methods on [CLI]; logging goes through
// charmbracelet/log on stderr and status lines use lipgloss styling.
//
// # Commands
//
//   - validate: Check one or more blueprint files
//   - room: Check a single room drawing
//   - render: Generate txt, SVG, PNG, PDF, JSON or DOT output
//   - regions: Show the regions and passages of a plan
//   - path: Find a walking route between two cells
//   - view: Explore and edit a plan interactively
//   - store: Save, list, fetch and delete stored blueprints
//   - serve: Run the HTTP API
//   - cache, config, completion: housekeeping
//
// # Configuration
//
// Settings come from defaults, villas.yaml, VILLAS_* environment variables
// and flags; see [config.Load]. The configuration is loaded once before any
// command runs.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/villas/internal/config"
	"github.com/matzehuels/villas/pkg/buildinfo"
	"github.com/matzehuels/villas/pkg/cache"
	"github.com/matzehuels/villas/pkg/observability"
	"github.com/matzehuels/villas/pkg/pipeline"
	"github.com/matzehuels/villas/pkg/store"
	"github.com/matzehuels/villas/pkg/store/file"
	"github.com/matzehuels/villas/pkg/store/memory"
	"github.com/matzehuels/villas/pkg/store/mongo"
	"github.com/matzehuels/villas/pkg/store/redis"
)

// appName names the binary and its XDG directories.
const appName = "villas"

// Log levels accepted by New.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI carries the logger and the loaded configuration into every command.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New returns a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel changes the log level after construction.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand builds the villas command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Villas validates, analyzes and renders grid floor plans",
		Long: `Villas is a CLI tool for building villa floor plans out of rooms on a tile grid.
It checks that rooms are well formed, finds the connected regions and the
doors between them, and renders plans as text, SVG, PNG, PDF, JSON or DOT.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default villas.yaml or ~/.config/villas/config.yaml)")
	pf.BoolP("verbose", "v", false, "enable verbose logging")
	pf.String("cache-dir", "", "render cache directory (default ~/.cache/villas)")
	pf.String("store", config.BackendFile, "blueprint store: "+strings.Join(config.Backends, ", "))
	pf.String("store-dir", "", "file store directory (default ~/.local/share/villas/blueprints)")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.roomCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.regionsCommand())
	root.AddCommand(c.pathCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig merges the configuration for the command about to run.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	c.cfg = cfg
	uiOut = cmd.ErrOrStderr()

	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
		observability.Register(&logHooks{logger: c.Logger})
	}
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

// =============================================================================
// Backends
// =============================================================================

// newRunner returns a pipeline runner backed by the configured cache.
// noCache forces a NullCache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if prefix := c.cfg.Cache.Prefix; prefix != "" {
		keyer = cache.NewScopedKeyer(nil, prefix)
	}
	r := pipeline.NewRunner(cc, keyer, c.Logger)
	r.TTL = c.cfg.Cache.TTL
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.cfg.Cache
	if noCache || !cfg.Enabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// newStore opens the configured blueprint store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.cfg.Store
	c.Logger.Debug("opening store", "backend", cfg.Backend)
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil
	case config.BackendRedis:
		return redis.NewStore(ctx, redis.Config{URL: cfg.RedisURL, Prefix: cfg.RedisPrefix})
	case config.BackendMongo:
		return mongo.NewStore(ctx, mongo.Config{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return file.NewStore(cfg.Dir)
	}
}

// cacheDir returns $XDG_CACHE_HOME/villas, falling back to ~/.cache/villas.
func cacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Flag parsing
// =============================================================================

// parseFormats splits a --format value on commas. An empty value means svg.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
