package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/surveyplot/internal/config"
	"github.com/matzehuels/surveyplot/pkg/buildinfo"
	"github.com/matzehuels/surveyplot/pkg/cache"
	"github.com/matzehuels/surveyplot/pkg/observability"
	"github.com/matzehuels/surveyplot/pkg/pipeline"
	"github.com/matzehuels/surveyplot/pkg/publish"
)

// =============================================================================
// Constants
// =============================================================================

// appName is used for the cache directory and in help output.
const appName = "surveyplot"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer // command output; stdout unless a test replaces it

	configPath string
	cfg        *config.Config
}

// New creates a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), Out: os.Stdout}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Surveyplot renders comparison charts of astronomical surveys",
		Long: `Surveyplot reads a table of spectroscopic surveys and renders annotated
log-scale scatter charts comparing survey area, redshift counts and stellar RVs.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			if cfg.Path != "" {
				c.Logger.Debug("loaded config", "path", cfg.Path)
			}
			registerHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ./"+config.FileName+" if present)")

	root.AddCommand(c.correlationsCommand())
	root.AddCommand(c.timelineCommand())
	root.AddCommand(c.allCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// settings returns the loaded configuration, or the defaults when a command
// runs without the root's pre-run hook.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the configuration. The caller
// closes it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.settings()

	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.TTL = cfg.Cache.TTL.Duration

	if pc := cfg.PublishConfig(); pc.Enabled() {
		pub, err := publish.New(pc)
		if err != nil {
			store.Close()
			return nil, err
		}
		runner.Publisher = pub
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "err", err)
		dir = ""
	}
	cc := c.settings().CacheConfig(dir)
	if cc.Backend == cache.BackendFile && cc.Dir == "" {
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cc.Backend, err)
	}
	return store, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the artifact cache directory (~/.cache/surveyplot/ or
// $XDG_CACHE_HOME/surveyplot/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats splits a comma-separated --format value. Empty means pdf.
func parseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{pipeline.DefaultFormat}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// registerHooks routes observability events to debug logs.
func registerHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}
