package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/meshtopo/pkg/buildinfo"
	"github.com/matzehuels/meshtopo/pkg/cache"
	"github.com/matzehuels/meshtopo/pkg/errors"
	"github.com/matzehuels/meshtopo/pkg/meshio"
	"github.com/matzehuels/meshtopo/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "meshtopo"

	// configEnv names a config file used when --config is not given.
	configEnv = "MESHTOPO_CONFIG"
)

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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Meshtopo regularizes, triangulates and improves planar meshes",
		Long: `Meshtopo is a CLI tool for planar mesh topology: it splits polygonal
regions into monotone faces, triangulates them and improves the triangles by
edge flipping, optionally measured on a cylinder or sphere.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.regularizeCommand())
	root.AddCommand(c.flipCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg pipeline.CacheConfig, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, cfg.Keyer(), c.Logger), nil
}

// newCache picks the cache backend: none, Redis when a URL is configured,
// and the file cache otherwise. Caches are instrumented so hits and misses
// reach the observability hooks.
func newCache(ctx context.Context, cfg pipeline.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{URL: cfg.RedisURL})
		if err != nil {
			return nil, err
		}
		return cache.Instrument(rc), nil
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(expandHome(dir))
	if err != nil {
		return nil, err
	}
	return cache.Instrument(fc), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/meshtopo/).
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

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// =============================================================================
// Config and Input Helpers
// =============================================================================

// loadConfig reads the config file named by path, or by $MESHTOPO_CONFIG
// when path is empty. No file yields an empty config.
func loadConfig(path string) (*pipeline.Config, error) {
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path == "" {
		return &pipeline.Config{}, nil
	}
	return pipeline.LoadConfig(expandHome(path))
}

// readDocument loads an input mesh document. SVG files are read as
// polygons; everything else as JSON.
func readDocument(path string) (*meshio.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
		}
		return nil, err
	}
	defer f.Close()

	var doc *meshio.Document
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		doc, err = meshio.ReadSVG(f)
	} else {
		doc, err = meshio.ReadJSON(f)
	}
	if err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = baseName(path)
	}
	return doc, nil
}

// baseName strips the directory and extension from path, including the
// ".mesh" infix of result files.
func baseName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimSuffix(base, ".mesh")
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	var out []string
	for f := range strings.SplitSeq(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
