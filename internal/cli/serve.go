package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/meshtopo/internal/server"
	"github.com/matzehuels/meshtopo/pkg/observability"
	"github.com/matzehuels/meshtopo/pkg/pipeline"
	"github.com/matzehuels/meshtopo/pkg/store"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr     string
	mongoURI string
	database string
	noCache  bool
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags pipelineFlags
		so    serveOpts
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Long: `Serve the pipeline over HTTP.

Processed meshes are stored in MongoDB when --mongo-uri (or server.mongo_uri
in the config file) is set, and in memory otherwise. Results are cached in
Redis when cache.redis_url is configured.

The pipeline flags set the defaults that requests may override.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			cfg, opts, err := flags.resolve(cmd, logger)
			if err != nil {
				return err
			}
			override(cmd.Flags(), "addr", &cfg.Server.Addr, so.addr)
			override(cmd.Flags(), "mongo-uri", &cfg.Server.MongoURI, so.mongoURI)
			override(cmd.Flags(), "database", &cfg.Server.Database, so.database)
			if cfg.Server.Addr == "" {
				cfg.Server.Addr = server.DefaultAddr
			}
			return c.runServe(cmd.Context(), cfg, opts, so.noCache)
		},
	}

	flags.addFlags(cmd)
	flags.addTopologyFlags(cmd)
	cmd.Flags().StringVar(&so.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&so.mongoURI, "mongo-uri", "", "MongoDB connection string (default: in-memory store)")
	cmd.Flags().StringVar(&so.database, "database", store.DefaultDatabase, "MongoDB database name")
	cmd.Flags().BoolVar(&so.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe wires the store, cache and runner and serves until ctx ends.
func (c *CLI) runServe(ctx context.Context, cfg *pipeline.Config, opts pipeline.Options, noCache bool) error {
	st, backend, err := openStore(ctx, cfg.Server)
	if err != nil {
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))

	runner, err := c.newRunner(ctx, cfg.Cache, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if c.Logger.GetLevel() <= log.DebugLevel {
		observability.SetMeshHooks(observability.LogMeshHooks{Logger: c.Logger})
	}

	srv := server.New(server.Config{
		Runner:   runner,
		Store:    st,
		Logger:   c.Logger,
		Defaults: opts,
	})
	printInfo("Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
	printDetail("Store: %s", backend)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// openStore opens MongoDB when a URI is configured and a memory store
// otherwise. It also returns the backend name for display.
func openStore(ctx context.Context, cfg pipeline.ServerConfig) (store.Store, string, error) {
	if cfg.MongoURI == "" {
		return store.NewMemoryStore(), "memory", nil
	}
	st, err := store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.MongoURI, Database: cfg.Database})
	if err != nil {
		return nil, "", fmt.Errorf("connect to MongoDB: %w", err)
	}
	return st, "mongodb", nil
}
