package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dosanma1/forge-sub000/internal/catalog"
	"github.com/dosanma1/forge-sub000/internal/logging"
	"github.com/dosanma1/forge-sub000/internal/web/cache"
	"github.com/dosanma1/forge-sub000/internal/web/server"
	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

type serveOptions struct {
	fixtures string
	addr     string
}

func newServeCommand(g *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve catalog fixtures as a read-only JSON:API",
		Long: `Start an HTTP server answering GET /{type} and GET /{type}/{id} with
server-read documents. Encoded documents are cached in memory or redis
according to the cache section of forge.yaml.`,
		Example: `  forge serve --fixtures catalog.yaml
  FORGE_CACHE_BACKEND=redis forge serve --fixtures catalog.yaml --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.fixtures, "fixtures", "f", "", "YAML fixture file (default: fixtures from forge.yaml)")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default: server.host:server.port)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, g *globalOptions, opts *serveOptions) error {
	cfg, err := g.loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fixtures := opts.fixtures
	if fixtures == "" {
		fixtures = cfg.Fixtures
	}
	store := catalog.NewStore()
	if fixtures != "" {
		if store, err = catalog.LoadFixturesFile(fixtures); err != nil {
			return err
		}
	} else {
		logger.Warn("no fixture file configured, serving an empty catalog")
	}

	reg, err := catalog.NewRegistry()
	if err != nil {
		return err
	}

	backend, err := cache.New(cfg.Cache.Options())
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	docs := cache.NewDocumentCache(backend,
		jsonapi.NewEncoder(reg, jsonapi.WithLogger(logger.Named("encoder"))),
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithLogger(logger.Named("cache")),
	)
	api := server.NewAPI(store, docs, logger.Named("api"))

	srvCfg := server.DefaultConfig(api.Routes())
	srvCfg.Address = cfg.Server.Address()
	if opts.addr != "" {
		srvCfg.Address = opts.addr
	}
	srvCfg.Logger = logger

	srv, err := server.New(srvCfg)
	if err != nil {
		_ = backend.Close()
		return err
	}

	logger.Info("serving catalog",
		zap.String("addr", srvCfg.Address),
		zap.String("cache", cfg.Cache.Backend),
		zap.Int("resources", store.Count()),
	)

	return srv.Run(ctx, cfg.Server.ShutdownTimeout, func(context.Context) error {
		return backend.Close()
	})
}
