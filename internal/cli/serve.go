package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkersting/slidegrid/internal/api"
	"github.com/mkersting/slidegrid/pkg/cache"
	"github.com/mkersting/slidegrid/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	redis   string
	mongo   string
	noCache bool
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var o serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		Long: `Run the HTTP API for remote conversions.

Uploads go to POST /api/convert for synchronous conversion or
POST /api/jobs for background jobs. With --redis the result cache is
shared across instances; with --mongo job state survives restarts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &o)
		},
	}

	cmd.Flags().StringVar(&o.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&o.redis, "redis", "", "redis address for a shared cache (host:port)")
	cmd.Flags().StringVar(&o.mongo, "mongo", "", "mongodb uri for persistent job state")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, o *serveOpts) error {
	srvCache, err := c.serveCache(ctx, o)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(srvCache, nil, c.Logger)
	defer runner.Close()

	var store api.Store
	if o.mongo != "" {
		mongoStore, err := api.NewMongoStore(ctx, o.mongo)
		if err != nil {
			return err
		}
		store = mongoStore
		c.Logger.Info("using mongodb job store")
	}
	server := api.NewServer(runner, store, c.Logger)

	httpServer := &http.Server{
		Addr:              o.addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", o.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if store != nil {
		_ = store.Close(shutdownCtx)
	}
	return nil
}

// serveCache selects the cache backend for the server: redis when
// configured, otherwise the local file cache.
func (c *CLI) serveCache(ctx context.Context, o *serveOpts) (cache.Cache, error) {
	if o.noCache {
		return cache.NewNullCache(), nil
	}
	if o.redis != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: o.redis})
		if err != nil {
			return nil, err
		}
		c.Logger.Info("using redis cache", "addr", o.redis)
		return redisCache, nil
	}
	return newCache(false)
}
