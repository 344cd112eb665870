// Package serverrun wires together the pieces a running Pond process
// needs: the in-memory database, the TCP query server, the optional
// per-site sink, and the admin HTTP surface, and blocks until ctx is
// canceled.
package serverrun

import (
	"context"
	"sync"

	"github.com/pondhq/pond/internal/adminhttp"
	cfgpkg "github.com/pondhq/pond/internal/config"
	"github.com/pondhq/pond/internal/metrics"
	"github.com/pondhq/pond/internal/pond"
	"github.com/pondhq/pond/internal/pondserver"
	"github.com/pondhq/pond/internal/sitesink"
	logpkg "github.com/pondhq/pond/pkg/log"
)

// Options configures a Run invocation. Zero-value fields fall back to
// cfgpkg.Default().
type Options struct {
	Config cfgpkg.Config
}

// Run starts the query server and admin HTTP server and blocks until ctx
// is canceled or one of them fails.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	def := cfgpkg.Default()
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if cfg.AdminAddr == "" {
		cfg.AdminAddr = def.AdminAddr
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = def.Capacity
	}

	level, err := logpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logpkg.InfoLevel
	}
	var formatter logpkg.Formatter = &logpkg.TextFormatter{}
	if cfg.LogFormat == "json" {
		formatter = &logpkg.JSONFormatter{}
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(level),
		logpkg.WithFormatter(formatter),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	logger.Info("starting pond",
		logpkg.String("listen", cfg.ListenAddr),
		logpkg.String("admin", cfg.AdminAddr),
		logpkg.Int("capacity", cfg.Capacity),
		logpkg.String("site_dir", cfg.SiteDir),
	)

	db := pond.NewDatabase(cfg.Capacity)
	counters := &metrics.Counters{}

	var sink pondserver.Sink
	if cfg.SiteDir != "" {
		pool, err := sitesink.NewPool(cfg.SiteDir)
		if err != nil {
			return err
		}
		defer pool.Close()
		sink = pool
	}

	srv := pondserver.New(db, logger, counters, sink)
	admin := adminhttp.New(counters)

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := admin.ListenAndServe(ctx, cfg.AdminAddr); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		srv.Close()
		admin.Close()
		wg.Wait()
		return err
	}

	srv.Close()
	admin.Close()
	wg.Wait()
	return nil
}
