// Command alertqueued serves the price-alert queue build endpoints. It is
// meant to be triggered by a daily scheduler hitting POST /queue/build;
// POST /queue/rebuild is the manual recovery path.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dealwatch/dealwatch/modules/alertqueue"
	"github.com/dealwatch/dealwatch/pkg/config"
	"github.com/dealwatch/dealwatch/pkg/httpserver"
	"github.com/dealwatch/dealwatch/pkg/logger"
	"github.com/dealwatch/dealwatch/pkg/pg"
)

type appConfig struct {
	LogLevel  slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat logger.Format `env:"LOG_FORMAT" envDefault:"json"`

	DB    pg.Config
	HTTP  httpserver.Config
	Queue alertqueue.Config
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithLevel(cfg.LogLevel),
		logger.WithFormat(cfg.LogFormat),
		logger.WithService("alertqueued"),
	)
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.DB, log); err != nil {
		return err
	}

	store, err := alertqueue.NewPGStore(pool)
	if err != nil {
		return err
	}
	registry, err := alertqueue.NewPGRegistry(pool)
	if err != nil {
		return err
	}

	builderOpts := []alertqueue.BuilderOption{alertqueue.WithLogger(log)}
	if cfg.Queue.LenientCleanup {
		builderOpts = append(builderOpts, alertqueue.WithLenientCleanup())
	}
	builder, err := alertqueue.NewBuilder(store, registry, builderOpts...)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", healthHandler(pg.Healthcheck(pool)))
	r.Mount("/queue", alertqueue.Router(builder, log))

	return httpserver.New(cfg.HTTP, log).Run(ctx, r)
}

func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
