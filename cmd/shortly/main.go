package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"

	"github.com/go-chi/httplog/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	api "github.com/example/shortly/internal/api/http"
	"github.com/example/shortly/internal/auth"
	"github.com/example/shortly/internal/config"
	pgrepo "github.com/example/shortly/internal/database/postgres"
	"github.com/example/shortly/internal/geoip"
	"github.com/example/shortly/internal/service"
	"github.com/example/shortly/internal/visitor"
	"github.com/example/shortly/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		panic(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	logger := httplog.NewLogger("shortly", httplog.Options{
		JSON:     cfg.Env == config.EnvProd,
		LogLevel: logLevel(cfg.Env),
		Concise:  cfg.Env != config.EnvProd,
	})

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return err
	}

	if err := postgres.RunMigrations("file://migrations", cfg.Postgres.MigrationDSN()); err != nil {
		return err
	}

	linkRepo := pgrepo.NewLinkRepository(db)
	clickRepo := pgrepo.NewClickRepository(db)
	userRepo := pgrepo.NewUserRepository(db)

	var tracker visitor.Tracker = visitor.NewLookbackTracker(clickRepo)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		tracker = visitor.NewRedisTracker(rdb)
	}

	var geo geoip.Provider = geoip.Noop{}
	if cfg.GeoIP.Enabled {
		geo = geoip.NewHTTPProvider(cfg.GeoIP.Endpoint, cfg.GeoIP.Timeout)
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)

	svcs := api.Services{
		Links:     service.NewLinkService(linkRepo, cfg.ShortCodeLength),
		Clicks:    service.NewClickRecorder(clickRepo, geo, tracker, logger.Logger),
		Analytics: service.NewAnalyticsService(clickRepo, linkRepo),
		Auth:      service.NewAuthService(userRepo, tokens),
	}

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        api.NewRouter(logger, tokens, svcs, cfg.BaseURL),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return db.Close()
	})

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	return g.Wait()
}

func logLevel(env string) slog.Level {
	if env == config.EnvProd {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
