package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"service-exchangerates/internal"
	rateshttp "service-exchangerates/internal/api/http/rates"
	"service-exchangerates/internal/logger"
	"service-exchangerates/internal/postgresql"
	"service-exchangerates/internal/postgresql/migrations"
	"service-exchangerates/pkg/exchangerates"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("ratesync stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.LogJSON {
		logger.SetJSON()
	}
	logger.SetLevel(cfg.LogLevel)
	log := logger.New("ratesync")

	// DB
	dbCtx, cancelDB := context.WithTimeout(ctx, 5*time.Second)
	defer cancelDB()

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(dbCtx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	if err := migrations.New(pool).Setup(dbCtx); err != nil {
		return fmt.Errorf("ensure tables: %w", err)
	}
	storage := postgresql.NewCurrencyStorage(pool)

	// client
	client := exchangerates.NewWithCredentials(cfg.Credentials,
		exchangerates.WithHTTPClient(&http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}),
		exchangerates.WithLogger(logger.New("exchangerates")),
	)
	syncer := internal.NewRatesSyncer(client, storage, cfg.BaseCCY, cfg.Symbols)

	sync := func(ctx context.Context, reason string) {
		res, err := syncer.SyncLatest(ctx)
		if err != nil {
			ev := log.Error().Err(err).Str("reason", reason)
			var apiErr *exchangerates.Error
			if errors.As(err, &apiErr) {
				ev = ev.Str("kind", apiErr.Kind.String()).Int("status", apiErr.StatusCode)
			}
			ev.Msg("rates sync failed")
			return
		}
		log.Info().
			Str("reason", reason).
			Str("base", res.Base.String()).
			Str("date", res.Date.String()).
			Int("count", res.Count).
			Msg("rates updated")
	}

	sync(ctx, "startup")

	// cron
	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		return fmt.Errorf("load location %s: %w", cfg.Location, err)
	}
	scheduler := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
	)

	// HTTP
	audit := internal.NewStorageAuditLogger(postgresql.NewRequestLogStorage(pool))
	converter := internal.NewRateConverter(storage, cfg.BaseCCY)
	ratesHandler := rateshttp.New(converter, audit, logger.New("http"))

	mux := http.NewServeMux()
	ratesHandler.Register(mux)

	g, gctx := errgroup.WithContext(ctx)

	_, err = scheduler.AddFunc(cfg.CronSpec, func() { sync(gctx, "schedule") })
	if err != nil {
		return fmt.Errorf("add cron func: %w", err)
	}

	g.Go(func() error {
		return runCron(gctx, scheduler)
	})

	g.Go(func() error {
		return serveHTTP(gctx, ":"+cfg.HTTPPort, otelhttp.NewHandler(mux, "ratesync"))
	})

	log.Info().Str("cron", cfg.CronSpec).Str("base", cfg.BaseCCY.String()).Msg("running, stop with Ctrl+C / SIGTERM")
	return g.Wait()
}

func runCron(ctx context.Context, c *cron.Cron) error {
	c.Start()
	defer func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
	}()

	<-ctx.Done()
	return nil
}

func serveHTTP(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	logger.Log.Info().Str("addr", addr).Msg("HTTP listening")
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
