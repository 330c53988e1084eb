package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "hotel_detail/internal/adapters/http_server"
	"hotel_detail/internal/adapters/notify"
	"hotel_detail/internal/adapters/observability"
	redisad "hotel_detail/internal/adapters/redis"
	"hotel_detail/internal/app"
	"hotel_detail/internal/domain"
	"hotel_detail/internal/preview"
	"hotel_detail/internal/pricing"
	"hotel_detail/internal/shared"
	mysqlrepo "hotel_detail/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		// reads fall back to MySQL; dedupe falls back to the unique key
		log.Warn().Err(err).Msg("redis ping failed")
	}

	var notifier domain.Notifier
	if cfg.NotifyURL != "" {
		n, err := notify.New(cfg.NotifyURL, cfg.NotifyRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize notifier")
		}
		notifier = n
	}

	pages, err := preview.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse page templates")
	}

	// deps
	repo := mysqlrepo.New(db)
	h := &server.Handlers{
		Content:   app.NewContentService(repo, cache, pages, cfg.CacheTTL),
		Templates: app.NewTemplateService(repo),
		Errors:    app.NewErrorIntakeService(repo, cache, notifier, cfg.ErrorDedupe),
		Publisher: app.NewPublishService(repo, pages, cfg.PublishDir, cfg.PublishWorkers),
		Pages:     pages,
		Prices:    pricing.NewDispatcher(pricing.NewCalculator(), 0),
		Notifier:  notifier,
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	h.Errors.Wait() // pending client-error notifications
	log.Info().Msg("API stopped")
}
