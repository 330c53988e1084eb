package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_detail/internal/adapters/observability"
	"hotel_detail/internal/app"
	"hotel_detail/internal/preview"
	"hotel_detail/internal/shared"
	mysqlrepo "hotel_detail/internal/storage/mysql"
)

// publisher renders every stored hotel into PUBLISH_DIR as hotel-{id}.html.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("dir", cfg.PublishDir).
		Int("workers", cfg.PublishWorkers).
		Msg("publisher starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	pages, err := preview.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse page templates")
	}

	pub := app.NewPublishService(mysqlrepo.New(db), pages, cfg.PublishDir, cfg.PublishWorkers)
	rep, err := pub.PublishAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Int("published", rep.Published).Msg("publish aborted")
	}
	log.Info().
		Int("published", rep.Published).
		Int("failed", rep.Failed).
		Msg("publish completed")
}
