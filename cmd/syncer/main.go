package main

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"review_dashboard/internal/adapters/connectors"
	"review_dashboard/internal/adapters/observability"
	redisad "review_dashboard/internal/adapters/redis"
	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
	"review_dashboard/internal/shared"
	mysqlrepo "review_dashboard/internal/storage/mysql"
)

// One-shot sync across all configured platforms; run it from cron or by hand.
// The API's POST /api/reviews/sync does the same thing in-process.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("workers", cfg.SyncWorkers).
		Msg("syncer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; cache invalidation will be skipped")
	}
	policy := app.AlertPolicy{AlertRatingMax: cfg.AlertRatingMax, AttentionRatingMax: cfg.AttentionRatingMax}

	cs := buildConnectors(cfg)
	if len(cs) == 0 {
		log.Fatal().Msg("no connectors configured")
	}

	sync := app.NewSyncService(cs, repo, cache, policy, cfg.SyncWorkers)
	report, err := sync.Sync(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("sync failed")
	}

	for _, res := range report.Results {
		ev := log.Info()
		if res.Error != "" {
			ev = log.Warn().Str("error", res.Error)
		}
		ev.Str("platform", string(res.Platform)).
			Int("new", res.New).
			Int("updated", res.Updated).
			Int("rejected", res.Rejected).
			Msg("platform result")
	}
	log.Info().Str("state", string(report.State)).Msg("sync finished")

	if report.State == domain.SyncPartialFailure {
		os.Exit(1)
	}
}

func buildConnectors(cfg shared.Config) []domain.Connector {
	var cs []domain.Connector

	if g, err := connectors.NewGoogle("", cfg.Platforms.GoogleAPIKey, cfg.Platforms.GooglePlaceID, cfg.ConnectorTimeout, cfg.ConnectorRPS); err == nil {
		cs = append(cs, g)
	} else {
		log.Warn().Err(err).Msg("google connector disabled")
	}
	if y, err := connectors.NewYelp("", cfg.Platforms.YelpAPIKey, cfg.Platforms.YelpBizID, cfg.ConnectorTimeout, cfg.ConnectorRPS); err == nil {
		cs = append(cs, y)
	} else {
		log.Warn().Err(err).Msg("yelp connector disabled")
	}
	if f, err := connectors.NewFacebook("", cfg.Platforms.FacebookToken, cfg.Platforms.FacebookPage, cfg.ConnectorTimeout, cfg.ConnectorRPS); err == nil {
		cs = append(cs, f)
	} else {
		log.Warn().Err(err).Msg("facebook connector disabled")
	}
	return cs
}
