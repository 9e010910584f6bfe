package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"review_dashboard/internal/adapters/connectors"
	server "review_dashboard/internal/adapters/http_server"
	"review_dashboard/internal/adapters/observability"
	redisad "review_dashboard/internal/adapters/redis"
	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
	"review_dashboard/internal/shared"
	mysqlrepo "review_dashboard/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; reads will fall through to MySQL")
	}
	policy := app.AlertPolicy{AlertRatingMax: cfg.AlertRatingMax, AttentionRatingMax: cfg.AttentionRatingMax}

	cs := buildConnectors(cfg)
	sync := app.NewSyncService(cs, repo, cache, policy, cfg.SyncWorkers)
	q := app.NewQueryService(repo, cache, policy, cfg.CacheTTL)
	resp := app.NewResponseService(repo, cache)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Sync: sync, Resp: resp})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

// buildConnectors wires one connector per platform with configured
// credentials; platforms without credentials are skipped.
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
