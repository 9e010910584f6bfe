package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type PlatformCreds struct {
	GoogleAPIKey  string
	GooglePlaceID string
	YelpAPIKey    string
	YelpBizID     string
	FacebookToken string
	FacebookPage  string
}

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	Platforms        PlatformCreds
	ConnectorTimeout time.Duration
	ConnectorRPS     int
	SyncWorkers      int
	CacheTTL         time.Duration

	AlertRatingMax     int
	AttentionRatingMax int
}

func Load() Config {
	// optional; env vars win over .env values
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		Platforms: PlatformCreds{
			GoogleAPIKey:  env("GOOGLE_PLACES_API_KEY", ""),
			GooglePlaceID: env("GOOGLE_PLACE_ID", ""),
			YelpAPIKey:    env("YELP_API_KEY", ""),
			YelpBizID:     env("YELP_BUSINESS_ID", ""),
			FacebookToken: env("FACEBOOK_ACCESS_TOKEN", ""),
			FacebookPage:  env("FACEBOOK_PAGE_ID", ""),
		},
		ConnectorTimeout:   time.Duration(atoi("CONNECTOR_TIMEOUT_SECONDS", 20)) * time.Second,
		ConnectorRPS:       atoi("CONNECTOR_RPS", 5),
		SyncWorkers:        atoi("SYNC_WORKERS", 3),
		CacheTTL:           time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		AlertRatingMax:     atoi("ALERT_RATING_MAX", 2),
		AttentionRatingMax: atoi("ATTENTION_RATING_MAX", 3),
	}
	if c.Platforms.GoogleAPIKey == "" && c.Platforms.YelpAPIKey == "" && c.Platforms.FacebookToken == "" {
		log.Warn().Msg("no platform credentials configured; sync will have nothing to do")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
