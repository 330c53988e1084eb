package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	ErrorDedupe    time.Duration
	NotifyURL      string
	NotifyRPS      int
	PublishDir     string
	PublishWorkers int
}

// Load reads the environment. A .env file in the working directory is
// applied first; variables already set in the environment win.
func Load() Config { return load(".env") }

func load(envFiles ...string) Config {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be read")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotel_detail?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		ErrorDedupe:    time.Duration(atoi("ERROR_DEDUPE_SECONDS", 3600)) * time.Second,
		NotifyURL:      env("NOTIFY_URL", ""),
		NotifyRPS:      atoi("NOTIFY_RPS", 2),
		PublishDir:     env("PUBLISH_DIR", "public/generated"),
		PublishWorkers: atoi("PUBLISH_WORKERS", 4),
	}
	if c.NotifyURL == "" {
		log.Info().Msg("NOTIFY_URL is empty; notifications disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
