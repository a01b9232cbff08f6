package config // package config loads application configuration from environment variables

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env                string // application environment (e.g. "dev", "prod")
	Port               string // HTTP port to listen on
	DBUser             string // database username
	DBPass             string // database password (optional)
	DBHost             string // database host address
	DBPort             string // database port number
	DBName             string // database name
	JWTSecret          string // secret used to sign JWTs
	AccessTTLMin       int    // access token time‑to‑live in minutes
	RefreshTTLDays     int    // refresh token time‑to‑live in days
	BcryptCost         int    // bcrypt cost for password, PIN and lock secret hashing
	Timezone           string // IANA zone deciding what "today" is
	StreakLookbackDays int    // default missed-days window
	TrendMonthsBack    int    // default word-count trend window
	MigrateOnStart     bool   // apply embedded migrations at startup

	Cache  CacheConfig
	Unlock UnlockLimitConfig
	Queue  QueueConfig
	Redis  RedisConfig
}

// LoadDotEnv populates the environment from path (".env" when empty).  A
// missing file is not an error; variables already set are kept.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	if err := LoadDotEnv(os.Getenv("ENV_FILE")); err != nil {
		log.Fatalf("load env file: %v", err)
	}
	return Config{
		Env:                getenv("APP_ENV", "dev"),
		Port:               must("APP_PORT"),
		DBUser:             must("DB_USER"),
		DBPass:             os.Getenv("DB_PASS"),
		DBHost:             must("DB_HOST"),
		DBPort:             must("DB_PORT"),
		DBName:             must("DB_NAME"),
		JWTSecret:          must("JWT_SECRET"),
		AccessTTLMin:       envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays:     envInt("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:         envInt("BCRYPT_COST", 12),
		Timezone:           getenv("APP_TIMEZONE", "UTC"),
		StreakLookbackDays: envInt("STREAK_LOOKBACK_DAYS", 30),
		TrendMonthsBack:    envInt("TREND_MONTHS_BACK", 12),
		MigrateOnStart:     envBool("DB_MIGRATE_ON_START", true),

		Cache:  LoadCacheConfig(),
		Unlock: LoadUnlockLimitConfig(),
		Queue:  LoadQueueConfig(),
		Redis:  LoadRedisConfig(),
	}
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
