// internal/config/config.go
//
// Environment-driven configuration.
// Load() reads an optional .env file (godotenv), then the process environment.
// Unset or unparsable values fall back to the defaults below.
//
// Environment variables:
//   PORT, LOG_LEVEL, DB_PATH, JWT_SECRET, JWT_EXPIRES_DAYS, COOKIE_NAME,
//   CLIENT_ORIGIN, NODE_ENV, DAILY_SALT, CHALLENGES_FILE, GAME_ROWS,
//   GAME_TTL_HOURS
//
// The board width always follows the target formula's length.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the server and terminal client.
type Config struct {
	Port           string
	LogLevel       string
	DBPath         string
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	AnonCookieName string
	ClientOrigin   string
	Production     bool
	DailySalt      string
	ChallengesFile string
	Rows           int
	GameTTL        time.Duration
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Port:           "5175",
		LogLevel:       "info",
		DBPath:         "./data/nerdle.db",
		JWTSecret:      "dev_secret_change_me",
		JWTExpiresDays: 14,
		CookieName:     "nerdle_token",
		AnonCookieName: "nerdle_anon",
		ClientOrigin:   "http://localhost:5173",
		DailySalt:      "local_dev_salt",
		Rows:           6,
		GameTTL:        24 * time.Hour,
	}
}

// Load reads .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	c := Default()
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTExpiresDays = getEnvInt("JWT_EXPIRES_DAYS", c.JWTExpiresDays)
	c.CookieName = getEnv("COOKIE_NAME", c.CookieName)
	c.ClientOrigin = getEnv("CLIENT_ORIGIN", c.ClientOrigin)
	c.Production = os.Getenv("NODE_ENV") == "production"
	c.DailySalt = getEnv("DAILY_SALT", c.DailySalt)
	c.ChallengesFile = os.Getenv("CHALLENGES_FILE")
	c.Rows = getEnvInt("GAME_ROWS", c.Rows)
	c.GameTTL = time.Duration(getEnvInt("GAME_TTL_HOURS", int(c.GameTTL/time.Hour))) * time.Hour
	return c
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt returns a positive integer from k, or def.
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
