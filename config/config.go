package config

import (
	"os"
	"strconv"
	"time"

	"artfetch/services/preload"
)

// Config is the process configuration, read once at startup from the
// environment.
type Config struct {
	ListenAddr string

	TMDB    TMDBConfig
	Feed    FeedConfig
	Preload PreloadConfig
	Log     LogConfig
}

// TMDBConfig controls the artwork/metadata fallback provider. An empty
// APIKey disables all TMDB lookups; repositories then answer every request
// as a confirmed miss without touching the network.
type TMDBConfig struct {
	APIKey       string
	LogoLanguage string
}

// FeedConfig points at the primary catalog GraphQL endpoint.
type FeedConfig struct {
	Endpoint string
}

// PreloadConfig tunes the startup warm-up pass.
type PreloadConfig struct {
	ResolveTimeout time.Duration
	Sizes          preload.Sizes
}

// LogConfig controls optional file logging with rotation. An empty File
// keeps logging on stderr only.
type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() Config {
	return Config{
		ListenAddr: envString("ARTFETCH_LISTEN_ADDR", ":8087"),
		TMDB: TMDBConfig{
			APIKey:       envString("TMDB_API_KEY", ""),
			LogoLanguage: envString("TMDB_LOGO_LANGUAGE", "en"),
		},
		Feed: FeedConfig{
			Endpoint: envString("FEED_ENDPOINT", "https://graphql.anilist.co"),
		},
		Preload: PreloadConfig{
			ResolveTimeout: envDuration("PRELOAD_RESOLVE_TIMEOUT", 15*time.Second),
			Sizes: preload.Sizes{
				HeroWidth:    envInt("PRELOAD_HERO_WIDTH", 1920),
				HeroHeight:   envInt("PRELOAD_HERO_HEIGHT", 1080),
				PosterWidth:  envInt("PRELOAD_POSTER_WIDTH", 342),
				PosterHeight: envInt("PRELOAD_POSTER_HEIGHT", 513),
				LogoWidth:    envInt("PRELOAD_LOGO_WIDTH", 0),
				LogoHeight:   envInt("PRELOAD_LOGO_HEIGHT", 0),
			},
		},
		Log: LogConfig{
			File:       envString("ARTFETCH_LOG_FILE", ""),
			MaxSizeMB:  envInt("ARTFETCH_LOG_MAX_SIZE_MB", 20),
			MaxBackups: envInt("ARTFETCH_LOG_MAX_BACKUPS", 3),
			MaxAgeDays: envInt("ARTFETCH_LOG_MAX_AGE_DAYS", 14),
		},
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
