// Package config loads server settings from an optional .env file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	AllowedOrigins      []string
	LogLevel            string
	LogPretty           bool
	MatchmakingInterval time.Duration
	Rules               model.Rules
}

func Default() Config {
	return Config{
		Addr:                ":3000",
		AllowedOrigins:      []string{"http://localhost:5173"},
		LogLevel:            "info",
		MatchmakingInterval: time.Second,
		Rules:               model.DefaultRules(),
	}
}

// Load reads the given env files (".env" when none are named) and then the
// process environment. A missing env file is not an error; variables already
// set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var err error

	if v, ok := lookup("DAMA_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("DAMA_ALLOWED_ORIGINS"); ok && v != "" {
		cfg.AllowedOrigins = SplitList(v)
	}
	if v, ok := lookup("DAMA_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if cfg.LogPretty, err = boolVar(lookup, "DAMA_LOG_PRETTY", cfg.LogPretty); err != nil {
		return Config{}, err
	}
	if cfg.Rules.PromoteMidChain, err = boolVar(lookup, "DAMA_PROMOTE_MID_CHAIN", cfg.Rules.PromoteMidChain); err != nil {
		return Config{}, err
	}
	if cfg.Rules.FlyingKingSlides, err = boolVar(lookup, "DAMA_FLYING_KING_SLIDES", cfg.Rules.FlyingKingSlides); err != nil {
		return Config{}, err
	}
	if v, ok := lookup("DAMA_MATCHMAKING_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("DAMA_MATCHMAKING_INTERVAL: invalid duration %q", v)
		}
		cfg.MatchmakingInterval = d
	}
	return cfg, nil
}

func boolVar(lookup func(string) (string, bool), key string, def bool) (bool, error) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// SplitList splits a comma-separated list, trimming spaces and dropping empty
// entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
