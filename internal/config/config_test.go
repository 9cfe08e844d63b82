package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.False(t, cfg.Rules.PromoteMidChain)
	require.False(t, cfg.Rules.FlyingKingSlides)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"DAMA_ADDR":                 ":8080",
		"DAMA_ALLOWED_ORIGINS":      "https://a.example, https://b.example,",
		"DAMA_LOG_LEVEL":            "debug",
		"DAMA_LOG_PRETTY":           "true",
		"DAMA_PROMOTE_MID_CHAIN":    "1",
		"DAMA_FLYING_KING_SLIDES":   "TRUE",
		"DAMA_MATCHMAKING_INTERVAL": "250ms",
	}))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.LogPretty)
	require.True(t, cfg.Rules.PromoteMidChain)
	require.True(t, cfg.Rules.FlyingKingSlides)
	require.Equal(t, 250*time.Millisecond, cfg.MatchmakingInterval)
}

func TestFromEnvErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"bad bool":          {"DAMA_PROMOTE_MID_CHAIN": "sometimes"},
		"bad duration":      {"DAMA_MATCHMAKING_INTERVAL": "soon"},
		"negative duration": {"DAMA_MATCHMAKING_INTERVAL": "-1s"},
	}
	for name, env := range tests {
		env := env
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(env))
			require.Error(t, err)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DAMA_ADDR=:9999\nDAMA_FLYING_KING_SLIDES=true\n"), 0o600))
	t.Setenv("DAMA_ADDR", "")
	t.Setenv("DAMA_FLYING_KING_SLIDES", "")
	os.Unsetenv("DAMA_ADDR")
	os.Unsetenv("DAMA_FLYING_KING_SLIDES")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Addr)
	require.True(t, cfg.Rules.FlyingKingSlides)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"https://a.example", "https://b.example"}, SplitList("https://a.example, https://b.example"))
	require.Equal(t, []string{"a", "b"}, SplitList(" a ,, b ,"))
	require.Empty(t, SplitList(" , "))
}
