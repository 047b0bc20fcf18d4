package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-match/internal/matching"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, 256, cfg.MaxUploadMB)
	assert.Equal(t, matching.DefaultThreshold, cfg.Matching.Threshold)
	assert.Equal(t, matching.DefaultMinSeparatorIndex, cfg.Matching.MinSeparatorIndex)
	assert.Empty(t, cfg.Matching.VocabularyFile)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOW_ORIGINS", "http://a.local, http://b.local")
	t.Setenv("MATCHING_THRESHOLD", "0.5")
	t.Setenv("MATCHING_MIN_SEPARATOR_INDEX", "4")
	t.Setenv("MATCHING_WORKERS", "2")
	t.Setenv("RATELIMIT_RPS", "0")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowOrigins)
	assert.Equal(t, 0.5, cfg.Matching.Threshold)
	assert.Equal(t, 4, cfg.Matching.MinSeparatorIndex)
	assert.Equal(t, 2, cfg.Matching.Workers)
	assert.Zero(t, cfg.RateLimit.RPS)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "supplier-match.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\nmatching:\n  threshold: 0.6\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 0.6, cfg.Matching.Threshold)

	t.Run("env beats file", func(t *testing.T) {
		t.Setenv("MATCHING_THRESHOLD", "0.7")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 0.7, cfg.Matching.Threshold)
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"threshold above one", map[string]string{"MATCHING_THRESHOLD": "1.5"}},
		{"negative threshold", map[string]string{"MATCHING_THRESHOLD": "-0.1"}},
		{"zero port", map[string]string{"PORT": "0"}},
		{"negative rps", map[string]string{"RATELIMIT_RPS": "-1"}},
		{"negative workers", map[string]string{"MATCHING_WORKERS": "-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfig_Matcher(t *testing.T) {
	cfg := Config{Matching: MatchingConfig{Threshold: 0.5, MinSeparatorIndex: matching.DefaultMinSeparatorIndex}}
	m, err := cfg.Matcher()
	require.NoError(t, err)
	assert.Equal(t, 0.5, m.Threshold())
	assert.Equal(t, "flooring", m.Tokenizer().Vocabulary().Name)

	t.Run("custom vocabulary", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "apparel.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: apparel\nsuppress: [nike]\nstop_words: [the]\n"), 0o644))
		cfg.Matching.VocabularyFile = path
		m, err := cfg.Matcher()
		require.NoError(t, err)
		assert.Equal(t, []string{"shoe"}, m.Tokenizer().Tokenize("The Nike Shoe").Sorted())
	})

	t.Run("missing vocabulary", func(t *testing.T) {
		cfg.Matching.VocabularyFile = filepath.Join(t.TempDir(), "nope.yaml")
		_, err := cfg.Matcher()
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}
