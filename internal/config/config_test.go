package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauthierbraillon/sentiboard/internal/sentiment"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(New(""))

	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, sentiment.Month, cfg.Filter)
	assert.Equal(t, sentiment.DefaultTopPostsBound, cfg.Top)
	assert.Equal(t, sentiment.DefaultMaxTopics, cfg.Topics)
	assert.False(t, cfg.Stopwords)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SENTIBOARD_API_URL", "http://records.test/")
	t.Setenv("SENTIBOARD_FILTER", "week")
	t.Setenv("SENTIBOARD_TOP", "7")
	t.Setenv("SENTIBOARD_CACHE_TTL", "90s")
	t.Setenv("SENTIBOARD_REDIS_ADDR", "localhost:6379")
	t.Setenv("SENTIBOARD_TOKEN", "static-token")

	cfg, err := Load(New(""))

	require.NoError(t, err)
	assert.Equal(t, "http://records.test", cfg.APIURL, "trailing slash is trimmed")
	assert.Equal(t, sentiment.Week, cfg.Filter)
	assert.Equal(t, 7, cfg.Top)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "static-token", cfg.Token)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sentiboard.yaml", "filter: sixMonths\ntopics: 3\nstopwords: true\n")

	cfg, err := Load(New(path))

	require.NoError(t, err)
	assert.Equal(t, sentiment.SixMonths, cfg.Filter)
	assert.Equal(t, 3, cfg.Topics)
	assert.True(t, cfg.Stopwords)
}

func TestLoad_ExplicitMissingConfigFileFails(t *testing.T) {
	_, err := Load(New(filepath.Join(t.TempDir(), "missing.yaml")))

	assert.Error(t, err)
}

func TestLoad_RejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"unknown filter", "SENTIBOARD_FILTER", "decade"},
		{"top too small", "SENTIBOARD_TOP", "0"},
		{"top too large", "SENTIBOARD_TOP", "51"},
		{"topics too small", "SENTIBOARD_TOPICS", "0"},
		{"negative ttl", "SENTIBOARD_CACHE_TTL", "-1s"},
		{"empty cache", "SENTIBOARD_CACHE_SIZE", "0"},
		{"zero timeout", "SENTIBOARD_TIMEOUT", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv(tt.env, tt.val)

			_, err := Load(New(""))

			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "SENTIBOARD_DOTENV_PROBE=loaded\n")
	t.Setenv("SENTIBOARD_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("SENTIBOARD_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "loaded", os.Getenv("SENTIBOARD_DOTENV_PROBE"))
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}
