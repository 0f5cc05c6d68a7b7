package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "failed to write test config")
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `
[database]
path = "/var/lib/mediacat/catalog.db"

[assets]
root = "/var/lib/mediacat/rsc"
concurrency = 8

[tmdb]
api_key = "abc123"
language = "fr-FR"
cache_ttl = "90m"

[log]
level = "debug"
file = "/var/log/mediacat.log"

[user]
default = "alice"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/mediacat/catalog.db", cfg.Database.Path)
	assert.Equal(t, "/var/lib/mediacat/rsc", cfg.Assets.Root)
	assert.Equal(t, 8, cfg.Assets.Concurrency)
	assert.Equal(t, "abc123", cfg.TMDB.APIKey)
	assert.Equal(t, "fr-FR", cfg.TMDB.Language)
	assert.Equal(t, 90*time.Minute, cfg.TMDB.CacheTTL.Duration)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/log/mediacat.log", cfg.Log.File)
	assert.Equal(t, "alice", cfg.User.Default)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[database]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "./data/mediacat.db" {
		t.Errorf("expected default database path, got %s", cfg.Database.Path)
	}
	if cfg.Assets.Concurrency != 4 {
		t.Errorf("expected default concurrency 4, got %d", cfg.Assets.Concurrency)
	}
	if cfg.TMDB.CacheTTL.Duration != 24*time.Hour {
		t.Errorf("expected default cache ttl 24h, got %s", cfg.TMDB.CacheTTL)
	}
	if cfg.User.Default != "default" {
		t.Errorf("expected default user, got %s", cfg.User.Default)
	}
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingEnvVar(t *testing.T) {
	os.Unsetenv("MEDIACAT_MISSING_DB")
	path := writeConfig(t, `
[database]
path = "${MEDIACAT_MISSING_DB}"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing env var")
	}

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Path)
	assert.Equal(t, []UnsetVar{{Name: "MEDIACAT_MISSING_DB", Key: "database.path"}}, cfgErr.Unset)
	assert.Equal(t, []string{"database.path"}, cfgErr.Keys())
}

func TestLoad_UnsetAPIKeyDisablesScraping(t *testing.T) {
	os.Unsetenv("MEDIACAT_MISSING_TMDB")
	cfg, err := Load(writeConfig(t, `
[tmdb]
api_key = "${MEDIACAT_MISSING_TMDB}"
`))
	require.NoError(t, err)
	assert.Empty(t, cfg.TMDB.APIKey)
}

func TestLoad_RequiredAPIKey(t *testing.T) {
	os.Unsetenv("MEDIACAT_MISSING_TMDB")
	_, err := Load(writeConfig(t, `
[tmdb]
api_key = "${MEDIACAT_MISSING_TMDB:?get one at themoviedb.org}"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tmdb.api_key: ${MEDIACAT_MISSING_TMDB} is not set (get one at themoviedb.org)")
}

func TestLoad_ValidationError(t *testing.T) {
	_, err := Load(writeConfig(t, `
[log]
level = "verbose"
`))
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "log.level") {
		t.Errorf("expected log.level in error, got %v", err)
	}

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, cfgErr.Unset)
	assert.Equal(t, []string{"log.level"}, cfgErr.Keys())
}

func TestLoad_BadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, `
[tmdb]
cache_ttl = "a day"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoad_NoFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoadWithoutValidation(t *testing.T) {
	cfg, err := LoadWithoutValidation(writeConfig(t, `
[assets]
concurrency = -1
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assets.Concurrency != -1 {
		t.Errorf("expected concurrency -1, got %d", cfg.Assets.Concurrency)
	}
}

func TestLoad_EnvVarDefault(t *testing.T) {
	os.Unsetenv("MEDIACAT_OPTIONAL_USER")
	cfg, err := Load(writeConfig(t, `
[user]
default = "${MEDIACAT_OPTIONAL_USER:-guest}"
`))
	require.NoError(t, err)
	assert.Equal(t, "guest", cfg.User.Default)
}

func TestFullWorkflow_WithoutAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(path))
	t.Setenv("TMDB_API_KEY", "")
	os.Unsetenv("TMDB_API_KEY")

	cfg, err := Load(path)
	require.NoError(t, err, "the starter config loads before a TMDB key is set")
	assert.Empty(t, cfg.TMDB.APIKey)
}

func TestFullWorkflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediacat", "config.toml")
	require.NoError(t, WriteDefault(path))

	t.Setenv("TMDB_API_KEY", "test-tmdb-key")
	t.Setenv("USER", "carol")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-tmdb-key", cfg.TMDB.APIKey)
	assert.Equal(t, "carol", cfg.User.Default)
	assert.Equal(t, "https://image.tmdb.org/t/p/original", cfg.Assets.ImageBaseURL)
}
