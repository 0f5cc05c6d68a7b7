package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediacat", "config.toml")

	err := WriteDefault(path)
	require.NoError(t, err, "WriteDefault failed")

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read written file")

	assert.Contains(t, string(content), "[database]")
	assert.Contains(t, string(content), "[assets]")
	assert.Contains(t, string(content), "${TMDB_API_KEY}")
}

func TestWriteDefault_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "config.toml")

	err := WriteDefault(path)
	require.NoError(t, err, "WriteDefault failed")

	_, err = os.Stat(path)
	assert.False(t, os.IsNotExist(err), "file was not created")
}

func TestConfig_WriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = "/srv/mediacat.db"
	cfg.TMDB.CacheTTL.Duration = 6 * time.Hour

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, cfg.Write(path), "Write failed")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "/srv/mediacat.db")
	assert.Contains(t, string(content), `cache_ttl = "6h0m0s"`)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestConfig_WriteIsOwnerOnly(t *testing.T) {
	cfg := Default()
	cfg.TMDB.APIKey = "secret"
	path := filepath.Join(t.TempDir(), "saved", "config.toml")
	require.NoError(t, cfg.Write(path))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestConfig_RedactedEncode(t *testing.T) {
	cfg := Default()
	cfg.TMDB.APIKey = "secret"

	var buf bytes.Buffer
	require.NoError(t, cfg.Redacted().Encode(&buf))
	assert.NotContains(t, buf.String(), "secret")
	assert.Contains(t, buf.String(), `api_key = "********"`)
	assert.Equal(t, "secret", cfg.TMDB.APIKey, "the original is untouched")

	buf.Reset()
	require.NoError(t, Default().Redacted().Encode(&buf))
	assert.Contains(t, buf.String(), `api_key = ""`)
}
