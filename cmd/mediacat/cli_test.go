package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediacat/internal/library"
)

// testConfig writes a config pointing at a fresh database and returns its path.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := `
[database]
path = "` + filepath.Join(dir, "catalog.db") + `"

[assets]
root = "` + filepath.Join(dir, "rsc") + `"

[log]
level = "error"

[user]
default = "alice"
`
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_VideoLifecycle(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCLI(t, cfg, "video", "add", "/media/Amélie.mkv", "--duration", "7200", "--audio", "fr", "--audio", "en", "--size", "1536")
	require.NoError(t, err)
	assert.Contains(t, out, "Added video 1")

	out, err = runCLI(t, cfg, "video", "ls", "--unassigned")
	require.NoError(t, err)
	assert.Contains(t, out, "/media/Amélie.mkv")
	assert.Contains(t, out, "2:00:00")
	assert.Contains(t, out, "1.5 KB")

	out, err = runCLI(t, cfg, "--json", "video", "ls")
	require.NoError(t, err)
	var videos []library.VideoResult
	require.NoError(t, json.Unmarshal([]byte(out), &videos))
	require.Len(t, videos, 1)
	assert.Equal(t, library.MediaUnassigned, videos[0].MediaType)

	_, err = runCLI(t, cfg, "video", "watch", "1", "600")
	require.NoError(t, err)
	out, err = runCLI(t, cfg, "video", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "10:00 of 2:00:00")
	assert.Regexp(t, `Audio:\s+(fr, en|en, fr)`, out)

	// Another user has no watch state.
	out, err = runCLI(t, cfg, "--user", "bob", "video", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "0:00 of 2:00:00")

	_, err = runCLI(t, cfg, "video", "mv", "1", "/archive/Amélie.mkv")
	require.NoError(t, err)

	out, err = runCLI(t, cfg, "video", "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 videos")

	_, err = runCLI(t, cfg, "video", "show", "1")
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestCLI_Collections(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCLI(t, cfg, "collection", "new", "Favourites", "-d", "Comfort films")
	require.NoError(t, err)
	assert.Contains(t, out, "Created collection 1")

	_, err = runCLI(t, cfg, "collection", "new", "Favourites")
	assert.ErrorIs(t, err, library.ErrDuplicate)

	_, err = runCLI(t, cfg, "--user", "bob", "collection", "new", "Bob's picks")
	require.NoError(t, err)

	out, err = runCLI(t, cfg, "collection", "ls", "--mine")
	require.NoError(t, err)
	assert.Contains(t, out, "Favourites")
	assert.NotContains(t, out, "Bob's picks")

	out, err = runCLI(t, cfg, "collection", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Comfort films")

	_, err = runCLI(t, cfg, "collection", "add-movie", "1", "603")
	assert.ErrorIs(t, err, library.ErrNotFound, "movie is not in the catalog")

	_, err = runCLI(t, cfg, "collection", "rm", "1")
	require.NoError(t, err)
	_, err = runCLI(t, cfg, "collection", "show", "1")
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestCLI_Listings(t *testing.T) {
	cfg := testConfig(t)

	for _, args := range [][]string{
		{"movie", "ls", "--order", "rating"},
		{"tv", "ls", "--order", "title", "--limit", "10"},
		{"person", "ls", "--name", "Reeves"},
	} {
		_, err := runCLI(t, cfg, args...)
		assert.NoError(t, err, "%v", args)
	}

	out, err := runCLI(t, cfg, "movie", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No movies.")

	_, err = runCLI(t, cfg, "video", "ls", "--order", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "choices: added, id, path, watch")

	_, err = runCLI(t, cfg, "movie", "show", "603")
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestCLI_Doctor(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCLI(t, cfg, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "VideosView")
	assert.Contains(t, out, "EpisodeCrewsView")
	assert.Contains(t, out, "alice")
}

func TestCLI_AssignNeedsAPIKey(t *testing.T) {
	cfg := testConfig(t)

	_, err := runCLI(t, cfg, "video", "assign-movie", "1", "603")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tmdb.api_key")
}

func TestCLI_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediacat", "config.toml")

	out, err := runCLI(t, path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = runCLI(t, path, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = runCLI(t, path, "init", "--force")
	require.NoError(t, err)

	// The starter config is usable before TMDB_API_KEY is set.
	out, err = runCLI(t, path, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
}

func TestCLI_Config(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCLI(t, cfg, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, cfg)
	assert.Contains(t, out, "/etc/mediacat/config.toml")

	out, err = runCLI(t, cfg, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `level = "error"`)
	assert.Contains(t, out, `default = "alice"`)
	assert.Contains(t, out, "concurrency = 4", "defaults are filled in")

	out, err = runCLI(t, cfg, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, cfg+": OK")

	dest := filepath.Join(t.TempDir(), "saved.toml")
	_, err = runCLI(t, cfg, "config", "write", dest)
	require.NoError(t, err)
	_, err = runCLI(t, cfg, "config", "write", dest)
	assert.ErrorContains(t, err, "already exists")

	out, err = runCLI(t, dest, "config", "check")
	require.NoError(t, err, "a written config loads back")
	assert.Contains(t, out, "OK")
}

func TestCLI_ConfigCheckReportsProblems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"loud\"\n\n[assets]\nconcurrency = -1\n"), 0o644))

	out, err := runCLI(t, path, "config", "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 problem(s)")
	assert.Contains(t, out, "log.level")
	assert.Contains(t, out, "assets.concurrency")

	out, err = runCLI(t, path, "config", "show")
	require.NoError(t, err, "show works on a config that fails validation")
	assert.Contains(t, out, `level = "loud"`)

	_, err = runCLI(t, path, "doctor")
	assert.ErrorContains(t, err, "log.level", "other commands refuse an invalid config")
}
