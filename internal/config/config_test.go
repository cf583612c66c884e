package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	return dir
}

func writeRaw(t *testing.T, home, content string) {
	t.Helper()
	cfgDir := filepath.Join(home, ".spilltag")
	require.NoError(t, os.MkdirAll(cfgDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config"), []byte(content), 0600))
}

func TestSaveConfigCreatesDirectories(t *testing.T) {
	withHome(t)

	cfg := Config{ServerURL: "http://gallery", APIKey: "test-key"}
	require.NoError(t, cfg.Save())

	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadConfigNonExistent(t *testing.T) {
	withHome(t)

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveLoadRoundtripWithAllFields(t *testing.T) {
	withHome(t)

	original := Config{
		ServerURL:    "https://photos.example.org",
		APIKey:       "tok_verylongtoken12345",
		Username:     "ada",
		LogLevel:     "debug",
		DrainSeconds: 3,
	}
	require.NoError(t, original.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, original, *loaded)
	assert.Equal(t, 3*time.Second, loaded.DrainTimeout())
}

func TestLoadTrimsTrailingSlashFromServerURL(t *testing.T) {
	home := withHome(t)
	writeRaw(t, home, "server_url: http://gallery/\napi_key: k\n")

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://gallery", loaded.ServerURL)
}

func TestSaveConfigOverwritesExisting(t *testing.T) {
	withHome(t)

	require.NoError(t, (&Config{ServerURL: "http://a", APIKey: "key1"}).Save())
	require.NoError(t, (&Config{ServerURL: "http://a", APIKey: "key2"}).Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "key2", loaded.APIKey)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	home := withHome(t)
	writeRaw(t, home, "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	home := withHome(t)
	writeRaw(t, home, "invalid: yaml: content:")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadConfigMissingAPIKey(t *testing.T) {
	home := withHome(t)
	writeRaw(t, home, "server_url: http://gallery\n")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoadConfigMissingServerURL(t *testing.T) {
	home := withHome(t)
	writeRaw(t, home, "api_key: key123\n")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server_url")
}

func TestConfigPermissionsStrictlyEnforced(t *testing.T) {
	withHome(t)

	require.NoError(t, (&Config{ServerURL: "http://a", APIKey: "secret"}).Save())
	require.NoError(t, os.Chmod(Path(), 0644))

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")
}

func TestDrainTimeoutDefault(t *testing.T) {
	var nilCfg *Config
	assert.Equal(t, DefaultDrainTimeout, nilCfg.DrainTimeout())
	assert.Equal(t, DefaultDrainTimeout, (&Config{}).DrainTimeout())
}

func TestPathsLiveUnderStateDir(t *testing.T) {
	assert.Contains(t, Path(), ".spilltag")
	assert.Contains(t, LogPath(), filepath.Join(".spilltag", "spilltag.log"))
}
