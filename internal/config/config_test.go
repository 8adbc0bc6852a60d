package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaulting and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Defaults are filled in.
	cfg := &Config{DownloadDir: t.TempDir()}

	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultReleaseURL, cfg.ReleaseURL)
	require.Equal(t, DefaultDownloadHost, cfg.DownloadHost)
	require.Equal(t, ExtractionNative, cfg.Extraction)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
	require.NotEmpty(t, cfg.UserAgent)
	require.Zero(t, cfg.Timeout)

	// Bad extraction mode.
	cfg = &Config{DownloadDir: t.TempDir(), Extraction: "magic"}
	require.ErrorIs(t, Validate(cfg), errUnknownExtraction)

	// Negative timeout.
	cfg = &Config{DownloadDir: t.TempDir(), Timeout: -time.Second}
	require.ErrorIs(t, Validate(cfg), errNegativeTimeout)

	// Bad URL.
	cfg = &Config{DownloadDir: t.TempDir(), DownloadHost: "not a url"}
	require.Error(t, Validate(cfg))

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.yaml")

	cfg := &Config{
		DownloadDir:  filepath.Join(dir, "bob"),
		DownloadHost: "https://mirror.local/neovim",
		Timeout:      30 * time.Second,
		Extraction:   ExtractionBuiltin,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.False(t, info.IsDir())
}

// TestLoad_ExplicitMissingFile asserts that an explicitly named missing file is an error.
func TestLoad_ExplicitMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestDataLocalDir covers the per-platform data directory conventions.
func TestDataLocalDir(t *testing.T) {
	t.Parallel()

	env := map[string]string{"LOCALAPPDATA": `C:\Users\me\AppData\Local`}
	getenv := func(key string) string { return env[key] }
	home := func() (string, error) { return "/home/me", nil }

	dir, err := dataLocalDir("windows", getenv, home)
	require.NoError(t, err)
	require.Equal(t, env["LOCALAPPDATA"], dir)

	dir, err = dataLocalDir("darwin", getenv, home)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/me", "Library", "Application Support"), dir)

	dir, err = dataLocalDir("linux", getenv, home)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/me", ".local", "share"), dir)

	env["XDG_DATA_HOME"] = "/data"
	dir, err = dataLocalDir("linux", getenv, home)
	require.NoError(t, err)
	require.Equal(t, "/data", dir)

	// Relative XDG paths are ignored.
	env["XDG_DATA_HOME"] = "relative"
	dir, err = dataLocalDir("linux", getenv, home)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/me", ".local", "share"), dir)

	noHome := func() (string, error) { return "", errors.New("no home") }
	_, err = dataLocalDir("freebsd", func(string) string { return "" }, noHome)
	require.ErrorIs(t, err, errNoDataDir)

	_, err = dataLocalDir("windows", func(string) string { return "" }, home)
	require.ErrorIs(t, err, errNoDataDir)
}
