package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/bob/internal/config"
	"github.com/oshokin/bob/internal/service/use"
)

// execute runs rootCmd with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		cfgPath, logLevel = "", ""
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()

	return out.String(), err
}

// TestConfigCommand prints the effective settings and saves them on request.
func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	require.NoError(t, os.WriteFile(path, []byte("download_dir: "+filepath.Join(dir, "bob")+"\n"), 0o600))

	out, err := execute(t, "config", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "release_url: "+config.DefaultReleaseURL)
	require.Contains(t, out, "extraction: native")

	_, err = execute(t, "config", "--config", path, "--save")
	require.NoError(t, err)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "download_host: "+config.DefaultDownloadHost)
}

// TestUseCommand_RequiresVersion surfaces the missing token as a pipeline error.
func TestUseCommand_RequiresVersion(t *testing.T) {
	_, err := execute(t, "use")
	require.ErrorIs(t, err, use.ErrNoVersionSpecified)

	_, err = execute(t, "use", "v0.9.2", "v0.10.0")
	require.Error(t, err)
}

// TestVersionCommand prints build metadata.
func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "bob version:")
}
