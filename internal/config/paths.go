package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// appDirName is the subpath bob owns inside the per-user directories.
const appDirName = "bob"

var errNoDataDir = errors.New("couldn't get data folder")

// DefaultDownloadDir returns the Managed Download Directory: <local data dir>/bob.
func DefaultDownloadDir() (string, error) {
	dir, err := DataLocalDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, appDirName), nil
}

// DataLocalDir returns the platform's standard per-user local data location.
func DataLocalDir() (string, error) {
	return dataLocalDir(runtime.GOOS, os.Getenv, os.UserHomeDir)
}

func dataLocalDir(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	switch goos {
	case "windows":
		if dir := getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}

		return "", fmt.Errorf("%w: %%LOCALAPPDATA%% is not set", errNoDataDir)
	case "darwin":
		homeDir, err := home()
		if err != nil {
			return "", fmt.Errorf("%w: %w", errNoDataDir, err)
		}

		return filepath.Join(homeDir, "Library", "Application Support"), nil
	default:
		if dir := getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
			return dir, nil
		}

		homeDir, err := home()
		if err != nil {
			return "", fmt.Errorf("%w: %w", errNoDataDir, err)
		}

		return filepath.Join(homeDir, ".local", "share"), nil
	}
}
