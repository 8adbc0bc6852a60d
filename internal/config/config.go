package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/bob/internal/version"
)

// Config holds the settings shared by the pipeline stages.
type Config struct {
	// DownloadDir is the Managed Download Directory holding archives and extracted versions.
	DownloadDir string `yaml:"download_dir"`
	// ReleaseURL is the release-metadata endpoint answering the latest stable tag.
	ReleaseURL string `yaml:"release_url"`
	// DownloadHost is the base URL versioned archives are served from.
	DownloadHost string `yaml:"download_host"`
	// UserAgent is the identifying client header sent with every request.
	UserAgent string `yaml:"user_agent"`
	// Timeout bounds each HTTP request. Zero disables the limit.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of emitted log messages.
	LogLevel string `yaml:"log_level"`
	// Extraction selects how archives are unpacked: native or builtin.
	Extraction string `yaml:"extraction"`
}

const (
	// DefaultConfigFilename is the settings filename inside the user config directory.
	DefaultConfigFilename = "bob-settings.yaml"

	// DefaultReleaseURL answers the latest stable neovim release.
	DefaultReleaseURL = "https://api.github.com/repos/neovim/neovim/releases/latest"

	// DefaultDownloadHost serves the versioned neovim archives.
	DefaultDownloadHost = "https://github.com/neovim/neovim/releases/download"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// ExtractionNative unpacks archives with the platform's own tools.
	ExtractionNative = "native"

	// ExtractionBuiltin unpacks archives in-process.
	ExtractionBuiltin = "builtin"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// DefaultDirPermissions is used for directories bob creates.
	DefaultDirPermissions = 0o755
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeTimeout is returned when the timeout is below zero.
	errNegativeTimeout = errors.New("timeout must not be negative")
	// errUnknownExtraction is returned for an unsupported extraction mode.
	errUnknownExtraction = errors.New("unknown extraction mode")
)

// DefaultPath returns the settings location inside the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}

	return filepath.Join(dir, appDirName, DefaultConfigFilename), nil
}

// Load reads configuration from the provided path and validates it.
// An empty path means the default location, where a missing file yields defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error

		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path, creating its directory.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		var err error

		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	path = filepath.Clean(path)
	if err = os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	// Restrict permissions.
	if err = os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings for formatting errors.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.DownloadDir == "" {
		dir, err := DefaultDownloadDir()
		if err != nil {
			return err
		}

		cfg.DownloadDir = dir
	}

	if cfg.ReleaseURL == "" {
		cfg.ReleaseURL = DefaultReleaseURL
	}

	if cfg.DownloadHost == "" {
		cfg.DownloadHost = DefaultDownloadHost
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = version.UserAgent()
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if cfg.Extraction == "" {
		cfg.Extraction = ExtractionNative
	}

	if cfg.Timeout < 0 {
		return errNegativeTimeout
	}

	if cfg.Extraction != ExtractionNative && cfg.Extraction != ExtractionBuiltin {
		return fmt.Errorf("%w: %q", errUnknownExtraction, cfg.Extraction)
	}

	if _, err := url.ParseRequestURI(cfg.ReleaseURL); err != nil {
		return fmt.Errorf("invalid release URL: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.DownloadHost); err != nil {
		return fmt.Errorf("invalid download host: %w", err)
	}

	return nil
}
