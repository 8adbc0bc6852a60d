package use

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oshokin/bob/internal/config"
	"github.com/oshokin/bob/internal/logger"
	"github.com/oshokin/bob/internal/network"
	"github.com/oshokin/bob/internal/progress"
	"github.com/oshokin/bob/internal/service/fetcher"
	"github.com/oshokin/bob/internal/service/installer"
	"github.com/oshokin/bob/internal/service/resolver"
)

// Pipeline stages reported by PipelineError.
const (
	StageInput   = "input"
	StageConfig  = "config"
	StageResolve = "resolve"
	StageFetch   = "download"
	StageInstall = "install"
)

// ErrNoVersionSpecified is returned when Run is called without a version token.
var ErrNoVersionSpecified = errors.New("no version specified")

// PipelineError wraps the failure of a single pipeline stage.
type PipelineError struct {
	// Stage is the pipeline step that failed, one of the Stage constants.
	Stage string
	// Err is the underlying cause.
	Err error
}

// Error renders the failure as "<stage>: <cause>".
func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Options configures a single `bob use` invocation.
type Options struct {
	// ConfigPath to YAML settings file, the default location is used if empty.
	ConfigPath string

	// Version is the token to install: "stable", "nightly" or a semantic version.
	Version string

	// LogLevel overrides log_level from the settings file when set.
	LogLevel string

	// NoProgress disables the terminal progress bar.
	NoProgress bool
}

// Run resolves, downloads and installs opts.Version, stopping at the first failure.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "bob")

	if opts == nil || opts.Version == "" {
		return &PipelineError{Stage: StageInput, Err: ErrNoVersionSpecified}
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return &PipelineError{Stage: StageConfig, Err: err}
	}

	if err = applyLogLevel(cfg.LogLevel, opts.LogLevel); err != nil {
		return &PipelineError{Stage: StageConfig, Err: err}
	}

	client := network.NewClient(cfg.Timeout)

	res := resolver.New(cfg.ReleaseURL,
		resolver.WithHTTPClient(client),
		resolver.WithUserAgent(cfg.UserAgent))

	version, err := res.Resolve(ctx, opts.Version)
	if err != nil {
		return &PipelineError{Stage: StageResolve, Err: err}
	}

	ctx = logger.WithKV(ctx, "version", version.String())

	bar := progress.New(fmt.Sprintf("Downloading %s", version),
		progress.WithEnabled(!opts.NoProgress && progress.IsInteractive(os.Stderr)))

	fetch := fetcher.New(cfg.DownloadHost, cfg.DownloadDir,
		fetcher.WithHTTPClient(client),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithProgress(bar.Update))

	artifact, err := fetch.Download(ctx, version)
	if err != nil {
		bar.Abort()

		return &PipelineError{Stage: StageFetch, Err: err}
	}

	bar.Finish(fmt.Sprintf("Downloaded version %s to %s", version, artifact.ArchivePath()))

	var installOpts []installer.Option
	if cfg.Extraction == config.ExtractionBuiltin {
		installOpts = append(installOpts, installer.WithBuiltinExtraction())
	}

	if err = installer.New(installOpts...).Install(ctx, artifact); err != nil {
		return &PipelineError{Stage: StageInstall, Err: err}
	}

	logger.InfoKV(ctx, "Neovim installed", "path", artifact.InstallDir())

	return nil
}

// applyLogLevel sets the global level, preferring the flag over the settings file.
func applyLogLevel(fromConfig, fromFlag string) error {
	raw := fromConfig
	if fromFlag != "" {
		raw = fromFlag
	}

	level, ok := logger.ParseLogLevel(raw)
	if !ok {
		return fmt.Errorf("unknown log level %q", raw)
	}

	logger.SetLevel(level)

	return nil
}
