package installer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/bob/internal/config"
	"github.com/oshokin/bob/internal/domain/release"
	"github.com/oshokin/bob/internal/logger"
)

// editorExecutables are the process names of a running neovim.
//
//nolint:gochecknoglobals // Read-only lookup table.
var editorExecutables = map[string]struct{}{
	"nvim":     {},
	"nvim.exe": {},
}

// Installer extracts downloaded artifacts into their version directory.
type Installer struct {
	extractors map[string]Extractor
	processes  func() ([]ps.Process, error)
}

// Option configures an Installer.
type Option func(*Installer)

// WithExtractor replaces the extractor used for archives with the given extension.
func WithExtractor(extension string, extractor Extractor) Option {
	return func(i *Installer) {
		if extractor != nil {
			i.extractors[extension] = extractor
		}
	}
}

// WithBuiltinExtraction routes every archive type through the in-process extractor.
func WithBuiltinExtraction() Option {
	return func(i *Installer) {
		builtin := NewBuiltinExtractor()
		i.extractors[release.ExtensionZip] = builtin
		i.extractors[release.ExtensionTarGz] = builtin
	}
}

// New creates an Installer using the platform tools for extraction.
func New(opts ...Option) *Installer {
	i := &Installer{
		extractors: map[string]Extractor{
			release.ExtensionZip:   NewZipExtractor(),
			release.ExtensionTarGz: NewTarExtractor(),
		},
		processes: ps.Processes,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Install unpacks artifact into artifact.InstallDir(). A directory left by an
// earlier run is replaced. Extraction is attempted once and a failed one is
// not cleaned up.
func (i *Installer) Install(ctx context.Context, artifact release.Artifact) error {
	if err := artifact.Name.Validate(); err != nil {
		return err
	}

	extractor, ok := i.extractors[artifact.Extension]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedArchive, artifact.Extension)
	}

	i.warnIfEditorRunning(ctx)

	target := artifact.InstallDir()

	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("remove previous install %s: %w", target, err)
	}

	if err := os.MkdirAll(target, config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create install dir %s: %w", target, err)
	}

	logger.InfoKV(ctx, "Installing", "archive", artifact.ArchivePath(), "target", target)

	if err := extractor.Extract(ctx, artifact.ArchivePath(), target); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Finished installing", "target", target)

	return nil
}

// warnIfEditorRunning logs a warning when a neovim process is alive.
func (i *Installer) warnIfEditorRunning(ctx context.Context) {
	if i.processes == nil {
		return
	}

	processes, err := i.processes()
	if err != nil {
		logger.DebugKV(ctx, "Could not list processes", "error", err)
		return
	}

	self := os.Getpid()

	for _, process := range processes {
		if process.Pid() == self {
			continue
		}

		if _, found := editorExecutables[strings.ToLower(process.Executable())]; found {
			logger.WarnKV(ctx, "Neovim is running, restart it after the install completes",
				"pid", process.Pid())

			return
		}
	}
}
