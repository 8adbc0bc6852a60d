package installer

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/oshokin/bob/internal/config"
	"github.com/oshokin/bob/internal/domain/release"
)

// maxLinkTarget bounds the size of a symlink target read from a zip entry.
const maxLinkTarget = 4096

var (
	// errUnsafeEntry is returned for archive entries that would land outside destDir.
	errUnsafeEntry = errors.New("archive entry escapes destination")
	// errUnsupportedEntry is returned for entry types the extractor cannot create.
	errUnsupportedEntry = errors.New("unsupported archive entry")
)

// BuiltinExtractor unpacks zip and tar.gz archives in-process.
type BuiltinExtractor struct{}

// NewBuiltinExtractor returns the in-process extractor.
func NewBuiltinExtractor() *BuiltinExtractor {
	return new(BuiltinExtractor)
}

// Extract picks the format from the archive suffix.
func (e *BuiltinExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	var err error

	switch {
	case strings.HasSuffix(archivePath, "."+release.ExtensionTarGz):
		err = extractTarGz(ctx, archivePath, destDir)
	case strings.HasSuffix(archivePath, "."+release.ExtensionZip):
		err = extractZip(ctx, archivePath, destDir)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(archivePath))
	}

	if err != nil {
		return &ExtractionError{Archive: filepath.Base(archivePath), ExitCode: -1, Err: err}
	}

	return nil
}

func extractTarGz(ctx context.Context, archivePath, destDir string) error {
	file, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("gzip reader: %w", err)
	}

	defer func() {
		_ = gz.Close()
	}()

	tr := tar.NewReader(gz)

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}

		target, err := entryPath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(target, config.DefaultDirPermissions); err != nil {
				return fmt.Errorf("mkdir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err = writeFile(target, tr, header.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err = writeSymlink(destDir, target, header.Linkname); err != nil {
				return err
			}
		case tar.TypeXGlobalHeader:
			continue
		case tar.TypeLink:
			if err = writeHardLink(destDir, target, header.Linkname); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s (type %c)", errUnsupportedEntry, header.Name, header.Typeflag)
		}
	}
}

func extractZip(ctx context.Context, archivePath, destDir string) error {
	reader, err := zip.OpenReader(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = reader.Close()
	}()

	for _, entry := range reader.File {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		target, err := entryPath(destDir, entry.Name)
		if err != nil {
			return err
		}

		if entry.FileInfo().IsDir() {
			if err = os.MkdirAll(target, config.DefaultDirPermissions); err != nil {
				return fmt.Errorf("mkdir %s: %w", target, err)
			}

			continue
		}

		if entry.Mode()&os.ModeSymlink != 0 {
			if err = extractZipSymlink(destDir, entry, target); err != nil {
				return err
			}

			continue
		}

		if err = extractZipEntry(entry, target); err != nil {
			return err
		}
	}

	return nil
}

func extractZipEntry(entry *zip.File, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", entry.Name, err)
	}

	defer func() {
		_ = rc.Close()
	}()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	return writeFile(target, rc, mode)
}

// extractZipSymlink creates the link stored in entry, whose content is the link target.
func extractZipSymlink(destDir string, entry *zip.File, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", entry.Name, err)
	}

	defer func() {
		_ = rc.Close()
	}()

	linkname, err := io.ReadAll(io.LimitReader(rc, maxLinkTarget))
	if err != nil {
		return fmt.Errorf("read %s: %w", entry.Name, err)
	}

	return writeSymlink(destDir, target, string(linkname))
}

// entryPath joins name onto destDir and rejects results outside destDir.
func entryPath(destDir, name string) (string, error) {
	root := filepath.Clean(destDir)
	target := filepath.Join(root, filepath.FromSlash(name))

	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", errUnsafeEntry, name)
	}

	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("mkdir for %s: %w", target, err)
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	if _, err = io.Copy(out, r); err != nil {
		_ = out.Close()

		return fmt.Errorf("write %s: %w", target, err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}

	return nil
}

// writeSymlink creates a link whose target stays inside destDir.
func writeSymlink(destDir, target, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(target), linkname)
	}

	if _, err := entryPath(destDir, mustRel(destDir, resolved)); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("mkdir for %s: %w", target, err)
	}

	if err := os.Symlink(linkname, target); err != nil {
		return fmt.Errorf("symlink %s: %w", target, err)
	}

	return nil
}

// writeHardLink links target to linkname, an archive path that must stay inside destDir.
func writeHardLink(destDir, target, linkname string) error {
	source, err := entryPath(destDir, linkname)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(target), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("mkdir for %s: %w", target, err)
	}

	if err = os.Link(source, target); err != nil {
		return fmt.Errorf("link %s: %w", target, err)
	}

	return nil
}

// mustRel returns path relative to root, or path itself when no relation exists.
func mustRel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}

	return rel
}
