package installer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// TarExtractor unpacks tar.gz archives with the system tar.
type TarExtractor struct {
	command commandFunc
}

// NewTarExtractor returns the tar.gz branch.
func NewTarExtractor() *TarExtractor {
	return new(TarExtractor)
}

// Extract runs `tar -xzf <archive> -C <dest>` in the archive's directory.
func (e *TarExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	dir := filepath.Dir(archivePath)

	dest, err := filepath.Rel(dir, destDir)
	if err != nil {
		dest = destDir
	}

	archive := filepath.Base(archivePath)

	return runInDir(ctx, e.command, dir, archive, "tar", "-xzf", archive, "-C", dest)
}

// ZipExtractor unpacks zip archives with the .NET compression API via PowerShell.
type ZipExtractor struct {
	command commandFunc
}

// NewZipExtractor returns the compressed-zip branch.
func NewZipExtractor() *ZipExtractor {
	return new(ZipExtractor)
}

// Extract calls ZipFile.ExtractToDirectory in the archive's directory.
func (e *ZipExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	dir := filepath.Dir(archivePath)

	dest, err := filepath.Rel(dir, destDir)
	if err != nil {
		dest = destDir
	}

	archive := filepath.Base(archivePath)
	script := fmt.Sprintf(
		"Add-Type -AssemblyName System.IO.Compression.FileSystem; "+
			"[System.IO.Compression.ZipFile]::ExtractToDirectory(%s, %s)",
		powershellQuote(archive), powershellQuote(dest))

	return runInDir(ctx, e.command, dir, archive,
		"powershell", "-NoProfile", "-NonInteractive", "-Command", script)
}

// powershellQuote renders s as a single-quoted PowerShell literal.
func powershellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
