package release

import "path/filepath"

// Artifact describes a completed download. It is created by the fetcher once
// the body has been fully written and consumed once by the installer.
type Artifact struct {
	// Dir is the directory containing the archive.
	Dir string
	// Extension is the archive suffix, zip or tar.gz.
	Extension string
	// Name is the canonical version used as the archive's base name.
	Name Version
}

// FileName returns the archive file name, {version}.{extension}.
func (a Artifact) FileName() string {
	return a.Name.String() + "." + a.Extension
}

// ArchivePath returns the absolute location of the archive.
func (a Artifact) ArchivePath() string {
	return filepath.Join(a.Dir, a.FileName())
}

// InstallDir returns the directory the archive is extracted into.
func (a Artifact) InstallDir() string {
	return filepath.Join(a.Dir, a.Name.String())
}
