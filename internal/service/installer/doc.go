// Package installer unpacks a downloaded release archive into a directory
// named after its version, next to the archive.
//
// Extraction goes through the Extractor capability. The native variants shell
// out to the platform's own tools (PowerShell for zip, tar for tar.gz); the
// builtin variant unpacks in-process.
package installer
