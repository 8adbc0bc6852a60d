// Package version exposes build metadata for bob.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. UserAgent derives the header sent to release hosts from them.
package version
