// Package config defines the settings used by the bob pipeline and provides
// helpers to load, validate and save them in YAML format.
//
// It also resolves the Managed Download Directory from the platform's
// per-user local data location when no directory is configured.
package config
