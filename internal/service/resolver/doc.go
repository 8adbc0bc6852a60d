// Package resolver maps a user-supplied version token to a canonical
// release.Version.
//
// "nightly" is returned as is, "stable" is looked up on the release-metadata
// endpoint and anything else must look like a semantic version.
package resolver
