// Package release contains the core domain types of the install pipeline.
//
// It defines Version (the canonical version identifier), Platform (the
// host segment and archive suffix of a target OS) and Artifact (the
// descriptor of a completed download handed from the fetcher to the
// installer).
package release
