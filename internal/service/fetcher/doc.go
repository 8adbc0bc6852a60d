// Package fetcher downloads the platform archive of a canonical version into
// the Managed Download Directory.
//
// The response body is streamed chunk by chunk; every chunk advances a
// progress callback clamped to the declared content length.
package fetcher
