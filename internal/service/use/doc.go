// Package use implements the pipeline behind `bob use`: resolve a version
// token, download the matching archive and install it into the Managed
// Download Directory.
package use
