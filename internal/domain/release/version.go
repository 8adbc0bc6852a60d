package release

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Nightly is the token naming the rolling development build.
const Nightly Version = "nightly"

// ErrUnsafeVersion is returned when an identifier could escape the managed directory.
var ErrUnsafeVersion = errors.New("unsafe version identifier")

// tagPattern matches canonical release tags.
var tagPattern = regexp.MustCompile(`^v[0-9]+\.[0-9]+\.[0-9]+$`)

// Version is a canonical version identifier: "nightly" or "vMAJOR.MINOR.PATCH".
// It is used verbatim as a URL path segment and as a file name.
type Version string

// String returns the identifier as is.
func (v Version) String() string {
	return string(v)
}

// IsNightly reports whether v names the nightly build.
func (v Version) IsNightly() bool {
	return v == Nightly
}

// Validate rejects identifiers that are not safe to use as a single path segment.
func (v Version) Validate() error {
	if v == Nightly || tagPattern.MatchString(string(v)) {
		return nil
	}

	if v == "" || strings.ContainsAny(string(v), `/\`) || strings.Contains(string(v), "..") {
		return fmt.Errorf("%w: %q", ErrUnsafeVersion, string(v))
	}

	return fmt.Errorf("%w: %q is neither nightly nor vX.Y.Z", ErrUnsafeVersion, string(v))
}
