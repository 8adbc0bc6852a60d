package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/coreos/go-semver/semver"

	"github.com/oshokin/bob/internal/domain/release"
	"github.com/oshokin/bob/internal/logger"
	"github.com/oshokin/bob/internal/network"
)

const (
	// StableToken asks for the latest stable release.
	StableToken = "stable"

	// metadataMediaType is the Accept header sent to the release-metadata endpoint.
	metadataMediaType = "application/vnd.github.v3+json"
)

var (
	// ErrInvalidVersionFormat is returned for tokens that are neither keywords nor versions.
	ErrInvalidVersionFormat = errors.New("please provide a proper version string")
	// ErrNetwork is returned when the release metadata cannot be fetched.
	ErrNetwork = errors.New("fetch release metadata")
	// ErrParse is returned when the release metadata body has an unexpected shape.
	ErrParse = errors.New("parse release metadata")
)

// versionPattern matches user-supplied semantic versions with an optional v prefix.
var versionPattern = regexp.MustCompile(`^v?[0-9]+\.[0-9]+\.[0-9]+$`)

// latestRelease is the part of the release metadata the resolver reads.
type latestRelease struct {
	TagName string `json:"tag_name"`
}

// Resolver turns version tokens into canonical identifiers.
type Resolver struct {
	httpClient network.HTTPClient
	releaseURL string
	userAgent  string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for the metadata request.
func WithHTTPClient(client network.HTTPClient) Option {
	return func(r *Resolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithUserAgent sets the identifying client header.
func WithUserAgent(userAgent string) Option {
	return func(r *Resolver) {
		if userAgent != "" {
			r.userAgent = userAgent
		}
	}
}

// New creates a Resolver asking releaseURL for the latest stable tag.
func New(releaseURL string, opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: http.DefaultClient,
		releaseURL: releaseURL,
		userAgent:  "bob",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve maps token to a canonical version. Only "stable" performs I/O.
func (r *Resolver) Resolve(ctx context.Context, token string) (release.Version, error) {
	switch token {
	case release.Nightly.String():
		return release.Nightly, nil
	case StableToken:
		return r.latestStable(ctx)
	}

	if !versionPattern.MatchString(token) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersionFormat, token)
	}

	if !strings.HasPrefix(token, "v") {
		token = "v" + token
	}

	return release.Version(token), nil
}

// latestStable asks the release-metadata endpoint for the newest stable tag.
func (r *Resolver) latestStable(ctx context.Context) (release.Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.releaseURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrNetwork, err)
	}

	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", metadataMediaType)

	logger.DebugKV(ctx, "Requesting latest stable release", "url", r.releaseURL)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: unexpected status %s", ErrNetwork, r.releaseURL, resp.Status)
	}

	var latest latestRelease
	if err = json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		return "", fmt.Errorf("%w: %w", ErrParse, err)
	}

	if latest.TagName == "" {
		return "", fmt.Errorf("%w: tag_name is missing", ErrParse)
	}

	return parseStableTag(latest.TagName)
}

// parseStableTag checks that a tag coming from the network is a plain semantic
// version and returns it in canonical form, e.g. 01.2.3 becomes v1.2.3.
func parseStableTag(tag string) (release.Version, error) {
	parsed, err := semver.NewVersion(strings.TrimPrefix(tag, "v"))
	if err != nil {
		return "", fmt.Errorf("%w: tag %q: %w", release.ErrUnsafeVersion, tag, err)
	}

	version := release.Version("v" + parsed.String())
	if err = version.Validate(); err != nil {
		return "", err
	}

	return version, nil
}
