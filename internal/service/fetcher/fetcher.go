package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/oshokin/bob/internal/config"
	"github.com/oshokin/bob/internal/domain/release"
	"github.com/oshokin/bob/internal/logger"
	"github.com/oshokin/bob/internal/network"
)

// chunkSize is the read buffer used while streaming the body.
const chunkSize = 32 * 1024

var (
	// ErrVersionNotFound is returned when the host has no archive for the version and platform.
	ErrVersionNotFound = errors.New("please provide an existing neovim version")
	// ErrMissingContentLength is returned when the response does not declare its size.
	ErrMissingContentLength = errors.New("response has no content length")
	// ErrStream is returned when reading the response body fails midway.
	ErrStream = errors.New("download interrupted")
	// ErrDownloadDir is returned when the managed directory cannot be created.
	ErrDownloadDir = errors.New("prepare download directory")
	// ErrWriteFile is returned when the local archive cannot be opened or written.
	ErrWriteFile = errors.New("write archive")
)

// ProgressFunc receives the running byte count and the declared total.
type ProgressFunc func(downloaded, total int64)

// Fetcher streams release archives to disk.
type Fetcher struct {
	httpClient  network.HTTPClient
	host        string
	downloadDir string
	userAgent   string
	platform    release.Platform
	progress    ProgressFunc
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for the archive request.
func WithHTTPClient(client network.HTTPClient) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithUserAgent sets the identifying client header.
func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		if userAgent != "" {
			f.userAgent = userAgent
		}
	}
}

// WithPlatform overrides the detected platform.
func WithPlatform(platform release.Platform) Option {
	return func(f *Fetcher) {
		f.platform = platform
	}
}

// WithProgress sets the callback invoked after every written chunk.
func WithProgress(fn ProgressFunc) Option {
	return func(f *Fetcher) {
		f.progress = fn
	}
}

// New creates a Fetcher downloading from host into downloadDir.
func New(host, downloadDir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient:  http.DefaultClient,
		host:        host,
		downloadDir: downloadDir,
		userAgent:   "bob",
		platform:    release.CurrentPlatform(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// URL returns the archive location for version on the fetcher's platform:
// <host>/<version>/nvim-<segment>.<extension>.
func (f *Fetcher) URL(version release.Version) (string, error) {
	return url.JoinPath(f.host, version.String(), f.platform.ArchiveName())
}

// Download fetches the archive of version and writes it to
// <download dir>/<version>.<extension>, truncating any previous file.
// A partially written file is left in place when the stream breaks.
func (f *Fetcher) Download(ctx context.Context, version release.Version) (release.Artifact, error) {
	if err := version.Validate(); err != nil {
		return release.Artifact{}, err
	}

	resp, err := f.request(ctx, version)
	if err != nil {
		return release.Artifact{}, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	total := resp.ContentLength
	if total < 0 {
		return release.Artifact{}, ErrMissingContentLength
	}

	if err = os.MkdirAll(f.downloadDir, config.DefaultDirPermissions); err != nil {
		return release.Artifact{}, fmt.Errorf("%w: %w", ErrDownloadDir, err)
	}

	artifact := release.Artifact{
		Dir:       f.downloadDir,
		Extension: f.platform.Extension,
		Name:      version,
	}

	path := artifact.ArchivePath()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return release.Artifact{}, fmt.Errorf("%w: %w", ErrWriteFile, err)
	}

	written, err := f.stream(resp.Body, file, total)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("%w: %w", ErrWriteFile, closeErr)
	}

	if err != nil {
		logger.WarnKV(ctx, "Download aborted, partial archive left on disk",
			"path", path, "bytes", written, "total", total)

		return release.Artifact{}, err
	}

	logger.InfoKV(ctx, "Archive downloaded", "path", path, "bytes", written)

	return artifact, nil
}

// request issues the GET and maps a non-200 answer to ErrVersionNotFound.
func (f *Fetcher) request(ctx context.Context, version release.Version) (*http.Response, error) {
	downloadURL, err := f.URL(version)
	if err != nil {
		return nil, fmt.Errorf("build download url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	logger.InfoKV(ctx, "Downloading archive", "url", downloadURL)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", downloadURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()

		return nil, fmt.Errorf("%w: %s: %s", ErrVersionNotFound, version, resp.Status)
	}

	return resp, nil
}

// stream copies body into w in arrival order and reports progress clamped to total.
func (f *Fetcher) stream(body io.Reader, w io.Writer, total int64) (int64, error) {
	var (
		buf      = make([]byte, chunkSize)
		received int64
	)

	f.report(0, total)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return received, fmt.Errorf("%w: %w", ErrWriteFile, err)
			}

			received += int64(n)
			f.report(min(received, total), total)
		}

		if errors.Is(readErr, io.EOF) {
			return received, nil
		}

		if readErr != nil {
			return received, fmt.Errorf("%w: %w", ErrStream, readErr)
		}
	}
}

func (f *Fetcher) report(downloaded, total int64) {
	if f.progress != nil {
		f.progress(downloaded, total)
	}
}
