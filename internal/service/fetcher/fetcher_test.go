package fetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/bob/internal/domain/release"
)

var errTestReset = errors.New("connection reset by peer")

// linux is the platform every test downloads for, independent of the host OS.
//
//nolint:gochecknoglobals // Shared read-only fixture.
var linux = release.ParsePlatform("linux")

// progressRecorder stores every progress callback invocation.
type progressRecorder struct {
	downloaded []int64
	totals     []int64
}

// record is a ProgressFunc.
func (p *progressRecorder) record(downloaded, total int64) {
	p.downloaded = append(p.downloaded, downloaded)
	p.totals = append(p.totals, total)
}

// stubClient answers every request with a canned response.
type stubClient struct {
	response *http.Response
	request  *http.Request
}

// Do records the request and returns the canned response.
func (c *stubClient) Do(req *http.Request) (*http.Response, error) {
	c.request = req

	return c.response, nil
}

// brokenReader yields data and then fails.
type brokenReader struct {
	data []byte
	done bool
}

// Read returns the data once, then errTestReset.
func (r *brokenReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errTestReset
	}

	r.done = true

	return copy(p, r.data), nil
}

// TestDownload_Success streams the archive to {version}.{extension} with monotonic progress.
func TestDownload_Success(t *testing.T) {
	t.Parallel()

	body := bytes.Repeat([]byte("nvim"), 50_000)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0.9.2/nvim-linux64.tar.gz" || r.Header.Get("User-Agent") != "bob-test" {
			http.NotFound(w, r)
			return
		}

		http.ServeContent(w, r, "nvim-linux64.tar.gz", time.Time{}, bytes.NewReader(body))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "bob")
	recorder := new(progressRecorder)

	f := New(server.URL, dir,
		WithPlatform(linux),
		WithUserAgent("bob-test"),
		WithProgress(recorder.record))

	artifact, err := f.Download(context.Background(), "v0.9.2")
	require.NoError(t, err)
	require.Equal(t, release.Artifact{Dir: dir, Extension: "tar.gz", Name: "v0.9.2"}, artifact)

	got, err := os.ReadFile(filepath.Join(dir, "v0.9.2.tar.gz"))
	require.NoError(t, err)
	require.Equal(t, body, got)

	require.NotEmpty(t, recorder.downloaded)
	require.Equal(t, int64(len(body)), recorder.downloaded[len(recorder.downloaded)-1])

	for i := range recorder.downloaded {
		require.Equal(t, int64(len(body)), recorder.totals[i])

		if i > 0 {
			require.GreaterOrEqual(t, recorder.downloaded[i], recorder.downloaded[i-1])
		}
	}
}

// TestDownload_NotFound maps any non-200 status to ErrVersionNotFound and creates no file.
func TestDownload_NotFound(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		dir := filepath.Join(t.TempDir(), "bob")

		_, err := New(server.URL, dir, WithPlatform(linux)).Download(context.Background(), "v99.0.0")
		server.Close()

		require.ErrorIs(t, err, ErrVersionNotFound, status)

		_, statErr := os.Stat(dir)
		require.ErrorIs(t, statErr, os.ErrNotExist)
	}
}

// TestDownload_MissingContentLength fails before any file or directory is created.
func TestDownload_MissingContentLength(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Flushing before the body forces chunked transfer encoding.
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte("chunked body"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "bob")

	_, err := New(server.URL, dir, WithPlatform(linux)).Download(context.Background(), "v0.9.2")
	require.ErrorIs(t, err, ErrMissingContentLength)

	_, statErr := os.Stat(dir)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

// TestDownload_ClampsProgress never reports more than the declared total.
func TestDownload_ClampsProgress(t *testing.T) {
	t.Parallel()

	client := &stubClient{response: &http.Response{
		StatusCode:    http.StatusOK,
		ContentLength: 4,
		Body:          io.NopCloser(strings.NewReader("123456789")),
	}}

	dir := t.TempDir()
	recorder := new(progressRecorder)

	f := New("https://example.invalid/download", dir,
		WithHTTPClient(client),
		WithPlatform(linux),
		WithProgress(recorder.record))

	_, err := f.Download(context.Background(), release.Nightly)
	require.NoError(t, err)
	require.Equal(t, "https://example.invalid/download/nightly/nvim-linux64.tar.gz", client.request.URL.String())

	for _, downloaded := range recorder.downloaded {
		require.LessOrEqual(t, downloaded, int64(4))
	}

	require.Equal(t, int64(4), recorder.downloaded[len(recorder.downloaded)-1])

	got, err := os.ReadFile(filepath.Join(dir, "nightly.tar.gz"))
	require.NoError(t, err)
	require.Equal(t, "123456789", string(got))
}

// TestDownload_StreamError aborts with ErrStream and leaves the partial file.
func TestDownload_StreamError(t *testing.T) {
	t.Parallel()

	client := &stubClient{response: &http.Response{
		StatusCode:    http.StatusOK,
		ContentLength: 100,
		Body:          io.NopCloser(&brokenReader{data: []byte("partial")}),
	}}

	dir := t.TempDir()

	_, err := New("https://example.invalid", dir, WithHTTPClient(client), WithPlatform(linux)).
		Download(context.Background(), "v0.9.2")
	require.ErrorIs(t, err, ErrStream)
	require.ErrorIs(t, err, errTestReset)

	got, err := os.ReadFile(filepath.Join(dir, "v0.9.2.tar.gz"))
	require.NoError(t, err)
	require.Equal(t, "partial", string(got))
}

// TestDownload_TruncatesPreviousArchive overwrites a stale archive from an earlier run.
func TestDownload_TruncatesPreviousArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stale := filepath.Join(dir, "v0.9.2.zip")
	require.NoError(t, os.WriteFile(stale, bytes.Repeat([]byte("x"), 1024), 0o600))

	client := &stubClient{response: &http.Response{
		StatusCode:    http.StatusOK,
		ContentLength: 3,
		Body:          io.NopCloser(strings.NewReader("new")),
	}}

	artifact, err := New("https://example.invalid", dir,
		WithHTTPClient(client),
		WithPlatform(release.ParsePlatform("windows"))).
		Download(context.Background(), "v0.9.2")
	require.NoError(t, err)
	require.Equal(t, stale, artifact.ArchivePath())

	got, err := os.ReadFile(stale)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

// TestDownload_RejectsUnsafeVersion refuses identifiers that would escape the directory.
func TestDownload_RejectsUnsafeVersion(t *testing.T) {
	t.Parallel()

	client := new(stubClient)

	_, err := New("https://example.invalid", t.TempDir(), WithHTTPClient(client)).
		Download(context.Background(), "../../etc")
	require.ErrorIs(t, err, release.ErrUnsafeVersion)
	require.Nil(t, client.request)
}
