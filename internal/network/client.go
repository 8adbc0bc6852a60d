// Package network builds the HTTP client shared by the pipeline stages.
package network

import (
	"crypto/tls"
	"errors"
	"net/http"
	"time"
)

// maxRedirects bounds the redirect chain; release downloads hop through a CDN.
const maxRedirects = 10

var errTooManyRedirects = errors.New("too many redirects")

// HTTPClient is the minimal client surface the pipeline depends on.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewClient returns an http.Client with a TLS 1.2+ configuration.
// A zero timeout leaves requests unbounded.
func NewClient(timeout time.Duration) *http.Client {
	//nolint:exhaustruct // Remaining TLS settings keep Go defaults.
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	transport.ForceAttemptHTTP2 = true

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errTooManyRedirects
			}

			return nil
		},
	}
}
