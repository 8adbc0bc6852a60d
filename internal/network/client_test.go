package network

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestNewClient verifies timeout wiring and the redirect limit.
func TestNewClient(t *testing.T) {
	t.Parallel()

	require.Zero(t, NewClient(0).Timeout)
	require.Equal(t, time.Minute, NewClient(time.Minute).Timeout)

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer server.Close()

	resp, err := NewClient(5 * time.Second).Get(server.URL)
	if resp != nil {
		_ = resp.Body.Close()
	}

	require.ErrorIs(t, err, errTooManyRedirects)
	require.Equal(t, int32(maxRedirects), hits.Load())
}
