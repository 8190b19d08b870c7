package handlers

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hijackableRecorder stands in for the real connection-backed writer the
// websocket upgrade needs underneath the logging wrapper.
type hijackableRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	conn, _ := net.Pipe()
	return conn, bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)), nil
}

func TestLoggingMiddlewarePreservesHijack(t *testing.T) {
	rec := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}

	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok, "wrapped writer must support hijacking for websocket upgrades")
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/events", nil))

	assert.True(t, rec.hijacked)
}

func TestLoggingMiddlewareHijackUnsupportedUnderlying(t *testing.T) {
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		_, _, err := hj.Hijack()
		assert.ErrorIs(t, err, http.ErrNotSupported)
	}))
	// A bare recorder cannot be hijacked; the wrapper must say so
	// instead of panicking.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/events", nil))
}

func TestLoggingMiddlewareUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	u, ok := interface{}(ww).(interface{ Unwrap() http.ResponseWriter })
	require.True(t, ok)
	assert.Equal(t, http.ResponseWriter(rec), u.Unwrap())
}
