package metrics

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(mux)

	// Distinct IDs must land in the same series.
	for _, path := range []string{"/orders/1", "/orders/2", "/orders/999"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	series := httpRequestsTotal.WithLabelValues("GET", "GET /orders/{id}", "200")
	assert.Equal(t, 3.0, testutil.ToFloat64(series))
}

func TestMiddlewareUnmatchedPathsShareOneSeries(t *testing.T) {
	handler := Middleware(http.NewServeMux())

	for _, path := range []string{"/nope", "/definitely/nope", "/x9f3a"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	series := httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")
	assert.Equal(t, 3.0, testutil.ToFloat64(series))
}

type hijackableRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	conn, _ := net.Pipe()
	return conn, bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)), nil
}

func TestMiddlewarePreservesHijack(t *testing.T) {
	rec := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok, "recorder must support hijacking for websocket upgrades")
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/events", nil))

	assert.True(t, rec.hijacked)
}
