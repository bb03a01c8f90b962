// Package testutil provides test helpers shared across the relay's packages.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/user/mitm-relay-go/internal/capture"
	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for testing.
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestRouter creates a Gin router configured for testing.
func NewTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// NewTestContext creates a Gin context for testing.
func NewTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// SampleRequest returns a captured request fixture.
func SampleRequest(method, path string, body []byte) *capture.Request {
	return &capture.Request{
		ID:     uuid.New().String(),
		Method: method,
		Path:   path,
		Headers: []capture.Header{
			{Name: "Content-Type", Value: "application/json"},
			{Name: "User-Agent", Value: "test-client/1.0"},
		},
		Body:       body,
		RemoteAddr: "127.0.0.1",
		ReceivedAt: time.Now().UTC(),
	}
}

// MakeJSONRequest creates an HTTP request with JSON body.
func MakeJSONRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()

	if body == nil {
		return httptest.NewRequest(method, url, nil)
	}
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, url, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// MockDownstreamServer creates a mock downstream server for relay tests.
func MockDownstreamServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
	})

	return server
}

// MockDownstreamResponse returns a handler that responds with the given
// status and JSON body.
func MockDownstreamResponse(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	}
}
