//go:build !integration && !e2e
// +build !integration,!e2e

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/mitm-relay-go/internal/capture"
	"github.com/user/mitm-relay-go/internal/testutil"
)

func newRequestsRouter(store *capture.Store) *gin.Engine {
	r := testutil.NewTestRouter()
	h := NewRequestsHandler(store, testutil.NewTestLogger())
	r.GET("/___requests", h.List)
	r.GET("/___requests/:x", h.Get)
	return r
}

func TestRequests_ListEmpty(t *testing.T) {
	r := newRequestsRouter(capture.NewStore(5))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/___requests", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Requests []RequestSummary `json:"requests"`
		Count    int              `json:"count"`
		Capacity int              `json:"capacity"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Requests)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, 5, resp.Capacity)
}

func TestRequests_ListNewestFirst(t *testing.T) {
	store := capture.NewStore(5)
	store.Record(testutil.SampleRequest("GET", "/first", nil))
	store.Record(testutil.SampleRequest("POST", "/second", []byte("xy")))
	r := newRequestsRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/___requests", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Requests      []RequestSummary `json:"requests"`
		TotalRecorded uint64           `json:"total_recorded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Requests, 2)
	assert.Equal(t, "/second", resp.Requests[0].Path)
	assert.Equal(t, 2, resp.Requests[0].BodySize)
	assert.Equal(t, "/first", resp.Requests[1].Path)
	assert.Equal(t, uint64(2), resp.TotalRecorded)
}

func TestRequests_GetRelative(t *testing.T) {
	store := capture.NewStore(5)
	store.Record(testutil.SampleRequest("GET", "/old", nil))
	store.Record(testutil.SampleRequest("POST", "/new", []byte(`{"a":1}`)))
	r := newRequestsRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/___requests/1", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Request struct {
			Path   string `json:"path"`
			Method string `json:"method"`
		} `json:"request"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/old", resp.Request.Path)
	assert.Equal(t, "GET", resp.Request.Method)
}

func TestRequests_GetBadIndex(t *testing.T) {
	r := newRequestsRouter(capture.NewStore(5))

	for _, x := range []string{"abc", "-1"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/___requests/"+x, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "index %q", x)
	}
}

func TestRequests_GetOutOfRange(t *testing.T) {
	store := capture.NewStore(5)
	store.Record(testutil.SampleRequest("GET", "/only", nil))
	r := newRequestsRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/___requests/3", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no such request")
}
