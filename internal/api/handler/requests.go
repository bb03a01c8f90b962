package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/mitm-relay-go/internal/capture"
	"github.com/user/mitm-relay-go/internal/render"
	"go.uber.org/zap"
)

// RequestSummary is the list-view shape of one capture.
type RequestSummary struct {
	Index      uint64 `json:"index"`
	ID         string `json:"id"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Query      string `json:"query,omitempty"`
	BodySize   int    `json:"body_size"`
	ReceivedAt string `json:"received_at"`
}

// NewRequestSummary builds the summary shape for one capture. It is shared
// by the JSON list endpoint and the websocket feed.
func NewRequestSummary(req *capture.Request) RequestSummary {
	return RequestSummary{
		Index:      req.Index,
		ID:         req.ID,
		Method:     req.Method,
		Path:       req.Path,
		Query:      req.Query,
		BodySize:   len(req.Body),
		ReceivedAt: req.ReceivedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// RequestsHandler exposes the capture history as JSON for tooling.
type RequestsHandler struct {
	store  *capture.Store
	logger *zap.Logger
}

// NewRequestsHandler creates a new RequestsHandler.
func NewRequestsHandler(store *capture.Store, logger *zap.Logger) *RequestsHandler {
	return &RequestsHandler{store: store, logger: logger}
}

// List handles GET /___requests. Entries are ordered newest-first, matching
// the relative indexing of the inspect view.
func (h *RequestsHandler) List(c *gin.Context) {
	snapshot := h.store.Snapshot()

	summaries := make([]RequestSummary, len(snapshot))
	for i, req := range snapshot {
		summaries[i] = NewRequestSummary(req)
	}

	c.JSON(http.StatusOK, gin.H{
		"requests":       summaries,
		"count":          len(summaries),
		"capacity":       h.store.Capacity(),
		"total_recorded": h.store.TotalRecorded(),
	})
}

// Get handles GET /___requests/:x with the same relative indexing as the
// HTML view (0 = most recent).
func (h *RequestsHandler) Get(c *gin.Context) {
	x, err := strconv.Atoi(c.Param("x"))
	if err != nil || x < 0 {
		errorResponse(c, http.StatusBadRequest, "index must be a non-negative integer")
		return
	}

	req, err := h.store.GetRelative(x)
	if err != nil {
		errorResponse(c, http.StatusNotFound, "no such request")
		return
	}

	body := render.Render(req.Body, capture.HeaderValue(req.Headers, "Content-Encoding"))

	c.JSON(http.StatusOK, gin.H{
		"request":   req,
		"body_kind": body.Kind,
		"body":      body.Text,
		"body_size": len(req.Body),
	})
}
