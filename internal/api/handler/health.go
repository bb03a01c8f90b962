package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/mitm-relay-go/internal/capture"
	"github.com/user/mitm-relay-go/internal/forward"
	"github.com/user/mitm-relay-go/internal/version"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	store     *capture.Store
	forwarder *forward.Forwarder
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store *capture.Store, fw *forward.Forwarder) *HealthHandler {
	return &HealthHandler{store: store, forwarder: fw}
}

// Health returns the service health status.
func (h *HealthHandler) Health(c *gin.Context) {
	target, configured := h.forwarder.Target()

	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"version":           version.Short(),
		"target_configured": configured,
		"target":            target,
		"captured":          h.store.Count(),
		"capacity":          h.store.Capacity(),
		"total_recorded":    h.store.TotalRecorded(),
	})
}
