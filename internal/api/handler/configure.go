package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/mitm-relay-go/internal/capture"
	"github.com/user/mitm-relay-go/internal/forward"
	"go.uber.org/zap"
)

// ConfigureHandler serves the target configuration view.
type ConfigureHandler struct {
	forwarder *forward.Forwarder
	store     *capture.Store
	logger    *zap.Logger
}

// NewConfigureHandler creates a new ConfigureHandler.
func NewConfigureHandler(fw *forward.Forwarder, store *capture.Store, logger *zap.Logger) *ConfigureHandler {
	return &ConfigureHandler{forwarder: fw, store: store, logger: logger}
}

// ShowForm handles GET /___configure.
func (h *ConfigureHandler) ShowForm(c *gin.Context) {
	noCache(c)
	c.HTML(http.StatusOK, "configure.tmpl", h.formData("", false))
}

// SaveForm handles POST /___configure. The new target arrives form-encoded
// in the endpoint field; validation failures re-render the form with the
// message instead of failing the request.
func (h *ConfigureHandler) SaveForm(c *gin.Context) {
	noCache(c)

	endpoint := c.PostForm("endpoint")
	if err := h.forwarder.SetTarget(endpoint); err != nil {
		if errors.Is(err, forward.ErrInvalidTarget) {
			h.logger.Warn("rejected target", zap.String("endpoint", endpoint))
			c.HTML(http.StatusBadRequest, "configure.tmpl",
				h.formData("Invalid target: must be an absolute http(s) URL", false))
			return
		}
		c.HTML(http.StatusInternalServerError, "configure.tmpl", h.formData(err.Error(), false))
		return
	}

	c.HTML(http.StatusOK, "configure.tmpl", h.formData("", true))
}

func (h *ConfigureHandler) formData(errMsg string, success bool) gin.H {
	target, _ := h.forwarder.Target()
	return gin.H{
		"Target":   target,
		"Count":    h.store.Count(),
		"Capacity": h.store.Capacity(),
		"Error":    errMsg,
		"Success":  success,
	}
}
