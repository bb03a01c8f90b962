package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/mitm-relay-go/internal/capture"
	"github.com/user/mitm-relay-go/internal/render"
	"go.uber.org/zap"
)

// InspectHandler serves the captured-request views.
type InspectHandler struct {
	store  *capture.Store
	logger *zap.Logger
}

// NewInspectHandler creates a new InspectHandler.
func NewInspectHandler(store *capture.Store, logger *zap.Logger) *InspectHandler {
	return &InspectHandler{store: store, logger: logger}
}

// View handles GET /___view_last/:x where x counts back from the newest
// capture (0 = most recent).
func (h *InspectHandler) View(c *gin.Context) {
	noCache(c)

	count := h.store.Count()
	if count == 0 {
		errorPage(c, http.StatusNotFound, "No requests recorded yet")
		return
	}

	x, err := strconv.Atoi(c.Param("x"))
	if err != nil || x < 0 {
		errorPage(c, http.StatusNotFound,
			fmt.Sprintf("Invalid index %q. Available indices: 0-%d (0 = most recent)", c.Param("x"), count-1))
		return
	}

	req, err := h.store.GetRelative(x)
	if err != nil {
		errorPage(c, http.StatusNotFound,
			fmt.Sprintf("Index %d out of range. Available indices: 0-%d (0 = most recent)", x, count-1))
		return
	}

	body := render.Render(req.Body, capture.HeaderValue(req.Headers, "Content-Encoding"))

	c.HTML(http.StatusOK, "view.tmpl", gin.H{
		"Request":    req,
		"ReceivedAt": req.ReceivedAt.Format(time.RFC3339),
		"BodyKind":   bodyKindLabel(body.Kind),
		"BodyText":   body.Text,
		"Position":   x + 1,
		"Count":      count,
		"HasNewer":   x > 0,
		"NewerIndex": x - 1,
		"HasOlder":   x < count-1,
		"OlderIndex": x + 1,
	})
}

func bodyKindLabel(k render.Kind) string {
	switch k {
	case render.KindJSON:
		return "JSON"
	case render.KindText:
		return "Plain Text"
	case render.KindBinary:
		return "Binary"
	default:
		return "None"
	}
}
