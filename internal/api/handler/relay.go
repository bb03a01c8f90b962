package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/user/mitm-relay-go/internal/capture"
	"github.com/user/mitm-relay-go/internal/forward"
	"github.com/user/mitm-relay-go/internal/ws"
	"go.uber.org/zap"
)

// RelayHandler is the catch-all: every request that does not hit a reserved
// debug route is captured, forwarded to the configured target, and the
// downstream response relayed back verbatim.
type RelayHandler struct {
	store        *capture.Store
	forwarder    *forward.Forwarder
	hub          *ws.Hub
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewRelayHandler creates a new RelayHandler. hub may be nil when no live
// feed is wired (tests).
func NewRelayHandler(
	store *capture.Store,
	fw *forward.Forwarder,
	hub *ws.Hub,
	maxBodyBytes int64,
	logger *zap.Logger,
) *RelayHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 10 << 20
	}
	return &RelayHandler{
		store:        store,
		forwarder:    fw,
		hub:          hub,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Relay handles any method on any non-reserved path.
func (h *RelayHandler) Relay(c *gin.Context) {
	// Browsers probe for this constantly; not worth capturing.
	if c.Request.URL.Path == "/favicon.ico" {
		c.Status(http.StatusNoContent)
		return
	}

	body, err := h.readBody(c)
	if err != nil {
		errorResponse(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	// The capture happens before forwarding and survives forward failures.
	req := &capture.Request{
		ID:         uuid.New().String(),
		Method:     c.Request.Method,
		Path:       c.Request.URL.Path,
		Query:      c.Request.URL.RawQuery,
		Headers:    capture.HeadersFromHTTP(c.Request.Header),
		Body:       body,
		RemoteAddr: c.ClientIP(),
		ReceivedAt: time.Now().UTC(),
	}
	idx := h.store.Record(req)

	if h.hub != nil {
		h.hub.Broadcast("request", NewRequestSummary(req))
	}

	h.logger.Debug("captured request",
		zap.Uint64("index", idx),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("body_bytes", len(body)))

	resp, err := h.forwarder.Forward(c.Request.Context(), req)
	if err != nil {
		h.writeForwardError(c, err)
		return
	}

	// Reproduce the downstream response verbatim: status, headers, body.
	header := c.Writer.Header()
	for _, hd := range resp.Headers {
		header.Add(hd.Name, hd.Value)
	}
	c.Writer.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		c.Writer.Write(resp.Body)
	}
}

func (h *RelayHandler) readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	reader := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	defer reader.Close()
	return io.ReadAll(reader)
}

func (h *RelayHandler) writeForwardError(c *gin.Context, err error) {
	var ferr *forward.Error
	if !errors.As(err, &ferr) {
		h.logger.Error("forward failed", zap.Error(err))
		relayError(c, http.StatusBadGateway, string(forward.ReasonProtocol), err.Error())
		return
	}

	switch ferr.Reason {
	case forward.ReasonUnconfigured:
		relayError(c, http.StatusServiceUnavailable, string(ferr.Reason),
			"No target configured. Set one at /___configure")
	case forward.ReasonTimeout:
		relayError(c, http.StatusGatewayTimeout, string(ferr.Reason), ferr.Error())
	default:
		relayError(c, http.StatusBadGateway, string(ferr.Reason), ferr.Error())
	}
}
