// Package forward sends captured requests on to the configured target and
// hands back the downstream response.
package forward

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/user/mitm-relay-go/internal/capture"
	"go.uber.org/zap"
)

// ErrInvalidTarget is returned by SetTarget for anything that is not a
// well-formed absolute http(s) URL.
var ErrInvalidTarget = errors.New("forward: target must be an absolute http(s) URL")

// Reason classifies why a forward attempt failed.
type Reason string

const (
	ReasonUnconfigured Reason = "unconfigured"
	ReasonTimeout      Reason = "timeout"
	ReasonUnreachable  Reason = "unreachable"
	ReasonProtocol     Reason = "protocol_error"
)

// Error is a failed forward attempt. The original failure is wrapped so the
// caller can surface it; forwards are never retried.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("forward failed: %s", e.Reason)
	}
	return fmt.Sprintf("forward failed (%s): %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Response is the downstream response, relayed verbatim to the original
// caller apart from hop-by-hop header filtering.
type Response struct {
	StatusCode int
	Headers    []capture.Header
	Body       []byte
}

// DefaultTimeout bounds a forward attempt when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// hopByHop lists headers that carry connection-specific transport state and
// must not be replayed to the target (RFC 7230 §6.1), plus Host and
// Content-Length which the outbound request computes itself.
var hopByHop = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Proxy-Connection":    true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
	"Host":                true,
	"Content-Length":      true,
}

// Forwarder holds the single mutable target and issues outbound requests.
// The target lock is never held across network I/O.
type Forwarder struct {
	mu     sync.RWMutex
	target *url.URL

	client *http.Client
	logger *zap.Logger
}

// New creates a Forwarder with no target configured.
func New(timeout time.Duration, logger *zap.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forwarder{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

// SetTarget validates raw and atomically replaces the current target.
// A failed set leaves the previous target unchanged.
func (f *Forwarder) SetTarget(raw string) error {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidTarget
	}

	f.mu.Lock()
	f.target = u
	f.mu.Unlock()

	f.logger.Info("target updated", zap.String("target", u.String()))
	return nil
}

// Target returns the current target URL and whether one is configured.
func (f *Forwarder) Target() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.target == nil {
		return "", false
	}
	return f.target.String(), true
}

// ClearTarget resets the forwarder to the unconfigured state.
func (f *Forwarder) ClearTarget() {
	f.mu.Lock()
	f.target = nil
	f.mu.Unlock()
}

// Forward sends req to the configured target and returns the downstream
// response. Cancelling ctx aborts the in-flight outbound request.
func (f *Forwarder) Forward(ctx context.Context, req *capture.Request) (*Response, error) {
	f.mu.RLock()
	target := f.target
	f.mu.RUnlock()

	if target == nil {
		return nil, &Error{Reason: ReasonUnconfigured}
	}

	outURL := joinTargetPath(target, req.Path)
	if req.Query != "" {
		outURL += "?" + req.Query
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	outReq, err := http.NewRequestWithContext(ctx, req.Method, outURL, body)
	if err != nil {
		return nil, &Error{Reason: ReasonProtocol, Err: err}
	}
	outReq.Header = filterHeaders(capture.HTTPHeader(req.Headers))

	start := time.Now()
	resp, err := f.client.Do(outReq)
	if err != nil {
		ferr := classify(err)
		f.logger.Warn("forward failed",
			zap.String("method", req.Method),
			zap.String("url", outURL),
			zap.String("reason", string(ferr.Reason)),
			zap.Error(err))
		return nil, ferr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Reason: ReasonProtocol, Err: err}
	}

	f.logger.Debug("forwarded",
		zap.String("method", req.Method),
		zap.String("url", outURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    capture.HeadersFromHTTP(filterHeaders(resp.Header)),
		Body:       respBody,
	}, nil
}

// classify maps transport errors onto the forward error taxonomy.
func classify(err error) *Error {
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Reason: ReasonTimeout, Err: err}
	case errors.As(err, &ne) && ne.Timeout():
		return &Error{Reason: ReasonTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Reason: ReasonUnreachable, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Reason: ReasonUnreachable, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// url.Error wraps dial/DNS failures as well as malformed responses.
		var inner *net.OpError
		if errors.As(urlErr.Err, &inner) {
			return &Error{Reason: ReasonUnreachable, Err: err}
		}
	}
	return &Error{Reason: ReasonProtocol, Err: err}
}

// filterHeaders drops hop-by-hop headers, keeping everything else with
// duplicate order intact.
func filterHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		if hopByHop[http.CanonicalHeaderKey(name)] {
			continue
		}
		for _, v := range values {
			out.Add(name, v)
		}
	}
	return out
}

// joinTargetPath glues the target base onto the request path without
// doubling or dropping slashes.
func joinTargetPath(target *url.URL, path string) string {
	base := strings.TrimRight(target.String(), "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
