// Package capture holds the in-memory history of requests seen by the relay.
package capture

import (
	"net/http"
	"sort"
	"time"
)

// Header is a single name/value pair. Headers are kept as an ordered slice
// rather than a map so duplicates and wire order survive capture and replay.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Request is an immutable record of one inbound request. It is created once,
// at the moment the relay decides to forward, and never mutated afterwards.
type Request struct {
	Index      uint64    `json:"index"`
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Query      string    `json:"query,omitempty"`
	Headers    []Header  `json:"headers"`
	Body       []byte    `json:"-"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// HeadersFromHTTP flattens an http.Header into an ordered Header slice.
// Go canonicalizes header names but preserves per-name value order; names are
// sorted so the result is deterministic.
func HeadersFromHTTP(h http.Header) []Header {
	if len(h) == 0 {
		return nil
	}
	out := make([]Header, 0, len(h))
	for _, name := range sortedKeys(h) {
		for _, v := range h[name] {
			out = append(out, Header{Name: name, Value: v})
		}
	}
	return out
}

// HTTPHeader rebuilds an http.Header from the ordered slice.
func HTTPHeader(headers []Header) http.Header {
	h := make(http.Header, len(headers))
	for _, hd := range headers {
		h.Add(hd.Name, hd.Value)
	}
	return h
}

// HeaderValue returns the first value for name, or "" when absent.
// Lookup is case-insensitive like http.Header.Get.
func HeaderValue(headers []Header, name string) string {
	canonical := http.CanonicalHeaderKey(name)
	for _, h := range headers {
		if http.CanonicalHeaderKey(h.Name) == canonical {
			return h.Value
		}
	}
	return ""
}

func sortedKeys(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
