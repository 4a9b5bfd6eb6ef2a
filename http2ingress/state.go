// Package http2ingress implements the HTTP/2 request ingress state
// machine: per-connection bookkeeping that turns HEADERS/DATA/
// RST_STREAM/PING frame events into well-formed DecodedHttpRequest
// objects (or early error responses) for the router. It is deliberately
// decoupled from any particular transport loop — callers feed it
// decoded frame events (method/header maps, payload slices, stream
// ids) rather than raw wire bytes, which is what keeps it unit
// testable without a live socket.
package http2ingress

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// StreamState mirrors the request lifecycle a DecodedHttpRequest moves
// through: Open while headers/body are still arriving, HalfClosed once
// the client side has signaled end_of_stream but a response is still
// in flight, Aborted when the server gave up early (oversized body
// after a response started), Closed once fully done.
type StreamState int

const (
	Open StreamState = iota
	HalfClosed
	Aborted
	Closed
)

func (s StreamState) String() string {
	switch s {
	case Open:
		return "open"
	case HalfClosed:
		return "half-closed"
	case Aborted:
		return "aborted"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// requestIDCounter allocates the monotonically increasing request id
// used for stream ordering and cache/router diagnostics, across the
// whole process rather than per connection.
var requestIDCounter uint64

func nextRequestID() uint64 { return atomic.AddUint64(&requestIDCounter, 1) }

// newCorrelationID mints an opaque id for cross-system log
// correlation (access logs, upstream trace headers) — unlike the
// monotonic request id, it carries no ordering guarantee and must
// stay unique across restarts.
func newCorrelationID() string { return uuid.NewString() }
