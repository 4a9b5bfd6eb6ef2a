package http2ingress

import "net/http"

// DecodedHttpRequest is the well-formed request object the ingress
// state machine hands to the router: immutable headers, a mutable
// lifecycle state, and a handle to the body stream.
type DecodedHttpRequest struct {
	ID            uint64
	CorrelationID string
	StreamID      uint32

	Method   string
	Path     string
	Protocol string // :protocol, set only for extended CONNECT
	Headers  http.Header
	Trailers http.Header

	ContentLength int64 // -1 when absent

	State            StreamState
	TransferredBytes int64
	MaxRequestLength int64

	Body *Body

	responseStarted bool
	closeErr        error
}

func newDecodedRequest(streamID uint32, method, path string, headers http.Header, contentLength int64, maxRequestLength int64, closed bool) *DecodedHttpRequest {
	state := Open
	if closed {
		state = Closed
	}
	return &DecodedHttpRequest{
		ID:               nextRequestID(),
		CorrelationID:    newCorrelationID(),
		StreamID:         streamID,
		Method:           method,
		Path:             path,
		Headers:          headers,
		ContentLength:    contentLength,
		MaxRequestLength: maxRequestLength,
		State:            state,
		Body:             newBody(),
	}
}

// MarkResponseStarted records that the server has begun writing a
// response, after which an oversized body can no longer be answered
// with a clean 413 — the request is aborted instead.
func (r *DecodedHttpRequest) MarkResponseStarted() { r.responseStarted = true }

// close transitions the request to Closed, idempotently: a request
// already Closed or Aborted ignores a second close call.
func (r *DecodedHttpRequest) close(err error) {
	if r.State == Closed || r.State == Aborted {
		return
	}
	r.closeErr = err
	r.State = Closed
	r.Body.abort(err)
}

// abort transitions the request to Aborted and aborts the body stream
// with err, used when a response is already in flight and only the
// read side needs to stop.
func (r *DecodedHttpRequest) abort(err error) {
	if r.State == Closed || r.State == Aborted {
		return
	}
	r.closeErr = err
	r.State = Aborted
	r.Body.abort(err)
}

// Err returns the reason the request closed, if any.
func (r *DecodedHttpRequest) Err() error { return r.closeErr }
