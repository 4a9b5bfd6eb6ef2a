package http2ingress

import (
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/http2"

	"github.com/coreway/httpcore/core"
)

var knownMethods = map[string]bool{
	http.MethodGet: true, http.MethodHead: true, http.MethodPost: true,
	http.MethodPut: true, http.MethodDelete: true, http.MethodConnect: true,
	http.MethodOptions: true, http.MethodTrace: true, http.MethodPatch: true,
}

// Hooks are the side effects a Connection needs to perform against the
// transport: emitting an early error response, resetting a stream,
// sending a 100-continue interim response, and tearing the whole
// connection down with GOAWAY. A transport loop built around
// golang.org/x/net/http2.Framer supplies these; tests supply fakes.
type Hooks struct {
	SendError    func(streamID uint32, status int, kind core.Kind, message string)
	SendContinue func(streamID uint32)
	ResetStream  func(streamID uint32, code http2.ErrCode)
	GoAway       func(code http2.ErrCode, reason string)
	WindowUpdate func(streamID uint32, increment int32)
	OnRequest    func(req *DecodedHttpRequest)
	OnPing       func(ack bool)
}

// Connection is the per-connection ingress state machine: the
// stream_id -> DecodedHttpRequest map plus the frame-event handlers
// that populate and drain it. A Connection is only ever touched from
// its owning reactor goroutine; it holds no internal locking.
type Connection struct {
	streams          map[uint32]*DecodedHttpRequest
	maxRequestLength int64
	flow             *FlowController
	hooks            Hooks
}

func NewConnection(maxRequestLength int64, initialWindow int32, hooks Hooks) *Connection {
	c := &Connection{
		streams:          map[uint32]*DecodedHttpRequest{},
		maxRequestLength: maxRequestLength,
		hooks:            hooks,
	}
	c.flow = NewFlowController(initialWindow, func(streamID uint32, increment int32) {
		c.hooks.WindowUpdate(streamID, increment)
	})
	return c
}

// HandleHeaders processes a HEADERS frame for streamID. If the stream
// is new, it validates and constructs a DecodedHttpRequest; if the
// stream already exists, the frame is trailers.
func (c *Connection) HandleHeaders(streamID uint32, header http.Header, endStream bool) {
	if req, ok := c.streams[streamID]; ok {
		c.handleTrailers(req, header, endStream)
		return
	}
	c.handleNewStream(streamID, header, endStream)
}

func (c *Connection) handleNewStream(streamID uint32, header http.Header, endStream bool) {
	method := header.Get(":method")
	if method == "" {
		c.hooks.SendError(streamID, http.StatusBadRequest, core.BadRequest, "missing :method")
		return
	}

	if !knownMethods[method] {
		c.hooks.SendError(streamID, http.StatusMethodNotAllowed, core.MethodNotAllowed, "unknown method")
		return
	}
	if method == http.MethodConnect && header.Get(":protocol") == "" {
		c.hooks.SendError(streamID, http.StatusMethodNotAllowed, core.MethodNotAllowed, "CONNECT without :protocol")
		return
	}

	contentLength := int64(-1)
	if cl := header.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			c.hooks.SendError(streamID, http.StatusBadRequest, core.BadRequest, "invalid content-length")
			return
		}
		contentLength = n
	}

	if expect := header.Get("Expect"); expect != "" {
		if strings.EqualFold(expect, "100-continue") {
			c.hooks.SendContinue(streamID)
			header.Del("Expect")
		} else {
			c.hooks.SendError(streamID, http.StatusExpectationFailed, core.ExpectationFailed, "unsupported expectation")
			return
		}
	}

	req := newDecodedRequest(streamID, method, header.Get(":path"), header, contentLength, c.maxRequestLength, endStream)
	req.Protocol = header.Get(":protocol")
	c.streams[streamID] = req
	c.hooks.OnRequest(req)
}

func (c *Connection) handleTrailers(req *DecodedHttpRequest, trailers http.Header, endStream bool) {
	if req.State == Closed || req.State == Aborted {
		return
	}
	req.Trailers = trailers
	if endStream {
		req.close(nil)
	}
}

// HandleData processes a DATA frame for streamID.
func (c *Connection) HandleData(streamID uint32, data []byte, endStream bool) {
	req, ok := c.streams[streamID]
	if !ok {
		c.hooks.GoAway(http2.ErrCodeProtocol, "data for unknown stream")
		return
	}

	if req.State == Closed || req.State == Aborted {
		c.flow.Consume(streamID, int32(len(data)))
		return
	}

	if len(data) == 0 {
		c.flow.Consume(streamID, 0)
		if endStream {
			req.close(nil)
		}
		return
	}

	req.TransferredBytes += int64(len(data))
	if c.maxRequestLength > 0 && req.TransferredBytes > c.maxRequestLength {
		if !req.responseStarted {
			c.hooks.SendError(streamID, http.StatusRequestEntityTooLarge, core.PayloadTooLarge, "request body too large")
			c.hooks.ResetStream(streamID, http2.ErrCodeCancel)
			req.close(core.New(core.PayloadTooLarge, "content too large"))
		} else {
			req.abort(core.New(core.PayloadTooLarge, "content too large"))
		}
		return
	}

	if err := req.Body.append(data, endStream); err != nil {
		req.close(err)
		c.hooks.GoAway(http2.ErrCodeInternal, "body append failed")
		return
	}

	c.flow.Consume(streamID, int32(len(data)))

	if endStream && req.State == Open {
		req.State = HalfClosed
	}
}

// HandleRSTStream processes an RST_STREAM frame from the peer.
func (c *Connection) HandleRSTStream(streamID uint32) {
	req, ok := c.streams[streamID]
	if !ok {
		return
	}
	req.close(core.New(core.Cancelled, "stream reset"))
	delete(c.streams, streamID)
	c.flow.Forget(streamID)
}

// HandleStreamClosed processes a transport-level stream closure (the
// underlying connection or multiplexer tore the stream down without
// an explicit RST_STREAM).
func (c *Connection) HandleStreamClosed(streamID uint32) {
	req, ok := c.streams[streamID]
	if !ok {
		return
	}
	if req.State != Closed {
		req.close(core.New(core.Cancelled, "closed stream"))
	}
	delete(c.streams, streamID)
	c.flow.Forget(streamID)
}

// FinishResponse is called by the dispatcher once a response has been
// fully written, completing the request's lifecycle and releasing its
// map entry.
func (c *Connection) FinishResponse(streamID uint32) {
	req, ok := c.streams[streamID]
	if !ok {
		return
	}
	req.close(nil)
	delete(c.streams, streamID)
	c.flow.Forget(streamID)
}

// HandlePing processes a PING frame, forwarding to the keep-alive
// manager; a non-ack PING also resets the connection's idle timer in
// the caller.
func (c *Connection) HandlePing(ack bool) {
	if c.hooks.OnPing != nil {
		c.hooks.OnPing(ack)
	}
}

// Lookup returns the request currently tracked for streamID, if any.
func (c *Connection) Lookup(streamID uint32) (*DecodedHttpRequest, bool) {
	req, ok := c.streams[streamID]
	return req, ok
}
