package http2ingress

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/net/http2"

	"github.com/coreway/httpcore/core"
)

type hookRecorder struct {
	errors     []string
	resets     []http2.ErrCode
	goAways    []http2.ErrCode
	continues  int
	requests   []*DecodedHttpRequest
	windowUpds []int32
}

func newRecorder() (*hookRecorder, Hooks) {
	rec := &hookRecorder{}
	hooks := Hooks{
		SendError: func(streamID uint32, status int, kind core.Kind, message string) {
			rec.errors = append(rec.errors, message)
		},
		SendContinue: func(streamID uint32) { rec.continues++ },
		ResetStream:  func(streamID uint32, code http2.ErrCode) { rec.resets = append(rec.resets, code) },
		GoAway:       func(code http2.ErrCode, reason string) { rec.goAways = append(rec.goAways, code) },
		WindowUpdate: func(streamID uint32, increment int32) { rec.windowUpds = append(rec.windowUpds, increment) },
		OnRequest:    func(req *DecodedHttpRequest) { rec.requests = append(rec.requests, req) },
	}
	return rec, hooks
}

func TestMissingMethodRejectedWith400(t *testing.T) {
	rec, hooks := newRecorder()
	c := NewConnection(0, 65535, hooks)

	c.HandleHeaders(1, http.Header{":path": {"/x"}}, false)

	require.Len(t, rec.errors, 1)
	assert.Empty(t, rec.requests)
}

func TestConnectWithoutProtocolRejectedWith405(t *testing.T) {
	rec, hooks := newRecorder()
	c := NewConnection(0, 65535, hooks)

	c.HandleHeaders(1, http.Header{":method": {"CONNECT"}, ":path": {"/x"}}, false)

	require.Len(t, rec.errors, 1)
	assert.Empty(t, rec.requests)
}

func TestInvalidContentLengthRejected(t *testing.T) {
	rec, hooks := newRecorder()
	c := NewConnection(0, 65535, hooks)

	c.HandleHeaders(1, http.Header{":method": {"POST"}, ":path": {"/x"}, "Content-Length": {"nope"}}, false)

	require.Len(t, rec.errors, 1)
}

func TestExpect100ContinueEmitsInterimAndStripsHeader(t *testing.T) {
	rec, hooks := newRecorder()
	c := NewConnection(0, 65535, hooks)

	header := http.Header{":method": {"POST"}, ":path": {"/x"}, "Expect": {"100-continue"}}
	c.HandleHeaders(1, header, false)

	assert.Equal(t, 1, rec.continues)
	assert.Empty(t, header.Get("Expect"))
	require.Len(t, rec.requests, 1)
}

func TestUnsupportedExpectationRejected(t *testing.T) {
	rec, hooks := newRecorder()
	c := NewConnection(0, 65535, hooks)

	c.HandleHeaders(1, http.Header{":method": {"GET"}, ":path": {"/x"}, "Expect": {"something-else"}}, false)

	require.Len(t, rec.errors, 1)
}

func TestOversizedBodyBeforeResponseSends413AndResets(t *testing.T) {
	rec, hooks := newRecorder()
	c := NewConnection(10, 65535, hooks)

	c.HandleHeaders(1, http.Header{":method": {"POST"}, ":path": {"/x"}}, false)
	require.Len(t, rec.requests, 1)

	c.HandleData(1, make([]byte, 20), false)

	require.Len(t, rec.errors, 1)
	require.Len(t, rec.resets, 1)
	assert.Equal(t, http2.ErrCodeCancel, rec.resets[0])

	req, ok := c.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, Closed, req.State)
}

func TestOversizedBodyAfterResponseStartedAborts(t *testing.T) {
	rec, hooks := newRecorder()
	c := NewConnection(10, 65535, hooks)

	c.HandleHeaders(1, http.Header{":method": {"POST"}, ":path": {"/x"}}, false)
	req, _ := c.Lookup(1)
	req.MarkResponseStarted()

	c.HandleData(1, make([]byte, 20), false)

	assert.Empty(t, rec.errors)
	assert.Equal(t, Aborted, req.State)
}

func TestRSTStreamClosesWithCancelled(t *testing.T) {
	rec, hooks := newRecorder()
	c := NewConnection(0, 65535, hooks)

	c.HandleHeaders(1, http.Header{":method": {"GET"}, ":path": {"/x"}}, false)
	req, _ := c.Lookup(1)

	c.HandleRSTStream(1)

	assert.Equal(t, Closed, req.State)
	_, ok := c.Lookup(1)
	assert.False(t, ok)
	errVal, ok := core.As(req.Err(), core.Cancelled)
	require.True(t, ok)
	assert.Equal(t, core.Cancelled, errVal.Kind)
}

func TestDataForUnknownStreamIsProtocolError(t *testing.T) {
	rec, hooks := newRecorder()
	c := NewConnection(0, 65535, hooks)

	c.HandleData(99, []byte("x"), false)

	require.Len(t, rec.goAways, 1)
	assert.Equal(t, http2.ErrCodeProtocol, rec.goAways[0])
}

func TestClosedStreamIgnoresFurtherData(t *testing.T) {
	rec, hooks := newRecorder()
	c := NewConnection(0, 65535, hooks)

	c.HandleHeaders(1, http.Header{":method": {"GET"}, ":path": {"/x"}}, true)
	req, _ := c.Lookup(1)
	req.close(nil)

	c.HandleData(1, []byte("late"), false)

	assert.Empty(t, rec.errors)
	assert.Empty(t, rec.goAways)
}
