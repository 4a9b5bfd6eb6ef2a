package decorator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDecorator struct {
	name    string
	trace   *[]string
	serveAt bool
}

func (d *recordingDecorator) Request(ctx Context) {
	*d.trace = append(*d.trace, d.name+":req")
	if d.serveAt {
		ctx.Serve(&http.Response{StatusCode: http.StatusForbidden})
	}
}

func (d *recordingDecorator) Response(ctx Context) {
	*d.trace = append(*d.trace, d.name+":resp")
}

func TestChainRunsRequestThenResponseInReverse(t *testing.T) {
	var trace []string
	d1 := &recordingDecorator{name: "logging", trace: &trace}
	d2 := &recordingDecorator{name: "auth", trace: &trace}

	service := ServiceFunc(func(ctx Context) error {
		trace = append(trace, "service")
		ctx.SetResponse(&http.Response{StatusCode: http.StatusOK})
		return nil
	})

	chain := NewChain([]Decorator{d1, d2}, service)
	ctx := NewContext(httptest.NewRequest("GET", "/x", nil), httptest.NewRecorder(), nil, "req-1")

	err := chain.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"logging:req", "auth:req", "service", "auth:resp", "logging:resp"}, trace)
	assert.Equal(t, http.StatusOK, ctx.Response().StatusCode)
}

func TestChainShortCircuitSkipsServiceAndLaterDecorators(t *testing.T) {
	var trace []string
	d1 := &recordingDecorator{name: "logging", trace: &trace}
	d2 := &recordingDecorator{name: "auth", trace: &trace, serveAt: true}
	d3 := &recordingDecorator{name: "ratelimit", trace: &trace}

	serviceCalled := false
	service := ServiceFunc(func(ctx Context) error {
		serviceCalled = true
		return nil
	})

	chain := NewChain([]Decorator{d1, d2, d3}, service)
	ctx := NewContext(httptest.NewRequest("GET", "/x", nil), httptest.NewRecorder(), nil, "req-2")

	require.NoError(t, chain.Run(ctx))
	assert.False(t, serviceCalled)
	assert.Equal(t, []string{"logging:req", "auth:req", "auth:resp", "logging:resp"}, trace)
	assert.Equal(t, http.StatusForbidden, ctx.Response().StatusCode)
}
