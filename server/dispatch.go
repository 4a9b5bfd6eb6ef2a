package server

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/coreway/httpcore/aggregate"
	"github.com/coreway/httpcore/core"
	"github.com/coreway/httpcore/decorator"
	"github.com/coreway/httpcore/metrics"
	"github.com/coreway/httpcore/parambind"
	"github.com/coreway/httpcore/route"
)

// Dispatcher drives the full per-request pipeline for one
// VirtualHost: route matching, decorator chain construction,
// aggregation, parameter binding, and handler invocation, rendering
// any core.Error through the standard kind-to-status mapping.
type Dispatcher struct {
	Host       *VirtualHost
	Aggregator *aggregate.Aggregator
	Binder     *parambind.Binder
	Pool       *BlockingPool
	Metrics    *metrics.Registry
}

// ServeHTTP implements http.Handler so a Dispatcher can be wired
// directly into a *http.Server.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := route.NewContext(r)

	m, ok := d.Host.Find(ctx)
	var svc ServiceConfig
	var params map[string]string

	switch {
	case !ok:
		svc, params = d.Host.Fallback(), nil
	case !m.Result.FullMatch:
		status := d.renderError(w, core.New(m.Result.Kind, "route matched but dimensional check failed"))
		d.measure(status, start)
		return
	default:
		svc, params = m.Value, m.Result.Params
	}

	requestID := uuid.NewString()
	reqCtx := decorator.NewContext(r, w, params, requestID)

	decorators := d.Host.Decorators(ctx)
	chain := decorator.NewChain(decorators, decorator.ServiceFunc(func(dc decorator.Context) error {
		return d.invoke(dc, svc, params)
	}))

	status := http.StatusOK
	if err := chain.Run(reqCtx); err != nil {
		status = d.renderError(w, err)
	} else if resp := reqCtx.Response(); resp != nil {
		status = resp.StatusCode
		writeResponse(w, resp)
	}

	d.measure(status, start)
}

// invoke aggregates the body when svc calls for it, binds parameters,
// and calls svc.Handler — on the blocking pool when svc.Blocking.
func (d *Dispatcher) invoke(dc decorator.Context, svc ServiceConfig, pathParams map[string]string) error {
	req := dc.Request()

	var form url.Values
	if d.Aggregator.ShouldAggregate(svc.AggregationStrategy, req.Header.Get("Content-Type")) {
		data, err := d.Aggregator.Aggregate(req.Body)
		if err != nil {
			return err
		}
		req.Body = io.NopCloser(bytes.NewReader(data))

		if mt, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type")); mt == "application/x-www-form-urlencoded" {
			form, err = aggregate.DecodeForm(data)
			if err != nil {
				return err
			}
		}
	}

	bound, err := d.Binder.Bind(svc.Params, pathParams, req.URL.Query(), form)
	if err != nil {
		return err
	}

	reqCtx := &RequestContext{Context: dc, Params: bound}

	run := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = core.New(core.Internal, "handler panicked")
			}
		}()
		resp, err := svc.Handler(reqCtx)
		if err != nil {
			return err
		}
		dc.SetResponse(resp)
		return nil
	}

	if svc.Blocking && d.Pool != nil {
		return d.Pool.Submit(run)
	}
	return run()
}

func (d *Dispatcher) renderError(w http.ResponseWriter, err error) int {
	kind := core.Internal
	message := err.Error()
	if ce, ok := err.(*core.Error); ok {
		kind = ce.Kind
		message = ce.Message
	}
	status := kind.Status()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, message)
	return status
}

func (d *Dispatcher) measure(status int, start time.Time) {
	if d.Metrics == nil {
		return
	}
	d.Metrics.MeasureRequest(statusClass(status), start)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func writeResponse(w http.ResponseWriter, resp *http.Response) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != nil {
		io.Copy(w, resp.Body)
		resp.Body.Close()
	}
}
