// Package server wires the route, routing, decorator, aggregate, and
// parambind packages into a per-virtual-host dispatch pipeline, and
// owns the process-level HTTP/2 listener and graceful shutdown
// sequence.
package server

import (
	"net/http"

	"github.com/coreway/httpcore/aggregate"
	"github.com/coreway/httpcore/parambind"
)

// Handler is the service contract a route ultimately dispatches to:
// it receives the bound RequestContext and returns the response to
// write back, or an error the dispatcher renders through the standard
// error-kind-to-status mapping.
type Handler func(ctx *RequestContext) (*http.Response, error)

// ServiceConfig is the value a Route is bound to in a virtual host's
// primary router: the handler plus everything the dispatcher needs to
// decide about aggregation, parameter binding, and scheduling before
// calling it.
type ServiceConfig struct {
	Name string

	Handler Handler

	// Blocking routes the call through the bounded blocking-task pool,
	// which caps how many such calls run at once; the call itself still
	// runs on the dispatching goroutine once admitted.
	Blocking bool

	AggregationStrategy aggregate.Strategy
	Params              []parambind.Spec
}
