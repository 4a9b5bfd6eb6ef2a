// Package decorator implements the DecoratorBinding and DispatchChain
// components: request/response middleware attached to routes the same
// way ServiceConfig is, matched through the same Router machinery, and
// composed into a per-request chain that runs in registration order
// with the ability to short-circuit.
package decorator

import "net/http"

// Context is the per-request object passed to every Decorator in a
// chain. It exposes the request/response pair, a short-circuit flag,
// path parameters bound by the winning route, and a free-form state
// bag decorators use to pass data to later decorators.
type Context interface {
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Response() *http.Response
	SetResponse(*http.Response)

	// Serve sets resp as the final response and marks the request
	// served, stopping the remaining Request-phase walk.
	Serve(resp *http.Response)
	Served() bool

	PathParam(name string) string
	StateBag() map[string]interface{}
	RequestID() string
}

// Decorator is attached to a route and runs in both request and
// response phases of a Chain. Request is called on incoming requests
// in chain order; Response is called once the backend response (or a
// short-circuited one) is available, in reverse chain order. A
// Decorator that never needs one of the phases leaves it empty.
type Decorator interface {
	Request(Context)
	Response(Context)
}

// Spec creates Decorator instances from route-attached configuration.
// A single Spec is registered once per process and produces one
// Decorator instance per route that references it, so a Decorator
// instance's state is shared across every request for that route.
type Spec interface {
	Name() string
	CreateDecorator(config []interface{}) (Decorator, error)
}

// Registry resolves Spec instances by name at route build time.
type Registry map[string]Spec

func NewRegistry() Registry { return Registry{} }

func (r Registry) Register(s Spec) { r[s.Name()] = s }

func (r Registry) Get(name string) (Spec, bool) {
	s, ok := r[name]
	return s, ok
}
