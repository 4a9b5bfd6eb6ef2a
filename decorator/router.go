package decorator

import (
	"github.com/coreway/httpcore/route"
	"github.com/coreway/httpcore/routing"
)

// Binding pairs a Route with the Decorator it activates — the decorator
// router's instantiation of routing.Entry.
type Binding = routing.Entry[Decorator]

// Router finds every Decorator bound to routes matching a request,
// reusing the same RoutingTrie/sequential composite and ambiguity
// bookkeeping as the primary service router. Decorator matching never
// goes through RouteCache: decorator sets change the handler chain,
// not just the destination, so caching would have to key on every
// decorator's effect rather than the five router dimensions.
type Router struct {
	router *routing.Router[Decorator]
}

func Build(bindings []Binding, opts ...routing.Option[Decorator]) (*Router, []error) {
	r, errs := routing.Build(bindings, opts...)
	return &Router{router: r}, errs
}

// Decorators returns the bound decorators of every route fully
// matching ctx, in registration order — ready to hand to NewChain.
func (r *Router) Decorators(ctx *route.Context) []Decorator {
	matches := r.router.FindAll(ctx)
	out := make([]Decorator, len(matches))
	for i, m := range matches {
		out[i] = m.Value
	}
	return out
}
