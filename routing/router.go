// Package routing implements the Router and RouteCache: a composite
// of a RoutingTrie sub-router and a sequential sub-router over
// non-trie-eligible routes (arbitrary regex patterns), plus the cache
// layer in front of it. The cache stores positive results only (full
// matches); lookups with no match or only a dimensional-failure
// candidate are not cached and go to the Router every time.
package routing

import (
	"fmt"
	"sort"

	"github.com/coreway/httpcore/pathtrie"
	"github.com/coreway/httpcore/route"
)

// Entry pairs a Route with the value the caller wants bound to it —
// a ServiceConfig for the primary router, a Decorator for the
// decorator router.
type Entry[V any] struct {
	Route *route.Route
	Value V
}

// Matched is one routing result: the Route that matched, the
// per-request Outcome (params, score, kind), and its bound value.
type Matched[V any] struct {
	Route  *route.Route
	Result route.Outcome
	Value  V
}

// DuplicateHandler is invoked once per duplicate pair found at build
// time, giving the caller a chance to reject the registration.
type DuplicateHandler[V any] func(existing, duplicate Entry[V])

type buildOptions[V any] struct {
	onDuplicate DuplicateHandler[V]
}

type Option[V any] func(*buildOptions[V])

func WithDuplicateHandler[V any](h DuplicateHandler[V]) Option[V] {
	return func(o *buildOptions[V]) { o.onDuplicate = h }
}

// Router composes a trie-backed sub-router over trie-eligible routes
// and a sequential sub-router over the rest.
type Router[V any] struct {
	trie       *pathtrie.Trie[V]
	sequential []pathtrie.Leaf[V]
	all        []pathtrie.Leaf[V] // full registration-order list, for FindAll and diagnostics
	ambiguous  map[string]bool    // keyed by Route.ID
}

// Build constructs a Router from entries, assigning registration order
// by slice index, grouping trie-eligible vs. sequential routes, and
// precomputing the ambiguous-route set.
func Build[V any](entries []Entry[V], opts ...Option[V]) (*Router[V], []error) {
	var o buildOptions[V]
	for _, opt := range opts {
		opt(&o)
	}

	r := &Router[V]{
		trie:      pathtrie.New[V](),
		ambiguous: map[string]bool{},
	}

	var errs []error
	signatures := map[string][]Entry[V]{}

	for i, e := range entries {
		e.Route.RegistrationOrder = i
		leaf := pathtrie.Leaf[V]{Route: e.Route, Value: e.Value}
		r.all = append(r.all, leaf)

		if e.Route.Pattern.TrieEligible() {
			r.trie.Insert(e.Route.Pattern.TriePath(), e.Route, e.Value)
		} else {
			r.sequential = append(r.sequential, leaf)
		}

		sig := ambiguitySignature(e.Route)
		signatures[sig] = append(signatures[sig], e)
	}

	for _, group := range signatures {
		hasNonCacheable := false
		for _, e := range group {
			if !e.Route.IsCacheable() {
				hasNonCacheable = true
				break
			}
		}
		if hasNonCacheable {
			for _, e := range group {
				r.ambiguous[e.Route.ID] = true
			}
		}
		for i := 1; i < len(group); i++ {
			if fullSignaturesEqual(group[0].Route, group[i].Route) {
				if o.onDuplicate != nil {
					o.onDuplicate(group[0], group[i])
				}
				errs = append(errs, fmt.Errorf("routing: duplicate route %q collides with %q", group[i].Route.ID, group[0].Route.ID))
			}
		}
	}

	return r, errs
}

// IsAmbiguous reports whether id belongs to the precomputed ambiguous
// set: cache writes must skip such routes.
func (r *Router[V]) IsAmbiguous(id string) bool { return r.ambiguous[id] }

// Find returns the single best match for ctx, or ok=false when
// nothing is present at all.
func (r *Router[V]) Find(ctx *route.Context) (Matched[V], bool) {
	candidates := r.candidates(ctx.Path)

	var best Matched[V]
	haveBest := false

	for _, c := range candidates {
		out := c.Route.Match(ctx)
		if !out.Present {
			continue
		}
		if out.FullMatch && out.Score.IsHighest() {
			return Matched[V]{Route: c.Route, Result: out, Value: c.Value}, true
		}
		if !haveBest || better(c.Route, out, best.Route, best.Result) {
			best = Matched[V]{Route: c.Route, Result: out, Value: c.Value}
			haveBest = true
		}
	}

	return best, haveBest
}

// FindAll returns every fully-matching candidate in registration
// order. Used by the decorator router and for diagnostics.
func (r *Router[V]) FindAll(ctx *route.Context) []Matched[V] {
	candidates := r.candidates(ctx.Path)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Route.RegistrationOrder < candidates[j].Route.RegistrationOrder
	})

	var out []Matched[V]
	for _, c := range candidates {
		res := c.Route.Match(ctx)
		if res.FullMatch {
			out = append(out, Matched[V]{Route: c.Route, Result: res, Value: c.Value})
		}
	}
	return out
}

func (r *Router[V]) candidates(path string) []pathtrie.Leaf[V] {
	out := append([]pathtrie.Leaf[V]{}, r.trie.Search(path)...)
	out = append(out, r.sequential...)
	return out
}

// better reports whether (candRoute, candOutcome) strictly improves on
// (bestRoute, bestOutcome): a strictly greater score wins; on a score
// tie, the route with greater Complexity wins (the literal
// "/users/new" outscoring "/users/{id}" even though both produce the
// same method/consumes/produces score); only once both score and
// complexity tie does the earlier registration win, so "better" must
// be false in that case — the earlier winner is never displaced. On a
// score tie an explicit route always beats a fallback route, before
// complexity is compared.
func better(candRoute *route.Route, candOutcome route.Outcome, bestRoute *route.Route, bestOutcome route.Outcome) bool {
	if candOutcome.Score.Greater(bestOutcome.Score) {
		return true
	}
	if bestOutcome.Score.Greater(candOutcome.Score) {
		return false
	}
	if candRoute.IsFallback() != bestRoute.IsFallback() {
		return !candRoute.IsFallback()
	}
	if candRoute.Complexity() != bestRoute.Complexity() {
		return candRoute.Complexity() > bestRoute.Complexity()
	}
	return candRoute.RegistrationOrder < bestRoute.RegistrationOrder
}
