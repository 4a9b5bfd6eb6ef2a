package routing

import (
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"

	"github.com/coreway/httpcore/route"
)

// CacheObserver receives route-cache hit/miss and lookup-latency
// events. Kept as a narrow interface rather than a direct dependency
// on the metrics package so routing stays usable without it; a nil
// Observer disables reporting.
type CacheObserver interface {
	IncRouteCacheHit()
	IncRouteCacheMiss()
	MeasureRouteLookup(start time.Time)
}

// CachingRouter wraps a Router with a RouteCache: a bounded
// window-TinyLFU cache (backed by ristretto) keyed by a normalized
// request fingerprint, bypassed for routes in the router's ambiguous
// set. Concurrent misses for the same key collapse through a
// singleflight.Group so a cold cache under load does not stampede
// Router.Find.
type CachingRouter[V any] struct {
	router    *Router[V]
	cache     *ristretto.Cache[string, Matched[V]]
	allCache  *ristretto.Cache[string, []Matched[V]]
	findGroup singleflight.Group
	allGroup  singleflight.Group

	Observer CacheObserver
}

// NewCachingRouter builds a CachingRouter with the given maximum
// number of cached entries (approximated via ristretto's cost model,
// one cost unit per entry).
func NewCachingRouter[V any](router *Router[V], maxEntries int64) (*CachingRouter[V], error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, Matched[V]]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	allCache, err := ristretto.NewCache(&ristretto.Config[string, []Matched[V]]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &CachingRouter[V]{router: router, cache: cache, allCache: allCache}, nil
}

// cacheKey canonicalizes method, path, content type, and the accept
// list. Predicate-relevant fields are deliberately excluded — see
// DESIGN.md's Open Question decision: a cached route is by
// construction never ambiguous, so its match never depends on query
// params or headers.
func cacheKey(ctx *route.Context) string {
	var b strings.Builder
	b.WriteString(ctx.Method)
	b.WriteByte('\x00')
	b.WriteString(ctx.Path)
	b.WriteByte('\x00')
	b.WriteString(ctx.ContentType)
	b.WriteByte('\x00')
	b.WriteString(strings.Join(ctx.Accept, ","))
	return b.String()
}

// Find consults the cache first; on a hit it re-runs Route.Apply to
// recompute the per-request parameter bindings (never reusing the
// cached result's params) before returning. On a miss it delegates to
// the underlying Router and writes back only when the winning route
// is not in the ambiguous set.
func (c *CachingRouter[V]) Find(ctx *route.Context) (Matched[V], bool) {
	start := time.Now()
	key := cacheKey(ctx)

	if cached, ok := c.cache.Get(key); ok {
		if params, ok := cached.Route.Apply(ctx); ok {
			cached.Result.Params = params
			c.observeHit(start)
			return cached, true
		}
	}

	type result struct {
		matched Matched[V]
		present bool
	}

	v, _, _ := c.findGroup.Do(key, func() (interface{}, error) {
		m, present := c.router.Find(ctx)
		if present && m.Result.FullMatch && !c.router.IsAmbiguous(m.Route.ID) {
			c.cache.Set(key, m, 1)
		}
		return result{matched: m, present: present}, nil
	})

	c.observeMiss(start)
	r := v.(result)
	return r.matched, r.present
}

func (c *CachingRouter[V]) observeHit(start time.Time) {
	if c.Observer == nil {
		return
	}
	c.Observer.IncRouteCacheHit()
	c.Observer.MeasureRouteLookup(start)
}

func (c *CachingRouter[V]) observeMiss(start time.Time) {
	if c.Observer == nil {
		return
	}
	c.Observer.IncRouteCacheMiss()
	c.Observer.MeasureRouteLookup(start)
}

// FindAll mirrors Find but for the list-returning operation used by
// the decorator router: it caches the list of matched values but
// always filters the returned list through Route.Apply at serve time.
func (c *CachingRouter[V]) FindAll(ctx *route.Context) []Matched[V] {
	key := cacheKey(ctx)

	if cached, ok := c.allCache.Get(key); ok {
		out := make([]Matched[V], 0, len(cached))
		for _, m := range cached {
			if params, ok := m.Route.Apply(ctx); ok {
				m.Result.Params = params
				out = append(out, m)
			}
		}
		return out
	}

	v, _, _ := c.allGroup.Do(key, func() (interface{}, error) {
		matches := c.router.FindAll(ctx)
		safe := true
		for _, m := range matches {
			if c.router.IsAmbiguous(m.Route.ID) {
				safe = false
				break
			}
		}
		if safe {
			c.allCache.Set(key, matches, 1)
		}
		return matches, nil
	})

	return v.([]Matched[V])
}
