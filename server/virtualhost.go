package server

import (
	"strings"

	"github.com/coreway/httpcore/decorator"
	"github.com/coreway/httpcore/route"
	"github.com/coreway/httpcore/routing"
)

// RouteDef is one route registration a caller hands to NewVirtualHost:
// an id, a compiled pattern, match options, and the service it binds
// to.
type RouteDef struct {
	ID      string
	Pattern *route.Pattern
	Opts    []route.Option
	Service ServiceConfig
}

// DecoratorDef is one decorator registration: a route pattern the
// decorator applies under, and the built Decorator.
type DecoratorDef struct {
	ID        string
	Pattern   *route.Pattern
	Opts      []route.Option
	Decorator decorator.Decorator
}

// VirtualHost is one host's complete dispatch surface: a cached
// primary router over ServiceConfig, a decorator router, and the
// catch-all fallback used when the primary router has no match.
type VirtualHost struct {
	router     *routing.CachingRouter[ServiceConfig]
	decorators *decorator.Router
	fallback   ServiceConfig
}

// NewVirtualHost builds a VirtualHost from explicit route and
// decorator registrations plus a fallback service. For every route
// pattern ending in "/", a trailing-slash-stripped entry bound to the
// fallback is installed automatically, with lower precedence than any
// explicit match (via AsFallback). observer may be nil to disable
// route-cache metrics reporting.
func NewVirtualHost(routes []RouteDef, decorators []DecoratorDef, fallback ServiceConfig, routeCacheSize int64, observer routing.CacheObserver) (*VirtualHost, []error) {
	entries := make([]routing.Entry[ServiceConfig], 0, len(routes))

	for _, rd := range routes {
		r := route.New(rd.ID, rd.Pattern, rd.Opts...)
		entries = append(entries, routing.Entry[ServiceConfig]{Route: r, Value: rd.Service})

		if strings.HasSuffix(r.Pattern.Raw(), "/") && r.Pattern.Raw() != "/" {
			stripped := strings.TrimSuffix(r.Pattern.Raw(), "/")
			if p, err := route.NewExact(stripped); err == nil {
				fallbackRoute := route.New(rd.ID+"#trailing-slash", p, route.AsFallback())
				entries = append(entries, routing.Entry[ServiceConfig]{Route: fallbackRoute, Value: fallback})
			}
		}
	}

	router, errs := routing.Build(entries)

	cachingRouter, err := routing.NewCachingRouter(router, routeCacheSize)
	if err != nil {
		errs = append(errs, err)
	} else {
		cachingRouter.Observer = observer
	}

	decoratorEntries := make([]decorator.Binding, 0, len(decorators))
	for _, dd := range decorators {
		r := route.New(dd.ID, dd.Pattern, dd.Opts...)
		decoratorEntries = append(decoratorEntries, decorator.Binding{Route: r, Value: dd.Decorator})
	}
	decoratorRouter, dErrs := decorator.Build(decoratorEntries)
	errs = append(errs, dErrs...)

	return &VirtualHost{
		router:     cachingRouter,
		decorators: decoratorRouter,
		fallback:   fallback,
	}, errs
}

// Find resolves ctx against the primary router, returning the match
// as-is: callers distinguish a full match (ok && Result.FullMatch), a
// dimensional-failure candidate (ok && !Result.FullMatch — method not
// allowed, consumes, or produces mismatch) and no candidate at all
// (!ok), the last of which the dispatcher renders with Fallback.
func (vh *VirtualHost) Find(ctx *route.Context) (routing.Matched[ServiceConfig], bool) {
	return vh.router.Find(ctx)
}

// Fallback is the virtual host's catch-all service, used by the
// dispatcher when Find reports no candidate at all.
func (vh *VirtualHost) Fallback() ServiceConfig { return vh.fallback }

// Decorators returns every decorator bound to ctx, in registration
// order.
func (vh *VirtualHost) Decorators(ctx *route.Context) []decorator.Decorator {
	return vh.decorators.Decorators(ctx)
}
