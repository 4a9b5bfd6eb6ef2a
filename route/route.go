package route

import (
	"mime"
	"strings"

	"github.com/coreway/httpcore/core"
)

// Route is the immutable value describing one matching rule. All
// exported state is set at construction time via New, except
// RegistrationOrder, which routing.Build assigns once while building a
// router; after that nothing mutates it, so a *Route can be shared
// freely across reactors once the server's route tables are built.
type Route struct {
	ID       string
	Pattern  *Pattern
	Methods  map[string]struct{}
	Consumes map[string]struct{}
	Produces map[string]struct{}

	ParamPredicates  []Predicate
	HeaderPredicates []Predicate

	complexity  int
	isCacheable bool
	isFallback  bool

	// RegistrationOrder breaks ties between routes of equal score
	// and equal complexity.
	RegistrationOrder int
}

// Option configures a Route at construction time.
type Option func(*Route)

func WithMethods(methods ...string) Option {
	return func(r *Route) {
		for _, m := range methods {
			r.Methods[strings.ToUpper(m)] = struct{}{}
		}
	}
}

func WithConsumes(mediaTypes ...string) Option {
	return func(r *Route) {
		for _, m := range mediaTypes {
			r.Consumes[m] = struct{}{}
		}
	}
}

func WithProduces(mediaTypes ...string) Option {
	return func(r *Route) {
		for _, m := range mediaTypes {
			r.Produces[m] = struct{}{}
		}
	}
}

func WithParamPredicate(p Predicate) Option {
	return func(r *Route) { r.ParamPredicates = append(r.ParamPredicates, p) }
}

func WithHeaderPredicate(p Predicate) Option {
	return func(r *Route) { r.HeaderPredicates = append(r.HeaderPredicates, p) }
}

// AsFallback marks the route as a synthesized fallback entry: lower
// precedence than any explicit match, used for the trailing-slash-
// stripped entries a VirtualHost binds to its fallback service.
func AsFallback() Option {
	return func(r *Route) { r.isFallback = true }
}

// New builds a Route from an id, a compiled Pattern, and options.
// Complexity is always derived, never accepted as input, so it stays
// a pure function of the route's declared dimensions.
func New(id string, pattern *Pattern, opts ...Option) *Route {
	r := &Route{
		ID:       id,
		Pattern:  pattern,
		Methods:  map[string]struct{}{},
		Consumes: map[string]struct{}{},
		Produces: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.complexity = computeComplexity(r)
	r.isCacheable = len(r.ParamPredicates) == 0 && len(r.HeaderPredicates) == 0
	return r
}

func computeComplexity(r *Route) int {
	pathScore := 0
	switch r.Pattern.kind {
	case Exact:
		pathScore = 1000 + len(splitPath(r.Pattern.raw))
	case Prefix:
		pathScore = 10 + len(splitPath(r.Pattern.raw))
	case Parameterized, Glob:
		for _, s := range r.Pattern.segments {
			switch s.kind {
			case segLiteral:
				pathScore += 3
			case segParam:
				pathScore += 1
			}
		}
	case Regex:
		pathScore = 5
	}

	dims := 0
	if len(r.Methods) > 0 {
		dims++
	}
	if len(r.Consumes) > 0 {
		dims++
	}
	if len(r.Produces) > 0 {
		dims++
	}
	dims += len(r.ParamPredicates) + len(r.HeaderPredicates)

	return pathScore*10 + dims
}

// Complexity is a pure function of the route's declared dimensions:
// equal fields imply equal complexity.
func (r *Route) Complexity() int { return r.complexity }

// IsCacheable is false when any dynamic predicate is present.
func (r *Route) IsCacheable() bool { return r.isCacheable }

// IsFallback reports whether this is an internal fallback marker route.
func (r *Route) IsFallback() bool { return r.isFallback }

// Outcome is the result of matching one Route against a Context.
type Outcome struct {
	Present           bool
	Kind              core.Kind // zero value (core.Internal) doubles as "full match"; check Present+Score instead.
	FullMatch         bool
	Score             Score
	Params            map[string]string
	ProducesMediaType string
}

// Match evaluates path, method, consumes, produces, and both
// predicate dimensions against ctx, in that order, stopping at the
// first dimension that fails.
func (r *Route) Match(ctx *Context) Outcome {
	params, pathOK := r.Pattern.match(ctx.Path)
	if !pathOK {
		return Outcome{Present: false}
	}

	methodOK := matchSet(r.Methods, ctx.Method)
	if !methodOK {
		return Outcome{Present: true, Kind: core.MethodNotAllowed, Params: params}
	}

	consumesOK := len(r.Consumes) == 0 || matchMediaType(r.Consumes, ctx.ContentType)
	if !consumesOK {
		return Outcome{Present: true, Kind: core.UnsupportedMediaType, Params: params}
	}

	producesOK, quality, negotiated := evaluateProduces(r.Produces, ctx.Accept)
	if !producesOK {
		return Outcome{Present: true, Kind: core.NotAcceptable, Params: params}
	}

	if ctx.MatchParamsPredicates {
		for _, p := range r.ParamPredicates {
			if !p.matchParams(ctx.Query) {
				return Outcome{Present: false}
			}
		}
	}
	if ctx.MatchHeadersPredicates {
		for _, p := range r.HeaderPredicates {
			if !p.matchHeaders(ctx.Headers) {
				return Outcome{Present: false}
			}
		}
	}

	return Outcome{
		Present:           true,
		FullMatch:         true,
		Params:            params,
		ProducesMediaType: negotiated,
		Score: Score{
			MethodMatch:     true,
			ConsumesMatch:   true,
			ProducesMatch:   true,
			ProducesQuality: quality,
		},
	}
}

// Apply recomputes only the path-parameter bindings for ctx, assuming
// the dimensional checks already passed. Used on a RouteCache hit,
// where the cached match decision is reused but parameters are always
// recomputed against the live path.
func (r *Route) Apply(ctx *Context) (map[string]string, bool) {
	return r.Pattern.match(ctx.Path)
}

func matchSet(set map[string]struct{}, value string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[strings.ToUpper(value)]
	return ok
}

func matchMediaType(set map[string]struct{}, contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(contentType)
	}
	_, ok := set[mt]
	return ok
}

// evaluateProduces negotiates the route's produces set against the
// request's Accept entries, returning a match flag, a quality score
// used in the Score tuple, and the negotiated media type.
func evaluateProduces(produces map[string]struct{}, accept []string) (bool, float64, string) {
	if len(produces) == 0 {
		return true, 0.5, ""
	}
	if len(accept) == 0 {
		for mt := range produces {
			return true, 0.5, mt
		}
	}
	for _, a := range accept {
		if a == "*/*" {
			for mt := range produces {
				return true, 0.5, mt
			}
		}
		if _, ok := produces[a]; ok {
			return true, 1.0, a
		}
	}
	return false, 0, ""
}
