package route

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreway/httpcore/core"
)

func ctxFor(method, path string, headers http.Header, query map[string][]string) *Context {
	if headers == nil {
		headers = http.Header{}
	}
	if query == nil {
		query = map[string][]string{}
	}
	return &Context{
		Method:                 method,
		Path:                   path,
		OriginalPath:           path,
		Query:                  query,
		Headers:                headers,
		ContentType:            headers.Get("Content-Type"),
		Accept:                 splitAccept(headers.Get("Accept")),
		MatchParamsPredicates:  true,
		MatchHeadersPredicates: true,
	}
}

func TestLiteralBeatsParameterized(t *testing.T) {
	idPattern, err := NewParameterized("/users/{id}")
	require.NoError(t, err)
	newPattern, err := NewExact("/users/new")
	require.NoError(t, err)

	idRoute := New("users-id", idPattern, WithMethods("GET"))
	newRoute := New("users-new", newPattern, WithMethods("GET"))

	assert.Greater(t, newRoute.Complexity(), idRoute.Complexity())

	out := idRoute.Match(ctxFor("GET", "/users/42", nil, nil))
	require.True(t, out.FullMatch)
	assert.Equal(t, "42", out.Params["id"])
}

func TestConsumesMismatchIsUnsupportedMediaType(t *testing.T) {
	p, err := NewExact("/items")
	require.NoError(t, err)
	r := New("create-item", p, WithMethods("POST"), WithConsumes("application/json"))

	h := http.Header{}
	h.Set("Content-Type", "text/plain")
	out := r.Match(ctxFor("POST", "/items", h, nil))
	require.True(t, out.Present)
	require.False(t, out.FullMatch)
	assert.Equal(t, core.UnsupportedMediaType, out.Kind)

	h.Set("Content-Type", "application/json")
	out = r.Match(ctxFor("POST", "/items", h, nil))
	assert.True(t, out.FullMatch)
}

func TestMethodMismatchIsMethodNotAllowed(t *testing.T) {
	p, err := NewExact("/items")
	require.NoError(t, err)
	r := New("create-item", p, WithMethods("POST"))

	out := r.Match(ctxFor("GET", "/items", nil, nil))
	require.True(t, out.Present)
	assert.Equal(t, core.MethodNotAllowed, out.Kind)
}

func TestPrefixNormalizesTrailingSlash(t *testing.T) {
	p, err := NewPrefix("/static")
	require.NoError(t, err)
	assert.Equal(t, "/static/", p.Raw())

	r := New("static", p, WithMethods("GET"))
	out := r.Match(ctxFor("GET", "/static/js/app.js", nil, nil))
	assert.True(t, out.FullMatch)
}

func TestHeaderPredicateGatesMatch(t *testing.T) {
	p, err := NewExact("/beta")
	require.NoError(t, err)
	pred, err := NewPredicate("X-Beta", Eq, "on")
	require.NoError(t, err)
	r := New("beta", p, WithMethods("GET"), WithHeaderPredicate(pred))

	assert.False(t, r.IsCacheable())

	out := r.Match(ctxFor("GET", "/beta", nil, nil))
	assert.False(t, out.Present)

	h := http.Header{}
	h.Set("X-Beta", "on")
	out = r.Match(ctxFor("GET", "/beta", h, nil))
	assert.True(t, out.FullMatch)
}

func TestCatchAllBindsRemainder(t *testing.T) {
	p, err := NewParameterized("/api/**")
	require.NoError(t, err)
	r := New("api", p, WithMethods("GET"))

	out := r.Match(ctxFor("GET", "/api/users/1", nil, nil))
	require.True(t, out.FullMatch)
	assert.Equal(t, "users/1", out.Params["**"])
}

func TestComplexityIsPureFunctionOfFields(t *testing.T) {
	p1, _ := NewExact("/x")
	p2, _ := NewExact("/x")
	r1 := New("a", p1, WithMethods("GET"))
	r2 := New("b", p2, WithMethods("GET"))
	assert.Equal(t, r1.Complexity(), r2.Complexity())
}

func TestDuplicatePlaceholderNameRejected(t *testing.T) {
	_, err := NewParameterized("/x/{id}/y/{id}")
	assert.Error(t, err)
}
