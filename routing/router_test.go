package routing

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreway/httpcore/route"
)

func mustExact(t *testing.T, p string) *route.Pattern {
	t.Helper()
	pat, err := route.NewExact(p)
	require.NoError(t, err)
	return pat
}

func mustParam(t *testing.T, p string) *route.Pattern {
	t.Helper()
	pat, err := route.NewParameterized(p)
	require.NoError(t, err)
	return pat
}

func ctxFor(method, path string) *route.Context {
	return &route.Context{
		Method:                 method,
		Path:                   path,
		OriginalPath:           path,
		Query:                  map[string][]string{},
		Headers:                http.Header{},
		MatchParamsPredicates:  true,
		MatchHeadersPredicates: true,
	}
}

func TestFindPrefersLiteralOverParameterized(t *testing.T) {
	idRoute := route.New("users-id", mustParam(t, "/users/{id}"), route.WithMethods("GET"))
	newRoute := route.New("users-new", mustExact(t, "/users/new"), route.WithMethods("GET"))

	r, errs := Build([]Entry[string]{
		{Route: idRoute, Value: "id"},
		{Route: newRoute, Value: "new"},
	})
	require.Empty(t, errs)

	m, ok := r.Find(ctxFor("GET", "/users/new"))
	require.True(t, ok)
	assert.Equal(t, "users-new", m.Route.ID)

	m, ok = r.Find(ctxFor("GET", "/users/42"))
	require.True(t, ok)
	assert.Equal(t, "users-id", m.Route.ID)
	assert.Equal(t, "42", m.Result.Params["id"])
}

func TestFindAllReturnsRegistrationOrder(t *testing.T) {
	logging := route.New("logging", mustParam(t, "/**"), route.WithMethods("GET"))
	auth := route.New("auth", mustParam(t, "/api/**"), route.WithMethods("GET"))

	r, errs := Build([]Entry[string]{
		{Route: logging, Value: "logging"},
		{Route: auth, Value: "auth"},
	})
	require.Empty(t, errs)

	matches := r.FindAll(ctxFor("GET", "/api/users/1"))
	require.Len(t, matches, 2)
	assert.Equal(t, "logging", matches[0].Route.ID)
	assert.Equal(t, "auth", matches[1].Route.ID)
}

func TestFindReturnsMethodNotAllowedWhenNoOtherMatch(t *testing.T) {
	r, errs := Build([]Entry[string]{
		{Route: route.New("post-only", mustExact(t, "/items"), route.WithMethods("POST")), Value: "x"},
	})
	require.Empty(t, errs)

	m, ok := r.Find(ctxFor("GET", "/items"))
	require.True(t, ok)
	assert.False(t, m.Result.FullMatch)
}

func TestDuplicateRouteTriggersHandler(t *testing.T) {
	a := route.New("a", mustExact(t, "/dup"), route.WithMethods("GET"))
	b := route.New("b", mustExact(t, "/dup"), route.WithMethods("GET"))

	var called bool
	_, errs := Build([]Entry[string]{
		{Route: a, Value: "a"},
		{Route: b, Value: "b"},
	}, WithDuplicateHandler(func(existing, dup Entry[string]) {
		called = true
	}))

	assert.True(t, called)
	assert.NotEmpty(t, errs)
}

func TestAmbiguousRouteSetSkipsPredicateFreeSibling(t *testing.T) {
	pred, err := route.NewPredicate("X-Canary", route.Eq, "on")
	require.NoError(t, err)

	withPred := route.New("canary", mustExact(t, "/feature"), route.WithMethods("GET"), route.WithHeaderPredicate(pred))
	without := route.New("default", mustExact(t, "/feature"), route.WithMethods("GET"))

	r, _ := Build([]Entry[string]{
		{Route: withPred, Value: "canary"},
		{Route: without, Value: "default"},
	})

	assert.True(t, r.IsAmbiguous("canary"))
	assert.True(t, r.IsAmbiguous("default"))
}
