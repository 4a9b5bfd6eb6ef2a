package server

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

func noopHandler(*RequestContext) (*http.Response, error) {
	return &http.Response{StatusCode: http.StatusOK}, nil
}

func TestVirtualHostFindsRegisteredRoute(t *testing.T) {
	vh, errs := NewVirtualHost(
		[]RouteDef{{ID: "users", Pattern: mustExact(t, "/users"), Service: ServiceConfig{Name: "users", Handler: noopHandler}}},
		nil,
		ServiceConfig{Name: "fallback", Handler: noopHandler},
		64,
		nil,
	)
	require.Empty(t, errs)

	ctx := route.NewContext(httpRequest(t, "GET", "/users"))
	m, ok := vh.Find(ctx)
	require.True(t, ok)
	assert.True(t, m.Result.FullMatch)
	assert.Equal(t, "users", m.Value.Name)
}

func TestVirtualHostFallsBackWhenNoCandidate(t *testing.T) {
	vh, errs := NewVirtualHost(
		[]RouteDef{{ID: "users", Pattern: mustExact(t, "/users"), Service: ServiceConfig{Name: "users", Handler: noopHandler}}},
		nil,
		ServiceConfig{Name: "fallback", Handler: noopHandler},
		64,
		nil,
	)
	require.Empty(t, errs)

	ctx := route.NewContext(httpRequest(t, "GET", "/missing"))
	_, ok := vh.Find(ctx)
	assert.False(t, ok)
	assert.Equal(t, "fallback", vh.Fallback().Name)
}

func TestVirtualHostInstallsTrailingSlashFallback(t *testing.T) {
	dir, err := route.NewPrefix("/users/")
	require.NoError(t, err)
	vh, errs := NewVirtualHost(
		[]RouteDef{{ID: "users-dir", Pattern: dir, Service: ServiceConfig{Name: "users-dir", Handler: noopHandler}}},
		nil,
		ServiceConfig{Name: "fallback", Handler: noopHandler},
		64,
		nil,
	)
	require.Empty(t, errs)

	ctx := route.NewContext(httpRequest(t, "GET", "/users"))
	m, ok := vh.Find(ctx)
	require.True(t, ok)
	assert.Equal(t, "fallback", m.Value.Name)
}
