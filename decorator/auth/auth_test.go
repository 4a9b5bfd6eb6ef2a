package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreway/httpcore/decorator"
	"github.com/coreway/httpcore/decorator/accesslog"
)

func TestMissingHeaderRejected(t *testing.T) {
	s := NewSpec()
	d, err := s.CreateDecorator([]interface{}{"good-token"})
	require.NoError(t, err)

	ctx := decorator.NewContext(httptest.NewRequest("GET", "/x", nil), httptest.NewRecorder(), nil, "req")
	d.Request(ctx)

	require.True(t, ctx.Served())
	assert.Equal(t, http.StatusUnauthorized, ctx.Response().StatusCode)
	assert.Equal(t, "missing bearer token", ctx.StateBag()[accesslog.AuthRejectReasonKey])
}

func TestUnknownTokenRejected(t *testing.T) {
	s := NewSpec()
	d, err := s.CreateDecorator([]interface{}{"good-token"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	ctx := decorator.NewContext(req, httptest.NewRecorder(), nil, "req")
	d.Request(ctx)

	require.True(t, ctx.Served())
	assert.Equal(t, http.StatusUnauthorized, ctx.Response().StatusCode)
}

func TestKnownTokenForwardsAndRecordsUser(t *testing.T) {
	s := NewSpec()
	d, err := s.CreateDecorator([]interface{}{"good-token"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	ctx := decorator.NewContext(req, httptest.NewRecorder(), nil, "req")
	d.Request(ctx)

	assert.False(t, ctx.Served())
	assert.Equal(t, "good-token", ctx.StateBag()[accesslog.AuthUserKey])
}

func TestInvalidConfigRejected(t *testing.T) {
	s := NewSpec()
	_, err := s.CreateDecorator([]interface{}{7})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
