// Package auth implements a short-circuiting bearer-token decorator:
// requests missing a well-formed "Authorization: Bearer <token>"
// header, or whose token is not in the route's configured allow-set,
// are rejected with 401 before the backend is ever reached.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/coreway/httpcore/decorator"
	"github.com/coreway/httpcore/decorator/accesslog"
)

const Name = "bearerAuth"

const (
	authHeaderName   = "Authorization"
	authHeaderPrefix = "Bearer "
)

var ErrInvalidConfig = errors.New("auth: tokens must all be strings")

type spec struct{}

func NewSpec() decorator.Spec { return spec{} }

func (spec) Name() string { return Name }

func (spec) CreateDecorator(config []interface{}) (decorator.Decorator, error) {
	d := &bearerAuth{tokens: map[string]struct{}{}}
	for _, c := range config {
		token, ok := c.(string)
		if !ok {
			return nil, ErrInvalidConfig
		}
		d.tokens[token] = struct{}{}
	}
	return d, nil
}

type bearerAuth struct {
	tokens map[string]struct{}
}

func (d *bearerAuth) Request(ctx decorator.Context) {
	token, ok := bearerToken(ctx.Request())
	if !ok {
		reject(ctx, "", "missing bearer token")
		return
	}
	if _, known := d.tokens[token]; !known {
		reject(ctx, "", "unknown token")
		return
	}
	ctx.StateBag()[accesslog.AuthUserKey] = token
}

func (*bearerAuth) Response(decorator.Context) {}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(authHeaderName)
	if !strings.HasPrefix(h, authHeaderPrefix) {
		return "", false
	}
	return h[len(authHeaderPrefix):], true
}

func reject(ctx decorator.Context, username, reason string) {
	ctx.StateBag()[accesslog.AuthUserKey] = username
	ctx.StateBag()[accesslog.AuthRejectReasonKey] = reason
	ctx.Serve(&http.Response{
		StatusCode: http.StatusUnauthorized,
		Header:     http.Header{"WWW-Authenticate": {"Bearer"}},
	})
}
