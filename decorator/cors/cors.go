// Package cors implements a CORS response decorator: it sets
// Access-Control-Allow-Origin either to a fixed "*" or, when the
// route was built with an explicit allow-list, to the request's
// Origin header when present in that list.
package cors

import (
	"errors"

	"github.com/coreway/httpcore/decorator"
)

const allowOriginHeader = "Access-Control-Allow-Origin"

const Name = "cors"

var ErrInvalidConfig = errors.New("cors: allowed origins must all be strings")

type spec struct{}

func NewSpec() decorator.Spec { return spec{} }

func (spec) Name() string { return Name }

func (spec) CreateDecorator(config []interface{}) (decorator.Decorator, error) {
	d := &originDecorator{}
	for _, c := range config {
		origin, ok := c.(string)
		if !ok {
			return nil, ErrInvalidConfig
		}
		d.allowedOrigins = append(d.allowedOrigins, origin)
	}
	return d, nil
}

// originDecorator is stateless beyond its immutable allow-list, so one
// instance is safely shared across every request for the route it is
// bound to.
type originDecorator struct {
	allowedOrigins []string
}

func (d *originDecorator) Request(decorator.Context) {}

func (d *originDecorator) Response(ctx decorator.Context) {
	resp := ctx.Response()
	if resp == nil {
		return
	}

	if len(d.allowedOrigins) == 0 {
		resp.Header.Set(allowOriginHeader, "*")
		return
	}

	origin := ctx.Request().Header.Get("Origin")
	if origin == "" {
		return
	}
	for _, o := range d.allowedOrigins {
		if o == origin {
			resp.Header.Set(allowOriginHeader, o)
			return
		}
	}
}
