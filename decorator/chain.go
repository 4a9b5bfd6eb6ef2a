package decorator

// Service is the terminal handler at the end of a Chain: the actual
// backend round trip (or a local handler) that produces a response
// when no Decorator has short-circuited the request.
type Service interface {
	Serve(ctx Context) error
}

type ServiceFunc func(ctx Context) error

func (f ServiceFunc) Serve(ctx Context) error { return f(ctx) }

// Chain is the per-request dispatch queue: every Decorator bound to
// the matched route, in registration order, followed by the
// terminal Service. It is built fresh for each request from a slice
// owned by the Chain alone — no shared backing array, no linked list
// of borrowed nodes — so concurrent requests matching the same set of
// decorators never interfere with each other's walk state.
type Chain struct {
	decorators []Decorator
	service    Service
}

// NewChain copies decorators into a new backing slice the Chain owns.
func NewChain(decorators []Decorator, service Service) *Chain {
	owned := make([]Decorator, len(decorators))
	copy(owned, decorators)
	return &Chain{decorators: owned, service: service}
}

// Run walks the Request phase forward from the first decorator,
// stopping early if one of them calls ctx.Serve. It then invokes the
// terminal Service unless already served, and finally walks the
// Response phase backward over exactly the decorators whose Request
// method ran.
func (c *Chain) Run(ctx Context) error {
	ran := 0
	for _, d := range c.decorators {
		d.Request(ctx)
		ran++
		if ctx.Served() {
			break
		}
	}

	var err error
	if !ctx.Served() {
		err = c.service.Serve(ctx)
	}

	for i := ran - 1; i >= 0; i-- {
		c.decorators[i].Response(ctx)
	}

	return err
}
