package server

import "github.com/coreway/httpcore/decorator"

// RequestContext is the value a ServiceConfig's Handler receives: the
// decorator.Context built for the request, plus the parameters
// ParamBinder resolved from path, query, and (when aggregation fired)
// form data.
type RequestContext struct {
	decorator.Context
	Params map[string]interface{}
}

// Param returns the bound value for name, or nil if it was optional
// and absent.
func (c *RequestContext) Param(name string) interface{} { return c.Params[name] }
