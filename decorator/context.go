package decorator

import "net/http"

// reqContext is the concrete Context built once per request by the
// dispatcher before invoking a Chain.
type reqContext struct {
	request   *http.Request
	rw        http.ResponseWriter
	response  *http.Response
	served    bool
	params    map[string]string
	stateBag  map[string]interface{}
	requestID string
}

// NewContext builds a Context for one request, binding the path
// parameters the winning route produced and a pre-generated request
// id (component G allocates one per HTTP/2 stream).
func NewContext(r *http.Request, rw http.ResponseWriter, params map[string]string, requestID string) Context {
	return &reqContext{
		request:   r,
		rw:        rw,
		params:    params,
		stateBag:  map[string]interface{}{},
		requestID: requestID,
	}
}

func (c *reqContext) Request() *http.Request             { return c.request }
func (c *reqContext) ResponseWriter() http.ResponseWriter { return c.rw }
func (c *reqContext) Response() *http.Response            { return c.response }
func (c *reqContext) SetResponse(resp *http.Response)     { c.response = resp }

func (c *reqContext) Serve(resp *http.Response) {
	c.response = resp
	c.served = true
}

func (c *reqContext) Served() bool { return c.served }

func (c *reqContext) PathParam(name string) string { return c.params[name] }

func (c *reqContext) StateBag() map[string]interface{} { return c.stateBag }

func (c *reqContext) RequestID() string { return c.requestID }
