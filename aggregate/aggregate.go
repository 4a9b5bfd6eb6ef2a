// Package aggregate implements the RequestAggregator: an optional
// buffer-to-completion transform that lets a handler see the whole
// request body (and, for form submissions, its decoded fields) instead
// of a streamed reader.
package aggregate

import (
	"io"
	"mime"
	"net/url"

	"github.com/coreway/httpcore/core"
)

// Strategy selects when a route's handler wants the body buffered
// ahead of dispatch, decided once at server-build time from the
// handler's declared parameter bindings.
type Strategy int

const (
	// None never buffers; the handler reads the body stream directly.
	None Strategy = iota
	// Always buffers every request regardless of content type.
	Always
	// OnlyForFormData buffers only application/x-www-form-urlencoded
	// requests, so a form-binding parameter can be satisfied.
	OnlyForFormData
)

// Aggregator buffers a body stream up to maxBody bytes, grounded on
// the same bounded-tee pattern as the accesslog decorator's upstream
// teaching file: read with a hard cutoff rather than trusting
// Content-Length.
type Aggregator struct {
	maxBody int64
}

func New(maxBody int64) *Aggregator { return &Aggregator{maxBody: maxBody} }

// ShouldAggregate reports whether strategy fires for a request with
// the given content type.
func (a *Aggregator) ShouldAggregate(strategy Strategy, contentType string) bool {
	switch strategy {
	case Always:
		return true
	case OnlyForFormData:
		mt, _, _ := mime.ParseMediaType(contentType)
		return mt == "application/x-www-form-urlencoded"
	default:
		return false
	}
}

// Aggregate reads body to completion, returning core.PayloadTooLarge
// if it exceeds maxBody.
func (a *Aggregator) Aggregate(body io.Reader) ([]byte, error) {
	limited := io.LimitReader(body, a.maxBody+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, core.Wrap(core.Internal, "read aggregated body", err)
	}
	if int64(len(data)) > a.maxBody {
		return nil, core.New(core.PayloadTooLarge, "aggregated body exceeds limit")
	}
	return data, nil
}

// DecodeForm parses an aggregated application/x-www-form-urlencoded
// body into its field values.
func DecodeForm(data []byte) (url.Values, error) {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, core.Wrap(core.BadRequest, "invalid form body", err)
	}
	return values, nil
}
