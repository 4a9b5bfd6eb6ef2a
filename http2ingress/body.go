package http2ingress

import "io"

// Body is the back-pressure-aware handle to a stream's request body.
// append is called by Connection.HandleData on the goroutine driving
// the Connection, and io.Pipe's Write blocks that goroutine until a
// reader catches up — that blocking is the back-pressure signal:
// FlowController.Consume only runs, crediting window back to the
// peer, once the write returns.
type Body struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func newBody() *Body {
	r, w := io.Pipe()
	return &Body{r: r, w: w}
}

func (b *Body) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *Body) Close() error                { return b.r.Close() }

// append writes data to the pipe and, when end is set, closes the
// write side so readers see io.EOF after draining the buffered bytes.
func (b *Body) append(data []byte, end bool) error {
	if len(data) > 0 {
		if _, err := b.w.Write(data); err != nil {
			return err
		}
	}
	if end {
		return b.w.Close()
	}
	return nil
}

func (b *Body) abort(err error) {
	b.w.CloseWithError(err)
	b.r.CloseWithError(err)
}
