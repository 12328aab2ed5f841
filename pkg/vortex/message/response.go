package message

import (
	"github.com/yourusername/vortex/pkg/vortex/buffer"
	"github.com/yourusername/vortex/pkg/vortex/header"
)

// Response is symmetric to Request: it owns its backing buffers and
// headers, plus the outbound Packet being accumulated and the
// status-code/status-message pair.
type Response struct {
	StatusCode    int
	StatusMessage string
	Headers       header.Headers
	Out           buffer.Packet

	started bool // a handler has begun writing body bytes
	buffers []*buffer.Buffer
}

// NewResponse returns a Response defaulted to 200 OK.
func NewResponse() *Response {
	r := &Response{}
	r.StatusCode = 200
	r.StatusMessage = "OK"
	return r
}

// AddBuffer records a Buffer this Response's views borrow into.
func (r *Response) AddBuffer(b *buffer.Buffer) {
	r.buffers = append(r.buffers, b)
}

// SetStatus sets the status code and its canonical reason phrase.
func (r *Response) SetStatus(code int, message string) {
	r.StatusCode = code
	r.StatusMessage = message
}

// Started reports whether body bytes have already been written — once
// true, the connection driver can no longer substitute an error response
// for this Response, per spec.md §7's "response has not begun" rule.
func (r *Response) Started() bool { return r.started }

// MarkStarted records that body output has begun.
func (r *Response) MarkStarted() { r.started = true }

// Reset releases every owned buffer and the outbound Packet and returns
// the Response to 200 OK with no headers. Responses are not pooled: the
// connection allocates a new one for each request.
func (r *Response) Reset() {
	for _, b := range r.buffers {
		b.Release()
	}
	r.buffers = r.buffers[:0]
	r.Out.Release()
	r.StatusCode = 200
	r.StatusMessage = "OK"
	r.Headers.Clear()
	r.started = false
}
