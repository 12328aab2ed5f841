// Package message implements the Request and Response data objects: plain
// structures that own their backing buffers, headers, and (for Request) an
// optional body input stream.
package message

import (
	"github.com/yourusername/vortex/pkg/vortex/buffer"
	"github.com/yourusername/vortex/pkg/vortex/header"
	"github.com/yourusername/vortex/pkg/vortex/stream"
)

// Request owns every buffer its method/URL/version/header views borrow
// into, plus an optional body stream.
//
// Invariant: every view stored on a Request points into one of the buffers
// in its owned-buffers list, unless it is a process-lifetime static string
// (e.g. a pre-compiled constant). AddBuffer must be called for every Buffer
// a view borrows from before that view is stored.
type Request struct {
	Method  []byte
	URL     []byte
	Version []byte
	Headers header.Headers
	Body    stream.InputStream

	ContentLength int64 // -1 if unknown
	Close         bool  // Connection: close requested or implied
	RemoteAddr    string

	buffers []*buffer.Buffer
}

// AddBuffer records a Buffer this Request's views borrow into. The Request
// takes ownership and releases it on Reset.
func (r *Request) AddBuffer(b *buffer.Buffer) {
	r.buffers = append(r.buffers, b)
}

// Path returns the path portion of URL, splitting off any query string.
func (r *Request) Path() []byte {
	for i, c := range r.URL {
		if c == '?' {
			return r.URL[:i]
		}
	}
	return r.URL
}

// Query returns the query portion of URL (without the leading '?'), or nil
// if none is present.
func (r *Request) Query() []byte {
	for i, c := range r.URL {
		if c == '?' {
			return r.URL[i+1:]
		}
	}
	return nil
}

// Reset clears every field (ContentLength back to -1) and releases every
// owned buffer. Requests are not pooled: the parser allocates a new one
// for each request.
func (r *Request) Reset() {
	for _, b := range r.buffers {
		b.Release()
	}
	r.buffers = r.buffers[:0]
	r.Method = nil
	r.URL = nil
	r.Version = nil
	r.Headers.Clear()
	r.Body = nil
	r.ContentLength = -1
	r.Close = false
	r.RemoteAddr = ""
}
