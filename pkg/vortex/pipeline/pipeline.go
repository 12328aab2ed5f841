// Package pipeline implements the request-handling chain a routed request
// runs through: an ordered list of Handlers invoked via a forward-only
// iterator, each one choosing whether to call the next.
package pipeline

import (
	"github.com/yourusername/vortex/pkg/vortex/container"
	"github.com/yourusername/vortex/pkg/vortex/message"
)

// Context carries one request's mutable state through the pipeline: the
// Request/Response pair, the request-scoped dependency Storage, and route
// parameters extracted by the router.
type Context struct {
	Request  *message.Request
	Response *message.Response
	Storage  *container.Storage
	Services *container.Container

	params []param
}

type param struct {
	key   string
	value []byte
}

// SetParam records a route parameter captured while matching a pattern
// segment against the request path.
func (c *Context) SetParam(key string, value []byte) {
	c.params = append(c.params, param{key: key, value: value})
}

// Param returns the named route parameter, or nil if no segment bound it.
func (c *Context) Param(key string) []byte {
	for _, p := range c.params {
		if p.key == key {
			return p.value
		}
	}
	return nil
}

// Reset clears per-request state so a Context can be reused from a pool.
func (c *Context) Reset() {
	c.Request = nil
	c.Response = nil
	c.Storage = nil
	c.params = c.params[:0]
}

// Handler is one link in a Pipeline. Calling next() invokes the next
// handler in the chain; a handler that returns without calling next short-
// circuits the remainder of the pipeline.
type Handler interface {
	Handle(ctx *Context, next Next) error
}

// Next invokes the next handler in the pipeline, or the pipeline's
// terminal handler once every registered handler has run.
type Next func() error

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx *Context, next Next) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx *Context, next Next) error { return f(ctx, next) }

// Pipeline is an ordered chain of Handlers plus a terminal handler invoked
// once the chain is exhausted without an earlier handler short-circuiting.
type Pipeline struct {
	handlers []Handler
	terminal Handler
}

// New returns a Pipeline whose chain ends at terminal once every handler
// added with Use has run and called next. A nil terminal installs NotFound.
func New(terminal Handler) *Pipeline {
	if terminal == nil {
		terminal = NotFound
	}
	return &Pipeline{terminal: terminal}
}

// Use appends a Handler to the end of the chain.
func (p *Pipeline) Use(h Handler) *Pipeline {
	p.handlers = append(p.handlers, h)
	return p
}

// Run drives ctx through the chain starting at the first handler.
func (p *Pipeline) Run(ctx *Context) error {
	it := iterator{handlers: p.handlers, terminal: p.terminal, ctx: ctx}
	return it.next()
}

// iterator is the forward-only cursor each Handler advances by calling
// next(). It never rewinds: a Handler can only move later handlers
// forward, never re-invoke one already passed.
type iterator struct {
	handlers []Handler
	terminal Handler
	ctx      *Context
	pos      int
}

func (it *iterator) next() error {
	if it.pos >= len(it.handlers) {
		if it.terminal == nil {
			return nil
		}
		t := it.terminal
		it.terminal = nil // terminal runs at most once
		return t.Handle(it.ctx, it.next)
	}
	h := it.handlers[it.pos]
	it.pos++
	return h.Handle(it.ctx, it.next)
}
