// Package compress implements response body compression as a
// pipeline.Handler: it runs the rest of the chain into a scratch buffer,
// then — if the client's Accept-Encoding allows it and the body is worth
// compressing — replaces the response Packet with a compressed one and
// sets Content-Encoding.
package compress

import (
	"bytes"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"github.com/yourusername/vortex/pkg/vortex/header"
	"github.com/yourusername/vortex/pkg/vortex/pipeline"
)

// MinSize is the smallest response body this middleware will bother
// compressing; smaller bodies cost more in framing overhead than they
// save.
const MinSize = 256

var gzipWriterPool = sync.Pool{
	New: func() any { return gzip.NewWriter(nil) },
}

var brotliWriterPool = sync.Pool{
	New: func() any { return brotli.NewWriter(nil) },
}

// Handler negotiates gzip or brotli encoding for the response body
// produced by the rest of the pipeline.
type Handler struct {
	// Level is the gzip compression level (gzip.DefaultCompression if 0).
	Level int
}

// New returns a Handler using the default compression level.
func New() *Handler { return &Handler{} }

func (h *Handler) Handle(ctx *pipeline.Context, next pipeline.Next) error {
	if err := next(); err != nil {
		return err
	}

	if _, ok := ctx.Response.Headers.GetSlot(header.ContentEncoding); ok {
		return nil
	}
	if ctx.Response.Out.Size() < MinSize {
		return nil
	}

	accept := ctx.Request.Headers.Get([]byte("Accept-Encoding"))
	switch {
	case bytes.Contains(accept, []byte("br")):
		h.compressBrotli(ctx)
	case bytes.Contains(accept, []byte("gzip")):
		h.compressGzip(ctx)
	}
	return nil
}

func (h *Handler) compressGzip(ctx *pipeline.Context) {
	var src bytes.Buffer
	for _, v := range ctx.Response.Out.Views() {
		src.Write(v)
	}

	var dst bytes.Buffer
	w := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(w)
	w.Reset(&dst)
	if h.Level != 0 && h.Level != gzip.DefaultCompression {
		if lw, err := gzip.NewWriterLevel(&dst, h.Level); err == nil {
			w = lw
		}
	}
	if _, err := w.Write(src.Bytes()); err != nil {
		return
	}
	if err := w.Close(); err != nil {
		return
	}

	replaceBody(ctx, dst.Bytes(), "gzip")
}

func (h *Handler) compressBrotli(ctx *pipeline.Context) {
	views := ctx.Response.Out.Views()
	var src bytes.Buffer
	for _, v := range views {
		src.Write(v)
	}

	var dst bytes.Buffer
	w := brotliWriterPool.Get().(*brotli.Writer)
	defer brotliWriterPool.Put(w)
	w.Reset(&dst)
	if _, err := w.Write(src.Bytes()); err != nil {
		return
	}
	if err := w.Close(); err != nil {
		return
	}

	replaceBody(ctx, dst.Bytes(), "br")
}

func replaceBody(ctx *pipeline.Context, compressed []byte, encoding string) {
	ctx.Response.Out.Release()
	buf := make([]byte, len(compressed))
	copy(buf, compressed)
	ctx.Response.Out.AppendStatic(buf)
	ctx.Response.Headers.SetSlot(header.ContentEncoding, []byte(encoding))
}
