// Package buffer implements a reference-counted byte buffer and a
// scatter-gather packet accumulator that holds a response body as an
// ordered list of byte views.
package buffer

import (
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// store is the shared backing allocation for one or more Buffer handles.
// It is returned to the pool once the last handle releases it.
type store struct {
	refs atomic.Int32
	bb   *bytebufferpool.ByteBuffer
}

func (s *store) retain() {
	s.refs.Add(1)
}

func (s *store) release() {
	if s.refs.Add(-1) == 0 {
		bytebufferpool.Put(s.bb)
	}
}

// Buffer is an owned, contiguous span of bytes backed by a refcounted
// store. Multiple Buffer handles (and every view carved from Share) may
// point into the same store; the store is only returned to the pool once
// every handle has released it.
//
// Buffer is move-only at the handle level: copying a Buffer value directly
// duplicates the handle without bumping the refcount, which double-frees
// the backing store. Use Share or Retain to create additional handles.
type Buffer struct {
	s      *store
	offset int
	length int
}

// New allocates a Buffer of at least size bytes from the shared pool.
func New(size int) *Buffer {
	bb := bytebufferpool.Get()
	if cap(bb.B) < size {
		bb.B = make([]byte, size)
	} else {
		bb.B = bb.B[:size]
	}
	s := &store{bb: bb}
	s.refs.Store(1)
	return &Buffer{s: s, offset: 0, length: size}
}

// FromBytes wraps an already-owned slice as a single-refcount Buffer.
// Used for data that did not come from the pool (e.g. a parser's read
// buffer promoted into a Request's owned-buffers list).
func FromBytes(b []byte) *Buffer {
	bb := &bytebufferpool.ByteBuffer{B: b}
	s := &store{bb: bb}
	s.refs.Store(1)
	return &Buffer{s: s, offset: 0, length: len(b)}
}

// Bytes returns the byte span this handle owns. The returned slice is only
// valid while this Buffer (or a Share()/Retain() descendant) is alive.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.s == nil {
		return nil
	}
	return b.s.bb.B[b.offset : b.offset+b.length]
}

// Len returns the length of this handle's span.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return b.length
}

// Share returns a new handle over [offset, offset+length) of the same
// backing store, incrementing the refcount. Both handles must be released
// independently.
func (b *Buffer) Share(offset, length int) *Buffer {
	if offset < 0 || length < 0 || offset+length > b.length {
		panic("buffer: share range out of bounds")
	}
	b.s.retain()
	return &Buffer{s: b.s, offset: b.offset + offset, length: length}
}

// Retain returns a second handle to the entire span, incrementing the
// refcount. Equivalent to Share(0, Len()).
func (b *Buffer) Retain() *Buffer {
	return b.Share(0, b.length)
}

// Release decrements the refcount, returning the backing allocation to the
// pool once the last handle has been released. Releasing a nil Buffer, or
// the same handle twice, is a no-op; a copied Buffer value is not tracked
// (see above) — unlike the C++ original there is no destructor to make
// release automatic.
func (b *Buffer) Release() {
	if b == nil || b.s == nil {
		return
	}
	b.s.release()
	b.s = nil
}
