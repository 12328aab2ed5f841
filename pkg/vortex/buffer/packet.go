package buffer

import "strconv"

// smallInts holds pre-formatted decimal strings for the integers most
// commonly appended to a response packet (status codes, small
// Content-Length values, chunk sizes). The table saves formatting for these
// values; anything outside it is formatted on demand. In both cases the
// string is copied into a new byte slice when appended.
var smallInts [256]string

func init() {
	for i := range smallInts {
		smallInts[i] = strconv.Itoa(i)
	}
}

// fragment is one piece of a Packet: a byte view plus, if the view borrows
// into a pooled Buffer rather than a static string, the Buffer that must be
// released once the fragment is no longer needed.
type fragment struct {
	view  []byte
	owner *Buffer
}

// Packet is either a single fragment or an ordered list of fragments
// (scatter-gather); Views exposes them in order for writing.
//
// Invariant: the sum of fragment lengths always equals Size(); converting
// from the single shape to the multiple shape preserves byte order and
// total length; appending an empty Packet is a no-op; a zero-value or
// Released Packet is empty.
type Packet struct {
	single   fragment
	hasOne   bool
	multiple []fragment
	total    int
}

// Empty reports whether the packet carries no bytes.
func (p *Packet) Empty() bool {
	return p.total == 0
}

// Size returns the total byte count across all fragments.
func (p *Packet) Size() int {
	return p.total
}

// AppendView appends a byte view to the packet. If the view does not
// reference a process-lifetime static string, owner must be supplied so the
// backing Buffer can be released once the packet is flushed; owner's
// refcount is implicitly transferred to (and later released by) the packet.
func (p *Packet) AppendView(view []byte, owner *Buffer) {
	if len(view) == 0 {
		return
	}
	f := fragment{view: view, owner: owner}
	p.appendFragment(f)
}

// AppendStatic appends a view into a process-lifetime static string (e.g. a
// status line constant); no owning Buffer is required or retained.
func (p *Packet) AppendStatic(view []byte) {
	p.AppendView(view, nil)
}

// AppendInt appends the decimal representation of n, taken from the shared
// small-integer table when n is in range and formatted otherwise. Every call
// allocates a byte slice for the appended text.
func (p *Packet) AppendInt(n int) {
	var s string
	if n >= 0 && n < len(smallInts) {
		s = smallInts[n]
	} else {
		s = strconv.Itoa(n)
	}
	p.AppendStatic([]byte(s))
}

// Append concatenates another packet's fragments onto this one. The source
// packet is left empty (its fragments' ownership moves here) — mirroring
// the C++ original's "source becomes empty" append-packet semantics.
func (p *Packet) Append(src *Packet) {
	if src == nil || src.Empty() {
		return
	}
	if src.hasOne {
		p.appendFragment(src.single)
	} else {
		for _, f := range src.multiple {
			p.appendFragment(f)
		}
	}
	src.single = fragment{}
	src.hasOne = false
	src.multiple = nil
	src.total = 0
}

func (p *Packet) appendFragment(f fragment) {
	switch {
	case p.total == 0 && p.multiple == nil:
		// Still single-or-empty: remain single.
		p.single = f
		p.hasOne = true
	case p.multiple == nil:
		// Promote single -> multiple, preserving order.
		p.multiple = make([]fragment, 0, 4)
		p.multiple = append(p.multiple, p.single)
		p.multiple = append(p.multiple, f)
		p.single = fragment{}
		p.hasOne = false
	default:
		p.multiple = append(p.multiple, f)
	}
	p.total += len(f.view)
}

// GetIfSingle returns the single fragment's view and true if the packet is
// in the single-fragment shape.
func (p *Packet) GetIfSingle() ([]byte, bool) {
	if p.hasOne {
		return p.single.view, true
	}
	return nil, false
}

// GetIfMultiple returns the ordered fragment views and true if the packet
// holds more than one fragment.
func (p *Packet) GetIfMultiple() ([][]byte, bool) {
	if p.multiple == nil {
		return nil, false
	}
	views := make([][]byte, len(p.multiple))
	for i, f := range p.multiple {
		views[i] = f.view
	}
	return views, true
}

// Views returns every fragment's view regardless of shape, suitable for a
// single writev (net.Buffers) call.
func (p *Packet) Views() [][]byte {
	if p.hasOne {
		return [][]byte{p.single.view}
	}
	if p.multiple == nil {
		return nil
	}
	views := make([][]byte, len(p.multiple))
	for i, f := range p.multiple {
		views[i] = f.view
	}
	return views
}

// Release releases every owned Buffer referenced by this packet's fragments
// and resets it to empty. Call once after the packet has been flushed to
// the wire.
func (p *Packet) Release() {
	if p.hasOne {
		p.single.owner.Release()
	} else {
		for _, f := range p.multiple {
			f.owner.Release()
		}
	}
	p.single = fragment{}
	p.hasOne = false
	p.multiple = nil
	p.total = 0
}
