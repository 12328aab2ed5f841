// Package container implements the type-keyed service descriptor registry
// described in the HTTP/1.x core's dependency-injection component: services
// are registered against a service type with one of three lifetimes, and
// resolved either singly (last-registered wins) or as a collection (every
// registered descriptor, in registration order).
//
// The C++ original resolves this at compile time via a dependency tuple and
// an index sequence; Go has no such template mechanism, so this container
// follows the runtime-reflected alternative the original's own design notes
// call out: descriptor collections keyed by reflect.Type. A Constructor
// factory pre-fetches its dependencies' collections once, when it is built,
// so resolving those dependencies is a direct pointer dereference rather
// than a map lookup; Get and GetMany still look up T's collection by type.
package container

import (
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Lifetime controls how many times, and for how long, a factory's instance
// is reused.
type Lifetime int

const (
	// Transient invokes the factory on every resolve.
	Transient Lifetime = iota
	// Persistent invokes the factory once, caching the instance inside the
	// descriptor for the container's lifetime.
	Persistent
	// StoragePersistent caches the instance inside the per-request Storage
	// passed to Get/GetMany, so it is reused within one request cycle and
	// reconstructed for the next.
	StoragePersistent
)

// Factory produces one instance of a service. Implementations are the
// tagged-variant alternatives described in the HTTP/1.x core design notes:
// constructor-injection, plain function, and sentinel-exception factories.
type Factory interface {
	resolve(c *Container, s *Storage) (any, error)
}

// Descriptor binds a service type to a factory under a lifetime policy.
type Descriptor struct {
	typ       reflect.Type
	lifetime  Lifetime
	factory   Factory
	resolving bool // in-resolve marker, detects dependency cycles

	cacheMu   sync.Mutex
	cached    any
	hasCached bool
	group     singleflight.Group // coalesces concurrent first-resolves of a Persistent descriptor
}

func newDescriptor(typ reflect.Type, lifetime Lifetime, f Factory) *Descriptor {
	return &Descriptor{typ: typ, lifetime: lifetime, factory: f}
}

// resolve applies this descriptor's lifetime policy, invoking the factory
// at most once for Persistent descriptors and at most once per Storage for
// StoragePersistent ones.
func (d *Descriptor) resolve(c *Container, s *Storage) (any, error) {
	switch d.lifetime {
	case Persistent:
		return d.resolvePersistent(c, s)
	case StoragePersistent:
		return d.resolveStoragePersistent(c, s)
	default:
		return d.invoke(c, s)
	}
}

// resolvePersistent caches the factory's result for the container's
// lifetime. Concurrent first-resolves from different connection goroutines
// are coalesced through group so the factory runs exactly once; cacheMu
// only ever guards the cached/hasCached fields themselves, never the
// factory call.
func (d *Descriptor) resolvePersistent(c *Container, s *Storage) (any, error) {
	d.cacheMu.Lock()
	if d.hasCached {
		v := d.cached
		d.cacheMu.Unlock()
		return v, nil
	}
	d.cacheMu.Unlock()

	v, err, _ := d.group.Do("", func() (any, error) {
		d.cacheMu.Lock()
		if d.hasCached {
			v := d.cached
			d.cacheMu.Unlock()
			return v, nil
		}
		d.cacheMu.Unlock()

		v, err := d.invoke(c, s)
		if err != nil {
			return nil, err
		}
		d.cacheMu.Lock()
		d.cached = v
		d.hasCached = true
		d.cacheMu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Descriptor) resolveStoragePersistent(c *Container, s *Storage) (any, error) {
	if s == nil {
		return d.invoke(c, s)
	}
	if v, ok := s.get(d); ok {
		return v, nil
	}
	v, err := d.invoke(c, s)
	if err != nil {
		return nil, err
	}
	s.set(d, v)
	return v, nil
}

func (d *Descriptor) invoke(c *Container, s *Storage) (any, error) {
	if d.resolving {
		return nil, &CycleError{Type: d.typ.String()}
	}
	d.resolving = true
	defer func() { d.resolving = false }()
	return d.factory.resolve(c, s)
}

// descriptorList is the ordered, mutable collection of descriptors
// registered for one service type. Holding it behind a pointer (rather than
// a map[reflect.Type][]*Descriptor value) lets a constructor factory
// pre-fetch the list once at registration and keep resolving against the
// same object as later registrations append to it.
type descriptorList struct {
	mu    sync.RWMutex
	items []*Descriptor
}

func (dl *descriptorList) add(d *Descriptor) {
	dl.mu.Lock()
	dl.items = append(dl.items, d)
	dl.mu.Unlock()
}

func (dl *descriptorList) last() (*Descriptor, bool) {
	dl.mu.RLock()
	defer dl.mu.RUnlock()
	if len(dl.items) == 0 {
		return nil, false
	}
	return dl.items[len(dl.items)-1], true
}

func (dl *descriptorList) all() []*Descriptor {
	dl.mu.RLock()
	defer dl.mu.RUnlock()
	out := make([]*Descriptor, len(dl.items))
	copy(out, dl.items)
	return out
}

// Container is the type-keyed descriptor registry. It is safe for
// concurrent use: unlike the single-reactor-per-core model the original
// assumes, handlers here run on
// a goroutine per connection (see DESIGN.md, "Open Question — concurrency
// model"), so registration and resolution both take a lock: the
// container's mutex for the type lookup, then a read lock on the
// descriptor list.
type Container struct {
	mu          sync.Mutex
	descriptors map[reflect.Type]*descriptorList
}

// New returns an empty Container.
func New() *Container {
	return &Container{descriptors: make(map[reflect.Type]*descriptorList)}
}

// listFor returns the descriptor list for typ, creating an empty one if
// this is the first reference to typ (as a registration or as a
// constructor-factory dependency).
func (c *Container) listFor(typ reflect.Type) *descriptorList {
	c.mu.Lock()
	defer c.mu.Unlock()
	dl, ok := c.descriptors[typ]
	if !ok {
		dl = &descriptorList{}
		c.descriptors[typ] = dl
	}
	return dl
}

// TypeOf returns the reflect.Type for T, including interface types (for
// which reflect.TypeOf(v) alone would yield the concrete type instead).
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Add registers a Factory for service type T under the given lifetime.
// Descriptors for the same T accumulate in registration order; Get resolves
// the most recently added one.
func Add[T any](c *Container, lifetime Lifetime, factory Factory) *Descriptor {
	typ := TypeOf[T]()
	d := newDescriptor(typ, lifetime, factory)
	c.listFor(typ).add(d)
	return d
}

// Get resolves the last descriptor registered for T. storage may be nil if
// T has no StoragePersistent descriptor reachable from this call.
func Get[T any](c *Container, storage *Storage) (T, error) {
	var zero T
	typ := TypeOf[T]()
	dl := c.listFor(typ)
	d, ok := dl.last()
	if !ok {
		return zero, &ResolutionError{Type: typ.String()}
	}
	v, err := d.resolve(c, storage)
	if err != nil {
		return zero, &ResolutionError{Type: typ.String(), Err: err}
	}
	out, ok := v.(T)
	if !ok {
		return zero, &ResolutionError{Type: typ.String()}
	}
	return out, nil
}

// GetMany resolves every descriptor registered for T, in registration
// order.
func GetMany[T any](c *Container, storage *Storage) ([]T, error) {
	typ := TypeOf[T]()
	dl := c.listFor(typ)
	items := dl.all()
	out := make([]T, 0, len(items))
	for _, d := range items {
		v, err := d.resolve(c, storage)
		if err != nil {
			return nil, &ResolutionError{Type: typ.String(), Err: err}
		}
		tv, ok := v.(T)
		if !ok {
			return nil, &ResolutionError{Type: typ.String()}
		}
		out = append(out, tv)
	}
	return out, nil
}
