package container

import (
	"errors"
	"reflect"
)

// funcFactory wraps a plain Go function as a Factory, with the container
// and per-request storage bound ahead of time by Func0/Func1/Func2.
type funcFactory struct {
	fn func(c *Container, s *Storage) (any, error)
}

func (f *funcFactory) resolve(c *Container, s *Storage) (any, error) { return f.fn(c, s) }

// Func0 wraps a no-argument constructor function as a Factory.
func Func0[T any](fn func() (T, error)) Factory {
	return &funcFactory{fn: func(*Container, *Storage) (any, error) { return fn() }}
}

// Func1 wraps a constructor function that takes the owning Container — for
// factories that need to resolve further dependencies dynamically rather
// than through Constructor's static parameter inspection.
func Func1[T any](fn func(c *Container) (T, error)) Factory {
	return &funcFactory{fn: func(c *Container, _ *Storage) (any, error) { return fn(c) }}
}

// Func2 wraps a constructor function that takes both the owning Container
// and the current request's Storage.
func Func2[T any](fn func(c *Container, s *Storage) (T, error)) Factory {
	return &funcFactory{fn: func(c *Container, s *Storage) (any, error) { return fn(c, s) }}
}

// exceptionFactory always fails, reporting message. Registering one is the
// idiom for reserving a service type while flagging that nothing provides
// it yet — a wiring mistake surfaces as a ResolutionError naming the
// message at first use, rather than a nil-pointer panic deep in a handler.
type exceptionFactory struct {
	message string
}

func (f *exceptionFactory) resolve(*Container, *Storage) (any, error) {
	return nil, errors.New(f.message)
}

// Exception registers a Factory that always fails with message when
// resolved.
func Exception(message string) Factory {
	return &exceptionFactory{message: message}
}

// dependencyParam describes one parameter of a constructor function
// wrapped by Constructor: either a single dependency (resolved via Get) or
// a slice-typed collection dependency (resolved via GetMany).
type dependencyParam struct {
	paramType    reflect.Type
	elemType     reflect.Type
	isCollection bool
	list         *descriptorList
}

// ctorFactory is the reflection-based constructor-injection factory. Its
// parameter list is inspected once, at Constructor call time, and each
// parameter's descriptor list is pre-fetched then — so a later resolve
// walks a fixed slice of already-bound descriptorLists instead of touching
// the container's type-keyed map again.
type ctorFactory struct {
	ctor reflect.Value
	deps []dependencyParam
}

func (f *ctorFactory) resolve(c *Container, s *Storage) (any, error) {
	args := make([]reflect.Value, len(f.deps))
	for i, dep := range f.deps {
		if dep.isCollection {
			items := dep.list.all()
			slice := reflect.MakeSlice(dep.paramType, 0, len(items))
			for _, d := range items {
				v, err := d.resolve(c, s)
				if err != nil {
					return nil, err
				}
				slice = reflect.Append(slice, reflect.ValueOf(v))
			}
			args[i] = slice
			continue
		}
		d, ok := dep.list.last()
		if !ok {
			return nil, &ResolutionError{Type: dep.elemType.String()}
		}
		v, err := d.resolve(c, s)
		if err != nil {
			return nil, err
		}
		args[i] = reflect.ValueOf(v)
	}

	out := f.ctor.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// Constructor builds a Factory from ctor, a function whose parameters are
// themselves service types (or, for a slice parameter type []X, the
// collection of every descriptor registered for X). ctor must return
// either a single value assignable to T, or (T, error).
//
// Each parameter's descriptor list is fetched from c immediately, not
// lazily, creating an empty list for a type nothing has registered yet.
// Because the factory holds the list itself, descriptors added for a
// dependency after Constructor runs are still seen at resolve time.
func Constructor[T any](c *Container, ctor any) Factory {
	cv := reflect.ValueOf(ctor)
	ct := cv.Type()
	if ct.Kind() != reflect.Func {
		panic("container: Constructor requires a function value")
	}
	if ct.NumOut() != 1 && ct.NumOut() != 2 {
		panic("container: constructor must return (T) or (T, error)")
	}

	deps := make([]dependencyParam, ct.NumIn())
	for i := 0; i < ct.NumIn(); i++ {
		pt := ct.In(i)
		dep := dependencyParam{paramType: pt}
		if pt.Kind() == reflect.Slice {
			dep.isCollection = true
			dep.elemType = pt.Elem()
			dep.list = c.listFor(dep.elemType)
		} else {
			dep.elemType = pt
			dep.list = c.listFor(pt)
		}
		deps[i] = dep
	}

	return &ctorFactory{ctor: cv, deps: deps}
}
