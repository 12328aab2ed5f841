package container

import "fmt"

// ResolutionError indicates the container could not resolve a requested
// service type — either nothing was registered for it, or its factory
// itself failed.
type ResolutionError struct {
	Type string
	Err  error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("container: resolve %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("container: no service registered for %s", e.Type)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// CycleError indicates resolving a service re-entered its own resolution,
// detected via the in-resolve marker each Descriptor carries while its
// factory is running.
type CycleError struct {
	Type string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("container: dependency cycle detected resolving %s", e.Type)
}
