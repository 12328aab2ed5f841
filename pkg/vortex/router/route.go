package router

import "github.com/yourusername/vortex/pkg/vortex/pipeline"

// Route is one registered {method, pattern, handler} entry.
type Route struct {
	Method  string
	Pattern string
	Handler pipeline.Handler
}
