// Package router implements the per-method path-pattern trie: literal
// segments, a single-segment wildcard ("*"), and a trailing multi-segment
// wildcard ("**"), matched with literal > single-wildcard > multi-wildcard
// precedence.
package router

import (
	"strings"
	"sync"

	"github.com/yourusername/vortex/pkg/vortex/pipeline"
)

const defaultCacheSize = 1024

// RoutingHandler is a pipeline.Handler that dispatches to the route whose
// pattern matches the request path, or calls next if none matches. It is
// usually the last handler in a Pipeline.
type RoutingHandler struct {
	mu    sync.RWMutex
	trees map[string]*PatternTree
	cache *lruCache
}

// New returns an empty RoutingHandler. cacheSize bounds the number of
// recently matched paths kept in the lookup cache; 0 uses a default.
func New(cacheSize int) *RoutingHandler {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	return &RoutingHandler{
		trees: make(map[string]*PatternTree),
		cache: newLRUCache(cacheSize),
	}
}

// Route registers handler for method and pattern. "**" is only legal as
// the pattern's final segment.
func (h *RoutingHandler) Route(method, pattern string, handler pipeline.Handler) error {
	segments := splitSegments(pattern)
	if err := validatePattern(segments); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.trees[method]
	if !ok {
		t = NewPatternTree()
		h.trees[method] = t
	}
	t.insert(segments, &Route{Method: method, Pattern: pattern, Handler: handler})
	h.cache.removeAll()
	return nil
}

// RemoveRoute deletes the exact-pattern registration for method/pattern. It
// reports whether a route was removed.
func (h *RoutingHandler) RemoveRoute(method, pattern string) bool {
	segments := splitSegments(pattern)
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.trees[method]
	if !ok {
		return false
	}
	removed := t.remove(segments)
	if removed {
		h.cache.removeAll()
	}
	return removed
}

// GetRoute returns the route registered for the exact pattern (not by
// matching a concrete path against wildcards).
func (h *RoutingHandler) GetRoute(method, pattern string) (*Route, bool) {
	segments := splitSegments(pattern)
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.trees[method]
	if !ok {
		return nil, false
	}
	return t.getExact(segments)
}

// Handle matches ctx's request method and path against the registered
// patterns and invokes the winning handler. If nothing matches, it calls
// next.
func (h *RoutingHandler) Handle(ctx *pipeline.Context, next pipeline.Next) error {
	method := string(ctx.Request.Method)
	path := string(ctx.Request.Path())

	cacheKey := method + " " + path
	var result *matchResult
	if cached, ok := h.cache.get(cacheKey); ok {
		result = cached
	} else {
		h.mu.RLock()
		t, ok := h.trees[method]
		h.mu.RUnlock()
		if !ok {
			result = &matchResult{}
		} else {
			segments := splitSegments(path)
			route, wildcards, tailStart := t.match(segments)
			result = &matchResult{route: route, wildcards: wildcards, tailStart: tailStart}
			if route != nil && strings.HasSuffix(route.Pattern, "**") {
				result.wildcards = append(append([][]byte(nil), wildcards...), []byte(strings.Join(segments[tailStart:], "/")))
			}
		}
		h.cache.set(cacheKey, result)
	}

	if result.route == nil {
		return next()
	}
	hasTail := strings.HasSuffix(result.route.Pattern, "**")
	for i, w := range result.wildcards {
		if hasTail && i == len(result.wildcards)-1 {
			ctx.SetParam("**", w)
			continue
		}
		ctx.SetParam(wildcardParamKey(i), w)
	}
	return result.route.Handler.Handle(ctx, next)
}

func wildcardParamKey(i int) string {
	if i < len(smallWildcardKeys) {
		return smallWildcardKeys[i]
	}
	return "*"
}

var smallWildcardKeys = [...]string{"*0", "*1", "*2", "*3", "*4", "*5", "*6", "*7"}
