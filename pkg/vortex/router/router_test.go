package router

import (
	"testing"

	"github.com/yourusername/vortex/pkg/vortex/message"
	"github.com/yourusername/vortex/pkg/vortex/pipeline"
)

func handlerNamed(name string) pipeline.Handler {
	return pipeline.HandlerFunc(func(ctx *pipeline.Context, next pipeline.Next) error {
		ctx.Response.Headers.Set([]byte("X-Matched"), []byte(name))
		return nil
	})
}

func runRequest(t *testing.T, h *RoutingHandler, method, path string) (matched string, nextCalled bool) {
	t.Helper()
	ctx := &pipeline.Context{
		Request:  &message.Request{Method: []byte(method), URL: []byte(path)},
		Response: message.NewResponse(),
	}
	err := h.Handle(ctx, func() error {
		nextCalled = true
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(ctx.Response.Headers.Get([]byte("X-Matched"))), nextCalled
}

func TestLiteralBeatsSingleWildcard(t *testing.T) {
	h := New(0)
	mustRoute(t, h, "GET", "/x/*", handlerNamed("A"))
	mustRoute(t, h, "GET", "/x/y", handlerNamed("B"))
	mustRoute(t, h, "GET", "/x/**", handlerNamed("C"))

	if got, _ := runRequest(t, h, "GET", "/x/y"); got != "B" {
		t.Fatalf("/x/y matched %q, want B", got)
	}
	if got, _ := runRequest(t, h, "GET", "/x/z"); got != "A" {
		t.Fatalf("/x/z matched %q, want A", got)
	}
	if got, _ := runRequest(t, h, "GET", "/x/y/z"); got != "C" {
		t.Fatalf("/x/y/z matched %q, want C", got)
	}
}

func TestNoMatchCallsNext(t *testing.T) {
	h := New(0)
	mustRoute(t, h, "GET", "/hello", handlerNamed("A"))
	if _, nextCalled := runRequest(t, h, "GET", "/goodbye"); !nextCalled {
		t.Fatal("expected next to be called for unmatched path")
	}
}

func TestSingleWildcardDoesNotSpanSegments(t *testing.T) {
	h := New(0)
	mustRoute(t, h, "GET", "/api/v1/user/*", handlerNamed("echo"))

	if got, _ := runRequest(t, h, "GET", "/api/v1/user/42"); got != "echo" {
		t.Fatalf("matched %q, want echo", got)
	}
	if _, nextCalled := runRequest(t, h, "GET", "/api/v1/user/42/logs"); !nextCalled {
		t.Fatal("expected /api/v1/user/42/logs not to match single-segment wildcard")
	}
}

func TestSingleWildcardBindsSegmentValue(t *testing.T) {
	h := New(0)
	mustRouteErr(t, h.Route("GET", "/echo/*", pipeline.HandlerFunc(func(ctx *pipeline.Context, next pipeline.Next) error {
		ctx.Response.Headers.Set([]byte("X-Matched"), ctx.Param("*0"))
		return nil
	})))

	got, _ := runRequest(t, h, "GET", "/echo/42")
	if got != "42" {
		t.Fatalf("bound value = %q, want 42", got)
	}
}

func TestMultiWildcardBindsTail(t *testing.T) {
	h := New(0)
	mustRouteErr(t, h.Route("GET", "/files/**", pipeline.HandlerFunc(func(ctx *pipeline.Context, next pipeline.Next) error {
		ctx.Response.Headers.Set([]byte("X-Matched"), ctx.Param("**"))
		return nil
	})))

	got, _ := runRequest(t, h, "GET", "/files/a/b/c")
	if got != "a/b/c" {
		t.Fatalf("tail = %q, want a/b/c", got)
	}
}

func TestTrailingWildcardOnlyLegalAsFinalSegment(t *testing.T) {
	h := New(0)
	if err := h.Route("GET", "/a/**/b", handlerNamed("x")); err != ErrTrailingWildcardNotFinal {
		t.Fatalf("err = %v, want ErrTrailingWildcardNotFinal", err)
	}
}

func TestRemoveRoute(t *testing.T) {
	h := New(0)
	mustRoute(t, h, "GET", "/hello", handlerNamed("A"))
	if !h.RemoveRoute("GET", "/hello") {
		t.Fatal("expected RemoveRoute to report removal")
	}
	if _, nextCalled := runRequest(t, h, "GET", "/hello"); !nextCalled {
		t.Fatal("expected removed route to no longer match")
	}
}

func TestGetRouteReturnsExactRegistration(t *testing.T) {
	h := New(0)
	mustRoute(t, h, "GET", "/x/*", handlerNamed("A"))
	route, ok := h.GetRoute("GET", "/x/*")
	if !ok || route.Pattern != "/x/*" {
		t.Fatalf("GetRoute = %+v, %v", route, ok)
	}
	if _, ok := h.GetRoute("GET", "/x/y"); ok {
		t.Fatal("expected no exact registration for /x/y")
	}
}

func TestCacheIsInvalidatedOnRouteChange(t *testing.T) {
	h := New(0)
	mustRoute(t, h, "GET", "/hello", handlerNamed("A"))
	runRequest(t, h, "GET", "/hello") // warm the cache

	mustRoute(t, h, "GET", "/hello", handlerNamed("B"))
	if got, _ := runRequest(t, h, "GET", "/hello"); got != "B" {
		t.Fatalf("got %q after re-registration, want B (stale cache entry)", got)
	}
}

func mustRoute(t *testing.T, h *RoutingHandler, method, pattern string, handler pipeline.Handler) {
	t.Helper()
	if err := h.Route(method, pattern, handler); err != nil {
		t.Fatal(err)
	}
}

func mustRouteErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
