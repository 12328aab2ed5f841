// Package requestid stamps every request with a correlation ID: reused
// from an inbound X-Request-Id header when present (the name is matched
// with exact case, as for every non-slot header), otherwise a fresh
// UUID, echoed back on the response and made available to downstream
// handlers via the pipeline Context's param list.
package requestid

import (
	"github.com/google/uuid"

	"github.com/yourusername/vortex/pkg/vortex/pipeline"
)

// ParamKey is the Context.Param key the assigned ID is stored under.
const ParamKey = "requestid"

// HeaderName is both the inbound header checked for a caller-supplied ID
// and the outbound header the assigned ID is echoed on.
var HeaderName = []byte("X-Request-Id")

// Handler assigns a request ID and echoes it on the response.
type Handler struct{}

// New returns a requestid Handler.
func New() *Handler { return &Handler{} }

func (*Handler) Handle(ctx *pipeline.Context, next pipeline.Next) error {
	id := ctx.Request.Headers.Get(HeaderName)
	if len(id) == 0 {
		id = []byte(uuid.NewString())
	}
	ctx.SetParam(ParamKey, id)
	ctx.Response.Headers.Set(HeaderName, id)
	return next()
}
