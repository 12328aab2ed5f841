package pipeline

// NotFound is the default terminal handler New installs when it is given a
// nil terminal: it answers with a bare 404 and never
// calls next, since nothing further in the chain could resolve the route.
var NotFound Handler = HandlerFunc(func(ctx *Context, _ Next) error {
	ctx.Response.SetStatus(404, "Not Found")
	ctx.Response.MarkStarted()
	ctx.Response.Out.AppendStatic(notFoundBody)
	return nil
})

var notFoundBody = []byte("404 not found\n")
