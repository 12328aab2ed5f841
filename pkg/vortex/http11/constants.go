// Package http11 implements the HTTP/1.x connection state machine: request
// line and header parsing, lazy body streaming, and scatter-gather
// response serialization, driven through a pipeline.Pipeline per request.
package http11

const (
	// MaxRequestLineSize bounds the request line, per RFC 7230's 8KB
	// recommendation.
	MaxRequestLineSize = 8 * 1024
	// MaxHeadersSize bounds the entire header block.
	MaxHeadersSize = 8 * 1024
	// MaxURILength bounds the request-target.
	MaxURILength = 8 * 1024
	// DefaultReadBufferSize is the bufio.Reader size backing a Connection.
	DefaultReadBufferSize = 4096
	// DefaultWriteBufferSize is the bufio.Writer size backing a Connection.
	DefaultWriteBufferSize = 4096
	// DefaultMaxChunkSize bounds a single chunked-encoding chunk.
	DefaultMaxChunkSize = 4 * 1024 * 1024
	// DefaultMaxBodySize bounds a request body, whether framed by
	// Content-Length or by chunked encoding.
	DefaultMaxBodySize = 64 * 1024 * 1024
)

var (
	http11Bytes      = []byte("HTTP/1.1")
	http10Bytes      = []byte("HTTP/1.0")
	headerClose      = []byte("close")
	headerKeepAlive  = []byte("keep-alive")
	headerChunked    = []byte("chunked")
	crlf             = []byte("\r\n")
	headerSeparator  = []byte(": ")
)

// statusLine returns the pre-compiled "HTTP/1.1 <code> <message>\r\n" line
// for common statuses, or formats one on demand otherwise.
func statusLine(code int, message string) []byte {
	if line, ok := commonStatusLines[code]; ok && message == commonStatusMessages[code] {
		return line
	}
	return formatStatusLine(code, message)
}

var commonStatusLines = map[int][]byte{
	200: []byte("HTTP/1.1 200 OK\r\n"),
	201: []byte("HTTP/1.1 201 Created\r\n"),
	202: []byte("HTTP/1.1 202 Accepted\r\n"),
	204: []byte("HTTP/1.1 204 No Content\r\n"),
	301: []byte("HTTP/1.1 301 Moved Permanently\r\n"),
	302: []byte("HTTP/1.1 302 Found\r\n"),
	304: []byte("HTTP/1.1 304 Not Modified\r\n"),
	400: []byte("HTTP/1.1 400 Bad Request\r\n"),
	401: []byte("HTTP/1.1 401 Unauthorized\r\n"),
	403: []byte("HTTP/1.1 403 Forbidden\r\n"),
	404: []byte("HTTP/1.1 404 Not Found\r\n"),
	405: []byte("HTTP/1.1 405 Method Not Allowed\r\n"),
	408: []byte("HTTP/1.1 408 Request Timeout\r\n"),
	413: []byte("HTTP/1.1 413 Payload Too Large\r\n"),
	500: []byte("HTTP/1.1 500 Internal Server Error\r\n"),
	501: []byte("HTTP/1.1 501 Not Implemented\r\n"),
	502: []byte("HTTP/1.1 502 Bad Gateway\r\n"),
	503: []byte("HTTP/1.1 503 Service Unavailable\r\n"),
}

var commonStatusMessages = map[int]string{
	200: "OK", 201: "Created", 202: "Accepted", 204: "No Content",
	301: "Moved Permanently", 302: "Found", 304: "Not Modified",
	400: "Bad Request", 401: "Unauthorized", 403: "Forbidden", 404: "Not Found",
	405: "Method Not Allowed", 408: "Request Timeout", 413: "Payload Too Large",
	500: "Internal Server Error", 501: "Not Implemented", 502: "Bad Gateway",
	503: "Service Unavailable",
}
