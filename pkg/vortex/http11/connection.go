package http11

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/yourusername/vortex/pkg/vortex/container"
	"github.com/yourusername/vortex/pkg/vortex/header"
	"github.com/yourusername/vortex/pkg/vortex/message"
	"github.com/yourusername/vortex/pkg/vortex/pipeline"
	"github.com/yourusername/vortex/pkg/vortex/stream"
)

// maxDrainBytes bounds how much of an unconsumed request body the
// connection will discard before reusing the socket for the next request.
// Past this the connection closes instead of risking an unbounded stall.
const maxDrainBytes = 4 << 20

// ConnectionConfig configures per-connection behavior.
type ConnectionConfig struct {
	KeepAliveTimeout time.Duration
	HeaderTimeout    time.Duration
	MaxRequests      int
	ReadBufferSize   int
	WriteBufferSize  int
	ServerName       string
	MaxChunkSize     uint64
	MaxBodySize      uint64
}

// DefaultConnectionConfig returns sensible defaults.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		KeepAliveTimeout: 60 * time.Second,
		HeaderTimeout:    10 * time.Second,
		MaxRequests:      0,
		ReadBufferSize:   DefaultReadBufferSize,
		WriteBufferSize:  DefaultWriteBufferSize,
		ServerName:       "vortex",
		MaxChunkSize:     DefaultMaxChunkSize,
		MaxBodySize:      DefaultMaxBodySize,
	}
}

// Connection drives one accepted socket through the parse -> dispatch ->
// stream-body -> serialize -> keep-alive loop described by the connection
// state machine: it owns the request/response lifecycle for every request
// this socket carries until it closes.
type Connection struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	parser *Parser

	pipeline *pipeline.Pipeline
	services *container.Container
	config   ConnectionConfig

	requests int
}

// NewConnection wraps conn, ready to Serve requests through p, resolving
// handler dependencies against services.
func NewConnection(conn net.Conn, p *pipeline.Pipeline, services *container.Container, config ConnectionConfig) *Connection {
	return &Connection{
		conn:     conn,
		reader:   bufio.NewReaderSize(conn, config.ReadBufferSize),
		writer:   bufio.NewWriterSize(conn, config.WriteBufferSize),
		parser:   NewParser(config.MaxChunkSize, config.MaxBodySize),
		pipeline: p,
		services: services,
		config:   config,
	}
}

// Serve runs the connection's request loop until the socket closes, a
// fatal error occurs, or keep-alive ends. It always closes conn before
// returning.
func (c *Connection) Serve() error {
	defer c.conn.Close()

	for {
		if c.config.MaxRequests > 0 && c.requests >= c.config.MaxRequests {
			return nil
		}
		if err := c.setDeadline(); err != nil {
			return err
		}

		req, err := c.parser.Parse(c.reader)
		if err != nil {
			if isCleanClose(err) {
				return nil
			}
			c.writeQuickError(statusForParseError(err))
			return err
		}
		c.requests++

		resp := message.NewResponse()
		storage := container.NewStorage()
		ctx := &pipeline.Context{Request: req, Response: resp, Storage: storage, Services: c.services}

		handlerErr := c.pipeline.Run(ctx)
		hadStarted := resp.Started()
		if handlerErr != nil && !hadStarted {
			resp.Reset()
			resp.SetStatus(500, "Internal Server Error")
			resp.Out.AppendStatic([]byte("internal server error\n"))
			resp.MarkStarted()
		}

		closeAfter := c.shouldClose(req, resp, handlerErr)
		c.fillDefaultHeaders(resp, closeAfter)

		writeErr := c.writeResponse(resp)

		if writeErr == nil && !closeAfter && req.Body != nil {
			if _, err := stream.Drain(req.Body, maxDrainBytes); err != nil {
				closeAfter = true
			}
		}

		req.Reset()
		resp.Reset()

		if writeErr != nil {
			return writeErr
		}
		if handlerErr != nil && hadStarted {
			// Handler began writing and then failed: the response already
			// went out malformed or partial, so the connection cannot be
			// reused even if otherwise eligible for keep-alive.
			return handlerErr
		}
		if closeAfter {
			return nil
		}
	}
}

func (c *Connection) setDeadline() error {
	timeout := c.config.KeepAliveTimeout
	if c.requests == 0 && c.config.HeaderTimeout > 0 {
		timeout = c.config.HeaderTimeout
	}
	if timeout <= 0 {
		return nil
	}
	return c.conn.SetDeadline(time.Now().Add(timeout))
}

// shouldClose decides keep-alive per spec: HTTP/1.1 defaults open, HTTP/1.0
// defaults closed, and an explicit Connection: close on either side (or a
// handler error) forces it closed.
func (c *Connection) shouldClose(req *message.Request, resp *message.Response, handlerErr error) bool {
	if handlerErr != nil {
		return true
	}
	if req.Close {
		return true
	}
	if conn, ok := resp.Headers.GetSlot(header.Connection); ok && bytes.EqualFold(conn, headerClose) {
		return true
	}
	if !bytes.Equal(req.Version, http11Bytes) {
		return true
	}
	if c.config.MaxRequests > 0 && c.requests >= c.config.MaxRequests {
		return true
	}
	return false
}

func (c *Connection) fillDefaultHeaders(resp *message.Response, closeAfter bool) {
	if _, ok := resp.Headers.GetSlot(header.Date); !ok {
		resp.Headers.SetSlot(header.Date, currentDate())
	}
	if _, ok := resp.Headers.GetSlot(header.Server); !ok {
		resp.Headers.SetSlot(header.Server, []byte(c.config.ServerName))
	}
	if closeAfter {
		resp.Headers.SetSlot(header.Connection, headerClose)
	} else if _, ok := resp.Headers.GetSlot(header.Connection); !ok {
		resp.Headers.SetSlot(header.Connection, headerKeepAlive)
	}
	if _, ok := resp.Headers.GetSlot(header.ContentLength); !ok {
		resp.Headers.SetSlot(header.ContentLength, strconv.AppendInt(nil, int64(resp.Out.Size()), 10))
	}
}

// writeResponse writes the status line, headers, and body views through the
// connection's bufio.Writer and calls Flush once at the end. It does not
// build a single Packet or issue a writev: a response larger than the
// writer's buffer reaches the socket in more than one write.
func (c *Connection) writeResponse(resp *message.Response) error {
	line := statusLine(resp.StatusCode, resp.StatusMessage)
	if _, err := c.writer.Write(line); err != nil {
		return err
	}

	var writeErr error
	resp.Headers.ForEach(func(name, value []byte) bool {
		if _, err := c.writer.Write(name); err != nil {
			writeErr = err
			return false
		}
		if _, err := c.writer.Write(headerSeparator); err != nil {
			writeErr = err
			return false
		}
		if _, err := c.writer.Write(value); err != nil {
			writeErr = err
			return false
		}
		if _, err := c.writer.Write(crlf); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}
	if _, err := c.writer.Write(crlf); err != nil {
		return err
	}

	for _, view := range resp.Out.Views() {
		if _, err := c.writer.Write(view); err != nil {
			return err
		}
	}
	return c.writer.Flush()
}

// writeQuickError writes a minimal error response for failures the parser
// detects before a Response object exists.
func (c *Connection) writeQuickError(code int) {
	if code == 0 {
		return
	}
	msg := commonStatusMessages[code]
	if msg == "" {
		msg = "Error"
	}
	c.writer.Write(statusLine(code, msg))
	c.writer.Write([]byte("Connection: close\r\n"))
	c.writer.Write([]byte("Content-Length: 0\r\n\r\n"))
	c.writer.Flush()
}

func isCleanClose(err error) bool {
	return errors.Is(err, ErrUnexpectedEOF)
}

func statusForParseError(err error) int {
	switch err {
	case ErrRequestLineTooLarge, ErrURITooLong:
		return 414
	case ErrHeadersTooLarge:
		return 431
	case ErrContentLengthTooLarge:
		return 413
	case ErrInvalidMethod, ErrInvalidRequestLine, ErrInvalidPath, ErrInvalidProtocol,
		ErrInvalidHeader, ErrInvalidContentLength, ErrContentLengthWithTransferEncoding,
		ErrDuplicateContentLength, ErrMissingHost:
		return 400
	default:
		return 400
	}
}
