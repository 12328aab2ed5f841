package http11

import (
	"bufio"
	"bytes"

	"github.com/yourusername/vortex/pkg/vortex/buffer"
	"github.com/yourusername/vortex/pkg/vortex/header"
	"github.com/yourusername/vortex/pkg/vortex/message"
	"github.com/yourusername/vortex/pkg/vortex/stream"
)

// Parser reads one HTTP/1.x request line and header block at a time from a
// connection's bufio.Reader. Unlike a parser that owns its own read buffer
// and stitches leftover bytes back in for the next call, reading through
// ReadSlice leaves any bytes past the blank line untouched in the
// bufio.Reader's internal buffer — so pipelined requests and request
// bodies simply fall out of the next Read, with no unread-bytes bookkeeping
// of our own.
type Parser struct {
	maxChunkSize uint64
	maxBodySize  uint64
}

// NewParser returns a Parser enforcing the given limits (0 disables a
// limit): maxChunkSize bounds one chunk of a chunked body, and maxBodySize
// bounds both a chunked body and a declared Content-Length.
func NewParser(maxChunkSize, maxBodySize uint64) *Parser {
	return &Parser{maxChunkSize: maxChunkSize, maxBodySize: maxBodySize}
}

// Parse reads and parses the next request's line and headers from r, and
// attaches a lazy body stream reading from the same r. The returned
// Request owns a single Buffer holding the raw header bytes; every view on
// it (Method, URL, Version, header names/values) borrows from that Buffer.
func (p *Parser) Parse(r *bufio.Reader) (*message.Request, error) {
	head, err := readHeadBlock(r)
	if err != nil {
		return nil, err
	}

	buf := buffer.New(len(head))
	copy(buf.Bytes(), head)
	view := buf.Bytes()

	req := &message.Request{ContentLength: -1}
	req.AddBuffer(buf)

	lineEnd, err := parseRequestLine(req, view)
	if err != nil {
		req.Reset()
		return nil, err
	}
	if err := parseHeaders(req, view[lineEnd:]); err != nil {
		req.Reset()
		return nil, err
	}
	if req.Headers.Get([]byte("Host")) == nil {
		req.Reset()
		return nil, ErrMissingHost
	}

	if err := attachBody(req, r, p.maxChunkSize, p.maxBodySize); err != nil {
		req.Reset()
		return nil, err
	}
	return req, nil
}

// readHeadBlock reads whole lines from r until a blank line, returning
// every byte read including the trailing blank line's CRLF.
func readHeadBlock(r *bufio.Reader) ([]byte, error) {
	var head []byte
	for {
		line, err := r.ReadSlice('\n')
		if len(line) == 0 && err != nil {
			return nil, ErrUnexpectedEOF
		}
		head = append(head, line...)
		if len(head) > MaxRequestLineSize+MaxHeadersSize {
			return nil, ErrHeadersTooLarge
		}
		if err != nil {
			if err == bufio.ErrBufferFull {
				return nil, ErrHeadersTooLarge
			}
			return nil, ErrUnexpectedEOF
		}
		if bytes.Equal(line, crlf) {
			return head, nil
		}
	}
}

// parseRequestLine parses "METHOD SP Request-URI SP HTTP-Version CRLF" and
// returns the offset of the first header line.
func parseRequestLine(req *message.Request, buf []byte) (int, error) {
	lineEnd := bytes.Index(buf, crlf)
	if lineEnd == -1 {
		return 0, ErrInvalidRequestLine
	}
	line := buf[:lineEnd]

	if len(line) > MaxRequestLineSize {
		return 0, ErrRequestLineTooLarge
	}

	sp := bytes.IndexByte(line, ' ')
	if sp == -1 {
		return 0, ErrInvalidRequestLine
	}
	method := line[:sp]
	if !isKnownMethod(method) {
		return 0, ErrInvalidMethod
	}
	req.Method = method

	line = line[sp+1:]
	sp = bytes.IndexByte(line, ' ')
	if sp == -1 {
		return 0, ErrInvalidRequestLine
	}
	uri := line[:sp]
	if len(uri) > MaxURILength {
		return 0, ErrURITooLong
	}
	if len(uri) == 0 || (uri[0] != '/' && uri[0] != '*') {
		return 0, ErrInvalidPath
	}
	req.URL = uri

	version := line[sp+1:]
	if !bytes.Equal(version, http11Bytes) && !bytes.Equal(version, http10Bytes) {
		return 0, ErrInvalidProtocol
	}
	req.Version = version

	return lineEnd + 2, nil
}

// parseHeaders parses "Name: Value\r\n" lines up to (not including) the
// trailing blank line, rejecting RFC 7230 §3.3.3 request-smuggling shapes
// along the way.
func parseHeaders(req *message.Request, buf []byte) error {
	var hasContentLength, hasTransferEncoding bool
	var contentLength int64

	pos := 0
	for pos < len(buf) {
		if buf[pos] == '\r' {
			break
		}
		lineEnd := bytes.Index(buf[pos:], crlf)
		if lineEnd == -1 {
			return ErrInvalidHeader
		}
		lineEnd += pos
		line := buf[pos:lineEnd]
		pos = lineEnd + 2

		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			return ErrInvalidHeader
		}
		name := line[:colon]
		if colon > 0 && (line[colon-1] == ' ' || line[colon-1] == '\t') {
			return ErrInvalidHeader
		}
		if bytes.IndexByte(name, ' ') != -1 || bytes.IndexByte(name, '\t') != -1 {
			return ErrInvalidHeader
		}
		value := bytes.TrimSpace(line[colon+1:])

		req.Headers.Set(name, value)

		switch {
		case header.CanonicalNameEqualFold(name, header.ContentLength):
			n, err := parseContentLength(value)
			if err != nil {
				return err
			}
			if hasContentLength && contentLength != n {
				return ErrDuplicateContentLength
			}
			hasContentLength = true
			contentLength = n
			req.ContentLength = n
		case header.CanonicalNameEqualFold(name, header.TransferEncoding):
			hasTransferEncoding = true
		case header.CanonicalNameEqualFold(name, header.Connection):
			if bytes.EqualFold(value, headerClose) {
				req.Close = true
			}
		}
	}

	if hasContentLength && hasTransferEncoding {
		return ErrContentLengthWithTransferEncoding
	}
	return nil
}

func parseContentLength(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, ErrInvalidContentLength
	}
	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, ErrInvalidContentLength
		}
		n = n*10 + int64(c-'0')
		if n < 0 {
			return 0, ErrInvalidContentLength
		}
	}
	return n, nil
}

func attachBody(req *message.Request, r *bufio.Reader, maxChunkSize, maxBodySize uint64) error {
	transferEncoding, _ := req.Headers.GetSlot(header.TransferEncoding)
	if bytes.EqualFold(transferEncoding, headerChunked) {
		req.Body = stream.NewChunked(r, maxChunkSize, maxBodySize)
		return nil
	}
	if req.ContentLength > 0 {
		if maxBodySize > 0 && uint64(req.ContentLength) > maxBodySize {
			return ErrContentLengthTooLarge
		}
		req.Body = stream.NewFixed(r, req.ContentLength)
		return nil
	}
	req.ContentLength = 0
	req.Body = stream.Null{}
	return nil
}
