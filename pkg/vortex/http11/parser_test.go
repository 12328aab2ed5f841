package http11

import (
	"bufio"
	"strings"
	"testing"
)

func parse(t *testing.T, raw string) (*Parser, *bufio.Reader) {
	t.Helper()
	p := NewParser(DefaultMaxChunkSize, DefaultMaxBodySize)
	r := bufio.NewReader(strings.NewReader(raw))
	return p, r
}

func TestParseSimpleGET(t *testing.T) {
	p, r := parse(t, "GET /hello HTTP/1.1\r\nHost: example.com\r\n\r\n")
	req, err := p.Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(req.Method) != "GET" {
		t.Errorf("Method = %q", req.Method)
	}
	if string(req.Path()) != "/hello" {
		t.Errorf("Path = %q", req.Path())
	}
	if req.Headers.Get([]byte("Host")) == nil {
		t.Error("expected Host header")
	}
}

func TestParseMissingHostRejected(t *testing.T) {
	p, r := parse(t, "GET / HTTP/1.1\r\n\r\n")
	_, err := p.Parse(r)
	if err != ErrMissingHost {
		t.Fatalf("err = %v, want ErrMissingHost", err)
	}
}

func TestParseUnknownMethodRejected(t *testing.T) {
	p, r := parse(t, "FROBNICATE / HTTP/1.1\r\nHost: a\r\n\r\n")
	_, err := p.Parse(r)
	if err != ErrInvalidMethod {
		t.Fatalf("err = %v, want ErrInvalidMethod", err)
	}
}

func TestParseInvalidProtocolRejected(t *testing.T) {
	p, r := parse(t, "GET / HTTP/0.9\r\nHost: a\r\n\r\n")
	_, err := p.Parse(r)
	if err != ErrInvalidProtocol {
		t.Fatalf("err = %v, want ErrInvalidProtocol", err)
	}
}

func TestParseHTTP10Accepted(t *testing.T) {
	p, r := parse(t, "GET /hello HTTP/1.0\r\nHost: a\r\n\r\n")
	req, err := p.Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if string(req.Version) != "HTTP/1.0" {
		t.Errorf("Version = %q, want HTTP/1.0", req.Version)
	}
}

func TestParseContentLengthExceedingLimitRejected(t *testing.T) {
	p := NewParser(DefaultMaxChunkSize, 10)
	r := bufio.NewReader(strings.NewReader("POST /submit HTTP/1.1\r\nHost: a\r\nContent-Length: 11\r\n\r\nhello world"))
	_, err := p.Parse(r)
	if err != ErrContentLengthTooLarge {
		t.Fatalf("err = %v, want ErrContentLengthTooLarge", err)
	}
}

func TestParseContentLengthAndTransferEncodingRejected(t *testing.T) {
	p, r := parse(t, "POST / HTTP/1.1\r\nHost: a\r\nContent-Length: 5\r\nTransfer-Encoding: chunked\r\n\r\nhello")
	_, err := p.Parse(r)
	if err != ErrContentLengthWithTransferEncoding {
		t.Fatalf("err = %v, want ErrContentLengthWithTransferEncoding", err)
	}
}

func TestParseDuplicateDifferingContentLengthRejected(t *testing.T) {
	p, r := parse(t, "POST / HTTP/1.1\r\nHost: a\r\nContent-Length: 5\r\nContent-Length: 6\r\n\r\nhello!")
	_, err := p.Parse(r)
	if err != ErrDuplicateContentLength {
		t.Fatalf("err = %v, want ErrDuplicateContentLength", err)
	}
}

func TestParseDuplicateMatchingContentLengthAccepted(t *testing.T) {
	p, r := parse(t, "POST / HTTP/1.1\r\nHost: a\r\nContent-Length: 5\r\nContent-Length: 5\r\n\r\nhello")
	req, err := p.Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.ContentLength != 5 {
		t.Errorf("ContentLength = %d, want 5", req.ContentLength)
	}
}

func TestParseWhitespaceBeforeColonRejected(t *testing.T) {
	p, r := parse(t, "GET / HTTP/1.1\r\nHost : a\r\n\r\n")
	_, err := p.Parse(r)
	if err != ErrInvalidHeader {
		t.Fatalf("err = %v, want ErrInvalidHeader", err)
	}
}

func TestParseFixedBodyReadable(t *testing.T) {
	p, r := parse(t, "POST /submit HTTP/1.1\r\nHost: a\r\nContent-Length: 5\r\n\r\nhello")
	req, err := p.Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	buf := make([]byte, 16)
	n, isEnd, err := req.Body.Read(buf)
	if err != nil {
		t.Fatalf("Body.Read: %v", err)
	}
	if string(buf[:n]) != "hello" || !isEnd {
		t.Errorf("got %q isEnd=%v, want %q isEnd=true", buf[:n], isEnd, "hello")
	}
}

func TestParseChunkedBodyReadable(t *testing.T) {
	p, r := parse(t, "POST /submit HTTP/1.1\r\nHost: a\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n")
	req, err := p.Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var collected []byte
	buf := make([]byte, 16)
	for {
		n, isEnd, err := req.Body.Read(buf)
		if err != nil {
			t.Fatalf("Body.Read: %v", err)
		}
		collected = append(collected, buf[:n]...)
		if isEnd {
			break
		}
	}
	if string(collected) != "hello" {
		t.Errorf("collected = %q, want %q", collected, "hello")
	}
}

func TestParsePipelinedRequestsLeaveSecondIntact(t *testing.T) {
	raw := "GET /one HTTP/1.1\r\nHost: a\r\n\r\nGET /two HTTP/1.1\r\nHost: a\r\n\r\n"
	p, r := parse(t, raw)

	first, err := p.Parse(r)
	if err != nil {
		t.Fatalf("first Parse: %v", err)
	}
	if string(first.Path()) != "/one" {
		t.Fatalf("first Path = %q", first.Path())
	}

	second, err := p.Parse(r)
	if err != nil {
		t.Fatalf("second Parse: %v", err)
	}
	if string(second.Path()) != "/two" {
		t.Fatalf("second Path = %q", second.Path())
	}
}

func TestParseConnectionCloseSetsRequestClose(t *testing.T) {
	p, r := parse(t, "GET / HTTP/1.1\r\nHost: a\r\nConnection: close\r\n\r\n")
	req, err := p.Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !req.Close {
		t.Error("expected req.Close = true")
	}
}
