package http11

import "strconv"

func formatStatusLine(code int, message string) []byte {
	b := make([]byte, 0, len("HTTP/1.1 ")+3+1+len(message)+2)
	b = append(b, "HTTP/1.1 "...)
	b = strconv.AppendInt(b, int64(code), 10)
	b = append(b, ' ')
	b = append(b, message...)
	b = append(b, '\r', '\n')
	return b
}
