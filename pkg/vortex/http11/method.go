package http11

// isKnownMethod reports whether method is one of the nine HTTP/1.1 methods,
// dispatching on length first to keep the common case to one comparison.
func isKnownMethod(method []byte) bool {
	switch len(method) {
	case 3:
		return bytesEqual(method, "GET") || bytesEqual(method, "PUT")
	case 4:
		return bytesEqual(method, "POST") || bytesEqual(method, "HEAD")
	case 5:
		return bytesEqual(method, "PATCH") || bytesEqual(method, "TRACE")
	case 6:
		return bytesEqual(method, "DELETE")
	case 7:
		return bytesEqual(method, "OPTIONS") || bytesEqual(method, "CONNECT")
	}
	return false
}

func bytesEqual(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := 0; i < len(b); i++ {
		if b[i] != s[i] {
			return false
		}
	}
	return true
}
