package http11

import (
	"sync/atomic"
	"time"
)

// imfFixdate is the RFC 7231 §7.1.1.1 preferred Date header format.
const imfFixdate = "Mon, 02 Jan 2006 15:04:05 GMT"

// dateCache holds the current Date header value, refreshed at most once
// per second so the hot response path never calls time.Format.
var dateCache atomic.Pointer[dateEntry]

type dateEntry struct {
	second int64
	value  []byte
}

func init() {
	now := time.Now().UTC()
	dateCache.Store(&dateEntry{second: now.Unix(), value: []byte(now.Format(imfFixdate))})
}

// currentDate returns the Date header value for the current second,
// formatting a fresh one only when the second has rolled over since the
// last call.
func currentDate() []byte {
	now := time.Now().UTC()
	sec := now.Unix()
	e := dateCache.Load()
	if e.second == sec {
		return e.value
	}
	fresh := &dateEntry{second: sec, value: []byte(now.Format(imfFixdate))}
	dateCache.Store(fresh)
	return fresh.value
}
