package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled is read by the UI goroutine on every message.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("LEMURE_TRACE") != "")
}

// TraceEnabled reports whether LEMURE_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled overrides the flag for tests.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
