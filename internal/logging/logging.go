// Package logging is a thin debug logger gated by the DEBUG environment
// variable. Errors are not reported here; they are returned or panicked.
package logging

import (
	"log"
	"os"
	"sync/atomic"
	"time"
)

var forced atomic.Bool

// ShouldLog returns true if DEBUG=true or logging was forced on.
func ShouldLog() bool {
	return forced.Load() || os.Getenv("DEBUG") == "true"
}

// Force turns debug logging on or off regardless of the environment.
func Force(on bool) {
	forced.Store(on)
}

// Track logs information IFF debug logging is enabled.
func Track(format string, v ...any) {
	if ShouldLog() {
		log.Printf(format, v...)
	}
}

func Trace(name string, t time.Time) time.Time {
	if ShouldLog() {
		if !t.IsZero() {
			log.Printf("%s total: %s\n", name, time.Since(t))
		} else {
			log.Printf("tracing %s\n", name)
		}
	}
	return time.Now()
}

// TraceStart logs the start of name and returns a func that logs its duration.
func TraceStart(name string) func() time.Time {
	start := Trace(name, time.Time{})
	return func() time.Time {
		return Trace(name, start)
	}
}
