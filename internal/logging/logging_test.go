package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(prev)
		Force(false)
	})
	return &buf
}

func TestTrackGated(t *testing.T) {
	t.Setenv("DEBUG", "false")
	buf := capture(t)

	Track("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("Track wrote %q with logging disabled", buf.String())
	}

	Force(true)
	Track("shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Errorf("Track output = %q, want it to contain %q", buf.String(), "shown 2")
	}
}

func TestShouldLogFromEnv(t *testing.T) {
	t.Setenv("DEBUG", "true")
	if !ShouldLog() {
		t.Error("ShouldLog() = false with DEBUG=true")
	}
}

func TestTraceStart(t *testing.T) {
	buf := capture(t)
	Force(true)

	end := TraceStart("release")
	end()

	out := buf.String()
	if !strings.Contains(out, "tracing release") || !strings.Contains(out, "release total:") {
		t.Errorf("TraceStart output = %q", out)
	}
}
