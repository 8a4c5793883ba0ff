package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestHandler(t *testing.T) {
	t.Run("filters by level", func(t *testing.T) {
		var buf bytes.Buffer
		InitWriter(&buf, "warn")

		Infof("hidden %d", 1)
		Warnf("shown %d", 2)

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Errorf("info message logged at warn level: %q", out)
		}
		if !strings.Contains(out, " W shown 2") {
			t.Errorf("output = %q, want warn line", out)
		}
	})

	t.Run("trace only when enabled", func(t *testing.T) {
		var buf bytes.Buffer
		InitWriter(&buf, "debug")
		Tracef("quiet")
		if buf.Len() != 0 {
			t.Errorf("trace logged at debug level: %q", buf.String())
		}

		InitWriter(&buf, "trace")
		Tracef("loud %s", "x")
		if !strings.Contains(buf.String(), " T loud x") {
			t.Errorf("output = %q, want trace line", buf.String())
		}
	})

	t.Run("fields are appended", func(t *testing.T) {
		var buf bytes.Buffer
		InitWriter(&buf, "info")

		WithField("file", ".env").Info("saved")
		if !strings.Contains(buf.String(), "I saved file=.env") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("unknown level falls back to error", func(t *testing.T) {
		var buf bytes.Buffer
		InitWriter(&buf, "chatty")

		Warnf("dropped")
		Errorf("kept")
		if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "E kept") {
			t.Errorf("output = %q", buf.String())
		}
	})
}
