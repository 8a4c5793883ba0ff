package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// LevelEnv selects the log level: trace, debug, info, warn or error.
const LevelEnv = "ENVSYNC_LOG"

var traceEnabled bool

func init() {
	InitWriter(os.Stderr, "")
}

// Init installs the handler and reads the level from ENVSYNC_LOG. Messages go
// to stderr so they never mix with command output.
func Init() {
	InitWriter(os.Stderr, os.Getenv(LevelEnv))
}

func InitWriter(w io.Writer, level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	traceEnabled = level == "trace"

	var apexLevel log.Level
	switch level {
	case "trace", "debug":
		apexLevel = log.DebugLevel
	case "info":
		apexLevel = log.InfoLevel
	case "warn":
		apexLevel = log.WarnLevel
	default:
		apexLevel = log.ErrorLevel
	}
	log.SetHandler(&Handler{w: w})
	log.SetLevel(apexLevel)
}

// Handler writes one compact line per entry: time, level letter, message and
// sorted fields.
type Handler struct {
	mu sync.Mutex
	w  io.Writer
}

func (h *Handler) HandleLog(e *log.Entry) error {
	message := e.Message
	level := "?"
	if after, ok := strings.CutPrefix(message, "TRACE: "); ok {
		level = "T"
		message = after
	} else {
		switch e.Level {
		case log.DebugLevel:
			level = "D"
		case log.InfoLevel:
			level = "I"
		case log.WarnLevel:
			level = "W"
		case log.ErrorLevel:
			level = "E"
		case log.FatalLevel:
			level = "F"
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", e.Timestamp.Format(time.TimeOnly), level, message)
	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// Tracef logs below debug, only when ENVSYNC_LOG=trace.
func Tracef(format string, args ...interface{}) {
	if traceEnabled {
		log.Debug("TRACE: " + fmt.Sprintf(format, args...))
	}
}

func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

func WithField(key string, value interface{}) *log.Entry {
	return log.WithField(key, value)
}

func WithError(err error) *log.Entry {
	return log.WithError(err)
}
