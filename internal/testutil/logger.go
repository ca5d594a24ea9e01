package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// NopLogger returns a logger that discards all output.
// Use this in tests to avoid log noise.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// LogRecord is one captured log line
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture collects records written through a CaptureLogger
type LogCapture struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureLogger returns a logger at debug level whose records can be
// inspected afterwards. Attribute groups are flattened.
func CaptureLogger() (*slog.Logger, *LogCapture) {
	c := &LogCapture{}
	return slog.New(&captureHandler{capture: c}), c
}

// Records returns a copy of everything logged so far
func (c *LogCapture) Records() []LogRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LogRecord(nil), c.records...)
}

// Messages returns the messages logged at level
func (c *LogCapture) Messages(level slog.Level) []string {
	var out []string
	for _, r := range c.Records() {
		if r.Level == level {
			out = append(out, r.Message)
		}
	}
	return out
}

type captureHandler struct {
	capture *LogCapture
	attrs   []slog.Attr
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	rec := LogRecord{Level: r.Level, Message: r.Message, Attrs: make(map[string]any)}
	for _, a := range h.attrs {
		rec.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value.Any()
		return true
	})

	h.capture.mu.Lock()
	h.capture.records = append(h.capture.records, rec)
	h.capture.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &captureHandler{
		capture: h.capture,
		attrs:   append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }
