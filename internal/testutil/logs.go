package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// CapturingHandler records every slog record it receives.
type CapturingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (c *CapturingHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (c *CapturingHandler) Handle(_ context.Context, r slog.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r.Clone())
	return nil
}

func (c *CapturingHandler) WithAttrs(_ []slog.Attr) slog.Handler { return c }
func (c *CapturingHandler) WithGroup(_ string) slog.Handler      { return c }

// Records returns a snapshot of the captured records.
func (c *CapturingHandler) Records() []slog.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]slog.Record(nil), c.records...)
}

// AtLevel returns the captured records logged at exactly lvl.
func (c *CapturingHandler) AtLevel(lvl slog.Level) []slog.Record {
	var out []slog.Record
	for _, r := range c.Records() {
		if r.Level == lvl {
			out = append(out, r)
		}
	}
	return out
}

// Attrs flattens a record's attributes into a map.
func Attrs(r slog.Record) map[string]any {
	m := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value.Any()
		return true
	})
	return m
}
