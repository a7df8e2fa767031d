// Package testutil provides shared test helpers for building stores.
package testutil

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/lumina/internal/kv"
	"github.com/starford/lumina/internal/notes"
	"github.com/starford/lumina/internal/storage"
)

// Clock is a manual clock that advances one millisecond per reading.
type Clock struct {
	ms atomic.Int64
}

// NewClock starts a clock at ms.
func NewClock(ms int64) *Clock {
	c := &Clock{}
	c.ms.Store(ms)
	return c
}

// Now returns the current instant and ticks.
func (c *Clock) Now() time.Time {
	return time.UnixMilli(c.ms.Add(1) - 1)
}

// Set moves the clock to ms.
func (c *Clock) Set(ms int64) { c.ms.Store(ms) }

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestStore returns an initialized store over a fresh memory backend,
// together with the backend for inspection.
func TestStore(t *testing.T, opts ...notes.Option) (*notes.Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	base := []notes.Option{notes.WithLogger(Logger())}
	s := notes.New(storage.NewKV(mem), append(base, opts...)...)
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s, mem
}
