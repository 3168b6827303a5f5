// Package heights supplies the logical block-height clock injected into
// every bridge operation. Challenge-window checks are pure comparisons
// against this clock; nothing blocks waiting for time.
package heights

import (
	"sync"
	"time"
)

// Source reports the current logical height.
type Source interface {
	Current() uint64
}

// Manual is a hand-advanced height source for tests and deterministic
// deployments driven by an external chain watcher.
type Manual struct {
	mu     sync.RWMutex
	height uint64
}

var _ Source = (*Manual)(nil)

// NewManual creates a manual source starting at the given height.
func NewManual(start uint64) *Manual {
	return &Manual{height: start}
}

// Current returns the current height.
func (m *Manual) Current() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.height
}

// Set moves the clock to height. It never moves backwards.
func (m *Manual) Set(height uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if height > m.height {
		m.height = height
	}
}

// Advance moves the clock forward by delta.
func (m *Manual) Advance(delta uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height += delta
}

// Ticking derives heights from wall time at a fixed block interval. The
// height is monotone because wall time regressions are clamped.
type Ticking struct {
	start    time.Time
	interval time.Duration

	mu   sync.Mutex
	last uint64
}

var _ Source = (*Ticking)(nil)

// NewTicking creates a source that advances one height per interval.
func NewTicking(interval time.Duration) *Ticking {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticking{start: time.Now(), interval: interval}
}

// Current returns the elapsed interval count since creation.
func (t *Ticking) Current() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.start)
	if elapsed < 0 {
		return t.last
	}
	h := uint64(elapsed / t.interval)
	if h > t.last {
		t.last = h
	}
	return t.last
}
