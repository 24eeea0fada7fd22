// Package clock abstracts the monotonic time source used by match timers.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Real returns time.Now, which carries a monotonic reading.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

// Mock is a controllable clock for tests and headless simulation.
type Mock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
