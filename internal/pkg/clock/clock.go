// Package clock abstracts the wall clock so product timestamps
// (createdAt, publishedAt, count sort keys) are deterministic under test.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC.
type RealClock struct{}

// NewRealClock creates a RealClock.
func NewRealClock() Clock {
	return RealClock{}
}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// MockClock is a settable clock, safe for concurrent use. With a non-zero
// step every call to Now advances the clock, so consecutive writes get
// distinct creation times.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewMockClock creates a MockClock frozen at start.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{current: start}
}

// NewSteppingClock creates a MockClock that moves forward by step after each Now.
func NewSteppingClock(start time.Time, step time.Duration) *MockClock {
	return &MockClock{current: start, step: step}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.current
	m.current = m.current.Add(m.step)
	return now
}

// Set moves the clock to t.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}
