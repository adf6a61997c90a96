package testutil

import (
	"time"

	"github.com/light-bringer/catalog-engine/internal/pkg/clock"
)

// BaseTime is the fixed start of every test clock.
var BaseTime = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// NewFixedClock creates a mock clock frozen at BaseTime.
func NewFixedClock() *clock.MockClock {
	return clock.NewMockClock(BaseTime)
}

// NewMockClock creates a mock clock that advances one second per reading,
// so products created in sequence get distinct creation times.
func NewMockClock() *clock.MockClock {
	return clock.NewSteppingClock(BaseTime, time.Second)
}
