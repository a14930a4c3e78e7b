package scheduler

import (
	"sync"
	"time"
)

// Clock is a monotonic millisecond counter.
type Clock interface {
	Milliseconds() int64
}

// SystemClock counts milliseconds since it was created.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{
		start: time.Now(),
	}
}

func (c *SystemClock) Milliseconds() int64 {
	return time.Since(c.start).Milliseconds()
}

// ManualClock only moves when told to.
type ManualClock struct {
	lock sync.Mutex
	now  int64
}

func NewManualClock(start int64) *ManualClock {
	return &ManualClock{
		now: start,
	}
}

func (c *ManualClock) Milliseconds() int64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now += d.Milliseconds()
}
