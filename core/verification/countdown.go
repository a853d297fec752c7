package verification

import (
	"fmt"
	"time"
)

// DefaultDuration is how long a code stays valid.
const DefaultDuration = 300 * time.Second

// Countdown counts whole seconds down to zero.
type Countdown struct {
	total     int
	remaining int
	running   bool
}

// NewCountdown returns a running countdown of d, rounded down to seconds.
// Durations under one second use DefaultDuration.
func NewCountdown(d time.Duration) Countdown {
	total := int(d / time.Second)
	if total <= 0 {
		total = int(DefaultDuration / time.Second)
	}
	return Countdown{total: total, remaining: total, running: true}
}

// Tick removes one second while running. It returns true on the tick that
// reaches zero; the countdown stops there and further ticks do nothing.
func (c *Countdown) Tick() bool {
	if !c.running || c.remaining == 0 {
		return false
	}
	c.remaining--
	if c.remaining == 0 {
		c.running = false
		return true
	}
	return false
}

// Reset restores the full duration and starts the countdown.
func (c *Countdown) Reset() {
	c.remaining = c.total
	c.running = true
}

// Stop freezes the countdown.
func (c *Countdown) Stop() {
	c.running = false
}

// Remaining returns the seconds left.
func (c Countdown) Remaining() int {
	return c.remaining
}

// Running reports whether ticks still count.
func (c Countdown) Running() bool {
	return c.running
}

// Expired reports whether the countdown reached zero.
func (c Countdown) Expired() bool {
	return c.remaining == 0
}

// String formats the remaining time as M:SS.
func (c Countdown) String() string {
	return fmt.Sprintf("%d:%02d", c.remaining/60, c.remaining%60)
}
