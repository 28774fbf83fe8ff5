package core

import "time"

// Clock measures wall time elapsed since Start in seconds. A stopped
// clock keeps its last elapsed reading.
type Clock struct {
	startedAt time.Time
	elapsed   float64
}

func NewClock() *Clock {
	return &Clock{}
}

// Update refreshes the elapsed reading. Call it just before sampling
// Elapsed; it has no effect on a clock that was never started.
func (c *Clock) Update() {
	if !c.startedAt.IsZero() {
		c.elapsed = time.Since(c.startedAt).Seconds()
	}
}

// Start begins timing and resets the elapsed reading.
func (c *Clock) Start() {
	c.startedAt = time.Now()
	c.elapsed = 0
}

// Stop halts timing without resetting the elapsed reading.
func (c *Clock) Stop() {
	c.startedAt = time.Time{}
}

// Elapsed returns seconds since Start as of the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
