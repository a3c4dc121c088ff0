package pacing

import "time"

// DefaultFPS is used when a non-positive target frequency is supplied.
const DefaultFPS = 20.0

// Controller paces a loop to a target frequency. Deadlines are anchored to the
// construction time (start + k/f) rather than to the previous frame, so slow
// frames are caught up with zero sleeps instead of accumulating drift.
//
// A Controller is owned by a single goroutine.
type Controller struct {
	fps    float64
	start  time.Time
	frames int64
	now    func() time.Time
	sleep  func(time.Duration)
}

// NewController returns a controller targeting fps frames per second.
func NewController(fps float64) *Controller {
	return newController(fps, time.Now, time.Sleep)
}

func newController(fps float64, now func() time.Time, sleep func(time.Duration)) *Controller {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Controller{fps: fps, start: now(), now: now, sleep: sleep}
}

// Interval returns the nominal frame period.
func (c *Controller) Interval() time.Duration {
	return time.Duration(float64(time.Second) / c.fps)
}

// Wait blocks until the ideal deadline of the next frame. It never sleeps
// longer than one interval.
func (c *Controller) Wait() {
	c.frames++
	deadline := c.start.Add(time.Duration(float64(c.frames) * float64(time.Second) / c.fps))
	if d := deadline.Sub(c.now()); d > 0 {
		c.sleep(d)
	}
}

// Frames returns how many times Wait has been called.
func (c *Controller) Frames() int64 { return c.frames }
