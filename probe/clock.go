package probe

import "time"

// calibrationLoops is the fixed loop size used when measuring the cost
// of one pause/resume cycle.
const calibrationLoops = 1000

// calibrationRetries bounds how often a negative overhead delta
// (clock-resolution noise) is retried before falling back to zero.
const calibrationRetries = 10

// Clock is a pausable elapsed-time source owned by exactly one in-flight
// measurement. Resume charges a calibrated overhead unit for the
// instrumentation cost of the stop/accumulate/start cycle itself, so
// pausing around setup work does not inflate the reported time.
type Clock struct {
	startedAt  time.Time
	accum      time.Duration
	overhead   time.Duration
	resumeCost time.Duration
	running    bool
}

func newClock(resumeCost time.Duration) *Clock {
	return &Clock{resumeCost: resumeCost}
}

// Reset zeroes elapsed time and accumulated overhead and stops the clock.
func (c *Clock) Reset() {
	c.accum = 0
	c.overhead = 0
	c.running = false
}

// Start begins (or restarts after Stop) the measurement.
func (c *Clock) Start() {
	if c.running {
		return
	}
	c.startedAt = time.Now()
	c.running = true
}

// Stop ends the current segment, folding it into the accumulated total.
func (c *Clock) Stop() {
	if !c.running {
		return
	}
	c.accum += time.Since(c.startedAt)
	c.running = false
}

// Pause stops the underlying time source without touching accumulated
// overhead. Use it to exclude per-iteration setup from the measurement.
func (c *Clock) Pause() {
	c.Stop()
}

// Resume charges one calibrated resume-cost unit to accumulated overhead,
// then restarts the time source.
func (c *Clock) Resume() {
	if c.running {
		return
	}
	c.overhead += c.resumeCost
	c.startedAt = time.Now()
	c.running = true
}

// Running reports whether the clock is currently accumulating time.
func (c *Clock) Running() bool { return c.running }

// Elapsed returns accumulated raw time minus accumulated overhead,
// clamped to zero: a slight overshoot in the overhead estimate must not
// surface as negative elapsed time.
func (c *Clock) Elapsed() time.Duration {
	raw := c.accum
	if c.running {
		raw += time.Since(c.startedAt)
	}
	if raw < c.overhead {
		return 0
	}
	return raw - c.overhead
}

// calibrateResumeCost measures the average cost of one pause/resume
// cycle. The first measurement only warms the code path and is
// discarded. A negative delta means the loop-only baseline happened to
// run slower than the instrumented loop (resolution noise); retry a
// bounded number of times, else the cost defaults to zero.
func calibrateResumeCost() time.Duration {
	measureResumeCost()

	for attempt := 0; attempt < calibrationRetries; attempt++ {
		if d := measureResumeCost(); d >= 0 {
			return d
		}
	}
	return 0
}

func measureResumeCost() time.Duration {
	c := newClock(0)
	c.Start()

	start := time.Now()
	for i := 0; i < calibrationLoops; i++ {
		sinkU64++
	}
	loopOnly := time.Since(start)

	start = time.Now()
	for i := 0; i < calibrationLoops; i++ {
		sinkU64++
		c.Pause()
		c.Resume()
	}
	instrumented := time.Since(start)
	c.Stop()

	return (instrumented - loopOnly) / calibrationLoops
}
