package probe

import (
	"math"
	"time"
)

// noiseFloor is the absolute duration below which a single sample is
// conventionally too short to trust, independent of the configured
// minimum. It is deliberately kept alongside the scaled minTime/1000
// guard: the absolute floor dominates for small configured minimums,
// the scaled one for very large ones.
const noiseFloor = 10 * time.Millisecond

// runnable is the internal shape every timed target is normalized to:
// it drives n iterations and may pause/resume the supplied clock.
type runnable func(n int, c *Clock)

// iterationPlanner estimates how many repetitions of a target are needed
// for the timed run to exceed the configured minimum duration.
type iterationPlanner struct {
	minIterations int
	minTime       time.Duration
	resumeCost    time.Duration
}

// plan doubles the iteration count from 1 until a sample is both long
// enough to trust and at (or projected past) the minimum, then backs off
// to the previous count and rescales it to the requested minimum using
// the last sample's observed rate. A configured minimum of zero is an
// explicit opt-out: the caller-supplied count is used verbatim.
func (p iterationPlanner) plan(target runnable) int {
	if p.minTime <= 0 {
		return p.minIterations
	}

	n := 1
	var elapsed time.Duration
	for {
		elapsed = p.sample(target, n)
		if elapsed >= p.minTime {
			break
		}
		if elapsed >= noiseFloor && elapsed >= p.minTime/1000 {
			break
		}
		if n > math.MaxInt32/2 {
			break
		}
		n *= 2
	}

	prev := n / 2
	if prev < 1 {
		prev = 1
	}

	planned := prev
	if elapsed > 0 {
		// The halved count would take ~elapsed/2 at the sampled rate;
		// scale it to fill the requested minimum.
		ratio := float64(p.minTime) / (float64(elapsed) / 2)
		scaled := float64(prev) * ratio
		if scaled > math.MaxInt32 {
			scaled = math.MaxInt32
		}
		planned = int(scaled)
	}
	if planned < p.minIterations {
		planned = p.minIterations
	}
	return planned
}

func (p iterationPlanner) sample(target runnable, n int) time.Duration {
	c := newClock(p.resumeCost)
	c.Start()
	target(n, c)
	c.Stop()
	return c.Elapsed()
}
