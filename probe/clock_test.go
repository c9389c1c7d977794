package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func busyWork(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		sinkU64++
	}
}

func Test_Clock_StartStopAccumulates(t *testing.T) {
	c := newClock(0)

	c.Start()
	busyWork(2 * time.Millisecond)
	c.Stop()

	assert.GreaterOrEqual(t, c.Elapsed(), 2*time.Millisecond)
	assert.False(t, c.Running())
}

func Test_Clock_ResetZeroesEverything(t *testing.T) {
	c := newClock(time.Microsecond)

	c.Start()
	busyWork(time.Millisecond)
	c.Pause()
	c.Resume()
	c.Stop()
	require.Greater(t, c.Elapsed(), time.Duration(0))

	c.Reset()
	assert.Equal(t, time.Duration(0), c.Elapsed())
	assert.False(t, c.Running())
}

func Test_Clock_PausedTimeIsNotCounted(t *testing.T) {
	c := newClock(0)

	c.Start()
	busyWork(time.Millisecond)
	c.Pause()
	time.Sleep(20 * time.Millisecond)
	c.Resume()
	busyWork(time.Millisecond)
	c.Stop()

	// Well under the 20ms that passed while paused.
	assert.Less(t, c.Elapsed(), 10*time.Millisecond)
	assert.GreaterOrEqual(t, c.Elapsed(), time.Duration(0))
}

func Test_Clock_PauseResumeIsNotDoubleCharged(t *testing.T) {
	work := 5 * time.Millisecond

	plain := newClock(0)
	plain.Start()
	busyWork(work)
	plain.Stop()

	paused := newClock(DefaultBaseline().ResumeCost)
	paused.Start()
	busyWork(work)
	paused.Pause()
	paused.Resume()
	paused.Stop()

	assert.GreaterOrEqual(t, paused.Elapsed(), time.Duration(0))
	// One empty pause/resume cycle must not add more than scheduling
	// noise over an equivalent uninterrupted run.
	assert.Less(t, paused.Elapsed(), plain.Elapsed()+2*time.Millisecond)
}

func Test_Clock_ElapsedNeverNegative(t *testing.T) {
	// An absurdly large resume cost must clamp, not go negative.
	c := newClock(time.Hour)

	c.Start()
	c.Pause()
	c.Resume()
	c.Stop()

	assert.Equal(t, time.Duration(0), c.Elapsed())
}

func Test_Clock_RedundantTransitionsAreNoOps(t *testing.T) {
	c := newClock(time.Hour)

	c.Start()
	c.Start()
	c.Resume() // already running: must not charge overhead
	c.Stop()
	c.Stop()
	c.Pause() // already stopped

	assert.GreaterOrEqual(t, c.Elapsed(), time.Duration(0))
}

func Test_CalibrateResumeCost_NonNegative(t *testing.T) {
	cost := calibrateResumeCost()

	assert.GreaterOrEqual(t, cost, time.Duration(0))
	// Sanity: one stop/accumulate/start cycle is well under a millisecond.
	assert.Less(t, cost, time.Millisecond)
}
