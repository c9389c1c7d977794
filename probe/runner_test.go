package probe

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	r, err := NewRunner(append([]Option{WithConsoleOutput(false)}, opts...)...)
	require.NoError(t, err)
	return r
}

func Test_Runner_RejectsNilTargets(t *testing.T) {
	r := quietRunner(t)

	_, err := r.Time("nil", nil)
	assert.ErrorIs(t, err, ErrNilTarget)

	_, err = r.TimeReps("nil", 1, nil)
	assert.ErrorIs(t, err, ErrNilTarget)

	_, err = r.TimeControl("nil", nil)
	assert.ErrorIs(t, err, ErrNilTarget)

	_, err = r.TimeControlReps("nil", 1, nil)
	assert.ErrorIs(t, err, ErrNilTarget)
}

func Test_Runner_RejectsInvalidReps(t *testing.T) {
	r := quietRunner(t)

	for _, reps := range []int{0, -1, -100} {
		_, err := r.TimeReps("bad_reps", reps, func(int) {})
		assert.ErrorIs(t, err, ErrInvalidReps)
	}
}

func Test_Runner_OptionValidation(t *testing.T) {
	_, err := NewRunner(WithMinIterations(0))
	assert.Error(t, err)

	_, err = NewRunner(WithMinDuration(-time.Second))
	assert.Error(t, err)

	_, err = NewRunner(WithWriter(nil))
	assert.Error(t, err)

	_, err = NewRunner(WithMemoryProbe(nil))
	assert.Error(t, err)
}

func Test_Runner_NoOpTargetEndToEnd(t *testing.T) {
	r := quietRunner(t, WithMinIterations(5), WithMinDuration(50*time.Millisecond))

	res, err := r.Time("noop", func(n int) {
		for i := 0; i < n; i++ {
			sinkU64++
		}
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Operations(), int64(5))
	assert.GreaterOrEqual(t, res.MillisecondsPerOp(), 0.0)
	assert.GreaterOrEqual(t, res.Elapsed(), time.Duration(0))
	assert.Equal(t, "noop", res.Name())
}

func Test_Runner_AdjustedElapsedNeverNegative(t *testing.T) {
	r := quietRunner(t, WithMinIterations(3), WithMinDuration(0))

	// A target doing exactly what the overhead loop does: after
	// subtraction the result must clamp at zero, not go negative.
	res, err := r.Time("empty_body", func(n int) {
		for i := 0; i < n; i++ { //nolint:revive
		}
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Elapsed(), time.Duration(0))
}

func Test_Runner_RepsMultiplyOperations(t *testing.T) {
	r := quietRunner(t, WithMinIterations(4), WithMinDuration(0))

	res, err := r.TimeReps("reps", 25, func(n int) {
		for i := 0; i < n; i++ {
			sinkU64++
		}
	})
	require.NoError(t, err)

	// Estimation disabled: exactly minIterations × reps operations.
	assert.Equal(t, int64(100), res.Operations())
}

func Test_Runner_TimeControlExcludesPausedSetup(t *testing.T) {
	r := quietRunner(t, WithMinIterations(3), WithMinDuration(0))

	res, err := r.TimeControl("paused_setup", func(n int, c *Clock) {
		for i := 0; i < n; i++ {
			c.Pause()
			time.Sleep(3 * time.Millisecond) // setup that must not be timed
			c.Resume()
			busyWork(200 * time.Microsecond)
		}
	})
	require.NoError(t, err)

	// 3 iterations × 3ms of paused sleep happened on the wall clock;
	// the measured body is ~0.6ms total.
	assert.Less(t, res.Elapsed(), 5*time.Millisecond)
	assert.GreaterOrEqual(t, res.Elapsed(), time.Duration(0))
}

func Test_Runner_TargetPanicPropagates(t *testing.T) {
	r := quietRunner(t, WithMinIterations(1), WithMinDuration(0))

	assert.Panics(t, func() {
		_, _ = r.Time("exploding", func(int) {
			panic("target failure")
		})
	})
}

func Test_Runner_WritesResultWhenConsoleEnabled(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRunner(
		WithMinIterations(2),
		WithMinDuration(0),
		WithConsoleOutput(true),
		WithWriter(&buf),
	)
	require.NoError(t, err)

	_, err = r.Time("printed", func(n int) {
		for i := 0; i < n; i++ {
			sinkU64++
		}
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "printed")
}

func Test_Default_ReturnsSharedRunner(t *testing.T) {
	assert.Same(t, Default(), Default())
}
