package probe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const (
	defaultMinIterations = 5
	defaultMinDuration   = 500 * time.Millisecond
	warmupReps           = 100
)

var errNonPositiveIterations = errors.New("probe: minimum iterations must be at least 1")

// Runner orchestrates calibrated benchmarks. It is single-threaded by
// design: accurate measurement requires that nothing else competes for
// the CPU during the timed window, so a Runner must not be shared by
// concurrent measurements.
type Runner struct {
	minIterations int
	minTime       time.Duration
	writeResults  bool
	out           io.Writer
	logger        Logger
	mem           MemoryProbe
	base          OverheadBaseline
	baseSet       bool
}

// Option configures a Runner.
type Option func(*Runner) error

// WithMinIterations sets the floor for the planned iteration count.
func WithMinIterations(n int) Option {
	return func(r *Runner) error {
		if n < 1 {
			return errNonPositiveIterations
		}
		r.minIterations = n
		return nil
	}
}

// WithMinDuration sets the minimum duration a timed run must exceed.
// Zero disables iteration estimation: the minimum iteration count is
// used verbatim.
func WithMinDuration(d time.Duration) Option {
	return func(r *Runner) error {
		if d < 0 {
			return fmt.Errorf("probe: minimum duration must not be negative, got %s", d)
		}
		r.minTime = d
		return nil
	}
}

// WithConsoleOutput controls whether completed results are also printed.
// The result record is returned either way.
func WithConsoleOutput(enabled bool) Option {
	return func(r *Runner) error {
		r.writeResults = enabled
		return nil
	}
}

// WithWriter redirects printed results away from stdout.
func WithWriter(w io.Writer) Option {
	return func(r *Runner) error {
		if w == nil {
			return errors.New("probe: writer must not be nil")
		}
		r.out = w
		return nil
	}
}

// WithLogger sets the logger for calibration warnings and debug detail.
func WithLogger(logger Logger) Option {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}

// WithMemoryProbe swaps the heap-introspection capability, mainly for tests.
func WithMemoryProbe(mem MemoryProbe) Option {
	return func(r *Runner) error {
		if mem == nil {
			return errors.New("probe: memory probe must not be nil")
		}
		r.mem = mem
		return nil
	}
}

// WithBaseline injects a precomputed overhead baseline instead of the
// process-wide default.
func WithBaseline(b OverheadBaseline) Option {
	return func(r *Runner) error {
		r.base = b
		r.baseSet = true
		return nil
	}
}

// NewRunner builds a Runner. Unless WithBaseline is given, the
// process-wide baseline is computed here (at most once per process),
// before any measurement this Runner performs.
func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{
		minIterations: defaultMinIterations,
		minTime:       defaultMinDuration,
		writeResults:  true,
		out:           os.Stdout,
		mem:           runtimeProbe{},
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if !r.baseSet {
		r.base = DefaultBaseline()
	}
	return r, nil
}

// Time benchmarks target, which must drive its measured operation n times.
func (r *Runner) Time(name string, target func(n int)) (TimeResult, error) {
	return r.TimeReps(name, 1, target)
}

// TimeReps is Time for targets whose body internally repeats the
// measured operation reps times per driven iteration, so per-operation
// cost divides correctly.
func (r *Runner) TimeReps(name string, reps int, target func(n int)) (TimeResult, error) {
	if target == nil {
		return TimeResult{}, ErrNilTarget
	}
	return r.run(name, reps, func(n int, _ *Clock) { target(n) })
}

// TimeControl benchmarks a target that receives the measurement clock,
// letting it pause around per-iteration setup it does not want timed.
func (r *Runner) TimeControl(name string, target func(n int, c *Clock)) (TimeResult, error) {
	return r.TimeControlReps(name, 1, target)
}

// TimeControlReps combines TimeControl and TimeReps.
func (r *Runner) TimeControlReps(name string, reps int, target func(n int, c *Clock)) (TimeResult, error) {
	if target == nil {
		return TimeResult{}, ErrNilTarget
	}
	return r.run(name, reps, runnable(target))
}

// overheadLoop is structurally identical to the loop a well-formed
// target runs (counted loop, closure dispatch) with an empty body.
// Timing it for the same iteration count isolates the target body's
// true cost; the gc compiler does not eliminate counted empty loops.
func overheadLoop(n int, _ *Clock) {
	for i := 0; i < n; i++ { //nolint:revive // intentionally empty
	}
}

// run executes the measurement protocol. The six measured phases
// (warm-ups, estimate, quiesce, target, quiesce, overhead) are strictly
// sequential: reordering would break the assumption that both timed
// sections see comparable ambient conditions.
func (r *Runner) run(name string, reps int, target runnable) (TimeResult, error) {
	if reps < 1 {
		return TimeResult{}, ErrInvalidReps
	}

	// Warm-up: force any deferred compilation or lazy initialization in
	// both bodies so the timed runs see steady-state cost. Results are
	// discarded.
	target(1, newClock(r.base.ResumeCost))
	overheadLoop(warmupReps, nil)

	planner := iterationPlanner{
		minIterations: r.minIterations,
		minTime:       r.minTime,
		resumeCost:    r.base.ResumeCost,
	}
	n := planner.plan(target)
	if r.logger != nil {
		r.logger.Debug("iteration plan ready", "name", name, "iterations", n)
	}

	r.mem.Quiesce()
	targetElapsed := r.timed(target, n)

	r.mem.Quiesce()
	overheadElapsed := r.timed(overheadLoop, n)

	adjusted := targetElapsed - overheadElapsed
	if adjusted < 0 {
		adjusted = 0
	}

	result := NewTimeResult(name, int64(n)*int64(reps), adjusted)
	if r.writeResults {
		fmt.Fprintln(r.out, FormatTimeResult(result))
	}
	return result, nil
}

func (r *Runner) timed(target runnable, n int) time.Duration {
	c := newClock(r.base.ResumeCost)
	c.Start()
	target(n, c)
	c.Stop()
	return c.Elapsed()
}

var (
	defaultRunnerOnce sync.Once
	defaultRunner     *Runner
)

// Default returns the shared Runner with default settings.
func Default() *Runner {
	defaultRunnerOnce.Do(func() {
		defaultRunner, _ = NewRunner()
	})
	return defaultRunner
}

// Time runs a benchmark on the default Runner.
func Time(name string, target func(n int)) (TimeResult, error) {
	return Default().Time(name, target)
}

// TimeReps runs a benchmark with repetitions-per-call on the default Runner.
func TimeReps(name string, reps int, target func(n int)) (TimeResult, error) {
	return Default().TimeReps(name, reps, target)
}

// TimeControl runs a clock-controlled benchmark on the default Runner.
func TimeControl(name string, target func(n int, c *Clock)) (TimeResult, error) {
	return Default().TimeControl(name, target)
}
