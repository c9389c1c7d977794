package probe

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNilTarget is returned when a benchmark target is nil.
	ErrNilTarget = errors.New("probe: benchmark target must not be nil")

	// ErrNilFactory is returned when a size-probe factory is nil.
	ErrNilFactory = errors.New("probe: factory must not be nil")

	// ErrInvalidReps is returned when repetitions-per-call is less than one.
	ErrInvalidReps = errors.New("probe: repetitions per call must be at least 1")
)

// Logger is the minimal logging surface the engine uses. *slog.Logger
// satisfies it. A nil logger disables logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Sink defeats dead-code elimination. Targets whose result would
// otherwise be unused should write it here so the optimizer cannot
// discard the measured body.
var Sink any

// sinkU64 is the engine's own observe-the-result slot for calibration loops.
var sinkU64 uint64

// TimeResult is the immutable record of one completed benchmark.
// Per-operation figures are derived on access, never stored.
type TimeResult struct {
	name       string
	operations int64
	elapsed    time.Duration
}

// NewTimeResult builds a result record. Elapsed is clamped to zero so a
// benchmark can never report negative time.
func NewTimeResult(name string, operations int64, elapsed time.Duration) TimeResult {
	if elapsed < 0 {
		elapsed = 0
	}
	return TimeResult{name: name, operations: operations, elapsed: elapsed}
}

// Name returns the benchmark label, possibly empty.
func (r TimeResult) Name() string { return r.name }

// Operations returns the total logical operations timed
// (iterations × repetitions per call).
func (r TimeResult) Operations() int64 { return r.operations }

// Elapsed returns the calibrated duration of the run.
func (r TimeResult) Elapsed() time.Duration { return r.elapsed }

// ElapsedMilliseconds returns the calibrated duration in milliseconds.
func (r TimeResult) ElapsedMilliseconds() float64 {
	return float64(r.elapsed) / float64(time.Millisecond)
}

// NanosecondsPerOp returns the average cost of one operation in nanoseconds.
func (r TimeResult) NanosecondsPerOp() float64 {
	if r.operations == 0 {
		return 0
	}
	return float64(r.elapsed.Nanoseconds()) / float64(r.operations)
}

// MicrosecondsPerOp returns the average cost of one operation in microseconds.
func (r TimeResult) MicrosecondsPerOp() float64 {
	return r.NanosecondsPerOp() / 1e3
}

// MillisecondsPerOp returns the average cost of one operation in milliseconds.
func (r TimeResult) MillisecondsPerOp() float64 {
	if r.operations == 0 {
		return 0
	}
	return r.ElapsedMilliseconds() / float64(r.operations)
}

// Compare orders results by milliseconds per operation, ascending:
// a negative return means r is faster than other.
func (r TimeResult) Compare(other TimeResult) int {
	a, b := r.MillisecondsPerOp(), other.MillisecondsPerOp()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (r TimeResult) String() string {
	name := r.name
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s: %d ops in %s (%.2f ns/op)",
		name, r.operations, r.elapsed.Round(time.Microsecond), r.NanosecondsPerOp())
}
