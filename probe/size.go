package probe

import (
	"errors"
	"math"
	"reflect"
	"runtime"
	"sync"
)

// stabilizeAttempts bounds the retry loop that defends a single noisy
// heap-delta reading: stop early once two consecutive attempts agree on
// a positive value, otherwise return the last estimate.
const stabilizeAttempts = 10

// boxProbeValue is the boxing baseline payload: an 8-byte integer large
// enough that the runtime's small-integer box cache (values below 256
// never allocate) cannot zero the measurement.
const boxProbeValue int64 = 0x5DEECE66D

const boxPayloadBytes = 8

var errNilInterfaceValue = errors.New("probe: cannot size a nil interface value")

// Sizer measures the in-memory byte footprint of values produced by a
// factory. There is no sizeof for heap-resident data, so it infers size
// from controlled allocation deltas against a quiesced heap.
type Sizer struct {
	mem     MemoryProbe
	base    OverheadBaseline
	baseSet bool
	logger  Logger

	boxOnce sync.Once
	boxOver int64
}

// SizerOption configures a Sizer.
type SizerOption func(*Sizer) error

// WithSizerMemoryProbe swaps the heap-introspection capability.
func WithSizerMemoryProbe(mem MemoryProbe) SizerOption {
	return func(s *Sizer) error {
		if mem == nil {
			return errors.New("probe: memory probe must not be nil")
		}
		s.mem = mem
		return nil
	}
}

// WithSizerLogger sets the logger for stabilization warnings.
func WithSizerLogger(logger Logger) SizerOption {
	return func(s *Sizer) error {
		s.logger = logger
		return nil
	}
}

// WithSizerBaseline injects a precomputed overhead baseline.
func WithSizerBaseline(b OverheadBaseline) SizerOption {
	return func(s *Sizer) error {
		s.base = b
		s.baseSet = true
		return nil
	}
}

// NewSizer builds a Sizer. Unless a baseline is injected, the
// process-wide one is computed here, before any measurement.
func NewSizer(opts ...SizerOption) (*Sizer, error) {
	s := &Sizer{mem: runtimeProbe{}}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if !s.baseSet {
		s.base = DefaultBaseline()
	}
	return s, nil
}

// Baseline returns the overhead baseline this Sizer normalizes against.
func (s *Sizer) Baseline() OverheadBaseline { return s.base }

// ByteSize measures the byte footprint of the value produced by factory,
// using the default Sizer.
func ByteSize[T any](factory func() T) (int64, error) {
	return ByteSizeWith(DefaultSizer(), factory)
}

// ByteSizeWith measures the byte footprint of the value produced by
// factory. Value kinds are sized with the boxing-delta technique,
// reference kinds with the heap-delta technique; both retry until the
// estimate stabilizes. The result is never negative.
func ByteSizeWith[T any](s *Sizer, factory func() T) (int64, error) {
	if factory == nil {
		return 0, ErrNilFactory
	}

	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Interface {
		// The static type gives no kind; resolve it from a produced value.
		v := factory()
		t = reflect.TypeOf(v)
		if t == nil {
			return 0, errNilInterfaceValue
		}
	}

	var size int64
	if isValueKind(t.Kind()) {
		size = s.boxedSize(func() any { return factory() })
	} else {
		size = s.stable(func() int64 { return heapDelta(s.mem, factory) })
	}
	if size < 0 {
		size = 0
	}
	return size, nil
}

// boxedSize sizes a value kind by coercing it into a heap box (Go's
// value-to-interface conversion) and subtracting the known boxing
// overhead: the measured box of an 8-byte integer minus its 8 payload
// bytes.
func (s *Sizer) boxedSize(box func() any) int64 {
	measured := s.stable(func() int64 { return heapDelta(s.mem, box) })
	return measured - s.boxOverhead()
}

func (s *Sizer) boxOverhead() int64 {
	s.boxOnce.Do(func() {
		base := s.stable(func() int64 {
			return heapDelta(s.mem, func() any { return boxProbeValue })
		})
		s.boxOver = base - boxPayloadBytes
		if s.boxOver < 0 {
			s.boxOver = 0
		}
	})
	return s.boxOver
}

func (s *Sizer) stable(sample func() int64) int64 {
	return stabilize(s.logger, sample)
}

// heapDelta snapshots live heap bytes around one factory invocation
// against a quiesced heap. The produced value is pinned until after the
// second snapshot so the collector cannot reclaim it mid-measurement.
func heapDelta[T any](mem MemoryProbe, mk func() T) int64 {
	mem.Quiesce()
	before := mem.TotalManagedBytes()
	v := mk()
	after := mem.TotalManagedBytes()
	delta := int64(after) - int64(before)
	runtime.KeepAlive(v)
	return delta
}

// stabilize repeats a noisy measurement until two consecutive attempts
// agree on a positive value, or the retry budget runs out. In that
// case the last estimate is returned, with a warning rather than an
// error.
func stabilize(logger Logger, sample func() int64) int64 {
	prev := int64(math.MinInt64)
	var cur int64
	for attempt := 0; attempt < stabilizeAttempts; attempt++ {
		cur = sample()
		if cur == prev && cur > 0 {
			return cur
		}
		prev = cur
	}
	if logger != nil {
		logger.Warn("size estimate did not stabilize, returning last attempt",
			"attempts", stabilizeAttempts, "estimate", cur)
	}
	return cur
}

// isValueKind reports whether values of kind k are copied by value with
// no intrinsic heap identity. Everything else is sized via heap deltas.
func isValueKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.Array, reflect.String, reflect.Struct:
		return true
	default:
		return false
	}
}

var (
	defaultSizerOnce sync.Once
	defaultSizer     *Sizer
)

// DefaultSizer returns the shared Sizer with default settings.
func DefaultSizer() *Sizer {
	defaultSizerOnce.Do(func() {
		defaultSizer, _ = NewSizer()
	})
	return defaultSizer
}
