package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Calibrate_ProducesSaneBaseline(t *testing.T) {
	b := Calibrate(runtimeProbe{})

	assert.GreaterOrEqual(t, b.ObjectOverhead, int64(0))
	assert.Less(t, b.ObjectOverhead, int64(128))
	assert.GreaterOrEqual(t, b.ResumeCost, time.Duration(0))
}

func Test_DefaultBaseline_ComputedOnce(t *testing.T) {
	first := DefaultBaseline()
	second := DefaultBaseline()

	assert.Equal(t, first, second)
}

func Test_Calibrate_IsDeterministicProcedure(t *testing.T) {
	// Recomputing must reuse the same procedure: the object-overhead
	// component is a property of the allocator and may not drift.
	a := Calibrate(runtimeProbe{})
	b := Calibrate(runtimeProbe{})

	assert.Equal(t, a.ObjectOverhead, b.ObjectOverhead)
}
