package probe

import "runtime"

// MemoryProbe abstracts the runtime's heap introspection so the size
// subsystem (and tests) can swap the collector-bound pieces out.
type MemoryProbe interface {
	// Quiesce forces pending collection work to complete so it cannot
	// confound a timed or measured section.
	Quiesce()

	// TotalManagedBytes reports the bytes of live heap-allocated data.
	TotalManagedBytes() uint64
}

// runtimeProbe is the production MemoryProbe backed by the Go runtime.
type runtimeProbe struct{}

// Quiesce runs two full collections: the second cycle executes
// finalizers queued by the first, which is as close as the runtime gets
// to collect-and-wait-for-pending-finalizers.
func (runtimeProbe) Quiesce() {
	runtime.GC()
	runtime.GC()
}

func (runtimeProbe) TotalManagedBytes() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}
