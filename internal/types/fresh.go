package types

import (
	"fmt"
	"sync/atomic"
)

// counter is the process-global monotonic source for fresh variable ids.
// The spec requires this to be atomic and unique, not dense, so a plain
// atomic.Uint64 suffices; no third-party id-generation library appears
// anywhere in the reference corpus for this kind of internal counter (the
// google/uuid dependency is reserved for externally-correlatable trace ids,
// a different requirement — see internal/idgen).
var counter atomic.Uint64

// Fresh returns a new, globally unique inference variable. It is never
// recycled within a process, matching the lifecycle the scope/environment
// model requires.
func Fresh() Var {
	n := counter.Add(1)
	return Var{ID: fmt.Sprintf("t%d", n)}
}

// ResetCounterForTest rewinds the fresh-variable counter to zero. It exists
// only so tests can assert on exact variable names; production code must
// never call it, since two compilation units sharing a process would then
// mint colliding ids. Mirrors the teacher's own test-only reset helpers
// (ResetBuiltins, symbols.ResetPrelude), which exist for the identical
// reason: deterministic tests against otherwise process-global state.
func ResetCounterForTest() {
	counter.Store(0)
}
