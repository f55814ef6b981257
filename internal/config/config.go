// Package config holds the handful of process-wide flags that change how
// the checker renders itself, never how it decides types. Adapted from the
// teacher's own internal/config package, which exposes the same kind of
// mode flags (IsTestMode, IsLSPMode) for exactly the same reason: a
// deterministic, diff-friendly String() form for fixtures and golden tests.
package config

// IsTestMode, when set, makes idgen.NewUnitID return short, sequential,
// deterministic placeholders instead of random UUIDs, so golden-output
// tests don't have to scrub random ids out of their expectations. A test
// that needs this sets it together with types.ResetCounterForTest and
// idgen.ResetForTest; no test in this module sets it, and production
// embedders leave it false.
var IsTestMode = false
