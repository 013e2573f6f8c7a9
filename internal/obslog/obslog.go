// Package obslog is a leveled trace logger for the simulation hot path.
//
// Verbosity is gated by a build-tag constant (see debug_off.go / debug_on.go)
// the same way the teacher engine gates its simLogVerbose family, so a
// release build compiles the trace calls away entirely.
package obslog

// Level controls which trace calls are emitted when the debug build tag is set.
type Level int

const (
	LevelIteration Level = iota // per-scenario-iteration detail
	LevelYear                   // per-simulated-year detail
	LevelBatch                  // per-batch summary
)

// Verbosity is the active trace threshold; calls at or above it are printed.
var Verbosity = LevelBatch

// Year traces per-year scenario-engine events (regime transitions, RMD
// triggers, IRMAA lookback application, guardrail rule firing).
func Year(format string, args ...interface{}) {
	if Verbosity <= LevelYear {
		tracePrintf(format, args...)
	}
}

// Iteration traces per-iteration batch-orchestrator events (seed assignment,
// antithetic pairing, withdrawal-solver iteration counts).
func Iteration(format string, args ...interface{}) {
	if Verbosity <= LevelIteration {
		tracePrintf(format, args...)
	}
}

// Batch traces batch-level summaries (validation, variance-reduction setup).
func Batch(format string, args ...interface{}) {
	if Verbosity <= LevelBatch {
		tracePrintf(format, args...)
	}
}
