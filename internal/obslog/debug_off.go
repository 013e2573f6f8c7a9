//go:build !debug

package obslog

// TraceEnabled is const false on release builds so the compiler dead-code
// eliminates every `if TraceEnabled` guard around a trace call site.
const TraceEnabled = false

func tracePrintf(format string, args ...interface{}) {}
