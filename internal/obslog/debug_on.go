//go:build debug

package obslog

import "fmt"

// TraceEnabled is const true when built with `-tags debug`.
const TraceEnabled = true

func tracePrintf(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}
