package main

import (
	"math"

	"mainboard-engine/engine"
)

// handleFromValue maps a pointer value back to a session handle. Values that
// do not fit a handle become the invalid handle 0 instead of aliasing a live
// window through truncation.
func handleFromValue(v uint64) engine.WindowHandle {
	if v > math.MaxUint32 {
		return 0
	}
	return engine.WindowHandle(v)
}
