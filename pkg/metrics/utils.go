package metrics

import (
	"fmt"
	"runtime"
)

// CodeLocation returns the name of the function calling it, e.g. as
// location label of retry metrics.
// skip is the number of additional call stack frames to skip, 1 returns
// the caller of the caller.
func CodeLocation(skip uint16) string {
	pc, _, _, ok := runtime.Caller(int(skip) + 1)
	if !ok {
		panic(fmt.Errorf("cannot identify caller when skipping %d frames", skip))
	}
	if fn := runtime.FuncForPC(pc); fn != nil && fn.Name() != "" {
		return fn.Name()
	}
	return "<Unknown>"
}
