package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCount returns a liveness Check that fails once the goroutine
// count exceeds the threshold, catching goroutine leaks before OOM does.
func GoroutineCount(threshold int) Check {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, threshold)
		}
		return nil
	}
}
