// Package engine implements the scene/dialog progression engine: the
// position cursor, the response stores, the navigation gate and the dialog
// controller. It is UI-agnostic and single-threaded: every method must be
// called from the owning event loop, and deferred work comes back to that
// loop through a Scheduler.
package engine

import "time"

// Scheduler defers work without blocking the event loop.
type Scheduler interface {
	// AfterFunc runs fn on the event loop once d has elapsed.
	// Calling cancel before then guarantees fn never runs.
	AfterFunc(d time.Duration, fn func()) (cancel func())

	// Go runs task off the event loop; the continuation it returns is
	// applied back on the loop. A nil continuation is ignored.
	Go(task func() func())
}
