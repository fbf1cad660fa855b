package reactivity

import "log/slog"

// batchDepth tracks nesting of StartBatch/EndBatch. batchedEffects and
// batchedComputed are singly-linked (via each Subscriber's nextInBatch)
// queues of pending notifications, flushed when the outermost batch
// closes (spec §4.5).
var (
	batchDepth     int
	batchedEffects subscriber
	batchedComputed subscriber
)

// StartBatch opens (or nests into) a batch. Every Trigger call opens one
// implicitly; callers can also open one explicitly to coalesce several
// mutations into a single round of effect re-runs.
func StartBatch() {
	checkSingleGoroutine()
	batchDepth++
}

// EndBatch closes (or un-nests from) a batch. Only the outermost call
// triggers the flush. Per spec §4.5 error aggregation, only the first
// error raised by any Effect during the flush is returned; every queued
// Effect still runs regardless.
func EndBatch() error {
	checkSingleGoroutine()
	batchDepth--
	if batchDepth > 0 {
		return nil
	}
	return flush()
}

// enqueueSub pushes sub onto the computed or effect batch list, guarded
// by flagNotified so a Subscriber is enqueued at most once per batch
// (spec invariant 7).
func enqueueSub(sub subscriber, isComputed bool) {
	if sub.getFlags().has(flagNotified) {
		return
	}
	sub.setFlags(sub.getFlags() | flagNotified)

	if isComputed {
		sub.setNextInBatch(batchedComputed)
		batchedComputed = sub
	} else {
		sub.setNextInBatch(batchedEffects)
		batchedEffects = sub
	}
}

// flush runs the two-phase protocol from spec §4.5: Computeds are
// de-queued and re-armed (NOTIFIED cleared) without being recomputed —
// they stay dirty and recompute lazily on next read, which is what
// makes a Computed read during a batch glitch-free. Effects then run
// (or consult their scheduler), popped one at a time so that Effects
// enqueued mid-flush (because a trigger() call nested another
// StartBatch/EndBatch) are also processed.
func flush() error {
	for c := batchedComputed; c != nil; {
		next := c.nextInBatch()
		c.setNextInBatch(nil)
		c.setFlags(c.getFlags() &^ flagNotified)
		c = next
	}
	batchedComputed = nil

	var firstErr error
	recovered := 0

	for batchedEffects != nil {
		e := batchedEffects
		batchedEffects = e.nextInBatch()
		e.setNextInBatch(nil)
		e.setFlags(e.getFlags() &^ flagNotified)

		eff, ok := e.(*Effect)
		if !ok || !eff.getFlags().has(flagActive) {
			continue
		}

		if err := eff.runCatchingError(); err != nil {
			if firstErr == nil {
				firstErr = err
			} else {
				recovered++
			}
		}
	}

	if firstErr != nil {
		if recovered > 0 {
			slog.Error("reactivity: batch flush suppressed additional effect errors",
				"first_error", firstErr, "suppressed_count", recovered)
		}
		return &FlushError{First: firstErr, Suppressed: recovered}
	}
	return nil
}
