package reactivity

import "fmt"

// FlushError wraps the first error raised by an Effect during a batch
// flush (spec §7: "first error wins"). Every Effect still queued in the
// batch runs regardless of one erroring; Suppressed counts how many
// further Effect errors were swallowed rather than lost silently.
type FlushError struct {
	First      error
	Suppressed int
}

func (e *FlushError) Error() string {
	if e.Suppressed == 0 {
		return fmt.Sprintf("reactivity: batch flush failed: %v", e.First)
	}
	return fmt.Sprintf("reactivity: batch flush failed: %v (%d further effect error(s) suppressed)", e.First, e.Suppressed)
}

func (e *FlushError) Unwrap() error { return e.First }

// ErrReadonlyComputed is returned by Computed.SetValue when no Setter
// was configured.
var ErrReadonlyComputed = fmt.Errorf("reactivity: computed value is read-only")

// ErrNoActiveEffect is returned by OnEffectCleanup when called with no
// Effect currently running.
var ErrNoActiveEffect = fmt.Errorf("reactivity: effect cleanup registered with no active effect")
