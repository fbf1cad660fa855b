package reactivity

// activeSub is the Subscriber currently running, or nil. shouldTrack
// gates whether Dep.track does anything at all. Both are process-wide
// mutable state under the single-threaded cooperative model spec §5
// mandates for the core: no locks, no atomics, exactly one mutator.
var (
	activeSub   subscriber
	shouldTrack = true
)

// trackStack is a small LIFO used by PauseTracking/EnableTracking/
// ResetTracking to support nesting, per spec §6.
var trackStack []bool

// PauseTracking disables tracking until the matching EnableTracking (or
// ResetTracking) call, saving the previous state so calls can nest.
func PauseTracking() {
	trackStack = append(trackStack, shouldTrack)
	shouldTrack = false
}

// EnableTracking re-enables tracking, saving the previous state so calls
// can nest with PauseTracking.
func EnableTracking() {
	trackStack = append(trackStack, shouldTrack)
	shouldTrack = true
}

// ResetTracking restores shouldTrack to whatever it was before the most
// recent PauseTracking/EnableTracking call.
func ResetTracking() {
	n := len(trackStack)
	if n == 0 {
		shouldTrack = true
		return
	}
	shouldTrack = trackStack[n-1]
	trackStack = trackStack[:n-1]
}

// setActiveSub installs sub as the active Subscriber and returns a
// restore function that puts back whatever was active before — the LIFO
// pattern every run()/refreshComputed() call uses to get correct
// nesting when one Subscriber's fn synchronously reads another
// reactive value (spec §5).
func setActiveSub(sub subscriber) (restore func()) {
	prev := activeSub
	activeSub = sub
	return func() { activeSub = prev }
}
