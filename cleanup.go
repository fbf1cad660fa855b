package reactivity

import "log/slog"

// OnEffectCleanup registers fn to run just before the currently running
// Effect's next run, or when it is Stopped — whichever comes first
// (spec §6 helper). It must be called synchronously from inside an
// Effect's function; calling it with no Effect running logs a warning
// (unless failSilently is passed as true) and returns ErrNoActiveEffect.
func OnEffectCleanup(fn func(), failSilently ...bool) error {
	eff, ok := activeSub.(*Effect)
	if !ok {
		if len(failSilently) == 0 || !failSilently[0] {
			slog.Warn("reactivity: on_effect_cleanup called with no active effect")
		}
		return ErrNoActiveEffect
	}
	eff.cleanup = fn
	return nil
}
