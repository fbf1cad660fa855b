package reactivity

import (
	"log/slog"
	"runtime/debug"
)

// EffectRef represents a running side effect that can be stopped, paused
// and resumed. Effects run immediately on creation and re-run whenever a
// Dep they last read changes, unless a Scheduler is supplied to take
// over re-run timing.
type EffectRef interface {
	// Stop detaches the effect from every Dep it reads, runs its final
	// cleanup, and marks it inactive. Idempotent.
	Stop()
	// Pause suspends re-runs; a trigger that arrives while paused is
	// remembered and replayed once on Resume.
	Pause()
	// Resume re-enables re-runs, replaying one pending trigger if any
	// arrived while paused.
	Resume()
}

// TrackEvent and TriggerEvent carry the debug information passed to an
// Effect's OnTrack/OnTrigger hooks — the data a devtools integration
// would otherwise read directly off the Dep/Link, exposed here only as
// a callback payload so the core stays ignorant of any particular
// devtools protocol. The hooks are the contract point; implementing a
// devtools integration on top of them remains an external collaborator
// concern.
type TrackEvent struct {
	Target any
	Op     TrackOpType
	Key    any
}

type TriggerEvent struct {
	Target                        any
	Op                            TriggerOpType
	Key                           any
	NewValue, OldValue, OldTarget any
}

// EffectOptions configures an Effect beyond its default "re-run
// synchronously when dirty" behavior, mirroring the shape of the
// teacher's EffectOptions/Options[T] (an explicit struct instead of
// functional options).
type EffectOptions struct {
	// Scheduler, if set, replaces the default re-run-when-dirty
	// behavior: it is invoked instead of running fn directly, and is
	// responsible for deciding when (or whether) to call RunIfDirty.
	Scheduler func()

	// AllowRecurse permits the effect to enqueue at most one outstanding
	// self-triggered notification while it is still running (spec §4.3,
	// §5 reentrancy guard). Off by default: an effect whose own run()
	// triggers one of its own deps is silently dropped.
	AllowRecurse bool

	OnStop    func()
	OnTrack   func(TrackEvent)
	OnTrigger func(TriggerEvent)

	// OnPanic, if set, is called instead of the default slog.Error when
	// fn or cleanup panics — same field name and semantics as the
	// teacher's EffectOptions.OnPanic.
	OnPanic func(err any, stack []byte)
}

// Effect is a side-effecting Subscriber, re-run whenever a Dep it last
// read changes.
type Effect struct {
	fn      func()
	cleanup func()

	scheduler    func()
	allowRecurse bool
	onStop       func()
	onTrack      func(TrackEvent)
	onTrigger    func(TriggerEvent)
	onPanic      func(err any, stack []byte)

	f flags

	depsH, depsT *link
	next         subscriber

	pausedQueued bool

	scope *Scope
}

// NewEffect creates and immediately runs an Effect. If fn panics on the
// first run, the Effect is stopped and the panic is re-raised to the
// caller (spec §6: "Runs fn once immediately; on throw, stops and
// re-raises").
func NewEffect(fn func(), opts ...EffectOptions) *Effect {
	var o EffectOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	e := &Effect{
		fn:           fn,
		scheduler:    o.Scheduler,
		allowRecurse: o.AllowRecurse,
		onStop:       o.OnStop,
		onTrack:      o.OnTrack,
		onTrigger:    o.OnTrigger,
		onPanic:      o.OnPanic,
		f:            flagActive,
	}

	if activeScope != nil {
		activeScope.adopt(e)
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				e.Stop()
				panic(r)
			}
		}()
		e.run()
	}()

	return e
}

// subscriber interface implementation.
func (e *Effect) depsHead() *link             { return e.depsH }
func (e *Effect) depsTail() *link             { return e.depsT }
func (e *Effect) setDepsHead(l *link)         { e.depsH = l }
func (e *Effect) setDepsTail(l *link)         { e.depsT = l }
func (e *Effect) getFlags() flags             { return e.f }
func (e *Effect) setFlags(f flags)            { e.f = f }
func (e *Effect) nextInBatch() subscriber     { return e.next }
func (e *Effect) setNextInBatch(s subscriber) { e.next = s }

// run executes fn under tracking, per the steps of spec §4.3. A panic in
// fn is reported through runGuarded (onPanic or slog.Error) and then
// re-raised once the tracking state and dependency list are restored.
func (e *Effect) run() {
	if !e.f.has(flagActive) {
		e.fn()
		return
	}

	e.f |= flagRunning

	e.runCleanup()

	prepareDeps(e)

	restoreSub := setActiveSub(e)
	prevTrack := shouldTrack
	shouldTrack = true

	var panicVal any
	e.runGuarded("effect", func() {
		defer func() {
			if panicVal = recover(); panicVal != nil {
				panic(panicVal)
			}
		}()
		e.fn()
	})

	restoreSub()
	shouldTrack = prevTrack

	cleanupDeps(e)

	e.f &^= flagRunning

	if panicVal != nil {
		panic(panicVal)
	}
}

// runCleanup invokes and clears the pending cleanup function, if any,
// with tracking disabled and no active Subscriber (spec §4.3 step 2) —
// a cleanup must never itself register new dependencies.
func (e *Effect) runCleanup() {
	if e.cleanup == nil {
		return
	}
	cl := e.cleanup
	e.cleanup = nil

	restoreSub := setActiveSub(nil)
	PauseTracking()
	e.runGuarded("cleanup", cl)
	ResetTracking()
	restoreSub()
}

// runGuarded runs fn with panic recovery, routing to onPanic if set or
// slog.Error otherwise — the ambient-stack upgrade of the teacher's
// log.Printf panic logging (SPEC_FULL §AMBIENT STACK).
func (e *Effect) runGuarded(component string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if e.onPanic != nil {
				e.onPanic(r, debug.Stack())
			} else {
				slog.Error("reactivity: panic recovered", "component", component, "panic", r, "stack", string(debug.Stack()))
			}
		}
	}()
	fn()
}

// runCatchingError is run()'s entry point from the batch flush, where a
// panic in fn must surface as the flush's first-error instead of being
// silently swallowed by runGuarded (spec §7: batch flush failure is
// caught, first error wins, re-raised after the flush completes).
func (e *Effect) runCatchingError() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{r}
		}
	}()
	e.trigger()
	return nil
}

// panicError adapts a recovered panic value into an error so it can
// travel through FlushError.
type panicError struct{ v any }

func (p panicError) Error() string { return "reactivity: effect panicked: " + errString(p.v) }

func errString(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unrecoverable panic"
}

// notify implements subscriber. If the effect is RUNNING and does not
// allow recursion, the notification is silently dropped (spec's
// reentrancy guard, §5). Otherwise it's enqueued into the effect batch
// list, deduplicated by flagNotified.
func (e *Effect) notify() bool {
	if e.f.has(flagRunning) && !e.allowRecurse {
		return false
	}
	if !e.f.has(flagNotified) {
		enqueueSub(e, false)
	}
	return false
}

// trigger is called by the batch flush (or directly, bypassing
// batching). If paused, the pending re-run is remembered for Resume. If
// a Scheduler is set, it decides when to re-run. Otherwise the effect
// runs if dirty.
func (e *Effect) trigger() {
	if e.f.has(flagPaused) {
		e.pausedQueued = true
		return
	}
	if e.scheduler != nil {
		e.scheduler()
		return
	}
	e.runIfDirty()
}

// runIfDirty re-runs only if isDirty(e) reports true.
func (e *Effect) runIfDirty() {
	if isDirty(e) {
		e.run()
	}
}

// RunIfDirty re-runs the effect if any Dep it last read has changed. It
// is the call a Scheduler uses to perform the deferred re-run.
func (e *Effect) RunIfDirty() { e.runIfDirty() }

// Pause suspends re-runs of this effect.
func (e *Effect) Pause() {
	e.f |= flagPaused
}

// Resume re-enables re-runs. If a trigger arrived while paused, it is
// replayed exactly once.
func (e *Effect) Resume() {
	e.f &^= flagPaused
	if e.pausedQueued {
		e.pausedQueued = false
		e.trigger()
	}
}

// Stop detaches the effect from every Dep it reads, runs cleanup, and
// marks it inactive. Idempotent — a second Stop call is a no-op.
func (e *Effect) Stop() {
	if !e.f.has(flagActive) {
		return
	}

	for l := e.depsH; l != nil; {
		next := l.nextDep
		removeSubLink(l.dep, l)
		l = next
	}
	e.depsH, e.depsT = nil, nil

	e.runCleanup()

	if e.onStop != nil {
		e.onStop()
	}

	if e.scope != nil {
		e.scope.forget(e)
	}

	e.f &^= flagActive
}
