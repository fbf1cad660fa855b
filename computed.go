package reactivity

import (
	"log/slog"
	"runtime/debug"
)

// computedNode is the non-generic face of Computed[T] that dep.go and
// subscriber.go need: identity for "a Computed must not read itself",
// the ability to reach the Computed's own Dep (to forward dirtiness),
// and the ability to trigger a refresh without either file needing to
// be generic over T.
type computedNode interface {
	subscriber
	ownDep() *Dep
	refresh()
}

// ComputedOptions configures a Computed beyond the default lazy-cached
// behavior.
type ComputedOptions[T any] struct {
	// Setter, if provided, is invoked by SetValue. Without one, a
	// Computed is read-only and SetValue returns ErrReadonlyComputed.
	Setter func(newValue T)

	// Equal overrides the change predicate used in step 7 of
	// refreshComputed (spec §4.4): whether a freshly computed value
	// counts as "different" from the cached one, and therefore bumps
	// dep.version and notifies subscribers. Defaults to a best-effort
	// `==` comparison that treats any non-comparable T (e.g. a slice or
	// map) as always-changed rather than panicking.
	Equal func(a, b T) bool

	// SSR disables the dirty-elision shortcut in refreshComputed (spec
	// §4.4 step 5): once anything has triggered since the last refresh,
	// a read re-evaluates without first checking whether its own deps
	// changed. A read with no Trigger since the last refresh still
	// returns the cached value.
	SSR bool

	OnPanic func(err any, stack []byte)
}

// Computed is a lazy, cached, derived Subscriber that is also a Dep to
// its own readers: reading a Computed's Value tracks its own Dep, and
// other Subscribers see it exactly like any other reactive source.
type Computed[T any] struct {
	compute func(prev T) T
	setter  func(T)
	equal   func(a, b T) bool

	value T
	dep   *Dep

	globalVersionSeen uint64
	ssr               bool
	onPanic           func(err any, stack []byte)

	f flags

	depsH, depsT *link
	next         subscriber
}

// NewComputed creates a Computed from a pure getter function. The
// function receives the previously cached value (the zero value of T on
// first call) and must only read reactive state, never mutate it.
func NewComputed[T any](compute func(prev T) T, opts ...ComputedOptions[T]) *Computed[T] {
	var o ComputedOptions[T]
	if len(opts) > 0 {
		o = opts[0]
	}

	c := &Computed[T]{
		compute: compute,
		setter:  o.Setter,
		equal:   o.Equal,
		ssr:     o.SSR,
		onPanic: o.OnPanic,
		f:       flagDirty,
	}
	c.dep = &Dep{computed: c}

	if c.equal == nil {
		c.equal = defaultEqual[T]
	}

	return c
}

func defaultEqual[T any](a, b T) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return any(a) == any(b)
}

func (c *Computed[T]) ownDep() *Dep { return c.dep }

// subscriber interface implementation.
func (c *Computed[T]) depsHead() *link             { return c.depsH }
func (c *Computed[T]) depsTail() *link             { return c.depsT }
func (c *Computed[T]) setDepsHead(l *link)         { c.depsH = l }
func (c *Computed[T]) setDepsTail(l *link)         { c.depsT = l }
func (c *Computed[T]) getFlags() flags             { return c.f }
func (c *Computed[T]) setFlags(f flags)            { c.f = f }
func (c *Computed[T]) nextInBatch() subscriber     { return c.next }
func (c *Computed[T]) setNextInBatch(s subscriber) { c.next = s }

// Value returns the current value, refreshing it first if stale. If
// called inside a tracking context, the caller becomes a subscriber of
// this Computed's own Dep (spec §4.4 Value getter).
func (c *Computed[T]) Value() T {
	l := c.dep.track()
	refreshComputed(c)
	if l != nil {
		l.version = int64(c.dep.version)
	}
	return c.value
}

// SetValue delegates to the configured Setter. Without one, the
// Computed is read-only: the write is a no-op, a debug warning is
// logged, and ErrReadonlyComputed is returned so Go callers can react to
// it (spec §7 "Write to read-only Computed").
func (c *Computed[T]) SetValue(v T) error {
	if c.setter == nil {
		slog.Warn("reactivity: write to read-only computed ignored")
		return ErrReadonlyComputed
	}
	c.setter(v)
	return nil
}

// notify implements subscriber (spec §4.4 Computed.notify). Sets DIRTY.
// If not already NOTIFIED and the active Subscriber isn't this Computed
// itself, enqueue into the computed batch list and return true so
// Dep.notify forwards into this Computed's own subscribers.
func (c *Computed[T]) notify() bool {
	c.f |= flagDirty

	if c.f.has(flagNotified) {
		return false
	}
	if activeSub != nil && subscriber(activeSub) == subscriber(c) {
		return false
	}

	enqueueSub(c, true)
	return true
}

// refresh implements computedNode, routing to the generic
// refreshComputed helper.
func (c *Computed[T]) refresh() { refreshComputed(c) }

// refreshComputed is the dirty-check-and-recompute routine from spec
// §4.4. Kept as a free function (rather than a method) because it's
// also the implementation behind the package-level RefreshComputed
// export for integrations needing a synchronous read.
func refreshComputed[T any](c *Computed[T]) {
	if c.f.has(flagTracking) && !c.f.has(flagDirty) {
		return
	}
	c.f &^= flagDirty

	if c.f.has(flagEvaluated) && c.globalVersionSeen == globalVersion {
		return
	}
	c.globalVersionSeen = globalVersion

	if !c.ssr && c.f.has(flagEvaluated) && (c.depsH == nil || !isDirty(c)) {
		return
	}

	c.f |= flagRunning
	restoreSub := setActiveSub(c)
	prevTrack := shouldTrack
	shouldTrack = true

	prepareDeps(c)

	var newValue T
	func() {
		defer func() {
			if r := recover(); r != nil {
				c.dep.version++
				restoreSub()
				shouldTrack = prevTrack
				cleanupDeps(c)
				c.f &^= flagRunning
				if c.onPanic != nil {
					c.onPanic(r, debug.Stack())
				} else {
					slog.Error("reactivity: panic recovered", "component", "computed", "panic", r, "stack", string(debug.Stack()))
				}
				panic(r)
			}
		}()
		newValue = c.compute(c.value)
	}()

	restoreSub()
	shouldTrack = prevTrack

	if c.dep.version == 0 || !c.equal(c.value, newValue) {
		c.f |= flagEvaluated
		c.value = newValue
		c.dep.version++
	}

	cleanupDeps(c)
	c.f &^= flagRunning
}

// RefreshComputed forces a synchronous dirty-check-and-recompute of c,
// visible to integrations that need a guaranteed-fresh read without
// going through Value's tracking side effect.
func RefreshComputed[T any](c *Computed[T]) { refreshComputed(c) }
