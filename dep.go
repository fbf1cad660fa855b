package reactivity

// globalVersion is a monotonic counter incremented on every Trigger. It
// gives Computed a fast "has anything anywhere changed since my last
// refresh" check without walking its dependency list (spec §3, §4.4
// step 3).
var globalVersion uint64

// Dep is a single reactive source: it owns a list of subscribers and is
// the unit Track/Trigger operate on. There is one Dep per (target, key)
// pair tracked by the Registry, plus one Dep owned by every Computed
// (reading the Computed reads that Dep).
type Dep struct {
	version uint64

	// subs/subsTail is the doubly-linked subscriber list, in
	// registration order head→tail; Dep.notify iterates it tail→head
	// (spec §4.2).
	subs, subsTail *link
	// subsHead mirrors subs but is only consulted by debug hooks that
	// want registration order — kept distinct per spec §3 so the
	// "iteration order" and "debug hook order" concerns don't entangle.
	subsHead *link

	// activeLink is the Link currently owned by the active Subscriber,
	// if any, letting track() recognize an existing edge in O(1).
	activeLink *link

	subCount uint32

	// registry back-pointer and key, for O(1) removal once subCount
	// reaches zero. Both nil for a Dep that was never registered with
	// the Registry (e.g. a throwaway Dep used only in tests).
	registryEntry *registryEntry
	key           any

	// computed is set when this Dep belongs to a Computed (i.e. it is
	// computed.dep) — used by track() to refuse a Computed reading its
	// own Dep, and by Dep.notify's forwarding rule.
	computed computedNode
}

// NewDep creates a standalone Dep not registered with the Registry. The
// Registry builds its keyed Deps with it (getOrCreateDep) and then
// records the registry back-pointer and key itself.
func NewDep() *Dep {
	return &Dep{}
}

// track records that the currently active Subscriber depends on d. It is
// a no-op if tracking is disabled, no Subscriber is active, or the
// active Subscriber is d's own Computed (a Computed must never read
// itself). Returns the Link for this edge, or nil if none of the above
// preconditions held.
func (d *Dep) track() *link {
	if !shouldTrack || activeSub == nil {
		return nil
	}
	if d.computed != nil && activeSub == subscriber(d.computed) {
		return nil
	}

	l := d.activeLink
	if l == nil || l.sub != activeSub {
		l = &link{dep: d, sub: activeSub, version: int64(d.version)}
		appendDepTail(activeSub, l)
		d.addSub(l)
		d.activeLink = l
		return l
	}

	if l.version == -1 {
		l.version = int64(d.version)
		moveDepToTail(activeSub, l)
	}
	return l
}

// addSub registers l in d's subscriber list. track() only ever reaches
// here while a Subscriber is actively tracking, so if d belongs to a
// Computed that previously had zero subscribers, that Computed switches
// into TRACKING|DIRTY and recursively links each of its own Links that
// is not currently in its Dep's subscriber list, regardless of whether
// the new reader is an Effect or another Computed (spec §4.2). A
// Computed's upstream Links stay in their Deps' subscriber lists when
// its own subscriber count drops to zero, so Links already linked are
// left where they are.
func (d *Dep) addSub(l *link) {
	if d.computed != nil && d.subCount == 0 {
		c := d.computed
		c.setFlags(c.getFlags() | flagTracking | flagDirty)
		for cl := c.depsHead(); cl != nil; cl = cl.nextDep {
			if cl.prevSub == nil && cl.dep.subs != cl {
				cl.dep.addSub(cl)
			}
		}
	}
	addSubLink(d, l)
}

// trigger bumps this Dep's version and the process-wide GlobalVersion,
// then notifies subscribers inside a batch (spec §4.2). The returned
// error is the first effect error raised during the flush, if this
// trigger happened to be (or complete) the outermost batch.
func (d *Dep) trigger() error {
	d.version++
	globalVersion++
	return d.notify()
}

// notify opens a batch, walks the subscriber list tail→head calling
// notify on each, and closes the batch. If a subscriber's notify()
// returns true (a Computed freshly dirtied), this Dep also forwards to
// that Computed's own Dep so dirtiness propagates downstream without
// deep recursion (spec §4.2). Nested notify calls (the forwarding
// above, or a notify triggered from inside an already-open batch) only
// ever see a non-nil error from the outermost EndBatch; inner calls
// always observe batchDepth > 0 and return nil.
func (d *Dep) notify() error {
	StartBatch()

	for l := d.subsTail; l != nil; l = l.prevSub {
		if l.sub.notify() {
			if c, ok := l.sub.(computedNode); ok {
				c.ownDep().notify()
			}
		}
	}

	return EndBatch()
}

// maybeRemoveFromRegistry drops this Dep's entry once it has no more
// subscribers, so the (target, key) registry doesn't pin empty Deps
// forever (spec §3 Dep lifecycle).
func (d *Dep) maybeRemoveFromRegistry() {
	if d.registryEntry == nil {
		return
	}
	d.registryEntry.remove(d.key)
	d.registryEntry = nil
}
