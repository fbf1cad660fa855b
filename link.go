package reactivity

// link is the edge between one Dep and one Subscriber: a node in two
// doubly-linked lists simultaneously (the Dep's subscriber list and the
// Subscriber's dependency list). This avoids a heap-allocated collection
// per Dep and per Subscriber and makes edge insertion/removal O(1), per
// spec §9's "many-to-many graph as two intrusive linked lists" design
// note. Go's GC makes the arena/handle representation that note
// suggests for strict-ownership languages unnecessary: a *link becomes
// collectible the moment both list-removals have run.
type link struct {
	dep *Dep
	sub subscriber

	// version mirrors dep.version at the point this Link was last
	// (re)used by an active Subscriber run. Set to -1 at the start of a
	// run to detect, at cleanup time, edges that went unused this run
	// (spec §3 invariant 4, §4.3 prepareDeps/cleanupDeps).
	version int64

	// position in the owning Subscriber's dependency list.
	nextDep, prevDep *link

	// position in the owning Dep's subscriber list.
	nextSub, prevSub *link

	// prevActiveLink saves dep.activeLink as it stood when this Link
	// became the active edge, restored when the owning run unwinds —
	// this is what makes nested Subscriber runs (a Computed read while
	// another Computed or Effect is running) resolve correctly.
	prevActiveLink *link
}

// appendDepTail appends l to the tail of sub's dependency list.
func appendDepTail(sub subscriber, l *link) {
	tail := sub.depsTail()
	l.prevDep = tail
	l.nextDep = nil
	if tail != nil {
		tail.nextDep = l
	} else {
		sub.setDepsHead(l)
	}
	sub.setDepsTail(l)
}

// moveDepToTail splices an already-linked l to the tail of sub's
// dependency list if it isn't already there. This is the "order-
// preserving dep rewrite" from spec §9: re-tracking an existing edge
// moves it to the access-order position of the current run so that
// cleanupDeps (walking tail→head) can correctly drop stale older edges
// while preserving the head pointer.
func moveDepToTail(sub subscriber, l *link) {
	if sub.depsTail() == l {
		return
	}

	// unlink from its current position
	if l.prevDep != nil {
		l.prevDep.nextDep = l.nextDep
	} else {
		sub.setDepsHead(l.nextDep)
	}
	if l.nextDep != nil {
		l.nextDep.prevDep = l.prevDep
	}

	appendDepTail(sub, l)
}

// removeDep unlinks l from sub's dependency list, returning the Link
// that preceded it (useful for tail→head cleanup walks).
func removeDep(sub subscriber, l *link) *link {
	prev := l.prevDep
	next := l.nextDep

	if next != nil {
		next.prevDep = prev
	} else {
		sub.setDepsTail(prev)
	}
	if prev != nil {
		prev.nextDep = next
	} else {
		sub.setDepsHead(next)
	}

	l.nextDep, l.prevDep = nil, nil
	return prev
}

// addSubLink appends l to the tail of dep's subscriber list and bumps
// subCount. See Dep.addSub for the lazy-Computed-subscription rule this
// participates in.
func addSubLink(dep *Dep, l *link) {
	l.prevSub = dep.subsTail
	l.nextSub = nil
	if dep.subsTail != nil {
		dep.subsTail.nextSub = l
	} else {
		dep.subs = l
		dep.subsHead = l
	}
	dep.subsTail = l
	dep.subCount++
}

// removeSubLink unlinks l from dep's subscriber list and decrements
// subCount. If the count reaches zero and dep is registered in the
// Registry, the entry is removed (spec §3 Dep lifecycle).
func removeSubLink(dep *Dep, l *link) {
	prev := l.prevSub
	next := l.nextSub

	if next != nil {
		next.prevSub = prev
	} else {
		dep.subsTail = prev
	}
	if prev != nil {
		prev.nextSub = next
	} else {
		dep.subs = next
	}
	if dep.subsHead == l {
		dep.subsHead = next
	}

	l.nextSub, l.prevSub = nil, nil
	dep.subCount--

	if dep.activeLink == l {
		dep.activeLink = nil
	}

	if dep.subCount == 0 {
		dep.maybeRemoveFromRegistry()
	}
}
