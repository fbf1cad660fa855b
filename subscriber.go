package reactivity

// prepareDeps arms every Link currently in sub's dependency list so that
// track() can detect, in O(1), whether a Dep read during the upcoming
// run is a reused edge or a brand new one: version is set to -1 (an
// impossible real version) and the Dep's activeLink is swapped to this
// Link, remembering the previous occupant for restoration in
// cleanupDeps. Spec §4.3 step 3 / §4.4 step 6.
func prepareDeps(sub subscriber) {
	for l := sub.depsHead(); l != nil; l = l.nextDep {
		l.version = -1
		l.prevActiveLink = l.dep.activeLink
		l.dep.activeLink = l
	}
}

// cleanupDeps walks sub's dependency list tail→head (order matters: see
// spec §9's "order-preserving dep rewrite") and, for every Link still at
// version == -1 (not re-tracked this run), unlinks it from both lists.
// Every visited Link's Dep has its activeLink restored to whatever it
// was before prepareDeps ran, so a nested Subscriber's edges are
// unaffected by an outer Subscriber's bookkeeping.
func cleanupDeps(sub subscriber) {
	l := sub.depsTail()
	for l != nil {
		prev := l.prevDep
		if l.version == -1 {
			removeSubLink(l.dep, l)
			removeDep(sub, l)
		}
		l.dep.activeLink = l.prevActiveLink
		l = prev
	}
}

// isDirty reports whether sub should be considered stale: some Link in
// its dependency list points at a Dep whose version no longer matches
// the Link's recorded version, after refreshing any upstream Computed
// along the way. The walk is in access order and short-circuits on the
// first dirty dependency (spec invariant 5).
func isDirty(sub subscriber) bool {
	for l := sub.depsHead(); l != nil; l = l.nextDep {
		if c := l.dep.computed; c != nil {
			c.refresh()
		}
		if uint64(l.version) != l.dep.version {
			return true
		}
	}
	return false
}
