package reactivity

// Scope groups Effects (and nested Scopes) created during a Run call so
// they can all be torn down together with a single Stop, rather than
// requiring every caller to track its own Effects individually. Modeled
// on the teacher's idempotent Stop() plus the cascading Dispose()
// pattern from the reference memo implementation: stopping a parent
// Scope stops every child Scope first, then every Effect it adopted.
type Scope struct {
	effects  []*Effect
	children []*Scope
	parent   *Scope
	stopped  bool
}

// activeScope is the Scope that NewEffect consults to auto-adopt a
// freshly created Effect. It is not part of the Subscriber/tracking
// machinery — Scopes nest independently of the active-Subscriber stack.
var activeScope *Scope

// NewScope creates a Scope. If called while another Scope is active, the
// new Scope is registered as that Scope's child, so stopping the parent
// also stops this one.
func NewScope() *Scope {
	s := &Scope{parent: activeScope}
	if activeScope != nil {
		activeScope.children = append(activeScope.children, s)
	}
	return s
}

// Run makes s the active Scope for the duration of fn, so any Effect
// created inside fn (directly, or inside a Computed/Effect it triggers)
// is adopted by s. Run returns nothing; a caller that needs an Effect
// created inside fn keeps its reference itself.
func (s *Scope) Run(fn func()) {
	if s.stopped {
		fn()
		return
	}
	prev := activeScope
	activeScope = s
	defer func() { activeScope = prev }()
	fn()
}

// adopt registers e as belonging to s, so Stop reaches it.
func (s *Scope) adopt(e *Effect) {
	e.scope = s
	s.effects = append(s.effects, e)
}

// forget removes e from s's bookkeeping once e has already been
// stopped directly, so a later Scope.Stop doesn't call Stop twice.
func (s *Scope) forget(e *Effect) {
	for i, se := range s.effects {
		if se == e {
			s.effects = append(s.effects[:i], s.effects[i+1:]...)
			return
		}
	}
}

// Stop tears down every child Scope, then every Effect this Scope
// adopted, then detaches from its own parent. Idempotent.
func (s *Scope) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true

	for _, child := range s.children {
		child.Stop()
	}
	s.children = nil

	effects := s.effects
	s.effects = nil
	for _, e := range effects {
		e.scope = nil
		e.Stop()
	}

	if s.parent != nil && !s.parent.stopped {
		for i, child := range s.parent.children {
			if child == s {
				s.parent.children = append(s.parent.children[:i], s.parent.children[i+1:]...)
				break
			}
		}
	}
}
