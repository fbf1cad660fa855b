package reactivity

// TrackOpType enumerates the kinds of reads a collaborator can report to
// Track. It mirrors the read operations a Proxy-based collaborator would
// intercept (get, has, iterate) without this package knowing anything
// about Proxies.
type TrackOpType int

const (
	// TrackGet is a plain property read.
	TrackGet TrackOpType = iota
	// TrackHas is a containment check (e.g. "key in target").
	TrackHas
	// TrackIterate is an enumeration read (iterating keys/values/entries).
	TrackIterate
)

func (op TrackOpType) String() string {
	switch op {
	case TrackGet:
		return "get"
	case TrackHas:
		return "has"
	case TrackIterate:
		return "iterate"
	default:
		return "unknown"
	}
}

// TriggerOpType enumerates the kinds of writes a collaborator can report
// to Trigger.
type TriggerOpType int

const (
	// TriggerSet replaces the value stored at an existing key.
	TriggerSet TriggerOpType = iota
	// TriggerAdd introduces a new key (or array index) that didn't exist before.
	TriggerAdd
	// TriggerDelete removes an existing key.
	TriggerDelete
	// TriggerClear empties an entire collection (e.g. a Map's Clear, or
	// truncating an array to length 0).
	TriggerClear
)

func (op TriggerOpType) String() string {
	switch op {
	case TriggerSet:
		return "set"
	case TriggerAdd:
		return "add"
	case TriggerDelete:
		return "delete"
	case TriggerClear:
		return "clear"
	default:
		return "unknown"
	}
}

// sentinelKey is a distinct, unexported, comparable type for the three
// singleton dispatch keys below, so they can never collide with a real
// caller key (a string, an int index, or any other comparable value a
// collaborator happens to use).
type sentinelKey struct{ name string }

var (
	// IterateKey is registered against the Dep that represents "any
	// enumeration of this target" — used by the ADD/DELETE dispatch
	// rules for non-array targets (Registry dispatch, spec §4.1).
	IterateKey any = sentinelKey{"iterate"}

	// MapKeyIterateKey represents "enumeration of this Map's keys",
	// distinct from IterateKey because key-iteration and value/entry
	// iteration of a Map track independently.
	MapKeyIterateKey any = sentinelKey{"map-key-iterate"}

	// ArrayIterateKey represents "iteration over array elements", used
	// by the length-change and integer-index dispatch rules.
	ArrayIterateKey any = sentinelKey{"array-iterate"}
)

// flags is a bitset over the Subscriber states from spec §3. Kept as a
// single small value rather than individual bools, matching the
// teacher's preference for compact option/state aggregates over many
// loose fields.
type flags uint16

const (
	flagActive flags = 1 << iota
	flagRunning
	flagTracking
	flagNotified
	flagDirty
	flagAllowRecurse
	flagPaused
	flagEvaluated
)

func (f flags) has(bit flags) bool { return f&bit != 0 }

// subscriber is the capability set shared by *Effect and *Computed: the
// one virtual operation (notify) plus the dep-list bookkeeping that
// dep.go and subscriber.go drive through the interface, never through a
// type switch. This is the "tagged variant with a trait for the one
// virtual operation" approach recommended in spec §9.
type subscriber interface {
	// notify is invoked by Dep.notify, or forwarded from a Computed's own
	// Dep. Returns true when the subscriber is a Computed that was
	// freshly dirtied by this call — Dep.notify uses that to forward
	// dirtiness into the Computed's own subscribers (spec §4.2).
	notify() bool

	getFlags() flags
	setFlags(flags)

	depsHead() *link
	depsTail() *link
	setDepsHead(*link)
	setDepsTail(*link)

	// nextInBatch is the single "next" pointer overloaded for batch-list
	// membership while flagNotified is set (spec §9).
	nextInBatch() subscriber
	setNextInBatch(subscriber)
}
