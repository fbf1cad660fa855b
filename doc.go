// Package reactivity is a fine-grained reactivity core: a dependency
// graph of Deps (reactive sources) and Subscribers (Effects and
// Computeds), built from intrusive doubly-linked edges rather than
// heap-allocated subscriber sets.
//
// # Core Types
//
// Ref[T] - a writable reactive value cell.
//
// Collection[K,V] - a reactive map, with fine-grained per-key tracking
// and whole-collection iterate tracking.
//
// Computed[T] - a lazy, cached, derived value that recomputes only when
// read after a dependency actually changed.
//
// Effect - a side effect that re-runs whenever a Dep it last read
// changes.
//
// Scope - groups Effects so they can be torn down together.
//
// # Example Usage
//
//	count := reactivity.NewRef(0)
//
//	doubled := reactivity.NewComputed(func(prev int) int {
//	    return count.Value() * 2
//	})
//
//	reactivity.NewEffect(func() {
//	    fmt.Println("doubled:", doubled.Value())
//	})
//
//	count.Set(5) // prints "doubled: 10"
//
// # Execution Model
//
// The graph is single-threaded by design: Track, Trigger, and every
// Dep/Subscriber method assume a single cooperative goroutine drives
// them, the same way the reactive core they're modeled on assumes a
// single-threaded JS event loop. There are no locks or atomics on the
// core graph; callers that need to touch Refs/Computeds/Effects from
// multiple goroutines must serialize that access themselves (e.g. a
// single dedicated goroutine processing a channel of mutations).
//
// # Batching
//
// StartBatch/EndBatch coalesce a burst of Trigger calls into one Effect
// flush. Set/Update/Trigger each open their own single-operation batch
// when not already inside one; wrap several in an explicit StartBatch/
// EndBatch pair to defer all re-runs until every change has landed.
package reactivity
