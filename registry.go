package reactivity

import (
	"log/slog"
	"reflect"
	"runtime"
)

// registryEntry is the per-target bucket of keyed Deps (spec §2
// component 5: "process-wide map target → key → Dep").
type registryEntry struct {
	deps map[any]*Dep
}

func (e *registryEntry) remove(key any) {
	delete(e.deps, key)
}

// registry is the process-wide target → entry map. Mutated only from
// the single cooperative thread — see drainEvictions for how the weak-
// keying finalizer below stays off that invariant.
var registry = map[any]*registryEntry{}

// pendingEvictions receives target keys whose finalizer has fired. The
// finalizer goroutine (managed by the Go runtime, outside this
// package's single-mutator model) only ever sends to this channel; the
// actual map delete happens in drainEvictions, called from Track/Trigger
// on the cooperative thread. This keeps registry mutation strictly
// single-threaded while still giving the target → entry map the "weak
// keying" spec §9 asks for: once nothing outside the registry holds
// target, its entry is reclaimed without anyone calling Stop/Unsubscribe.
var pendingEvictions = make(chan any, 256)

func drainEvictions() {
	for {
		select {
		case key := <-pendingEvictions:
			delete(registry, key)
		default:
			return
		}
	}
}

// registerWeakEviction arms a finalizer that schedules target's registry
// entry for removal once target becomes unreachable. SetFinalizer panics
// for targets that aren't a pointer (or similar heap-allocated) type;
// such targets simply never auto-evict, which is harmless — their Deps
// are still removed individually the moment each loses its last
// subscriber (Dep.maybeRemoveFromRegistry).
func registerWeakEviction(target any) {
	defer func() { recover() }()
	runtime.SetFinalizer(target, func(any) {
		select {
		case pendingEvictions <- target:
		default:
		}
	})
}

func getOrCreateEntry(target any) *registryEntry {
	drainEvictions()
	entry, ok := registry[target]
	if !ok {
		entry = &registryEntry{deps: make(map[any]*Dep)}
		registry[target] = entry
		registerWeakEviction(target)
	}
	return entry
}

func getOrCreateDep(entry *registryEntry, key any) *Dep {
	d, ok := entry.deps[key]
	if !ok {
		d = NewDep()
		d.registryEntry = entry
		d.key = key
		entry.deps[key] = d
	}
	return d
}

// Track records that the currently active Subscriber depends on
// (target, key). It is a no-op outside a tracking context (spec §4.1).
func Track(target any, op TrackOpType, key any) {
	checkSingleGoroutine()
	if !shouldTrack || activeSub == nil {
		return
	}

	entry := getOrCreateEntry(target)
	dep := getOrCreateDep(entry, key)
	dep.track()

	if eff, ok := activeSub.(*Effect); ok && eff.onTrack != nil {
		eff.onTrack(TrackEvent{Target: target, Op: op, Key: key})
	}
}

// mapLike is implemented by collaborators (like Collection[K,V]) whose
// target shape is a Map, needed because the ADD/DELETE dispatch rules
// additionally fire MapKeyIterateKey for Map targets but not for plain
// objects or arrays.
type mapLike interface {
	IsReactiveMap() bool
}

func isArrayLike(target any) bool {
	v := reflect.ValueOf(target)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	case reflect.Ptr:
		return v.Elem().IsValid() && (v.Elem().Kind() == reflect.Slice || v.Elem().Kind() == reflect.Array)
	default:
		return false
	}
}

func isMapLike(target any) bool {
	ml, ok := target.(mapLike)
	return ok && ml.IsReactiveMap()
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}

func fireDep(d *Dep, ev TriggerEvent) {
	for l := d.subsTail; l != nil; l = l.prevSub {
		if eff, ok := l.sub.(*Effect); ok && eff.onTrigger != nil {
			eff.onTrigger(ev)
		}
	}
	_ = d.trigger()
}

// Trigger signals that (target, key) changed, dispatching to the
// correct set of Deps per the bit-exact rules of spec §4.1. It always
// bumps GlobalVersion — once per Dep it fires, or once when no Dep
// matches or target was never tracked — and returns the first error raised by any Effect woken by this trigger,
// reflecting spec §7's first-error-wins batch-flush policy.
func Trigger(target any, op TriggerOpType, key, newValue, oldValue, oldTarget any) error {
	checkSingleGoroutine()
	drainEvictions()

	entry, ok := registry[target]
	if !ok {
		globalVersion++
		return nil
	}

	ev := TriggerEvent{Target: target, Op: op, Key: key, NewValue: newValue, OldValue: oldValue, OldTarget: oldTarget}

	versionBefore := globalVersion
	StartBatch()

	isArr := isArrayLike(target)
	isMap := isMapLike(target)

	switch {
	case op == TriggerClear:
		for _, d := range entry.deps {
			fireDep(d, ev)
		}

	case isArr && key == "length":
		newLen, _ := toInt(newValue)
		for k, d := range entry.deps {
			if k == "length" || k == ArrayIterateKey {
				fireDep(d, ev)
				continue
			}
			if idx, isInt := toInt(k); isInt && idx >= newLen {
				fireDep(d, ev)
			}
		}

	default:
		if key != nil {
			if d, ok := entry.deps[key]; ok {
				fireDep(d, ev)
			}
		}
		if d, ok := entry.deps[nil]; ok {
			fireDep(d, ev)
		}
		if idx, isInt := toInt(key); isInt && isArr {
			_ = idx
			if d, ok := entry.deps[ArrayIterateKey]; ok {
				fireDep(d, ev)
			}
		}

		switch {
		case op == TriggerAdd && !isArr:
			if d, ok := entry.deps[IterateKey]; ok {
				fireDep(d, ev)
			}
			if isMap {
				if d, ok := entry.deps[MapKeyIterateKey]; ok {
					fireDep(d, ev)
				}
			}
		case op == TriggerAdd && isArr:
			if _, isInt := toInt(key); isInt {
				if d, ok := entry.deps["length"]; ok {
					fireDep(d, ev)
				}
			}
		case op == TriggerDelete && !isArr:
			if d, ok := entry.deps[IterateKey]; ok {
				fireDep(d, ev)
			}
			if isMap {
				if d, ok := entry.deps[MapKeyIterateKey]; ok {
					fireDep(d, ev)
				}
			}
		case op == TriggerSet && isMap:
			if d, ok := entry.deps[IterateKey]; ok {
				fireDep(d, ev)
			}
		}
	}

	if globalVersion == versionBefore {
		globalVersion++
	}

	err := EndBatch()
	if err != nil {
		slog.Debug("reactivity: trigger propagated flush error", "target_type", reflect.TypeOf(target), "error", err)
	}
	return err
}
