package reactivity

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/m1gwings/treedrawer/tree"
)

func runtimeStack(buf []byte) int {
	return runtime.Stack(buf, false)
}

// DebugChecks, when true, makes the package-level entry points Track,
// Trigger, StartBatch and EndBatch assert that they are being called
// from the same goroutine that first called any of them, panicking immediately instead of silently
// corrupting the lock-free graph. Off by default — the check costs a
// goroutine-id lookup on every call, worth paying only while
// diagnosing a suspected single-mutator violation (spec §5).
var DebugChecks = false

var debugOwnerGoroutine uint64

func checkSingleGoroutine() {
	if !DebugChecks {
		return
	}
	id := currentGoroutineID()
	if debugOwnerGoroutine == 0 {
		debugOwnerGoroutine = id
		return
	}
	if debugOwnerGoroutine != id {
		panic(fmt.Sprintf("reactivity: DebugChecks detected access from goroutine %d, expected owner %d — the reactive graph is single-threaded, see package doc", id, debugOwnerGoroutine))
	}
}

// DumpGraph renders the current Dep⇄Subscriber graph as a tree under a
// single "Dependencies" root: one child per registered (target, key)
// Dep, with each of its Subscribers attached below it — a debugging aid in the same spirit as the teacher-pack's
// dependency-graph visualizer, adapted from executors to Deps/Links.
func DumpGraph() string {
	drainEvictions()

	type depRef struct {
		target any
		key    any
		dep    *Dep
	}
	var all []depRef
	for target, entry := range registry {
		for key, dep := range entry.deps {
			all = append(all, depRef{target, key, dep})
		}
	}
	if len(all) == 0 {
		return "(empty - no registered dependencies)"
	}

	sort.Slice(all, func(i, j int) bool {
		return depLabel(all[i].target, all[i].key) < depLabel(all[j].target, all[j].key)
	})

	root := tree.NewTree(tree.NodeString("Dependencies"))
	for _, d := range all {
		depNode := root.AddChild(tree.NodeString(depLabel(d.target, d.key)))
		subs := subscriberLabels(d.dep)
		for _, label := range subs {
			depNode.AddChild(tree.NodeString(label))
		}
	}

	var sb strings.Builder
	sb.WriteString(root.String())
	return sb.String()
}

func depLabel(target, key any) string {
	if key == nil {
		return fmt.Sprintf("%T@%p", target, target)
	}
	return fmt.Sprintf("%T@%p[%v]", target, target, key)
}

func subscriberLabels(d *Dep) []string {
	var labels []string
	for l := d.subsHead; l != nil; l = l.nextSub {
		switch l.sub.(type) {
		case *Effect:
			labels = append(labels, fmt.Sprintf("effect@%p", l.sub))
		case computedNode:
			labels = append(labels, fmt.Sprintf("computed@%p", l.sub))
		default:
			labels = append(labels, fmt.Sprintf("subscriber@%p", l.sub))
		}
	}
	return labels
}

// currentGoroutineID extracts the calling goroutine's id by parsing the
// "goroutine N [...]" header runtime.Stack always writes first. Used
// only behind DebugChecks — not on any hot path.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtimeStack(buf[:])
	var id uint64
	for _, c := range buf[len("goroutine "):n] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
