package reactivity

import "testing"

// These tests exercise Track/Trigger directly against a plain slice
// pointer, standing in for a hypothetical reactive array collaborator,
// to pin down the array-specific dispatch rules (spec §4.1) that
// Collection[K,V] (a Map-shaped target) never exercises.

func TestRegistry_ArrayLengthChangeWakesLengthAndHighIndexSubscribers(t *testing.T) {
	arr := &[]int{1, 2, 3, 4, 5}

	lengthRuns, highIndexRuns, lowIndexRuns := 0, 0, 0

	effLength := NewEffect(func() {
		Track(arr, TrackGet, "length")
		lengthRuns++
	})
	defer effLength.Stop()

	effHigh := NewEffect(func() {
		Track(arr, TrackGet, 4) // index 4, will be truncated away
		highIndexRuns++
	})
	defer effHigh.Stop()

	effLow := NewEffect(func() {
		Track(arr, TrackGet, 0) // index 0, survives truncation
		lowIndexRuns++
	})
	defer effLow.Stop()

	// Shrink the array to length 2: index 4 is now out of range.
	*arr = (*arr)[:2]
	Trigger(arr, TriggerSet, "length", 2, 5, nil)

	if lengthRuns != 2 {
		t.Errorf("length subscriber runs = %d, want 2", lengthRuns)
	}
	if highIndexRuns != 2 {
		t.Errorf("truncated high-index subscriber runs = %d, want 2", highIndexRuns)
	}
	if lowIndexRuns != 1 {
		t.Errorf("surviving low-index subscriber runs = %d, want 1 (should not wake)", lowIndexRuns)
	}
}

func TestRegistry_ClearWakesEveryKey(t *testing.T) {
	target := &struct{ tag string }{"bucket"}

	runsA, runsB := 0, 0
	effA := NewEffect(func() { Track(target, TrackGet, "a"); runsA++ })
	defer effA.Stop()
	effB := NewEffect(func() { Track(target, TrackGet, "b"); runsB++ })
	defer effB.Stop()

	Trigger(target, TriggerClear, nil, nil, nil, nil)

	if runsA != 2 || runsB != 2 {
		t.Errorf("CLEAR should wake every keyed Dep, got runsA=%d runsB=%d", runsA, runsB)
	}
}

func TestRegistry_TriggerOnUntrackedTargetIsNoop(t *testing.T) {
	target := &struct{ tag string }{"never-tracked"}

	before := globalVersion
	err := Trigger(target, TriggerSet, "x", 1, 0, nil)
	if err != nil {
		t.Errorf("Trigger on an untracked target returned %v, want nil", err)
	}
	if globalVersion != before+1 {
		t.Errorf("globalVersion = %d, want %d (Trigger always bumps it)", globalVersion, before+1)
	}
}

func TestRegistry_SetOnMapWakesIterateSentinel(t *testing.T) {
	m := NewCollection[string, int]()
	m.Set("a", 1)

	iterateRuns := 0
	eff := NewEffect(func() {
		m.Range(func(string, int) bool { return true })
		iterateRuns++
	})
	defer eff.Stop()

	m.Set("a", 2) // SET on an existing key of a Map target
	if iterateRuns != 2 {
		t.Errorf("iterate-tracking effect runs = %d, want 2 (SET on Map fires iterate sentinel)", iterateRuns)
	}
}
