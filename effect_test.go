package reactivity

import (
	"fmt"
	"testing"
)

func TestEffect_ImmediateExecution(t *testing.T) {
	count := NewRef(0)
	executed := false

	eff := NewEffect(func() {
		_ = count.Value()
		executed = true
	})
	defer eff.Stop()

	if !executed {
		t.Fatal("effect did not run immediately upon creation")
	}
}

func TestEffect_DependencyChange(t *testing.T) {
	count := NewRef(0)
	runs := 0

	eff := NewEffect(func() {
		_ = count.Value()
		runs++
	})
	defer eff.Stop()

	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	count.Set(5)
	if runs != 2 {
		t.Fatalf("expected 2 runs after dependency change, got %d", runs)
	}

	count.Set(10)
	if runs != 3 {
		t.Fatalf("expected 3 runs after second dependency change, got %d", runs)
	}
}

func TestEffect_NoRerunOnSameValue(t *testing.T) {
	count := NewRef(0, RefOptions[int]{Equal: func(a, b int) bool { return a == b }})
	runs := 0

	eff := NewEffect(func() {
		_ = count.Value()
		runs++
	})
	defer eff.Stop()

	count.Set(0) // unchanged
	if runs != 1 {
		t.Fatalf("expected no re-run on equal Set, got %d runs", runs)
	}
}

func TestEffect_MultipleDependencies(t *testing.T) {
	firstName := NewRef("John")
	lastName := NewRef("Doe")
	var log []string

	eff := NewEffect(func() {
		log = append(log, fmt.Sprintf("%s %s", firstName.Value(), lastName.Value()))
	})
	defer eff.Stop()

	if len(log) != 1 || log[0] != "John Doe" {
		t.Fatalf("expected immediate execution with 'John Doe', got: %v", log)
	}

	firstName.Set("Jane")
	if len(log) != 2 || log[1] != "Jane Doe" {
		t.Fatalf("expected effect to run on firstName change, got: %v", log)
	}

	lastName.Set("Smith")
	if len(log) != 3 || log[2] != "Jane Smith" {
		t.Fatalf("expected effect to run on lastName change, got: %v", log)
	}
}

func TestEffect_Cleanup(t *testing.T) {
	t.Run("initial execution has no cleanup", func(t *testing.T) {
		count := NewRef(0)
		var effectLog, cleanupLog []string

		eff := NewEffect(func() {
			v := count.Value()
			effectLog = append(effectLog, fmt.Sprintf("effect-%d", v))
			OnEffectCleanup(func() {
				cleanupLog = append(cleanupLog, fmt.Sprintf("cleanup-%d", v))
			})
		})
		defer eff.Stop()

		if len(effectLog) != 1 || effectLog[0] != "effect-0" {
			t.Fatalf("expected initial effect, got: %v", effectLog)
		}
		if len(cleanupLog) != 0 {
			t.Fatalf("expected no cleanup yet, got: %v", cleanupLog)
		}
	})

	t.Run("cleanup runs before next effect", func(t *testing.T) {
		count := NewRef(0)
		var cleanupLog []string

		eff := NewEffect(func() {
			v := count.Value()
			OnEffectCleanup(func() {
				cleanupLog = append(cleanupLog, fmt.Sprintf("cleanup-%d", v))
			})
		})
		defer eff.Stop()

		count.Set(1)

		if len(cleanupLog) != 1 || cleanupLog[0] != "cleanup-0" {
			t.Fatalf("expected cleanup from first effect, got: %v", cleanupLog)
		}
	})
}

func TestEffect_CleanupOrder(t *testing.T) {
	count := NewRef(0)
	var events []string

	eff := NewEffect(func() {
		v := count.Value()
		events = append(events, fmt.Sprintf("effect-%d", v))
		OnEffectCleanup(func() {
			events = append(events, fmt.Sprintf("cleanup-%d", v))
		})
	})
	defer eff.Stop()

	count.Set(1)
	count.Set(2)

	expected := []string{
		"effect-0",
		"cleanup-0",
		"effect-1",
		"cleanup-1",
		"effect-2",
	}
	if len(events) != len(expected) {
		t.Fatalf("expected %d events, got %d: %v", len(expected), len(events), events)
	}
	for i, exp := range expected {
		if events[i] != exp {
			t.Errorf("event %d: expected %s, got %s", i, exp, events[i])
		}
	}
}

func TestEffect_Stop(t *testing.T) {
	count := NewRef(0)
	runs := 0
	cleanupCalled := false

	eff := NewEffect(func() {
		_ = count.Value()
		runs++
		OnEffectCleanup(func() { cleanupCalled = true })
	})

	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	eff.Stop()

	if !cleanupCalled {
		t.Fatal("expected cleanup to be called on Stop()")
	}

	count.Set(5)
	if runs != 1 {
		t.Fatalf("expected effect to not run after Stop(), got %d runs", runs)
	}
}

func TestEffect_StopIsIdempotent(t *testing.T) {
	cleanupCount := 0

	eff := NewEffect(func() {
		OnEffectCleanup(func() { cleanupCount++ })
	})

	eff.Stop()
	eff.Stop()
	eff.Stop()

	if cleanupCount != 1 {
		t.Fatalf("expected cleanup to run once, got %d", cleanupCount)
	}
}

func TestEffect_PanicRecovery(t *testing.T) {
	count := NewRef(0)
	runs := 0
	var customPanicCalled bool

	eff := NewEffect(func() {
		runs++
		if count.Value() == 1 {
			panic("test panic in effect")
		}
	}, EffectOptions{
		OnPanic: func(err any, stack []byte) {
			customPanicCalled = true
			if msg, ok := err.(string); !ok || msg != "test panic in effect" {
				t.Errorf("expected panic message 'test panic in effect', got: %v", err)
			}
		},
	})
	defer eff.Stop()

	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	count.Set(1)

	if !customPanicCalled {
		t.Fatal("expected custom panic handler to be called")
	}

	count.Set(2)
	if runs != 3 {
		t.Fatalf("expected effect to continue after panic, got %d runs", runs)
	}
}

func TestEffect_CleanupPanic(t *testing.T) {
	count := NewRef(0)
	var cleanupPanicCalled bool

	eff := NewEffect(func() {
		v := count.Value()
		OnEffectCleanup(func() {
			if v == 0 {
				panic("test panic in cleanup")
			}
		})
	}, EffectOptions{
		OnPanic: func(err any, stack []byte) {
			cleanupPanicCalled = true
			if msg, ok := err.(string); !ok || msg != "test panic in cleanup" {
				t.Errorf("expected panic message 'test panic in cleanup', got: %v", err)
			}
		},
	})
	defer eff.Stop()

	count.Set(1)

	if !cleanupPanicCalled {
		t.Fatal("expected cleanup panic handler to be called")
	}
}

func TestEffect_ChainedWithComputed(t *testing.T) {
	base := NewRef(5)
	doubled := NewComputed(func(prev int) int { return base.Value() * 2 })

	var log []int
	eff := NewEffect(func() {
		log = append(log, doubled.Value())
	})
	defer eff.Stop()

	if len(log) != 1 || log[0] != 10 {
		t.Fatalf("expected immediate execution with value 10, got: %v", log)
	}

	base.Set(7)
	if len(log) != 2 || log[1] != 14 {
		t.Fatalf("expected effect to run with computed value 14, got: %v", log)
	}
}

func TestEffect_NoDependencies(t *testing.T) {
	executed := false

	eff := NewEffect(func() { executed = true })
	defer eff.Stop()

	if !executed {
		t.Fatal("effect without dependencies did not run immediately")
	}
}

func TestEffect_PauseResume(t *testing.T) {
	count := NewRef(0)
	runs := 0

	eff := NewEffect(func() {
		_ = count.Value()
		runs++
	})
	defer eff.Stop()

	eff.Pause()
	count.Set(1)
	if runs != 1 {
		t.Fatalf("expected paused effect not to run, got %d runs", runs)
	}

	eff.Resume()
	if runs != 2 {
		t.Fatalf("expected resumed effect to replay the pending run, got %d runs", runs)
	}
}

func TestEffect_AllowRecurse(t *testing.T) {
	count := NewRef(0)
	runs := 0

	var eff *Effect
	eff = NewEffect(func() {
		runs++
		v := count.Value()
		if v == 0 && runs < 2 {
			count.Set(v + 1)
		}
	}, EffectOptions{AllowRecurse: true})
	defer eff.Stop()

	if runs < 2 {
		t.Fatalf("expected recursive self-trigger to run at least twice, got %d", runs)
	}
}

func TestEffect_WithMixedTypeDependencies(t *testing.T) {
	count := NewRef(5)
	name := NewRef("items")
	enabled := NewRef(true)

	message := NewComputed(func(prev string) string {
		if !enabled.Value() {
			return "disabled"
		}
		return fmt.Sprintf("%d %s", count.Value(), name.Value())
	})

	var log []string
	eff := NewEffect(func() {
		log = append(log, message.Value())
	})
	defer eff.Stop()

	if len(log) != 1 || log[0] != "5 items" {
		t.Fatalf("expected '5 items', got: %v", log)
	}

	enabled.Set(false)
	if len(log) != 2 || log[1] != "disabled" {
		t.Fatalf("expected 'disabled', got: %v", log)
	}
}

func TestEffect_ScopeStopsAllAdoptedEffects(t *testing.T) {
	count := NewRef(0)
	runsA, runsB := 0, 0

	scope := NewScope()
	scope.Run(func() {
		NewEffect(func() { _ = count.Value(); runsA++ })
		NewEffect(func() { _ = count.Value(); runsB++ })
	})

	count.Set(1)
	if runsA != 2 || runsB != 2 {
		t.Fatalf("expected both effects to have run twice, got %d, %d", runsA, runsB)
	}

	scope.Stop()

	count.Set(2)
	if runsA != 2 || runsB != 2 {
		t.Fatalf("expected Scope.Stop to stop both effects, got %d, %d", runsA, runsB)
	}
}
