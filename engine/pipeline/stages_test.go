package pipeline

import (
	"errors"
	"testing"

	"github.com/greenmatthew/velecs/engine/core"
)

func TestRegisterDuplicateStage(t *testing.T) {
	r := NewRegistry()
	if _, err := r.RegisterStage("Update"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	_, err := r.RegisterStage("Update")
	if !errors.Is(err, core.ErrDuplicateStage) {
		t.Errorf("expected ErrDuplicateStage, got %v", err)
	}
}

func TestRegisterAfterFinalize(t *testing.T) {
	r := NewRegistry()
	r.RegisterStage("Update")
	r.Finalize()

	_, err := r.RegisterStage("Late")
	if !errors.Is(err, core.ErrRegistryFinalized) {
		t.Errorf("expected ErrRegistryFinalized, got %v", err)
	}
}

func TestAppendTerminalAfterFinalize(t *testing.T) {
	r := NewDefaultRegistry()
	before := r.StageCount()

	h, err := r.AppendTerminal(StageFinalTeardown)
	if err != nil {
		t.Fatalf("AppendTerminal failed: %v", err)
	}
	if int(h) != before {
		t.Errorf("terminal stage should slot after all existing stages: got ordinal %d, want %d", h, before)
	}

	ran := false
	r.Attach(h, func(ctx *TickContext) error {
		ran = true
		return nil
	})
	r.RunTick(&TickContext{})
	if !ran {
		t.Error("terminal stage behavior did not run")
	}

	if _, err := r.AppendTerminal(StageFinalTeardown); !errors.Is(err, core.ErrDuplicateStage) {
		t.Errorf("expected ErrDuplicateStage on second append, got %v", err)
	}
}

func TestRunTickOrdering(t *testing.T) {
	r := NewRegistry()
	a, _ := r.RegisterStage("A")
	b, _ := r.RegisterStage("B")
	c, _ := r.RegisterStage("C")
	r.Finalize()

	var order []string
	record := func(tag string) Behavior {
		return func(ctx *TickContext) error {
			order = append(order, tag)
			return nil
		}
	}

	// Interleave attachment across stages; execution must still group
	// by stage in ordinal order.
	r.Attach(b, record("b1"))
	r.Attach(a, record("a1"))
	r.Attach(c, record("c1"))
	r.Attach(a, record("a2"))
	r.Attach(b, record("b2"))

	if err := r.RunTick(&TickContext{DeltaTime: 0.016}); err != nil {
		t.Fatalf("RunTick failed: %v", err)
	}

	want := []string{"a1", "a2", "b1", "b2", "c1"}
	if len(order) != len(want) {
		t.Fatalf("expected %d invocations, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("execution order: expected %v, got %v", want, order)
		}
	}
}

func TestBehaviorFailureAbortsOwnStageOnly(t *testing.T) {
	r := NewRegistry()
	a, _ := r.RegisterStage("A")
	b, _ := r.RegisterStage("B")
	r.Finalize()

	var order []string
	fail := errors.New("behavior blew up")

	r.Attach(a, func(ctx *TickContext) error {
		order = append(order, "a1")
		return fail
	})
	r.Attach(a, func(ctx *TickContext) error {
		order = append(order, "a2")
		return nil
	})
	r.Attach(b, func(ctx *TickContext) error {
		order = append(order, "b1")
		return nil
	})

	err := r.RunTick(&TickContext{})
	if !errors.Is(err, fail) {
		t.Errorf("expected RunTick to surface the behavior error, got %v", err)
	}

	want := []string{"a1", "b1"}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestAttachUnknownStage(t *testing.T) {
	r := NewRegistry()
	if err := r.Attach(StageHandle(3), func(ctx *TickContext) error { return nil }); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := r.AttachByName("Nope", func(ctx *TickContext) error { return nil }); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
