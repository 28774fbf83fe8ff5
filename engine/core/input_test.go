package core

import "testing"

func setupInput(t *testing.T) {
	t.Helper()
	if err := InputInitialize(); err != nil {
		t.Fatalf("InputInitialize: %v", err)
	}
	// Reset the singleton between tests.
	*inputState = InputState{}
}

func TestKeyStateClassification(t *testing.T) {
	setupInput(t)

	if got := InputGetKeyState(KEY_W); got != KeyIdle {
		t.Errorf("untouched key: expected KeyIdle, got %v", got)
	}

	// Down this tick.
	InputProcessKey(KEY_W, true)
	if got := InputGetKeyState(KEY_W); got != KeyPressed {
		t.Errorf("after press: expected KeyPressed, got %v", got)
	}
	if !InputIsHeld(KEY_W) {
		t.Error("a just-pressed key should also report held")
	}

	// Still down next tick.
	InputUpdate(0.016)
	if got := InputGetKeyState(KEY_W); got != KeyHeld {
		t.Errorf("after tick with key held: expected KeyHeld, got %v", got)
	}
	if InputIsPressed(KEY_W) {
		t.Error("a held key should not report pressed")
	}

	// Up this tick.
	InputProcessKey(KEY_W, false)
	if got := InputGetKeyState(KEY_W); got != KeyReleased {
		t.Errorf("after release: expected KeyReleased, got %v", got)
	}

	// Up and settled.
	InputUpdate(0.016)
	if got := InputGetKeyState(KEY_W); got != KeyIdle {
		t.Errorf("after tick with key up: expected KeyIdle, got %v", got)
	}
}

func TestKeyPressReleaseWithinOneTick(t *testing.T) {
	setupInput(t)

	InputProcessKey(KEY_SPACE, true)
	InputProcessKey(KEY_SPACE, false)

	// Both edges landed in the same tick, so the classification reflects
	// the final flag against the previous snapshot.
	if got := InputGetKeyState(KEY_SPACE); got != KeyIdle {
		t.Errorf("press+release same tick: expected KeyIdle, got %v", got)
	}
}

func TestKeyEventsFire(t *testing.T) {
	setupInput(t)
	EventSystemInitialize()
	defer EventSystemShutdown()

	var pressed, released []KeyCode
	EventRegister(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) {
		pressed = append(pressed, ctx.Data.(*KeyEvent).KeyCode)
	})
	EventRegister(EVENT_CODE_KEY_RELEASED, func(ctx EventContext) {
		released = append(released, ctx.Data.(*KeyEvent).KeyCode)
	})

	InputProcessKey(KEY_A, true)
	InputProcessKey(KEY_A, true) // repeat, no state change
	InputProcessKey(KEY_A, false)

	if len(pressed) != 1 || pressed[0] != KEY_A {
		t.Errorf("expected one KEY_A press event, got %v", pressed)
	}
	if len(released) != 1 || released[0] != KEY_A {
		t.Errorf("expected one KEY_A release event, got %v", released)
	}
}

func TestMouseWheelAccumulatesAndResets(t *testing.T) {
	setupInput(t)

	InputProcessMouseWheel(1)
	InputProcessMouseWheel(-0.5)
	if got := InputGetMouseWheel(); got != 0.5 {
		t.Errorf("wheel delta: expected 0.5, got %v", got)
	}

	InputUpdate(0.016)
	if got := InputGetMouseWheel(); got != 0 {
		t.Errorf("wheel delta after tick: expected 0, got %v", got)
	}
}
