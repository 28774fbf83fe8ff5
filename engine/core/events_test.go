package core

import "testing"

func TestEventListenersFireInRegistrationOrder(t *testing.T) {
	EventSystemInitialize()
	t.Cleanup(func() { EventSystemShutdown() })

	var order []int
	EventRegister(EVENT_CODE_RESIZED, func(ctx EventContext) { order = append(order, 1) })
	EventRegister(EVENT_CODE_RESIZED, func(ctx EventContext) { order = append(order, 2) })

	EventFire(EventContext{Type: EVENT_CODE_RESIZED})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected listeners in registration order, got %v", order)
	}
}

func TestEventFireOnlyMatchingCode(t *testing.T) {
	EventSystemInitialize()
	t.Cleanup(func() { EventSystemShutdown() })

	fired := false
	EventRegister(EVENT_CODE_KEY_PRESSED, func(ctx EventContext) { fired = true })

	EventFire(EventContext{Type: EVENT_CODE_KEY_RELEASED})
	if fired {
		t.Error("listener fired for a code it never registered")
	}

	EventFire(EventContext{Type: EVENT_CODE_KEY_PRESSED})
	if !fired {
		t.Error("listener did not fire for its registered code")
	}
}

func TestEventDataPassesThrough(t *testing.T) {
	EventSystemInitialize()
	t.Cleanup(func() { EventSystemShutdown() })

	var got uint32
	EventRegister(EVENT_CODE_RESIZED, func(ctx EventContext) {
		if se, ok := ctx.Data.(*SystemEvent); ok {
			got = se.WindowWidth
		}
	})

	EventFire(EventContext{
		Type: EVENT_CODE_RESIZED,
		Data: &SystemEvent{WindowWidth: 640, WindowHeight: 480},
	})

	if got != 640 {
		t.Errorf("expected payload width 640, got %d", got)
	}
}
