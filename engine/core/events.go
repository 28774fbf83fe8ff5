package core

import "sync"

type EventCode int

// System internal event codes. Application should use codes beyond 255.
const (
	// Shuts the application down on the next tick.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	// Keyboard key pressed. Data is a *KeyEvent.
	EVENT_CODE_KEY_PRESSED EventCode = 0x02
	// Keyboard key released. Data is a *KeyEvent.
	EVENT_CODE_KEY_RELEASED EventCode = 0x03
	// Mouse wheel moved. Data is a *MouseWheelEvent.
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07
	// Resized/resolution changed from the OS. Data is a *SystemEvent.
	EVENT_CODE_RESIZED EventCode = 0x08
	// Window restored after a minimize. Data is a *SystemEvent.
	EVENT_CODE_RESTORED EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseWheelEvent struct {
	Delta float32
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type FnOnEvent func(context EventContext)

type eventSystemState struct {
	registered map[EventCode][]FnOnEvent
}

var onceEvent sync.Once
var eventState *eventSystemState

func EventSystemInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[EventCode][]FnOnEvent),
		}
	})
	return eventState != nil
}

func EventSystemShutdown() error {
	if eventState != nil {
		eventState.registered = make(map[EventCode][]FnOnEvent)
	}
	return nil
}

// EventRegister adds a listener for the given code. Listeners fire in
// registration order.
func EventRegister(code EventCode, onEvent FnOnEvent) bool {
	if eventState == nil {
		return false
	}
	eventState.registered[code] = append(eventState.registered[code], onEvent)
	return true
}

// EventFire invokes every listener registered for the context's code,
// synchronously on the calling goroutine.
func EventFire(context EventContext) {
	if eventState == nil {
		return
	}
	for _, cb := range eventState.registered[context.Type] {
		cb(context)
	}
}
