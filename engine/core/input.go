package core

import "sync"

// Key code definitions
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_ENTER     KeyCode = 0x0D
	KEY_TAB       KeyCode = 0x09
	KEY_SHIFT     KeyCode = 0x10
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_C         KeyCode = 0x43
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_H         KeyCode = 0x48
	KEY_I         KeyCode = 0x49
	KEY_J         KeyCode = 0x4A
	KEY_K         KeyCode = 0x4B
	KEY_L         KeyCode = 0x4C
	KEY_M         KeyCode = 0x4D
	KEY_N         KeyCode = 0x4E
	KEY_O         KeyCode = 0x4F
	KEY_P         KeyCode = 0x50
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_T         KeyCode = 0x54
	KEY_U         KeyCode = 0x55
	KEY_V         KeyCode = 0x56
	KEY_W         KeyCode = 0x57
	KEY_X         KeyCode = 0x58
	KEY_Y         KeyCode = 0x59
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F11       KeyCode = 0x7A
	KEY_F12       KeyCode = 0x7B
	KEYS_MAX_KEYS KeyCode = 0x100
)

// KeyState classifies a key for the current tick, derived from the previous
// and current pressed flags.
type KeyState uint8

const (
	// KeyIdle means the key is up and was up last tick.
	KeyIdle KeyState = iota
	// KeyPressed means the key went down this tick.
	KeyPressed
	// KeyHeld means the key is down and was already down last tick.
	KeyHeld
	// KeyReleased means the key went up this tick.
	KeyReleased
)

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// Input state holds current and previous keyboard snapshots plus the wheel
// delta accumulated since the last sample.
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	WheelDelta       float32
}

var onceInput sync.Once
var inputInitialized bool = false
var inputState *InputState = nil

func InputInitialize() error {
	onceInput.Do(func() {
		inputState = &InputState{}
		inputInitialized = true
	})
	LogInfo("Input subsystem initialized.")
	return nil
}

func InputShutdown() error {
	inputInitialized = false
	return nil
}

// InputUpdate copies the current snapshot over the previous one and clears the
// wheel delta. Must run exactly once per tick, after the window events have
// been pumped and before any behavior samples key states.
func InputUpdate(deltaTime float64) error {
	if !inputInitialized {
		return nil
	}
	inputState.KeyboardPrevious = inputState.KeyboardCurrent
	inputState.WheelDelta = 0
	return nil
}

// InputGetKeyState returns the Pressed/Held/Released/Idle classification for a
// key on the current tick.
func InputGetKeyState(key KeyCode) KeyState {
	if !inputInitialized {
		return KeyIdle
	}
	prev := inputState.KeyboardPrevious.Keys[key]
	curr := inputState.KeyboardCurrent.Keys[key]
	switch {
	case !prev && curr:
		return KeyPressed
	case prev && curr:
		return KeyHeld
	case prev && !curr:
		return KeyReleased
	default:
		return KeyIdle
	}
}

func InputIsPressed(key KeyCode) bool {
	return InputGetKeyState(key) == KeyPressed
}

// InputIsHeld reports whether the key is down this tick. A key that was just
// pressed is still considered held.
func InputIsHeld(key KeyCode) bool {
	s := InputGetKeyState(key)
	return s == KeyPressed || s == KeyHeld
}

func InputIsReleased(key KeyCode) bool {
	return InputGetKeyState(key) == KeyReleased
}

func InputIsIdle(key KeyCode) bool {
	return InputGetKeyState(key) == KeyIdle
}

// InputGetMouseWheel returns the wheel delta accumulated during the current tick.
func InputGetMouseWheel() float32 {
	if !inputInitialized {
		return 0
	}
	return inputState.WheelDelta
}

// InputProcessKey records a key transition from the windowing layer and fires
// the matching event when the state actually changed.
func InputProcessKey(key KeyCode, pressed bool) error {
	if !inputInitialized || key >= KEYS_MAX_KEYS {
		return nil
	}
	if inputState.KeyboardCurrent.Keys[key] != pressed {
		inputState.KeyboardCurrent.Keys[key] = pressed

		code := EVENT_CODE_KEY_RELEASED
		if pressed {
			code = EVENT_CODE_KEY_PRESSED
		}
		EventFire(EventContext{
			Type: code,
			Data: &KeyEvent{KeyCode: key},
		})
	}
	return nil
}

// InputProcessMouseWheel accumulates a wheel delta from the windowing layer.
func InputProcessMouseWheel(delta float32) error {
	if !inputInitialized {
		return nil
	}
	inputState.WheelDelta += delta
	if delta != 0 {
		EventFire(EventContext{
			Type: EVENT_CODE_MOUSE_WHEEL,
			Data: &MouseWheelEvent{Delta: delta},
		})
	}
	return nil
}
