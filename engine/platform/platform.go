package platform

import (
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/greenmatthew/velecs/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window    *glfw.Window
	minimized bool
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
	}, nil
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogFatal("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogFatal("failed to create window: %s", err)
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetIconifyCallback(p.iconifyCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages drains the OS event queue, driving the callbacks below.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

// IsMinimized reports whether the window is currently iconified.
func (p *Platform) IsMinimized() bool {
	return p.minimized
}

// FramebufferSize returns the drawable surface size in pixels, which can
// differ from the window size on high-DPI displays.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// CreateVulkanSurface creates a window surface on the given instance.
func (p *Platform) CreateVulkanSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := p.Window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, err
	}
	return vk.SurfaceFromPointer(surface), nil
}

// RequiredVulkanExtensions lists the instance extensions the windowing
// system needs for presentation.
func (p *Platform) RequiredVulkanExtensions() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

func GetAbsoluteTime() float64 {
	return glfw.GetTime()
}

func Sleep(ms uint64) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code, ok := translateKey(key)
	if !ok {
		return
	}
	switch action {
	case glfw.Press:
		core.InputProcessKey(code, true)
	case glfw.Release:
		core.InputProcessKey(code, false)
	}
	// glfw.Repeat is ignored; held state is derived from the snapshots.
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	core.InputProcessMouseWheel(float32(yoff))
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{
			WindowWidth:  uint32(width),
			WindowHeight: uint32(height),
		},
	})
}

func (p *Platform) iconifyCallback(w *glfw.Window, iconified bool) {
	p.minimized = iconified
	if !iconified {
		width, height := p.FramebufferSize()
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_RESTORED,
			Data: &core.SystemEvent{
				WindowWidth:  width,
				WindowHeight: height,
			},
		})
	}
}

func (p *Platform) closeCallback(w *glfw.Window) {
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_APPLICATION_QUIT,
	})
}

// translateKey maps a GLFW key to the engine's key code. Letters and
// digits share ASCII values so they cast directly.
func translateKey(key glfw.Key) (core.KeyCode, bool) {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return core.KeyCode(key), true
	case key == glfw.KeySpace:
		return core.KEY_SPACE, true
	}
	switch key {
	case glfw.KeyEscape:
		return core.KEY_ESCAPE, true
	case glfw.KeyEnter:
		return core.KEY_ENTER, true
	case glfw.KeyTab:
		return core.KEY_TAB, true
	case glfw.KeyBackspace:
		return core.KEY_BACKSPACE, true
	case glfw.KeyLeftShift, glfw.KeyRightShift:
		return core.KEY_SHIFT, true
	case glfw.KeyLeft:
		return core.KEY_LEFT, true
	case glfw.KeyRight:
		return core.KEY_RIGHT, true
	case glfw.KeyUp:
		return core.KEY_UP, true
	case glfw.KeyDown:
		return core.KEY_DOWN, true
	case glfw.KeyF1:
		return core.KEY_F1, true
	case glfw.KeyF11:
		return core.KEY_F11, true
	case glfw.KeyF12:
		return core.KEY_F12, true
	}
	return 0, false
}
