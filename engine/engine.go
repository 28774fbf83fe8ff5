package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/greenmatthew/velecs/engine/assets"
	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/pipeline"
	"github.com/greenmatthew/velecs/engine/platform"
	"github.com/greenmatthew/velecs/engine/renderer"
	"github.com/greenmatthew/velecs/engine/scene"
)

// suspendedThrottleMs is how long a suspended tick sleeps before the next
// event pump.
const suspendedThrottleMs = 100

type Engine struct {
	gameInstance *Game
	registry     *pipeline.Registry
	platform     *platform.Platform
	assetManager *assets.Manager
	world        *scene.World
	renderer     *renderer.Renderer
	clock        *core.Clock

	isRunning   bool
	isSuspended bool
	width       uint32
	height      uint32
	lastTime    float64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("game instance and its config are required")
	}

	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	world := scene.NewWorld()

	return &Engine{
		gameInstance: g,
		registry:     pipeline.NewDefaultRegistry(),
		platform:     p,
		assetManager: am,
		world:        world,
		renderer:     renderer.New(p, world, am),
		clock:        core.NewClock(),
		isRunning:    true,
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
	}, nil
}

func (e *Engine) World() *scene.World {
	return e.world
}

func (e *Engine) Assets() *assets.Manager {
	return e.assetManager
}

// Registry exposes the stage registry so applications can attach their own
// per-tick behaviors before Run.
func (e *Engine) Registry() *pipeline.Registry {
	return e.registry
}

func (e *Engine) Initialize() error {
	core.SetLogLevel(e.gameInstance.ApplicationConfig.ParsedLogLevel())

	if err := core.InputInitialize(); err != nil {
		return err
	}
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)
	core.EventRegister(core.EVENT_CODE_RESTORED, e.onRestored)

	config := e.gameInstance.ApplicationConfig
	if err := e.platform.Startup(config.Name,
		config.StartPosX, config.StartPosY,
		config.StartWidth, config.StartHeight); err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := e.assetManager.Initialize(filepath.Join(wd, config.AssetRoot)); err != nil {
		return err
	}

	if err := e.renderer.Initialize(config.Name, e.width, e.height); err != nil {
		return err
	}

	camera := scene.NewCamera(70.0, 0.1, 200.0)
	camera.SetExtent(e.width, e.height)
	scene.SetMainCamera(camera)

	if err := e.attachBehaviors(); err != nil {
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e.world); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	return nil
}

// attachBehaviors wires the engine's own work into the tick stages. The
// terminal stage is appended here, after the default registry finalized.
func (e *Engine) attachBehaviors() error {
	if err := e.registry.AttachByName(pipeline.StageInputSample, e.sampleInput); err != nil {
		return err
	}
	if err := e.registry.AttachByName(pipeline.StageSimulate, e.simulate); err != nil {
		return err
	}
	if err := e.renderer.AttachBehaviors(e.registry); err != nil {
		return err
	}
	if err := e.registry.AttachByName(pipeline.StageHousekeeping, e.housekeeping); err != nil {
		return err
	}

	if _, err := e.registry.AppendTerminal(pipeline.StageFinalTeardown); err != nil {
		return err
	}
	return e.registry.AttachByName(pipeline.StageFinalTeardown, e.finalTeardown)
}

func (e *Engine) sampleInput(tick *pipeline.TickContext) error {
	e.platform.PumpMessages()
	if e.platform.Window.ShouldClose() {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}
	return nil
}

func (e *Engine) simulate(tick *pipeline.TickContext) error {
	if e.isSuspended {
		return nil
	}
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(e.world, tick.DeltaTime); err != nil {
			return err
		}
	}
	e.world.Simulate(tick.DeltaTime)
	return nil
}

func (e *Engine) housekeeping(tick *pipeline.TickContext) error {
	for _, path := range e.assetManager.TakeModified() {
		core.LogInfo("Asset changed on disk: %s", path)
	}

	core.MetricsUpdate(tick.DeltaTime)

	// Input state copy happens last so every behavior this tick saw the
	// same pressed/released classification.
	return core.InputUpdate(tick.DeltaTime)
}

// finalTeardown runs as the terminal stage, after every other behavior of
// the tick. While suspended the loop would otherwise spin hot, so the tick
// is throttled here. A pending quit simply lets the loop condition exit.
func (e *Engine) finalTeardown(tick *pipeline.TickContext) error {
	if e.isSuspended && e.isRunning {
		platform.Sleep(suspendedThrottleMs)
	}
	return nil
}

func (e *Engine) Run() error {
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		e.lastTime = currentTime

		tick := &pipeline.TickContext{DeltaTime: delta}
		if err := e.registry.RunTick(tick); err != nil {
			if errors.Is(err, core.ErrGPUHang) {
				core.LogFatal("Device stopped responding, aborting: %s", err)
				return err
			}
			core.LogError("tick completed with errors: %s", err)
		}
	}

	return e.Shutdown()
}

func (e *Engine) Shutdown() error {
	core.LogInfo("Shutting down after %d frames.", e.renderer.FrameNumber())

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}

	e.renderer.Shutdown()

	if err := e.assetManager.Shutdown(); err != nil {
		core.LogError("asset manager shutdown failed: %s", err)
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	return e.platform.Shutdown()
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) {
	if context.Type == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
	}
}

func (e *Engine) onKey(context core.EventContext) {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event data associated with event type `%d`", context.Type)
		return
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}
}

func (e *Engine) onResized(context core.EventContext) {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event data associated with event type `%d`", context.Type)
		return
	}

	width := se.WindowWidth
	height := se.WindowHeight
	if width == e.width && height == e.height {
		return
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
}

func (e *Engine) onRestored(context core.EventContext) {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		return
	}
	if se.WindowWidth == 0 || se.WindowHeight == 0 {
		return
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.width = se.WindowWidth
	e.height = se.WindowHeight
}
