package renderer

import (
	"errors"
	"os"

	"github.com/greenmatthew/velecs/engine/assets"
	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/math"
	"github.com/greenmatthew/velecs/engine/pipeline"
	"github.com/greenmatthew/velecs/engine/platform"
	"github.com/greenmatthew/velecs/engine/renderer/vulkan"
	"github.com/greenmatthew/velecs/engine/scene"
)

// minimizedPollMs is the sleep between event pumps while the window has a
// zero-area framebuffer.
const minimizedPollMs = 100

const DefaultMaterialName = "default"

// Renderer drives the Vulkan backend through the frame stages. It owns the
// default mesh pipeline and decides per tick whether a frame is produced,
// skipped for a swapchain rebuild, or abandoned.
type Renderer struct {
	platform *platform.Platform
	world    *scene.World
	assets   *assets.Manager

	backend         *vulkan.VulkanRenderer
	defaultPipeline *vulkan.VulkanPipeline

	imageIndex  uint32
	frameActive bool
}

func New(p *platform.Platform, world *scene.World, assetManager *assets.Manager) *Renderer {
	return &Renderer{
		platform: p,
		world:    world,
		assets:   assetManager,
		backend:  vulkan.New(p),
	}
}

func (r *Renderer) Initialize(appName string, width, height uint32) error {
	if err := r.backend.Initialize(appName, width, height); err != nil {
		return err
	}

	if err := r.createDefaultMaterial(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_RESIZED, r.onResized)
	return nil
}

// createDefaultMaterial compiles the stock mesh shaders into a pipeline and
// publishes it as a material every entity can reference by name.
func (r *Renderer) createDefaultMaterial() error {
	vertCode, err := r.assets.LoadShaderCode("mesh.vert.spv")
	if err != nil {
		return err
	}
	fragCode, err := r.assets.LoadShaderCode("mesh.frag.spv")
	if err != nil {
		return err
	}

	context := r.backend.Context()
	vertModule, err := vulkan.ShaderModuleCreate(context, vertCode)
	if err != nil {
		return err
	}
	defer vulkan.ShaderModuleDestroy(context, vertModule)

	fragModule, err := vulkan.ShaderModuleCreate(context, fragCode)
	if err != nil {
		return err
	}
	defer vulkan.ShaderModuleDestroy(context, fragModule)

	pipe, err := vulkan.PipelineCreate(context, context.MainRenderpass, vertModule, fragModule)
	if err != nil {
		return err
	}
	r.defaultPipeline = pipe

	r.world.RegisterMaterial(&scene.Material{
		Name:           DefaultMaterialName,
		Pipeline:       pipe.Handle,
		PipelineLayout: pipe.Layout,
		Colour:         math.Vec4{X: 1, Y: 1, Z: 1, W: 1},
	})
	return nil
}

// AttachBehaviors wires the renderer into the frame stages.
func (r *Renderer) AttachBehaviors(registry *pipeline.Registry) error {
	if err := registry.AttachByName(pipeline.StagePreFrame, r.preFrame); err != nil {
		return err
	}
	if err := registry.AttachByName(pipeline.StageFrameRecord, r.recordFrame); err != nil {
		return err
	}
	return registry.AttachByName(pipeline.StagePostFrame, r.postFrame)
}

// preFrame rebuilds the swapchain if requested, then acquires the next
// image. A recoverable stale surface skips this tick's frame entirely.
func (r *Renderer) preFrame(tick *pipeline.TickContext) error {
	r.frameActive = false
	context := r.backend.Context()

	if context.SwapchainRebuildNeeded {
		r.blockWhileMinimized()
		if err := r.backend.RecreateSwapchain(); err != nil {
			return err
		}
		r.publishExtent()
	}

	imageIndex, err := r.backend.FrameSync.BeginFrame(context, context.Swapchain)
	if err != nil {
		if errors.Is(err, core.ErrSwapchainOutOfDate) {
			context.SwapchainRebuildNeeded = true
			return nil
		}
		return err
	}

	r.imageIndex = imageIndex
	context.ImageIndex = imageIndex
	r.frameActive = true
	return nil
}

func (r *Renderer) recordFrame(tick *pipeline.TickContext) error {
	if !r.frameActive {
		return nil
	}

	camera, err := scene.MainCamera()
	if err != nil {
		r.backend.FrameSync.AbandonFrame()
		r.frameActive = false
		return err
	}

	if err := r.backend.FrameSync.BeginRecording(); err != nil {
		return err
	}

	context := r.backend.Context()
	commandBuffer := context.GraphicsCommandBuffers[r.imageIndex]
	framebuffer := &context.Swapchain.Framebuffers[r.imageIndex]

	if err := r.backend.Recorder.RecordFrame(
		commandBuffer, framebuffer, context.Swapchain.Extent, r.world, camera); err != nil {
		r.backend.FrameSync.AbandonFrame()
		r.frameActive = false
		return err
	}
	return nil
}

func (r *Renderer) postFrame(tick *pipeline.TickContext) error {
	if !r.frameActive {
		return nil
	}
	r.frameActive = false

	context := r.backend.Context()
	commandBuffer := context.GraphicsCommandBuffers[r.imageIndex]

	if err := r.backend.FrameSync.Submit(context, commandBuffer); err != nil {
		r.backend.FrameSync.AbandonFrame()
		return err
	}
	return r.backend.FrameSync.Present(context, context.Swapchain, r.imageIndex)
}

// blockWhileMinimized parks the frame loop while the framebuffer has zero
// area. The polled extent decides, not the iconify flag, since a window
// can be dragged to zero size without being minimized. Events keep
// pumping so a restore or quit is observed promptly.
func (r *Renderer) blockWhileMinimized() {
	for {
		width, height := r.platform.FramebufferSize()
		if width > 0 && height > 0 {
			return
		}
		r.platform.PumpMessages()
		if r.platform.Window.ShouldClose() {
			core.LogInfo("Window closed while minimized, exiting.")
			os.Exit(0)
		}
		platform.Sleep(minimizedPollMs)
	}
}

// publishExtent pushes the post-rebuild framebuffer size to the main camera.
func (r *Renderer) publishExtent() {
	camera, err := scene.MainCamera()
	if err != nil {
		return
	}
	context := r.backend.Context()
	camera.SetExtent(context.FramebufferWidth, context.FramebufferHeight)
}

func (r *Renderer) onResized(data core.EventContext) {
	if resize, ok := data.Data.(*core.SystemEvent); ok {
		r.backend.Resized(resize.WindowWidth, resize.WindowHeight)
	}
}

func (r *Renderer) FrameNumber() uint64 {
	return r.backend.FrameSync.FrameNumber()
}

// Shutdown tears the backend down, draining deferred releases once the
// device is idle.
func (r *Renderer) Shutdown() {
	context := r.backend.Context()
	if r.defaultPipeline != nil {
		r.backend.WaitIdle()
		vulkan.PipelineDestroy(context, r.defaultPipeline)
		r.defaultPipeline = nil
	}
	r.backend.Shutdown()
}
