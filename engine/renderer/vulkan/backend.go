package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/platform"
)

// Background clear colour, a near-black grey.
var defaultClearColour = [4]float32{0x18 / 255.0, 0x18 / 255.0, 0x18 / 255.0, 1.0}

type VulkanRenderer struct {
	platform *platform.Platform
	context  *VulkanContext

	FrameSync     *FrameSync
	DeletionQueue *DeletionQueue
	Uploader      *Uploader
	Recorder      *Recorder

	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	debug bool
}

func New(p *platform.Platform) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		context: &VulkanContext{
			Allocator: nil,
		},
		debug: true,
	}
}

func (vr *VulkanRenderer) Context() *VulkanContext {
	return vr.context
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("GetInstanceProcAddress is nil")
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return err
	}

	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Velecs Engine"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.RequiredVulkanExtensions()...)
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}
	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
	}
	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	validationLayers := []string{}
	if vr.debug {
		validationLayers = []string{"VK_LAYER_KHRONOS_validation"}
		if !instanceLayersPresent(validationLayers) {
			core.LogWarn("Validation layers requested but not available, continuing without them.")
			validationLayers = nil
		}
		if runtime.GOOS == "darwin" {
			createInfo.Flags |= 1
		}
	}
	createInfo.EnabledLayerCount = uint32(len(validationLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(validationLayers)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := fmt.Errorf("failed to create Vulkan instance: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Vulkan instance created.")

	if vr.debug && len(validationLayers) > 0 {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if res := vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg); res != vk.Success {
			core.LogWarn("failed to create debug report callback: %s", VulkanResultString(res))
		} else {
			vr.context.debugMessenger = dbg
		}
	}

	surface, err := vr.platform.CreateVulkanSurface(vr.context.Instance)
	if err != nil {
		core.LogError("failed to create platform surface: %s", err)
		return err
	}
	vr.context.Surface = surface
	core.LogDebug("Vulkan surface created.")

	vr.context.Device = &VulkanDevice{
		GraphicsQueueIndex: -1,
		PresentQueueIndex:  -1,
		TransferQueueIndex: -1,
	}
	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	swapchain, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = swapchain

	renderpass, err := RenderpassCreate(vr.context, defaultClearColour, 1.0, 0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = renderpass

	if err := RegenerateFramebuffers(vr.context, vr.context.Swapchain, vr.context.MainRenderpass); err != nil {
		return err
	}

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	vr.FrameSync, err = NewFrameSync(vr.context)
	if err != nil {
		return err
	}

	vr.DeletionQueue = NewDeletionQueue()
	vr.Uploader, err = NewUploader(vr.context, vr.DeletionQueue)
	if err != nil {
		return err
	}
	vr.Recorder = NewRecorder(vr.context, vr.context.MainRenderpass, vr.Uploader)

	core.LogInfo("Vulkan renderer initialized.")
	return nil
}

// WaitIdle blocks until the device finished all submitted work.
func (vr *VulkanRenderer) WaitIdle() {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
}

func (vr *VulkanRenderer) Shutdown() {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Drain after idle so no released resource is still referenced by
	// in-flight work.
	vr.DeletionQueue.DrainAll()

	vr.Uploader.Shutdown()
	vr.FrameSync.Destroy(vr.context)

	for _, commandBuffer := range vr.context.GraphicsCommandBuffers {
		commandBuffer.Free(vr.context, vr.context.Device.GraphicsCommandPool)
	}
	vr.context.GraphicsCommandBuffers = nil

	RenderpassDestroy(vr.context, vr.context.MainRenderpass)
	SwapchainDestroy(vr.context, vr.context.Swapchain)
	DeviceDestroy(vr.context)

	if vr.context.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
	}
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
	vr.context.Instance = nil

	core.LogInfo("Vulkan renderer shut down.")
}

// Resized caches the new framebuffer size and requests a swapchain rebuild.
// The actual recreation happens at the top of the next frame.
func (vr *VulkanRenderer) Resized(width, height uint32) {
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.SwapchainRebuildNeeded = true
}

// RecreateSwapchain rebuilds the extent-dependent chain. Zero-area extents
// are rejected; the caller must block while minimized before asking.
func (vr *VulkanRenderer) RecreateSwapchain() error {
	width := vr.cachedFramebufferWidth
	height := vr.cachedFramebufferHeight
	if width == 0 || height == 0 {
		width, height = vr.platform.FramebufferSize()
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("cannot recreate swapchain with zero-area extent %dx%d", width, height)
	}

	if err := SwapchainRecreate(vr.context, width, height, vr.context.Swapchain); err != nil {
		return err
	}
	if err := RegenerateFramebuffers(vr.context, vr.context.Swapchain, vr.context.MainRenderpass); err != nil {
		return err
	}
	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0
	vr.context.SwapchainRebuildNeeded = false

	core.LogInfo("Swapchain recreated at %dx%d.", vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	return nil
}

// createCommandBuffers keeps one primary buffer per swapchain image.
func (vr *VulkanRenderer) createCommandBuffers() error {
	for _, commandBuffer := range vr.context.GraphicsCommandBuffers {
		commandBuffer.Free(vr.context, vr.context.Device.GraphicsCommandPool)
	}

	count := int(vr.context.Swapchain.ImageCount)
	vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, count)
	for i := 0; i < count; i++ {
		commandBuffer, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = commandBuffer
	}
	return nil
}

func instanceLayersPresent(required []string) bool {
	var availableCount uint32
	if res := vk.EnumerateInstanceLayerProperties(&availableCount, nil); res != vk.Success {
		return false
	}
	available := make([]vk.LayerProperties, availableCount)
	if res := vk.EnumerateInstanceLayerProperties(&availableCount, available); res != vk.Success {
		return false
	}

	for _, name := range required {
		found := false
		for i := range available {
			available[i].Deref()
			end := FindFirstZeroInByteArray(available[i].LayerName[:])
			if name == string(available[i].LayerName[:end]) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
