package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/greenmatthew/velecs/engine/core"
)

// VulkanContext is the shared state every renderer subsystem works
// against. It is created once by the backend and passed explicitly.
type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass

	// One command buffer per swapchain image.
	GraphicsCommandBuffers []*VulkanCommandBuffer

	// Index of the swapchain image acquired for the current frame.
	ImageIndex uint32

	// Set when a present reported the surface stale; the next tick
	// rebuilds the swapchain before recording.
	SwapchainRebuildNeeded bool
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(memoryProperties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}
