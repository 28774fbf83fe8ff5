package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/greenmatthew/velecs/engine/core"
)

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

type VulkanSwapchain struct {
	Handle          vk.Swapchain
	ImageFormat     vk.SurfaceFormat
	ImageCount      uint32
	Images          []vk.Image
	ImageViews      []vk.ImageView
	DepthAttachment VulkanImage
	// One framebuffer per swapchain image, always kept in lockstep.
	Framebuffers []VulkanFramebuffer
	Extent       vk.Extent2D
}

func SwapchainCreate(context *VulkanContext, width uint32, height uint32) (*VulkanSwapchain, error) {
	swapchain := &VulkanSwapchain{}
	if err := swapchainInternalCreate(context, width, height, swapchain); err != nil {
		return nil, err
	}
	return swapchain, nil
}

// SwapchainRecreate tears down the extent-dependent resources in strict
// reverse creation order before building replacements at the new size.
func SwapchainRecreate(context *VulkanContext, width uint32, height uint32, swapchain *VulkanSwapchain) error {
	swapchainInternalDestroy(context, swapchain)
	return swapchainInternalCreate(context, width, height, swapchain)
}

func SwapchainDestroy(context *VulkanContext, swapchain *VulkanSwapchain) {
	swapchainInternalDestroy(context, swapchain)
}

// SwapchainAcquireNextImageIndex blocks for at most timeoutNs waiting for the
// next presentable image. The recoverable out-of-date result is surfaced as
// core.ErrSwapchainOutOfDate; an elapsed timeout is treated as a device hang.
func SwapchainAcquireNextImageIndex(
	context *VulkanContext,
	swapchain *VulkanSwapchain,
	timeoutNs uint64,
	imageAvailableSemaphore vk.Semaphore,
	fence vk.Fence,
) (uint32, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(
		context.Device.LogicalDevice,
		swapchain.Handle,
		timeoutNs,
		imageAvailableSemaphore,
		fence,
		&imageIndex)
	switch result {
	case vk.Success, vk.Suboptimal:
		// Suboptimal images are still usable for this frame. The rebuild
		// happens after presentation reports it again.
		return imageIndex, nil
	case vk.ErrorOutOfDate:
		return 0, core.ErrSwapchainOutOfDate
	case vk.Timeout, vk.NotReady:
		core.LogError("swapchain image acquisition timed out after %d ns", timeoutNs)
		return 0, core.ErrGPUHang
	default:
		return 0, fmt.Errorf("failed to acquire swapchain image: %s", VulkanResultString(result))
	}
}

// SwapchainPresent queues the image for presentation once renderCompleteSemaphore
// signals. Out-of-date and suboptimal results request a rebuild instead of failing.
func SwapchainPresent(
	context *VulkanContext,
	swapchain *VulkanSwapchain,
	presentQueue vk.Queue,
	renderCompleteSemaphore vk.Semaphore,
	presentImageIndex uint32,
) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swapchain.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}

	result := vk.QueuePresent(presentQueue, &presentInfo)
	switch result {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		context.SwapchainRebuildNeeded = true
		return nil
	default:
		return fmt.Errorf("failed to present swapchain image: %s", VulkanResultString(result))
	}
}

func swapchainInternalCreate(context *VulkanContext, width uint32, height uint32, swapchain *VulkanSwapchain) error {
	if err := DeviceQuerySwapchainSupport(
		context.Device.PhysicalDevice,
		context.Surface,
		&context.Device.SwapchainSupport); err != nil {
		return err
	}
	support := &context.Device.SwapchainSupport

	swapchain.ImageFormat = support.Formats[0]
	for _, format := range support.Formats {
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			swapchain.ImageFormat = format
			break
		}
	}

	// Fifo is the only mode the implementation must support.
	presentMode := vk.PresentModeFifo
	for _, mode := range support.PresentModes {
		if mode == vk.PresentModeMailbox {
			presentMode = mode
			break
		}
	}

	swapchainExtent := vk.Extent2D{Width: width, Height: height}
	if support.Capabilities.CurrentExtent.Width != math.MaxUint32 {
		swapchainExtent = support.Capabilities.CurrentExtent
	}
	minExtent := support.Capabilities.MinImageExtent
	maxExtent := support.Capabilities.MaxImageExtent
	swapchainExtent.Width = clampU32(swapchainExtent.Width, minExtent.Width, maxExtent.Width)
	swapchainExtent.Height = clampU32(swapchainExtent.Height, minExtent.Height, maxExtent.Height)

	imageCount := support.Capabilities.MinImageCount + 1
	if support.Capabilities.MaxImageCount > 0 && imageCount > support.Capabilities.MaxImageCount {
		imageCount = support.Capabilities.MaxImageCount
	}

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchainExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	if res := vk.CreateSwapchain(
		context.Device.LogicalDevice,
		&swapchainCreateInfo,
		context.Allocator,
		&swapchain.Handle); res != vk.Success {
		err := fmt.Errorf("failed to create swapchain: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}

	if res := vk.GetSwapchainImages(
		context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		return fmt.Errorf("failed to count swapchain images: %s", VulkanResultString(res))
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(
		context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		return fmt.Errorf("failed to get swapchain images: %s", VulkanResultString(res))
	}

	swapchain.ImageViews = make([]vk.ImageView, swapchain.ImageCount)
	for i := range swapchain.Images {
		viewCreateInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		if res := vk.CreateImageView(
			context.Device.LogicalDevice,
			&viewCreateInfo,
			context.Allocator,
			&swapchain.ImageViews[i]); res != vk.Success {
			err := fmt.Errorf("failed to create swapchain image view: %s", VulkanResultString(res))
			core.LogError(err.Error())
			return err
		}
	}

	if !DeviceDetectDepthFormat(context.Device) {
		context.Device.DepthFormat = vk.FormatUndefined
		err := fmt.Errorf("failed to find a supported depth format")
		core.LogError(err.Error())
		return err
	}
	if err := ImageCreate(
		context,
		swapchainExtent.Width,
		swapchainExtent.Height,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit),
		&swapchain.DepthAttachment); err != nil {
		return err
	}

	swapchain.Extent = swapchainExtent
	context.FramebufferWidth = swapchainExtent.Width
	context.FramebufferHeight = swapchainExtent.Height

	core.LogInfo("Swapchain created with %d images at %dx%d.",
		swapchain.ImageCount, swapchainExtent.Width, swapchainExtent.Height)
	return nil
}

func swapchainInternalDestroy(context *VulkanContext, swapchain *VulkanSwapchain) {
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	for i := range swapchain.Framebuffers {
		FramebufferDestroy(context, &swapchain.Framebuffers[i])
	}
	swapchain.Framebuffers = nil

	ImageDestroy(context, &swapchain.DepthAttachment)

	// Views are owned here, the images themselves belong to the swapchain.
	for i := range swapchain.ImageViews {
		vk.DestroyImageView(context.Device.LogicalDevice, swapchain.ImageViews[i], context.Allocator)
	}
	swapchain.ImageViews = nil
	swapchain.Images = nil

	if swapchain.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.Device.LogicalDevice, swapchain.Handle, context.Allocator)
		swapchain.Handle = vk.NullSwapchain
	}
}

func clampU32(value, min, max uint32) uint32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
