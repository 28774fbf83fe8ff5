package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/greenmatthew/velecs/engine/core"
)

type VulkanFramebuffer struct {
	Handle      vk.Framebuffer
	Attachments []vk.ImageView
	Renderpass  *VulkanRenderpass
}

func FramebufferCreate(
	context *VulkanContext,
	renderpass *VulkanRenderpass,
	width uint32,
	height uint32,
	attachments []vk.ImageView,
	outFramebuffer *VulkanFramebuffer,
) error {
	outFramebuffer.Attachments = make([]vk.ImageView, len(attachments))
	copy(outFramebuffer.Attachments, attachments)
	outFramebuffer.Renderpass = renderpass

	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass.Handle,
		AttachmentCount: uint32(len(outFramebuffer.Attachments)),
		PAttachments:    outFramebuffer.Attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}

	if res := vk.CreateFramebuffer(
		context.Device.LogicalDevice,
		&framebufferCreateInfo,
		context.Allocator,
		&outFramebuffer.Handle); res != vk.Success {
		err := fmt.Errorf("failed to create framebuffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	return nil
}

func FramebufferDestroy(context *VulkanContext, framebuffer *VulkanFramebuffer) {
	if framebuffer.Handle != vk.NullFramebuffer {
		vk.DestroyFramebuffer(context.Device.LogicalDevice, framebuffer.Handle, context.Allocator)
		framebuffer.Handle = vk.NullFramebuffer
	}
	framebuffer.Attachments = nil
	framebuffer.Renderpass = nil
}

// RegenerateFramebuffers rebuilds one framebuffer per swapchain image view,
// pairing each colour view with the shared depth attachment.
func RegenerateFramebuffers(context *VulkanContext, swapchain *VulkanSwapchain, renderpass *VulkanRenderpass) error {
	swapchain.Framebuffers = make([]VulkanFramebuffer, len(swapchain.ImageViews))
	for i := range swapchain.ImageViews {
		attachments := []vk.ImageView{
			swapchain.ImageViews[i],
			swapchain.DepthAttachment.View,
		}
		if err := FramebufferCreate(
			context,
			renderpass,
			swapchain.Extent.Width,
			swapchain.Extent.Height,
			attachments,
			&swapchain.Framebuffers[i]); err != nil {
			return err
		}
	}
	return nil
}
