package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/scene"
)

// BufferCreate allocates a buffer and backs it with freshly bound device
// memory. The caller owns the returned handles and must release them through
// BufferDestroy or the deletion queue.
func BufferCreate(
	context *VulkanContext,
	size vk.DeviceSize,
	usage vk.BufferUsageFlags,
	memoryFlags vk.MemoryPropertyFlags,
) (scene.AllocatedBuffer, error) {
	allocated := scene.AllocatedBuffer{Size: size}

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	// Uploads record on the transfer queue while draws read on the
	// graphics queue. Concurrent sharing across the two families avoids
	// explicit ownership transfer barriers.
	if context.Device.TransferQueueIndex != context.Device.GraphicsQueueIndex {
		bufferCreateInfo.SharingMode = vk.SharingModeConcurrent
		bufferCreateInfo.QueueFamilyIndexCount = 2
		bufferCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.TransferQueueIndex),
		}
	}
	if res := vk.CreateBuffer(
		context.Device.LogicalDevice,
		&bufferCreateInfo,
		context.Allocator,
		&allocated.Buffer); res != vk.Success {
		err := fmt.Errorf("failed to create buffer: %s: %w", VulkanResultString(res), core.ErrAllocation)
		core.LogError(err.Error())
		return scene.AllocatedBuffer{}, err
	}

	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, allocated.Buffer, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, uint32(memoryFlags))
	if memoryType == -1 {
		vk.DestroyBuffer(context.Device.LogicalDevice, allocated.Buffer, context.Allocator)
		err := fmt.Errorf("required memory type not found: %w", core.ErrAllocation)
		core.LogError(err.Error())
		return scene.AllocatedBuffer{}, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	if res := vk.AllocateMemory(
		context.Device.LogicalDevice,
		&allocateInfo,
		context.Allocator,
		&allocated.Memory); res != vk.Success {
		vk.DestroyBuffer(context.Device.LogicalDevice, allocated.Buffer, context.Allocator)
		err := fmt.Errorf("failed to allocate buffer memory: %s: %w", VulkanResultString(res), core.ErrAllocation)
		core.LogError(err.Error())
		return scene.AllocatedBuffer{}, err
	}

	if res := vk.BindBufferMemory(
		context.Device.LogicalDevice,
		allocated.Buffer,
		allocated.Memory,
		0); res != vk.Success {
		vk.FreeMemory(context.Device.LogicalDevice, allocated.Memory, context.Allocator)
		vk.DestroyBuffer(context.Device.LogicalDevice, allocated.Buffer, context.Allocator)
		err := fmt.Errorf("failed to bind buffer memory: %s: %w", VulkanResultString(res), core.ErrAllocation)
		core.LogError(err.Error())
		return scene.AllocatedBuffer{}, err
	}

	return allocated, nil
}

func BufferDestroy(context *VulkanContext, buffer *scene.AllocatedBuffer) {
	if buffer.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, buffer.Memory, context.Allocator)
		buffer.Memory = vk.NullDeviceMemory
	}
	if buffer.Buffer != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.LogicalDevice, buffer.Buffer, context.Allocator)
		buffer.Buffer = vk.NullBuffer
	}
	buffer.Size = 0
}

// BufferLoadData maps the host visible memory behind buffer and copies data in.
func BufferLoadData(context *VulkanContext, buffer *scene.AllocatedBuffer, data []byte) error {
	var mapped unsafe.Pointer
	if res := vk.MapMemory(
		context.Device.LogicalDevice,
		buffer.Memory,
		0,
		vk.DeviceSize(len(data)),
		0,
		&mapped); res != vk.Success {
		err := fmt.Errorf("failed to map buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	vk.Memcopy(mapped, data)
	vk.UnmapMemory(context.Device.LogicalDevice, buffer.Memory)
	return nil
}
