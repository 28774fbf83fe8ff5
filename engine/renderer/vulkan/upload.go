package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/math"
	"github.com/greenmatthew/velecs/engine/scene"
)

// uploadFenceTimeoutNs bounds how long a synchronous transfer may take
// before the uploader gives up and reports the queue as wedged.
const uploadFenceTimeoutNs uint64 = 10_000_000_000

// Uploader pushes mesh geometry into device local memory through staging
// buffers. Transfers are fully synchronous; by the time Upload returns the
// destination buffers hold the data and the staging copies are gone.
type Uploader struct {
	context       *VulkanContext
	uploadFence   *VulkanFence
	deletionQueue *DeletionQueue
}

func NewUploader(context *VulkanContext, deletionQueue *DeletionQueue) (*Uploader, error) {
	fence, err := NewFence(context, false)
	if err != nil {
		return nil, err
	}
	return &Uploader{
		context:       context,
		uploadFence:   fence,
		deletionQueue: deletionQueue,
	}, nil
}

func (u *Uploader) Shutdown() {
	u.uploadFence.FenceDestroy(u.context)
	u.uploadFence = nil
}

// ImmediateSubmit records commands into a transient buffer on the transfer
// queue and blocks until the GPU has executed them.
func (u *Uploader) ImmediateSubmit(record func(commandBuffer *VulkanCommandBuffer)) error {
	commandBuffer, err := AllocateAndBeginSingleUse(u.context, u.context.Device.TransferCommandPool)
	if err != nil {
		return err
	}

	record(commandBuffer)

	if err := commandBuffer.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer.Handle},
	}
	if res := vk.QueueSubmit(
		u.context.Device.TransferQueue,
		1,
		[]vk.SubmitInfo{submitInfo},
		u.uploadFence.Handle); res != vk.Success {
		err := fmt.Errorf("failed to submit transfer commands: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}

	if !u.uploadFence.FenceWait(u.context, uploadFenceTimeoutNs) {
		core.LogError("transfer fence not signaled within %d ns", uploadFenceTimeoutNs)
		return core.ErrTransferTimeout
	}
	if err := u.uploadFence.FenceReset(u.context); err != nil {
		return err
	}

	commandBuffer.Free(u.context, u.context.Device.TransferCommandPool)
	return nil
}

// Upload moves the mesh's vertex and index data into device local buffers.
// Destination buffers are released through the deletion queue; staging
// buffers never outlive the call.
func (u *Uploader) Upload(mesh *scene.Mesh) error {
	if mesh.Uploaded {
		return nil
	}
	if !mesh.HasData() {
		return fmt.Errorf("mesh has no vertex data: %w", core.ErrUnsupportedMeshKind)
	}

	vertexData := vertexBytes(mesh.Vertices)
	vertexBuffer, err := u.uploadBytes(vertexData, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return fmt.Errorf("vertex upload: %w", err)
	}
	mesh.VertexBuffer = vertexBuffer

	if mesh.HasIndices() {
		indexData := indexBytes(mesh.Indices)
		indexBuffer, err := u.uploadBytes(indexData, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
		if err != nil {
			return fmt.Errorf("index upload: %w", err)
		}
		mesh.IndexBuffer = indexBuffer
	}

	mesh.Uploaded = true
	return nil
}

func (u *Uploader) uploadBytes(data []byte, usage vk.BufferUsageFlags) (scene.AllocatedBuffer, error) {
	size := vk.DeviceSize(len(data))

	staging, err := BufferCreate(
		u.context,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return scene.AllocatedBuffer{}, err
	}

	if err := BufferLoadData(u.context, &staging, data); err != nil {
		BufferDestroy(u.context, &staging)
		return scene.AllocatedBuffer{}, err
	}

	destination, err := BufferCreate(
		u.context,
		size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		BufferDestroy(u.context, &staging)
		return scene.AllocatedBuffer{}, err
	}

	err = u.ImmediateSubmit(func(commandBuffer *VulkanCommandBuffer) {
		copyRegion := vk.BufferCopy{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      size,
		}
		vk.CmdCopyBuffer(commandBuffer.Handle, staging.Buffer, destination.Buffer, 1, []vk.BufferCopy{copyRegion})
	})

	// Staging goes away regardless of outcome.
	BufferDestroy(u.context, &staging)

	if err != nil {
		BufferDestroy(u.context, &destination)
		return scene.AllocatedBuffer{}, err
	}

	context := u.context
	released := destination
	u.deletionQueue.Push(func() {
		BufferDestroy(context, &released)
	})
	return destination, nil
}

// vertexBytes reinterprets the vertex slice as its raw GPU layout. Vertex is
// two tightly packed Vec3 fields, so the in-memory form is the wire form.
func vertexBytes(vertices []math.Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	size := len(vertices) * int(unsafe.Sizeof(vertices[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), size)
}

func indexBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	size := len(indices) * 4
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), size)
}
