package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/math"
	"github.com/greenmatthew/velecs/engine/scene"
)

// bindTracker skips redundant rebinds of comparable pipeline state. The zero
// value means nothing bound yet.
type bindTracker[T comparable] struct {
	current T
	bound   bool
}

// Changed reports whether value differs from the currently bound one and
// records it as bound.
func (b *bindTracker[T]) Changed(value T) bool {
	if b.bound && b.current == value {
		return false
	}
	b.current = value
	b.bound = true
	return true
}

// Recorder writes one frame's draw commands. Entities without geometry or
// without a usable material are skipped silently; meshes not yet resident on
// the GPU are uploaded on first encounter.
type Recorder struct {
	context    *VulkanContext
	renderpass *VulkanRenderpass
	uploader   *Uploader
}

func NewRecorder(context *VulkanContext, renderpass *VulkanRenderpass, uploader *Uploader) *Recorder {
	return &Recorder{
		context:    context,
		renderpass: renderpass,
		uploader:   uploader,
	}
}

func (r *Recorder) RecordFrame(
	commandBuffer *VulkanCommandBuffer,
	framebuffer *VulkanFramebuffer,
	extent vk.Extent2D,
	world *scene.World,
	camera *scene.Camera,
) error {
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	r.renderpass.Begin(commandBuffer, framebuffer.Handle, extent)

	viewProjection := camera.ViewMatrix().Mul(camera.ProjectionMatrix())

	var pipelineTracker bindTracker[vk.Pipeline]
	for _, entity := range world.Drawables() {
		mesh := entity.Mesh
		material := entity.Material
		if !mesh.HasData() || !material.HasPipeline() {
			continue
		}

		if !mesh.Uploaded {
			if err := r.uploader.Upload(mesh); err != nil {
				core.LogError("mesh upload for entity '%s' failed: %s", entity.Name, err)
				continue
			}
		}

		if pipelineTracker.Changed(material.Pipeline) {
			vk.CmdBindPipeline(commandBuffer.Handle, vk.PipelineBindPointGraphics, material.Pipeline)

			viewport := vk.Viewport{
				X:        0,
				Y:        float32(extent.Height),
				Width:    float32(extent.Width),
				Height:   -float32(extent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			}
			vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})

			scissor := vk.Rect2D{
				Offset: vk.Offset2D{X: 0, Y: 0},
				Extent: extent,
			}
			vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})
		}

		mvp := entity.Transform.GetWorld().Mul(viewProjection)
		constants := packPushConstants(mvp, material.Colour)
		vk.CmdPushConstants(
			commandBuffer.Handle,
			material.PipelineLayout,
			vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit),
			0,
			pushConstantsSize,
			unsafe.Pointer(&constants[0]))

		vk.CmdBindVertexBuffers(
			commandBuffer.Handle, 0, 1,
			[]vk.Buffer{mesh.VertexBuffer.Buffer},
			[]vk.DeviceSize{0})

		if mesh.HasIndices() {
			vk.CmdBindIndexBuffer(commandBuffer.Handle, mesh.IndexBuffer.Buffer, 0, vk.IndexTypeUint32)
			vk.CmdDrawIndexed(commandBuffer.Handle, uint32(len(mesh.Indices)), 1, 0, 0, 0)
		} else {
			vk.CmdDraw(commandBuffer.Handle, uint32(len(mesh.Vertices)), 1, 0, 0)
		}
	}

	r.renderpass.End(commandBuffer)

	if err := commandBuffer.End(); err != nil {
		return fmt.Errorf("ending frame command buffer: %w", err)
	}
	return nil
}

func packPushConstants(mvp math.Mat4, colour math.Vec4) [pushConstantsSize]byte {
	var out [pushConstantsSize]byte
	matrix := (*[pushConstantMatrixSize]byte)(unsafe.Pointer(&mvp.Data[0]))
	copy(out[:pushConstantMatrixSize], matrix[:])
	colourBytes := (*[pushConstantColourSize]byte)(unsafe.Pointer(&colour))
	copy(out[pushConstantMatrixSize:], colourBytes[:])
	return out
}
