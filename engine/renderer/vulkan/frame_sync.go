package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/greenmatthew/velecs/engine/core"
)

// frameFenceTimeoutNs bounds the wait on the previous frame's work. A frame
// taking longer than a second means the device is gone, not slow.
const frameFenceTimeoutNs uint64 = 1_000_000_000

type FrameState int

const (
	FrameIdle FrameState = iota
	FrameAcquired
	FrameRecording
	FrameSubmitted
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameAcquired:
		return "acquired"
	case FrameRecording:
		return "recording"
	case FrameSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// FrameSync runs a single frame in flight. One render fence gates CPU reuse
// of the frame's resources, two binary semaphores order GPU work against the
// presentation engine. Operations must follow the frame cycle strictly;
// out-of-order calls are programming errors and fail immediately.
type FrameSync struct {
	imageAvailableSemaphore vk.Semaphore
	renderFinishedSemaphore vk.Semaphore
	renderFence             *VulkanFence

	state FrameState
	// staleAcquire records that an acquired image was dropped without a
	// submit, leaving the acquire semaphore signaled with no consumer.
	staleAcquire bool
	frameNumber  uint64
}

func NewFrameSync(context *VulkanContext) (*FrameSync, error) {
	sync := &FrameSync{state: FrameIdle}

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	if res := vk.CreateSemaphore(
		context.Device.LogicalDevice,
		&semaphoreCreateInfo,
		context.Allocator,
		&sync.imageAvailableSemaphore); res != vk.Success {
		return nil, fmt.Errorf("failed to create image available semaphore: %s", VulkanResultString(res))
	}
	if res := vk.CreateSemaphore(
		context.Device.LogicalDevice,
		&semaphoreCreateInfo,
		context.Allocator,
		&sync.renderFinishedSemaphore); res != vk.Success {
		return nil, fmt.Errorf("failed to create render finished semaphore: %s", VulkanResultString(res))
	}

	// Signaled so the very first frame does not block on work that never ran.
	fence, err := NewFence(context, true)
	if err != nil {
		return nil, err
	}
	sync.renderFence = fence
	return sync, nil
}

func (s *FrameSync) Destroy(context *VulkanContext) {
	if s.imageAvailableSemaphore != vk.NullSemaphore {
		vk.DestroySemaphore(context.Device.LogicalDevice, s.imageAvailableSemaphore, context.Allocator)
		s.imageAvailableSemaphore = vk.NullSemaphore
	}
	if s.renderFinishedSemaphore != vk.NullSemaphore {
		vk.DestroySemaphore(context.Device.LogicalDevice, s.renderFinishedSemaphore, context.Allocator)
		s.renderFinishedSemaphore = vk.NullSemaphore
	}
	if s.renderFence != nil {
		s.renderFence.FenceDestroy(context)
		s.renderFence = nil
	}
}

// FrameNumber reports how many frames have completed the full cycle.
func (s *FrameSync) FrameNumber() uint64 {
	return s.frameNumber
}

func (s *FrameSync) State() FrameState {
	return s.state
}

func (s *FrameSync) ensureState(expected FrameState, op string) error {
	if s.state != expected {
		return fmt.Errorf("%s called in frame state %s, expected %s", op, s.state, expected)
	}
	return nil
}

// BeginFrame waits out the previous frame's GPU work and acquires the next
// swapchain image. A fence or acquire timeout is unrecoverable; an
// out-of-date swapchain is reported as core.ErrSwapchainOutOfDate and leaves
// the frame idle so the caller can rebuild and retry next tick.
func (s *FrameSync) BeginFrame(context *VulkanContext, swapchain *VulkanSwapchain) (uint32, error) {
	if err := s.ensureState(FrameIdle, "BeginFrame"); err != nil {
		return 0, err
	}

	if s.staleAcquire {
		if err := s.flushStaleAcquire(context); err != nil {
			return 0, err
		}
	}

	if !s.renderFence.FenceWait(context, frameFenceTimeoutNs) {
		core.LogError("render fence wait failed on frame %d", s.frameNumber)
		return 0, core.ErrGPUHang
	}

	imageIndex, err := SwapchainAcquireNextImageIndex(
		context, swapchain, frameFenceTimeoutNs, s.imageAvailableSemaphore, vk.NullFence)
	if err != nil {
		return 0, err
	}

	s.state = FrameAcquired
	return imageIndex, nil
}

// flushStaleAcquire submits an empty batch that waits out the orphaned
// acquire signal and re-signals the render fence, so BeginFrame's fence
// wait covers the flush and the semaphore is clean for the next acquire.
func (s *FrameSync) flushStaleAcquire(context *VulkanContext) error {
	if err := s.renderFence.FenceReset(context); err != nil {
		return err
	}
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{s.imageAvailableSemaphore},
		PWaitDstStageMask:  []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)},
	}
	if res := vk.QueueSubmit(
		context.Device.GraphicsQueue,
		1,
		[]vk.SubmitInfo{submitInfo},
		s.renderFence.Handle); res != vk.Success {
		return fmt.Errorf("failed to flush abandoned frame: %s", VulkanResultString(res))
	}
	s.staleAcquire = false
	return nil
}

// BeginRecording transitions into the recording phase.
func (s *FrameSync) BeginRecording() error {
	if err := s.ensureState(FrameAcquired, "BeginRecording"); err != nil {
		return err
	}
	s.state = FrameRecording
	return nil
}

// Submit hands the recorded command buffer to the graphics queue. Execution
// waits for the acquired image at the colour output stage and signals both
// the render finished semaphore and the render fence on completion.
func (s *FrameSync) Submit(context *VulkanContext, commandBuffer *VulkanCommandBuffer) error {
	if err := s.ensureState(FrameRecording, "Submit"); err != nil {
		return err
	}

	// The fence stays signaled until work is actually queued, so an
	// abandoned frame never leaves it permanently unsignaled.
	if err := s.renderFence.FenceReset(context); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{s.imageAvailableSemaphore},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{s.renderFinishedSemaphore},
	}
	if res := vk.QueueSubmit(
		context.Device.GraphicsQueue,
		1,
		[]vk.SubmitInfo{submitInfo},
		s.renderFence.Handle); res != vk.Success {
		err := fmt.Errorf("failed to submit frame commands: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	commandBuffer.UpdateSubmitted()

	s.state = FrameSubmitted
	return nil
}

// Present queues the submitted image for display and completes the frame
// cycle. Surface changes are reported as a rebuild request, never an error.
func (s *FrameSync) Present(context *VulkanContext, swapchain *VulkanSwapchain, imageIndex uint32) error {
	if err := s.ensureState(FrameSubmitted, "Present"); err != nil {
		return err
	}

	if err := SwapchainPresent(
		context, swapchain, context.Device.PresentQueue, s.renderFinishedSemaphore, imageIndex); err != nil {
		return err
	}

	s.state = FrameIdle
	s.frameNumber++
	return nil
}

// AbandonFrame returns to idle without submitting, used when recording
// cannot proceed and the acquired image is simply dropped. The orphaned
// acquire signal is flushed on the next BeginFrame.
func (s *FrameSync) AbandonFrame() {
	if s.state != FrameIdle {
		s.staleAcquire = true
	}
	s.state = FrameIdle
}
