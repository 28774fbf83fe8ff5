package core

import (
	"errors"
)

var (
	// ErrDuplicateStage is returned when a pipeline stage name is registered twice.
	ErrDuplicateStage = errors.New("pipeline stage already registered")
	// ErrRegistryFinalized is returned when a regular stage is registered after the
	// registry started ticking. Only the terminal stage may be appended at that point.
	ErrRegistryFinalized = errors.New("stage registry already finalized")
	// ErrAllocation is returned when a GPU buffer or memory allocation fails.
	ErrAllocation = errors.New("gpu allocation failed")
	// ErrTransferTimeout is returned when the upload fence is not signaled in time.
	ErrTransferTimeout = errors.New("staged transfer timed out")
	// ErrUnsupportedMeshKind is returned by the uploader for mesh kinds it is not
	// wired to handle.
	ErrUnsupportedMeshKind = errors.New("unsupported mesh kind")
	// ErrNotFound is returned by scene lookups for absent entities or singletons.
	ErrNotFound = errors.New("not found")
	// ErrSwapchainOutOfDate signals that the surface changed and the swapchain
	// must be rebuilt before the next frame. Recoverable.
	ErrSwapchainOutOfDate = errors.New("swapchain out of date")
	// ErrGPUHang is returned when a bounded fence or acquire wait times out.
	// Unrecoverable; the engine aborts rather than render against corrupt state.
	ErrGPUHang = errors.New("gpu fence wait timed out")
)
