package scene

import (
	"fmt"

	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/math"
)

type ProjectionKind int

const (
	ProjectionPerspective ProjectionKind = iota
	ProjectionOrthographic
)

// Camera projects the world onto the surface. Aspect follows the
// surface extent, republished by the renderer on every swapchain
// rebuild.
type Camera struct {
	Transform *math.Transform

	Projection     ProjectionKind
	VerticalFovDeg float32
	// OrthoHalfHeight is half the vertical span in world units when the
	// projection is orthographic.
	OrthoHalfHeight float32
	NearPlane       float32
	FarPlane        float32

	extentWidth  uint32
	extentHeight uint32
}

// NewCamera creates a perspective camera.
func NewCamera(verticalFovDeg, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Transform:      math.TransformCreate(),
		Projection:     ProjectionPerspective,
		VerticalFovDeg: verticalFovDeg,
		NearPlane:      nearPlane,
		FarPlane:       farPlane,
	}
}

// NewOrthographicCamera creates a camera with a parallel projection
// spanning 2*halfHeight vertically; the horizontal span follows the
// surface aspect.
func NewOrthographicCamera(halfHeight, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Transform:       math.TransformCreate(),
		Projection:      ProjectionOrthographic,
		OrthoHalfHeight: halfHeight,
		NearPlane:       nearPlane,
		FarPlane:        farPlane,
	}
}

// SetExtent republishes the surface dimensions the projection derives
// its aspect ratio from. Zero-area extents are ignored; the swapchain
// layer never renders against one.
func (c *Camera) SetExtent(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	c.extentWidth = width
	c.extentHeight = height
}

// Extent returns the last published surface dimensions.
func (c *Camera) Extent() (uint32, uint32) {
	return c.extentWidth, c.extentHeight
}

// ViewMatrix is the inverse of the camera's world placement.
func (c *Camera) ViewMatrix() math.Mat4 {
	pos := c.Transform.Position
	rot := c.Transform.Rotation
	forward := rot.RotateVector(math.NewVec3Forward())
	up := rot.RotateVector(math.NewVec3Up())
	return math.NewMat4LookAt(pos, pos.Add(forward), up)
}

// ProjectionMatrix builds the projection for the published extent.
func (c *Camera) ProjectionMatrix() math.Mat4 {
	aspect := float32(1.0)
	if c.extentHeight != 0 {
		aspect = float32(c.extentWidth) / float32(c.extentHeight)
	}
	if c.Projection == ProjectionOrthographic {
		halfWidth := c.OrthoHalfHeight * aspect
		return math.NewMat4Orthographic(
			-halfWidth, halfWidth,
			-c.OrthoHalfHeight, c.OrthoHalfHeight,
			c.NearPlane, c.FarPlane)
	}
	return math.NewMat4Perspective(math.DegToRad(c.VerticalFovDeg), aspect, c.NearPlane, c.FarPlane)
}

var mainCamera *Camera

// SetMainCamera installs the camera frame recording reads from.
func SetMainCamera(c *Camera) {
	mainCamera = c
}

// MainCamera returns the installed camera. Rendering without one is a
// caller contract violation, surfaced here rather than as a nil deref
// mid-frame.
func MainCamera() (*Camera, error) {
	if mainCamera == nil {
		return nil, fmt.Errorf("main camera: %w", core.ErrNotFound)
	}
	return mainCamera, nil
}
