package math

// Vec2 is a two component float vector.
type Vec2 struct {
	X, Y float32
}

// Vec3 is a three component float vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 is a four component float vector.
type Vec4 struct {
	X, Y, Z, W float32
}

// Quaternion represents a rotational orientation.
type Quaternion Vec4

// Mat4 is a 4x4 matrix in column-major order, matching the layout
// shader code expects for push constant uploads.
type Mat4 struct {
	Data [16]float32
}

// Vertex is a single mesh vertex. Position and Colour interleave
// tightly so the slice can be handed to the GPU as raw bytes.
type Vertex struct {
	Position Vec3
	Colour   Vec3
}

// Transform places an object in the world. Mutate through the methods
// so the cached local matrix is rebuilt lazily. A non-nil Parent chains
// world matrices.
type Transform struct {
	Position Vec3
	Rotation Quaternion
	Scale    Vec3
	IsDirty  bool
	Local    Mat4
	Parent   *Transform
}
