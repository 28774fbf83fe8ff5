package scene

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/google/uuid"

	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/math"
)

// AllocatedBuffer pairs a GPU buffer with its backing memory. Ownership
// stays with the mesh until released through the renderer's deletion
// queue.
type AllocatedBuffer struct {
	Buffer vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

func (b AllocatedBuffer) IsValid() bool {
	return b.Buffer != vk.NullBuffer
}

// Mesh holds host-resident geometry plus the device-local buffers once
// the renderer has uploaded it.
type Mesh struct {
	Vertices []math.Vertex
	Indices  []uint32

	VertexBuffer AllocatedBuffer
	IndexBuffer  AllocatedBuffer
	Uploaded     bool
}

// HasData reports whether there is geometry worth drawing. Indices are
// optional; a vertex-only mesh draws non-indexed.
func (m *Mesh) HasData() bool {
	return m != nil && len(m.Vertices) > 0
}

// HasIndices reports whether the mesh draws through an index buffer.
func (m *Mesh) HasIndices() bool {
	return m != nil && len(m.Indices) > 0
}

// Material references the pipeline objects an entity draws with.
type Material struct {
	Name           string
	Pipeline       vk.Pipeline
	PipelineLayout vk.PipelineLayout
	Colour         math.Vec4
}

func (m *Material) HasPipeline() bool {
	return m != nil && m.Pipeline != vk.NullPipeline
}

// LinearKinematics integrates position each Simulate tick.
type LinearKinematics struct {
	Velocity     math.Vec3
	Acceleration math.Vec3
}

// AngularKinematics integrates rotation about an axis each Simulate tick.
type AngularKinematics struct {
	Axis           math.Vec3
	RadiansPerSec  float32
	AccelPerSecSqr float32
}

// Entity is a world object. Parent is resolved through the world so
// transforms compose hierarchically.
type Entity struct {
	ID        uuid.UUID
	Name      string
	Parent    uuid.UUID
	Transform *math.Transform
	Mesh      *Mesh
	Material  *Material
	Linear    *LinearKinematics
	Angular   *AngularKinematics
}

// World owns every entity and the material registry. It is driven from
// the single pipeline thread; no internal locking.
type World struct {
	entities  map[uuid.UUID]*Entity
	drawOrder []uuid.UUID
	materials map[string]*Material
}

func NewWorld() *World {
	return &World{
		entities:  make(map[uuid.UUID]*Entity),
		materials: make(map[string]*Material),
	}
}

// CreateEntity adds a named entity with an identity transform. Entities
// draw in creation order.
func (w *World) CreateEntity(name string) *Entity {
	e := &Entity{
		ID:        uuid.New(),
		Name:      name,
		Transform: math.TransformCreate(),
	}
	w.entities[e.ID] = e
	w.drawOrder = append(w.drawOrder, e.ID)
	return e
}

// Entity looks up an entity by ID.
func (w *World) Entity(id uuid.UUID) (*Entity, error) {
	e, ok := w.entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", id, core.ErrNotFound)
	}
	return e, nil
}

// DestroyEntity removes an entity and detaches any children parented to
// it. GPU buffers referenced by its mesh are the renderer's to release.
func (w *World) DestroyEntity(id uuid.UUID) error {
	if _, ok := w.entities[id]; !ok {
		return fmt.Errorf("entity %s: %w", id, core.ErrNotFound)
	}
	delete(w.entities, id)
	for i, oid := range w.drawOrder {
		if oid == id {
			w.drawOrder = append(w.drawOrder[:i], w.drawOrder[i+1:]...)
			break
		}
	}
	for _, e := range w.entities {
		if e.Parent == id {
			e.Parent = uuid.Nil
			e.Transform.Parent = nil
		}
	}
	return nil
}

// SetParent links child under parent so world transforms compose. It
// rejects unknown IDs, self-parenting and cycles.
func (w *World) SetParent(child, parent uuid.UUID) error {
	c, err := w.Entity(child)
	if err != nil {
		return err
	}
	if parent == uuid.Nil {
		c.Parent = uuid.Nil
		c.Transform.Parent = nil
		return nil
	}
	p, err := w.Entity(parent)
	if err != nil {
		return err
	}
	for cursor := parent; cursor != uuid.Nil; {
		if cursor == child {
			return fmt.Errorf("parenting %s under %s would create a cycle", child, parent)
		}
		next, ok := w.entities[cursor]
		if !ok {
			break
		}
		cursor = next.Parent
	}
	c.Parent = parent
	c.Transform.Parent = p.Transform
	return nil
}

// RegisterMaterial stores a material under its name for reuse.
func (w *World) RegisterMaterial(m *Material) {
	w.materials[m.Name] = m
}

// Material looks up a registered material by name.
func (w *World) Material(name string) (*Material, error) {
	m, ok := w.materials[name]
	if !ok {
		return nil, fmt.Errorf("material %q: %w", name, core.ErrNotFound)
	}
	return m, nil
}

// Drawables returns entities with both a mesh and a material, in draw
// order.
func (w *World) Drawables() []*Entity {
	out := make([]*Entity, 0, len(w.drawOrder))
	for _, id := range w.drawOrder {
		e := w.entities[id]
		if e.Mesh != nil && e.Material != nil {
			out = append(out, e)
		}
	}
	return out
}

// Entities returns every entity in creation order.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.drawOrder))
	for _, id := range w.drawOrder {
		out = append(out, w.entities[id])
	}
	return out
}

// Simulate advances kinematics for one tick of deltaTime seconds.
func (w *World) Simulate(deltaTime float64) {
	dt := float32(deltaTime)
	for _, id := range w.drawOrder {
		e := w.entities[id]
		if e.Linear != nil {
			e.Linear.Velocity = e.Linear.Velocity.Add(e.Linear.Acceleration.MulScalar(dt))
			e.Transform.Translate(e.Linear.Velocity.MulScalar(dt))
		}
		if e.Angular != nil {
			e.Angular.RadiansPerSec += e.Angular.AccelPerSecSqr * dt
			if e.Angular.RadiansPerSec != 0 {
				spin := math.NewQuatFromAxisAngle(e.Angular.Axis, e.Angular.RadiansPerSec*dt, true)
				e.Transform.Rotate(spin)
			}
		}
	}
}
