package scene

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/math"
)

func TestEntityLookup(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("player")

	got, err := w.Entity(e.ID)
	if err != nil {
		t.Fatalf("Entity lookup failed: %v", err)
	}
	if got.Name != "player" {
		t.Errorf("expected name player, got %q", got.Name)
	}

	if _, err := w.Entity(uuid.New()); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown entity, got %v", err)
	}
}

func TestSetParentComposesTransforms(t *testing.T) {
	w := NewWorld()
	parent := w.CreateEntity("parent")
	child := w.CreateEntity("child")

	parent.Transform.SetPosition(math.NewVec3(10, 0, 0))
	child.Transform.SetPosition(math.NewVec3(0, 5, 0))

	if err := w.SetParent(child.ID, parent.ID); err != nil {
		t.Fatalf("SetParent failed: %v", err)
	}

	world := child.Transform.GetWorld()
	got := math.NewVec3Zero().Transform(world)
	want := math.NewVec3(10, 5, 0)
	if !got.Compare(want, 0.001) {
		t.Errorf("child world position: expected %v, got %v", want, got)
	}
}

func TestSetParentRejectsCycles(t *testing.T) {
	w := NewWorld()
	a := w.CreateEntity("a")
	b := w.CreateEntity("b")

	if err := w.SetParent(b.ID, a.ID); err != nil {
		t.Fatalf("SetParent failed: %v", err)
	}
	if err := w.SetParent(a.ID, b.ID); err == nil {
		t.Error("expected cycle rejection, got nil")
	}
	if err := w.SetParent(a.ID, a.ID); err == nil {
		t.Error("expected self-parent rejection, got nil")
	}
}

func TestDestroyEntityDetachesChildren(t *testing.T) {
	w := NewWorld()
	parent := w.CreateEntity("parent")
	child := w.CreateEntity("child")
	w.SetParent(child.ID, parent.ID)

	if err := w.DestroyEntity(parent.ID); err != nil {
		t.Fatalf("DestroyEntity failed: %v", err)
	}
	if child.Parent != uuid.Nil {
		t.Error("child should be detached after parent destruction")
	}
	if child.Transform.Parent != nil {
		t.Error("child transform should no longer chain to the destroyed parent")
	}
	if _, err := w.Entity(parent.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("destroyed entity should not resolve, got %v", err)
	}
}

func TestDrawablesFilterAndOrder(t *testing.T) {
	w := NewWorld()
	first := w.CreateEntity("first")
	w.CreateEntity("bare")
	second := w.CreateEntity("second")

	mesh := &Mesh{
		Vertices: []math.Vertex{{Position: math.NewVec3(0, 0, 0)}},
		Indices:  []uint32{0},
	}
	mat := &Material{Name: "flat"}
	first.Mesh, first.Material = mesh, mat
	second.Mesh, second.Material = mesh, mat

	drawables := w.Drawables()
	if len(drawables) != 2 {
		t.Fatalf("expected 2 drawables, got %d", len(drawables))
	}
	if drawables[0].ID != first.ID || drawables[1].ID != second.ID {
		t.Error("drawables should keep creation order")
	}
}

func TestMeshDataWithoutIndices(t *testing.T) {
	mesh := &Mesh{
		Vertices: []math.Vertex{
			{Position: math.NewVec3(0, 1, 0)},
			{Position: math.NewVec3(-1, -1, 0)},
			{Position: math.NewVec3(1, -1, 0)},
		},
	}

	if !mesh.HasData() {
		t.Error("vertex-only mesh should report HasData")
	}
	if mesh.HasIndices() {
		t.Error("mesh without indices should not report HasIndices")
	}

	mesh.Indices = []uint32{0, 1, 2}
	if !mesh.HasIndices() {
		t.Error("indexed mesh should report HasIndices")
	}

	var empty Mesh
	if empty.HasData() {
		t.Error("mesh without vertices should not report HasData")
	}
	var nilMesh *Mesh
	if nilMesh.HasData() || nilMesh.HasIndices() {
		t.Error("nil mesh should report no data")
	}
}

func TestSimulateIntegratesKinematics(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("mover")
	e.Linear = &LinearKinematics{Velocity: math.NewVec3(2, 0, 0)}

	w.Simulate(0.5)

	got := e.Transform.Position
	want := math.NewVec3(1, 0, 0)
	if !got.Compare(want, 0.001) {
		t.Errorf("position after simulate: expected %v, got %v", want, got)
	}
}

func TestSimulateAppliesAcceleration(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("faller")
	e.Linear = &LinearKinematics{Acceleration: math.NewVec3(0, -10, 0)}

	w.Simulate(1.0)

	if e.Linear.Velocity.Y >= 0 {
		t.Errorf("velocity should have accumulated acceleration, got %v", e.Linear.Velocity)
	}
}

func TestMaterialRegistry(t *testing.T) {
	w := NewWorld()
	w.RegisterMaterial(&Material{Name: "flat"})

	if _, err := w.Material("flat"); err != nil {
		t.Errorf("registered material should resolve: %v", err)
	}
	if _, err := w.Material("missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMainCameraContract(t *testing.T) {
	SetMainCamera(nil)
	if _, err := MainCamera(); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound without a camera, got %v", err)
	}

	cam := NewCamera(60, 0.1, 200)
	SetMainCamera(cam)
	got, err := MainCamera()
	if err != nil || got != cam {
		t.Errorf("expected installed camera back, got %v, %v", got, err)
	}
}

func TestOrthographicProjectionFollowsAspect(t *testing.T) {
	cam := NewOrthographicCamera(2, 0.1, 100)
	cam.SetExtent(800, 400)

	proj := cam.ProjectionMatrix()
	// Half height 2 at aspect 2 spans [-4,4] x [-2,2], so the scale
	// terms are 1/4 and 1/2.
	if diff := proj.Data[0] - 0.25; diff > 0.001 || diff < -0.001 {
		t.Errorf("x scale: expected 0.25, got %f", proj.Data[0])
	}
	if diff := proj.Data[5] - 0.5; diff > 0.001 || diff < -0.001 {
		t.Errorf("y scale: expected 0.5, got %f", proj.Data[5])
	}
	if proj.Data[11] != 0 {
		t.Error("parallel projection must not carry a perspective divide term")
	}
}

func TestCameraExtentRepublish(t *testing.T) {
	cam := NewCamera(60, 0.1, 200)
	cam.SetExtent(1280, 720)

	w, h := cam.Extent()
	if w != 1280 || h != 720 {
		t.Errorf("extent: expected 1280x720, got %dx%d", w, h)
	}

	// Zero-area publishes are dropped.
	cam.SetExtent(0, 720)
	w, h = cam.Extent()
	if w != 1280 || h != 720 {
		t.Errorf("zero-area extent should be ignored, got %dx%d", w, h)
	}

	proj := cam.ProjectionMatrix()
	if proj.Data[0] == 0 || proj.Data[5] == 0 {
		t.Error("projection should have non-zero scale terms")
	}
}
