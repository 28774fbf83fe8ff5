package math

import (
	m "math"
	"testing"
)

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	if got, want := v1.Add(v2), NewVec3(5, 7, 9); got != want {
		t.Errorf("Add: expected %v, got %v", want, got)
	}
	if got, want := v2.Sub(v1), NewVec3(3, 3, 3); got != want {
		t.Errorf("Sub: expected %v, got %v", want, got)
	}
	if got, want := v1.MulScalar(2), NewVec3(2, 4, 6); got != want {
		t.Errorf("MulScalar: expected %v, got %v", want, got)
	}
	if got := v1.Dot(v2); got != 32 {
		t.Errorf("Dot: expected 32, got %v", got)
	}
	if got := NewVec3Right().Cross(NewVec3Up()); got != NewVec3Back() {
		t.Errorf("Cross: expected %v, got %v", NewVec3Back(), got)
	}
}

func TestVec3Normalized(t *testing.T) {
	v := NewVec3(3, 0, 0)
	if got := v.Normalized(); got != NewVec3(1, 0, 0) {
		t.Errorf("Normalized: expected (1,0,0), got %v", got)
	}
	if got := NewVec3Zero().Normalized(); got != NewVec3Zero() {
		t.Errorf("Normalized zero vector: expected zero, got %v", got)
	}
}

func TestMat4Identity(t *testing.T) {
	id := NewMat4Identity()
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			want := float32(0)
			if row == col {
				want = 1
			}
			if id.Data[row*4+col] != want {
				t.Errorf("Identity[%d][%d]: expected %v, got %v", row, col, want, id.Data[row*4+col])
			}
		}
	}

	mul := id.Mul(id)
	if mul != id {
		t.Error("Identity * Identity should be Identity")
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	mt := NewMat4Translation(translation)

	if mt.Data[12] != 1 || mt.Data[13] != 2 || mt.Data[14] != 3 {
		t.Errorf("Translation: expected (1,2,3), got (%v,%v,%v)", mt.Data[12], mt.Data[13], mt.Data[14])
	}

	if got := NewVec3Zero().Transform(mt); got != translation {
		t.Errorf("Transform origin: expected %v, got %v", translation, got)
	}
}

func TestMat4Perspective(t *testing.T) {
	mt := NewMat4Perspective(K_QUARTER_PI, 16.0/9.0, 0.1, 100.0)

	if mt.Data[0] == 0 {
		t.Error("Perspective: expected non-zero X scale")
	}
	if mt.Data[5] == 0 {
		t.Error("Perspective: expected non-zero Y scale")
	}
	if mt.Data[11] != -1 {
		t.Errorf("Perspective: expected -1 in the w column, got %v", mt.Data[11])
	}
}

func TestMat4LookAtMovesEyeToOrigin(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	mt := NewMat4LookAt(eye, NewVec3Zero(), NewVec3Up())

	got := mt.MulVec(eye.ToVec4(1)).ToVec3()
	if !got.Compare(NewVec3Zero(), 0.001) {
		t.Errorf("LookAt: expected eye to transform to origin, got %v", got)
	}
}

func TestQuaternionRotation(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3Up(), K_HALF_PI, true)

	got := q.RotateVector(NewVec3Right())
	want := NewVec3(0, 0, -1)
	if !got.Compare(want, 0.001) {
		t.Errorf("RotateVector: expected approximately %v, got %v", want, got)
	}
}

func TestTransformWorldChainsParent(t *testing.T) {
	parent := TransformFromPosition(NewVec3(10, 0, 0))
	child := TransformFromPosition(NewVec3(0, 5, 0))
	child.Parent = parent

	world := child.GetWorld()
	got := NewVec3Zero().Transform(world)
	want := NewVec3(10, 5, 0)
	if !got.Compare(want, 0.001) {
		t.Errorf("GetWorld: expected %v, got %v", want, got)
	}
}

func TestTransformLocalCaches(t *testing.T) {
	tr := TransformFromPosition(NewVec3(1, 2, 3))
	if !tr.IsDirty {
		t.Error("fresh transform with a set position should be dirty")
	}
	_ = tr.GetLocal()
	if tr.IsDirty {
		t.Error("GetLocal should clear the dirty flag")
	}
	tr.Translate(NewVec3(1, 0, 0))
	if !tr.IsDirty {
		t.Error("Translate should mark the transform dirty")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp above: expected 3, got %v", got)
	}
	if got := Clamp(-1.5, 0.0, 3.0); got != 0.0 {
		t.Errorf("Clamp below: expected 0, got %v", got)
	}
	if got := Clamp(2, 0, 3); got != 2 {
		t.Errorf("Clamp inside: expected 2, got %v", got)
	}
}

func TestDegRadRoundTrip(t *testing.T) {
	deg := float32(90)
	if got := RadToDeg(DegToRad(deg)); m.Abs(float64(got-deg)) > 0.001 {
		t.Errorf("DegToRad/RadToDeg: expected %v, got %v", deg, got)
	}
}
