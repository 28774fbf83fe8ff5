package math

func TransformCreate() *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
	t.Local = NewMat4Identity()
	return t
}

func TransformFromPosition(position Vec3) *Transform {
	t := TransformCreate()
	t.SetPosition(position)
	return t
}

func TransformFromPositionRotation(position Vec3, rotation Quaternion) *Transform {
	t := TransformCreate()
	t.SetPositionRotation(position, rotation)
	return t
}

func (t *Transform) SetPosition(position Vec3) {
	t.Position = position
	t.IsDirty = true
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
	t.IsDirty = true
}

func (t *Transform) SetRotation(rotation Quaternion) {
	t.Rotation = rotation
	t.IsDirty = true
}

func (t *Transform) Rotate(rotation Quaternion) {
	t.Rotation = t.Rotation.Mul(rotation)
	t.IsDirty = true
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
	t.IsDirty = true
}

func (t *Transform) SetPositionRotation(position Vec3, rotation Quaternion) {
	t.Position = position
	t.Rotation = rotation
	t.IsDirty = true
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
	t.IsDirty = true
}

// GetLocal rebuilds the cached scale*rotation*translation matrix when a
// setter has run since the last call.
func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.IsDirty {
		r := t.Rotation.ToMat4()
		tr := r.Mul(NewMat4Translation(t.Position))
		s := NewMat4Scale(t.Scale)
		t.Local = s.Mul(tr)
		t.IsDirty = false
	}
	return t.Local
}

// GetWorld composes the local matrix with every ancestor's. A cycle in
// the parent chain is the caller's bug; the scene layer rejects those
// before they reach here.
func (t *Transform) GetWorld() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	l := t.GetLocal()
	if t.Parent != nil {
		return l.Mul(t.Parent.GetWorld())
	}
	return l
}
