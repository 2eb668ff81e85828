package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// Compose returns the world transform of a child whose local transform is local.
// Components are propagated directly to preserve scale signs.
func (t Transform) Compose(local Transform) Transform {
	// WorldPos = ParentPos + ParentRot * (ParentScale * LocalPos)
	scaledLocalPos := mgl32.Vec3{
		local.Position.X() * t.Scale.X(),
		local.Position.Y() * t.Scale.Y(),
		local.Position.Z() * t.Scale.Z(),
	}
	return Transform{
		Position: t.Position.Add(t.Rotation.Rotate(scaledLocalPos)),
		Rotation: t.Rotation.Mul(local.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			t.Scale.X() * local.Scale.X(),
			t.Scale.Y() * local.Scale.Y(),
			t.Scale.Z() * local.Scale.Z(),
		},
	}
}

// EulerXYZ builds a rotation from intrinsic X, then Y, then Z angles in radians.
func EulerXYZ(x, y, z float32) mgl32.Quat {
	return mgl32.AnglesToQuat(x, y, z, mgl32.XYZ)
}

// LookRotation orients local +Z along forward while keeping local +Y as close to up as possible.
func LookRotation(forward, up mgl32.Vec3) mgl32.Quat {
	if forward.Len() < 1e-6 {
		return mgl32.QuatIdent()
	}
	f := forward.Normalize()
	r := up.Cross(f)
	if r.Len() < 1e-6 {
		// forward is parallel to up; pick any perpendicular axis
		r = mgl32.Vec3{1, 0, 0}.Cross(f)
		if r.Len() < 1e-6 {
			r = mgl32.Vec3{0, 0, 1}.Cross(f)
		}
	}
	r = r.Normalize()
	u := f.Cross(r)

	basis := mgl32.Mat4{
		r.X(), r.Y(), r.Z(), 0,
		u.X(), u.Y(), u.Z(), 0,
		f.X(), f.Y(), f.Z(), 0,
		0, 0, 0, 1,
	}
	return mgl32.Mat4ToQuat(basis).Normalize()
}
