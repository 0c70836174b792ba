package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform places a shape in world space
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return TransformAt(mgl64.Vec3{}, mgl64.QuatIdent())
}

// TransformAt creates a transform at position with the given orientation.
// A zero quaternion is treated as identity.
func TransformAt(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	if rotation.Len() == 0 {
		rotation = mgl64.QuatIdent()
	}
	rotation = rotation.Normalize()

	return Transform{
		Position:        position,
		Rotation:        rotation,
		InverseRotation: rotation.Inverse(),
	}
}
