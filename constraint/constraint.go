package constraint

import (
	"math"

	"github.com/akmonengine/tumble/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// RESTITUTION scales the elastic post-collision normal speeds
	RESTITUTION = 0.25
	// MIN_REMAINDER is the smallest time of impact used when shrinking the remaining displacement
	MIN_REMAINDER = 0.1
	// FRICTION is the velocity loss of a head-on contact, scaled down for grazing ones
	FRICTION = 0.05

	directionEpsilon = 1e-9
)

// ContactPlane is the plane two shapes touch on.
// Normal points from BodyB towards BodyA.
type ContactPlane struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// CollisionInfo is the result of a successful pair test
type CollisionInfo struct {
	BodyA   *actor.RigidBody
	BodyB   *actor.RigidBody
	Contact ContactPlane
	// Time of impact, as a fraction of the step displacement in [0, 1]
	Time float64
}

// Direction normalizes v, or returns fallback when v is too short to carry a direction.
// A zero fallback becomes +Y.
func Direction(v mgl64.Vec3, fallback mgl64.Vec3) mgl64.Vec3 {
	if length := v.Len(); length > directionEpsilon {
		return v.Mul(1.0 / length)
	}
	if length := fallback.Len(); length > directionEpsilon {
		return fallback.Mul(1.0 / length)
	}

	return mgl64.Vec3{0, 1, 0}
}

// ApplyFriction slows a dynamic body down in proportion to how squarely its
// velocity meets the contact normal.
func ApplyFriction(body *actor.RigidBody, normal mgl64.Vec3) {
	if body.IsStatic() {
		return
	}

	speed := body.Velocity.Len()
	if speed < directionEpsilon {
		return
	}

	alignment := math.Abs(body.Velocity.Dot(Direction(normal, mgl64.Vec3{}))) / speed
	factor := 1.0 - FRICTION*math.Min(alignment, 1.0)

	body.SetVelocity(body.Velocity.Mul(factor))
	body.Displacement = body.Displacement.Mul(factor)
}
