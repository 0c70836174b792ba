package narrowphase

import (
	"github.com/akmonengine/tumble/actor"
	"github.com/akmonengine/tumble/constraint"
)

// sphereSphere sweeps sphere a against sphere b inflated by a's radius, in b's frame.
// Spheres that already overlap are nudged apart and do not collide this step.
func sphereSphere(a *actor.RigidBody, sphereA *actor.Sphere, b *actor.RigidBody, sphereB *actor.Sphere) (constraint.CollisionInfo, bool) {
	offset := a.Position().Sub(b.Position())
	motion := a.Displacement.Sub(b.Displacement)
	radius := sphereA.Radius + sphereB.Radius

	distance := offset.Len()
	if depth := radius - distance; depth > CONTACT_SLOP {
		axis := constraint.Direction(offset, motion.Mul(-1))
		separate(a, b, axis, depth, SPHERE_NUDGE_FRACTION)
		return constraint.CollisionInfo{}, false
	}

	t, hit := sweepSphere(offset, motion, radius)
	if !hit {
		return constraint.CollisionInfo{}, false
	}

	advance(a, b, t)
	normal := constraint.Direction(a.Position().Sub(b.Position()), motion.Mul(-1))
	point := b.Position().Add(normal.Mul(sphereB.Radius))

	return resolveContact(a, b, t, normal, point)
}
