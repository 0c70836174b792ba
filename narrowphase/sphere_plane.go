package narrowphase

import (
	"math"

	"github.com/akmonengine/tumble/actor"
	"github.com/akmonengine/tumble/constraint"
)

// spherePlane sweeps the sphere centre against the plane offset by the radius, on
// whichever side of the plane the sphere currently is.
func spherePlane(s *actor.RigidBody, sphere *actor.Sphere, p *actor.RigidBody, plane *actor.Plane) (constraint.CollisionInfo, bool) {
	distance := plane.SignedDistance(p.Transform, s.Position())
	motion := s.Displacement.Sub(p.Displacement)

	side := 1.0
	if distance < 0 {
		side = -1.0
	}
	normal := plane.Normal.Mul(side)

	// Separating or moving parallel to the plane
	approach := -motion.Dot(normal)
	if approach <= 0 {
		return constraint.CollisionInfo{}, false
	}

	gap := math.Abs(distance) - sphere.Radius
	if -gap > CONTACT_SLOP {
		separate(s, p, normal, -gap, SURFACE_NUDGE_FRACTION)
		point := s.Position().Sub(normal.Mul(sphere.Radius))

		return resolveContact(s, p, 0, normal, point)
	}

	t := math.Max(gap, 0) / approach
	if t > 1 {
		return constraint.CollisionInfo{}, false
	}

	advance(s, p, t)
	point := s.Position().Sub(normal.Mul(sphere.Radius))

	return resolveContact(s, p, t, normal, point)
}
