// Package narrowphase implements the swept pairwise collision tests.
//
// Collide dispatches on the concrete shapes of both bodies. Each real handler
// sweeps the pair over the step displacement, and on contact it has already
// advanced both bodies to the time of impact and run the restitution solver
// before returning. "No collision" is a normal outcome, not an error.
//
// Only spheres interact with other shapes: box-box, box-plane and plane-plane
// pairs never collide.
package narrowphase

import (
	"math"

	"github.com/akmonengine/tumble/actor"
	"github.com/akmonengine/tumble/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// CONTACT_SLOP is the overlap tolerated before a pair counts as interpenetrating
	CONTACT_SLOP = 1e-7

	// SPHERE_NUDGE_FRACTION of the penetration is removed from overlapping spheres
	SPHERE_NUDGE_FRACTION = 0.01
	// SURFACE_NUDGE_FRACTION of the penetration is removed from a sphere sunk into a plane or a box
	SURFACE_NUDGE_FRACTION = 0.2
	// MAX_NUDGE caps a single overlap correction
	MAX_NUDGE = 0.1

	parallelEpsilon = 1e-12
)

// PairKind names a shape pair, smaller shape type first
type PairKind string

const (
	PairSphereSphere PairKind = "sphere_sphere"
	PairSpherePlane  PairKind = "sphere_plane"
	PairSphereBox    PairKind = "sphere_box"
	PairPlanePlane   PairKind = "plane_plane"
	PairPlaneBox     PairKind = "plane_box"
	PairBoxBox       PairKind = "box_box"
)

// PairKindOf returns the pair kind regardless of argument order
func PairKindOf(a, b actor.ShapeType) PairKind {
	if b < a {
		a, b = b, a
	}

	return PairKind(a.String() + "_" + b.String())
}

// Collide runs the swept test matching the shapes of a and b.
// Reversed pairs are swapped so that the sphere is always BodyA of the returned info.
// Two static bodies never collide.
func Collide(a, b *actor.RigidBody) (constraint.CollisionInfo, bool) {
	if a.IsStatic() && b.IsStatic() {
		return constraint.CollisionInfo{}, false
	}

	switch shapeA := a.Shape.(type) {
	case *actor.Sphere:
		switch shapeB := b.Shape.(type) {
		case *actor.Sphere:
			return sphereSphere(a, shapeA, b, shapeB)
		case *actor.Plane:
			return spherePlane(a, shapeA, b, shapeB)
		case *actor.Box:
			return sphereBox(a, shapeA, b, shapeB)
		}
	case *actor.Plane:
		switch shapeB := b.Shape.(type) {
		case *actor.Sphere:
			return spherePlane(b, shapeB, a, shapeA)
		case *actor.Plane:
			return planePlane(a, shapeA, b, shapeB)
		case *actor.Box:
			return boxPlane(b, shapeB, a, shapeA)
		}
	case *actor.Box:
		switch shapeB := b.Shape.(type) {
		case *actor.Sphere:
			return sphereBox(b, shapeB, a, shapeA)
		case *actor.Plane:
			return boxPlane(a, shapeA, b, shapeB)
		case *actor.Box:
			return boxBox(a, shapeA, b, shapeB)
		}
	}

	return constraint.CollisionInfo{}, false
}

// advance moves both bodies to the time of impact t
func advance(a, b *actor.RigidBody, t float64) {
	a.Move(a.Displacement.Mul(t))
	b.Move(b.Displacement.Mul(t))
}

// resolveContact runs the restitution solver on a contact reached at time t
func resolveContact(a, b *actor.RigidBody, t float64, normal, point mgl64.Vec3) (constraint.CollisionInfo, bool) {
	info := constraint.CollisionInfo{
		BodyA:   a,
		BodyB:   b,
		Contact: constraint.ContactPlane{Point: point, Normal: normal},
		Time:    t,
	}
	constraint.Resolve(info)

	return info, true
}

// separate pushes a along axis and b against it, shared by inverse mass.
// The push is a capped fraction of the penetration depth.
func separate(a, b *actor.RigidBody, axis mgl64.Vec3, depth, fraction float64) {
	push := math.Min(depth*fraction, MAX_NUDGE)
	invMassA := a.InverseMass()
	invMassB := b.InverseMass()
	total := invMassA + invMassB
	if total <= 0 || push <= 0 {
		return
	}

	a.Move(axis.Mul(push * invMassA / total))
	b.Move(axis.Mul(-push * invMassB / total))
}

// sweepSphere returns the first t in [0, 1] at which a point starting at offset
// and moving by motion reaches distance radius from the origin.
// A point already within radius and moving inwards hits at t = 0.
func sweepSphere(offset, motion mgl64.Vec3, radius float64) (float64, bool) {
	b := offset.Dot(motion)
	c := offset.Dot(offset) - radius*radius

	if c <= 0 {
		return 0, b < 0
	}
	if b >= 0 {
		return 0, false // moving away
	}

	a := motion.Dot(motion)
	if a < parallelEpsilon {
		return 0, false
	}

	discriminant := b*b - a*c
	if discriminant < 0 {
		return 0, false
	}

	t := (-b - math.Sqrt(discriminant)) / a
	if t > 1 {
		return 0, false
	}

	return math.Max(t, 0), true
}
