package narrowphase

import (
	"github.com/akmonengine/tumble/actor"
	"github.com/akmonengine/tumble/constraint"
)

// Pairs without a sphere never collide, whatever their overlap: two boxes pass through
// each other and a box never rests on a plane. Only spheres need box and plane contacts
// in the simulated scenes, so these stay explicit "no collision" results.

func boxBox(a *actor.RigidBody, boxA *actor.Box, b *actor.RigidBody, boxB *actor.Box) (constraint.CollisionInfo, bool) {
	return constraint.CollisionInfo{}, false
}

func boxPlane(a *actor.RigidBody, box *actor.Box, b *actor.RigidBody, plane *actor.Plane) (constraint.CollisionInfo, bool) {
	return constraint.CollisionInfo{}, false
}

func planePlane(a *actor.RigidBody, planeA *actor.Plane, b *actor.RigidBody, planeB *actor.Plane) (constraint.CollisionInfo, bool) {
	return constraint.CollisionInfo{}, false
}
