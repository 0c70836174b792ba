package narrowphase

import (
	"math"

	"github.com/akmonengine/tumble/actor"
	"github.com/akmonengine/tumble/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// boxRegion is where the time of impact falls relative to the box features
type boxRegion int

const (
	regionFace boxRegion = iota
	regionEdge
	regionCorner
)

// sphereBox sweeps a sphere against an oriented box.
//
// The test runs in the box frame: a bounding sphere rejection first, then the
// sphere centre is swept through the three slabs of the box inflated by the radius.
// When the entry point lies on a face the slab normal is used directly; on an edge
// or a corner the centre is swept again against capsules around the nearest edges,
// which rounds the inflated box the way a real sphere would touch it.
func sphereBox(s *actor.RigidBody, sphere *actor.Sphere, b *actor.RigidBody, box *actor.Box) (constraint.CollisionInfo, bool) {
	offset := s.Position().Sub(b.Position())
	motion := s.Displacement.Sub(b.Displacement)
	radius := sphere.Radius

	bound := radius + box.BoundingRadius()
	if offset.Dot(offset) > bound*bound {
		if _, hit := sweepSphere(offset, motion, bound); !hit {
			return constraint.CollisionInfo{}, false
		}
	}

	origin := box.ToLocal(b.Transform, offset)
	localMotion := box.ToLocal(b.Transform, motion)
	extents := box.HalfExtents

	if info, overlapping, ok := sphereBoxOverlap(s, b, box, origin, localMotion, radius); overlapping {
		return info, ok
	}

	tmin, tmax := math.Inf(-1), math.Inf(1)
	entryAxis := -1

	for i := range 3 {
		slab := extents[i] + radius
		if math.Abs(localMotion[i]) < parallelEpsilon {
			if math.Abs(origin[i]) > slab {
				return constraint.CollisionInfo{}, false
			}
			continue
		}

		t1 := (-slab - origin[i]) / localMotion[i]
		t2 := (slab - origin[i]) / localMotion[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		if t1 > tmin {
			tmin = t1
			entryAxis = i
		}
		tmax = math.Min(tmax, t2)

		if tmin > tmax {
			return constraint.CollisionInfo{}, false
		}
	}

	if tmin > 1 || tmax < 0 {
		return constraint.CollisionInfo{}, false
	}

	entryTime := math.Max(tmin, 0)
	entry := origin.Add(localMotion.Mul(entryTime))
	if tmin < 0 {
		entryAxis = -1
	}

	var t float64
	var localNormal mgl64.Vec3

	switch region, axis, edges := classifyEntry(entry, extents, entryAxis); region {
	case regionFace:
		t = entryTime
		localNormal[axis] = math.Copysign(1, entry[axis])
		if localMotion.Dot(localNormal) >= 0 {
			return constraint.CollisionInfo{}, false
		}
	default:
		best := math.Inf(1)
		for _, edge := range edges {
			hitTime, normal, hit := capsule{segment: edge, Radius: radius}.sweep(origin, localMotion)
			if hit && hitTime < best {
				best = hitTime
				localNormal = normal
			}
		}
		if best > 1 {
			return constraint.CollisionInfo{}, false
		}
		t = best
	}

	advance(s, b, t)
	normal := box.ToWorld(b.Transform, localNormal)
	point := s.Position().Sub(normal.Mul(radius))

	return resolveContact(s, b, t, normal, point)
}

// sphereBoxOverlap handles a sphere already sunk into the box. overlapping is false when
// the sphere is clear of the box and the swept test must run.
func sphereBoxOverlap(s, b *actor.RigidBody, box *actor.Box, origin, localMotion mgl64.Vec3, radius float64) (constraint.CollisionInfo, bool, bool) {
	extents := box.HalfExtents

	var closest mgl64.Vec3
	inside := true
	for i := range 3 {
		closest[i] = math.Max(-extents[i], math.Min(extents[i], origin[i]))
		if closest[i] != origin[i] {
			inside = false
		}
	}

	var localNormal mgl64.Vec3
	var depth float64

	if inside {
		// Centre inside the box: leave through the nearest face
		depth = math.Inf(1)
		for i := range 3 {
			if faceDepth := extents[i] - math.Abs(origin[i]); faceDepth < depth {
				depth = faceDepth
				localNormal = mgl64.Vec3{}
				localNormal[i] = math.Copysign(1, origin[i])
			}
		}
		depth += radius
	} else {
		away := origin.Sub(closest)
		depth = radius - away.Len()
		if depth <= CONTACT_SLOP {
			return constraint.CollisionInfo{}, false, false
		}
		localNormal = constraint.Direction(away, localMotion.Mul(-1))
	}

	if localMotion.Dot(localNormal) >= 0 {
		return constraint.CollisionInfo{}, true, false
	}

	normal := box.ToWorld(b.Transform, localNormal)
	separate(s, b, normal, depth, SURFACE_NUDGE_FRACTION)
	point := s.Position().Sub(normal.Mul(radius))

	info, ok := resolveContact(s, b, 0, normal, point)

	return info, true, ok
}

// classifyEntry tells whether the entry point of the inflated box lies on a face,
// an edge or a corner region, from the number of axes it lies beyond the box on.
// It returns the face axis in the first case and the box edges to test in the others.
// A sweep starting inside the inflated box has no meaningful entry axis, so only
// the position of the point decides.
func classifyEntry(entry, extents mgl64.Vec3, entryAxis int) (boxRegion, int, []segment) {
	var beyond []int
	for i := range 3 {
		if i == entryAxis || math.Abs(entry[i]) > extents[i] {
			beyond = append(beyond, i)
		}
	}

	// Box corner on the entry side
	var corner mgl64.Vec3
	for i := range 3 {
		corner[i] = math.Copysign(extents[i], entry[i])
	}

	edgeAlong := func(axis int) segment {
		a, b := corner, corner
		a[axis] = -extents[axis]
		b[axis] = extents[axis]
		return segment{A: a, B: b}
	}

	switch len(beyond) {
	case 0:
		// Touching from inside the box, leave through the nearest face
		axis := 0
		for i := 1; i < 3; i++ {
			if extents[i]-math.Abs(entry[i]) < extents[axis]-math.Abs(entry[axis]) {
				axis = i
			}
		}
		return regionFace, axis, nil
	case 1:
		return regionFace, beyond[0], nil
	case 2:
		along := 3 - beyond[0] - beyond[1]
		return regionEdge, along, []segment{edgeAlong(along)}
	default:
		return regionCorner, -1, []segment{edgeAlong(0), edgeAlong(1), edgeAlong(2)}
	}
}
