package narrowphase

import (
	"math"

	"github.com/akmonengine/tumble/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// segment is a finite line between A and B
type segment struct {
	A mgl64.Vec3
	B mgl64.Vec3
}

// closestPoint returns the point of the segment nearest to p
func (s segment) closestPoint(p mgl64.Vec3) mgl64.Vec3 {
	axis := s.B.Sub(s.A)
	lengthSq := axis.Dot(axis)
	if lengthSq < parallelEpsilon {
		return s.A
	}

	t := p.Sub(s.A).Dot(axis) / lengthSq
	t = math.Max(0, math.Min(1, t))

	return s.A.Add(axis.Mul(t))
}

// capsule is the set of points within Radius of a segment
type capsule struct {
	segment
	Radius float64
}

// sweep returns the first t in [0, 1] at which origin + t*motion reaches the capsule
// surface, with the outward surface normal at that point.
func (c capsule) sweep(origin, motion mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	best := math.Inf(1)
	var normal mgl64.Vec3

	// Cylinder body, limited to the segment extent
	axis := c.B.Sub(c.A)
	if length := axis.Len(); length > parallelEpsilon {
		unit := axis.Mul(1.0 / length)
		w := origin.Sub(c.A)
		motionPerp := motion.Sub(unit.Mul(motion.Dot(unit)))
		wPerp := w.Sub(unit.Mul(w.Dot(unit)))

		a := motionPerp.Dot(motionPerp)
		if a > parallelEpsilon {
			b := wPerp.Dot(motionPerp)
			cc := wPerp.Dot(wPerp) - c.Radius*c.Radius
			if discriminant := b*b - a*cc; discriminant >= 0 {
				t := (-b - math.Sqrt(discriminant)) / a
				if cc <= 0 && b < 0 {
					t = 0
				}
				along := w.Add(motion.Mul(t)).Dot(unit)
				if t >= 0 && t <= 1 && along >= 0 && along <= length {
					best = t
					hit := origin.Add(motion.Mul(t))
					normal = constraint.Direction(hit.Sub(c.closestPoint(hit)), motion.Mul(-1))
				}
			}
		}
	}

	// End caps
	for _, end := range [2]mgl64.Vec3{c.A, c.B} {
		if t, ok := sweepSphere(origin.Sub(end), motion, c.Radius); ok && t < best {
			best = t
			hit := origin.Add(motion.Mul(t))
			normal = constraint.Direction(hit.Sub(end), motion.Mul(-1))
		}
	}

	if best > 1 {
		return 0, mgl64.Vec3{}, false
	}

	return best, normal, true
}
