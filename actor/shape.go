package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypePlane
	ShapeTypeBox
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypePlane:
		return "plane"
	case ShapeTypeBox:
		return "box"
	default:
		return "unknown"
	}
}

// Shape is the closed set of collision shapes: *Sphere, *Plane and *Box.
// The unexported marker keeps other packages from adding variants, so a
// type switch over the three concrete types is exhaustive.
type Shape interface {
	Type() ShapeType
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform) AABB
	// ApplyRotation maps a local offset into the world orientation of the shape
	ApplyRotation(transform Transform, offset mgl64.Vec3) mgl64.Vec3
	// BoundingRadius is the radius of a sphere centred on the transform
	// enclosing the shape. Infinite for planes.
	BoundingRadius() float64

	shape()
}

// Sphere represents a spherical collision shape centred on the body position
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }

func (s *Sphere) shape() {}

// ComputeAABB calculates the axis-aligned bounding box for the sphere
func (s *Sphere) ComputeAABB(transform Transform) AABB {
	// Sphere AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	return AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

// ApplyRotation is the identity: a sphere has no orientation
func (s *Sphere) ApplyRotation(transform Transform, offset mgl64.Vec3) mgl64.Vec3 {
	return offset
}

func (s *Sphere) BoundingRadius() float64 {
	return s.Radius
}

// Plane represents an infinite plane passing through the body position.
// Normal must be normalized, use NewPlane to build one from any direction.
type Plane struct {
	Normal mgl64.Vec3
}

// NewPlane creates a plane with a normalized normal.
// A zero-length normal falls back to +Y.
func NewPlane(normal mgl64.Vec3) *Plane {
	if normal.Len() < 1e-12 {
		return &Plane{Normal: mgl64.Vec3{0, 1, 0}}
	}

	return &Plane{Normal: normal.Normalize()}
}

func (p *Plane) Type() ShapeType { return ShapeTypePlane }

func (p *Plane) shape() {}

// SignedDistance returns the distance from point to the plane, positive on the normal side
func (p *Plane) SignedDistance(transform Transform, point mgl64.Vec3) float64 {
	return point.Sub(transform.Position).Dot(p.Normal)
}

// ComputeAABB is unbounded: a plane extends infinitely along its surface
func (p *Plane) ComputeAABB(transform Transform) AABB {
	return Unbounded()
}

// ApplyRotation is the identity, the plane orientation is carried by its normal
func (p *Plane) ApplyRotation(transform Transform, offset mgl64.Vec3) mgl64.Vec3 {
	return offset
}

func (p *Plane) BoundingRadius() float64 {
	return math.Inf(1)
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
// and oriented by the body transform rotation.
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

func (b *Box) shape() {}

// Axes returns the three orthonormal box axes in world space
func (b *Box) Axes(transform Transform) [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{
		transform.Rotation.Rotate(mgl64.Vec3{1, 0, 0}),
		transform.Rotation.Rotate(mgl64.Vec3{0, 1, 0}),
		transform.Rotation.Rotate(mgl64.Vec3{0, 0, 1}),
	}
}

// ToLocal projects a world-space vector onto the box axes
func (b *Box) ToLocal(transform Transform, v mgl64.Vec3) mgl64.Vec3 {
	return transform.InverseRotation.Rotate(v)
}

// ToWorld maps a vector expressed on the box axes back to world space
func (b *Box) ToWorld(transform Transform, v mgl64.Vec3) mgl64.Vec3 {
	return transform.Rotation.Rotate(v)
}

func (b *Box) ComputeAABB(transform Transform) AABB {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()
	corners := [8]mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}

	worldCorner := transform.Rotation.Rotate(corners[0]).Add(transform.Position)
	bounds := AABB{Min: worldCorner, Max: worldCorner}

	for i := 1; i < 8; i++ {
		worldCorner = transform.Rotation.Rotate(corners[i]).Add(transform.Position)
		bounds = bounds.Union(AABB{Min: worldCorner, Max: worldCorner})
	}

	return bounds
}

func (b *Box) ApplyRotation(transform Transform, offset mgl64.Vec3) mgl64.Vec3 {
	return transform.Rotation.Rotate(offset)
}

func (b *Box) BoundingRadius() float64 {
	return b.HalfExtents.Len()
}
