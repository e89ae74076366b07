package spatial

import (
	"math"

	"github.com/golang/geo/r3"
)

// AABB is an axis-aligned bounding box, the conservative overlap volume used
// by the broadphase.
type AABB struct {
	Min r3.Vector
	Max r3.Vector
}

// NewAABB creates an AABB from its extreme corners.
func NewAABB(min, max r3.Vector) AABB {
	return AABB{Min: min, Max: max}
}

// NewInfiniteAABB returns an AABB spanning all of space. Unbounded geometries
// such as halfspaces report this as their bound.
func NewInfiniteAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: r3.Vector{X: -inf, Y: -inf, Z: -inf},
		Max: r3.Vector{X: inf, Y: inf, Z: inf},
	}
}

// AABBFromPoints returns the smallest AABB containing all given points.
func AABBFromPoints(pts []r3.Vector) AABB {
	inf := math.Inf(1)
	box := AABB{
		Min: r3.Vector{X: inf, Y: inf, Z: inf},
		Max: r3.Vector{X: -inf, Y: -inf, Z: -inf},
	}
	for _, pt := range pts {
		box.Min.X = math.Min(box.Min.X, pt.X)
		box.Min.Y = math.Min(box.Min.Y, pt.Y)
		box.Min.Z = math.Min(box.Min.Z, pt.Z)
		box.Max.X = math.Max(box.Max.X, pt.X)
		box.Max.Y = math.Max(box.Max.Y, pt.Y)
		box.Max.Z = math.Max(box.Max.Z, pt.Z)
	}
	return box
}

// Union returns the smallest AABB containing both boxes.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: r3.Vector{
			X: math.Min(a.Min.X, b.Min.X),
			Y: math.Min(a.Min.Y, b.Min.Y),
			Z: math.Min(a.Min.Z, b.Min.Z),
		},
		Max: r3.Vector{
			X: math.Max(a.Max.X, b.Max.X),
			Y: math.Max(a.Max.Y, b.Max.Y),
			Z: math.Max(a.Max.Z, b.Max.Z),
		},
	}
}

// Overlaps returns whether the two boxes share any point. Touching faces count
// as overlap.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Contains returns whether b lies entirely inside a.
func (a AABB) Contains(b AABB) bool {
	return a.Min.X <= b.Min.X && a.Max.X >= b.Max.X &&
		a.Min.Y <= b.Min.Y && a.Max.Y >= b.Max.Y &&
		a.Min.Z <= b.Min.Z && a.Max.Z >= b.Max.Z
}

// Center returns the centroid of the box.
func (a AABB) Center() r3.Vector {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Size returns the edge lengths of the box.
func (a AABB) Size() r3.Vector {
	return a.Max.Sub(a.Min)
}

// Extend returns the box grown by the given margin on every side.
func (a AABB) Extend(margin float64) AABB {
	m := r3.Vector{X: margin, Y: margin, Z: margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// SurfaceArea returns the total face area of the box, the cost metric used
// when descending the broadphase tree.
func (a AABB) SurfaceArea() float64 {
	s := a.Size()
	return 2 * (s.X*s.Y + s.Y*s.Z + s.Z*s.X)
}

// MergedSurfaceArea returns the surface area of the union of the two boxes
// without materializing it.
func (a AABB) MergedSurfaceArea(b AABB) float64 {
	return a.Union(b).SurfaceArea()
}

// Distance returns the smallest separation between the two boxes, or zero when
// they overlap. It is a lower bound on the distance between any contained shapes.
func (a AABB) Distance(b AABB) float64 {
	dx := math.Max(0, math.Max(b.Min.X-a.Max.X, a.Min.X-b.Max.X))
	dy := math.Max(0, math.Max(b.Min.Y-a.Max.Y, a.Min.Y-b.Max.Y))
	dz := math.Max(0, math.Max(b.Min.Z-a.Max.Z, a.Min.Z-b.Max.Z))
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
