package geometry

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

// Triangle is three ordered points and their precomputed plane normal. It is
// the building block of Mesh, in which case its points are in the mesh frame,
// and is also usable standalone as a world-space Geometry.
type Triangle struct {
	p0     r3.Vector
	p1     r3.Vector
	p2     r3.Vector
	normal r3.Vector
	label  string
}

// NewTriangle creates a Triangle from three points. The normal follows the
// right-hand rule on the point ordering.
func NewTriangle(p0, p1, p2 r3.Vector) *Triangle {
	return &Triangle{
		p0:     p0,
		p1:     p1,
		p2:     p2,
		normal: PlaneNormal(p0, p1, p2),
	}
}

// String returns a human readable string that represents the triangle.
func (t *Triangle) String() string {
	return fmt.Sprintf("Type: Triangle | P0: %v | P1: %v | P2: %v", t.p0, t.p1, t.p2)
}

func (t *Triangle) MarshalJSON() ([]byte, error) {
	config := newGeometryConfig(t)
	config.Type = "triangle"
	return json.Marshal(config)
}

// Label returns the label of this triangle.
func (t *Triangle) Label() string {
	return t.label
}

// SetLabel sets the label of this triangle.
func (t *Triangle) SetLabel(label string) {
	t.label = label
}

// Pose returns the pose of the triangle, positioned at its centroid.
func (t *Triangle) Pose() spatial.Pose {
	return spatial.NewPoseFromPoint(t.Centroid())
}

// Transform premultiplies the triangle points with a transform, allowing the triangle to be moved in space.
func (t *Triangle) Transform(toPremultiply spatial.Pose) Geometry {
	moved := t.transformed(toPremultiply)
	moved.label = t.label
	return moved
}

// AABB returns the world-space bounding box of the triangle.
func (t *Triangle) AABB() spatial.AABB {
	return spatial.AABBFromPoints(t.Points())
}

// Points returns the three points of the triangle.
func (t *Triangle) Points() []r3.Vector {
	return []r3.Vector{t.p0, t.p1, t.p2}
}

// Normal returns the plane normal of the triangle.
func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// Centroid returns the center of mass of the triangle.
func (t *Triangle) Centroid() r3.Vector {
	return t.p0.Add(t.p1).Add(t.p2).Mul(1. / 3.)
}

// Area returns the area of the triangle.
func (t *Triangle) Area() float64 {
	return t.p1.Sub(t.p0).Cross(t.p2.Sub(t.p0)).Norm() / 2
}

// transformed returns a copy of the triangle with each point moved by the pose.
func (t *Triangle) transformed(toPremultiply spatial.Pose) *Triangle {
	return NewTriangle(
		spatial.TransformPoint(toPremultiply, t.p0),
		spatial.TransformPoint(toPremultiply, t.p1),
		spatial.TransformPoint(toPremultiply, t.p2),
	)
}

// closestInsidePoint projects the query point onto the triangle plane and
// reports whether the projection lands inside the triangle. The in/out test
// checks the projection against each edge plane.
func (t *Triangle) closestInsidePoint(point r3.Vector) (r3.Vector, bool) {
	eps := floatEpsilon
	projected := point.Sub(t.normal.Mul(t.normal.Dot(point.Sub(t.p0))))
	e0 := t.p1.Sub(t.p0).Cross(projected.Sub(t.p0)).Dot(t.normal)
	e1 := t.p2.Sub(t.p1).Cross(projected.Sub(t.p1)).Dot(t.normal)
	e2 := t.p0.Sub(t.p2).Cross(projected.Sub(t.p2)).Dot(t.normal)
	return projected, e0 >= -eps && e1 >= -eps && e2 >= -eps
}

// ClosestPointToPoint returns the point on the triangle closest to the query
// point, whether on the face, an edge, or a vertex.
func (t *Triangle) ClosestPointToPoint(point r3.Vector) r3.Vector {
	if inside, ok := t.closestInsidePoint(point); ok {
		return inside
	}

	best := ClosestPointSegmentPoint(t.p0, t.p1, point)
	bestDist := point.Sub(best).Norm2()
	if pt := ClosestPointSegmentPoint(t.p1, t.p2, point); point.Sub(pt).Norm2() < bestDist {
		best = pt
		bestDist = point.Sub(pt).Norm2()
	}
	if pt := ClosestPointSegmentPoint(t.p2, t.p0, point); point.Sub(pt).Norm2() < bestDist {
		best = pt
	}
	return best
}

// support returns the vertex farthest in the given direction.
func (t *Triangle) support(direction r3.Vector) r3.Vector {
	best := t.p0
	bestDot := t.p0.Dot(direction)
	if d := t.p1.Dot(direction); d > bestDot {
		best, bestDot = t.p1, d
	}
	if d := t.p2.Dot(direction); d > bestDot {
		best = t.p2
	}
	return best
}

func (t *Triangle) centroid() r3.Vector {
	return t.Centroid()
}

func (t *Triangle) boundingSphereR() float64 {
	c := t.Centroid()
	r := c.Sub(t.p0).Norm()
	if d := c.Sub(t.p1).Norm(); d > r {
		r = d
	}
	if d := c.Sub(t.p2).Norm(); d > r {
		r = d
	}
	return r
}
