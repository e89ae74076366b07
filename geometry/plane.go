package geometry

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

// plane is the two-sided infinite surface {x : n·x = d}. Unlike a half space
// it has no interior, so distance to it is measured to the surface from
// either side.
type plane struct {
	normal r3.Vector
	offset float64
	label  string
}

// NewPlane instantiates a two-sided plane Geometry from its unit normal and
// signed offset along that normal.
func NewPlane(normal r3.Vector, offset float64, label string) (Geometry, error) {
	if normal.Norm2() < floatEpsilon*floatEpsilon || !vectorFinite(normal) {
		return nil, newBadGeometryDimensionsError(&plane{})
	}
	return &plane{normal: normal.Normalize(), offset: offset, label: label}, nil
}

// String returns a human readable string that represents the plane.
func (p *plane) String() string {
	return fmt.Sprintf("Type: Plane | Normal: X:%.1f, Y:%.1f, Z:%.1f | Offset: %.1f",
		p.normal.X, p.normal.Y, p.normal.Z, p.offset)
}

func (p *plane) MarshalJSON() ([]byte, error) {
	config := newGeometryConfig(p)
	config.Type = "plane"
	config.X = p.normal.X
	config.Y = p.normal.Y
	config.Z = p.normal.Z
	config.R = p.offset
	return json.Marshal(config)
}

// Label returns the label of this plane.
func (p *plane) Label() string {
	return p.label
}

// SetLabel sets the label of this plane.
func (p *plane) SetLabel(label string) {
	p.label = label
}

// Pose returns the pose of the plane, a point on its surface.
func (p *plane) Pose() spatial.Pose {
	return spatial.NewPoseFromPoint(p.normal.Mul(p.offset))
}

// Transform rotates the normal and shifts the offset by the transform.
func (p *plane) Transform(toPremultiply spatial.Pose) Geometry {
	rm := toPremultiply.Orientation().RotationMatrix()
	newNormal := rm.Apply(p.normal)
	return &plane{
		normal: newNormal,
		offset: p.offset + newNormal.Dot(toPremultiply.Point()),
		label:  p.label,
	}
}

// AABB returns an unbounded box since a plane extends infinitely.
func (p *plane) AABB() spatial.AABB {
	return spatial.NewInfiniteAABB()
}

// distanceToPoint returns the absolute distance from a point to the surface.
func (p *plane) distanceToPoint(pt r3.Vector) float64 {
	return math.Abs(pt.Dot(p.normal) - p.offset)
}

// planeVsSupportableDistance computes the distance between a plane and a
// bounded convex shape. If the shape straddles the surface the result is the
// negated smaller overhang, a penetration depth. Returns the distance, the
// closest point on the surface, and the matching point on the shape.
func planeVsSupportableDistance(p *plane, s supportable) (float64, r3.Vector, r3.Vector) {
	// signed reach of the shape on each side of the surface
	high := s.support(p.normal)
	low := s.support(p.normal.Mul(-1))
	above := high.Dot(p.normal) - p.offset
	below := p.offset - low.Dot(p.normal)

	onSurface := func(pt r3.Vector) r3.Vector {
		return pt.Sub(p.normal.Mul(pt.Dot(p.normal) - p.offset))
	}
	switch {
	case above < 0:
		// shape entirely below the surface
		return -above, onSurface(high), high
	case below < 0:
		// shape entirely above the surface
		return -below, onSurface(low), low
	case above < below:
		return -above, onSurface(high), high
	default:
		return -below, onSurface(low), low
	}
}

// planeVsMeshDistance computes the distance between a plane and a triangle
// mesh. A triangle crossing the surface makes the distance zero.
func planeVsMeshDistance(p *plane, m *Mesh) (float64, r3.Vector, r3.Vector) {
	best := math.Inf(1)
	var bestPt r3.Vector
	crossedPos, crossedNeg := false, false
	for _, t := range m.worldTriangles() {
		for _, pt := range t.Points() {
			signed := pt.Dot(p.normal) - p.offset
			if signed >= 0 {
				crossedPos = true
			}
			if signed <= 0 {
				crossedNeg = true
			}
			if d := math.Abs(signed); d < best {
				best = d
				bestPt = pt
			}
		}
	}
	dist := best
	if crossedPos && crossedNeg {
		dist = 0
	}
	onSurface := bestPt.Sub(p.normal.Mul(bestPt.Dot(p.normal) - p.offset))
	return dist, onSurface, bestPt
}
