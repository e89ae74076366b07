package geometry

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

// halfSpace is the set of points {x : n·x < d} for a unit normal n. It is an
// unbounded solid, so it has no support function and cannot participate in
// iterative algorithms; all queries against it are closed-form.
type halfSpace struct {
	normal r3.Vector
	offset float64
	label  string
}

// NewHalfSpace instantiates a half space Geometry from a boundary plane normal
// and signed offset. The interior is the side the normal points away from.
func NewHalfSpace(normal r3.Vector, offset float64, label string) (Geometry, error) {
	if normal.Norm2() < floatEpsilon*floatEpsilon || !vectorFinite(normal) {
		return nil, newBadGeometryDimensionsError(&halfSpace{})
	}
	return &halfSpace{normal: normal.Normalize(), offset: offset, label: label}, nil
}

// String returns a human readable string that represents the half space.
func (h *halfSpace) String() string {
	return fmt.Sprintf("Type: HalfSpace | Normal: X:%.1f, Y:%.1f, Z:%.1f | Offset: %.1f",
		h.normal.X, h.normal.Y, h.normal.Z, h.offset)
}

func (h *halfSpace) MarshalJSON() ([]byte, error) {
	config := newGeometryConfig(h)
	config.Type = "half_space"
	config.X = h.normal.X
	config.Y = h.normal.Y
	config.Z = h.normal.Z
	config.R = h.offset
	return json.Marshal(config)
}

// Label returns the label of this half space.
func (h *halfSpace) Label() string {
	return h.label
}

// SetLabel sets the label of this half space.
func (h *halfSpace) SetLabel(label string) {
	h.label = label
}

// Pose returns the pose of the half space, a point on the boundary plane.
func (h *halfSpace) Pose() spatial.Pose {
	return spatial.NewPoseFromPoint(h.normal.Mul(h.offset))
}

// Transform rotates the normal and shifts the offset by the transform.
func (h *halfSpace) Transform(toPremultiply spatial.Pose) Geometry {
	rm := toPremultiply.Orientation().RotationMatrix()
	newNormal := rm.Apply(h.normal)
	return &halfSpace{
		normal: newNormal,
		offset: h.offset + newNormal.Dot(toPremultiply.Point()),
		label:  h.label,
	}
}

// AABB returns an unbounded box since a half space extends infinitely.
func (h *halfSpace) AABB() spatial.AABB {
	return spatial.NewInfiniteAABB()
}

// signedDistanceToPoint returns how far a point sits outside the half space.
// Negative values are inside.
func (h *halfSpace) signedDistanceToPoint(pt r3.Vector) float64 {
	return pt.Dot(h.normal) - h.offset
}

// halfSpaceVsSupportableDistance computes the signed distance between a half
// space and any bounded convex shape. The deepest point of the shape in the
// direction opposite the normal decides penetration. Returns the distance,
// the closest point on the boundary plane, and the deepest point of the shape.
func halfSpaceVsSupportableDistance(h *halfSpace, s supportable) (float64, r3.Vector, r3.Vector) {
	deepest := s.support(h.normal.Mul(-1))
	dist := h.signedDistanceToPoint(deepest)
	return dist, deepest.Sub(h.normal.Mul(dist)), deepest
}

// halfSpaceVsMeshDistance computes the signed distance between a half space
// and a triangle mesh by checking every vertex against the boundary plane.
func halfSpaceVsMeshDistance(h *halfSpace, m *Mesh) (float64, r3.Vector, r3.Vector) {
	best := math.Inf(1)
	var deepest r3.Vector
	for _, t := range m.worldTriangles() {
		for _, pt := range t.Points() {
			if d := h.signedDistanceToPoint(pt); d < best {
				best = d
				deepest = pt
			}
		}
	}
	return best, deepest.Sub(h.normal.Mul(best)), deepest
}
