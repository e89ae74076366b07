package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

// capsule is a collision geometry representing a capsule: a line segment
// surrounded by a radius. The segment extends along the local Z axis and
// length is measured tip to tip.
type capsule struct {
	pose   spatial.Pose
	radius float64
	length float64
	label  string

	// cached at creation time since they are useful and expensive to recompute
	segA   r3.Vector // proximal endpoint of the capsule line segment
	segB   r3.Vector // distal endpoint of the capsule line segment
	center r3.Vector
	capVec r3.Vector // vector from center towards segB

	rotMatrix *spatial.RotationMatrix
	once      sync.Once
}

// NewCapsule instantiates a new capsule Geometry. A capsule whose length
// equals its diameter is constructed as a sphere.
func NewCapsule(offset spatial.Pose, radius, length float64, label string) (Geometry, error) {
	if radius <= 0 || length <= 0 {
		return nil, newBadGeometryDimensionsError(&capsule{})
	}
	if length < radius*2 {
		return nil, newBadCapsuleLengthError(length, radius)
	}
	if length == radius*2 {
		return NewSphere(offset, radius, label)
	}
	return newCapsuleWithSegPoints(offset, radius, length, label), nil
}

func newCapsuleWithSegPoints(offset spatial.Pose, radius, length float64, label string) Geometry {
	segA := spatial.TransformPoint(offset, r3.Vector{Z: -length/2 + radius})
	segB := spatial.TransformPoint(offset, r3.Vector{Z: length/2 - radius})
	center := offset.Point()
	return &capsule{
		pose:   offset,
		radius: radius,
		length: length,
		label:  label,
		segA:   segA,
		segB:   segB,
		center: center,
		capVec: segB.Sub(center),
	}
}

// String returns a human readable string that represents the capsule.
func (c *capsule) String() string {
	return fmt.Sprintf("Type: Capsule | Radius: %.1f, Length: %.1f", c.radius, c.length)
}

func (c *capsule) MarshalJSON() ([]byte, error) {
	config := newGeometryConfig(c)
	config.Type = "capsule"
	config.R = c.radius
	config.L = c.length
	return json.Marshal(config)
}

// Label returns the label of this capsule.
func (c *capsule) Label() string {
	return c.label
}

// SetLabel sets the label of this capsule.
func (c *capsule) SetLabel(label string) {
	c.label = label
}

// Pose returns the pose of the capsule.
func (c *capsule) Pose() spatial.Pose {
	return c.pose
}

// Transform premultiplies the capsule pose with a transform, allowing the capsule to be moved in space.
func (c *capsule) Transform(toPremultiply spatial.Pose) Geometry {
	newPose := spatial.Compose(toPremultiply, c.pose)
	segB := spatial.TransformPoint(toPremultiply, c.segB)
	center := newPose.Point()
	return &capsule{
		pose:   newPose,
		radius: c.radius,
		length: c.length,
		label:  c.label,
		segA:   spatial.TransformPoint(toPremultiply, c.segA),
		segB:   segB,
		center: center,
		capVec: segB.Sub(center),
	}
}

// AABB returns the world-space bounding box of the capsule.
func (c *capsule) AABB() spatial.AABB {
	r := r3.Vector{X: c.radius, Y: c.radius, Z: c.radius}
	boxA := spatial.NewAABB(c.segA.Sub(r), c.segA.Add(r))
	boxB := spatial.NewAABB(c.segB.Sub(r), c.segB.Add(r))
	return boxA.Union(boxB)
}

// rotationMatrix returns the cached matrix if it exists, and generates it if not.
func (c *capsule) rotationMatrix() *spatial.RotationMatrix {
	c.once.Do(func() { c.rotMatrix = c.pose.Orientation().RotationMatrix() })
	return c.rotMatrix
}

// support returns the point on the capsule farthest in the given direction.
func (c *capsule) support(direction r3.Vector) r3.Vector {
	end := c.segA
	if direction.Dot(c.capVec) >= 0 {
		end = c.segB
	}
	if direction.Norm2() < floatEpsilon*floatEpsilon {
		return end.Add(r3.Vector{X: c.radius})
	}
	return end.Add(direction.Normalize().Mul(c.radius))
}

func (c *capsule) centroid() r3.Vector {
	return c.center
}

func (c *capsule) boundingSphereR() float64 {
	return c.length / 2
}

func capsuleVsSphereDistance(c *capsule, other *sphere) float64 {
	return DistToLineSegment(c.segA, c.segB, other.pose.Point()) - (c.radius + other.radius)
}

func capsuleVsCapsuleDistance(c, other *capsule) float64 {
	return SegmentDistanceToSegment(c.segA, c.segB, other.segA, other.segB) - (c.radius + other.radius)
}

// capsuleVsMeshDistance returns the smallest distance from the capsule to any
// triangle of the mesh. Meshes are not considered solid: this measures only
// the distance to the closest triangle.
func capsuleVsMeshDistance(c *capsule, other *Mesh) float64 {
	lowDist := math.Inf(1)
	for _, t := range other.worldTriangles() {
		if dist := capsuleVsTriangleDistance(c, t); dist < lowDist {
			lowDist = dist
		}
	}
	return lowDist
}

func capsuleVsTriangleDistance(c *capsule, other *Triangle) float64 {
	capPt, triPt := closestPointsSegmentTriangle(c.segA, c.segB, other)
	return capPt.Sub(triPt).Norm() - c.radius
}
