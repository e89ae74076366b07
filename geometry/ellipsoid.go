package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

// ellipsoid is a collision geometry representing an ellipsoid with three
// independent semi-axis lengths along the local axes.
type ellipsoid struct {
	pose  spatial.Pose
	radii [3]float64
	label string

	rotMatrix *spatial.RotationMatrix
	once      sync.Once
}

// NewEllipsoid instantiates a new ellipsoid Geometry from its semi-axis lengths.
func NewEllipsoid(pose spatial.Pose, radii r3.Vector, label string) (Geometry, error) {
	if radii.X <= 0 || radii.Y <= 0 || radii.Z <= 0 || !vectorFinite(radii) {
		return nil, newBadGeometryDimensionsError(&ellipsoid{})
	}
	return &ellipsoid{
		pose:  pose,
		radii: [3]float64{radii.X, radii.Y, radii.Z},
		label: label,
	}, nil
}

// String returns a human readable string that represents the ellipsoid.
func (e *ellipsoid) String() string {
	return fmt.Sprintf("Type: Ellipsoid | Radii: X:%.1f, Y:%.1f, Z:%.1f", e.radii[0], e.radii[1], e.radii[2])
}

func (e *ellipsoid) MarshalJSON() ([]byte, error) {
	config := newGeometryConfig(e)
	config.Type = "ellipsoid"
	config.X = e.radii[0]
	config.Y = e.radii[1]
	config.Z = e.radii[2]
	return json.Marshal(config)
}

// Label returns the label of this ellipsoid.
func (e *ellipsoid) Label() string {
	return e.label
}

// SetLabel sets the label of this ellipsoid.
func (e *ellipsoid) SetLabel(label string) {
	e.label = label
}

// Pose returns the pose of the ellipsoid.
func (e *ellipsoid) Pose() spatial.Pose {
	return e.pose
}

// Transform premultiplies the ellipsoid pose with a transform, allowing the ellipsoid to be moved in space.
func (e *ellipsoid) Transform(toPremultiply spatial.Pose) Geometry {
	return &ellipsoid{
		pose:  spatial.Compose(toPremultiply, e.pose),
		radii: e.radii,
		label: e.label,
	}
}

// AABB returns the world-space bounding box of the ellipsoid.
func (e *ellipsoid) AABB() spatial.AABB {
	return supportAABB(e)
}

// rotationMatrix returns the cached matrix if it exists, and generates it if not.
func (e *ellipsoid) rotationMatrix() *spatial.RotationMatrix {
	e.once.Do(func() { e.rotMatrix = e.pose.Orientation().RotationMatrix() })
	return e.rotMatrix
}

// support returns the point on the ellipsoid farthest in the given direction.
// For local direction d the extreme point is (a²dx, b²dy, c²dz) rescaled onto
// the surface.
func (e *ellipsoid) support(direction r3.Vector) r3.Vector {
	rm := e.rotationMatrix()
	local := rm.ApplyInverse(direction)
	if local.Norm2() < floatEpsilon*floatEpsilon {
		local = r3.Vector{X: 1}
	}

	a, b, c := e.radii[0], e.radii[1], e.radii[2]
	scaled := r3.Vector{X: a * a * local.X, Y: b * b * local.Y, Z: c * c * local.Z}
	denom := math.Sqrt(a*a*local.X*local.X + b*b*local.Y*local.Y + c*c*local.Z*local.Z)
	pt := scaled.Mul(1 / denom)
	return e.pose.Point().Add(rm.Apply(pt))
}

func (e *ellipsoid) centroid() r3.Vector {
	return e.pose.Point()
}

func (e *ellipsoid) boundingSphereR() float64 {
	return math.Max(e.radii[0], math.Max(e.radii[1], e.radii[2]))
}
