package geometry

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

// sphere is a collision geometry representing a sphere. A pose and radius
// fully define it.
type sphere struct {
	pose   spatial.Pose
	radius float64
	label  string
}

// NewSphere instantiates a new sphere Geometry.
func NewSphere(pose spatial.Pose, radius float64, label string) (Geometry, error) {
	if radius <= 0 {
		return nil, newBadGeometryDimensionsError(&sphere{})
	}
	return &sphere{pose: pose, radius: radius, label: label}, nil
}

// String returns a human readable string that represents the sphere.
func (s *sphere) String() string {
	pt := s.pose.Point()
	return fmt.Sprintf("Type: Sphere | Position: X:%.1f, Y:%.1f, Z:%.1f | Radius: %.1f", pt.X, pt.Y, pt.Z, s.radius)
}

func (s *sphere) MarshalJSON() ([]byte, error) {
	config := newGeometryConfig(s)
	config.Type = "sphere"
	config.R = s.radius
	return json.Marshal(config)
}

// Label returns the label of this sphere.
func (s *sphere) Label() string {
	return s.label
}

// SetLabel sets the label of this sphere.
func (s *sphere) SetLabel(label string) {
	s.label = label
}

// Pose returns the pose of the sphere.
func (s *sphere) Pose() spatial.Pose {
	return s.pose
}

// Transform premultiplies the sphere pose with a transform, allowing the sphere to be moved in space.
func (s *sphere) Transform(toPremultiply spatial.Pose) Geometry {
	return &sphere{
		pose:   spatial.Compose(toPremultiply, s.pose),
		radius: s.radius,
		label:  s.label,
	}
}

// AABB returns the world-space bounding box of the sphere.
func (s *sphere) AABB() spatial.AABB {
	center := s.pose.Point()
	r := r3.Vector{X: s.radius, Y: s.radius, Z: s.radius}
	return spatial.NewAABB(center.Sub(r), center.Add(r))
}

func (s *sphere) support(direction r3.Vector) r3.Vector {
	if direction.Norm2() < floatEpsilon*floatEpsilon {
		return s.pose.Point().Add(r3.Vector{X: s.radius})
	}
	return s.pose.Point().Add(direction.Normalize().Mul(s.radius))
}

func (s *sphere) centroid() r3.Vector {
	return s.pose.Point()
}

func (s *sphere) boundingSphereR() float64 {
	return s.radius
}

// sphereVsPointDistance returns the distance from the sphere surface to the
// point, negative if the point is inside the sphere.
func sphereVsPointDistance(s *sphere, pt r3.Vector) float64 {
	return s.pose.Point().Sub(pt).Norm() - s.radius
}

// sphereVsSphereDistance returns the distance between the two sphere surfaces,
// negative if they overlap.
func sphereVsSphereDistance(a, b *sphere) float64 {
	return a.pose.Point().Sub(b.pose.Point()).Norm() - (a.radius + b.radius)
}

// sphereVsBoxDistance returns the signed distance between a sphere and a box.
func sphereVsBoxDistance(s *sphere, b *box) float64 {
	return pointVsBoxDistance(s.pose.Point(), b) - s.radius
}
