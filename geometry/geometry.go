// Package geometry defines the closed set of collision shapes and the
// narrow-phase algorithms that operate on pairs of them.
//
// Shapes are immutable once constructed; Transform returns a moved copy.
// All pairwise queries live in this package so that algorithms can reach the
// unexported internals of both operands.
package geometry

import (
	"encoding/json"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

// floatEpsilon is used to determine if a float is almost zero.
const floatEpsilon = 1e-6

// Geometry is the entry point with which to access all types of collision shapes.
type Geometry interface {
	// Pose returns the placement of the shape in world space.
	Pose() spatial.Pose

	// Transform premultiplies the shape's pose, returning the moved shape.
	Transform(spatial.Pose) Geometry

	// AABB returns the world-space axis-aligned bounding box of the shape.
	AABB() spatial.AABB

	Label() string
	SetLabel(string)

	String() string
	json.Marshaler
}

// supportable is implemented by every bounded convex shape and provides the
// support mapping consumed by GJK-family algorithms.
type supportable interface {
	// support returns the point of the shape farthest in the given world direction.
	support(direction r3.Vector) r3.Vector

	// centroid returns the world-space reference center of the shape.
	centroid() r3.Vector

	// boundingSphereR returns the radius of a sphere about the centroid
	// guaranteed to contain the shape.
	boundingSphereR() float64
}

// GeometryConfig is the JSON form of a shape.
type GeometryConfig struct {
	Type string `json:"type"`

	// boxes use X, Y, Z for their full extents
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	Z float64 `json:"z,omitempty"`

	// radial shapes use R for their radius and L for their length
	R float64 `json:"r,omitempty"`
	L float64 `json:"l,omitempty"`

	// translation of the shape pose; orientation is axis-angle
	TranslationX float64 `json:"translation_x,omitempty"`
	TranslationY float64 `json:"translation_y,omitempty"`
	TranslationZ float64 `json:"translation_z,omitempty"`
	OrientationT float64 `json:"orientation_th,omitempty"`
	OrientationX float64 `json:"orientation_x,omitempty"`
	OrientationY float64 `json:"orientation_y,omitempty"`
	OrientationZ float64 `json:"orientation_z,omitempty"`

	Label string `json:"label,omitempty"`
}

func newGeometryConfig(g Geometry) *GeometryConfig {
	pt := g.Pose().Point()
	aa := g.Pose().Orientation().AxisAngles()
	return &GeometryConfig{
		TranslationX: pt.X,
		TranslationY: pt.Y,
		TranslationZ: pt.Z,
		OrientationT: aa.Theta,
		OrientationX: aa.RX,
		OrientationY: aa.RY,
		OrientationZ: aa.RZ,
		Label:        g.Label(),
	}
}

func (config *GeometryConfig) pose() spatial.Pose {
	return spatial.NewPose(
		r3.Vector{X: config.TranslationX, Y: config.TranslationY, Z: config.TranslationZ},
		spatial.NewOrientationFromAxisAngle(config.OrientationT,
			r3.Vector{X: config.OrientationX, Y: config.OrientationY, Z: config.OrientationZ}),
	)
}

// ParseConfig instantiates the Geometry described by the config.
func (config *GeometryConfig) ParseConfig() (Geometry, error) {
	offset := config.pose()
	switch config.Type {
	case "box":
		return NewBox(offset, r3.Vector{X: config.X, Y: config.Y, Z: config.Z}, config.Label)
	case "sphere":
		return NewSphere(offset, config.R, config.Label)
	case "ellipsoid":
		return NewEllipsoid(offset, r3.Vector{X: config.X, Y: config.Y, Z: config.Z}, config.Label)
	case "capsule":
		return NewCapsule(offset, config.R, config.L, config.Label)
	case "cylinder":
		return NewCylinder(offset, config.R, config.L, config.Label)
	case "cone":
		return NewCone(offset, config.R, config.L, config.Label)
	case "half_space":
		return NewHalfSpace(r3.Vector{X: config.X, Y: config.Y, Z: config.Z}, config.R, config.Label)
	case "plane":
		return NewPlane(r3.Vector{X: config.X, Y: config.Y, Z: config.Z}, config.R, config.Label)
	default:
		return nil, newBadGeometryTypeError(config.Type)
	}
}
