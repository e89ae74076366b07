package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

// cone is a collision geometry representing a cone whose apex points along the
// local +Z axis and whose circular base is normal to it. The pose is centered
// halfway between apex and base.
type cone struct {
	pose   spatial.Pose
	radius float64
	length float64
	label  string

	rotMatrix *spatial.RotationMatrix
	once      sync.Once
}

// NewCone instantiates a new cone Geometry.
func NewCone(pose spatial.Pose, radius, length float64, label string) (Geometry, error) {
	if radius <= 0 || length <= 0 {
		return nil, newBadGeometryDimensionsError(&cone{})
	}
	return &cone{pose: pose, radius: radius, length: length, label: label}, nil
}

// String returns a human readable string that represents the cone.
func (c *cone) String() string {
	return fmt.Sprintf("Type: Cone | Radius: %.1f, Length: %.1f", c.radius, c.length)
}

func (c *cone) MarshalJSON() ([]byte, error) {
	config := newGeometryConfig(c)
	config.Type = "cone"
	config.R = c.radius
	config.L = c.length
	return json.Marshal(config)
}

// Label returns the label of this cone.
func (c *cone) Label() string {
	return c.label
}

// SetLabel sets the label of this cone.
func (c *cone) SetLabel(label string) {
	c.label = label
}

// Pose returns the pose of the cone.
func (c *cone) Pose() spatial.Pose {
	return c.pose
}

// Transform premultiplies the cone pose with a transform, allowing the cone to be moved in space.
func (c *cone) Transform(toPremultiply spatial.Pose) Geometry {
	return &cone{
		pose:   spatial.Compose(toPremultiply, c.pose),
		radius: c.radius,
		length: c.length,
		label:  c.label,
	}
}

// AABB returns the world-space bounding box of the cone.
func (c *cone) AABB() spatial.AABB {
	return supportAABB(c)
}

// rotationMatrix returns the cached matrix if it exists, and generates it if not.
func (c *cone) rotationMatrix() *spatial.RotationMatrix {
	c.once.Do(func() { c.rotMatrix = c.pose.Orientation().RotationMatrix() })
	return c.rotMatrix
}

// support returns the point on the cone farthest in the given direction, which
// is either the apex or a point on the base rim.
func (c *cone) support(direction r3.Vector) r3.Vector {
	rm := c.rotationMatrix()
	local := rm.ApplyInverse(direction)

	apex := r3.Vector{Z: c.length / 2}
	rim := r3.Vector{Z: -c.length / 2}
	radial := math.Hypot(local.X, local.Y)
	if radial > floatEpsilon {
		rim.X = local.X / radial * c.radius
		rim.Y = local.Y / radial * c.radius
	} else {
		rim.X = c.radius
	}

	best := apex
	if local.Dot(rim) > local.Dot(apex) {
		best = rim
	}
	return c.pose.Point().Add(rm.Apply(best))
}

func (c *cone) centroid() r3.Vector {
	return c.pose.Point()
}

func (c *cone) boundingSphereR() float64 {
	return math.Hypot(c.radius, c.length/2)
}
