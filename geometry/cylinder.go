package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

// cylinder is a collision geometry representing a cylinder whose flat caps are
// normal to the local Z axis.
type cylinder struct {
	pose   spatial.Pose
	radius float64
	length float64
	label  string

	rotMatrix *spatial.RotationMatrix
	once      sync.Once
}

// NewCylinder instantiates a new cylinder Geometry.
func NewCylinder(pose spatial.Pose, radius, length float64, label string) (Geometry, error) {
	if radius <= 0 || length <= 0 {
		return nil, newBadGeometryDimensionsError(&cylinder{})
	}
	return &cylinder{pose: pose, radius: radius, length: length, label: label}, nil
}

// String returns a human readable string that represents the cylinder.
func (c *cylinder) String() string {
	return fmt.Sprintf("Type: Cylinder | Radius: %.1f, Length: %.1f", c.radius, c.length)
}

func (c *cylinder) MarshalJSON() ([]byte, error) {
	config := newGeometryConfig(c)
	config.Type = "cylinder"
	config.R = c.radius
	config.L = c.length
	return json.Marshal(config)
}

// Label returns the label of this cylinder.
func (c *cylinder) Label() string {
	return c.label
}

// SetLabel sets the label of this cylinder.
func (c *cylinder) SetLabel(label string) {
	c.label = label
}

// Pose returns the pose of the cylinder.
func (c *cylinder) Pose() spatial.Pose {
	return c.pose
}

// Transform premultiplies the cylinder pose with a transform, allowing the cylinder to be moved in space.
func (c *cylinder) Transform(toPremultiply spatial.Pose) Geometry {
	return &cylinder{
		pose:   spatial.Compose(toPremultiply, c.pose),
		radius: c.radius,
		length: c.length,
		label:  c.label,
	}
}

// AABB returns the world-space bounding box of the cylinder.
func (c *cylinder) AABB() spatial.AABB {
	return supportAABB(c)
}

// rotationMatrix returns the cached matrix if it exists, and generates it if not.
func (c *cylinder) rotationMatrix() *spatial.RotationMatrix {
	c.once.Do(func() { c.rotMatrix = c.pose.Orientation().RotationMatrix() })
	return c.rotMatrix
}

// support returns the point on the cylinder farthest in the given direction:
// a point on the rim of whichever cap faces the direction.
func (c *cylinder) support(direction r3.Vector) r3.Vector {
	rm := c.rotationMatrix()
	local := rm.ApplyInverse(direction)

	result := r3.Vector{Z: c.length / 2}
	if local.Z < 0 {
		result.Z = -result.Z
	}
	radial := math.Hypot(local.X, local.Y)
	if radial > floatEpsilon {
		result.X = local.X / radial * c.radius
		result.Y = local.Y / radial * c.radius
	}
	return c.pose.Point().Add(rm.Apply(result))
}

func (c *cylinder) centroid() r3.Vector {
	return c.pose.Point()
}

func (c *cylinder) boundingSphereR() float64 {
	return math.Hypot(c.radius, c.length/2)
}
