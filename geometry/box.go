package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
	"github.com/mechsuite/prox/utils"
)

// Ordered list of box vertices in units of half extents.
var boxVertices = [8]r3.Vector{
	{X: 1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: 1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1},
	{X: -1, Y: -1, Z: -1},
}

// The 12 edges of a box, as pairs of vertex indices.
var boxEdgeIndices = [12][2]int{
	{0, 1}, {0, 2}, {0, 4},
	{1, 3}, {1, 5},
	{2, 3}, {2, 6},
	{3, 7},
	{4, 5}, {4, 6},
	{5, 7},
	{6, 7},
}

// box is a collision geometry representing a rectangular prism. A pose and
// half size fully define it.
type box struct {
	pose      spatial.Pose
	centerPt  r3.Vector
	halfSize  [3]float64
	sphereR   float64
	label     string
	rotMatrix *spatial.RotationMatrix
	once      sync.Once
}

// NewBox instantiates a new box Geometry with the given full extents.
func NewBox(pose spatial.Pose, dims r3.Vector, label string) (Geometry, error) {
	if dims.X <= 0 || dims.Y <= 0 || dims.Z <= 0 || !vectorFinite(dims) {
		return nil, newBadGeometryDimensionsError(&box{})
	}
	halfSize := dims.Mul(0.5)
	return &box{
		pose:     pose,
		centerPt: pose.Point(),
		halfSize: [3]float64{halfSize.X, halfSize.Y, halfSize.Z},
		sphereR:  halfSize.Norm(),
		label:    label,
	}, nil
}

// String returns a human readable string that represents the box.
func (b *box) String() string {
	return fmt.Sprintf("Type: Box | Position: X:%.1f, Y:%.1f, Z:%.1f | Dims: X:%.1f, Y:%.1f, Z:%.1f",
		b.centerPt.X, b.centerPt.Y, b.centerPt.Z, 2*b.halfSize[0], 2*b.halfSize[1], 2*b.halfSize[2])
}

func (b *box) MarshalJSON() ([]byte, error) {
	config := newGeometryConfig(b)
	config.Type = "box"
	config.X = 2 * b.halfSize[0]
	config.Y = 2 * b.halfSize[1]
	config.Z = 2 * b.halfSize[2]
	return json.Marshal(config)
}

// Label returns the label of this box.
func (b *box) Label() string {
	return b.label
}

// SetLabel sets the label of this box.
func (b *box) SetLabel(label string) {
	b.label = label
}

// Pose returns the pose of the box.
func (b *box) Pose() spatial.Pose {
	return b.pose
}

// Transform premultiplies the box pose with a transform, allowing the box to be moved in space.
func (b *box) Transform(toPremultiply spatial.Pose) Geometry {
	p := spatial.Compose(toPremultiply, b.pose)
	return &box{
		pose:     p,
		centerPt: p.Point(),
		halfSize: b.halfSize,
		sphereR:  b.sphereR,
		label:    b.label,
	}
}

// AABB returns the world-space bounding box of the box.
func (b *box) AABB() spatial.AABB {
	return spatial.AABBFromPoints(b.vertices())
}

// rotationMatrix returns the cached matrix if it exists, and generates it if not.
func (b *box) rotationMatrix() *spatial.RotationMatrix {
	b.once.Do(func() { b.rotMatrix = b.pose.Orientation().RotationMatrix() })
	return b.rotMatrix
}

// support returns the vertex of the box farthest in the given direction.
func (b *box) support(direction r3.Vector) r3.Vector {
	rm := b.rotationMatrix()
	result := b.centerPt
	for i := 0; i < 3; i++ {
		axis := rm.Row(i)
		if direction.Dot(axis) >= 0 {
			result = result.Add(axis.Mul(b.halfSize[i]))
		} else {
			result = result.Sub(axis.Mul(b.halfSize[i]))
		}
	}
	return result
}

func (b *box) centroid() r3.Vector {
	return b.centerPt
}

func (b *box) boundingSphereR() float64 {
	return b.sphereR
}

// closestPoint returns the closest point on the box to the given point.
// Reference: Ericson, "Real-Time Collision Detection", section 5.1.3.
func (b *box) closestPoint(pt r3.Vector) r3.Vector {
	result := b.centerPt
	direction := pt.Sub(result)
	rm := b.rotationMatrix()
	for i := 0; i < 3; i++ {
		axis := rm.Row(i)
		distance := utils.Clamp(direction.Dot(axis), -b.halfSize[i], b.halfSize[i])
		result = result.Add(axis.Mul(distance))
	}
	return result
}

// pointPenetrationDepth returns the minimum distance needed to move a point
// inside the box to the box surface.
func (b *box) pointPenetrationDepth(pt r3.Vector) float64 {
	direction := pt.Sub(b.centerPt)
	rm := b.rotationMatrix()
	depth := math.Inf(1)
	for i := 0; i < 3; i++ {
		projection := direction.Dot(rm.Row(i))
		if d := math.Abs(projection - b.halfSize[i]); d < depth {
			depth = d
		}
		if d := math.Abs(projection + b.halfSize[i]); d < depth {
			depth = d
		}
	}
	return depth
}

// vertices returns the world-space vertices of the box.
func (b *box) vertices() []r3.Vector {
	rm := b.rotationMatrix()
	verts := make([]r3.Vector, 0, 8)
	for _, vert := range boxVertices {
		local := r3.Vector{X: vert.X * b.halfSize[0], Y: vert.Y * b.halfSize[1], Z: vert.Z * b.halfSize[2]}
		verts = append(verts, b.centerPt.Add(rm.Apply(local)))
	}
	return verts
}

// toMesh returns a 12-triangle mesh representation of the box.
func (b *box) toMesh() *Mesh {
	verts := b.vertices()
	triangles := make([]*Triangle, 0, 12)
	for _, tri := range boxTriangleIndices {
		triangles = append(triangles, NewTriangle(verts[tri[0]], verts[tri[1]], verts[tri[2]]))
	}
	m, _ := NewMesh(spatial.NewZeroPose(), triangles, b.label)
	return m
}

// The sets of vertex indices that tile the box exterior.
var boxTriangleIndices = [12][3]int{
	{0, 1, 3},
	{0, 2, 3},
	{0, 1, 5},
	{0, 4, 5},
	{0, 2, 6},
	{0, 4, 6},
	{7, 1, 3},
	{7, 2, 3},
	{7, 1, 5},
	{7, 4, 5},
	{7, 2, 6},
	{7, 4, 6},
}

// pointVsBoxDistance returns the distance from the point to the box surface,
// negative if the point is inside.
func pointVsBoxDistance(pt r3.Vector, b *box) float64 {
	distance := pt.Sub(b.closestPoint(pt)).Norm()
	if distance > 0 {
		return distance
	}
	return -b.pointPenetrationDepth(pt)
}

func vectorFinite(v r3.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
