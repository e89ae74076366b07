package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"

	"github.com/mechsuite/prox/spatial"
)

// Mesh is a collision geometry made of a set of triangles. The triangles are
// a surface, not a solid, so a mesh has no interior and distances to it are
// never negative.
type Mesh struct {
	pose      spatial.Pose
	triangles []*Triangle
	label     string

	worldTris []*Triangle
	tree      *bvhNode
	once      sync.Once
}

// NewMesh creates a mesh from a pose and a set of triangles expressed in the
// frame of that pose.
func NewMesh(pose spatial.Pose, triangles []*Triangle, label string) (*Mesh, error) {
	if len(triangles) == 0 {
		return nil, newEmptyMeshError()
	}
	return &Mesh{pose: pose, triangles: triangles, label: label}, nil
}

// NewMeshFromVertices creates a mesh from a vertex buffer and triangle index
// triplets. All validation failures are collected and returned together.
func NewMeshFromVertices(pose spatial.Pose, vertices []r3.Vector, indices [][3]int, label string) (*Mesh, error) {
	var err error
	for i, v := range vertices {
		if !vectorFinite(v) {
			err = multierr.Append(err, newNonFiniteVertexError(i))
		}
	}
	for i, tri := range indices {
		for _, idx := range tri {
			if idx < 0 || idx >= len(vertices) {
				err = multierr.Append(err, newBadTriangleIndexError(i, idx, len(vertices)))
			}
		}
	}
	if err != nil {
		return nil, err
	}

	triangles := make([]*Triangle, 0, len(indices))
	for _, tri := range indices {
		triangles = append(triangles, NewTriangle(vertices[tri[0]], vertices[tri[1]], vertices[tri[2]]))
	}
	return NewMesh(pose, triangles, label)
}

// String returns a human readable string that represents the mesh.
func (m *Mesh) String() string {
	return fmt.Sprintf("Type: Mesh | Triangles: %d", len(m.triangles))
}

func (m *Mesh) MarshalJSON() ([]byte, error) {
	config := newGeometryConfig(m)
	config.Type = "mesh"
	return json.Marshal(config)
}

// Label returns the label of this mesh.
func (m *Mesh) Label() string {
	return m.label
}

// SetLabel sets the label of this mesh.
func (m *Mesh) SetLabel(label string) {
	m.label = label
}

// Pose returns the pose of the mesh.
func (m *Mesh) Pose() spatial.Pose {
	return m.pose
}

// Triangles returns the triangles of the mesh in the mesh frame.
func (m *Mesh) Triangles() []*Triangle {
	return m.triangles
}

// Transform premultiplies the mesh pose with a transform, allowing the mesh to be moved in space.
func (m *Mesh) Transform(toPremultiply spatial.Pose) Geometry {
	// triangle points are in the frame of the mesh, like the corners of a box,
	// so only the pose moves
	return &Mesh{
		pose:      spatial.Compose(toPremultiply, m.pose),
		triangles: m.triangles,
		label:     m.label,
	}
}

// AABB returns the world-space bounding box of the mesh.
func (m *Mesh) AABB() spatial.AABB {
	return computeTrianglesAABB(m.worldTriangles())
}

// worldTriangles returns the triangles of the mesh transformed into world
// space, computing and caching them on first use.
func (m *Mesh) worldTriangles() []*Triangle {
	m.once.Do(func() {
		m.worldTris = make([]*Triangle, 0, len(m.triangles))
		for _, t := range m.triangles {
			m.worldTris = append(m.worldTris, t.transformed(m.pose))
		}
		m.tree = buildBVH(m.worldTris)
	})
	return m.worldTris
}

// bvh returns the bounding volume hierarchy over the world-space triangles.
func (m *Mesh) bvh() *bvhNode {
	m.worldTriangles()
	return m.tree
}

func (m *Mesh) centroid() r3.Vector {
	sum := r3.Vector{}
	for _, t := range m.worldTriangles() {
		sum = sum.Add(t.Centroid())
	}
	return sum.Mul(1 / float64(len(m.triangles)))
}

func (m *Mesh) boundingSphereR() float64 {
	c := m.centroid()
	r := 0.
	for _, t := range m.worldTriangles() {
		for _, pt := range t.Points() {
			if d := c.Sub(pt).Norm(); d > r {
				r = d
			}
		}
	}
	return r
}

// closestPointToPoint returns the point on the mesh surface closest to the
// query point, found by descending the hierarchy with distance pruning.
func (m *Mesh) closestPointToPoint(point r3.Vector) r3.Vector {
	best := r3.Vector{}
	bestDist := math.Inf(1)
	queryBox := spatial.NewAABB(point, point)

	var descend func(n *bvhNode)
	descend = func(n *bvhNode) {
		if n == nil || n.bounds.Distance(queryBox) >= bestDist {
			return
		}
		if n.isLeaf() {
			for _, t := range n.triangles {
				if pt := t.ClosestPointToPoint(point); point.Sub(pt).Norm() < bestDist {
					best = pt
					bestDist = point.Sub(pt).Norm()
				}
			}
			return
		}
		descend(n.left)
		descend(n.right)
	}
	descend(m.bvh())
	return best
}

// closestPointsTriangleTriangle returns the closest pair of points between
// two triangles by checking every edge of each against the other.
func closestPointsTriangleTriangle(a, b *Triangle) (r3.Vector, r3.Vector) {
	bestA, bestB := closestPointsSegmentTriangle(a.p0, a.p1, b)
	bestDist := bestA.Sub(bestB).Norm2()

	edges := [][2]r3.Vector{{a.p1, a.p2}, {a.p2, a.p0}}
	for _, e := range edges {
		if pa, pb := closestPointsSegmentTriangle(e[0], e[1], b); pa.Sub(pb).Norm2() < bestDist {
			bestA, bestB = pa, pb
			bestDist = pa.Sub(pb).Norm2()
		}
	}

	edges = [][2]r3.Vector{{b.p0, b.p1}, {b.p1, b.p2}, {b.p2, b.p0}}
	for _, e := range edges {
		if pb, pa := closestPointsSegmentTriangle(e[0], e[1], a); pa.Sub(pb).Norm2() < bestDist {
			bestA, bestB = pa, pb
			bestDist = pa.Sub(pb).Norm2()
		}
	}
	return bestA, bestB
}

// meshVsMeshDistance returns the distance between the surfaces of two meshes
// along with the closest pair of points, pruning subtree pairs whose bounding
// boxes cannot beat the best distance found so far.
func meshVsMeshDistance(m1, m2 *Mesh) (float64, r3.Vector, r3.Vector) {
	bestDist := math.Inf(1)
	var bestA, bestB r3.Vector

	var descend func(n1, n2 *bvhNode)
	descend = func(n1, n2 *bvhNode) {
		if n1 == nil || n2 == nil || n1.bounds.Distance(n2.bounds) >= bestDist {
			return
		}
		if n1.isLeaf() && n2.isLeaf() {
			for _, t1 := range n1.triangles {
				for _, t2 := range n2.triangles {
					pa, pb := closestPointsTriangleTriangle(t1, t2)
					if d := pa.Sub(pb).Norm(); d < bestDist {
						bestDist = d
						bestA, bestB = pa, pb
					}
				}
			}
			return
		}
		// descend the larger node
		if n2.isLeaf() || (!n1.isLeaf() && n1.bounds.SurfaceArea() > n2.bounds.SurfaceArea()) {
			descend(n1.left, n2)
			descend(n1.right, n2)
		} else {
			descend(n1, n2.left)
			descend(n1, n2.right)
		}
	}
	descend(m1.bvh(), m2.bvh())
	return bestDist, bestA, bestB
}

// meshVsMeshCollision reports whether any triangles of the two meshes touch,
// stopping at the first contact.
func meshVsMeshCollision(m1, m2 *Mesh) bool {
	var touching func(n1, n2 *bvhNode) bool
	touching = func(n1, n2 *bvhNode) bool {
		if n1 == nil || n2 == nil || !n1.bounds.Overlaps(n2.bounds) {
			return false
		}
		if n1.isLeaf() && n2.isLeaf() {
			for _, t1 := range n1.triangles {
				for _, t2 := range n2.triangles {
					pa, pb := closestPointsTriangleTriangle(t1, t2)
					if pa.Sub(pb).Norm() <= floatEpsilon {
						return true
					}
				}
			}
			return false
		}
		if n2.isLeaf() || (!n1.isLeaf() && n1.bounds.SurfaceArea() > n2.bounds.SurfaceArea()) {
			return touching(n1.left, n2) || touching(n1.right, n2)
		}
		return touching(n1, n2.left) || touching(n1, n2.right)
	}
	return touching(m1.bvh(), m2.bvh())
}

// meshVsSphereDistance returns the distance between a mesh surface and a sphere.
func meshVsSphereDistance(m *Mesh, s *sphere) float64 {
	return sphereVsPointDistance(s, m.closestPointToPoint(s.pose.Point()))
}

// meshVsSupportableDistance returns the distance between a mesh surface and a
// bounded convex shape by running pairwise convex queries against triangles,
// pruning with the shape's bounding box.
func meshVsSupportableDistance(m *Mesh, s supportable, sBounds spatial.AABB) (float64, r3.Vector, r3.Vector, error) {
	bestDist := math.Inf(1)
	var bestA, bestB r3.Vector

	var descend func(n *bvhNode) error
	descend = func(n *bvhNode) error {
		if n == nil || n.bounds.Distance(sBounds) >= bestDist {
			return nil
		}
		if n.isLeaf() {
			for _, t := range n.triangles {
				d, pa, pb, err := gjkDistance(t, s)
				if err != nil {
					return err
				}
				if d < bestDist {
					bestDist = d
					bestA, bestB = pa, pb
				}
			}
			return nil
		}
		if err := descend(n.left); err != nil {
			return err
		}
		return descend(n.right)
	}
	if err := descend(m.bvh()); err != nil {
		return 0, r3.Vector{}, r3.Vector{}, err
	}
	return bestDist, bestA, bestB, nil
}
