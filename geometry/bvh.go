package geometry

import (
	"sort"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

// bvhLeafSize is the maximum number of triangles stored in a leaf node.
const bvhLeafSize = 4

// bvhNode is a node of a bounding volume hierarchy over triangles. Leaf nodes
// hold triangles directly and have nil children.
type bvhNode struct {
	bounds spatial.AABB

	left  *bvhNode
	right *bvhNode

	triangles []*Triangle
}

// computeTrianglesAABB returns the bounding box of the given triangles.
func computeTrianglesAABB(triangles []*Triangle) spatial.AABB {
	pts := make([]r3.Vector, 0, 3*len(triangles))
	for _, t := range triangles {
		pts = append(pts, t.p0, t.p1, t.p2)
	}
	return spatial.AABBFromPoints(pts)
}

// buildBVH constructs a hierarchy over the triangles by recursive median
// split along the widest axis of the centroid spread.
func buildBVH(triangles []*Triangle) *bvhNode {
	if len(triangles) == 0 {
		return nil
	}
	bounds := computeTrianglesAABB(triangles)
	if len(triangles) <= bvhLeafSize {
		return &bvhNode{bounds: bounds, triangles: triangles}
	}

	size := bounds.Size()
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > size.X && size.Z > size.Y {
		axis = 2
	}

	sorted := make([]*Triangle, len(triangles))
	copy(sorted, triangles)
	sort.Slice(sorted, func(i, j int) bool {
		return axisComponent(sorted[i].Centroid(), axis) < axisComponent(sorted[j].Centroid(), axis)
	})

	mid := len(sorted) / 2
	return &bvhNode{
		bounds: bounds,
		left:   buildBVH(sorted[:mid]),
		right:  buildBVH(sorted[mid:]),
	}
}

func axisComponent(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (n *bvhNode) isLeaf() bool {
	return n.triangles != nil
}
