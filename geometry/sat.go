package geometry

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
	"github.com/mechsuite/prox/utils"
)

// separatingAxisGap projects two boxes onto the given axis and returns the gap
// between them along it. Per the separating hyperplane theorem a positive
// return proves the boxes do not collide.
func separatingAxisGap(positionDelta, axis r3.Vector, halfSizeA, halfSizeB [3]float64, rmA, rmB *spatial.RotationMatrix) float64 {
	sum := math.Abs(positionDelta.Dot(axis))
	for i := 0; i < 3; i++ {
		sum -= math.Abs(rmA.Row(i).Mul(halfSizeA[i]).Dot(axis))
		sum -= math.Abs(rmB.Row(i).Mul(halfSizeB[i]).Dot(axis))
	}
	return sum
}

// boxVsBoxCollision returns whether the two boxes collide. The SAT can exit
// early on the first separating axis, making this cheaper than boxVsBoxDistance.
func boxVsBoxCollision(a, b *box) bool {
	centerDist := b.centerPt.Sub(a.centerPt)
	if centerDist.Norm()-(a.sphereR+b.sphereR) > 0 {
		return false
	}

	rmA := a.rotationMatrix()
	rmB := b.rotationMatrix()
	for i := 0; i < 3; i++ {
		if separatingAxisGap(centerDist, rmA.Row(i), a.halfSize, b.halfSize, rmA, rmB) > 0 {
			return false
		}
		if separatingAxisGap(centerDist, rmB.Row(i), a.halfSize, b.halfSize, rmA, rmB) > 0 {
			return false
		}
		for j := 0; j < 3; j++ {
			crossProductPlane := rmA.Row(i).Cross(rmB.Row(j))

			// if edges are parallel, this check is already accounted for by one
			// of the face projections, so skip this case
			if !utils.Float64AlmostEqual(crossProductPlane.Norm(), 0, floatEpsilon) {
				if separatingAxisGap(centerDist, crossProductPlane.Normalize(), a.halfSize, b.halfSize, rmA, rmB) > 0 {
					return false
				}
			}
		}
	}
	return true
}

// boxVsBoxSATGap returns the maximum gap over all 15 separating axes together
// with the winning axis. A negative gap is the penetration depth of the
// minimum translation to separate the boxes.
func boxVsBoxSATGap(a, b *box) (float64, r3.Vector) {
	centerDist := b.centerPt.Sub(a.centerPt)
	rmA := a.rotationMatrix()
	rmB := b.rotationMatrix()

	best := math.Inf(-1)
	var bestAxis r3.Vector
	checkAxis := func(axis r3.Vector) {
		if gap := separatingAxisGap(centerDist, axis, a.halfSize, b.halfSize, rmA, rmB); gap > best {
			best = gap
			bestAxis = axis
		}
	}

	for i := 0; i < 3; i++ {
		checkAxis(rmA.Row(i))
		checkAxis(rmB.Row(i))
		for j := 0; j < 3; j++ {
			crossProductPlane := rmA.Row(i).Cross(rmB.Row(j))
			if !utils.Float64AlmostEqual(crossProductPlane.Norm(), 0, floatEpsilon) {
				checkAxis(crossProductPlane.Normalize())
			}
		}
	}
	return best, bestAxis
}

// boxVsBoxDistance returns a signed distance between two boxes: the exact
// separation when disjoint, or the negated SAT penetration depth when colliding.
func boxVsBoxDistance(a, b *box) float64 {
	gap, _ := boxVsBoxSATGap(a, b)
	if gap <= 0 {
		return gap
	}
	// the SAT gap underestimates the distance for edge-edge configurations, so
	// refine by enumerating closest vertex-to-box and edge-to-edge features
	return boxVsBoxSeparationDist(a, b)
}

// boxVsBoxSeparationDist computes the exact Euclidean distance between two
// non-colliding boxes by checking all vertex-to-box and edge-to-edge feature pairs.
func boxVsBoxSeparationDist(a, b *box) float64 {
	vertsA := a.vertices()
	vertsB := b.vertices()

	minDist := math.Inf(1)
	for i := range vertsA {
		if d := vertsA[i].Sub(b.closestPoint(vertsA[i])).Norm(); d < minDist {
			minDist = d
		}
	}
	for i := range vertsB {
		if d := vertsB[i].Sub(a.closestPoint(vertsB[i])).Norm(); d < minDist {
			minDist = d
		}
	}
	for _, ea := range boxEdgeIndices {
		for _, eb := range boxEdgeIndices {
			if d := SegmentDistanceToSegment(vertsA[ea[0]], vertsA[ea[1]], vertsB[eb[0]], vertsB[eb[1]]); d < minDist {
				minDist = d
			}
		}
	}
	return minDist
}

// separatingAxisGap1D is the capsule variant of separatingAxisGap: the capsule
// is modeled as a degenerate box spanning capVec, so only one extent term
// remains on the capsule side. The capsule radius is not included.
func separatingAxisGap1D(positionDelta, capVec, axis r3.Vector, halfSizeB [3]float64, rmB *spatial.RotationMatrix) float64 {
	sum := math.Abs(positionDelta.Dot(axis))
	for i := 0; i < 3; i++ {
		sum -= math.Abs(rmB.Row(i).Mul(halfSizeB[i]).Dot(axis))
	}
	sum -= math.Abs(capVec.Dot(axis))
	return sum
}

// capsuleVsBoxSATGap returns the maximum gap over the capsule/box separating
// axes, not yet reduced by the capsule radius.
func capsuleVsBoxSATGap(c *capsule, b *box) float64 {
	centerDist := b.centerPt.Sub(c.center)
	rmA := c.rotationMatrix()
	rmB := b.rotationMatrix()

	best := math.Inf(-1)
	checkAxis := func(axis r3.Vector) {
		if gap := separatingAxisGap1D(centerDist, c.capVec, axis, b.halfSize, rmB); gap > best {
			best = gap
		}
	}

	for i := 0; i < 3; i++ {
		checkAxis(rmA.Row(i))
		checkAxis(rmB.Row(i))
		for j := 0; j < 3; j++ {
			crossProductPlane := rmA.Row(i).Cross(rmB.Row(j))
			if !utils.Float64AlmostEqual(crossProductPlane.Norm(), 0, floatEpsilon) {
				checkAxis(crossProductPlane.Normalize())
			}
		}
	}
	return best
}

// capsuleVsBoxDistance returns the signed distance between a capsule and a box,
// negative when penetrating.
func capsuleVsBoxDistance(c *capsule, b *box) float64 {
	gap := capsuleVsBoxSATGap(c, b) - c.radius
	if gap <= 0 {
		return gap
	}
	// SAT is exact for penetration but conservative for separation; measure the
	// true separation against the box's triangle mesh
	return capsuleVsMeshDistance(c, b.toMesh())
}

// capsuleVsBoxCollision returns whether the capsule and box collide, exiting
// early on the first separating axis.
func capsuleVsBoxCollision(c *capsule, b *box) bool {
	centerDist := b.centerPt.Sub(c.center)
	if centerDist.Norm()-(c.length/2+b.sphereR) > 0 {
		return false
	}

	rmA := c.rotationMatrix()
	rmB := b.rotationMatrix()
	for i := 0; i < 3; i++ {
		if separatingAxisGap1D(centerDist, c.capVec, rmA.Row(i), b.halfSize, rmB) > c.radius {
			return false
		}
		if separatingAxisGap1D(centerDist, c.capVec, rmB.Row(i), b.halfSize, rmB) > c.radius {
			return false
		}
		for j := 0; j < 3; j++ {
			crossProductPlane := rmA.Row(i).Cross(rmB.Row(j))
			if !utils.Float64AlmostEqual(crossProductPlane.Norm(), 0, floatEpsilon) {
				if separatingAxisGap1D(centerDist, c.capVec, crossProductPlane.Normalize(), b.halfSize, rmB) > c.radius {
					return false
				}
			}
		}
	}
	return true
}
