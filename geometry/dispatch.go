package geometry

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

// ContactPoint describes a single contact between two colliding shapes.
// Point1 and Point2 are the deepest points of each shape inside the other,
// coincident when the shapes merely touch. Normal points from the first shape
// toward the second and Depth is how far to translate the second shape along
// Normal to separate them.
type ContactPoint struct {
	Point1 r3.Vector
	Point2 r3.Vector
	Normal r3.Vector
	Depth  float64
}

// shapeRank orders the closed variant set so that every pair can be
// canonicalized to a single case in the dispatch switch.
func shapeRank(g Geometry) int {
	switch g.(type) {
	case *box:
		return 0
	case *sphere:
		return 1
	case *ellipsoid:
		return 2
	case *capsule:
		return 3
	case *cylinder:
		return 4
	case *cone:
		return 5
	case *Triangle:
		return 6
	case *Mesh:
		return 7
	case *plane:
		return 8
	case *halfSpace:
		return 9
	default:
		return -1
	}
}

// supportAABB bounds a convex shape by sampling its support mapping along the
// six axis directions.
func supportAABB(s supportable) spatial.AABB {
	return spatial.NewAABB(
		r3.Vector{
			X: s.support(r3.Vector{X: -1}).X,
			Y: s.support(r3.Vector{Y: -1}).Y,
			Z: s.support(r3.Vector{Z: -1}).Z,
		},
		r3.Vector{
			X: s.support(r3.Vector{X: 1}).X,
			Y: s.support(r3.Vector{Y: 1}).Y,
			Z: s.support(r3.Vector{Z: 1}).Z,
		},
	)
}

// BoundingSphere returns a center and radius guaranteed to contain the shape.
// The final return is false for unbounded shapes (half spaces and planes).
func BoundingSphere(g Geometry) (r3.Vector, float64, bool) {
	switch s := g.(type) {
	case *Mesh:
		return s.centroid(), s.boundingSphereR(), true
	case supportable:
		return s.centroid(), s.boundingSphereR(), true
	default:
		return r3.Vector{}, math.Inf(1), false
	}
}

// Distance computes the signed distance between two shapes along with the
// closest point on each. A negative distance is the penetration depth of
// overlapping shapes. Pairs of unbounded shapes are unsupported.
func Distance(g1, g2 Geometry) (float64, r3.Vector, r3.Vector, error) {
	if shapeRank(g1) < 0 || shapeRank(g2) < 0 {
		return 0, r3.Vector{}, r3.Vector{}, newCollisionTypeUnsupportedError(g1, g2)
	}
	if shapeRank(g1) > shapeRank(g2) {
		dist, p2, p1, err := Distance(g2, g1)
		return dist, p1, p2, err
	}
	return distanceCanonical(g1, g2)
}

// distanceCanonical assumes shapeRank(g1) <= shapeRank(g2).
func distanceCanonical(g1, g2 Geometry) (float64, r3.Vector, r3.Vector, error) {
	switch other := g2.(type) {
	case *halfSpace:
		switch s := g1.(type) {
		case *halfSpace, *plane:
			return 0, r3.Vector{}, r3.Vector{}, newCollisionTypeUnsupportedError(g1, g2)
		case *Mesh:
			dist, onH, onM := halfSpaceVsMeshDistance(other, s)
			return dist, onM, onH, nil
		default:
			dist, onH, onS := halfSpaceVsSupportableDistance(other, g1.(supportable))
			return dist, onS, onH, nil
		}
	case *plane:
		switch s := g1.(type) {
		case *plane:
			return 0, r3.Vector{}, r3.Vector{}, newCollisionTypeUnsupportedError(g1, g2)
		case *Mesh:
			dist, onP, onM := planeVsMeshDistance(other, s)
			return dist, onM, onP, nil
		default:
			dist, onP, onS := planeVsSupportableDistance(other, g1.(supportable))
			return dist, onS, onP, nil
		}
	case *Mesh:
		switch s := g1.(type) {
		case *Mesh:
			dist, p1, p2 := meshVsMeshDistance(s, other)
			return dist, p1, p2, nil
		case *sphere:
			dist := meshVsSphereDistance(other, s)
			center := s.pose.Point()
			onMesh := other.closestPointToPoint(center)
			dir := safeDirection(onMesh.Sub(center))
			return dist, center.Add(dir.Mul(s.radius)), onMesh, nil
		default:
			dist, onM, onS, err := meshVsSupportableDistance(other, g1.(supportable), g1.AABB())
			return dist, onS, onM, err
		}
	default:
		return convexPairDistance(g1, g2)
	}
}

// convexPairDistance dispatches bounded convex pairs, preferring closed-form
// and SAT paths over iterative ones where they exist.
func convexPairDistance(g1, g2 Geometry) (float64, r3.Vector, r3.Vector, error) {
	switch a := g1.(type) {
	case *box:
		switch b := g2.(type) {
		case *box:
			dist, p1, p2, err := convexDistance(a, b)
			if err != nil || dist > floatEpsilon {
				return dist, p1, p2, err
			}
			// penetration depth from the exact feature enumeration,
			// witnesses from the polytope
			return boxVsBoxDistance(a, b), p1, p2, nil
		case *sphere:
			dist := sphereVsBoxDistance(b, a)
			center := b.pose.Point()
			onBox := a.closestPoint(center)
			if dist > floatEpsilon {
				dir := center.Sub(onBox).Normalize()
				return dist, onBox, center.Sub(dir.Mul(b.radius)), nil
			}
			_, p1, p2, err := convexDistance(a, b)
			return dist, p1, p2, err
		case *capsule:
			dist := capsuleVsBoxDistance(b, a)
			_, p2, p1, err := convexDistance(b, a)
			return dist, p1, p2, err
		}
	case *sphere:
		switch b := g2.(type) {
		case *sphere:
			dist := sphereVsSphereDistance(a, b)
			dir := safeDirection(b.pose.Point().Sub(a.pose.Point()))
			return dist, a.pose.Point().Add(dir.Mul(a.radius)), b.pose.Point().Sub(dir.Mul(b.radius)), nil
		case *capsule:
			dist := capsuleVsSphereDistance(b, a)
			center := a.pose.Point()
			onSeg := ClosestPointSegmentPoint(b.segA, b.segB, center)
			dir := safeDirection(onSeg.Sub(center))
			return dist, center.Add(dir.Mul(a.radius)), onSeg.Sub(dir.Mul(b.radius)), nil
		}
	case *capsule:
		switch b := g2.(type) {
		case *capsule:
			dist := capsuleVsCapsuleDistance(a, b)
			onA, onB := ClosestPointsSegmentSegment(a.segA, a.segB, b.segA, b.segB)
			dir := safeDirection(onB.Sub(onA))
			return dist, onA.Add(dir.Mul(a.radius)), onB.Sub(dir.Mul(b.radius)), nil
		case *Triangle:
			dist := capsuleVsTriangleDistance(a, b)
			onSeg, onTri := closestPointsSegmentTriangle(a.segA, a.segB, b)
			dir := safeDirection(onTri.Sub(onSeg))
			return dist, onSeg.Add(dir.Mul(a.radius)), onTri, nil
		}
	case *Triangle:
		if b, ok := g2.(*Triangle); ok {
			// triangles are flat, so their distance never goes negative
			pa, pb := closestPointsTriangleTriangle(a, b)
			return pa.Sub(pb).Norm(), pa, pb, nil
		}
	}
	return convexDistance(g1.(supportable), g2.(supportable))
}

// convexDistance handles any bounded convex pair: GJK for the separated case,
// falling back to the expanding polytope for penetration depth.
func convexDistance(s1, s2 supportable) (float64, r3.Vector, r3.Vector, error) {
	dist, p1, p2, simplex, err := gjkDistanceSimplex(s1, s2)
	if err != nil {
		return 0, r3.Vector{}, r3.Vector{}, err
	}
	if dist > floatEpsilon {
		return dist, p1, p2, nil
	}
	depth, _, pa, pb, err := epaPenetration(s1, s2, simplex)
	if err != nil {
		return 0, r3.Vector{}, r3.Vector{}, err
	}
	return -depth, pa, pb, nil
}

// safeDirection normalizes a vector, substituting the x axis for a degenerate
// input so callers always get a unit direction.
func safeDirection(v r3.Vector) r3.Vector {
	if v.Norm2() < floatEpsilon*floatEpsilon {
		return r3.Vector{X: 1}
	}
	return v.Normalize()
}

// Collides reports whether two shapes touch or overlap, using the cheapest
// test available for the pair and skipping witness computation entirely.
func Collides(g1, g2 Geometry) (bool, error) {
	if shapeRank(g1) < 0 || shapeRank(g2) < 0 {
		return false, newCollisionTypeUnsupportedError(g1, g2)
	}
	if shapeRank(g1) > shapeRank(g2) {
		return Collides(g2, g1)
	}

	if m1, ok := g1.(*Mesh); ok {
		if m2, ok := g2.(*Mesh); ok {
			return meshVsMeshCollision(m1, m2), nil
		}
	}
	switch g2.(type) {
	case *halfSpace, *plane, *Mesh:
		dist, _, _, err := distanceCanonical(g1, g2)
		if err != nil {
			return false, err
		}
		return dist <= floatEpsilon, nil
	}

	switch a := g1.(type) {
	case *box:
		switch b := g2.(type) {
		case *box:
			return boxVsBoxCollision(a, b), nil
		case *sphere:
			return sphereVsBoxDistance(b, a) <= floatEpsilon, nil
		case *capsule:
			return capsuleVsBoxCollision(b, a), nil
		}
	case *sphere:
		switch b := g2.(type) {
		case *sphere:
			return sphereVsSphereDistance(a, b) <= floatEpsilon, nil
		case *capsule:
			return capsuleVsSphereDistance(b, a) <= floatEpsilon, nil
		}
	case *capsule:
		if b, ok := g2.(*capsule); ok {
			return capsuleVsCapsuleDistance(a, b) <= floatEpsilon, nil
		}
	}
	return gjkIntersects(g1.(supportable), g2.(supportable))
}

// Contact computes contact information for a pair of shapes, returning nil
// when they do not touch. The normal points from g1 toward g2.
func Contact(g1, g2 Geometry) (*ContactPoint, error) {
	if shapeRank(g1) < 0 || shapeRank(g2) < 0 {
		return nil, newCollisionTypeUnsupportedError(g1, g2)
	}
	if shapeRank(g1) > shapeRank(g2) {
		ct, err := Contact(g2, g1)
		if ct != nil {
			ct.Point1, ct.Point2 = ct.Point2, ct.Point1
			ct.Normal = ct.Normal.Mul(-1)
		}
		return ct, err
	}
	return contactCanonical(g1, g2)
}

// contactCanonical assumes shapeRank(g1) <= shapeRank(g2).
func contactCanonical(g1, g2 Geometry) (*ContactPoint, error) {
	switch other := g2.(type) {
	case *halfSpace:
		dist, p1, p2, err := distanceCanonical(g1, g2)
		if err != nil || dist > floatEpsilon {
			return nil, err
		}
		// the half space interior is opposite its boundary normal
		return &ContactPoint{
			Point1: p1,
			Point2: p2,
			Normal: other.normal.Mul(-1),
			Depth:  math.Max(0, -dist),
		}, nil
	case *plane:
		dist, p1, p2, err := distanceCanonical(g1, g2)
		if err != nil || dist > floatEpsilon {
			return nil, err
		}
		center, _, _ := BoundingSphere(g1)
		normal := other.normal
		if center.Dot(other.normal)-other.offset > 0 {
			normal = normal.Mul(-1)
		}
		return &ContactPoint{
			Point1: p1,
			Point2: p2,
			Normal: normal,
			Depth:  math.Max(0, -dist),
		}, nil
	case *Mesh:
		dist, p1, p2, err := distanceCanonical(g1, g2)
		if err != nil || dist > floatEpsilon {
			return nil, err
		}
		// mesh surfaces have no interior, contacts are zero-depth touches
		c1, _, _ := BoundingSphere(g1)
		return &ContactPoint{
			Point1: p1,
			Point2: p2,
			Normal: safeDirection(other.centroid().Sub(c1)),
			Depth:  math.Max(0, -dist),
		}, nil
	default:
		return convexPairContact(g1, g2)
	}
}

func convexPairContact(g1, g2 Geometry) (*ContactPoint, error) {
	dist, p1, p2, err := convexPairDistance(g1, g2)
	if err != nil || dist > floatEpsilon {
		return nil, err
	}
	normal := safeDirection(p1.Sub(p2))
	if dist > -floatEpsilon {
		// touching contact, witnesses coincide
		s1 := g1.(supportable)
		s2 := g2.(supportable)
		normal = safeDirection(s2.centroid().Sub(s1.centroid()))
	}
	return &ContactPoint{
		Point1: p1,
		Point2: p2,
		Normal: normal,
		Depth:  math.Max(0, -dist),
	}, nil
}
