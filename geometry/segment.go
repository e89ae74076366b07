package geometry

import (
	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/utils"
)

// ClosestPointSegmentPoint returns the point on the segment [segA, segB]
// closest to the query point.
func ClosestPointSegmentPoint(segA, segB, query r3.Vector) r3.Vector {
	ab := segB.Sub(segA)
	denom := ab.Norm2()
	if denom < floatEpsilon*floatEpsilon {
		return segA
	}
	t := utils.Clamp(query.Sub(segA).Dot(ab)/denom, 0, 1)
	return segA.Add(ab.Mul(t))
}

// DistToLineSegment returns the distance from a point to the segment [segA, segB].
func DistToLineSegment(segA, segB, point r3.Vector) float64 {
	return point.Sub(ClosestPointSegmentPoint(segA, segB, point)).Norm()
}

// ClosestPointsSegmentSegment returns the pair of closest points between the
// segments [p1, q1] and [p2, q2].
// Reference: Ericson, "Real-Time Collision Detection", section 5.1.9.
func ClosestPointsSegmentSegment(p1, q1, p2, q2 r3.Vector) (r3.Vector, r3.Vector) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Norm2()
	e := d2.Norm2()
	f := d2.Dot(r)

	var s, t float64
	eps := floatEpsilon * floatEpsilon
	switch {
	case a <= eps && e <= eps:
		// both segments degenerate to points
		return p1, p2
	case a <= eps:
		s = 0
		t = utils.Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			t = 0
			s = utils.Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > eps {
				s = utils.Clamp((b*f-c*e)/denom, 0, 1)
			} else {
				// parallel segments, pick an endpoint
				s = 0
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = utils.Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = utils.Clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

// SegmentDistanceToSegment returns the distance between the segments [p1, q1] and [p2, q2].
func SegmentDistanceToSegment(p1, q1, p2, q2 r3.Vector) float64 {
	c1, c2 := ClosestPointsSegmentSegment(p1, q1, p2, q2)
	return c1.Sub(c2).Norm()
}

// PlaneNormal returns the unit normal of the plane through three points.
func PlaneNormal(p0, p1, p2 r3.Vector) r3.Vector {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if n.Norm2() < floatEpsilon*floatEpsilon {
		return r3.Vector{Z: 1}
	}
	return n.Normalize()
}

// closestPointsSegmentTriangle returns the closest point on the segment to the
// triangle and the matching closest point on the triangle.
func closestPointsSegmentTriangle(segA, segB r3.Vector, t *Triangle) (r3.Vector, r3.Vector) {
	// if the segment crosses the triangle plane inside the triangle, that
	// crossing is the closest pair
	d0 := t.normal.Dot(segA.Sub(t.p0))
	d1 := t.normal.Dot(segB.Sub(t.p0))
	if d0*d1 < 0 {
		frac := d0 / (d0 - d1)
		crossing := segA.Add(segB.Sub(segA).Mul(frac))
		if inside, ok := t.closestInsidePoint(crossing); ok {
			return crossing, inside
		}
	}

	// otherwise the closest pair involves a triangle edge or a segment endpoint
	bestSeg, bestTri := ClosestPointsSegmentSegment(segA, segB, t.p0, t.p1)
	bestDist := bestSeg.Sub(bestTri).Norm2()

	if s, tr := ClosestPointsSegmentSegment(segA, segB, t.p1, t.p2); s.Sub(tr).Norm2() < bestDist {
		bestSeg, bestTri = s, tr
		bestDist = s.Sub(tr).Norm2()
	}
	if s, tr := ClosestPointsSegmentSegment(segA, segB, t.p2, t.p0); s.Sub(tr).Norm2() < bestDist {
		bestSeg, bestTri = s, tr
		bestDist = s.Sub(tr).Norm2()
	}

	for _, end := range []r3.Vector{segA, segB} {
		if onTri := t.ClosestPointToPoint(end); end.Sub(onTri).Norm2() < bestDist {
			bestSeg, bestTri = end, onTri
			bestDist = end.Sub(onTri).Norm2()
		}
	}
	return bestSeg, bestTri
}
