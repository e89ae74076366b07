package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

const gjkMaxIterations = 64

// supportPoint is a vertex of a simplex on the Minkowski difference A - B,
// carrying the points on each shape that produced it so that closest points
// can be reconstructed from barycentric weights.
type supportPoint struct {
	v r3.Vector // onA - onB

	onA r3.Vector
	onB r3.Vector
}

// gjkMinkowskiSupport returns support_A(d) - support_B(-d), a support point
// of the Minkowski difference A - B in direction d.
func gjkMinkowskiSupport(a, b supportable, d r3.Vector) supportPoint {
	onA := a.support(d)
	onB := b.support(d.Mul(-1))
	return supportPoint{v: onA.Sub(onB), onA: onA, onB: onB}
}

// gjkDistance computes the Euclidean distance between two convex shapes using
// the GJK (Gilbert-Johnson-Keerthi) algorithm, along with the closest point on
// each shape. Returns 0 with coincident points for overlapping shapes.
func gjkDistance(a, b supportable) (float64, r3.Vector, r3.Vector, error) {
	dist, pa, pb, _, err := gjkDistanceSimplex(a, b)
	return dist, pa, pb, err
}

// gjkDistanceSimplex is gjkDistance exposing the terminal simplex, which
// seeds the expanding polytope when penetration depth is needed.
func gjkDistanceSimplex(a, b supportable) (float64, r3.Vector, r3.Vector, []supportPoint, error) {
	d := b.centroid().Sub(a.centroid())
	if d.Norm2() < floatEpsilon*floatEpsilon {
		d = r3.Vector{X: 1}
	}

	w := gjkMinkowskiSupport(a, b, d)
	simplex := []supportPoint{w}
	weights := []float64{1}
	v := w.v

	const eps = 1e-10

	converged := false
	for iter := 0; iter < gjkMaxIterations; iter++ {
		vv := v.Norm2()
		if vv < 1e-20 {
			pa, pb := witnessPoints(simplex, weights)
			return 0, pa, pb, simplex, nil
		}

		d = v.Mul(-1)
		w = gjkMinkowskiSupport(a, b, d)

		if vv-v.Dot(w.v) <= eps*vv {
			converged = true
			break
		}

		simplex = append(simplex, w)
		switch len(simplex) {
		case 2:
			v, simplex, weights = gjkClosestOnSegment(simplex[0], simplex[1])
		case 3:
			v, simplex, weights = gjkClosestOnTriangle(simplex[0], simplex[1], simplex[2])
		case 4:
			v, simplex, weights = gjkClosestOnTetrahedron(simplex)
		}
	}
	if !converged {
		return 0, r3.Vector{}, r3.Vector{}, nil, newConvergenceError("GJK", gjkMaxIterations)
	}

	pa, pb := witnessPoints(simplex, weights)
	return v.Norm(), pa, pb, simplex, nil
}

// gjkIntersects reports whether two convex shapes overlap, growing the simplex
// toward the origin and exiting as soon as the origin is provably outside.
func gjkIntersects(a, b supportable) (bool, error) {
	dist, _, _, err := gjkDistance(a, b)
	if err != nil {
		return false, err
	}
	return dist <= floatEpsilon, nil
}

// witnessPoints reconstructs the closest point on each shape from barycentric
// weights over the simplex vertices.
func witnessPoints(simplex []supportPoint, weights []float64) (r3.Vector, r3.Vector) {
	var pa, pb r3.Vector
	for i, s := range simplex {
		pa = pa.Add(s.onA.Mul(weights[i]))
		pb = pb.Add(s.onB.Mul(weights[i]))
	}
	return pa, pb
}

// gjkClosestOnSegment returns the closest point on segment [a,b] to the origin,
// along with the reduced simplex and its barycentric weights.
func gjkClosestOnSegment(a, b supportPoint) (r3.Vector, []supportPoint, []float64) {
	ab := b.v.Sub(a.v)
	denom := ab.Norm2()
	if denom < 1e-30 {
		return a.v, []supportPoint{a}, []float64{1}
	}
	t := a.v.Mul(-1).Dot(ab) / denom
	if t <= 0 {
		return a.v, []supportPoint{a}, []float64{1}
	}
	if t >= 1 {
		return b.v, []supportPoint{b}, []float64{1}
	}
	return a.v.Add(ab.Mul(t)), []supportPoint{a, b}, []float64{1 - t, t}
}

// gjkClosestOnTriangle returns the closest point on triangle [a,b,c] to the
// origin, along with the reduced simplex and its barycentric weights. Uses
// Ericson's Voronoi region method from "Real-Time Collision Detection".
func gjkClosestOnTriangle(a, b, c supportPoint) (r3.Vector, []supportPoint, []float64) {
	ab := b.v.Sub(a.v)
	ac := c.v.Sub(a.v)
	ao := a.v.Mul(-1)

	d1 := ab.Dot(ao)
	d2 := ac.Dot(ao)
	if d1 <= 0 && d2 <= 0 {
		return a.v, []supportPoint{a}, []float64{1}
	}

	bo := b.v.Mul(-1)
	d3 := ab.Dot(bo)
	d4 := ac.Dot(bo)
	if d3 >= 0 && d4 <= d3 {
		return b.v, []supportPoint{b}, []float64{1}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.v.Add(ab.Mul(v)), []supportPoint{a, b}, []float64{1 - v, v}
	}

	co := c.v.Mul(-1)
	d5 := ab.Dot(co)
	d6 := ac.Dot(co)
	if d6 >= 0 && d5 <= d6 {
		return c.v, []supportPoint{c}, []float64{1}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.v.Add(ac.Mul(w)), []supportPoint{a, c}, []float64{1 - w, w}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.v.Add(c.v.Sub(b.v).Mul(w)), []supportPoint{b, c}, []float64{1 - w, w}
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.v.Add(ab.Mul(v)).Add(ac.Mul(w)), []supportPoint{a, b, c}, []float64{1 - v - w, v, w}
}

// gjkOriginInTetrahedron checks whether the origin is inside the tetrahedron
// defined by the four given points, by verifying the origin is on the interior
// side of every face.
func gjkOriginInTetrahedron(pts []supportPoint) bool {
	type face struct{ v0, v1, v2, opp int }
	faces := [4]face{
		{0, 1, 2, 3},
		{0, 1, 3, 2},
		{0, 2, 3, 1},
		{1, 2, 3, 0},
	}
	for _, f := range faces {
		p0, p1, p2 := pts[f.v0].v, pts[f.v1].v, pts[f.v2].v
		normal := p1.Sub(p0).Cross(p2.Sub(p0))
		dOrigin := normal.Dot(p0.Mul(-1))
		dOpp := normal.Dot(pts[f.opp].v.Sub(p0))
		if dOrigin*dOpp < 0 {
			return false
		}
	}
	return true
}

// gjkClosestOnTetrahedron returns the closest point on the tetrahedron to the
// origin. If the origin is inside, returns the zero vector and the barycentric
// coordinates of the origin within the tetrahedron.
func gjkClosestOnTetrahedron(pts []supportPoint) (r3.Vector, []supportPoint, []float64) {
	if gjkOriginInTetrahedron(pts) {
		return r3.Vector{}, pts, originBarycentric(pts)
	}
	faces := [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
	bestDist := math.Inf(1)
	var bestV r3.Vector
	var bestS []supportPoint
	var bestW []float64

	for _, f := range faces {
		v, s, w := gjkClosestOnTriangle(pts[f[0]], pts[f[1]], pts[f[2]])
		if d := v.Norm2(); d < bestDist {
			bestDist = d
			bestV = v
			bestS = s
			bestW = w
		}
	}
	return bestV, bestS, bestW
}

// originBarycentric returns the barycentric coordinates of the origin inside
// the tetrahedron, computed from signed sub-volumes.
func originBarycentric(pts []supportPoint) []float64 {
	signedVolume := func(a, b, c, d r3.Vector) float64 {
		return b.Sub(a).Cross(c.Sub(a)).Dot(d.Sub(a))
	}
	o := r3.Vector{}
	total := signedVolume(pts[0].v, pts[1].v, pts[2].v, pts[3].v)
	if math.Abs(total) < 1e-30 {
		return []float64{0.25, 0.25, 0.25, 0.25}
	}
	return []float64{
		signedVolume(o, pts[1].v, pts[2].v, pts[3].v) / total,
		signedVolume(pts[0].v, o, pts[2].v, pts[3].v) / total,
		signedVolume(pts[0].v, pts[1].v, o, pts[3].v) / total,
		signedVolume(pts[0].v, pts[1].v, pts[2].v, o) / total,
	}
}
