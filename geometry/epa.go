package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

const (
	epaMaxIterations = 32

	// epaTolerance is the convergence threshold. When a new support point
	// improves the closest face distance by less than this, the face is on
	// the boundary of the Minkowski difference.
	epaTolerance = 1e-7

	// epaMinFaceDistance marks faces too close to the origin as degenerate.
	epaMinFaceDistance = 1e-9
)

// epaFace is a triangular face of the expanding polytope with its outward
// normal and distance from the origin.
type epaFace struct {
	pts    [3]supportPoint
	normal r3.Vector
	dist   float64
}

// newEPAFace builds a face from three polytope vertices, orienting the normal
// away from the given interior reference point.
func newEPAFace(a, b, c supportPoint, interior r3.Vector) epaFace {
	normal := b.v.Sub(a.v).Cross(c.v.Sub(a.v))
	if normal.Norm2() < 1e-24 {
		return epaFace{pts: [3]supportPoint{a, b, c}, normal: r3.Vector{Z: 1}, dist: 0}
	}
	normal = normal.Normalize()
	if normal.Dot(interior.Sub(a.v)) > 0 {
		normal = normal.Mul(-1)
	}
	return epaFace{pts: [3]supportPoint{a, b, c}, normal: normal, dist: a.v.Dot(normal)}
}

// epaPenetration computes the penetration depth, contact normal, and a
// witness point on each shape for two overlapping convex shapes using the
// Expanding Polytope Algorithm. The simplex argument seeds the polytope and
// need not enclose the origin. The normal points from shape a toward shape b.
func epaPenetration(a, b supportable, simplex []supportPoint) (float64, r3.Vector, r3.Vector, r3.Vector, error) {
	simplex = completeSimplex(a, b, simplex)
	if len(simplex) < 4 {
		return 0, r3.Vector{}, r3.Vector{}, r3.Vector{}, newConvergenceError("EPA seeding", len(simplex))
	}

	interior := r3.Vector{}
	for _, s := range simplex {
		interior = interior.Add(s.v)
	}
	interior = interior.Mul(0.25)

	faces := []epaFace{
		newEPAFace(simplex[0], simplex[1], simplex[2], interior),
		newEPAFace(simplex[0], simplex[2], simplex[3], interior),
		newEPAFace(simplex[0], simplex[3], simplex[1], interior),
		newEPAFace(simplex[1], simplex[3], simplex[2], interior),
	}

	for iter := 0; iter < epaMaxIterations; iter++ {
		closest := closestEPAFace(faces)
		face := faces[closest]

		w := gjkMinkowskiSupport(a, b, face.normal)
		growth := w.v.Dot(face.normal) - face.dist
		if growth < epaTolerance {
			pa, pb := faceWitnessPoints(face)
			depth := face.dist
			if depth < 0 {
				depth = 0
			}
			return depth, face.normal, pa, pb, nil
		}

		faces = expandPolytope(faces, w, closest)
		if len(faces) == 0 {
			break
		}
	}
	return 0, r3.Vector{}, r3.Vector{}, r3.Vector{}, newConvergenceError("EPA", epaMaxIterations)
}

// completeSimplex pads a degenerate GJK termination simplex out to a
// tetrahedron by sampling supports along the coordinate axes.
func completeSimplex(a, b supportable, simplex []supportPoint) []supportPoint {
	if len(simplex) >= 4 {
		return simplex
	}
	dirs := []r3.Vector{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	}
	for _, d := range dirs {
		if len(simplex) == 4 {
			break
		}
		w := gjkMinkowskiSupport(a, b, d)
		if !simplexContains(simplex, w) && !simplexDegenerate(simplex, w) {
			simplex = append(simplex, w)
		}
	}
	return simplex
}

func simplexContains(simplex []supportPoint, w supportPoint) bool {
	for _, s := range simplex {
		if s.v.Sub(w.v).Norm2() < 1e-20 {
			return true
		}
	}
	return false
}

// simplexDegenerate reports whether adding w would keep the simplex affinely
// dependent, a flat tetrahedron or collinear triangle.
func simplexDegenerate(simplex []supportPoint, w supportPoint) bool {
	switch len(simplex) {
	case 2:
		e := simplex[1].v.Sub(simplex[0].v)
		return e.Cross(w.v.Sub(simplex[0].v)).Norm2() < 1e-20
	case 3:
		n := simplex[1].v.Sub(simplex[0].v).Cross(simplex[2].v.Sub(simplex[0].v))
		return math.Abs(n.Dot(w.v.Sub(simplex[0].v))) < 1e-12
	default:
		return false
	}
}

func closestEPAFace(faces []epaFace) int {
	closest := 0
	minDist := faces[0].dist
	for i := 1; i < len(faces); i++ {
		if faces[i].dist < minDist {
			closest = i
			minDist = faces[i].dist
		}
	}
	return closest
}

// faceWitnessPoints projects the origin onto the face plane and converts the
// projection to barycentric coordinates over the face, reconstructing the
// contact point on each shape.
func faceWitnessPoints(face epaFace) (r3.Vector, r3.Vector) {
	p := face.normal.Mul(face.dist)
	a, b, c := face.pts[0].v, face.pts[1].v, face.pts[2].v

	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Norm2()
	d01 := v0.Dot(v1)
	d11 := v1.Norm2()
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-24 {
		return face.pts[0].onA, face.pts[0].onB
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	u := 1 - v - w

	weights := []float64{u, v, w}
	return witnessPoints(face.pts[:], weights)
}

// expandPolytope removes every face visible from the new support point and
// stitches new faces from the horizon edges to it.
func expandPolytope(faces []epaFace, w supportPoint, closest int) []epaFace {
	visible := make([]bool, len(faces))
	anyVisible := false
	for i, f := range faces {
		if w.v.Sub(f.pts[0].v).Dot(f.normal) > 0 {
			visible[i] = true
			anyVisible = true
		}
	}
	if !anyVisible {
		visible[closest] = true
	}

	// horizon edges border exactly one visible face
	type edgeKey struct{ a, b r3.Vector }
	normalize := func(a, b r3.Vector) edgeKey {
		if a.X != b.X {
			if a.X < b.X {
				return edgeKey{a, b}
			}
			return edgeKey{b, a}
		}
		if a.Y != b.Y {
			if a.Y < b.Y {
				return edgeKey{a, b}
			}
			return edgeKey{b, a}
		}
		if a.Z < b.Z {
			return edgeKey{a, b}
		}
		return edgeKey{b, a}
	}

	type edge struct{ a, b supportPoint }
	edgeCount := map[edgeKey]int{}
	edgePts := map[edgeKey]edge{}
	for i, f := range faces {
		if !visible[i] {
			continue
		}
		pairs := [3][2]supportPoint{
			{f.pts[0], f.pts[1]},
			{f.pts[1], f.pts[2]},
			{f.pts[2], f.pts[0]},
		}
		for _, pr := range pairs {
			k := normalize(pr[0].v, pr[1].v)
			edgeCount[k]++
			edgePts[k] = edge{pr[0], pr[1]}
		}
	}

	kept := faces[:0:0]
	interior := r3.Vector{}
	count := 0
	for i, f := range faces {
		if !visible[i] {
			kept = append(kept, f)
		}
		for _, p := range f.pts {
			interior = interior.Add(p.v)
			count++
		}
	}
	interior = interior.Mul(1 / float64(count))

	for k, n := range edgeCount {
		if n != 1 {
			continue
		}
		e := edgePts[k]
		kept = append(kept, newEPAFace(e.a, e.b, w, interior))
	}
	return kept
}
