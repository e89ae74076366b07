package collision

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestDistanceBasic(t *testing.T) {
	s1 := makeSphereObject(t, r3.Vector{}, 1)
	s2 := makeSphereObject(t, r3.Vector{X: 4}, 1)

	dist, err := Distance(s1, s2, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dist, test.ShouldAlmostEqual, 2, 1e-9)
}

func TestDistanceTolerance(t *testing.T) {
	s1 := makeSphereObject(t, r3.Vector{}, 1)
	s2 := makeSphereObject(t, r3.Vector{X: 2 + 1e-8}, 1)

	req := NewDistanceRequest()
	req.Tolerance = 1e-6
	dist, err := Distance(s1, s2, req, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dist, test.ShouldEqual, 0)
}

func TestDistanceResultAccumulates(t *testing.T) {
	s1 := makeSphereObject(t, r3.Vector{}, 1)
	far := makeSphereObject(t, r3.Vector{X: 10}, 1)
	near := makeSphereObject(t, r3.Vector{X: 4}, 1)

	result := NewDistanceResult()
	test.That(t, math.IsInf(result.MinDistance, 1), test.ShouldBeTrue)

	_, err := Distance(s1, far, nil, result)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.MinDistance, test.ShouldAlmostEqual, 8, 1e-9)
	test.That(t, result.Object2, test.ShouldEqual, far)

	_, err = Distance(s1, near, nil, result)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.MinDistance, test.ShouldAlmostEqual, 2, 1e-9)
	test.That(t, result.Object2, test.ShouldEqual, near)

	// a larger distance does not displace the minimum
	_, err = Distance(s1, far, nil, result)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.MinDistance, test.ShouldAlmostEqual, 2, 1e-9)
	test.That(t, result.Object2, test.ShouldEqual, near)
}

func TestDistanceNearestPoints(t *testing.T) {
	s1 := makeSphereObject(t, r3.Vector{}, 1)
	s2 := makeSphereObject(t, r3.Vector{X: 4}, 1)

	req := NewDistanceRequest()
	req.EnableNearestPoints = true
	result := NewDistanceResult()
	_, err := Distance(s1, s2, req, result)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.NearestPoint1.X, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, result.NearestPoint2.X, test.ShouldAlmostEqual, 3, 1e-9)
}

func TestDistanceNegativeWhenPenetrating(t *testing.T) {
	b1 := makeBoxObject(t, r3.Vector{}, r3.Vector{X: 2, Y: 2, Z: 2})
	b2 := makeBoxObject(t, r3.Vector{X: 1.5}, r3.Vector{X: 2, Y: 2, Z: 2})

	dist, err := Distance(b1, b2, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dist, test.ShouldAlmostEqual, -0.5, 1e-6)
}
