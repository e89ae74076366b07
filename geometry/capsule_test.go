package geometry

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/mechsuite/prox/spatial"
)

func makeTestCapsule(o spatial.Orientation, pt r3.Vector, radius, length float64) Geometry {
	c, _ := NewCapsule(spatial.NewPose(pt, o), radius, length, "")
	return c
}

func TestCapsuleConstruction(t *testing.T) {
	t.Run("segment endpoints account for end caps", func(t *testing.T) {
		c := makeTestCapsule(spatial.NewZeroOrientation(), r3.Vector{Z: 0.1}, 1, 6.75).(*capsule)
		test.That(t, c.segA.X, test.ShouldAlmostEqual, 0)
		test.That(t, c.segA.Z, test.ShouldAlmostEqual, -2.275)
		test.That(t, c.segB.Z, test.ShouldAlmostEqual, 2.475)
	})

	t.Run("length shorter than diameter is rejected", func(t *testing.T) {
		_, err := NewCapsule(spatial.NewZeroPose(), 1, 1.5, "")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, errors.Is(err, ErrInvalidGeometry), test.ShouldBeTrue)
	})

	t.Run("length equal to diameter degenerates to a sphere", func(t *testing.T) {
		g, err := NewCapsule(spatial.NewZeroPose(), 1, 2, "")
		test.That(t, err, test.ShouldBeNil)
		_, ok := g.(*sphere)
		test.That(t, ok, test.ShouldBeTrue)
	})
}

func TestCapsuleVsCapsule(t *testing.T) {
	a := makeTestCapsule(spatial.NewZeroOrientation(), r3.Vector{}, 0.5, 2).(*capsule)
	b := makeTestCapsule(spatial.NewZeroOrientation(), r3.Vector{X: 3}, 0.5, 2).(*capsule)
	test.That(t, capsuleVsCapsuleDistance(a, b), test.ShouldAlmostEqual, 2)

	c := makeTestCapsule(spatial.NewZeroOrientation(), r3.Vector{X: 0.5}, 0.5, 2).(*capsule)
	test.That(t, capsuleVsCapsuleDistance(a, c), test.ShouldAlmostEqual, -0.5)
}

func TestCapsuleVsSphere(t *testing.T) {
	c := makeTestCapsule(spatial.NewZeroOrientation(), r3.Vector{}, 0.5, 2).(*capsule)
	s, err := NewSphere(spatial.NewPoseFromPoint(r3.Vector{Z: 5}), 1, "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, capsuleVsSphereDistance(c, s.(*sphere)), test.ShouldAlmostEqual, 3)
}

func TestCapsuleVsBox(t *testing.T) {
	t.Run("separated", func(t *testing.T) {
		c := makeTestCapsule(spatial.NewZeroOrientation(), r3.Vector{X: 5}, 0.5, 2).(*capsule)
		b := makeTestBox(spatial.NewZeroOrientation(), r3.Vector{}, r3.Vector{X: 2, Y: 2, Z: 2}).(*box)
		test.That(t, capsuleVsBoxCollision(c, b), test.ShouldBeFalse)
		test.That(t, capsuleVsBoxDistance(c, b), test.ShouldAlmostEqual, 3.5, 1e-3)
	})

	t.Run("overlapping", func(t *testing.T) {
		c := makeTestCapsule(spatial.NewZeroOrientation(), r3.Vector{X: 1}, 0.5, 2).(*capsule)
		b := makeTestBox(spatial.NewZeroOrientation(), r3.Vector{}, r3.Vector{X: 2, Y: 2, Z: 2}).(*box)
		test.That(t, capsuleVsBoxCollision(c, b), test.ShouldBeTrue)
		test.That(t, capsuleVsBoxDistance(c, b), test.ShouldBeLessThan, 0)
	})
}

func TestCapsuleVsTriangle(t *testing.T) {
	c := makeTestCapsule(spatial.NewZeroOrientation(), r3.Vector{Z: 3}, 0.5, 2).(*capsule)
	tri := NewTriangle(
		r3.Vector{X: -1, Y: -1, Z: 0},
		r3.Vector{X: 1, Y: -1, Z: 0},
		r3.Vector{X: 0, Y: 1, Z: 0},
	)
	// capsule bottom cap reaches z=2; triangle plane is z=0
	test.That(t, capsuleVsTriangleDistance(c, tri), test.ShouldAlmostEqual, 2)
}
