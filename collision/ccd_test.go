package collision

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/mechsuite/prox/geometry"
	"github.com/mechsuite/prox/spatial"
)

func TestContinuousCollideHeadOn(t *testing.T) {
	// unit sphere moving from x=-5 to x=5 toward a static unit sphere at
	// the origin: surfaces meet when the centers are 2 apart, at x=-2,
	// which is t=0.3 along the motion.
	moving := makeSphereObject(t, r3.Vector{X: -5}, 1)
	static := makeSphereObject(t, r3.Vector{}, 1)

	toc, result, err := ContinuousCollide(
		moving, spatial.NewPoseFromPoint(r3.Vector{X: 5}),
		static, static.Pose(),
		nil,
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Collides, test.ShouldBeTrue)
	test.That(t, toc, test.ShouldAlmostEqual, 0.3, 1e-3)
	test.That(t, result.ContactPose1.Point().X, test.ShouldAlmostEqual, -2, 1e-2)
}

func TestContinuousCollideInitialOverlap(t *testing.T) {
	s1 := makeSphereObject(t, r3.Vector{}, 1)
	s2 := makeSphereObject(t, r3.Vector{X: 0.5}, 1)

	toc, result, err := ContinuousCollide(
		s1, spatial.NewPoseFromPoint(r3.Vector{X: 10}),
		s2, s2.Pose(),
		nil,
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, toc, test.ShouldEqual, 0)
	test.That(t, result.Collides, test.ShouldBeTrue)
	test.That(t, spatial.PoseAlmostCoincident(result.ContactPose1, s1.Pose()), test.ShouldBeTrue)
}

func TestContinuousCollideMiss(t *testing.T) {
	// motion parallel to the static sphere, never closer than 3
	moving := makeSphereObject(t, r3.Vector{X: -5, Y: 5}, 1)
	static := makeSphereObject(t, r3.Vector{}, 1)

	toc, result, err := ContinuousCollide(
		moving, spatial.NewPoseFromPoint(r3.Vector{X: 5, Y: 5}),
		static, static.Pose(),
		nil,
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, toc, test.ShouldEqual, 1.0)
	test.That(t, result.Collides, test.ShouldBeFalse)
}

func TestContinuousCollideTouchAtEnd(t *testing.T) {
	// the spheres first touch exactly when the motion ends, which does
	// not count as a collision
	moving := makeSphereObject(t, r3.Vector{X: -10}, 1)
	static := makeSphereObject(t, r3.Vector{}, 1)

	toc, result, err := ContinuousCollide(
		moving, spatial.NewPoseFromPoint(r3.Vector{X: -2}),
		static, static.Pose(),
		nil,
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, toc, test.ShouldEqual, 1.0)
	test.That(t, result.Collides, test.ShouldBeFalse)
}

func TestContinuousCollideBothMoving(t *testing.T) {
	// symmetric approach, contact at the midpoint
	s1 := makeSphereObject(t, r3.Vector{X: -5}, 1)
	s2 := makeSphereObject(t, r3.Vector{X: 5}, 1)

	toc, result, err := ContinuousCollide(
		s1, spatial.NewPoseFromPoint(r3.Vector{X: 5}),
		s2, spatial.NewPoseFromPoint(r3.Vector{X: -5}),
		nil,
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Collides, test.ShouldBeTrue)
	test.That(t, toc, test.ShouldAlmostEqual, 0.4, 1e-3)
}

func TestContinuousCollideOffsetRotation(t *testing.T) {
	// unit sphere held at local offset (10,0,0), swung half a turn about
	// the object origin past a static unit sphere at (0,10,0). The arc
	// passes straight through the obstacle even though the endpoint
	// placements are nowhere near it: first contact where the center gap
	// closes to 2, at asin(0.98)/pi of the motion.
	arm, err := geometry.NewSphere(spatial.NewPoseFromPoint(r3.Vector{X: 10}), 1, "")
	test.That(t, err, test.ShouldBeNil)
	orbiter := NewObject(arm)
	static := makeSphereObject(t, r3.Vector{Y: 10}, 1)

	final := spatial.NewPoseFromOrientation(
		spatial.NewOrientationFromAxisAngle(math.Pi, r3.Vector{Z: 1}))
	toc, result, err := ContinuousCollide(orbiter, final, static, static.Pose(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Collides, test.ShouldBeTrue)
	test.That(t, toc, test.ShouldAlmostEqual, math.Asin(0.98)/math.Pi, 1e-3)

	dist, _, _, err := geometry.Distance(
		orbiter.Geometry().Transform(result.ContactPose1),
		static.Geometry().Transform(result.ContactPose2),
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dist, test.ShouldAlmostEqual, 0, 1e-3)
}

func TestContinuousCollideStatic(t *testing.T) {
	s1 := makeSphereObject(t, r3.Vector{}, 1)
	s2 := makeSphereObject(t, r3.Vector{X: 4}, 1)

	toc, result, err := ContinuousCollide(s1, s1.Pose(), s2, s2.Pose(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, toc, test.ShouldEqual, 1.0)
	test.That(t, result.Collides, test.ShouldBeFalse)
}

func TestContinuousCollideUnbounded(t *testing.T) {
	ground, err := geometry.NewHalfSpace(r3.Vector{Z: 1}, 0, "")
	test.That(t, err, test.ShouldBeNil)
	groundObj := NewObject(ground)
	ball := makeSphereObject(t, r3.Vector{Z: 5}, 1)

	t.Run("static halfspace", func(t *testing.T) {
		toc, result, err := ContinuousCollide(
			ball, spatial.NewPoseFromPoint(r3.Vector{Z: -5}),
			groundObj, groundObj.Pose(),
			nil,
		)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, result.Collides, test.ShouldBeTrue)
		// surface contact when the center reaches z=1, at t=0.4
		test.That(t, toc, test.ShouldAlmostEqual, 0.4, 1e-3)
	})

	t.Run("moving halfspace is rejected", func(t *testing.T) {
		_, _, err := ContinuousCollide(
			groundObj, spatial.NewPoseFromPoint(r3.Vector{Z: 1}),
			ball, ball.Pose(),
			nil,
		)
		test.That(t, err, test.ShouldEqual, ErrUnboundedMotion)
	})
}
