package spatial

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPoseBasics(t *testing.T) {
	t.Run("zero pose is identity", func(t *testing.T) {
		p := NewZeroPose()
		test.That(t, p.Point(), test.ShouldResemble, r3.Vector{})
		test.That(t, OrientationAlmostEqual(p.Orientation(), NewZeroOrientation()), test.ShouldBeTrue)
	})

	t.Run("point round trip", func(t *testing.T) {
		pt := r3.Vector{X: 1, Y: -2, Z: 3.5}
		p := NewPoseFromPoint(pt)
		test.That(t, PoseAlmostCoincident(p, NewPoseFromPoint(pt)), test.ShouldBeTrue)
		test.That(t, p.Point().X, test.ShouldAlmostEqual, 1)
		test.That(t, p.Point().Y, test.ShouldAlmostEqual, -2)
		test.That(t, p.Point().Z, test.ShouldAlmostEqual, 3.5)
	})

	t.Run("compose with inverse is identity", func(t *testing.T) {
		p := NewPose(r3.Vector{X: 2, Y: 3, Z: 4}, NewOrientationFromAxisAngle(math.Pi/3, r3.Vector{X: 0, Y: 1, Z: 1}))
		id := Compose(p, PoseInverse(p))
		test.That(t, PoseAlmostEqual(id, NewZeroPose()), test.ShouldBeTrue)
	})

	t.Run("pose between", func(t *testing.T) {
		a := NewPose(r3.Vector{X: 1, Y: 0, Z: 0}, NewOrientationFromAxisAngle(math.Pi/2, r3.Vector{Z: 1}))
		b := NewPose(r3.Vector{X: 0, Y: 2, Z: 1}, NewOrientationFromAxisAngle(-math.Pi/4, r3.Vector{X: 1}))
		between := PoseBetween(a, b)
		test.That(t, PoseAlmostEqual(Compose(a, between), b), test.ShouldBeTrue)
	})

	t.Run("rotation transforms composed point", func(t *testing.T) {
		// rotating (1,0,0) by 90 degrees about Z yields (0,1,0)
		p := NewPoseFromOrientation(NewOrientationFromAxisAngle(math.Pi/2, r3.Vector{Z: 1}))
		moved := TransformPoint(p, r3.Vector{X: 1})
		test.That(t, moved.X, test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, moved.Y, test.ShouldAlmostEqual, 1, 1e-9)
		test.That(t, moved.Z, test.ShouldAlmostEqual, 0, 1e-9)
	})
}

func TestInterpolate(t *testing.T) {
	p1 := NewPoseFromPoint(r3.Vector{X: 0, Y: 0, Z: 0})
	p2 := NewPose(r3.Vector{X: 10, Y: 0, Z: 0}, NewOrientationFromAxisAngle(math.Pi/2, r3.Vector{Z: 1}))

	t.Run("endpoints", func(t *testing.T) {
		test.That(t, PoseAlmostEqual(Interpolate(p1, p2, 0), p1), test.ShouldBeTrue)
		test.That(t, PoseAlmostEqual(Interpolate(p1, p2, 1), p2), test.ShouldBeTrue)
	})

	t.Run("midpoint translation is linear", func(t *testing.T) {
		mid := Interpolate(p1, p2, 0.5)
		test.That(t, mid.Point().X, test.ShouldAlmostEqual, 5)
	})

	t.Run("midpoint rotation is half the angle", func(t *testing.T) {
		mid := Interpolate(p1, p2, 0.5)
		aa := mid.Orientation().AxisAngles()
		test.That(t, math.Abs(aa.Theta), test.ShouldAlmostEqual, math.Pi/4, 1e-8)
	})
}

func TestRotationMatrix(t *testing.T) {
	t.Run("identity rows are world axes", func(t *testing.T) {
		rm := NewZeroOrientation().RotationMatrix()
		test.That(t, rm.Row(0), test.ShouldResemble, r3.Vector{X: 1})
		test.That(t, rm.Row(1), test.ShouldResemble, r3.Vector{Y: 1})
		test.That(t, rm.Row(2), test.ShouldResemble, r3.Vector{Z: 1})
	})

	t.Run("apply matches quaternion rotation", func(t *testing.T) {
		o := NewOrientationFromAxisAngle(math.Pi/2, r3.Vector{Z: 1})
		rm := o.RotationMatrix()
		rotated := rm.Apply(r3.Vector{X: 1})
		test.That(t, rotated.X, test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, rotated.Y, test.ShouldAlmostEqual, 1, 1e-9)
	})

	t.Run("apply inverse undoes apply", func(t *testing.T) {
		o := NewOrientationFromAxisAngle(1.1, r3.Vector{X: 1, Y: 2, Z: -1})
		rm := o.RotationMatrix()
		v := r3.Vector{X: 0.3, Y: -0.8, Z: 2.2}
		back := rm.ApplyInverse(rm.Apply(v))
		test.That(t, back.X, test.ShouldAlmostEqual, v.X, 1e-9)
		test.That(t, back.Y, test.ShouldAlmostEqual, v.Y, 1e-9)
		test.That(t, back.Z, test.ShouldAlmostEqual, v.Z, 1e-9)
	})
}
