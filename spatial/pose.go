// Package spatial implements the rigid-body math used by the collision engine:
// poses backed by dual quaternions, orientations, rotation matrices, and
// axis-aligned bounding boxes.
package spatial

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/mechsuite/prox/utils"
)

// Pose represents a rigid placement in 3D space, a rotation combined with a translation.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// dualQuaternion is the canonical Pose implementation. The real part holds the
// rotation as a unit quaternion and the dual part encodes the translation.
type dualQuaternion struct {
	dualquat.Number
}

func newDualQuaternion() *dualQuaternion {
	return &dualQuaternion{dualquat.Number{
		Real: quat.Number{Real: 1},
		Dual: quat.Number{},
	}}
}

func newDualQuaternionFromRotation(o Orientation) *dualQuaternion {
	return &dualQuaternion{dualquat.Number{
		Real: o.Quaternion(),
		Dual: quat.Number{},
	}}
}

func newDualQuaternionFromPose(p Pose) *dualQuaternion {
	if q, ok := p.(*dualQuaternion); ok {
		return q.clone()
	}
	q := newDualQuaternionFromRotation(p.Orientation())
	q.setTranslation(p.Point())
	return q
}

// NewZeroPose returns a pose at the origin with no rotation.
func NewZeroPose() Pose {
	return newDualQuaternion()
}

// NewPose returns a pose at the given point with the given orientation.
func NewPose(pt r3.Vector, o Orientation) Pose {
	q := newDualQuaternionFromRotation(o)
	q.setTranslation(pt)
	return q
}

// NewPoseFromPoint returns a pose at the given point with no rotation.
func NewPoseFromPoint(pt r3.Vector) Pose {
	q := newDualQuaternion()
	q.setTranslation(pt)
	return q
}

// NewPoseFromOrientation returns a pose at the origin with the given orientation.
func NewPoseFromOrientation(o Orientation) Pose {
	return newDualQuaternionFromRotation(o)
}

// Point returns the translation component of the pose.
func (q *dualQuaternion) Point() r3.Vector {
	t := quat.Mul(quat.Scale(2, q.Dual), quat.Conj(q.Real))
	return r3.Vector{X: t.Imag, Y: t.Jmag, Z: t.Kmag}
}

// Orientation returns the rotation component of the pose.
func (q *dualQuaternion) Orientation() Orientation {
	o := quaternion(q.Real)
	return &o
}

func (q *dualQuaternion) String() string {
	pt := q.Point()
	aa := q.Orientation().AxisAngles()
	return fmt.Sprintf("Point: X:%.2f, Y:%.2f, Z:%.2f | Rotation: Theta:%.2f, X:%.2f, Y:%.2f, Z:%.2f",
		pt.X, pt.Y, pt.Z, aa.Theta, aa.RX, aa.RY, aa.RZ)
}

// setTranslation sets the dual part against the current rotation.
func (q *dualQuaternion) setTranslation(pt r3.Vector) {
	q.Dual = quat.Scale(0.5, quat.Mul(quat.Number{Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}, q.Real))
}

func (q *dualQuaternion) clone() *dualQuaternion {
	// dual quaternions are primitives all the way down
	return &dualQuaternion{q.Number}
}

// normalize rescales the real part back to a unit quaternion. Composition of
// many poses accumulates floating point drift which this removes.
func (q *dualQuaternion) normalize() {
	if vecLen := quat.Abs(q.Real); vecLen != 1 {
		q.Real = quat.Scale(1/vecLen, q.Real)
	}
}

// Compose returns the pose resulting from applying b in the frame of a.
func Compose(a, b Pose) Pose {
	qa := newDualQuaternionFromPose(a)
	qb := newDualQuaternionFromPose(b)
	result := &dualQuaternion{dualquat.Mul(qa.Number, qb.Number)}
	result.normalize()
	return result
}

// PoseInverse returns the pose which, composed with the input, yields identity.
func PoseInverse(p Pose) Pose {
	q := newDualQuaternionFromPose(p)
	return &dualQuaternion{dualquat.ConjQuat(q.Number)}
}

// PoseBetween returns the pose that transforms a into b, i.e. Compose(a, PoseBetween(a, b)) == b.
func PoseBetween(a, b Pose) Pose {
	qa := newDualQuaternionFromPose(a)
	qb := newDualQuaternionFromPose(b)
	result := &dualQuaternion{dualquat.Mul(dualquat.ConjQuat(qa.Number), qb.Number)}
	result.normalize()
	return result
}

// TransformPoint applies the pose to a point, rotating then translating it.
func TransformPoint(p Pose, pt r3.Vector) r3.Vector {
	return Compose(p, NewPoseFromPoint(pt)).Point()
}

// Interpolate returns a pose along the screw motion between p1 and p2.
// by=0 yields p1 and by=1 yields p2; the translation is interpolated linearly
// and the rotation by spherical interpolation of the unit quaternions.
func Interpolate(p1, p2 Pose, by float64) Pose {
	pt := p1.Point().Mul(1 - by).Add(p2.Point().Mul(by))
	o := slerpOrientation(p1.Orientation(), p2.Orientation(), by)
	return NewPose(pt, o)
}

// PoseAlmostCoincident returns whether two poses share a translation to within a loose default epsilon.
func PoseAlmostCoincident(a, b Pose) bool {
	return PoseAlmostCoincidentEps(a, b, 1e-8)
}

// PoseAlmostCoincidentEps returns whether two poses share a translation to within the given epsilon.
func PoseAlmostCoincidentEps(a, b Pose, epsilon float64) bool {
	ptA, ptB := a.Point(), b.Point()
	return utils.Float64AlmostEqual(ptA.X, ptB.X, epsilon) &&
		utils.Float64AlmostEqual(ptA.Y, ptB.Y, epsilon) &&
		utils.Float64AlmostEqual(ptA.Z, ptB.Z, epsilon)
}

// PoseAlmostEqual returns whether two poses are close in both translation and orientation.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-6)
}

// PoseAlmostEqualEps returns whether two poses are within epsilon in translation
// and orientation.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return PoseAlmostCoincidentEps(a, b, epsilon) && OrientationAlmostEqual(a.Orientation(), b.Orientation())
}
