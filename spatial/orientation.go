package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Orientation expresses the rotation of a rigid object or frame of reference
// in 3D Euclidean space.
type Orientation interface {
	Quaternion() quat.Number
	RotationMatrix() *RotationMatrix
	AxisAngles() *R4AA
}

// quaternion wraps a unit quat.Number as an Orientation.
type quaternion quat.Number

// NewZeroOrientation returns an orientation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{Real: 1}
}

// NewOrientationFromQuaternion normalizes the given quaternion into an Orientation.
// A zero quaternion is treated as identity.
func NewOrientationFromQuaternion(q quat.Number) Orientation {
	n := quatNorm(q)
	if n == 0 {
		return NewZeroOrientation()
	}
	o := quaternion(quat.Scale(1/n, q))
	return &o
}

// NewOrientationFromAxisAngle returns the orientation rotating by theta radians
// about the given axis. A zero axis yields the identity orientation.
func NewOrientationFromAxisAngle(theta float64, axis r3.Vector) Orientation {
	if axis.Norm2() == 0 {
		return NewZeroOrientation()
	}
	aa := R4AA{Theta: theta, RX: axis.X, RY: axis.Y, RZ: axis.Z}
	aa.Normalize()
	return NewOrientationFromQuaternion(aa.ToQuat())
}

// Quaternion returns the orientation as a unit quaternion.
func (q *quaternion) Quaternion() quat.Number {
	return quat.Number(*q)
}

// RotationMatrix returns the orientation as a rotation matrix.
func (q *quaternion) RotationMatrix() *RotationMatrix {
	return newRotationMatrixFromQuaternion(quat.Number(*q))
}

// AxisAngles returns the orientation in axis-angle representation, matching the
// Eigen AngleAxis convention.
func (q *quaternion) AxisAngles() *R4AA {
	n := quat.Number(*q)
	denom := quatImagNorm(n)

	theta := 2 * math.Atan2(denom, math.Abs(n.Real))
	if n.Real < 0 {
		theta *= -1
	}

	if denom < 1e-6 {
		return &R4AA{theta, 1, 0, 0}
	}
	return &R4AA{theta, n.Imag / denom, n.Jmag / denom, n.Kmag / denom}
}

// OrientationBetween returns the orientation representing the difference between the two given orientations.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q := quaternion(quat.Mul(o2.Quaternion(), quat.Conj(o1.Quaternion())))
	return &q
}

// OrientationInverse returns the orientation representing the opposite rotation.
func OrientationInverse(o Orientation) Orientation {
	q := quaternion(quat.Conj(o.Quaternion()))
	return &q
}

// OrientationAlmostEqual returns whether two orientations represent approximately the same rotation.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// QuaternionAlmostEqual checks two quaternions for element-wise closeness,
// accounting for the q/-q double cover of rotations.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	if quatDiffNorm(a, b) < tol {
		return true
	}
	return quatDiffNorm(a, quat.Scale(-1, b)) < tol
}

// slerpOrientation spherically interpolates between two orientations.
func slerpOrientation(o1, o2 Orientation, by float64) Orientation {
	m1 := mglQuat(o1.Quaternion())
	m2 := mglQuat(o2.Quaternion())
	s := mgl64.QuatSlerp(m1, m2, by)
	return NewOrientationFromQuaternion(quat.Number{Real: s.W, Imag: s.V.X(), Jmag: s.V.Y(), Kmag: s.V.Z()})
}

func mglQuat(q quat.Number) mgl64.Quat {
	return mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}
}

// quatNorm returns the norm of the quaternion over all four components.
func quatNorm(q quat.Number) float64 {
	return quat.Abs(q)
}

// quatImagNorm returns the norm of the imaginary part only.
func quatImagNorm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

func quatDiffNorm(a, b quat.Number) float64 {
	d := quat.Sub(a, b)
	return quatNorm(d)
}

// R4AA represents an R4 axis-angle rotation: theta radians about the unit axis (RX, RY, RZ).
type R4AA struct {
	Theta float64
	RX    float64
	RY    float64
	RZ    float64
}

// Normalize rescales the axis component to unit length.
func (aa *R4AA) Normalize() {
	norm := math.Sqrt(aa.RX*aa.RX + aa.RY*aa.RY + aa.RZ*aa.RZ)
	if norm == 0 {
		aa.RX, aa.RY, aa.RZ = 1, 0, 0
		return
	}
	aa.RX /= norm
	aa.RY /= norm
	aa.RZ /= norm
}

// ToQuat converts the axis-angle to a unit quaternion.
func (aa *R4AA) ToQuat() quat.Number {
	s := math.Sin(aa.Theta / 2)
	return quat.Number{
		Real: math.Cos(aa.Theta / 2),
		Imag: s * aa.RX,
		Jmag: s * aa.RY,
		Kmag: s * aa.RZ,
	}
}
