package spatial

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a 3x3 matrix in row major order where Row(i) is the
// direction of the rotated frame's i-th axis expressed in world coordinates.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates a rotation matrix from the given row major slice of 9 values.
func NewRotationMatrix(m [9]float64) *RotationMatrix {
	return &RotationMatrix{m}
}

func newRotationMatrixFromQuaternion(q quat.Number) *RotationMatrix {
	m := mglQuat(q).Mat4()
	// mgl's matrix maps local to world with axes in its columns; store the axes
	// as our rows.
	return &RotationMatrix{[9]float64{
		m.At(0, 0), m.At(1, 0), m.At(2, 0),
		m.At(0, 1), m.At(1, 1), m.At(2, 1),
		m.At(0, 2), m.At(1, 2), m.At(2, 2),
	}}
}

// Row returns the r3.Vector corresponding to the given row of the matrix.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{
		X: rm.mat[3*row],
		Y: rm.mat[3*row+1],
		Z: rm.mat[3*row+2],
	}
}

// At returns the value stored at the given row and column.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[3*row+col]
}

// Apply rotates a vector from the local frame into the world frame.
func (rm *RotationMatrix) Apply(v r3.Vector) r3.Vector {
	return rm.Row(0).Mul(v.X).Add(rm.Row(1).Mul(v.Y)).Add(rm.Row(2).Mul(v.Z))
}

// ApplyInverse rotates a world frame vector into the local frame.
func (rm *RotationMatrix) ApplyInverse(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.Row(0).Dot(v),
		Y: rm.Row(1).Dot(v),
		Z: rm.Row(2).Dot(v),
	}
}
