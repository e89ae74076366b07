// Package utils contains small numeric helpers shared across the engine.
package utils

import "gonum.org/v1/gonum/floats/scalar"

// Float64AlmostEqual returns whether two float64s are within the given epsilon of each other.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return scalar.EqualWithinAbs(a, b, epsilon)
}

// Clamp returns v limited to the closed interval [low, high].
func Clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
