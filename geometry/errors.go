package geometry

import (
	"github.com/pkg/errors"
)

// Sentinel errors for the failure taxonomy. Specific constructors wrap these so
// callers can test with errors.Is while still getting a descriptive message.
var (
	// ErrInvalidGeometry is returned when a shape cannot be constructed from the
	// given dimensions or data.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrUnsupportedPair is returned when no narrow-phase algorithm exists for a
	// combination of shape types.
	ErrUnsupportedPair = errors.New("unsupported geometry pair")

	// ErrConvergence is returned when an iterative algorithm exhausted its
	// iteration budget on ill-conditioned input.
	ErrConvergence = errors.New("iterative solver failed to converge")
)

func newBadGeometryDimensionsError(g Geometry) error {
	return errors.Wrapf(ErrInvalidGeometry, "dimensions for a geometry of type %T must be positive", g)
}

func newBadCapsuleLengthError(length, radius float64) error {
	return errors.Wrapf(ErrInvalidGeometry, "capsule length %f must be at least twice the radius %f", length, radius)
}

func newNonFiniteVertexError(index int) error {
	return errors.Wrapf(ErrInvalidGeometry, "vertex %d is not finite", index)
}

func newEmptyMeshError() error {
	return errors.Wrap(ErrInvalidGeometry, "mesh must contain at least one triangle")
}

func newBadTriangleIndexError(triangle, index, numVertices int) error {
	return errors.Wrapf(ErrInvalidGeometry, "triangle %d references vertex %d, mesh has %d vertices", triangle, index, numVertices)
}

func newBadGeometryTypeError(geometryType string) error {
	return errors.Wrapf(ErrInvalidGeometry, "unknown geometry type %q", geometryType)
}

func newCollisionTypeUnsupportedError(a, b Geometry) error {
	return errors.Wrapf(ErrUnsupportedPair, "no algorithm for %T vs %T", a, b)
}

func newConvergenceError(what string, iterations int) error {
	return errors.Wrapf(ErrConvergence, "%s exceeded %d iterations", what, iterations)
}
