package geometry

import (
	"encoding/json"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/mechsuite/prox/spatial"
)

func TestGeometryConfigRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		geometry Geometry
	}{
		{"box", makeTestBox(spatial.NewZeroOrientation(), r3.Vector{X: 1, Y: 2, Z: 3}, r3.Vector{X: 2, Y: 4, Z: 6})},
		{"sphere", func() Geometry { s, _ := NewSphere(spatial.NewPoseFromPoint(r3.Vector{X: 5}), 2, ""); return s }()},
		{"capsule", makeTestCapsule(spatial.NewZeroOrientation(), r3.Vector{Z: 1}, 1, 4)},
		{"cylinder", func() Geometry { c, _ := NewCylinder(spatial.NewZeroPose(), 1, 4, ""); return c }()},
		{"cone", func() Geometry { c, _ := NewCone(spatial.NewZeroPose(), 1, 4, ""); return c }()},
		{"ellipsoid", func() Geometry { e, _ := NewEllipsoid(spatial.NewZeroPose(), r3.Vector{X: 1, Y: 2, Z: 3}, ""); return e }()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.geometry)
			test.That(t, err, test.ShouldBeNil)

			config := &GeometryConfig{}
			test.That(t, json.Unmarshal(data, config), test.ShouldBeNil)
			parsed, err := config.ParseConfig()
			test.That(t, err, test.ShouldBeNil)

			test.That(t, spatial.PoseAlmostCoincident(parsed.Pose(), tc.geometry.Pose()), test.ShouldBeTrue)
			dist, _, _, err := Distance(parsed, tc.geometry)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, dist, test.ShouldBeLessThanOrEqualTo, 0)
		})
	}
}

func TestParseConfigUnknownType(t *testing.T) {
	config := &GeometryConfig{Type: "dodecahedron"}
	_, err := config.ParseConfig()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrInvalidGeometry), test.ShouldBeTrue)
}

func TestSupportAABB(t *testing.T) {
	c, _ := NewCylinder(spatial.NewZeroPose(), 1, 4, "")
	bounds := c.AABB()
	test.That(t, bounds.Min.X, test.ShouldAlmostEqual, -1)
	test.That(t, bounds.Max.X, test.ShouldAlmostEqual, 1)
	test.That(t, bounds.Min.Z, test.ShouldAlmostEqual, -2)
	test.That(t, bounds.Max.Z, test.ShouldAlmostEqual, 2)

	co, _ := NewCone(spatial.NewZeroPose(), 1, 4, "")
	bounds = co.AABB()
	test.That(t, bounds.Max.Z, test.ShouldAlmostEqual, 2)
	test.That(t, bounds.Min.Z, test.ShouldAlmostEqual, -2)
	test.That(t, bounds.Min.X, test.ShouldAlmostEqual, -1)
}
