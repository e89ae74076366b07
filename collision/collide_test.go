package collision

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/mechsuite/prox/geometry"
	"github.com/mechsuite/prox/spatial"
)

func makeSphereObject(t *testing.T, center r3.Vector, radius float64) *Object {
	t.Helper()
	sphere, err := geometry.NewSphere(spatial.NewZeroPose(), radius, "")
	test.That(t, err, test.ShouldBeNil)
	return NewObjectAtPose(sphere, spatial.NewPoseFromPoint(center))
}

func makeBoxObject(t *testing.T, center r3.Vector, dims r3.Vector) *Object {
	t.Helper()
	box, err := geometry.NewBox(spatial.NewZeroPose(), dims, "")
	test.That(t, err, test.ShouldBeNil)
	return NewObjectAtPose(box, spatial.NewPoseFromPoint(center))
}

func TestCollideBoolean(t *testing.T) {
	s1 := makeSphereObject(t, r3.Vector{}, 1)
	s2 := makeSphereObject(t, r3.Vector{X: 1.5}, 1)
	s3 := makeSphereObject(t, r3.Vector{X: 5}, 1)

	t.Run("overlapping", func(t *testing.T) {
		result := &CollisionResult{}
		n, err := Collide(s1, s2, nil, result)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, n, test.ShouldEqual, 1)
		test.That(t, result.NumContacts(), test.ShouldEqual, 0)
	})

	t.Run("separated", func(t *testing.T) {
		result := &CollisionResult{}
		n, err := Collide(s1, s3, nil, result)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, n, test.ShouldEqual, 0)
	})
}

func TestCollideContacts(t *testing.T) {
	s1 := makeSphereObject(t, r3.Vector{}, 1)
	s2 := makeSphereObject(t, r3.Vector{X: 1.5}, 1)

	req := NewCollisionRequest()
	req.EnableContact = true
	result := &CollisionResult{}
	n, err := Collide(s1, s2, req, result)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 1)
	test.That(t, result.NumContacts(), test.ShouldEqual, 1)

	contact := result.Contacts[0]
	test.That(t, contact.Object1, test.ShouldEqual, s1)
	test.That(t, contact.Object2, test.ShouldEqual, s2)
	test.That(t, contact.Depth, test.ShouldAlmostEqual, 0.5, 1e-9)
	test.That(t, contact.Normal.X, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, contact.PointOn1.X, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, contact.PointOn2.X, test.ShouldAlmostEqual, 0.5, 1e-9)
}

func TestCollideMaxContacts(t *testing.T) {
	s1 := makeSphereObject(t, r3.Vector{}, 1)
	s2 := makeSphereObject(t, r3.Vector{X: 1.5}, 1)

	req := NewCollisionRequest()
	req.EnableContact = true
	req.MaxContacts = 1
	result := &CollisionResult{}

	n, err := Collide(s1, s2, req, result)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 1)

	// at capacity, no further contacts are generated
	n, err = Collide(s1, s2, req, result)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 0)
	test.That(t, result.NumContacts(), test.ShouldEqual, 1)
}

func TestObjectPoseCaching(t *testing.T) {
	obj := makeBoxObject(t, r3.Vector{}, r3.Vector{X: 2, Y: 2, Z: 2})
	v0 := obj.Version()

	bounds := obj.AABB()
	test.That(t, bounds.Max.X, test.ShouldAlmostEqual, 1, 1e-9)

	obj.SetPose(spatial.NewPoseFromPoint(r3.Vector{X: 10}))
	test.That(t, obj.Version(), test.ShouldNotEqual, v0)
	bounds = obj.AABB()
	test.That(t, bounds.Min.X, test.ShouldAlmostEqual, 9, 1e-9)
	test.That(t, bounds.Max.X, test.ShouldAlmostEqual, 11, 1e-9)
}
