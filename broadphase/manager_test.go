package broadphase

import (
	"fmt"
	"math"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/mechsuite/prox/collision"
	"github.com/mechsuite/prox/geometry"
	"github.com/mechsuite/prox/spatial"
)

func makeSphereObject(t *testing.T, center r3.Vector, radius float64) *collision.Object {
	t.Helper()
	sphere, err := geometry.NewSphere(spatial.NewZeroPose(), radius, "")
	test.That(t, err, test.ShouldBeNil)
	return collision.NewObjectAtPose(sphere, spatial.NewPoseFromPoint(center))
}

// a line of unit spheres spaced 3 apart, with every third pair overlapping
func makeSphereRow(t *testing.T, n int) []*collision.Object {
	t.Helper()
	objs := make([]*collision.Object, 0, n)
	for i := 0; i < n; i++ {
		x := float64(i) * 3
		if i%3 == 2 {
			x -= 1.5
		}
		objs = append(objs, makeSphereObject(t, r3.Vector{X: x}, 1))
	}
	return objs
}

func bruteForceCollisions(t *testing.T, objs []*collision.Object) int {
	t.Helper()
	count := 0
	for i := 0; i < len(objs); i++ {
		for j := i + 1; j < len(objs); j++ {
			n, err := collision.Collide(objs[i], objs[j], nil, nil)
			test.That(t, err, test.ShouldBeNil)
			count += n
		}
	}
	return count
}

func TestManagerCollideMatchesBruteForce(t *testing.T) {
	logger := golog.NewTestLogger(t)
	objs := makeSphereRow(t, 12)

	manager := NewManager(logger)
	manager.RegisterObjects(objs)
	manager.Setup()
	test.That(t, manager.Size(), test.ShouldEqual, 12)

	pairs := 0
	err := manager.Collide(nil, func(a, b *collision.Object, _ *CollisionData) (bool, error) {
		n, err := collision.Collide(a, b, nil, nil)
		if err != nil {
			return true, err
		}
		pairs += n
		return false, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pairs, test.ShouldEqual, bruteForceCollisions(t, objs))
}

func TestManagerCollideWithCulls(t *testing.T) {
	logger := golog.NewTestLogger(t)
	manager := NewManager(logger)
	for i := 0; i < 10; i++ {
		manager.RegisterObject(makeSphereObject(t, r3.Vector{X: float64(i) * 100}, 1))
	}

	// far from everything: the tree never reaches narrow phase
	probe := makeSphereObject(t, r3.Vector{Y: 1000}, 1)
	visited := 0
	err := manager.CollideWith(probe, nil, func(a, b *collision.Object, _ *CollisionData) (bool, error) {
		visited++
		return false, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, visited, test.ShouldEqual, 0)

	// overlapping the third sphere
	probe = makeSphereObject(t, r3.Vector{X: 200.5}, 1)
	data := NewCollisionData(nil)
	err = manager.CollideWith(probe, data, DefaultCollisionCallback)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.Done, test.ShouldBeTrue)
}

func TestManagerCollideTightBoundsCulled(t *testing.T) {
	// the gap between these spheres is smaller than the leaf fattening
	// margin on each side, so their fattened tree bounds overlap while
	// their tight world bounds stay disjoint
	logger := golog.NewTestLogger(t)
	manager := NewManager(logger)
	manager.RegisterObject(makeSphereObject(t, r3.Vector{}, 1))
	manager.RegisterObject(makeSphereObject(t, r3.Vector{X: 2.05}, 1))

	visited := 0
	err := manager.Collide(nil, func(a, b *collision.Object, _ *CollisionData) (bool, error) {
		visited++
		return false, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, visited, test.ShouldEqual, 0)

	probe := makeSphereObject(t, r3.Vector{X: 4.1}, 1)
	err = manager.CollideWith(probe, nil, func(a, b *collision.Object, _ *CollisionData) (bool, error) {
		visited++
		return false, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, visited, test.ShouldEqual, 0)

	other := NewManager(logger)
	other.RegisterObject(probe)
	err = manager.CollideManagers(other, nil, func(a, b *collision.Object, _ *CollisionData) (bool, error) {
		visited++
		return false, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, visited, test.ShouldEqual, 0)
}

func TestManagerCollideEarlyStop(t *testing.T) {
	logger := golog.NewTestLogger(t)
	manager := NewManager(logger)
	// all ten spheres overlap pairwise
	for i := 0; i < 10; i++ {
		manager.RegisterObject(makeSphereObject(t, r3.Vector{X: float64(i) * 0.1}, 1))
	}

	visited := 0
	err := manager.Collide(nil, func(a, b *collision.Object, _ *CollisionData) (bool, error) {
		visited++
		return true, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, visited, test.ShouldEqual, 1)
}

func TestManagerDistance(t *testing.T) {
	logger := golog.NewTestLogger(t)
	manager := NewManager(logger)
	manager.RegisterObject(makeSphereObject(t, r3.Vector{}, 1))
	manager.RegisterObject(makeSphereObject(t, r3.Vector{X: 5}, 1))
	manager.RegisterObject(makeSphereObject(t, r3.Vector{X: 50}, 1))

	data := NewDistanceData(nil)
	err := manager.Distance(data, DefaultDistanceCallback)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.MinDistance, test.ShouldAlmostEqual, 3, 1e-6)

	probe := makeSphereObject(t, r3.Vector{X: 47}, 1)
	data = NewDistanceData(nil)
	err = manager.DistanceWith(probe, data, DefaultDistanceCallback)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.MinDistance, test.ShouldAlmostEqual, 1, 1e-6)
}

func TestManagerDistanceManagers(t *testing.T) {
	logger := golog.NewTestLogger(t)
	m1 := NewManager(logger)
	m2 := NewManager(logger)
	m1.RegisterObject(makeSphereObject(t, r3.Vector{}, 1))
	m1.RegisterObject(makeSphereObject(t, r3.Vector{X: 100}, 1))
	m2.RegisterObject(makeSphereObject(t, r3.Vector{X: 10}, 1))

	data := NewDistanceData(nil)
	err := m1.DistanceManagers(m2, data, DefaultDistanceCallback)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.MinDistance, test.ShouldAlmostEqual, 8, 1e-6)
}

func TestManagerUpdate(t *testing.T) {
	logger := golog.NewTestLogger(t)
	manager := NewManager(logger)
	a := makeSphereObject(t, r3.Vector{}, 1)
	b := makeSphereObject(t, r3.Vector{X: 50}, 1)
	manager.RegisterObjects([]*collision.Object{a, b})

	data := NewCollisionData(nil)
	err := manager.Collide(data, DefaultCollisionCallback)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.Done, test.ShouldBeFalse)

	b.SetPose(spatial.NewPoseFromPoint(r3.Vector{X: 1}))
	manager.Update()

	data = NewCollisionData(nil)
	err = manager.Collide(data, DefaultCollisionCallback)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.Done, test.ShouldBeTrue)
}

func TestManagerStaleTraversal(t *testing.T) {
	logger := golog.NewTestLogger(t)
	manager := NewManager(logger)
	for i := 0; i < 4; i++ {
		manager.RegisterObject(makeSphereObject(t, r3.Vector{X: float64(i) * 0.5}, 1))
	}

	err := manager.Collide(nil, func(a, b *collision.Object, _ *CollisionData) (bool, error) {
		manager.RegisterObject(makeSphereObject(t, r3.Vector{Y: 100}, 1))
		return false, nil
	})
	test.That(t, err, test.ShouldEqual, ErrStaleTraversal)
}

func TestManagerStaleAfterMove(t *testing.T) {
	logger := golog.NewTestLogger(t)
	manager := NewManager(logger)
	obj := makeSphereObject(t, r3.Vector{}, 1)
	manager.RegisterObject(obj)

	obj.SetPose(spatial.NewPoseFromPoint(r3.Vector{X: 1}))
	err := manager.Collide(nil, func(a, b *collision.Object, _ *CollisionData) (bool, error) {
		return false, nil
	})
	test.That(t, errors.Is(err, ErrStaleTraversal), test.ShouldBeTrue)

	manager.Update()
	err = manager.Collide(nil, func(a, b *collision.Object, _ *CollisionData) (bool, error) {
		return false, nil
	})
	test.That(t, err, test.ShouldBeNil)
}

func TestManagerUnregisterAndClear(t *testing.T) {
	logger := golog.NewTestLogger(t)
	manager := NewManager(logger)
	objs := makeSphereRow(t, 6)
	manager.RegisterObjects(objs)

	manager.UnregisterObject(objs[0])
	test.That(t, manager.Size(), test.ShouldEqual, 5)
	test.That(t, len(manager.Objects()), test.ShouldEqual, 5)

	manager.Clear()
	test.That(t, manager.Size(), test.ShouldEqual, 0)
	err := manager.Collide(nil, func(a, b *collision.Object, _ *CollisionData) (bool, error) {
		return false, nil
	})
	test.That(t, err, test.ShouldBeNil)
}

func TestTreeBalance(t *testing.T) {
	var tree aabbTree
	n := 64
	for i := 0; i < n; i++ {
		sphere, err := geometry.NewSphere(spatial.NewZeroPose(), 1, fmt.Sprintf("s%d", i))
		test.That(t, err, test.ShouldBeNil)
		obj := collision.NewObjectAtPose(sphere, spatial.NewPoseFromPoint(r3.Vector{X: float64(i) * 3}))
		tree.insert(newLeaf(obj))
	}
	// a balanced tree over 64 leaves stays close to the log bound
	maxHeight := 2 * int(math.Ceil(math.Log2(float64(n))))
	test.That(t, tree.root.height, test.ShouldBeLessThanOrEqualTo, maxHeight)

	// every leaf remains reachable
	found := 0
	tree.query(spatial.NewInfiniteAABB(), func(node *treeNode) bool {
		found++
		return true
	})
	test.That(t, found, test.ShouldEqual, n)
}
