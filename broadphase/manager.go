package broadphase

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/mechsuite/prox/collision"
	"github.com/mechsuite/prox/spatial"
	"github.com/mechsuite/prox/utils"
)

// ErrStaleTraversal is returned when a traversal observes the manager being
// mutated underneath it, from a callback that registers, unregisters, or
// moves objects.
var ErrStaleTraversal = errors.New("broadphase manager modified during traversal")

type leafEntry struct {
	node    *treeNode
	version uint64
}

// Manager tracks a set of collision objects in a dynamic bounding volume
// tree and runs pairwise collision and distance traversals over them.
// Leaf bounds are fattened, so an object only needs reinsertion when it
// moves outside its fattened bounds. Managers are not safe for concurrent
// use.
type Manager struct {
	logger golog.Logger
	tree   aabbTree
	leaves map[*collision.Object]*leafEntry
	epoch  uint64
}

// NewManager returns an empty manager. A nil logger selects the default
// console logger.
func NewManager(logger golog.Logger) *Manager {
	if logger == nil {
		logger = utils.NewLogger("broadphase")
	}
	return &Manager{
		logger: logger,
		leaves: map[*collision.Object]*leafEntry{},
	}
}

// RegisterObject adds an object to the manager.
func (m *Manager) RegisterObject(obj *collision.Object) {
	if _, ok := m.leaves[obj]; ok {
		return
	}
	leaf := newLeaf(obj)
	m.tree.insert(leaf)
	m.leaves[obj] = &leafEntry{node: leaf, version: obj.Version()}
	m.epoch++
}

// RegisterObjects adds each object to the manager.
func (m *Manager) RegisterObjects(objs []*collision.Object) {
	for _, obj := range objs {
		m.RegisterObject(obj)
	}
}

// UnregisterObject removes an object from the manager.
func (m *Manager) UnregisterObject(obj *collision.Object) {
	entry, ok := m.leaves[obj]
	if !ok {
		return
	}
	m.tree.remove(entry.node)
	delete(m.leaves, obj)
	m.epoch++
}

// Setup prepares the manager for queries. Registration already keeps the
// tree valid, so this only reports the state of the structure.
func (m *Manager) Setup() {
	height := 0
	if m.tree.root != nil {
		height = m.tree.root.height
	}
	m.logger.Debugw("broadphase tree ready", "objects", len(m.leaves), "height", height)
}

// Update refreshes the bounds of every object whose pose changed since it
// was last seen, reinserting leaves that escaped their fattened bounds.
func (m *Manager) Update() {
	moved := 0
	for obj, entry := range m.leaves {
		if obj.Version() == entry.version {
			continue
		}
		entry.version = obj.Version()
		tight := obj.AABB()
		if entry.node.bounds.Contains(tight) {
			continue
		}
		m.tree.remove(entry.node)
		entry.node.bounds = tight.Extend(aabbMargin)
		m.tree.insert(entry.node)
		moved++
	}
	if moved > 0 {
		m.epoch++
		m.logger.Debugw("broadphase tree updated", "moved", moved)
	}
}

// UpdateObject refreshes a single object's bounds regardless of whether its
// fattened bounds still hold it.
func (m *Manager) UpdateObject(obj *collision.Object) {
	entry, ok := m.leaves[obj]
	if !ok {
		return
	}
	entry.version = obj.Version()
	m.tree.remove(entry.node)
	entry.node.bounds = obj.AABB().Extend(aabbMargin)
	m.tree.insert(entry.node)
	m.epoch++
}

// Clear removes all objects.
func (m *Manager) Clear() {
	m.tree.root = nil
	m.leaves = map[*collision.Object]*leafEntry{}
	m.epoch++
}

// Objects returns the managed objects in no particular order.
func (m *Manager) Objects() []*collision.Object {
	objs := make([]*collision.Object, 0, len(m.leaves))
	for obj := range m.leaves {
		objs = append(objs, obj)
	}
	return objs
}

// Size returns the number of managed objects.
func (m *Manager) Size() int {
	return len(m.leaves)
}

// checkFresh rejects queries over objects that moved since the manager
// last saw them. Update clears the condition.
func (m *Manager) checkFresh() error {
	for obj, entry := range m.leaves {
		if obj.Version() != entry.version {
			return errors.Wrapf(ErrStaleTraversal, "object %q moved without Update", obj.Label())
		}
	}
	return nil
}

// Collide runs the callback over every pair of objects with overlapping
// bounds and stops early when the callback asks to.
func (m *Manager) Collide(data *CollisionData, callback CollisionCallback) error {
	if err := m.checkFresh(); err != nil {
		return err
	}
	start := m.epoch
	var cbErr error
	m.tree.queryPairs(func(a, b *treeNode) bool {
		// leaf bounds are fattened; only pairs whose tight bounds overlap
		// reach the narrow phase
		if !a.object.AABB().Overlaps(b.object.AABB()) {
			return true
		}
		stop, err := callback(a.object, b.object, data)
		if err != nil {
			cbErr = err
			return false
		}
		return !stop
	})
	if cbErr != nil {
		return cbErr
	}
	if m.epoch != start {
		return ErrStaleTraversal
	}
	return nil
}

// CollideWith runs the callback against every managed object whose bounds
// overlap the given object's.
func (m *Manager) CollideWith(obj *collision.Object, data *CollisionData, callback CollisionCallback) error {
	if err := m.checkFresh(); err != nil {
		return err
	}
	start := m.epoch
	bounds := obj.AABB()
	var cbErr error
	m.tree.query(bounds, func(n *treeNode) bool {
		if n.object == obj || !bounds.Overlaps(n.object.AABB()) {
			return true
		}
		stop, err := callback(obj, n.object, data)
		if err != nil {
			cbErr = err
			return false
		}
		return !stop
	})
	if cbErr != nil {
		return cbErr
	}
	if m.epoch != start {
		return ErrStaleTraversal
	}
	return nil
}

// CollideManagers runs the callback over every cross pair of objects, one
// from each manager, with overlapping bounds.
func (m *Manager) CollideManagers(other *Manager, data *CollisionData, callback CollisionCallback) error {
	if err := m.checkFresh(); err != nil {
		return err
	}
	if err := other.checkFresh(); err != nil {
		return err
	}
	start, otherStart := m.epoch, other.epoch
	var cbErr error
	queryTrees(&m.tree, &other.tree, func(a, b *treeNode) bool {
		if !a.object.AABB().Overlaps(b.object.AABB()) {
			return true
		}
		stop, err := callback(a.object, b.object, data)
		if err != nil {
			cbErr = err
			return false
		}
		return !stop
	})
	if cbErr != nil {
		return cbErr
	}
	if m.epoch != start || other.epoch != otherStart {
		return ErrStaleTraversal
	}
	return nil
}

// Distance runs the callback over pairs of objects in increasing promise,
// pruning pairs whose bounds are already farther apart than the best
// distance the callback has recorded.
func (m *Manager) Distance(data *DistanceData, callback DistanceCallback) error {
	if err := m.checkFresh(); err != nil {
		return err
	}
	start := m.epoch
	if m.tree.root == nil || m.tree.root.isLeaf() {
		return nil
	}
	var cbErr error
	distancePairs(m.tree.root, m.tree.root, data, callback, &cbErr)
	if cbErr != nil {
		return cbErr
	}
	if m.epoch != start {
		return ErrStaleTraversal
	}
	return nil
}

// DistanceWith runs the callback against managed objects near the given
// object, pruning subtrees that cannot beat the best recorded distance.
func (m *Manager) DistanceWith(obj *collision.Object, data *DistanceData, callback DistanceCallback) error {
	if err := m.checkFresh(); err != nil {
		return err
	}
	start := m.epoch
	bounds := obj.AABB()
	var cbErr error
	distanceLeaves(m.tree.root, bounds, obj, data, callback, &cbErr)
	if cbErr != nil {
		return cbErr
	}
	if m.epoch != start {
		return ErrStaleTraversal
	}
	return nil
}

// DistanceManagers runs the callback over cross pairs of objects from the
// two managers with the same pruning as Distance.
func (m *Manager) DistanceManagers(other *Manager, data *DistanceData, callback DistanceCallback) error {
	if err := m.checkFresh(); err != nil {
		return err
	}
	if err := other.checkFresh(); err != nil {
		return err
	}
	start, otherStart := m.epoch, other.epoch
	if m.tree.root == nil || other.tree.root == nil {
		return nil
	}
	var cbErr error
	distancePairs(m.tree.root, other.tree.root, data, callback, &cbErr)
	if cbErr != nil {
		return cbErr
	}
	if m.epoch != start || other.epoch != otherStart {
		return ErrStaleTraversal
	}
	return nil
}

func distanceLeaves(
	node *treeNode,
	bounds spatial.AABB,
	obj *collision.Object,
	data *DistanceData,
	callback DistanceCallback,
	cbErr *error,
) bool {
	if node == nil || data.Done || node.bounds.Distance(bounds) >= data.MinDistance {
		return true
	}
	if node.isLeaf() {
		if node.object == obj {
			return true
		}
		stop, err := callback(obj, node.object, data)
		if err != nil {
			*cbErr = err
			return false
		}
		return !stop
	}
	return distanceLeaves(node.left, bounds, obj, data, callback, cbErr) &&
		distanceLeaves(node.right, bounds, obj, data, callback, cbErr)
}

func distancePairs(
	n1, n2 *treeNode,
	data *DistanceData,
	callback DistanceCallback,
	cbErr *error,
) bool {
	if data.Done || n1.bounds.Distance(n2.bounds) >= data.MinDistance {
		return true
	}
	if n1 == n2 {
		if n1.isLeaf() {
			return true
		}
		return distancePairs(n1.left, n1.left, data, callback, cbErr) &&
			distancePairs(n1.left, n1.right, data, callback, cbErr) &&
			distancePairs(n1.right, n1.right, data, callback, cbErr)
	}
	if n1.isLeaf() && n2.isLeaf() {
		stop, err := callback(n1.object, n2.object, data)
		if err != nil {
			*cbErr = err
			return false
		}
		return !stop
	}
	if n2.isLeaf() || (!n1.isLeaf() && n1.bounds.SurfaceArea() >= n2.bounds.SurfaceArea()) {
		return distancePairs(n1.left, n2, data, callback, cbErr) &&
			distancePairs(n1.right, n2, data, callback, cbErr)
	}
	return distancePairs(n1, n2.left, data, callback, cbErr) &&
		distancePairs(n1, n2.right, data, callback, cbErr)
}
