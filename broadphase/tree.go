// Package broadphase maintains dynamic bounding volume hierarchies over
// collections of collision objects and answers pairwise proximity queries
// without testing every pair.
package broadphase

import (
	"github.com/mechsuite/prox/collision"
	"github.com/mechsuite/prox/spatial"
)

// leaf bounds are fattened by this margin so small pose changes do not
// force a reinsertion
const aabbMargin = 0.1

type treeNode struct {
	bounds spatial.AABB
	parent *treeNode
	left   *treeNode
	right  *treeNode
	object *collision.Object
	height int
}

func (n *treeNode) isLeaf() bool {
	return n.left == nil
}

// aabbTree is a binary tree of fattened bounding boxes with objects at the
// leaves. Insertion descends toward the child whose bounds grow the least,
// measured by surface area, and rebalances with AVL rotations on the way
// back up.
type aabbTree struct {
	root *treeNode
}

func newLeaf(obj *collision.Object) *treeNode {
	return &treeNode{
		bounds: obj.AABB().Extend(aabbMargin),
		object: obj,
	}
}

func (t *aabbTree) insert(leaf *treeNode) {
	if t.root == nil {
		t.root = leaf
		return
	}

	// find the sibling whose combined bounds cost the least
	node := t.root
	for !node.isLeaf() {
		combined := node.bounds.Union(leaf.bounds)
		cost := 2 * combined.SurfaceArea()
		inheritance := 2 * (combined.SurfaceArea() - node.bounds.SurfaceArea())

		costLeft := descendCost(node.left, leaf.bounds) + inheritance
		costRight := descendCost(node.right, leaf.bounds) + inheritance
		if cost < costLeft && cost < costRight {
			break
		}
		if costLeft < costRight {
			node = node.left
		} else {
			node = node.right
		}
	}

	oldParent := node.parent
	newParent := &treeNode{
		bounds: node.bounds.Union(leaf.bounds),
		parent: oldParent,
		left:   node,
		right:  leaf,
		height: node.height + 1,
	}
	node.parent = newParent
	leaf.parent = newParent
	if oldParent == nil {
		t.root = newParent
	} else if oldParent.left == node {
		oldParent.left = newParent
	} else {
		oldParent.right = newParent
	}

	t.refit(newParent)
}

func descendCost(child *treeNode, bounds spatial.AABB) float64 {
	merged := child.bounds.MergedSurfaceArea(bounds)
	if child.isLeaf() {
		return merged
	}
	return merged - child.bounds.SurfaceArea()
}

func (t *aabbTree) remove(leaf *treeNode) {
	parent := leaf.parent
	if parent == nil {
		t.root = nil
		return
	}

	sibling := parent.left
	if sibling == leaf {
		sibling = parent.right
	}
	grandparent := parent.parent
	sibling.parent = grandparent
	if grandparent == nil {
		t.root = sibling
		return
	}
	if grandparent.left == parent {
		grandparent.left = sibling
	} else {
		grandparent.right = sibling
	}
	t.refit(grandparent)
}

// refit recomputes bounds and heights from node to the root, rotating any
// subtree whose children differ in height by more than one.
func (t *aabbTree) refit(node *treeNode) {
	for node != nil {
		node = t.balance(node)
		node.height = 1 + max(node.left.height, node.right.height)
		node.bounds = node.left.bounds.Union(node.right.bounds)
		node = node.parent
	}
}

// balance applies a single left or right rotation at node if it is
// unbalanced, returning the subtree's new root.
func (t *aabbTree) balance(node *treeNode) *treeNode {
	if node.isLeaf() || node.height < 2 {
		return node
	}
	diff := node.right.height - node.left.height
	if diff > 1 {
		return t.rotate(node, node.right)
	}
	if diff < -1 {
		return t.rotate(node, node.left)
	}
	return node
}

// rotate lifts the taller child up above node, pushing its shorter
// grandchild down as node's replacement child.
func (t *aabbTree) rotate(node, up *treeNode) *treeNode {
	tall, short := up.left, up.right
	if short.height > tall.height {
		tall, short = short, tall
	}
	upWasLeft := node.left == up

	up.left = node
	up.parent = node.parent
	node.parent = up
	if up.parent == nil {
		t.root = up
	} else if up.parent.left == node {
		up.parent.left = up
	} else {
		up.parent.right = up
	}

	// the shorter grandchild takes up's old slot under node
	up.right = tall
	tall.parent = up
	if upWasLeft {
		node.left = short
	} else {
		node.right = short
	}
	short.parent = node

	node.height = 1 + max(node.left.height, node.right.height)
	node.bounds = node.left.bounds.Union(node.right.bounds)
	up.height = 1 + max(up.left.height, up.right.height)
	up.bounds = up.left.bounds.Union(up.right.bounds)
	return up
}

// query invokes visit for every leaf whose fattened bounds overlap the
// given bounds. Traversal stops early when visit returns false.
func (t *aabbTree) query(bounds spatial.AABB, visit func(*treeNode) bool) bool {
	return queryNode(t.root, bounds, visit)
}

func queryNode(node *treeNode, bounds spatial.AABB, visit func(*treeNode) bool) bool {
	if node == nil || !node.bounds.Overlaps(bounds) {
		return true
	}
	if node.isLeaf() {
		return visit(node)
	}
	if !queryNode(node.left, bounds, visit) {
		return false
	}
	return queryNode(node.right, bounds, visit)
}

// queryPairs invokes visit for every unordered pair of leaves with
// overlapping bounds, each pair exactly once.
func (t *aabbTree) queryPairs(visit func(a, b *treeNode) bool) bool {
	if t.root == nil || t.root.isLeaf() {
		return true
	}
	return queryNodePairs(t.root.left, t.root.right, visit) &&
		querySelfPairs(t.root.left, visit) &&
		querySelfPairs(t.root.right, visit)
}

func querySelfPairs(node *treeNode, visit func(a, b *treeNode) bool) bool {
	if node.isLeaf() {
		return true
	}
	return queryNodePairs(node.left, node.right, visit) &&
		querySelfPairs(node.left, visit) &&
		querySelfPairs(node.right, visit)
}

func queryNodePairs(n1, n2 *treeNode, visit func(a, b *treeNode) bool) bool {
	if !n1.bounds.Overlaps(n2.bounds) {
		return true
	}
	if n1.isLeaf() && n2.isLeaf() {
		return visit(n1, n2)
	}
	// descend the node with the larger bounds
	if n2.isLeaf() || (!n1.isLeaf() && n1.bounds.SurfaceArea() >= n2.bounds.SurfaceArea()) {
		return queryNodePairs(n1.left, n2, visit) && queryNodePairs(n1.right, n2, visit)
	}
	return queryNodePairs(n1, n2.left, visit) && queryNodePairs(n1, n2.right, visit)
}

// queryTrees invokes visit for every cross pair of leaves, one from each
// tree, whose bounds overlap.
func queryTrees(t1, t2 *aabbTree, visit func(a, b *treeNode) bool) bool {
	if t1.root == nil || t2.root == nil {
		return true
	}
	return queryNodePairs(t1.root, t2.root, visit)
}
