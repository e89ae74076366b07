// Package collision exposes the narrow-phase entry points: boolean collision
// with contact generation, signed distance, and continuous collision over a
// pose interpolation. Queries operate on Objects, which pair a shared
// immutable Geometry with a mutable placement.
package collision

import (
	"github.com/mechsuite/prox/geometry"
	"github.com/mechsuite/prox/spatial"
)

// Object is a movable instance of a Geometry. The geometry is expressed in
// the object frame and may be shared between many objects; only the pose is
// mutable. Object identity is pointer identity.
//
// Objects are not safe for concurrent use.
type Object struct {
	geometry geometry.Geometry
	pose     spatial.Pose

	worldGeom geometry.Geometry
	dirty     bool
	version   uint64
}

// NewObject wraps a geometry in an object placed at the identity pose.
func NewObject(g geometry.Geometry) *Object {
	return &Object{geometry: g, pose: spatial.NewZeroPose(), dirty: true}
}

// NewObjectAtPose wraps a geometry in an object at the given pose.
func NewObjectAtPose(g geometry.Geometry, pose spatial.Pose) *Object {
	return &Object{geometry: g, pose: pose, dirty: true}
}

// Geometry returns the object-frame geometry.
func (o *Object) Geometry() geometry.Geometry {
	return o.geometry
}

// Pose returns the current placement of the object.
func (o *Object) Pose() spatial.Pose {
	return o.pose
}

// SetPose moves the object, invalidating cached world-space state.
func (o *Object) SetPose(pose spatial.Pose) {
	o.pose = pose
	o.dirty = true
	o.version++
}

// Version counts pose mutations. Spatial indexes snapshot it to detect
// objects that moved after indexing.
func (o *Object) Version() uint64 {
	return o.version
}

// WorldGeometry returns the geometry transformed into world space, cached
// until the next SetPose.
func (o *Object) WorldGeometry() geometry.Geometry {
	if o.dirty {
		o.worldGeom = o.geometry.Transform(o.pose)
		o.dirty = false
	}
	return o.worldGeom
}

// AABB returns the world-space bounding box of the object.
func (o *Object) AABB() spatial.AABB {
	return o.WorldGeometry().AABB()
}

// Label returns the label of the underlying geometry.
func (o *Object) Label() string {
	return o.geometry.Label()
}
