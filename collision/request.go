package collision

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/mechsuite/prox/spatial"
)

const (
	defaultMaxContacts   = 1
	defaultTolerance     = 1e-6
	defaultMaxIterations = 64
)

// CollisionRequest controls a Collide query.
type CollisionRequest struct {
	// MaxContacts caps the number of contacts generated; generation stops as
	// soon as the cap is reached. Values below 1 mean 1.
	MaxContacts int

	// EnableContact selects full contact generation. When false only the
	// boolean collision determination is made, which is cheaper.
	EnableContact bool
}

// NewCollisionRequest returns a request with the default single-contact,
// boolean-only configuration.
func NewCollisionRequest() *CollisionRequest {
	return &CollisionRequest{MaxContacts: defaultMaxContacts}
}

func (req *CollisionRequest) maxContacts() int {
	if req.MaxContacts < 1 {
		return defaultMaxContacts
	}
	return req.MaxContacts
}

// Contact is a single contact between two objects. PointOn1 and PointOn2 are
// the deepest points of each object inside the other, coincident when the
// objects merely touch. Normal points from Object1 toward Object2.
type Contact struct {
	PointOn1 r3.Vector
	PointOn2 r3.Vector
	Normal   r3.Vector
	Depth    float64

	Object1 *Object
	Object2 *Object
}

// CollisionResult accumulates the contacts of one or more Collide queries.
type CollisionResult struct {
	Contacts []Contact
}

// Clear drops all accumulated contacts, retaining capacity.
func (r *CollisionResult) Clear() {
	r.Contacts = r.Contacts[:0]
}

// NumContacts returns the number of accumulated contacts.
func (r *CollisionResult) NumContacts() int {
	return len(r.Contacts)
}

// DistanceRequest controls a Distance query.
type DistanceRequest struct {
	// Tolerance is the separation resolution: results with magnitude at or
	// below it are reported as exactly zero. Values below the internal
	// floating point epsilon are clamped up to it.
	Tolerance float64

	// EnableNearestPoints requests the closest point on each object.
	EnableNearestPoints bool
}

// NewDistanceRequest returns a request with default tolerances.
func NewDistanceRequest() *DistanceRequest {
	return &DistanceRequest{Tolerance: defaultTolerance}
}

func (req *DistanceRequest) tolerance() float64 {
	if req.Tolerance < defaultTolerance {
		return defaultTolerance
	}
	return req.Tolerance
}

// DistanceResult holds the outcome of one or more Distance queries, keeping
// the minimum over all of them.
type DistanceResult struct {
	MinDistance   float64
	NearestPoint1 r3.Vector
	NearestPoint2 r3.Vector

	Object1 *Object
	Object2 *Object
}

// NewDistanceResult returns a result ready to accumulate minimums.
func NewDistanceResult() *DistanceResult {
	return &DistanceResult{MinDistance: math.Inf(1)}
}

// Clear resets the result so it can be reused across queries.
func (r *DistanceResult) Clear() {
	*r = DistanceResult{MinDistance: math.Inf(1)}
}

// ContinuousCollisionRequest controls a ContinuousCollide query.
type ContinuousCollisionRequest struct {
	// Tolerance is the separation at which the advancing shapes are
	// considered in contact.
	Tolerance float64

	// MaxIterations caps conservative advancement steps.
	MaxIterations int
}

// NewContinuousCollisionRequest returns a request with default tolerances.
func NewContinuousCollisionRequest() *ContinuousCollisionRequest {
	return &ContinuousCollisionRequest{Tolerance: defaultTolerance, MaxIterations: defaultMaxIterations}
}

func (req *ContinuousCollisionRequest) tolerance() float64 {
	if req.Tolerance <= 0 {
		return defaultTolerance
	}
	return req.Tolerance
}

func (req *ContinuousCollisionRequest) maxIterations() int {
	if req.MaxIterations < 1 {
		return defaultMaxIterations
	}
	return req.MaxIterations
}

// ContinuousCollisionResult holds the outcome of a ContinuousCollide query.
// When Collides is true the contact poses are the object placements at the
// time of contact.
type ContinuousCollisionResult struct {
	TimeOfContact float64
	Collides      bool

	ContactPose1 spatial.Pose
	ContactPose2 spatial.Pose
}
