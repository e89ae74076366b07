package broadphase

import (
	"math"

	"github.com/mechsuite/prox/collision"
)

// CollisionCallback is invoked for each candidate pair found during a
// collision traversal. Returning true stops the traversal early.
type CollisionCallback func(a, b *collision.Object, data *CollisionData) (bool, error)

// DistanceCallback is invoked for each candidate pair found during a
// distance traversal. Implementations update data.MinDistance so the
// traversal can prune pairs that cannot improve on it. Returning true
// stops the traversal early.
type DistanceCallback func(a, b *collision.Object, data *DistanceData) (bool, error)

// CollisionData accumulates results across a collision traversal.
type CollisionData struct {
	Request *collision.CollisionRequest
	Result  *collision.CollisionResult
	Done    bool
}

// NewCollisionData returns collision traversal state with an empty result.
func NewCollisionData(req *collision.CollisionRequest) *CollisionData {
	if req == nil {
		req = collision.NewCollisionRequest()
	}
	return &CollisionData{Request: req, Result: &collision.CollisionResult{}}
}

// DistanceData accumulates results across a distance traversal.
type DistanceData struct {
	Request     *collision.DistanceRequest
	Result      *collision.DistanceResult
	MinDistance float64
	Done        bool
}

// NewDistanceData returns distance traversal state with the minimum
// distance initialized to +Inf.
func NewDistanceData(req *collision.DistanceRequest) *DistanceData {
	if req == nil {
		req = collision.NewDistanceRequest()
	}
	return &DistanceData{
		Request:     req,
		Result:      collision.NewDistanceResult(),
		MinDistance: math.Inf(1),
	}
}

// DefaultCollisionCallback runs narrow-phase collision on the pair,
// appending contacts to data.Result and stopping once the request's
// contact budget is exhausted.
func DefaultCollisionCallback(a, b *collision.Object, data *CollisionData) (bool, error) {
	if data.Done {
		return true, nil
	}
	n, err := collision.Collide(a, b, data.Request, data.Result)
	if err != nil {
		return true, err
	}
	if n > 0 && !data.Request.EnableContact {
		// a single yes/no answer is all that was asked for
		data.Done = true
		return true, nil
	}
	if data.Result.NumContacts() >= data.Request.MaxContacts && data.Request.MaxContacts > 0 {
		data.Done = true
		return true, nil
	}
	return false, nil
}

// DefaultDistanceCallback runs narrow-phase distance on the pair and
// tracks the minimum seen so far.
func DefaultDistanceCallback(a, b *collision.Object, data *DistanceData) (bool, error) {
	if data.Done {
		return true, nil
	}
	dist, err := collision.Distance(a, b, data.Request, data.Result)
	if err != nil {
		return true, err
	}
	if dist < data.MinDistance {
		data.MinDistance = dist
	}
	if dist <= 0 {
		// overlap, no pair can be closer
		data.Done = true
		return true, nil
	}
	return false, nil
}
