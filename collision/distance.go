package collision

import (
	"math"

	"github.com/mechsuite/prox/geometry"
)

// Distance computes the signed distance between two objects. Negative values
// are the penetration depth of overlapping objects, a convention rather than
// an error. When a result is supplied it keeps the minimum over successive
// calls, so one result can accumulate the closest pair of a whole set.
func Distance(obj1, obj2 *Object, req *DistanceRequest, result *DistanceResult) (float64, error) {
	if req == nil {
		req = NewDistanceRequest()
	}

	dist, p1, p2, err := geometry.Distance(obj1.WorldGeometry(), obj2.WorldGeometry())
	if err != nil {
		return 0, err
	}
	if math.Abs(dist) <= req.tolerance() {
		dist = 0
	}

	if result != nil && dist < result.MinDistance {
		result.MinDistance = dist
		result.Object1 = obj1
		result.Object2 = obj2
		if req.EnableNearestPoints {
			result.NearestPoint1 = p1
			result.NearestPoint2 = p2
		}
	}
	return dist, nil
}
