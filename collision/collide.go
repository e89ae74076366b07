package collision

import (
	"github.com/mechsuite/prox/geometry"
)

// Collide tests two objects for collision, appending generated contacts to
// the result. It returns the number of contacts generated by this call, which
// is at most req.MaxContacts. With EnableContact false the return is 1 or 0
// and no contact geometry is computed.
//
// Collide is symmetric: swapping the objects yields the same count, with
// contact points coincident and normals antiparallel.
func Collide(obj1, obj2 *Object, req *CollisionRequest, result *CollisionResult) (int, error) {
	if req == nil {
		req = NewCollisionRequest()
	}

	if !req.EnableContact {
		colliding, err := geometry.Collides(obj1.WorldGeometry(), obj2.WorldGeometry())
		if err != nil {
			return 0, err
		}
		if colliding {
			return 1, nil
		}
		return 0, nil
	}

	if result != nil && result.NumContacts() >= req.maxContacts() {
		return 0, nil
	}

	ct, err := geometry.Contact(obj1.WorldGeometry(), obj2.WorldGeometry())
	if err != nil {
		return 0, err
	}
	if ct == nil {
		return 0, nil
	}
	if result != nil {
		result.Contacts = append(result.Contacts, Contact{
			PointOn1: ct.Point1,
			PointOn2: ct.Point2,
			Normal:   ct.Normal,
			Depth:    ct.Depth,
			Object1:  obj1,
			Object2:  obj2,
		})
	}
	return 1, nil
}
