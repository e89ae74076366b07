package collision

import (
	"math"

	"github.com/pkg/errors"

	"github.com/mechsuite/prox/geometry"
	"github.com/mechsuite/prox/spatial"
)

// ErrUnboundedMotion is returned when continuous collision is requested for
// an unbounded shape whose pose changes over the interval. Without a bounding
// sphere there is no motion bound to advance conservatively against.
var ErrUnboundedMotion = errors.New("continuous collision requires bounded shapes for moving objects")

// ContinuousCollide finds the earliest time of contact for two objects moving
// from their current poses to the given final poses, with motion interpolated
// linearly in translation and spherically in rotation.
//
// The returned time is in [0, 1]: 0 when the objects already overlap at their
// starting poses, a value in (0, 1) at the first contact, and exactly 1.0 when
// no contact occurs in the open interval, including shapes that first touch
// exactly at the end of the motion.
func ContinuousCollide(
	obj1 *Object, finalPose1 spatial.Pose,
	obj2 *Object, finalPose2 spatial.Pose,
	req *ContinuousCollisionRequest,
) (float64, *ContinuousCollisionResult, error) {
	if req == nil {
		req = NewContinuousCollisionRequest()
	}

	startPose1, startPose2 := obj1.Pose(), obj2.Pose()
	bound1, rot1, err := motionBound(obj1, startPose1, finalPose1)
	if err != nil {
		return 0, nil, err
	}
	bound2, rot2, err := motionBound(obj2, startPose2, finalPose2)
	if err != nil {
		return 0, nil, err
	}

	noContact := &ContinuousCollisionResult{
		TimeOfContact: 1.0,
		ContactPose1:  finalPose1,
		ContactPose2:  finalPose2,
	}

	// disjoint swept volumes cannot touch at any time. Rotation can carry
	// the shape outside the union of the endpoint boxes, so each union is
	// grown by the rotational travel bound before the overlap test.
	swept1 := obj1.AABB().Union(obj1.Geometry().Transform(finalPose1).AABB()).Extend(rot1)
	swept2 := obj2.AABB().Union(obj2.Geometry().Transform(finalPose2).AABB()).Extend(rot2)
	if !swept1.Overlaps(swept2) {
		return 1.0, noContact, nil
	}

	totalBound := bound1 + bound2
	tol := req.tolerance()

	t := 0.0
	for iter := 0; iter < req.maxIterations(); iter++ {
		pose1 := spatial.Interpolate(startPose1, finalPose1, t)
		pose2 := spatial.Interpolate(startPose2, finalPose2, t)
		dist, _, _, err := geometry.Distance(
			obj1.Geometry().Transform(pose1),
			obj2.Geometry().Transform(pose2),
		)
		if err != nil {
			return 0, nil, err
		}

		if dist <= tol {
			return t, &ContinuousCollisionResult{
				TimeOfContact: t,
				Collides:      true,
				ContactPose1:  pose1,
				ContactPose2:  pose2,
			}, nil
		}

		if totalBound <= 0 {
			// neither object moves, the gap can never close
			return 1.0, noContact, nil
		}

		// no contact can occur before t+step, by the motion bound
		step := dist / totalBound
		if t+step >= 1.0 {
			return 1.0, noContact, nil
		}
		t += step
	}
	return 0, nil, errors.Wrapf(geometry.ErrConvergence,
		"conservative advancement exceeded %d iterations", req.maxIterations())
}

// motionBound returns an upper bound on the distance any point of the object
// travels over the whole motion, plus the rotational part of that bound on
// its own. Rotation happens about the pose origin, so the farthest point is
// at most the bounding sphere radius plus the lever arm from the origin to
// the sphere center away from it.
func motionBound(obj *Object, start, final spatial.Pose) (float64, float64, error) {
	delta := spatial.PoseBetween(start, final)
	translation := delta.Point().Norm()
	angle := math.Abs(delta.Orientation().AxisAngles().Theta)

	center, radius, bounded := geometry.BoundingSphere(obj.WorldGeometry())
	if !bounded {
		if translation > 0 || angle > 0 {
			return 0, 0, ErrUnboundedMotion
		}
		return 0, 0, nil
	}
	reach := radius + center.Sub(start.Point()).Norm()
	rotation := angle * reach
	return translation + rotation, rotation, nil
}
