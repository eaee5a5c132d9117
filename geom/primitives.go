/*package geom contains the primitive geometry that curved patches are built
from: vectors, flat triangles, barycentric projection, rays and the boxes and
shells used to cut rays down before a patch is searched.

Vector arithmetic is delegated to gonum's spatial/r3 package, so a Vec can be
handed to any r3 routine directly.
*/
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a three dimensional vector. (Duh!)
type Vec = r3.Vec

// Lerp linearly interpolates from v1 to v2. t = 0 gives v1 and t = 1 gives v2.
func Lerp(v1, v2 Vec, t float64) Vec {
	return r3.Add(v1, r3.Scale(t, r3.Sub(v2, v1)))
}

// Combine returns w[0]*vs[0] + w[1]*vs[1] + w[2]*vs[2].
func Combine(vs *[3]Vec, w *[3]float64) Vec {
	return r3.Add(
		r3.Add(r3.Scale(w[0], vs[0]), r3.Scale(w[1], vs[1])),
		r3.Scale(w[2], vs[2]),
	)
}

// Mean returns the average of the given vectors.
func Mean(vs ...Vec) Vec {
	var sum Vec
	for _, v := range vs {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(vs)), sum)
}

// Axis returns the dim'th component of v.
func Axis(v Vec, dim int) float64 {
	switch dim {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic("dim must be 0, 1, or 2.")
}

// FromAxes builds a vector from its three components, in order.
func FromAxes(xs *[3]float64) Vec {
	return Vec{X: xs[0], Y: xs[1], Z: xs[2]}
}

// IsFinite returns true if no component of v is infinite or NaN.
func IsFinite(v Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
