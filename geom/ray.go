package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ray is a half-line starting at Origin. Dir does not need to be normalized,
// but distances along the ray are measured in units of |Dir|.
type Ray struct {
	Origin, Dir Vec
}

// NewRay creates a ray from origin towards the given point, normalizing the
// direction.
func NewRay(origin, towards Vec) *Ray {
	return &Ray{origin, r3.Unit(r3.Sub(towards, origin))}
}

// Point returns the point a distance t along the ray.
func (r *Ray) Point(t float64) Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// SliceBox returns the segment of r that lies inside box. ok is false if r
// misses box or if box lies entirely behind r's origin. tStart is clamped to
// zero when the origin is inside the box.
//
// This is the usual slab test: see https://iquilezles.org/articles/intersectors/
func SliceBox(box r3.Box, r *Ray) (tStart, tEnd float64, ok bool) {
	center := box.Center()
	half := r3.Scale(0.5, box.Size())

	tn, tf := math.Inf(-1), math.Inf(+1)
	for dim := 0; dim < 3; dim++ {
		d := Axis(r.Origin, dim) - Axis(center, dim)
		if Axis(r.Dir, dim) == 0 {
			// Parallel to this slab: either always inside it or never.
			if math.Abs(d) > Axis(half, dim) {
				return 0, 0, false
			}
			continue
		}

		inv := 1 / Axis(r.Dir, dim)
		n := inv * d
		k := math.Abs(inv) * Axis(half, dim)

		tn = math.Max(tn, -n-k)
		tf = math.Min(tf, -n+k)
	}

	if tn > tf || tf < 0 {
		return 0, 0, false
	}
	return math.Max(tn, 0), tf, true
}

// Shell is a closed set of triangles bounding some region. It is used to cut
// a ray down to the interval where a curved surface might be hit.
type Shell []Triangle

// Slice returns the smallest interval along r which contains every hit
// between r and the shell's triangles. ok is false if there are no hits or if
// all of them are behind r's origin. tStart is clamped to zero.
func (sh Shell) Slice(r *Ray) (tStart, tEnd float64, ok bool) {
	tStart, tEnd = math.Inf(+1), -1

	for i := range sh {
		t, _, hit := sh[i].Intersect(r)
		if !hit {
			continue
		}
		tStart = math.Min(t, tStart)
		tEnd = math.Max(t, tEnd)
	}

	if tStart > tEnd || tEnd < 0 {
		return 0, 0, false
	}
	return math.Max(tStart, 0), tEnd, true
}
