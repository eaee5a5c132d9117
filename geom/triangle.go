package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// AreaEps is the smallest doubled area a triangle can have before it is
	// treated as degenerate.
	AreaEps = 1e-4

	eps = 1e-9
)

// Triangle is an ordered triple of corners. Edge i runs from corner i to
// corner (i + 1) % 3, so the order matters to anything which attaches data to
// edges.
type Triangle [3]Vec

// Normal returns the unnormalized normal (c1 - c0) x (c2 - c0). Its length is
// twice the area of the triangle.
func (tri *Triangle) Normal() Vec {
	return r3.Cross(r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0]))
}

// Area returns the doubled area of the triangle, i.e. the length of Normal().
func (tri *Triangle) Area() float64 {
	return r3.Norm(tri.Normal())
}

// Degenerate returns true if the triangle is too small (or too thin) for
// barycentric coordinates to mean anything.
func (tri *Triangle) Degenerate() bool {
	return tri.Area() < AreaEps
}

// Centroid returns the mean of the corners.
func (tri *Triangle) Centroid() Vec {
	return Mean(tri[0], tri[1], tri[2])
}

// Edge returns the endpoints of edge i.
func (tri *Triangle) Edge(i int) (start, end Vec) {
	return tri[i], tri[(i+1)%3]
}

// Point returns the point with the given barycentric coordinates.
func (tri *Triangle) Point(w *[3]float64) Vec {
	return Combine((*[3]Vec)(tri), w)
}

// Bary projects p onto the plane of the triangle and returns the unsigned
// barycentric coordinates of the projection. w[i] belongs to tri[i].
//
// If the triangle is degenerate, (0, 0, 0) is returned and it is up to the
// caller to notice.
//
// The sign of each coordinate is thrown away, so points outside the triangle
// get coordinates that no longer sum to one and which cannot be told apart
// from interior points by sign. Use SignedBary or Contains if that matters.
func (tri *Triangle) Bary(p Vec) [3]float64 {
	w, ok := tri.SignedBary(p)
	if !ok {
		return w
	}
	for i := range w {
		w[i] = math.Abs(w[i])
	}
	return w
}

// SignedBary is identical to Bary, except that coordinates keep their signs.
// ok is false for degenerate triangles, in which case (0, 0, 0) is returned.
func (tri *Triangle) SignedBary(p Vec) (w [3]float64, ok bool) {
	norm := tri.Normal()
	area := r3.Norm(norm)
	if area < AreaEps {
		return w, false
	}
	norm = r3.Scale(1/area, norm)

	tp0, tp1, tp2 := r3.Sub(tri[0], p), r3.Sub(tri[1], p), r3.Sub(tri[2], p)

	w[0] = r3.Dot(r3.Cross(tp1, tp2), norm) / area
	w[1] = r3.Dot(r3.Cross(tp2, tp0), norm) / area
	w[2] = r3.Dot(r3.Cross(tp0, tp1), norm) / area
	return w, true
}

// Contains returns true if the projection of p onto the plane of the
// triangle lies inside the triangle (boundaries included). Degenerate
// triangles contain nothing.
func (tri *Triangle) Contains(p Vec) bool {
	w, ok := tri.SignedBary(p)
	if !ok {
		return false
	}

	for i := range w {
		if w[i] < -eps {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box of the corners.
func (tri *Triangle) Bounds() r3.Box {
	return BoundsOf(tri[0], tri[1], tri[2])
}

// BoundsOf returns the smallest axis-aligned box containing every point in vs.
func BoundsOf(vs ...Vec) r3.Box {
	box := r3.Box{Min: vs[0], Max: vs[0]}
	for _, v := range vs[1:] {
		box.Min.X, box.Max.X = minMax(v.X, box.Min.X, box.Max.X)
		box.Min.Y, box.Max.Y = minMax(v.Y, box.Min.Y, box.Max.Y)
		box.Min.Z, box.Max.Z = minMax(v.Z, box.Min.Z, box.Max.Z)
	}
	return box
}

func minMax(x, oldMin, oldMax float64) (min, max float64) {
	if x > oldMax {
		return oldMin, x
	} else if x < oldMin {
		return x, oldMax
	} else {
		return oldMin, oldMax
	}
}

// IntersectPlane returns the distance along r at which it crosses the plane
// of the triangle. Rays parallel to the plane give an infinite or NaN value.
func (tri *Triangle) IntersectPlane(r *Ray) float64 {
	e1, e2 := r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0])
	tt := r3.Sub(r.Origin, tri[0])
	n := r3.Cross(e1, e2)
	return -r3.Dot(n, tt) / r3.Dot(r.Dir, n)
}

// Intersect tests for intersection between r and the triangle. It returns the
// distance along r to the hit and the signed barycentric coordinates of the
// point where r crosses the plane of the triangle.
//
// ok is false if the crossing lies outside the triangle or if r is parallel
// to it. In the first case w still holds the crossing's coordinates, in the
// second it is (0, 0, 0). Both faces count, and t may be negative: r extends
// infinitely in both directions.
func (tri *Triangle) Intersect(r *Ray) (t float64, w [3]float64, ok bool) {
	e1, e2 := r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0])
	tt := r3.Sub(r.Origin, tri[0])
	n := r3.Cross(e1, e2)
	back := r3.Scale(-1, r.Dir)

	det := r3.Dot(back, n)
	if det == 0 {
		return 0, w, false
	}
	c := 1 / det

	w[1] = r3.Dot(r3.Cross(e2, back), tt) * c
	w[2] = r3.Dot(r3.Cross(back, e1), tt) * c
	w[0] = 1 - (w[1] + w[2])

	for i := range w {
		if w[i] > 1 || w[i] < 0 {
			return 0, w, false
		}
	}

	return r3.Dot(n, tt) * c, w, true
}
