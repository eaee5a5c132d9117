package patch

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/curvetri/geom"
)

const (
	// SearchSteps is the default number of bisection rounds spent looking
	// for a sign change in the distance field.
	SearchSteps = 5
	// RefineSteps is the default number of bisection rounds spent narrowing
	// in on a sign change once one has been found.
	RefineSteps = 3
)

var (
	// ErrBehindRay is returned when the ray misses the patch's shell or the
	// shell lies entirely behind the ray's origin.
	ErrBehindRay = errors.New("Shell is behind the ray or not hit at all.")
	// ErrNoIntersection is returned when the distance field never changes
	// sign inside the shell.
	ErrNoIntersection = errors.New("Ray does not cross the surface.")
	// ErrCantSubrayBase is returned when the final point does not project
	// onto the base triangle.
	ErrCantSubrayBase = errors.New("Hit does not project onto the base.")
)

// Hit describes an intersection between a ray and a patch.
type Hit struct {
	// T is the distance along the ray.
	T float64
	// Bary holds the barycentric coordinates of the hit's projection onto
	// the base triangle, taken along the line to the root point.
	Bary [3]float64
	// Point is the position of the hit.
	Point geom.Vec
}

func (s *Surface) initShell() {
	c, p := &s.con.Corners, &s.con.Pivots

	s.root = geom.Mean(p[0], p[1], p[2])
	for i := range s.shellPoints {
		s.shellPoints[i] = r3.Sub(r3.Scale(2, c[i]), p[i])
	}
	s.oppositeRoot = r3.Sub(
		r3.Add(r3.Add(c[0], c[1]), c[2]), r3.Scale(2, s.root),
	)

	sp := &s.shellPoints
	s.shell = geom.Shell{
		{sp[0], sp[1], sp[2]},
		{s.root, sp[0], sp[1]},
		{s.root, sp[1], sp[2]},
		{s.root, sp[2], sp[0]},
	}
}

// RootPoint returns the mean of the three pivots. Every point of the surface
// is searched for along a line through the root point.
func (s *Surface) RootPoint() geom.Vec { return s.root }

// ShellPoints returns the corners reflected through their pivots,
// 2 Corners[i] - Pivots[i].
func (s *Surface) ShellPoints() [3]geom.Vec { return s.shellPoints }

// OppositeRoot returns the root point reflected through the centroid of the
// base, scaled up by three.
func (s *Surface) OppositeRoot() geom.Vec { return s.oppositeRoot }

// Shell returns the four triangles which enclose the region searched by
// Intersect: the triangle of shell points and the three faces joining it to
// the root point.
func (s *Surface) Shell() geom.Shell {
	out := make(geom.Shell, len(s.shell))
	copy(out, s.shell)
	return out
}

// Bounds returns an axis-aligned box around the corners and the opposite
// root.
func (s *Surface) Bounds() r3.Box {
	c := &s.con.Corners
	return geom.BoundsOf(c[0], c[1], c[2], s.oppositeRoot)
}

// Intersect finds where r crosses the surface using the default step counts.
func (s *Surface) Intersect(r *geom.Ray) (Hit, error) {
	return s.IntersectSteps(r, SearchSteps, RefineSteps)
}

// IntersectSteps finds where r crosses the surface.
//
// r is first cut down to the part which lies inside the shell. Along that
// segment the distance field
//
//	d(t) = |q - root| - |S(q) - root|,  q = r.Point(t)
//
// is bisected, where S(q) is the surface point above the spot where the line
// from q to the root point crosses the base plane. The first search rounds
// look for a sign change, moving towards the end with the smaller |d| if
// there isn't one. The refine rounds narrow in on it.
func (s *Surface) IntersectSteps(
	r *geom.Ray, search, refine int,
) (Hit, error) {
	tStart, tEnd, ok := s.shell.Slice(r)
	if !ok {
		return Hit{}, ErrBehindRay
	}

	dStart, dEnd := s.coneDistance(r, tStart), s.coneDistance(r, tEnd)
	crossed := false
	for i := 0; i < search; i++ {
		tMid := (tStart + tEnd) / 2
		dMid := s.coneDistance(r, tMid)

		switch {
		case math.Signbit(dStart) != math.Signbit(dMid):
			tEnd, dEnd = tMid, dMid
			crossed = true
		case math.Signbit(dMid) != math.Signbit(dEnd):
			tStart, dStart = tMid, dMid
			crossed = true
		case math.Abs(dStart) < math.Abs(dEnd):
			tEnd, dEnd = tMid, dMid
		default:
			tStart, dStart = tMid, dMid
		}
	}

	if !crossed {
		return Hit{}, ErrNoIntersection
	}

	for i := 0; i < refine; i++ {
		tMid := (tStart + tEnd) / 2
		dMid := s.coneDistance(r, tMid)

		if math.Signbit(dStart) != math.Signbit(dMid) {
			tEnd = tMid
		} else {
			tStart, dStart = tMid, dMid
		}
	}

	t := (tStart + tEnd) / 2
	q := r.Point(t)
	_, w, ok := s.con.Corners.Intersect(s.subray(q))
	if !ok {
		return Hit{}, ErrCantSubrayBase
	}

	return Hit{T: t, Bary: w, Point: q}, nil
}

// subray returns the ray from q towards the root point.
func (s *Surface) subray(q geom.Vec) *geom.Ray {
	return &geom.Ray{Origin: q, Dir: r3.Unit(r3.Sub(s.root, q))}
}

// coneDistance is positive when the point t along r lies further from the
// root point than the surface does in that direction and negative when it
// lies closer.
func (s *Surface) coneDistance(r *geom.Ray, t float64) float64 {
	q := r.Point(t)
	dq := r3.Norm(r3.Sub(q, s.root))
	if dq == 0 {
		return math.Inf(-1)
	}

	// Misses still carry the plane crossing's coordinates, which is what we
	// want near the edges of the base.
	_, w, _ := s.con.Corners.Intersect(s.subray(q))
	surf := s.PointBary(w)
	return dq - r3.Norm(r3.Sub(surf, s.root))
}
