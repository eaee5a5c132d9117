/*package patch evaluates curved triangular patches.

A patch starts from a flat base triangle whose three edges have been replaced
by curves (see package curve). A point inside the base triangle is mapped onto
the patch by:

 1. Projecting it onto the base to get barycentric coordinates (w0, w1, w2).
 2. Recovering, for each edge, how far along that edge the point is once the
    opposite corner is projected out.
 3. Evaluating each edge curve there.
 4. Blending the three curve points with weights which go to one for an
    edge's own curve on that edge and to zero for the other two. The blend is
    a signed power mean whose exponent is itself a blend of the three edge
    exponents, so the interior bulges the same way the edges do.

On an edge the patch reduces exactly to that edge's curve.
*/
package patch

import (
	"math"

	"github.com/phil-mansfield/curvetri/curve"
	"github.com/phil-mansfield/curvetri/geom"
)

// Condition is a bit set of the fallback branches taken while evaluating a
// point.
type Condition uint8

const (
	// DegenerateTriangle is set when the base triangle's doubled area is
	// below geom.AreaEps. All barycentric coordinates are zero and the point
	// is the origin.
	DegenerateTriangle Condition = 1 << iota
	// UndefinedBlendExponent is set when the blended exponent is zero or not
	// finite. The curve points are blended linearly instead.
	UndefinedBlendExponent
	// DegenerateCurveParameter is set when one of the edge curves could not
	// compute its weights and fell back to an endpoint.
	DegenerateCurveParameter

	// OK means no fallback was taken.
	OK Condition = 0
)

// String returns a readable list of the set conditions.
func (c Condition) String() string {
	if c == OK {
		return "OK"
	}

	s := ""
	names := []string{
		"DegenerateTriangle", "UndefinedBlendExponent",
		"DegenerateCurveParameter",
	}
	for i, name := range names {
		if c&(1<<uint(i)) == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += name
	}
	return s
}

// Surface is an immutable, evaluable patch. It is safe to share a Surface
// between any number of goroutines.
type Surface struct {
	con   Config
	edges [3]curve.Edge
	degen bool

	root, oppositeRoot geom.Vec
	shellPoints        [3]geom.Vec
	shell              geom.Shell
}

// New creates a Surface from con. con is copied, so later changes to it do
// not affect the Surface. New never fails: call con.Validate() first if
// invalid input should be reported instead of evaluated.
func New(con *Config) *Surface {
	s := &Surface{con: *con}

	for i := range s.edges {
		start, end := s.con.Corners.Edge(i)
		s.edges[i] = curve.Edge{
			Start: start, End: end,
			Pivot: s.con.Pivots[i], Exponent: s.con.Exponents[i],
		}
	}
	s.degen = s.con.Corners.Degenerate()

	s.initShell()
	return s
}

// Config returns a copy of the configuration the Surface was built from.
func (s *Surface) Config() Config { return s.con }

// Base returns the flat base triangle.
func (s *Surface) Base() geom.Triangle { return s.con.Corners }

// Edge returns the curve which replaces edge i.
func (s *Surface) Edge(i int) curve.Edge { return s.edges[i] }

// Point maps a point in the plane of the base triangle onto the surface.
func (s *Surface) Point(p geom.Vec) geom.Vec {
	out, _ := s.Check(p)
	return out
}

// Check is identical to Point, but also reports which fallback branches
// were taken.
func (s *Surface) Check(p geom.Vec) (geom.Vec, Condition) {
	w := s.con.Corners.Bary(p)
	out, c := s.CheckBary(w)
	if s.degen {
		c |= DegenerateTriangle
	}
	return out, c
}

// PointBary returns the surface point for the given barycentric coordinates
// of the base triangle. The coordinates may be signed.
func (s *Surface) PointBary(w [3]float64) geom.Vec {
	out, _ := s.CheckBary(w)
	return out
}

// CheckBary is identical to PointBary, but also reports which fallback
// branches were taken. It cannot detect a degenerate base on its own.
func (s *Surface) CheckBary(w [3]float64) (geom.Vec, Condition) {
	c := OK
	ts := EdgeParams(w)
	ks := BlendWeights(w, ts)

	var cs [3]geom.Vec
	for i := range cs {
		var ok bool
		cs[i], ok = s.edges[i].Check(1 - ts[i])
		if !ok {
			c |= DegenerateCurveParameter
		}
	}

	balanced := 0.0
	for i := range ks {
		balanced += ks[i] * s.con.Exponents[i]
	}

	if balanced == 0 || math.IsInf(balanced, 0) || math.IsNaN(balanced) {
		return geom.Combine(&cs, &ks), c | UndefinedBlendExponent
	}

	return PowerMean(&cs, &ks, balanced), c
}

// EdgeParams recovers the fraction of the way along each edge implied by the
// barycentric coordinates w, once the corner opposite that edge has been
// projected out:
//
//	t0 = w0 / (1 - w2), t1 = w1 / (1 - w0), t2 = w2 / (1 - w1)
//
// A denominator of exactly zero gives a parameter of 1.
func EdgeParams(w [3]float64) [3]float64 {
	var ts [3]float64
	for i := range ts {
		prev := (i + 2) % 3
		if w[prev] != 1 {
			ts[i] = w[i] / (1 - w[prev])
		} else {
			ts[i] = 1
		}
	}
	return ts
}

// BlendWeights returns the weight of each edge curve in the final blend:
//
//	k0 = w0 t1 + w1 (1 - t2)
//	k1 = w1 t2 + w2 (1 - t0)
//	k2 = w2 t0 + w0 (1 - t1)
//
// On edge i, k[i] is one and the other two are zero.
func BlendWeights(w, ts [3]float64) [3]float64 {
	var ks [3]float64
	for i := range ks {
		next, last := (i+1)%3, (i+2)%3
		ks[i] = w[i]*ts[next] + w[next]*(1-ts[last])
	}
	return ks
}

// PowerMean combines the three points axis by axis with a signed, weighted
// power mean:
//
//	SignedPow(k0 SignedPow(c0, e) + k1 SignedPow(c1, e) + k2 SignedPow(c2, e), 1/e)
func PowerMean(cs *[3]geom.Vec, ks *[3]float64, e float64) geom.Vec {
	var out [3]float64
	for dim := range out {
		sum := 0.0
		for i := range cs {
			sum += ks[i] * SignedPow(geom.Axis(cs[i], dim), e)
		}
		out[dim] = SignedPow(sum, 1/e)
	}
	return geom.FromAxes(&out)
}

// SignedPow returns sign(b) |b|^e. This extends power means to negative
// values. SignedPow(0, e) is 0 for every e, including e <= 0.
func SignedPow(b, e float64) float64 {
	if b == 0 {
		return 0
	}
	return math.Copysign(math.Pow(math.Abs(b), e), b)
}
