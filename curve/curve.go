/*package curve evaluates the edge curves which replace the straight sides of
a triangle.

An edge curve runs from v1 to v2 and bows towards (or, for exponents above
one, away from) a pivot point. At parameter t the endpoints get the weights

	w1 = (s / (s + f))^(1/e),  w2 = (f / (s + f))^(1/e)

with s = (1 - t)^e and f = t^e, and the pivot gets whatever is left over,
1 - w1 - w2. An exponent of one gives the straight segment; larger exponents
push the middle of the curve away from the pivot and smaller ones pull it in.
*/
package curve

import (
	"math"

	"github.com/phil-mansfield/curvetri/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Edge bundles everything needed to evaluate a single edge curve.
type Edge struct {
	Start, End, Pivot geom.Vec
	Exponent          float64
}

// At evaluates the edge at t. See Eval.
func (e *Edge) At(t float64) geom.Vec {
	return Eval(t, e.Start, e.End, e.Pivot, e.Exponent)
}

// Check evaluates the edge at t. See Check.
func (e *Edge) Check(t float64) (geom.Vec, bool) {
	return Check(t, e.Start, e.End, e.Pivot, e.Exponent)
}

// Sample returns steps + 1 points evenly spaced in t along the edge,
// including both endpoints.
func (e *Edge) Sample(steps int) []geom.Vec {
	if steps < 1 {
		return nil
	}

	out := make([]geom.Vec, steps+1)
	for i := range out {
		out[i] = e.At(float64(i) / float64(steps))
	}
	return out
}

// Eval returns the point at parameter t along the curve from v1 to v2 shaped
// by pivot and exponent. t is clamped to [0, 1]: Eval(0, ...) is exactly v1
// and Eval(1, ...) is exactly v2.
//
// When the weights cannot be computed (the exponent is not a positive, finite
// number) Eval falls back to the nearer endpoint: v1 for t <= 0.5 and v2
// otherwise. Use Check to find out whether that happened.
func Eval(t float64, v1, v2, pivot geom.Vec, exponent float64) geom.Vec {
	p, _ := Check(t, v1, v2, pivot, exponent)
	return p
}

// Check is identical to Eval, but also returns false if the nearer-endpoint
// fallback was used.
func Check(
	t float64, v1, v2, pivot geom.Vec, exponent float64,
) (geom.Vec, bool) {
	t = clamp(t)
	w1, w2, ok := Weights(t, exponent)
	if !ok {
		if t <= 0.5 {
			return v1, false
		}
		return v2, false
	}

	p := r3.Add(r3.Scale(w1, v1), r3.Scale(w2, v2))
	return r3.Add(p, r3.Scale(1-w1-w2, pivot)), true
}

// Weights returns the weights of the two endpoints at t. t is clamped to
// [0, 1]. ok is false if the weight denominator s + f is zero or not finite,
// which is only possible for exponents which are not positive and finite.
//
// Both bases are divided by the larger of the two before being raised to the
// exponent. This leaves the ratios unchanged and keeps s + f >= 1, so large
// exponents cannot underflow both terms to zero.
func Weights(t, exponent float64) (w1, w2 float64, ok bool) {
	if !(exponent > 0) || math.IsInf(exponent, 0) {
		return 0, 0, false
	}

	t = clamp(t)
	a, b := 1-t, t
	m := math.Max(a, b)

	s := math.Pow(a/m, exponent)
	f := math.Pow(b/m, exponent)
	sum := s + f
	if sum == 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return 0, 0, false
	}

	inv := 1 / exponent
	return math.Pow(s/sum, inv), math.Pow(f/sum, inv), true
}

func clamp(t float64) float64 {
	return math.Min(1, math.Max(t, 0))
}
