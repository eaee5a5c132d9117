package patch

import (
	"github.com/phil-mansfield/curvetri/geom"
)

// Triangulate approximates the surface with accuracy^2 flat triangles.
//
// The base triangle is cut into rows fanning out from Corners[1]: row k runs
// between the points k/accuracy of the way towards Corners[0] and Corners[2]
// and is split into k segments, giving 2k - 1 triangles. Every vertex is then
// moved onto the surface. Triangulate returns nil if accuracy < 1.
func (s *Surface) Triangulate(accuracy int) []geom.Triangle {
	if accuracy < 1 {
		return nil
	}

	c := &s.con.Corners
	out := make([]geom.Triangle, 0, accuracy*accuracy)
	prev := []geom.Vec{s.Point(c[1])}

	for row := 1; row <= accuracy; row++ {
		f := float64(row) / float64(accuracy)
		left, right := geom.Lerp(c[1], c[0], f), geom.Lerp(c[1], c[2], f)

		curr := make([]geom.Vec, row+1)
		curr[0] = s.Point(left)
		for j := 1; j <= row; j++ {
			base := geom.Lerp(left, right, float64(j)/float64(row))
			curr[j] = s.Point(base)

			out = append(out, geom.Triangle{prev[j-1], curr[j-1], curr[j]})
			if j > 1 {
				out = append(out, geom.Triangle{prev[j-2], prev[j-1], curr[j-1]})
			}
		}

		prev = curr
	}

	return out
}

// Trace returns steps + 1 surface points above the straight segment from
// from to to in the base plane. It returns nil if steps < 1.
func (s *Surface) Trace(from, to geom.Vec, steps int) []geom.Vec {
	if steps < 1 {
		return nil
	}

	out := make([]geom.Vec, steps+1)
	for i := range out {
		out[i] = s.Point(geom.Lerp(from, to, float64(i)/float64(steps)))
	}
	return out
}
