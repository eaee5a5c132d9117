package patch

import (
	"github.com/phil-mansfield/curvetri/geom"
)

// Sphere builds a closed surface out of eight patches, one per octant. The
// corners of each patch lie on the coordinate axes through center, a
// distance radius away, and every pivot is center itself.
//
// With an exponent of two the edges are exact great circle arcs. The
// interior blend works on absolute coordinates, so the patches only lie
// exactly on the sphere when center is the origin.
func Sphere(center geom.Vec, radius, exponent float64) []*Surface {
	cons := SphereConfigs(center, radius, exponent)
	out := make([]*Surface, len(cons))
	for i := range cons {
		out[i] = New(&cons[i])
	}
	return out
}

// SphereConfigs returns the configurations used by Sphere. Octant i has a
// negative x corner if bit 0 of i is set, a negative y corner if bit 1 is
// set and a negative z corner if bit 2 is set.
func SphereConfigs(center geom.Vec, radius, exponent float64) []Config {
	out := make([]Config, 8)
	for oct := range out {
		x, y, z := octantSign(oct, 1), octantSign(oct, 2), octantSign(oct, 4)

		out[oct] = Config{
			Corners: geom.Triangle{
				{X: x * radius}, {Y: y * radius}, {Z: z * radius},
			},
			Exponents: [3]float64{exponent, exponent, exponent},
		}
		out[oct].Translate(center)
	}
	return out
}

func octantSign(oct, bit int) float64 {
	if oct&bit == 0 {
		return +1
	}
	return -1
}
