package patch

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/curvetri/geom"
)

// Config describes a curved patch. Edge i runs from Corners[i] to
// Corners[(i + 1) % 3] and is shaped by Pivots[i] and Exponents[i].
type Config struct {
	Corners   geom.Triangle
	Pivots    [3]geom.Vec
	Exponents [3]float64
}

// Validate returns an error describing the first problem with the
// configuration which would force the evaluator onto one of its fallback
// branches. A Surface can still be built from an invalid Config; Validate is
// for drivers which would rather complain than get sentinel values.
func (con *Config) Validate() error {
	if area := con.Corners.Area(); area < geom.AreaEps {
		return fmt.Errorf(
			"Corners %v are degenerate: doubled area %g is below %g.",
			con.Corners, area, geom.AreaEps,
		)
	}

	for i, c := range con.Corners {
		if !geom.IsFinite(c) {
			return fmt.Errorf("Corner %d, %v, is not finite.", i, c)
		}
	}

	for i, p := range con.Pivots {
		if !geom.IsFinite(p) {
			return fmt.Errorf("Pivot %d, %v, is not finite.", i, p)
		}
	}

	for i, e := range con.Exponents {
		if !(e > 0) || math.IsInf(e, 0) {
			return fmt.Errorf(
				"Exponent %d must be positive and finite, but is %g.", i, e,
			)
		}
	}

	return nil
}

// Rotate rotates the corners and pivots about the origin.
func (con *Config) Rotate(m *r3.Mat) {
	con.Corners.Rotate(m)
	for i := range con.Pivots {
		con.Pivots[i] = geom.Rotate(m, con.Pivots[i])
	}
}

// Translate moves the corners and pivots by dx.
func (con *Config) Translate(dx geom.Vec) {
	for i := 0; i < 3; i++ {
		con.Corners[i] = r3.Add(con.Corners[i], dx)
		con.Pivots[i] = r3.Add(con.Pivots[i], dx)
	}
}
