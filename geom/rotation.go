package geom

import (
	. "math"

	"gonum.org/v1/gonum/spatial/r3"
)

// EulerMatrix creates a 3D rotation matrix based off the Euler angles phi,
// theta, and psi. These represent three consecutive rotations around the x,
// y, and z axes, respectively.
func EulerMatrix(phi, theta, psi float64) *r3.Mat {
	return r3.NewMat([]float64{
		Cos(theta) * Cos(psi),
		Cos(phi)*Sin(psi) + Sin(phi)*Sin(theta)*Cos(psi),
		Sin(phi)*Sin(psi) - Cos(phi)*Sin(theta)*Cos(psi),
		-Cos(theta) * Sin(psi),
		Cos(phi)*Cos(psi) - Sin(phi)*Sin(theta)*Sin(psi),
		Sin(phi)*Cos(psi) + Cos(phi)*Sin(theta)*Sin(psi),
		Sin(theta),
		-Sin(phi) * Cos(theta),
		Cos(phi) * Cos(theta),
	})
}

// Rotate rotates a vector by the given rotation matrix.
func Rotate(m *r3.Mat, v Vec) Vec {
	return m.MulVec(v)
}

// Rotate rotates a triangle about the origin by the given rotation matrix.
func (tri *Triangle) Rotate(m *r3.Mat) {
	for i := range tri {
		tri[i] = m.MulVec(tri[i])
	}
}
