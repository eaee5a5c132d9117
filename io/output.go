package io

import (
	"bufio"
	"fmt"
	"io"

	"github.com/phil-mansfield/curvetri"
	"github.com/phil-mansfield/curvetri/geom"
)

// WriteOBJ writes tessellated surfaces to wr as a Wavefront OBJ file, one
// object per surface. Vertices are not shared between triangles.
func WriteOBJ(wr io.Writer, names []string, meshes [][]geom.Triangle) error {
	if len(names) != len(meshes) {
		return fmt.Errorf(
			"Given %d names for %d meshes.", len(names), len(meshes),
		)
	}

	bw := bufio.NewWriter(wr)
	vertex := 1
	for i, mesh := range meshes {
		fmt.Fprintf(bw, "o %s\n", names[i])
		for _, tri := range mesh {
			for _, v := range tri {
				fmt.Fprintf(bw, "v %.10g %.10g %.10g\n", v.X, v.Y, v.Z)
			}
			fmt.Fprintf(bw, "f %d %d %d\n", vertex, vertex+1, vertex+2)
			vertex += 3
		}
	}
	return bw.Flush()
}

// WritePoints writes one point per line, preceded by a comment line holding
// header if it is non-empty.
func WritePoints(wr io.Writer, header string, xs []geom.Vec) error {
	bw := bufio.NewWriter(wr)
	if header != "" {
		fmt.Fprintf(bw, "# %s\n", header)
	}
	for _, x := range xs {
		fmt.Fprintf(bw, "%.10g %.10g %.10g\n", x.X, x.Y, x.Z)
	}
	return bw.Flush()
}

// WriteHits writes one line per ray: the index of the surface which was hit,
// the distance along the ray, and the hit point. Misses are written with a
// surface index of -1.
func WriteHits(wr io.Writer, hits []curvetri.Hit) error {
	bw := bufio.NewWriter(wr)
	fmt.Fprintln(bw, "# surface t x y z")
	for i := range hits {
		h := &hits[i]
		fmt.Fprintf(
			bw, "%d %.10g %.10g %.10g %.10g\n",
			h.Surface, h.T, h.Point.X, h.Point.Y, h.Point.Z,
		)
	}
	return bw.Flush()
}
