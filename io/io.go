package io

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/phil-mansfield/table"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/curvetri/geom"
)

const (
	// Endianness used by default when writing meshes. Meshes of any
	// endianness can be read.
	DefaultEndiannessFlag int32 = -1

	// readChunk is the largest number of counts or triangles allocated at
	// once by ReadMesh. Header counts are not trusted until the data behind
	// them has been read.
	readChunk = 1 << 14
)

// MeshHeader describes the contents of a binary mesh file. A mesh file is
// made up of a four byte endianness flag, a four byte header size, the
// header, the triangle count of every surface as int64s, and finally every
// triangle as nine float64s.
type MeshHeader struct {
	// Number of surfaces and total number of triangles.
	Surfaces, Triangles int64
	// Accuracy used to tessellate each surface.
	Accuracy int64
}

func endianness(flag int32) binary.ByteOrder {
	if flag == 0 {
		return binary.BigEndian
	} else if flag == -1 {
		return binary.LittleEndian
	} else {
		panic("Unrecognized endianness flag.")
	}
}

// ReadPoints reads the first three columns of a whitespace-separated text
// file as points.
func ReadPoints(fname string) ([]geom.Vec, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2}, nil)
	if err != nil {
		return nil, err
	}

	xs := make([]geom.Vec, len(cols[0]))
	for i := range xs {
		xs[i] = geom.Vec{X: cols[0][i], Y: cols[1][i], Z: cols[2][i]}
	}
	return xs, nil
}

// ReadRays reads the first six columns of a whitespace-separated text file
// as rays: three origin columns followed by three direction columns.
// Directions are normalized.
func ReadRays(fname string) ([]geom.Ray, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2, 3, 4, 5}, nil)
	if err != nil {
		return nil, err
	}

	rays := make([]geom.Ray, len(cols[0]))
	for i := range rays {
		origin := geom.Vec{X: cols[0][i], Y: cols[1][i], Z: cols[2][i]}
		dir := geom.Vec{X: cols[3][i], Y: cols[4][i], Z: cols[5][i]}
		if dir == (geom.Vec{}) {
			return nil, fmt.Errorf(
				"Ray %d in file %s has a zero direction.", i, fname,
			)
		}
		rays[i] = *geom.NewRay(origin, r3.Add(origin, dir))
	}
	return rays, nil
}

// WriteMesh writes a set of tessellated surfaces to wr in binary form.
func WriteMesh(wr io.Writer, accuracy int, meshes [][]geom.Triangle) error {
	order := endianness(DefaultEndiannessFlag)

	hd := MeshHeader{Surfaces: int64(len(meshes)), Accuracy: int64(accuracy)}
	counts := make([]int64, len(meshes))
	for i := range meshes {
		counts[i] = int64(len(meshes[i]))
		hd.Triangles += counts[i]
	}

	if err := binary.Write(wr, order, DefaultEndiannessFlag); err != nil {
		return err
	}
	if err := binary.Write(wr, order, int32(unsafe.Sizeof(hd))); err != nil {
		return err
	}
	if err := binary.Write(wr, order, &hd); err != nil {
		return err
	}
	if err := binary.Write(wr, order, counts); err != nil {
		return err
	}
	for i := range meshes {
		if err := binary.Write(wr, order, meshes[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteMeshFile writes a set of tessellated surfaces to the given file.
func WriteMeshFile(file string, accuracy int, meshes [][]geom.Triangle) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err = WriteMesh(f, accuracy, meshes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadMesh reads a mesh written by WriteMesh.
func ReadMesh(rd io.Reader) (*MeshHeader, [][]geom.Triangle, error) {
	hd := &MeshHeader{}

	var flag int32
	// order doesn't matter for this read, since flags are symmetric.
	if err := binary.Read(rd, binary.LittleEndian, &flag); err != nil {
		return nil, nil, err
	}
	if flag != 0 && flag != -1 {
		return nil, nil, fmt.Errorf("Unrecognized endianness flag, %d.", flag)
	}
	order := endianness(flag)

	var headerSize int32
	if err := binary.Read(rd, order, &headerSize); err != nil {
		return nil, nil, err
	}
	if headerSize != int32(unsafe.Sizeof(MeshHeader{})) {
		return nil, nil, fmt.Errorf(
			"Expected MeshHeader size of %d, found %d.",
			unsafe.Sizeof(MeshHeader{}), headerSize,
		)
	}

	if err := binary.Read(rd, order, hd); err != nil {
		return nil, nil, err
	}
	if hd.Surfaces < 0 || hd.Triangles < 0 {
		return nil, nil, fmt.Errorf(
			"Header has %d surfaces and %d triangles.",
			hd.Surfaces, hd.Triangles,
		)
	}

	counts, err := readInt64s(rd, order, hd.Surfaces)
	if err != nil {
		return nil, nil, fmt.Errorf(
			"Could not read %d triangle counts: %w", hd.Surfaces, err,
		)
	}

	total := int64(0)
	for i, n := range counts {
		if n < 0 {
			return nil, nil, fmt.Errorf(
				"Surface %d has a negative triangle count, %d.", i, n,
			)
		} else if n > hd.Triangles-total {
			return nil, nil, fmt.Errorf(
				"Header lists %d triangles, but surfaces contain more.",
				hd.Triangles,
			)
		}
		total += n
	}
	if total != hd.Triangles {
		return nil, nil, fmt.Errorf(
			"Header lists %d triangles, but surfaces contain %d.",
			hd.Triangles, total,
		)
	}

	meshes := make([][]geom.Triangle, len(counts))
	for i := range meshes {
		meshes[i], err = readTriangles(rd, order, counts[i])
		if err != nil {
			return nil, nil, fmt.Errorf(
				"Could not read %d triangles of surface %d: %w",
				counts[i], i, err,
			)
		}
	}

	return hd, meshes, nil
}

// readInt64s reads n int64s from rd, at most readChunk at a time.
func readInt64s(rd io.Reader, order binary.ByteOrder, n int64) ([]int64, error) {
	out := []int64{}
	for int64(len(out)) < n {
		buf := make([]int64, min(n-int64(len(out)), readChunk))
		if err := binary.Read(rd, order, buf); err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}
	return out, nil
}

// readTriangles reads n triangles from rd, at most readChunk at a time.
func readTriangles(
	rd io.Reader, order binary.ByteOrder, n int64,
) ([]geom.Triangle, error) {
	out := []geom.Triangle{}
	for int64(len(out)) < n {
		buf := make([]geom.Triangle, min(n-int64(len(out)), readChunk))
		if err := binary.Read(rd, order, buf); err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}
	return out, nil
}

// ReadMeshFile reads a mesh from the given file.
func ReadMeshFile(file string) (*MeshHeader, [][]geom.Triangle, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ReadMesh(f)
}
