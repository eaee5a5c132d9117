package io

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/curvetri/geom"
	"github.com/phil-mansfield/curvetri/patch"
)

const (
	ExampleSampleFile = `[Sample]

# Controls how surfaces are sampled. Every parameter here is optional. A
# config file also needs at least one Patch or Sphere section to be useful.

# Number of rows used when tessellating each patch. A patch becomes
# Accuracy^2 triangles.
# Accuracy = 8

# Number of segments used when tracing edge curves.
# Steps = 32

# Bisection rounds used by ray casting. SearchSteps rounds are spent looking
# for the surface and RefineSteps rounds are spent narrowing in on it. Each
# round halves the uncertainty in the hit distance.
# SearchSteps = 5
# RefineSteps = 3

# Number of goroutines to use. Defaults to the number of cores.
# Threads = 4

# If set, -Mesh also writes the tessellation to this file in binary form.
# MeshFile = mesh.out

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`

	ExamplePatchFile = `[Patch "my_patch"]
# A flat triangle whose three edges are replaced with curves. Edge i runs
# from corner i to corner i+1 (wrapping around) and bends relative to pivot
# i. Vectors are written as three comma-separated numbers.

#######################
# Required Parameters #
#######################

Corner = 1, 0, 0
Corner = 0, 1, 0
Corner = 0, 0, 1

#######################
# Optional Parameters #
#######################

# Either one pivot shared by every edge or one per edge. Defaults to the
# origin.
Pivot = 0, 0, 0

# Either one exponent shared by every edge or one per edge. An exponent of
# 1 gives a straight edge, larger exponents bow the edge away from its pivot
# and smaller ones pull it in. Defaults to 2.
Exponent = 2
Exponent = 1
Exponent = 0.5

# Euler angles (radians) of a rotation about the origin applied to every
# corner and pivot.
# Phi = 0
# Theta = 0
# Psi = 0`

	ExampleSphereFile = `[Sphere "my_sphere"]
# Eight patches, one per octant, which approximate a sphere. With the
# default exponent and a center at the origin they lie on it exactly.

#######################
# Required Parameters #
#######################

X = 0
Y = 0
Z = 0
Radius = 1

#######################
# Optional Parameters #
#######################

# Exponent = 2

# Euler angles (radians) applied before the sphere is moved to its center.
# Phi = 0
# Theta = 0
# Psi = 0`
)

type SampleConfig struct {
	// Optional
	Accuracy, Steps          int
	SearchSteps, RefineSteps int
	Threads                  int
	MeshFile                 string
	LogFile, ProfileFile     string
}

func (con *SampleConfig) ValidAccuracy() bool    { return con.Accuracy > 0 }
func (con *SampleConfig) ValidSteps() bool       { return con.Steps > 0 }
func (con *SampleConfig) ValidSearchSteps() bool { return con.SearchSteps > 0 }
func (con *SampleConfig) ValidRefineSteps() bool { return con.RefineSteps >= 0 }
func (con *SampleConfig) ValidThreads() bool     { return con.Threads >= 0 }
func (con *SampleConfig) ValidMeshFile() bool    { return con.MeshFile != "" }
func (con *SampleConfig) ValidLogFile() bool     { return con.LogFile != "" }
func (con *SampleConfig) ValidProfileFile() bool { return con.ProfileFile != "" }

func (con *SampleConfig) CheckInit() error {
	if !con.ValidAccuracy() {
		return fmt.Errorf(
			"Need to specify a positive Accuracy, but it is %d.", con.Accuracy,
		)
	} else if !con.ValidSteps() {
		return fmt.Errorf(
			"Need to specify a positive Steps, but it is %d.", con.Steps,
		)
	} else if !con.ValidSearchSteps() {
		return fmt.Errorf(
			"Need to specify a positive SearchSteps, but it is %d.",
			con.SearchSteps,
		)
	} else if !con.ValidRefineSteps() {
		return fmt.Errorf(
			"RefineSteps cannot be negative, but it is %d.", con.RefineSteps,
		)
	} else if !con.ValidThreads() {
		return fmt.Errorf(
			"Threads cannot be negative, but it is %d.", con.Threads,
		)
	}
	return nil
}

type PatchConfig struct {
	// Required
	Corner []string

	// Optional
	Pivot           []string
	Exponent        []float64
	Phi, Theta, Psi float64

	// Optional, "undocumented"
	Name string
}

func (p *PatchConfig) CheckInit(name string) error {
	p.Name = name
	_, err := p.Config()
	return err
}

// Config converts p into a patch.Config, rotation included.
func (p *PatchConfig) Config() (*patch.Config, error) {
	con := &patch.Config{}

	if len(p.Corner) != 3 {
		return nil, fmt.Errorf(
			"Patch '%s' needs exactly three Corner values, but has %d.",
			p.Name, len(p.Corner),
		)
	}
	for i := range p.Corner {
		v, err := ParseVec(p.Corner[i])
		if err != nil {
			return nil, fmt.Errorf("Corner %d of Patch '%s': %s", i, p.Name, err)
		}
		con.Corners[i] = v
	}

	switch len(p.Pivot) {
	case 0:
	case 1, 3:
		for i := range con.Pivots {
			v, err := ParseVec(p.Pivot[i%len(p.Pivot)])
			if err != nil {
				return nil, fmt.Errorf(
					"Pivot %d of Patch '%s': %s", i, p.Name, err,
				)
			}
			con.Pivots[i] = v
		}
	default:
		return nil, fmt.Errorf(
			"Patch '%s' needs one or three Pivot values, but has %d.",
			p.Name, len(p.Pivot),
		)
	}

	switch len(p.Exponent) {
	case 0:
		con.Exponents = [3]float64{2, 2, 2}
	case 1, 3:
		for i := range con.Exponents {
			con.Exponents[i] = p.Exponent[i%len(p.Exponent)]
		}
	default:
		return nil, fmt.Errorf(
			"Patch '%s' needs one or three Exponent values, but has %d.",
			p.Name, len(p.Exponent),
		)
	}

	if p.Phi != 0 || p.Theta != 0 || p.Psi != 0 {
		con.Rotate(geom.EulerMatrix(p.Phi, p.Theta, p.Psi))
	}

	if err := con.Validate(); err != nil {
		return nil, fmt.Errorf("Patch '%s': %s", p.Name, err)
	}
	return con, nil
}

type SphereConfig struct {
	// Required
	X, Y, Z, Radius float64

	// Optional
	Exponent        float64
	Phi, Theta, Psi float64

	// Optional, "undocumented"
	Name string
}

func (sph *SphereConfig) CheckInit(name string) error {
	sph.Name = name

	if !(sph.Radius > 0) || math.IsInf(sph.Radius, 0) {
		return fmt.Errorf(
			"Need to specify a positive Radius for Sphere '%s'.", name,
		)
	}

	if sph.Exponent == 0 {
		sph.Exponent = 2
	} else if !(sph.Exponent > 0) || math.IsInf(sph.Exponent, 0) {
		return fmt.Errorf(
			"Sphere '%s' given a non-positive Exponent, %g.",
			name, sph.Exponent,
		)
	}

	cons := sph.Configs()
	for i := range cons {
		if err := cons[i].Validate(); err != nil {
			return fmt.Errorf("Sphere '%s', octant %d: %s", name, i, err)
		}
	}

	return nil
}

// Configs returns the configurations of the sphere's eight octant patches.
func (sph *SphereConfig) Configs() []patch.Config {
	cons := patch.SphereConfigs(geom.Vec{}, sph.Radius, sph.Exponent)
	center := geom.Vec{X: sph.X, Y: sph.Y, Z: sph.Z}

	rotate := sph.Phi != 0 || sph.Theta != 0 || sph.Psi != 0
	m := geom.EulerMatrix(sph.Phi, sph.Theta, sph.Psi)
	for i := range cons {
		if rotate {
			cons[i].Rotate(m)
		}
		cons[i].Translate(center)
	}

	return cons
}

type SurfaceWrapper struct {
	Sample SampleConfig
	Patch  map[string]*PatchConfig
	Sphere map[string]*SphereConfig
}

func DefaultSurfaceWrapper() *SurfaceWrapper {
	con := SampleConfig{}
	con.Accuracy = 8
	con.Steps = 32
	con.SearchSteps = patch.SearchSteps
	con.RefineSteps = patch.RefineSteps
	return &SurfaceWrapper{Sample: con}
}

// ReadSurfaceConfig reads and checks the config file fname.
func ReadSurfaceConfig(fname string) (*SurfaceWrapper, error) {
	wrap := DefaultSurfaceWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	if err := wrap.CheckInit(); err != nil {
		return nil, err
	}
	return wrap, nil
}

// ReadSurfaceConfigString is identical to ReadSurfaceConfig, but reads the
// config from a string.
func ReadSurfaceConfigString(str string) (*SurfaceWrapper, error) {
	wrap := DefaultSurfaceWrapper()
	if err := gcfg.ReadStringInto(wrap, str); err != nil {
		return nil, err
	}
	if err := wrap.CheckInit(); err != nil {
		return nil, err
	}
	return wrap, nil
}

func (wrap *SurfaceWrapper) CheckInit() error {
	if err := wrap.Sample.CheckInit(); err != nil {
		return err
	}

	if len(wrap.Patch) == 0 && len(wrap.Sphere) == 0 {
		return fmt.Errorf("Need to specify at least one Patch or Sphere.")
	}

	for name, p := range wrap.Patch {
		if err := p.CheckInit(name); err != nil {
			return err
		}
	}
	for name, sph := range wrap.Sphere {
		if err := sph.CheckInit(name); err != nil {
			return err
		}
	}

	return nil
}

// Surfaces builds every surface described by the config. Patches come first,
// then the eight octants of each sphere, each group sorted by name. names[i]
// names surfaces[i]; sphere octants get the suffix ".<octant>".
func (wrap *SurfaceWrapper) Surfaces() (
	surfaces []*patch.Surface, names []string, err error,
) {
	for _, name := range sortedKeys(wrap.Patch) {
		con, err := wrap.Patch[name].Config()
		if err != nil {
			return nil, nil, err
		}
		surfaces = append(surfaces, patch.New(con))
		names = append(names, name)
	}

	for _, name := range sortedKeys(wrap.Sphere) {
		cons := wrap.Sphere[name].Configs()
		for i := range cons {
			surfaces = append(surfaces, patch.New(&cons[i]))
			names = append(names, fmt.Sprintf("%s.%d", name, i))
		}
	}

	return surfaces, names, nil
}

func sortedKeys[T any](m map[string]*T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseVec parses a vector written as "x, y, z".
func ParseVec(str string) (geom.Vec, error) {
	toks := strings.Split(str, ",")
	if len(toks) != 3 {
		return geom.Vec{}, fmt.Errorf(
			"'%s' must have three comma-separated components.", str,
		)
	}

	var xs [3]float64
	for i, tok := range toks {
		x, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return geom.Vec{}, fmt.Errorf(
				"Component %d of '%s' is not a number.", i, str,
			)
		}
		xs[i] = x
	}

	return geom.FromAxes(&xs), nil
}
