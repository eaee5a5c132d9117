package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/phil-mansfield/curvetri"
	"github.com/phil-mansfield/curvetri/geom"
	"github.com/phil-mansfield/curvetri/io"
	"github.com/phil-mansfield/curvetri/patch"
)

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close stops profiling, points the logger back at stderr, and closes the
// files inside FileGroup.
func (fg *FileGroup) Close() error {
	var err error
	if fg.prof != nil {
		pprof.StopCPUProfile()
		err = fg.prof.Close()
		fg.prof = nil
	}

	if fg.log != nil {
		log.SetOutput(os.Stderr)
		if lerr := fg.log.Close(); err == nil {
			err = lerr
		}
		fg.log = nil
	}

	return err
}

func main() {
	var (
		meshStr, evalStr, castStr, curvesStr string
		exampleConfig                        string
		threads                              int
	)
	vars := map[string]*string{
		"Mesh":          &meshStr,
		"Eval":          &evalStr,
		"Cast":          &castStr,
		"Curves":        &curvesStr,
		"ExampleConfig": &exampleConfig,
	}

	flag.IntVar(
		&threads, "Threads", 0,
		"Number of threads used. Overrides the config file. Default is the "+
			"number of logical cores.",
	)
	flag.StringVar(
		&meshStr, "Mesh", "",
		"Configuration file for [Mesh] mode. Tessellates every surface and "+
			"prints the result to stdout as an OBJ file.",
	)
	flag.StringVar(
		&evalStr, "Eval", "",
		"Configuration file for [Eval] mode, followed by at least one "+
			"points file. Maps every point onto every surface.",
	)
	flag.StringVar(
		&castStr, "Cast", "",
		"Configuration file for [Cast] mode, followed by a rays file. "+
			"Prints the nearest hit of each ray.",
	)
	flag.StringVar(
		&curvesStr, "Curves", "",
		"Configuration file for [Curves] mode. Prints samples along the "+
			"edges and medians of every surface.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. Accepted arguments are 'Sample', "+
			"'Patch', and 'Sphere'.",
	)

	flag.Parse()

	// Figure out the mode and fail with a descriptive error is the user gave
	// incorrect flags.
	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	fg := &FileGroup{}
	switch modeName {
	case "Mesh":
		err = runMode(fg, meshStr, threads, meshMain)

	case "Eval":
		files := flag.Args()
		if len(files) < 1 {
			log.Fatal("Must supply at least one points file.")
		}
		err = runMode(fg, evalStr, threads,
			func(wrap *io.SurfaceWrapper, man *curvetri.Manager) error {
				return evalMain(wrap, man, files)
			},
		)

	case "Cast":
		files := flag.Args()
		if len(files) != 1 {
			log.Fatal("Must supply exactly one rays file.")
		}
		err = runMode(fg, castStr, threads,
			func(wrap *io.SurfaceWrapper, man *curvetri.Manager) error {
				return castMain(wrap, man, files[0])
			},
		)

	case "Curves":
		err = runMode(fg, curvesStr, threads, curvesMain)

	case "ExampleConfig":
		switch exampleConfig {
		case "Sample":
			fmt.Println(io.ExampleSampleFile)
		case "Patch":
			fmt.Println(io.ExamplePatchFile)
		case "Sphere":
			fmt.Println(io.ExampleSphereFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Sample', 'Patch', and 'Sphere'.",
			)
		}

	default:
		panic("Impossible")
	}

	// Profiles and log files need to be closed before exiting, even on
	// failure.
	if cerr := fg.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatal(err.Error())
	}
}

// runMode sets up a Manager for the given config file and hands it to mode.
// Files opened during setup are left in fg for the caller to close.
func runMode(
	fg *FileGroup, fname string, threads int,
	mode func(*io.SurfaceWrapper, *curvetri.Manager) error,
) error {
	wrap, man, err := setup(fg, fname, threads)
	if err != nil {
		return err
	}
	return mode(wrap, man)
}

// getModeName returns the name of the mode and fails with a descriptive error
// if the user provided less or more than one mode flag.
func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but curvetri "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

// surfaceNames[i] is the config name of the Manager's i'th surface.
var surfaceNames []string

// setup reads the config file, starts logging and profiling, and builds a
// Manager for every surface in the file.
func setup(
	fg *FileGroup, fname string, threads int,
) (*io.SurfaceWrapper, *curvetri.Manager, error) {
	wrap, err := io.ReadSurfaceConfig(fname)
	if err != nil {
		return nil, nil, err
	}
	con := &wrap.Sample

	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil {
			return nil, nil, err
		}
		log.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			return nil, nil, err
		}
		if err = pprof.StartCPUProfile(fg.prof); err != nil {
			fg.prof.Close()
			fg.prof = nil
			return nil, nil, err
		}
	}

	surfaces, names, err := wrap.Surfaces()
	if err != nil {
		return nil, nil, err
	}
	surfaceNames = names

	man := curvetri.NewManager(surfaces, con.ValidLogFile())
	if threads > 0 {
		man.SetWorkers(threads)
	} else {
		man.SetWorkers(con.Threads)
	}
	man.SetSteps(con.SearchSteps, con.RefineSteps)

	return wrap, man, nil
}

func meshMain(wrap *io.SurfaceWrapper, man *curvetri.Manager) error {
	con := &wrap.Sample
	meshes := man.Triangulate(con.Accuracy)

	if err := io.WriteOBJ(os.Stdout, surfaceNames, meshes); err != nil {
		return err
	}

	if con.ValidMeshFile() {
		return io.WriteMeshFile(con.MeshFile, con.Accuracy, meshes)
	}
	return nil
}

func evalMain(
	wrap *io.SurfaceWrapper, man *curvetri.Manager, files []string,
) error {
	for _, file := range files {
		xs, err := io.ReadPoints(file)
		if err != nil {
			return err
		}
		out := make([]geom.Vec, len(xs))

		for si := range man.Surfaces() {
			if err = man.EvalPoints(si, xs, out); err != nil {
				return err
			}

			header := fmt.Sprintf("%s %s", file, surfaceNames[si])
			if err = io.WritePoints(os.Stdout, header, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func castMain(
	wrap *io.SurfaceWrapper, man *curvetri.Manager, file string,
) error {
	rays, err := io.ReadRays(file)
	if err != nil {
		return err
	}

	hits := make([]curvetri.Hit, len(rays))
	if err = man.Cast(rays, hits); err != nil {
		return err
	}
	return io.WriteHits(os.Stdout, hits)
}

func curvesMain(wrap *io.SurfaceWrapper, man *curvetri.Manager) error {
	steps := wrap.Sample.Steps

	for si, s := range man.Surfaces() {
		base := s.Base()
		for i := 0; i < 3; i++ {
			edge := s.Edge(i)
			header := fmt.Sprintf("%s edge %d", surfaceNames[si], i)
			err := io.WritePoints(os.Stdout, header, edge.Sample(steps))
			if err != nil {
				return err
			}
		}

		for i := 0; i < 3; i++ {
			start, end := base.Edge((i + 1) % 3)
			mid := geom.Lerp(start, end, 0.5)
			header := fmt.Sprintf("%s median %d", surfaceNames[si], i)
			err := io.WritePoints(os.Stdout, header, s.Trace(base[i], mid, steps))
			if err != nil {
				return err
			}
		}

		if _, c := s.Check(base.Centroid()); c != patch.OK {
			log.Printf("Surface %s: centroid hit %s.", surfaceNames[si], c)
		}
	}
	return nil
}
