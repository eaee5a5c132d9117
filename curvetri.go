/*package curvetri runs batches of curved patch evaluations across all
available cores.

A Manager owns a set of immutable patch.Surfaces. Each batch is split between
workers by striding through the input, with worker id handling indices id,
id + workers, id + 2*workers, and so on. Workers never write to the same
index, and each reports back on a shared channel when it is done.
*/
package curvetri

import (
	"fmt"
	"log"
	"math"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/curvetri/geom"
	"github.com/phil-mansfield/curvetri/patch"
)

// Hit is the nearest intersection between a ray and any of a Manager's
// surfaces.
type Hit struct {
	patch.Hit
	// Surface is the index of the surface which was hit, or -1 if the ray
	// missed everything. In that case T is +Inf.
	Surface int
}

// Ok returns true if the ray hit something.
func (h *Hit) Ok() bool { return h.Surface >= 0 }

// Manager runs batches over a fixed set of surfaces. Batch methods may be
// called from several goroutines at once; the Set* methods and Log may not
// overlap with a running batch.
type Manager struct {
	surfaces []*patch.Surface
	bounds   []r3.Box

	search, refine int

	log     bool
	workers int
}

// workspace holds per-worker tallies for a single batch. Only worker id
// writes to the id'th workspace.
type workspace struct {
	fallbacks int
	misses    int
}

// NewManager creates a Manager for the given surfaces. Surfaces are shared,
// not copied.
func NewManager(surfaces []*patch.Surface, logFlag bool) *Manager {
	man := new(Manager)
	man.log = logFlag

	man.surfaces = surfaces
	man.bounds = make([]r3.Box, len(surfaces))
	for i, s := range surfaces {
		man.bounds[i] = s.Bounds()
	}

	man.search, man.refine = patch.SearchSteps, patch.RefineSteps
	man.SetWorkers(runtime.NumCPU())

	if man.log {
		log.Printf(
			"Loaded %d surfaces. Number of workers: %d",
			len(man.surfaces), man.workers,
		)
	}

	return man
}

// SetWorkers sets the number of goroutines used by each batch. Values below
// one are treated as runtime.NumCPU().
func (man *Manager) SetWorkers(workers int) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	man.workers = workers
}

// Workers returns the number of goroutines used by each batch.
func (man *Manager) Workers() int { return man.workers }

// SetSteps sets the number of search and refine rounds used by Cast.
func (man *Manager) SetSteps(search, refine int) {
	man.search, man.refine = search, refine
}

// Log turns progress logging on or off.
func (man *Manager) Log(flag bool) { man.log = flag }

// Surfaces returns the surfaces managed by man.
func (man *Manager) Surfaces() []*patch.Surface { return man.surfaces }

// EvalPoints maps each point in xs onto surface si and writes the results to
// out.
func (man *Manager) EvalPoints(si int, xs, out []geom.Vec) error {
	if si < 0 || si >= len(man.surfaces) {
		return fmt.Errorf(
			"Surface index %d out of range for %d surfaces.",
			si, len(man.surfaces),
		)
	} else if len(xs) != len(out) {
		return fmt.Errorf(
			"Given %d input points, but %d output points.", len(xs), len(out),
		)
	}

	ws := man.run(func(id int, w *workspace) {
		man.chanEval(id, w, si, xs, out)
	})

	if man.log {
		fallbacks := 0
		for i := range ws {
			fallbacks += ws[i].fallbacks
		}
		log.Printf(
			"Evaluated %d points on surface %d, %d fell back to a "+
				"degenerate branch.", len(xs), si, fallbacks,
		)
	}

	return nil
}

// Triangulate tessellates every surface with accuracy^2 triangles.
func (man *Manager) Triangulate(accuracy int) [][]geom.Triangle {
	out := make([][]geom.Triangle, len(man.surfaces))
	man.run(func(id int, _ *workspace) {
		for si := id; si < len(man.surfaces); si += man.workers {
			out[si] = man.surfaces[si].Triangulate(accuracy)
		}
	})

	if man.log {
		ms := runtime.MemStats{}
		runtime.ReadMemStats(&ms)
		log.Printf(
			"Triangulated %d surfaces. Alloc: %5d MB, Sys: %5d MB",
			len(out), ms.Alloc>>20, ms.Sys>>20,
		)
	}

	return out
}

// Cast finds the nearest hit between each ray and the surfaces and writes it
// to hits. Surfaces whose bounds a ray misses are skipped.
func (man *Manager) Cast(rays []geom.Ray, hits []Hit) error {
	if len(rays) != len(hits) {
		return fmt.Errorf(
			"Given %d rays, but %d hit slots.", len(rays), len(hits),
		)
	}

	ws := man.run(func(id int, w *workspace) {
		man.chanCast(id, w, rays, hits)
	})

	if man.log {
		misses := 0
		for i := range ws {
			misses += ws[i].misses
		}
		log.Printf("Cast %d rays, %d missed.", len(rays), misses)
	}

	return nil
}

// run calls f once per worker id, waits for every call to finish, and
// returns the workspaces the calls wrote to.
func (man *Manager) run(f func(id int, w *workspace)) []workspace {
	workers := man.workers
	ws := make([]workspace, workers)
	out := make(chan int, workers)

	for id := 0; id < workers-1; id++ {
		go func(id int) {
			f(id, &ws[id])
			out <- id
		}(id)
	}
	f(workers-1, &ws[workers-1])
	out <- workers - 1

	for i := 0; i < workers; i++ {
		<-out
	}
	return ws
}

func (man *Manager) chanEval(id int, w *workspace, si int, xs, out []geom.Vec) {
	s := man.surfaces[si]

	for i := id; i < len(xs); i += man.workers {
		var c patch.Condition
		out[i], c = s.Check(xs[i])
		if c != patch.OK {
			w.fallbacks++
		}
	}
}

func (man *Manager) chanCast(id int, w *workspace, rays []geom.Ray, hits []Hit) {

	for i := id; i < len(rays); i += man.workers {
		hits[i] = man.nearest(&rays[i])
		if !hits[i].Ok() {
			w.misses++
		}
	}
}

func (man *Manager) nearest(r *geom.Ray) Hit {
	best := Hit{Surface: -1}
	best.T = math.Inf(+1)

	for si, s := range man.surfaces {
		tStart, _, ok := geom.SliceBox(man.bounds[si], r)
		if !ok || tStart > best.T {
			continue
		}

		hit, err := s.IntersectSteps(r, man.search, man.refine)
		if err != nil || hit.T >= best.T {
			continue
		}
		best = Hit{Hit: hit, Surface: si}
	}

	return best
}
