package patch

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/curvetri/curve"
	"github.com/phil-mansfield/curvetri/geom"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func vecEpsEq(v1, v2 geom.Vec, eps float64) bool {
	return r3.Norm(r3.Sub(v1, v2)) <= eps
}

func randomVec(low, high float64) geom.Vec {
	return geom.Vec{
		X: low + (high-low)*rand.Float64(),
		Y: low + (high-low)*rand.Float64(),
		Z: low + (high-low)*rand.Float64(),
	}
}

// randomBary returns a uniformly distributed point in the unit simplex.
func randomBary() [3]float64 {
	a, b := rand.Float64(), rand.Float64()
	if a+b > 1 {
		a, b = 1-a, 1-b
	}
	return [3]float64{1 - a - b, a, b}
}

func randomConfig() *Config {
	for {
		con := &Config{
			Corners: geom.Triangle{
				randomVec(-3, 3), randomVec(-3, 3), randomVec(-3, 3),
			},
			Pivots: [3]geom.Vec{
				randomVec(-3, 3), randomVec(-3, 3), randomVec(-3, 3),
			},
			Exponents: [3]float64{
				0.3 + 3.7*rand.Float64(),
				0.3 + 3.7*rand.Float64(),
				0.3 + 3.7*rand.Float64(),
			},
		}
		if con.Corners.Area() > 0.5 {
			return con
		}
	}
}

func unitConfig(e0, e1, e2 float64) *Config {
	return &Config{
		Corners:   geom.Triangle{{X: 1}, {Y: 1}, {Z: 1}},
		Exponents: [3]float64{e0, e1, e2},
	}
}

func TestBoundary(t *testing.T) {
	for i := 0; i < 100; i++ {
		s := New(randomConfig())
		for e := 0; e < 3; e++ {
			edge := s.Edge(e)
			frac := rand.Float64()
			p := geom.Lerp(edge.Start, edge.End, frac)

			want := edge.At(frac)
			got, c := s.Check(p)
			if !vecEpsEq(want, got, 1e-8) {
				t.Errorf("%d) Edge %d at %g: expected %v, got %v",
					i+1, e, frac, want, got)
			}
			assert.Equal(t, OK, c)
		}
	}
}

func TestCorners(t *testing.T) {
	for i := 0; i < 100; i++ {
		con := randomConfig()
		s := New(con)
		for j, corner := range con.Corners {
			if got := s.Point(corner); !vecEpsEq(got, corner, 1e-9) {
				t.Errorf("%d) Corner %d is %v, but maps to %v",
					i+1, j, corner, got)
			}
		}
	}
}

func TestIdempotent(t *testing.T) {
	s := New(randomConfig())
	for i := 0; i < 100; i++ {
		w := randomBary()
		base := s.Base()
		p := base.Point(&w)
		assert.Equal(t, s.Point(p), s.Point(p), "%d) %v", i+1, p)
		assert.Equal(t, s.PointBary(w), s.PointBary(w), "%d) %v", i+1, w)
	}
}

func TestConfigCopied(t *testing.T) {
	con := unitConfig(2, 1, 0.5)
	s := New(con)
	before := s.Point(geom.Vec{X: 0.2, Y: 0.3, Z: 0.5})

	con.Exponents[0] = 7
	con.Corners[0] = geom.Vec{X: 5}
	after := s.Point(geom.Vec{X: 0.2, Y: 0.3, Z: 0.5})

	assert.Equal(t, before, after)
	assert.Equal(t, 2.0, s.Config().Exponents[0])
}

func TestDegenerate(t *testing.T) {
	table := []struct {
		corners geom.Triangle
	}{
		{geom.Triangle{{}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 2}}},
		{geom.Triangle{{X: 1}, {X: 1}, {X: 1}}},
		{geom.Triangle{{X: 1}, {X: 1 + 1e-6}, {Y: 1e-6}}},
	}

	for i, test := range table {
		con := &Config{
			Corners:   test.corners,
			Pivots:    [3]geom.Vec{{Z: 3}, {Z: 3}, {Z: 3}},
			Exponents: [3]float64{2, 1, 0.5},
		}
		s := New(con)

		p, c := s.Check(geom.Vec{X: 0.3, Y: 0.2, Z: 0.1})
		assert.Equal(t, geom.Vec{}, p, "%d) Point of degenerate triangle", i+1)
		assert.True(t, geom.IsFinite(p), "%d)", i+1)
		assert.NotZero(t, c&DegenerateTriangle, "%d) condition %v", i+1, c)
		assert.NotZero(t, c&UndefinedBlendExponent, "%d) condition %v", i+1, c)
		assert.Error(t, con.Validate(), "%d)", i+1)
	}
}

func TestLinear(t *testing.T) {
	for i := 0; i < 100; i++ {
		con := randomConfig()
		con.Exponents = [3]float64{1, 1, 1}
		s := New(con)

		w := randomBary()
		ts := EdgeParams(w)
		ks := BlendWeights(w, ts)

		// The hand-computed blend of the three straight edges.
		var cs [3]geom.Vec
		for e := range cs {
			start, end := con.Corners.Edge(e)
			cs[e] = geom.Lerp(start, end, 1-ts[e])
		}
		want := geom.Combine(&cs, &ks)

		base := s.Base()
		got, c := s.Check(base.Point(&w))
		assert.Equal(t, OK, c)
		if d := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-8)); d != "" {
			t.Errorf("%d) bary %v: %s", i+1, w, d)
		}

		// Straight edges keep the surface in the base plane.
		n := r3.Unit(con.Corners.Normal())
		height := r3.Dot(n, r3.Sub(got, con.Corners[0]))
		assert.InDelta(t, 0, height, 1e-8, "%d)", i+1)
	}

	s := New(unitConfig(1, 1, 1))
	got := s.Point(geom.Vec{X: 1.0 / 3, Y: 1.0 / 3, Z: 1.0 / 3})
	if d := cmp.Diff(geom.Vec{X: 1.0 / 3, Y: 1.0 / 3, Z: 1.0 / 3}, got, approx); d != "" {
		t.Error(d)
	}
}

func TestCentroid(t *testing.T) {
	centroid := geom.Vec{X: 1.0 / 3, Y: 1.0 / 3, Z: 1.0 / 3}

	s := New(unitConfig(2, 1, 0.5))
	p, c := s.Check(centroid)
	assert.Equal(t, OK, c)

	want := geom.Vec{
		X: 0.34468011091674355, Y: 0.42741346674383346, Z: 0.2673955991827558,
	}
	if d := cmp.Diff(want, p, approx); d != "" {
		t.Errorf("Centroid mapped incorrectly: %s", d)
	}
	assert.False(t, vecEpsEq(p, centroid, 1e-3))

	box := s.Bounds()
	for dim := 0; dim < 3; dim++ {
		assert.GreaterOrEqual(t, geom.Axis(p, dim), geom.Axis(box.Min, dim))
		assert.LessOrEqual(t, geom.Axis(p, dim), geom.Axis(box.Max, dim))
	}

	swapped := New(unitConfig(0.5, 1, 2)).Point(centroid)
	assert.False(t, vecEpsEq(p, swapped, 1e-3))
	wantSwapped := geom.Vec{
		X: 0.3446801109167433, Y: 0.2673955991827559, Z: 0.42741346674383357,
	}
	if d := cmp.Diff(wantSwapped, swapped, approx); d != "" {
		t.Errorf("Centroid mapped incorrectly with swapped exponents: %s", d)
	}

	round := New(unitConfig(2, 2, 2)).Point(centroid)
	x := 1 / math.Sqrt(3)
	if d := cmp.Diff(geom.Vec{X: x, Y: x, Z: x}, round, approx); d != "" {
		t.Error(d)
	}
}

func TestUnitSphere(t *testing.T) {
	for i, s := range Sphere(geom.Vec{}, 1, 2) {
		for j := 0; j < 200; j++ {
			p := s.PointBary(randomBary())
			if math.Abs(r3.Norm(p)-1) > 1e-12 {
				t.Errorf("%d) Point %v on octant %d has norm %.15g",
					j+1, p, i, r3.Norm(p))
			}
		}
	}

	// Scaling the sphere scales the patches.
	for _, s := range Sphere(geom.Vec{}, 2.5, 2) {
		p := s.PointBary([3]float64{0.2, 0.3, 0.5})
		assert.InDelta(t, 2.5, r3.Norm(p), 1e-12)
	}

	// Off the origin only the edges stay circular.
	center := geom.Vec{X: 1, Y: -2, Z: 0.5}
	for i, s := range Sphere(center, 2, 2) {
		edge := s.Edge(i % 3)
		for _, p := range edge.Sample(16) {
			assert.InDelta(t, 2, r3.Norm(r3.Sub(p, center)), 1e-12)
		}
	}
}

func TestConditions(t *testing.T) {
	centroid := geom.Vec{X: 1.0 / 3, Y: 1.0 / 3, Z: 1.0 / 3}

	table := []struct {
		exps [3]float64
		c    Condition
		str  string
	}{
		{[3]float64{2, 1, 0.5}, OK, "OK"},
		{[3]float64{0, 1, 1}, DegenerateCurveParameter,
			"DegenerateCurveParameter"},
		{[3]float64{-1, 1, 1}, DegenerateCurveParameter,
			"DegenerateCurveParameter"},
		{[3]float64{0, 0, 0}, DegenerateCurveParameter | UndefinedBlendExponent,
			"UndefinedBlendExponent|DegenerateCurveParameter"},
	}

	for i, test := range table {
		s := New(unitConfig(test.exps[0], test.exps[1], test.exps[2]))
		p, c := s.Check(centroid)
		assert.Equal(t, test.c, c, "%d) exponents %v", i+1, test.exps)
		assert.Equal(t, test.str, c.String(), "%d)", i+1)
		assert.True(t, geom.IsFinite(p), "%d) %v", i+1, p)
	}

	c := DegenerateTriangle | UndefinedBlendExponent
	assert.Equal(t, "DegenerateTriangle|UndefinedBlendExponent", c.String())
}

func TestSignedPow(t *testing.T) {
	table := []struct {
		b, e, want float64
	}{
		{4, 0.5, 2},
		{-8, 1.0 / 3, -2},
		{-3, 2, -9},
		{3, 1, 3},
		{0, 2, 0},
		{0, -1, 0},
		{0, 0, 0},
		{-2, 0, -1},
	}

	for i, test := range table {
		got := SignedPow(test.b, test.e)
		assert.InDelta(t, test.want, got, 1e-12,
			"%d) SignedPow(%g, %g)", i+1, test.b, test.e)
	}
}

func TestEdgeParams(t *testing.T) {
	table := []struct {
		w, ts, ks [3]float64
	}{
		{[3]float64{1, 0, 0}, [3]float64{1, 1, 0}, [3]float64{1, 0, 0}},
		{[3]float64{0.5, 0.5, 0}, [3]float64{0.5, 1, 0}, [3]float64{1, 0, 0}},
		{[3]float64{0, 0.25, 0.75}, [3]float64{0, 0.25, 1}, [3]float64{0, 1, 0}},
		{[3]float64{0, 0, 0}, [3]float64{0, 0, 0}, [3]float64{0, 0, 0}},
	}

	for i, test := range table {
		ts := EdgeParams(test.w)
		ks := BlendWeights(test.w, ts)
		if d := cmp.Diff(test.ts, ts, approx); d != "" {
			t.Errorf("%d) EdgeParams(%v): %s", i+1, test.w, d)
		}
		if d := cmp.Diff(test.ks, ks, approx); d != "" {
			t.Errorf("%d) BlendWeights(%v): %s", i+1, test.w, d)
		}
	}
}

func TestValidate(t *testing.T) {
	table := []struct {
		mod   func(con *Config)
		valid bool
	}{
		{func(con *Config) {}, true},
		{func(con *Config) { con.Corners[2] = geom.Vec{X: 2, Y: -1} }, false},
		{func(con *Config) { con.Pivots[1].Y = math.NaN() }, false},
		{func(con *Config) { con.Corners[0].Z = math.Inf(-1) }, false},
		{func(con *Config) { con.Exponents[2] = 0 }, false},
		{func(con *Config) { con.Exponents[0] = math.Inf(+1) }, false},
		{func(con *Config) { con.Exponents[1] = math.NaN() }, false},
	}

	for i, test := range table {
		con := unitConfig(2, 1, 0.5)
		test.mod(con)
		err := con.Validate()
		if test.valid {
			assert.NoError(t, err, "%d)", i+1)
		} else {
			assert.Error(t, err, "%d)", i+1)
		}
	}
}

func TestConfigTransform(t *testing.T) {
	con := unitConfig(2, 2, 2)
	con.Pivots[1] = geom.Vec{X: 1, Y: 1}

	con.Translate(geom.Vec{X: 1, Y: 2, Z: 3})
	assert.Equal(t, geom.Vec{X: 2, Y: 2, Z: 3}, con.Corners[0])
	assert.Equal(t, geom.Vec{X: 2, Y: 3, Z: 3}, con.Pivots[1])
	assert.Equal(t, geom.Vec{X: 1, Y: 2, Z: 3}, con.Pivots[2])

	con = unitConfig(2, 2, 2)
	con.Pivots[0] = geom.Vec{Y: 1}
	con.Rotate(geom.EulerMatrix(math.Pi/2, 0, 0))
	assert.True(t, vecEpsEq(geom.Vec{X: 1}, con.Corners[0], 1e-12))
	assert.True(t, vecEpsEq(geom.Vec{Z: -1}, con.Corners[1], 1e-12))
	assert.True(t, vecEpsEq(geom.Vec{Z: -1}, con.Pivots[0], 1e-12))
}

func TestShell(t *testing.T) {
	s := New(unitConfig(2, 1, 0.5))

	assert.Equal(t, geom.Vec{}, s.RootPoint())
	assert.Equal(t, [3]geom.Vec{{X: 2}, {Y: 2}, {Z: 2}}, s.ShellPoints())
	assert.Equal(t, geom.Vec{X: 1, Y: 1, Z: 1}, s.OppositeRoot())

	box := s.Bounds()
	assert.Equal(t, geom.Vec{}, box.Min)
	assert.Equal(t, geom.Vec{X: 1, Y: 1, Z: 1}, box.Max)

	sh := s.Shell()
	require.Len(t, sh, 4)
	assert.Equal(t, geom.Triangle{{X: 2}, {Y: 2}, {Z: 2}}, sh[0])
	assert.Equal(t, geom.Triangle{{}, {Y: 2}, {Z: 2}}, sh[2])

	sh[0][0] = geom.Vec{X: 100}
	assert.Equal(t, geom.Vec{X: 2}, s.Shell()[0][0])
}

func TestIntersectSphere(t *testing.T) {
	sphere := Sphere(geom.Vec{}, 1, 2)
	r := &geom.Ray{Origin: geom.Vec{X: 3, Y: 0.2, Z: 0.3}, Dir: geom.Vec{X: -1}}
	want := 3 - math.Sqrt(1-0.2*0.2-0.3*0.3)

	hit, err := sphere[0].Intersect(r)
	require.NoError(t, err)
	assert.InDelta(t, want, hit.T, 0.01)

	hit, err = sphere[0].IntersectSteps(r, SearchSteps, 40)
	require.NoError(t, err)
	assert.InDelta(t, want, hit.T, 1e-9)
	assert.InDelta(t, 1, r3.Norm(hit.Point), 1e-9)
	assert.Equal(t, r.Point(hit.T), hit.Point)
	assert.InDelta(t, 1, hit.Bary[0]+hit.Bary[1]+hit.Bary[2], 1e-9)
	for i := range hit.Bary {
		assert.GreaterOrEqual(t, hit.Bary[i], 0.0)
	}

	// The back of the sphere.
	hit, err = sphere[1].IntersectSteps(r, SearchSteps, 40)
	require.NoError(t, err)
	assert.InDelta(t, 6-want, hit.T, 1e-9)

	for i := 2; i < len(sphere); i++ {
		_, err = sphere[i].Intersect(r)
		assert.True(t, errors.Is(err, ErrBehindRay), "%d) %v", i, err)
	}
}

func TestIntersectMiss(t *testing.T) {
	s := Sphere(geom.Vec{}, 1, 2)[0]

	away := &geom.Ray{Origin: geom.Vec{X: 3, Y: 0.2, Z: 0.3}, Dir: geom.Vec{X: 1}}
	_, err := s.Intersect(away)
	assert.True(t, errors.Is(err, ErrBehindRay), "%v", err)

	// Passes through the shell without getting near the sphere.
	skim := geom.NewRay(
		geom.Vec{X: 2, Y: -0.4, Z: 0.3}, geom.Vec{X: 1, Y: 0.6, Z: 0.3},
	)
	_, err = s.Intersect(skim)
	assert.True(t, errors.Is(err, ErrNoIntersection), "%v", err)
}

func TestTriangulate(t *testing.T) {
	s := New(randomConfig())
	assert.Nil(t, s.Triangulate(0))
	assert.Nil(t, s.Triangulate(-3))

	for accuracy := 1; accuracy <= 6; accuracy++ {
		assert.Len(t, s.Triangulate(accuracy), accuracy*accuracy)
	}

	con := s.Config()
	tris := s.Triangulate(4)
	assert.True(t, vecEpsEq(con.Corners[1], tris[0][0], 1e-9))
	assert.True(t, vecEpsEq(con.Corners[0], tris[len(tris)-7][1], 1e-9))
	assert.True(t, vecEpsEq(con.Corners[2], tris[len(tris)-2][2], 1e-9))

	for _, oct := range Sphere(geom.Vec{}, 1, 2) {
		for i, tri := range oct.Triangulate(5) {
			for j := range tri {
				assert.InDelta(t, 1, r3.Norm(tri[j]), 1e-12, "%d) %d", i, j)
			}
		}
	}
}

func TestTrace(t *testing.T) {
	s := New(randomConfig())
	assert.Nil(t, s.Trace(geom.Vec{}, geom.Vec{X: 1}, 0))

	for e := 0; e < 3; e++ {
		edge := s.Edge(e)
		got := s.Trace(edge.Start, edge.End, 10)
		want := edge.Sample(10)
		require.Len(t, got, len(want))
		for i := range got {
			assert.True(t, vecEpsEq(want[i], got[i], 1e-8),
				"%d) edge %d: %v != %v", i, e, want[i], got[i])
		}
	}
}

func TestEdge(t *testing.T) {
	con := unitConfig(2, 1, 0.5)
	con.Pivots[2] = geom.Vec{X: 1, Y: 1, Z: 1}
	s := New(con)

	want := curve.Edge{
		Start: geom.Vec{Z: 1}, End: geom.Vec{X: 1},
		Pivot: geom.Vec{X: 1, Y: 1, Z: 1}, Exponent: 0.5,
	}
	assert.Equal(t, want, s.Edge(2))
}

func BenchmarkPoint(b *testing.B) {
	s := New(unitConfig(2, 1, 0.5))
	p := geom.Vec{X: 0.2, Y: 0.3, Z: 0.5}
	for i := 0; i < b.N; i++ {
		s.Point(p)
	}
}

func BenchmarkIntersect(b *testing.B) {
	s := Sphere(geom.Vec{}, 1, 2)[0]
	r := &geom.Ray{Origin: geom.Vec{X: 3, Y: 0.2, Z: 0.3}, Dir: geom.Vec{X: -1}}
	for i := 0; i < b.N; i++ {
		s.Intersect(r)
	}
}
