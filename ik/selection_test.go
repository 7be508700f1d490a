package ik

import (
	"math"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/sixdof/armkin/spatialmath"
)

func TestSelectClosest(t *testing.T) {
	candidates := []Solution{
		{Joints: []float64{1.0, 0, 0, 0, 0, 0}, Valid: true},
		{Joints: []float64{0.1, 0.1, 0, 0, 0, 0}, Valid: true},
		{Joints: []float64{0, 0, 0, 0, 0, 0}, Valid: false},
	}
	ref := []float64{0, 0, 0, 0, 0, 0}

	sel, err := SelectClosest(candidates, ref)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sel.Joints[0], test.ShouldEqual, 0.1)

	// Distances wrap: a joint at +179 degrees is close to -179.
	candidates = []Solution{
		{Joints: []float64{math.Pi - 0.02, 0, 0, 0, 0, 0}, Valid: true},
		{Joints: []float64{0.5, 0, 0, 0, 0, 0}, Valid: true},
	}
	sel, err = SelectClosest(candidates, []float64{-math.Pi + 0.02, 0, 0, 0, 0, 0})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sel.Joints[0], test.ShouldAlmostEqual, math.Pi-0.02)

	// No valid candidates at all.
	_, err = SelectClosest(nil, ref)
	test.That(t, err, test.ShouldBeError, ErrNoSolution)
	_, err = SelectClosest([]Solution{{Joints: ref, Valid: false}}, ref)
	test.That(t, err, test.ShouldBeError, ErrNoSolution)
}

func TestSelectIndex(t *testing.T) {
	candidates := []Solution{
		{Joints: []float64{0, 0, 0, 0, 0, 0}, Valid: true},
		{Joints: []float64{1, 0, 0, 0, 0, 0}, Valid: true},
	}

	sel, err := SelectIndex(candidates, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sel.Joints[0], test.ShouldEqual, 1.0)

	// Out-of-range indices clamp instead of failing.
	sel, err = SelectIndex(candidates, 7)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sel.Joints[0], test.ShouldEqual, 1.0)
	sel, err = SelectIndex(candidates, -3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sel.Joints[0], test.ShouldEqual, 0.0)

	_, err = SelectIndex(nil, 0)
	test.That(t, err, test.ShouldBeError, ErrNoSolution)
}

func TestSelectionContinuityAlongPath(t *testing.T) {
	m := sphericalTestModel(t)
	solver, err := NewAnalyticalSolver(m, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// March the target along a straight line and always take the closest
	// candidate to the previous selection. The arm must glide within one
	// configuration branch; any branch snap shows up as a joint jump
	// orders of magnitude above the per-step motion.
	first := spatialmath.NewTransformFromPoint(r3.Vector{X: 750, Y: 50, Z: 200})
	nominal := []float64{0, 0.5, 0.5, 0, 0.5, 0}
	start, err := SelectClosest(solver.Solve(first, nominal), nominal)
	test.That(t, err, test.ShouldBeNil)

	prev := start.Joints
	for x := 752.0; x <= 850.0; x += 2 {
		target := spatialmath.NewTransformFromPoint(r3.Vector{X: x, Y: 50, Z: 200})
		sel, err := SelectClosest(solver.Solve(target, prev), prev)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, jointDist(sel.Joints, prev), test.ShouldBeLessThan, 0.05)
		prev = sel.Joints
	}
}
