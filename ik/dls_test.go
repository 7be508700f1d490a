package ik

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/sixdof/armkin/spatialmath"
)

func TestDLSConvergedIsNoOp(t *testing.T) {
	m := crxModel(t)
	solver, err := NewDLSSolver(m, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	joints := []float64{0.2, 0.9, 0.4, 0.3, 1.0, -0.5}
	target, err := m.ForwardKinematics(joints)
	test.That(t, err, test.ShouldBeNil)

	// Already at the target: converged, and the joints come back
	// unchanged. Repeated steps must not drift.
	next, converged, err := solver.Step(target, joints)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, converged, test.ShouldBeTrue)
	test.That(t, next, test.ShouldResemble, joints)

	next, converged, err = solver.Step(target, next)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, converged, test.ShouldBeTrue)
	test.That(t, next, test.ShouldResemble, joints)
}

func TestDLSTracksSmallMotion(t *testing.T) {
	m := crxModel(t)
	solver, err := NewDLSSolver(m, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	joints := []float64{0.2, 0.9, 0.4, 0.3, 1.0, -0.5}
	start, err := m.ForwardKinematics(joints)
	test.That(t, err, test.ShouldBeNil)

	// Nudge the target a few millimeters and track from the current
	// state.
	target := spatialmath.NewTransform(
		start.Quaternion(),
		start.Translation().Add(r3.Vector{X: 5, Y: -3, Z: 2}),
	)
	solutions := solver.Solve(target, joints)
	test.That(t, solutions, test.ShouldHaveLength, 1)
	test.That(t, solutions[0].Valid, test.ShouldBeTrue)

	fk, err := m.ForwardKinematics(solutions[0].Joints)
	test.That(t, err, test.ShouldBeNil)
	delta := fk.ToDelta(target)
	pos := r3.Vector{X: delta[0], Y: delta[1], Z: delta[2]}.Norm()
	rot := r3.Vector{X: delta[3], Y: delta[4], Z: delta[5]}.Norm()
	test.That(t, pos, test.ShouldBeLessThan, dlsPosConvergedMM)
	test.That(t, rot, test.ShouldBeLessThan, dlsRotConvergedRad)

	// Tracking a small motion stays near the starting configuration
	// instead of jumping branches.
	test.That(t, jointDist(solutions[0].Joints, joints), test.ShouldBeLessThan, 0.2)
}

func TestDLSThroughWristSingularity(t *testing.T) {
	m := crxModel(t)
	solver, err := NewDLSSolver(m, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// J5 exactly at zero is the classic wrist singularity; the damped
	// step must stay finite and make progress rather than blow up.
	joints := []float64{0.1, 0.8, 0.3, 0.2, 0, 0.4}
	start, err := m.ForwardKinematics(joints)
	test.That(t, err, test.ShouldBeNil)
	target := spatialmath.NewTransform(
		start.Quaternion(),
		start.Translation().Add(r3.Vector{X: 2, Y: 1, Z: -1}),
	)

	solutions := solver.Solve(target, joints)
	test.That(t, solutions, test.ShouldHaveLength, 1)
}

func TestDLSUnreachable(t *testing.T) {
	m := crxModel(t)
	solver, err := NewDLSSolver(m, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// Outside the workspace it runs out of iterations and reports
	// nothing, same contract as the discrete solvers.
	far := spatialmath.NewTransformFromPoint(r3.Vector{X: 4000, Y: 0, Z: 0})
	seed := []float64{0.2, 0.9, 0.4, 0.3, 1.0, -0.5}
	test.That(t, solver.Solve(far, seed), test.ShouldHaveLength, 0)
}
