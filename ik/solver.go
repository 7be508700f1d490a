// Package ik implements inverse kinematics for 6-axis articulated arms:
// an analytical closed-form solver for spherical-wrist chains, a
// redundancy-scan solver for wrist-offset chains, an iterative damped
// least-squares tracker, and the policy that picks among discrete
// solutions.
//
// All angles are radians and all lengths millimeters at this boundary.
// Joint index 0 is J1 (base yaw) through index 5, J6 (wrist roll), in DH
// table order. Geometrically unreachable targets yield empty solution
// sets, never errors; an error from a constructor means the model cannot
// be paired with that solver at all.
package ik

import (
	"github.com/pkg/errors"

	"github.com/sixdof/armkin/robot"
	"github.com/sixdof/armkin/spatialmath"
)

// ErrNoSolution is returned by the selection policy when a solve produced
// no valid candidates. Callers are expected to hold their last-known-good
// joint state; there is nothing to retry.
var ErrNoSolution = errors.New("no valid inverse kinematics solution")

// Solution is one candidate joint configuration for a target pose.
type Solution struct {
	// Joints holds the six joint angles, J1 through J6.
	Joints []float64
	// Valid is false when the candidate failed limit or reconstruction
	// checks. Solvers only emit valid solutions; the flag survives so a
	// caller stashing candidates can re-check cheaply.
	Valid bool
}

// Solver produces discrete candidate solutions for a single target pose.
// Implementations are pure functions of their inputs and safe for
// concurrent use; the seed is only a disambiguation hint for branch
// collapses (wrist singularities), never a starting point for iteration.
type Solver interface {
	Solve(target spatialmath.RigidTransform, seed []float64) []Solution
}

// checkStructure verifies that a model matches the articulated-arm DH
// pattern both discrete solvers are written against: alpha twists of
// +90, 0, +90, -90, +90, 0 degrees and link lengths only where the
// pattern places them. Anything else is a configuration error surfaced
// at construction.
func checkStructure(m *robot.Model) error {
	wantAlpha := []float64{halfPi, 0, halfPi, -halfPi, halfPi, 0}
	for i, want := range wantAlpha {
		if !almostEqual(m.DH(i).Alpha, want, 1e-9) {
			return errors.Errorf("joint %d twist %f does not match the supported arm geometry", i+1, m.DH(i).Alpha)
		}
	}
	for _, i := range []int{0, 2, 3, 4, 5} {
		if m.DH(i).A != 0 {
			return errors.Errorf("joint %d link length must be zero for the supported arm geometry", i+1)
		}
	}
	for _, i := range []int{1, 2} {
		if m.DH(i).D != 0 {
			return errors.Errorf("joint %d link offset must be zero for the supported arm geometry", i+1)
		}
	}
	return nil
}
