package ik

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/sixdof/armkin/robot"
	"github.com/sixdof/armkin/spatialmath"
	"github.com/sixdof/armkin/utils"
)

// wristCheckTolMM is how far (mm) the reconstructed frame-4 origin may sit
// from the requested wrist center before a joints-1-3 candidate is dropped.
const wristCheckTolMM = 1e-3

// AnalyticalSolver is the fully closed-form solver for spherical-wrist
// arms. Position (J1-J3) decouples from orientation (J4-J6) through the
// wrist center, and every branch of the decoupling is enumerated: two base
// headings, two elbow configurations, two wrist flips, and the in-limit
// J6 turn variants, for up to 16 candidates per solve.
type AnalyticalSolver struct {
	model  *robot.Model
	logger golog.Logger
}

// NewAnalyticalSolver builds a solver for the given model. The model must
// have the supported articulated geometry and a spherical wrist (zero
// wrist offset); anything else fails here, at construction.
func NewAnalyticalSolver(m *robot.Model, logger golog.Logger) (*AnalyticalSolver, error) {
	if err := checkStructure(m); err != nil {
		return nil, err
	}
	if m.WristOffset() != 0 {
		return nil, errors.Errorf(
			"model %q has a wrist offset of %.3fmm; the closed-form solver needs a spherical wrist (use the scan solver)",
			m.Name(), m.WristOffset())
	}
	return &AnalyticalSolver{model: m, logger: logger}, nil
}

// Solve enumerates every closed-form candidate for the target flange pose.
// The seed disambiguates only where a branch collapses (J5 near zero); an
// unreachable target returns an empty slice.
func (s *AnalyticalSolver) Solve(target spatialmath.RigidTransform, seed []float64) []Solution {
	if len(seed) != robot.NumJoints {
		seed = make([]float64, robot.NumJoints)
	}

	w := s.model.WristCenter(target)
	arms := solvePlanarArm(s.model, w, true, seed[0])

	var out []Solution
	for _, arm := range arms {
		t03, err := s.model.PartialForwardKinematics([]float64{arm.theta1, arm.theta2, arm.theta3}, 3)
		if err != nil {
			continue
		}

		// Checkpoint: joints 1-3 must actually put the wrist center
		// where the triangle said they would.
		o4 := t03.Translation().Add(t03.AxisZ().Mul(s.model.Forearm()))
		if o4.Sub(w).Norm() > wristCheckTolMM {
			continue
		}

		r36 := t03.Inverse().Compose(target).Rotation()
		for _, wrist := range decomposeWrist(r36, seed[3]) {
			joints := []float64{arm.theta1, arm.theta2, arm.theta3, wrist.theta4, wrist.theta5, wrist.theta6}
			out = s.appendIfValid(out, joints)
			for _, turn := range turnVariants(joints[5], s.model.Limits()[5]) {
				alt := append([]float64{}, joints...)
				alt[5] = turn
				out = s.appendIfValid(out, alt)
			}
		}
	}
	if s.logger != nil {
		s.logger.Debugw("analytical solve complete", "candidates", len(out))
	}
	return out
}

func (s *AnalyticalSolver) appendIfValid(out []Solution, joints []float64) []Solution {
	if !s.model.JointsValid(joints) {
		return out
	}
	return append(out, Solution{Joints: joints, Valid: true})
}

type wristAngles struct {
	theta4 float64
	theta5 float64
	theta6 float64
}

// decomposeWrist extracts J4-J6 from the decoupled wrist rotation
// R36 = Rz(J4) * Ry(J5) * Rz(J6). Away from the J5 singularity there are
// exactly two branches (the wrist flip: J5 negated, J4 and J6 rotated by
// 180 degrees). At the singularity J4 and J6 couple; J4 is pinned to the
// seed and the remainder goes to J6, yielding one branch.
func decomposeWrist(m mgl64.Mat3, seedTheta4 float64) []wristAngles {
	r11, r21 := m.At(0, 0), m.At(1, 0)
	r13, r23, r33 := m.At(0, 2), m.At(1, 2), m.At(2, 2)
	r31, r32 := m.At(2, 0), m.At(2, 1)

	sb := math.Hypot(r13, r23)
	if sb < 1e-7 {
		theta4 := utils.NormalizeAngle(seedTheta4)
		if r33 > 0 {
			// J5 == 0: R36 = Rz(J4 + J6).
			sum := math.Atan2(r21, r11)
			return []wristAngles{{theta4, 0, utils.NormalizeAngle(sum - theta4)}}
		}
		// J5 == 180 degrees: R36 = Rz(J4 - J6) * diag(-1, 1, -1).
		diff := math.Atan2(-r21, -r11)
		return []wristAngles{{theta4, math.Pi, utils.NormalizeAngle(theta4 - diff)}}
	}

	return []wristAngles{
		{
			theta4: math.Atan2(r23, r13),
			theta5: math.Atan2(sb, r33),
			theta6: math.Atan2(r32, -r31),
		},
		{
			theta4: math.Atan2(-r23, -r13),
			theta5: -math.Atan2(sb, r33),
			theta6: math.Atan2(-r32, r31),
		},
	}
}

// turnVariants returns the 2-pi-shifted copies of a wrist-roll angle that
// still fall inside the joint's travel, for wide-travel wrists that can
// report the same orientation on a different turn.
func turnVariants(theta float64, lim robot.Limit) []float64 {
	if !lim.Constrained() {
		return nil
	}
	var out []float64
	for _, alt := range []float64{theta + 2*math.Pi, theta - 2*math.Pi} {
		if lim.Contains(alt) {
			out = append(out, alt)
		}
	}
	return out
}
