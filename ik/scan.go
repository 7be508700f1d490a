package ik

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/sixdof/armkin/robot"
	"github.com/sixdof/armkin/spatialmath"
	"github.com/sixdof/armkin/utils"
)

const (
	// defaultScanSteps samples the redundancy circle every 5 degrees.
	// Too coarse a step can miss closely spaced residual roots; that is
	// the documented precision/performance trade-off of this solver,
	// not a defect to compensate for elsewhere.
	defaultScanSteps = 72
	// bisectIterations refines each bracketed root; 10 halvings of a
	// 5-degree bracket land well under a hundredth of a degree.
	bisectIterations = 10
	// residualSentinel marks scan samples where joints 1-3 could not
	// reach the candidate point at all.
	residualSentinel = 100.0
	// scanReconstructTolMM bounds the forward-kinematics position error
	// of an accepted root. False roots miss by on the order of the wrist
	// offset itself, so the margin here is enormous.
	scanReconstructTolMM = 0.05
	// scanReconstructTolRad bounds the orientation error of an accepted
	// root.
	scanReconstructTolRad = 5e-4
)

// ScanSolver solves IK for arms whose wrist offset breaks the spherical
// decoupling (CRX-class wrists). The frame-4 origin is a one-parameter
// family: a circle of radius d5 around the wrist center in the plane
// perpendicular to the tool Z axis. The solver scans that circle for sign
// changes of the wrist closure residual and refines each bracket by
// bisection.
type ScanSolver struct {
	model  *robot.Model
	logger golog.Logger
	steps  int
}

// NewScanSolver builds a scan solver. The model must have the supported
// articulated geometry and a nonzero wrist offset; a spherical wrist has
// no redundancy circle to scan and belongs with the closed-form solver.
func NewScanSolver(m *robot.Model, logger golog.Logger) (*ScanSolver, error) {
	if err := checkStructure(m); err != nil {
		return nil, err
	}
	if m.WristOffset() <= 0 {
		return nil, errors.Errorf(
			"model %q has no wrist offset; use the closed-form solver for spherical wrists", m.Name())
	}
	return &ScanSolver{model: m, logger: logger, steps: defaultScanSteps}, nil
}

// scanSample is one evaluation of the closure residual at circle angle q.
type scanSample struct {
	q        float64
	residual float64
	ok       bool
	arm      armCandidate
}

// Solve scans the redundancy circle and returns every refined, validated
// configuration. Unreachable targets return an empty slice.
func (s *ScanSolver) Solve(target spatialmath.RigidTransform, seed []float64) []Solution {
	if len(seed) != robot.NumJoints {
		seed = make([]float64, robot.NumJoints)
	}

	o5 := s.model.WristCenter(target)
	u, v := circleBasis(target.AxisZ())

	var out []Solution
	for elbow := 0; elbow < 2; elbow++ {
		prev := s.sample(o5, u, v, 0, elbow, seed)
		for i := 1; i <= s.steps; i++ {
			q := 2 * math.Pi * float64(i) / float64(s.steps)
			cur := s.sample(o5, u, v, q, elbow, seed)
			if prev.ok && cur.ok && prev.residual*cur.residual < 0 {
				root := s.bisect(o5, u, v, prev, cur, elbow, seed)
				if sol, found := s.finish(target, o5, u, v, root); found {
					out = s.appendIfValid(out, sol)
				}
			}
			prev = cur
		}
	}
	if s.logger != nil {
		s.logger.Debugw("scan solve complete", "candidates", len(out))
	}
	return out
}

// sample evaluates the closure residual at one circle angle: place the
// frame-4 origin on the circle, solve joints 1-3 to it, and measure how far
// the implied J4 axis is from perpendicular to z3. Points joints 1-3 cannot
// reach get the sentinel residual and are excluded from sign tracking.
func (s *ScanSolver) sample(o5, u, v r3.Vector, q float64, elbow int, seed []float64) scanSample {
	o4 := o5.Add(u.Mul(s.model.WristOffset() * math.Cos(q))).Add(v.Mul(s.model.WristOffset() * math.Sin(q)))

	arm, ok := pickElbow(solvePlanarArm(s.model, o4, false, seed[0]), elbow)
	if !ok {
		return scanSample{q: q, residual: residualSentinel}
	}

	t03, err := s.model.PartialForwardKinematics([]float64{arm.theta1, arm.theta2, arm.theta3}, 3)
	if err != nil {
		return scanSample{q: q, residual: residualSentinel}
	}

	// Closure constraint: the J4 axis direction (wrist center minus
	// circle point, over d5) must be perpendicular to z3.
	z4dir := o5.Sub(o4).Mul(1 / s.model.WristOffset())
	return scanSample{
		q:        q,
		residual: t03.AxisZ().Dot(z4dir),
		ok:       true,
		arm:      arm,
	}
}

// bisect runs a fixed number of halvings on a bracketed sign change and
// returns the best sample. Unreachable midpoints terminate refinement
// early with the tighter bracket endpoint.
func (s *ScanSolver) bisect(o5, u, v r3.Vector, lo, hi scanSample, elbow int, seed []float64) scanSample {
	for i := 0; i < bisectIterations; i++ {
		mid := s.sample(o5, u, v, (lo.q+hi.q)/2, elbow, seed)
		if !mid.ok {
			break
		}
		if lo.residual*mid.residual <= 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	best := hi
	if math.Abs(lo.residual) < math.Abs(hi.residual) {
		best = lo
	}
	// One secant step on the final bracket sharpens the root well past
	// what the remaining bracket width allows.
	if den := hi.residual - lo.residual; lo.ok && hi.ok && den != 0 {
		cand := s.sample(o5, u, v, lo.q-lo.residual*(hi.q-lo.q)/den, elbow, seed)
		if cand.ok && math.Abs(cand.residual) < math.Abs(best.residual) {
			best = cand
		}
	}
	return best
}

// finish extracts joints 4-6 at a refined root and verifies the whole
// configuration by forward kinematics against the target.
func (s *ScanSolver) finish(
	target spatialmath.RigidTransform, o5, u, v r3.Vector, root scanSample,
) ([]float64, bool) {
	if !root.ok {
		return nil, false
	}
	o4 := o5.Add(u.Mul(s.model.WristOffset() * math.Cos(root.q))).Add(v.Mul(s.model.WristOffset() * math.Sin(root.q)))

	t03, err := s.model.PartialForwardKinematics([]float64{root.arm.theta1, root.arm.theta2, root.arm.theta3}, 3)
	if err != nil {
		return nil, false
	}

	// theta4 orients the J4 axis along the circle-point-to-wrist-center
	// direction; in frame 3 that direction reads (-sin4, cos4, ~0).
	z4dir := o5.Sub(o4).Mul(1 / s.model.WristOffset())
	f3 := t03.Inverse().RotatePoint(z4dir)
	theta4 := math.Atan2(-f3.X, f3.Y)

	t04, err := s.model.PartialForwardKinematics(
		[]float64{root.arm.theta1, root.arm.theta2, root.arm.theta3, theta4}, 4)
	if err != nil {
		return nil, false
	}
	r46 := t04.Inverse().Compose(target).Rotation()
	theta5 := math.Atan2(r46.At(0, 2), -r46.At(1, 2))
	theta6 := math.Atan2(r46.At(2, 0), r46.At(2, 1))

	joints := []float64{
		root.arm.theta1, root.arm.theta2, root.arm.theta3,
		theta4, theta5, theta6,
	}

	fk, err := s.model.ForwardKinematics(joints)
	if err != nil {
		return nil, false
	}
	delta := fk.ToDelta(target)
	posErr := r3.Vector{X: delta[0], Y: delta[1], Z: delta[2]}.Norm()
	rotErr := r3.Vector{X: delta[3], Y: delta[4], Z: delta[5]}.Norm()
	if posErr > scanReconstructTolMM || rotErr > scanReconstructTolRad {
		return nil, false
	}
	return joints, true
}

func (s *ScanSolver) appendIfValid(out []Solution, joints []float64) []Solution {
	if !s.model.JointsValid(joints) {
		return out
	}
	return append(out, Solution{Joints: joints, Valid: true})
}

// pickElbow selects one elbow branch from the planar sub-solver output so
// that residual sign tracking follows a single continuous family. Branch 0
// is the non-negative elbow deviation, branch 1 the negative one.
func pickElbow(arms []armCandidate, elbow int) (armCandidate, bool) {
	for _, a := range arms {
		g := utils.NormalizeAngle(a.theta3 - halfPi)
		if (elbow == 0) == (g >= 0) {
			return a, true
		}
	}
	// At full extension only the zero-deviation branch exists; let the
	// negative family borrow it so a root straddling extension isn't
	// dropped.
	if elbow == 1 && len(arms) == 1 {
		if utils.NormalizeAngle(arms[0].theta3-halfPi) == 0 {
			return arms[0], true
		}
	}
	return armCandidate{}, false
}

// circleBasis returns an orthonormal basis for the plane perpendicular to
// the tool axis.
func circleBasis(n r3.Vector) (r3.Vector, r3.Vector) {
	ref := r3.Vector{X: 0, Y: 0, Z: 1}
	if math.Abs(n.Z) > 0.9 {
		ref = r3.Vector{X: 1, Y: 0, Z: 0}
	}
	u := n.Cross(ref).Normalize()
	return u, n.Cross(u).Normalize()
}
