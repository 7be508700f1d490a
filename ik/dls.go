package ik

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/sixdof/armkin/robot"
	"github.com/sixdof/armkin/spatialmath"
	"github.com/sixdof/armkin/utils"
)

const (
	// dlsPosConvergedMM and dlsRotConvergedRad are the tracking deadband:
	// a pose within a tenth of a millimeter and half a degree of the
	// target counts as converged and produces no step.
	dlsPosConvergedMM  = 0.1
	dlsRotConvergedRad = 0.5 * math.Pi / 180

	dlsDamping       = 1.0
	dlsGain          = 0.5
	dlsMaxStepRad    = 0.5
	dlsMaxIterations = 200

	// dlsSingularSin5 flags configurations where J4 and J6 are close to
	// collinear. The damping already keeps the step bounded there; the
	// condition is only logged.
	dlsSingularSin5 = 1e-4
)

// DLSSolver is the iterative damped least-squares tracker. Unlike the
// discrete solvers it follows a moving target from the current joint state
// one small step at a time, which keeps streamed motion continuous and
// well behaved through singular neighborhoods. It works on any 6-joint DH
// chain; no structural pattern is assumed.
type DLSSolver struct {
	model  *robot.Model
	logger golog.Logger
}

// NewDLSSolver builds a damped least-squares tracker for the model.
func NewDLSSolver(m *robot.Model, logger golog.Logger) (*DLSSolver, error) {
	if m == nil {
		return nil, errors.New("model must not be nil")
	}
	return &DLSSolver{model: m, logger: logger}, nil
}

// Step takes one damped least-squares step from current toward target and
// returns the updated, limit-clamped joints plus whether the pose error is
// already inside the convergence deadband. A converged state returns the
// input joints unchanged.
func (s *DLSSolver) Step(target spatialmath.RigidTransform, current []float64) ([]float64, bool, error) {
	ts, err := s.model.JointTransforms(current)
	if err != nil {
		return nil, false, err
	}
	flange := ts[robot.NumJoints-1]

	e := flange.ToDelta(target)
	posErr := r3.Vector{X: e[0], Y: e[1], Z: e[2]}.Norm()
	rotErr := r3.Vector{X: e[3], Y: e[4], Z: e[5]}.Norm()
	if posErr < dlsPosConvergedMM && rotErr < dlsRotConvergedRad {
		out := make([]float64, len(current))
		copy(out, current)
		return out, true, nil
	}

	if s.logger != nil && math.Abs(math.Sin(current[4])) < dlsSingularSin5 {
		s.logger.Debugw("stepping near wrist singularity", "j5", current[4])
	}

	jac := s.jacobian(ts, flange.Translation())

	// Solve (J Jt + lambda^2 I) y = e, then delta = Jt y. The normal
	// matrix is factorized with partial pivoting; the damping term keeps
	// it well conditioned even at singular configurations.
	var jjt mat.Dense
	jjt.Mul(jac, jac.T())
	for i := 0; i < 6; i++ {
		jjt.Set(i, i, jjt.At(i, i)+dlsDamping*dlsDamping)
	}
	var lu mat.LU
	lu.Factorize(&jjt)
	y := mat.NewVecDense(6, nil)
	if err := lu.SolveVecTo(y, false, mat.NewVecDense(6, e)); err != nil {
		return nil, false, errors.Wrap(err, "damped normal equations are singular")
	}
	var delta mat.VecDense
	delta.MulVec(jac.T(), y)

	out := make([]float64, robot.NumJoints)
	for i := range out {
		step := utils.Clamp(dlsGain*delta.AtVec(i), -dlsMaxStepRad, dlsMaxStepRad)
		out[i] = current[i] + step
	}
	return s.model.ClampToLimits(out), false, nil
}

// Solve iterates Step from the seed until convergence or the iteration
// cap, satisfying the discrete Solver interface with at most one solution.
// A run that never converges returns an empty slice.
func (s *DLSSolver) Solve(target spatialmath.RigidTransform, seed []float64) []Solution {
	if len(seed) != robot.NumJoints {
		seed = make([]float64, robot.NumJoints)
	}
	current := make([]float64, robot.NumJoints)
	copy(current, seed)

	for i := 0; i < dlsMaxIterations; i++ {
		next, converged, err := s.Step(target, current)
		if err != nil {
			if s.logger != nil {
				s.logger.Debugw("iterative solve aborted", "error", err)
			}
			return nil
		}
		if converged {
			return []Solution{{Joints: next, Valid: s.model.JointsValid(next)}}
		}
		current = next
	}
	if s.logger != nil {
		s.logger.Debugw("iterative solve did not converge", "iterations", dlsMaxIterations)
	}
	return nil
}

// jacobian builds the 6x6 geometric Jacobian at the given cumulative joint
// transforms. Row order matches RigidTransform.ToDelta: linear on top,
// angular below. Joint i rotates about the Z axis of frame i-1, with the
// base frame standing in for joint 1.
func (s *DLSSolver) jacobian(ts []spatialmath.RigidTransform, flange r3.Vector) *mat.Dense {
	jac := mat.NewDense(6, robot.NumJoints, nil)
	for i := 0; i < robot.NumJoints; i++ {
		axis := r3.Vector{X: 0, Y: 0, Z: 1}
		pivot := r3.Vector{}
		if i > 0 {
			axis = ts[i-1].AxisZ()
			pivot = ts[i-1].Translation()
		}
		lin := axis.Cross(flange.Sub(pivot))
		jac.Set(0, i, lin.X)
		jac.Set(1, i, lin.Y)
		jac.Set(2, i, lin.Z)
		jac.Set(3, i, axis.X)
		jac.Set(4, i, axis.Y)
		jac.Set(5, i, axis.Z)
	}
	return jac
}
