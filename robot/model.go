// Package robot describes an articulated 6-axis arm: its Denavit-Hartenberg
// chain, joint limits, calibration conventions, and forward kinematics. A
// Model is immutable once built; all validation happens at construction so
// that per-solve code never has to re-check configuration.
package robot

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/sixdof/armkin/spatialmath"
)

// NumJoints is the joint count for every model in this package.
const NumJoints = 6

// DHParam is one row of a classic Denavit-Hartenberg table: link twist
// alpha (radians), link length a (mm), and link offset d (mm). The joint
// variable theta is supplied per solve, not stored here.
type DHParam struct {
	Alpha float64
	A     float64
	D     float64
}

// Limit bounds one joint's travel in radians. A zero-valued Limit (Min ==
// Max) means the joint is unconstrained.
type Limit struct {
	Min float64
	Max float64
}

// Constrained reports whether the limit actually restricts travel.
func (l Limit) Constrained() bool {
	return l.Min < l.Max
}

// Contains reports whether angle theta is within the limit. Unconstrained
// limits contain everything.
func (l Limit) Contains(theta float64) bool {
	if !l.Constrained() {
		return true
	}
	return theta >= l.Min && theta <= l.Max
}

// Model is an immutable 6-axis arm description.
type Model struct {
	name   string
	dh     [NumJoints]DHParam
	limits [NumJoints]Limit
	calib  Calibration
}

// NewModel validates a configuration and builds a Model. Configuration
// mistakes (wrong joint count, zero-length links, inverted limits) are
// programming/configuration errors and fail here, never per solve.
func NewModel(name string, dh []DHParam, limits []Limit, calib Calibration) (*Model, error) {
	var err error
	if name == "" {
		err = multierr.Append(err, errors.New("model name must not be empty"))
	}
	if len(dh) != NumJoints {
		err = multierr.Append(err, errors.Errorf("expected %d DH rows, got %d", NumJoints, len(dh)))
	}
	if len(limits) != 0 && len(limits) != NumJoints {
		err = multierr.Append(err, errors.Errorf("expected 0 or %d joint limits, got %d", NumJoints, len(limits)))
	}
	if err != nil {
		return nil, err
	}

	m := &Model{name: name, calib: calib.withDefaults()}
	copy(m.dh[:], dh)
	copy(m.limits[:], limits)

	if m.UpperArm() <= 0 {
		err = multierr.Append(err, errors.Errorf("upper arm length must be positive, got %f", m.UpperArm()))
	}
	if m.Forearm() <= 0 {
		err = multierr.Append(err, errors.Errorf("forearm length must be positive, got %f", m.Forearm()))
	}
	if m.WristOffset() < 0 {
		err = multierr.Append(err, errors.Errorf("wrist offset must not be negative, got %f", m.WristOffset()))
	}
	for i, l := range m.limits {
		if l.Min > l.Max {
			err = multierr.Append(err, errors.Errorf("joint %d limit inverted: [%f, %f]", i+1, l.Min, l.Max))
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "invalid model %q", name)
	}
	return m, nil
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// DH returns the DH row for one joint, 0-indexed.
func (m *Model) DH(i int) DHParam {
	return m.dh[i]
}

// Limits returns the per-joint travel limits.
func (m *Model) Limits() []Limit {
	out := make([]Limit, NumJoints)
	copy(out, m.limits[:])
	return out
}

// Calibration returns the model's boundary conventions.
func (m *Model) Calibration() Calibration {
	return m.calib
}

// Named geometry accessors for the canonical articulated-arm chain. These
// are plain reads of the DH table; the solvers validate the full structural
// pattern themselves at construction.

// BaseRise is the base-to-shoulder height d1.
func (m *Model) BaseRise() float64 { return m.dh[0].D }

// UpperArm is the shoulder-to-elbow link length a2.
func (m *Model) UpperArm() float64 { return m.dh[1].A }

// Forearm is the elbow-to-wrist link offset d4.
func (m *Model) Forearm() float64 { return m.dh[3].D }

// WristOffset is the J4-to-J5 axis offset d5. Zero for spherical wrists.
func (m *Model) WristOffset() float64 { return m.dh[4].D }

// FlangeOffset is the wrist-to-flange offset d6 along the tool Z axis.
func (m *Model) FlangeOffset() float64 { return m.dh[5].D }

// JointTransforms returns the cumulative transforms T01..T06 for a joint
// configuration, base frame first. Index i holds base->frame(i+1). The
// iterative solver reads joint axes and pivots from these; the discrete
// solvers use them as forward-kinematics checkpoints.
func (m *Model) JointTransforms(joints []float64) ([]spatialmath.RigidTransform, error) {
	if len(joints) != NumJoints {
		return nil, errors.Errorf("expected %d joint angles, got %d", NumJoints, len(joints))
	}
	out := make([]spatialmath.RigidTransform, NumJoints)
	acc := spatialmath.NewZeroTransform()
	for i, p := range m.dh {
		acc = acc.Compose(spatialmath.DHTransform(p.Alpha, p.A, p.D, joints[i]))
		out[i] = acc
	}
	return out, nil
}

// ForwardKinematics composes the full DH chain, returning the flange pose
// for a joint configuration. Out-of-limit angles are evaluated as given;
// limits are a solver concern, not a kinematics one.
func (m *Model) ForwardKinematics(joints []float64) (spatialmath.RigidTransform, error) {
	ts, err := m.JointTransforms(joints)
	if err != nil {
		return spatialmath.NewZeroTransform(), err
	}
	return ts[NumJoints-1], nil
}

// PartialForwardKinematics composes the chain through joint n (1-indexed),
// used by the discrete solvers to reconstruct intermediate frames.
func (m *Model) PartialForwardKinematics(joints []float64, n int) (spatialmath.RigidTransform, error) {
	if n < 1 || n > NumJoints {
		return spatialmath.NewZeroTransform(), errors.Errorf("joint index %d out of range", n)
	}
	if len(joints) < n {
		return spatialmath.NewZeroTransform(), errors.Errorf("need %d joint angles, got %d", n, len(joints))
	}
	acc := spatialmath.NewZeroTransform()
	for i := 0; i < n; i++ {
		p := m.dh[i]
		acc = acc.Compose(spatialmath.DHTransform(p.Alpha, p.A, p.D, joints[i]))
	}
	return acc, nil
}

// WristCenter backs off from a target flange pose along the tool Z axis by
// the flange offset, giving the origin of the J5 frame.
func (m *Model) WristCenter(target spatialmath.RigidTransform) r3.Vector {
	return target.Translation().Sub(target.AxisZ().Mul(m.FlangeOffset()))
}

// JointsValid reports whether every angle is inside its configured limit.
func (m *Model) JointsValid(joints []float64) bool {
	if len(joints) != NumJoints {
		return false
	}
	for i, theta := range joints {
		if !m.limits[i].Contains(theta) {
			return false
		}
	}
	return true
}

// ClampToLimits returns a copy of joints with each constrained joint
// clamped into its travel range.
func (m *Model) ClampToLimits(joints []float64) []float64 {
	out := make([]float64, len(joints))
	copy(out, joints)
	for i := range out {
		if i >= NumJoints || !m.limits[i].Constrained() {
			continue
		}
		out[i] = math.Max(m.limits[i].Min, math.Min(m.limits[i].Max, out[i]))
	}
	return out
}
