package robot

import (
	"github.com/golang/geo/r3"

	"github.com/sixdof/armkin/spatialmath"
)

// Calibration names the conventions that differ between robot controllers
// and mountings: position unit scale, X-axis direction, W/P/R angle signs,
// and the J2/J3 mechanical coupling. The zero value (after withDefaults)
// is the controller-native convention: millimeters, no flips, coupling off.
//
// These conversions are applied exactly once, at the actuation boundary
// below, and never inside solver math.
type Calibration struct {
	// PositionScale multiplies positions crossing the boundary outward
	// (e.g. 1000 when the consumer works in meters). Zero means 1.
	PositionScale float64
	// FlipX negates the X coordinate of boundary positions.
	FlipX bool
	// SignP and SignR multiply the P and R Euler angles at the boundary.
	// Zero means +1.
	SignP float64
	SignR float64
	// CoupleJ3 reports J3 as J3+J2 on the way out, matching controllers
	// whose J3 encoder rides on the J2 linkage.
	CoupleJ3 bool
}

func (c Calibration) withDefaults() Calibration {
	if c.PositionScale == 0 {
		c.PositionScale = 1
	}
	if c.SignP == 0 {
		c.SignP = 1
	}
	if c.SignR == 0 {
		c.SignR = 1
	}
	return c
}

// ToActuation converts solver-convention joint angles to the robot's native
// reporting convention. The only structural difference is the additive J3
// coupling; it is applied here and nowhere else.
func (m *Model) ToActuation(joints []float64) []float64 {
	out := make([]float64, len(joints))
	copy(out, joints)
	if m.calib.CoupleJ3 && len(out) >= 3 {
		out[2] = joints[2] + joints[1]
	}
	return out
}

// FromActuation converts native joint angles back to solver convention.
func (m *Model) FromActuation(joints []float64) []float64 {
	out := make([]float64, len(joints))
	copy(out, joints)
	if m.calib.CoupleJ3 && len(out) >= 3 {
		out[2] = joints[2] - joints[1]
	}
	return out
}

// PositionToController scales and flips a solver-frame position (mm) into
// the controller frame.
func (m *Model) PositionToController(p r3.Vector) r3.Vector {
	p = p.Mul(m.calib.PositionScale)
	if m.calib.FlipX {
		p.X = -p.X
	}
	return p
}

// PositionFromController inverts PositionToController.
func (m *Model) PositionFromController(p r3.Vector) r3.Vector {
	if m.calib.FlipX {
		p.X = -p.X
	}
	return p.Mul(1 / m.calib.PositionScale)
}

// WPRToController applies the P/R sign convention on the way out.
func (m *Model) WPRToController(e spatialmath.WPR) spatialmath.WPR {
	return spatialmath.WPR{W: e.W, P: m.calib.SignP * e.P, R: m.calib.SignR * e.R}
}

// WPRFromController inverts WPRToController. The signs are +/-1, so the
// conversion is its own inverse.
func (m *Model) WPRFromController(e spatialmath.WPR) spatialmath.WPR {
	return m.WPRToController(e)
}
