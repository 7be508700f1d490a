package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// WPR holds a Fanuc-native Euler orientation, radians. W rotates about the
// fixed X axis, P about fixed Y, R about fixed Z, composed as
// Rz(R) * Ry(P) * Rx(W). This is not the aerospace intrinsic order; the
// composition below is written out in half angles to keep the convention
// explicit.
type WPR struct {
	W float64
	P float64
	R float64
}

// Quaternion converts the WPR angles to a unit quaternion.
func (e WPR) Quaternion() quat.Number {
	cw, sw := math.Cos(e.W/2), math.Sin(e.W/2)
	cp, sp := math.Cos(e.P/2), math.Sin(e.P/2)
	cr, sr := math.Cos(e.R/2), math.Sin(e.R/2)

	return quat.Number{
		Real: cr*cp*cw + sr*sp*sw,
		Imag: cr*cp*sw - sr*sp*cw,
		Jmag: cr*sp*cw + sr*cp*sw,
		Kmag: sr*cp*cw - cr*sp*sw,
	}
}

// Transform returns the pure-rotation transform for the WPR angles.
func (e WPR) Transform() RigidTransform {
	return NewTransform(e.Quaternion(), r3.Vector{})
}

// QuatToWPR extracts W/P/R angles from a unit quaternion. When P approaches
// +/-90 degrees, W and R couple (gimbal lock); W is pinned to zero and the
// full rotation is reported in R. That degeneracy is accepted, not an error.
func QuatToWPR(q quat.Number) WPR {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	sinP := 2 * (w*y - x*z)
	if math.Abs(sinP) >= 1-1e-12 {
		p := math.Copysign(math.Pi/2, sinP)
		r := -2 * math.Atan2(x, w)
		if sinP < 0 {
			r = 2 * math.Atan2(x, w)
		}
		return WPR{W: 0, P: p, R: r}
	}

	return WPR{
		W: math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)),
		P: math.Asin(sinP),
		R: math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)),
	}
}
