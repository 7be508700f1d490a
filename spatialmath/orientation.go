package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// R4AA is an axis-angle orientation: a unit axis and a rotation about it.
type R4AA struct {
	Theta float64
	RX    float64
	RY    float64
	RZ    float64
}

// Normalize scales the axis components onto the unit sphere. A zero axis is
// replaced with +X to keep downstream math finite.
func (aa *R4AA) Normalize() {
	norm := math.Sqrt(aa.RX*aa.RX + aa.RY*aa.RY + aa.RZ*aa.RZ)
	if norm == 0 {
		aa.RX, aa.RY, aa.RZ = 1, 0, 0
		return
	}
	aa.RX /= norm
	aa.RY /= norm
	aa.RZ /= norm
}

// ToQuat converts an R4 axis angle to a unit quaternion.
func (aa R4AA) ToQuat() quat.Number {
	aa.Normalize()
	s := math.Sin(aa.Theta / 2)
	return quat.Number{
		Real: math.Cos(aa.Theta / 2),
		Imag: aa.RX * s,
		Jmag: aa.RY * s,
		Kmag: aa.RZ * s,
	}
}

// QuatToR4AA converts a quaternion to an R4 axis angle in the same way the
// C++ Eigen library does.
// https://eigen.tuxfamily.org/dox/AngleAxis_8h_source.html
func QuatToR4AA(q quat.Number) R4AA {
	denom := QuatImagNorm(q)

	angle := 2 * math.Atan2(denom, math.Abs(q.Real))
	if q.Real < 0 {
		angle *= -1
	}

	if denom < 1e-6 {
		return R4AA{angle, 1, 0, 0}
	}
	return R4AA{angle, q.Imag / denom, q.Jmag / denom, q.Kmag / denom}
}

// QuatToR3AA converts a quaternion to an R3 axis angle: the unit axis scaled
// by the rotation angle, packed into a vector.
func QuatToR3AA(q quat.Number) r3.Vector {
	aa := QuatToR4AA(q)
	return r3.Vector{X: aa.RX * aa.Theta, Y: aa.RY * aa.Theta, Z: aa.RZ * aa.Theta}
}

// QuatImagNorm returns the norm of the imaginary part of a quaternion.
func QuatImagNorm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// QuatBetween returns the quaternion rotating orientation q1 into q2.
func QuatBetween(q1, q2 quat.Number) quat.Number {
	return quat.Mul(q2, quat.Conj(q1))
}

// QuatAngle returns the absolute rotation angle represented by a unit
// quaternion, in radians, normalized into [0, pi].
func QuatAngle(q quat.Number) float64 {
	angle := QuatToR4AA(q).Theta
	angle = math.Mod(angle, 2*math.Pi)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	} else if angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return math.Abs(angle)
}

// QuatAlmostEqual reports whether two unit quaternions represent nearly the
// same orientation, accounting for the q/-q double cover.
func QuatAlmostEqual(a, b quat.Number, tol float64) bool {
	d := quat.Mul(b, quat.Conj(a))
	return 1-math.Abs(d.Real) < tol
}
