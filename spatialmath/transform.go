// Package spatialmath implements the rigid-body math underneath the
// kinematics: homogeneous 4x4 transforms, quaternion and axis-angle
// orientation helpers, and the W/P/R Euler convention used at the
// controller boundary. Lengths are millimeters, angles radians.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// RigidTransform is a rigid spatial transform held as a homogeneous 4x4
// matrix: rotation in the top-left 3x3 block, translation in the last
// column. It is a value type; every operation returns a new transform.
type RigidTransform struct {
	mat mgl64.Mat4
}

// NewZeroTransform returns the identity transform.
func NewZeroTransform() RigidTransform {
	return RigidTransform{mgl64.Ident4()}
}

// NewTransform builds a transform from a unit quaternion rotation and a
// translation.
func NewTransform(q quat.Number, t r3.Vector) RigidTransform {
	m := mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}.Mat4()
	m.SetCol(3, mgl64.Vec4{t.X, t.Y, t.Z, 1})
	return RigidTransform{m}
}

// NewTransformFromPoint builds a pure translation.
func NewTransformFromPoint(t r3.Vector) RigidTransform {
	m := mgl64.Ident4()
	m.SetCol(3, mgl64.Vec4{t.X, t.Y, t.Z, 1})
	return RigidTransform{m}
}

// NewTransformFromMatrix wraps an existing homogeneous matrix.
func NewTransformFromMatrix(m mgl64.Mat4) RigidTransform {
	return RigidTransform{m}
}

// DHTransform builds the classic Denavit-Hartenberg link transform
// Rz(theta) * Tz(d) * Tx(a) * Rx(alpha), written out in closed form.
func DHTransform(alpha, a, d, theta float64) RigidTransform {
	ct, st := math.Cos(theta), math.Sin(theta)
	ca, sa := math.Cos(alpha), math.Sin(alpha)
	return RigidTransform{mgl64.Mat4FromRows(
		mgl64.Vec4{ct, -st * ca, st * sa, a * ct},
		mgl64.Vec4{st, ct * ca, -ct * sa, a * st},
		mgl64.Vec4{0, sa, ca, d},
		mgl64.Vec4{0, 0, 0, 1},
	)}
}

// Matrix returns the underlying homogeneous matrix.
func (t RigidTransform) Matrix() mgl64.Mat4 {
	return t.mat
}

// Compose returns t * other, the transform applying other first.
func (t RigidTransform) Compose(other RigidTransform) RigidTransform {
	return RigidTransform{t.mat.Mul4(other.mat)}
}

// TransformPoint applies the full transform to a point.
func (t RigidTransform) TransformPoint(p r3.Vector) r3.Vector {
	v := t.mat.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// RotatePoint applies only the rotation block to a vector.
func (t RigidTransform) RotatePoint(p r3.Vector) r3.Vector {
	v := t.mat.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 0})
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// Translation returns the translation column.
func (t RigidTransform) Translation() r3.Vector {
	v := t.mat.Col(3)
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// AxisX returns the rotated X basis vector, the first rotation column.
func (t RigidTransform) AxisX() r3.Vector {
	v := t.mat.Col(0)
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// AxisY returns the rotated Y basis vector.
func (t RigidTransform) AxisY() r3.Vector {
	v := t.mat.Col(1)
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// AxisZ returns the rotated Z basis vector.
func (t RigidTransform) AxisZ() r3.Vector {
	v := t.mat.Col(2)
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// Rotation returns the top-left 3x3 rotation block.
func (t RigidTransform) Rotation() mgl64.Mat3 {
	return t.mat.Mat3()
}

// Quaternion returns the rotation as a unit quaternion.
func (t RigidTransform) Quaternion() quat.Number {
	q := mgl64.Mat4ToQuat(t.mat)
	return quat.Number{Real: q.W, Imag: q.V.X(), Jmag: q.V.Y(), Kmag: q.V.Z()}
}

// Inverse returns the inverse transform, using the transpose of the
// rotation block rather than a general matrix inversion.
func (t RigidTransform) Inverse() RigidTransform {
	r := t.mat.Mat3().Transpose()
	p := t.Translation()
	ti := r.Mul3x1(mgl64.Vec3{p.X, p.Y, p.Z}).Mul(-1)
	m := r.Mat4()
	m.SetCol(3, mgl64.Vec4{ti.X(), ti.Y(), ti.Z(), 1})
	return RigidTransform{m}
}

// ToDelta returns the six-component error taking this pose to other:
// translation difference first, then the axis-angle of the rotation
// difference. Quaternion/axis-angle is used for the rotation part because
// its distances are well defined.
func (t RigidTransform) ToDelta(other RigidTransform) []float64 {
	dt := other.Translation().Sub(t.Translation())
	dr := QuatToR3AA(QuatBetween(t.Quaternion(), other.Quaternion()))
	return []float64{dt.X, dt.Y, dt.Z, dr.X, dr.Y, dr.Z}
}

// AlmostEqual reports elementwise matrix equality within tol.
func (t RigidTransform) AlmostEqual(other RigidTransform, tol float64) bool {
	return t.mat.ApproxEqualThreshold(other.mat, tol)
}
