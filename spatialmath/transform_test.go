package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestDHTransformRotation(t *testing.T) {
	// theta alone is a rotation about Z.
	rz := DHTransform(0, 0, 0, math.Pi/2)
	p := rz.TransformPoint(r3.Vector{X: 1})
	test.That(t, p.X, test.ShouldAlmostEqual, 0)
	test.That(t, p.Y, test.ShouldAlmostEqual, 1)
	test.That(t, p.Z, test.ShouldAlmostEqual, 0)

	// alpha alone is a rotation about X.
	rx := DHTransform(math.Pi/2, 0, 0, 0)
	p = rx.RotatePoint(r3.Vector{Y: 1})
	test.That(t, p.X, test.ShouldAlmostEqual, 0)
	test.That(t, p.Y, test.ShouldAlmostEqual, 0)
	test.That(t, p.Z, test.ShouldAlmostEqual, 1)
}

func TestDHTransformOffsets(t *testing.T) {
	// a rides the rotated X axis, d the Z axis.
	tf := DHTransform(0, 100, 50, math.Pi/2)
	p := tf.Translation()
	test.That(t, p.X, test.ShouldAlmostEqual, 0)
	test.That(t, p.Y, test.ShouldAlmostEqual, 100)
	test.That(t, p.Z, test.ShouldAlmostEqual, 50)
}

func TestComposeInverse(t *testing.T) {
	tf := NewTransform(
		WPR{W: 0.3, P: -0.7, R: 1.2}.Quaternion(),
		r3.Vector{X: 120, Y: -45, Z: 300},
	)
	ident := tf.Compose(tf.Inverse())
	test.That(t, ident.AlmostEqual(NewZeroTransform(), 1e-9), test.ShouldBeTrue)

	// Inverse actually undoes the point map.
	p := r3.Vector{X: 1, Y: 2, Z: 3}
	back := tf.Inverse().TransformPoint(tf.TransformPoint(p))
	test.That(t, back.X, test.ShouldAlmostEqual, p.X)
	test.That(t, back.Y, test.ShouldAlmostEqual, p.Y)
	test.That(t, back.Z, test.ShouldAlmostEqual, p.Z)
}

func TestAxes(t *testing.T) {
	rz := DHTransform(0, 0, 0, math.Pi/2)
	x := rz.AxisX()
	test.That(t, x.X, test.ShouldAlmostEqual, 0)
	test.That(t, x.Y, test.ShouldAlmostEqual, 1)
	z := rz.AxisZ()
	test.That(t, z.Z, test.ShouldAlmostEqual, 1)
}

func TestQuaternionRoundTrip(t *testing.T) {
	aa := R4AA{Theta: 1.2, RX: 0.3, RY: -0.4, RZ: 0.85}
	q := aa.ToQuat()
	got := NewTransform(q, r3.Vector{}).Quaternion()
	test.That(t, QuatAlmostEqual(q, got, 1e-9), test.ShouldBeTrue)
}

func TestToDelta(t *testing.T) {
	a := NewTransformFromPoint(r3.Vector{X: 10, Y: 20, Z: 30})
	b := NewTransformFromPoint(r3.Vector{X: 13, Y: 16, Z: 30})
	d := a.ToDelta(b)
	test.That(t, d[0], test.ShouldAlmostEqual, 3)
	test.That(t, d[1], test.ShouldAlmostEqual, -4)
	test.That(t, d[2], test.ShouldAlmostEqual, 0)
	test.That(t, d[3], test.ShouldAlmostEqual, 0)
	test.That(t, d[4], test.ShouldAlmostEqual, 0)
	test.That(t, d[5], test.ShouldAlmostEqual, 0)

	// A pure rotation about Z shows up only in the angular part.
	c := DHTransform(0, 0, 0, 0.3)
	d = NewZeroTransform().ToDelta(c)
	test.That(t, d[0], test.ShouldAlmostEqual, 0)
	test.That(t, d[3], test.ShouldAlmostEqual, 0)
	test.That(t, d[4], test.ShouldAlmostEqual, 0)
	test.That(t, d[5], test.ShouldAlmostEqual, 0.3, 1e-9)
}
