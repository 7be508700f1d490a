package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestNormalizeAngle(t *testing.T) {
	test.That(t, NormalizeAngle(0), test.ShouldEqual, 0)
	test.That(t, NormalizeAngle(3*math.Pi), test.ShouldAlmostEqual, math.Pi)
	test.That(t, NormalizeAngle(-3*math.Pi), test.ShouldAlmostEqual, math.Pi)
	test.That(t, NormalizeAngle(math.Pi+0.1), test.ShouldAlmostEqual, -math.Pi+0.1)
	test.That(t, NormalizeAngle(-0.25), test.ShouldAlmostEqual, -0.25)
}

func TestAngleDiff(t *testing.T) {
	test.That(t, AngleDiff(0.1, -0.1), test.ShouldAlmostEqual, 0.2)
	// Shortest way across the wrap.
	test.That(t, AngleDiff(math.Pi-0.05, -math.Pi+0.05), test.ShouldAlmostEqual, -0.1)
}

func TestDegRadConversions(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90)
	test.That(t, RadToDeg(DegToRad(123.456)), test.ShouldAlmostEqual, 123.456)
}

func TestClamping(t *testing.T) {
	test.That(t, ClampAcosInput(1+1e-12), test.ShouldEqual, 1)
	test.That(t, ClampAcosInput(-1-1e-12), test.ShouldEqual, -1)
	test.That(t, ClampAcosInput(0.5), test.ShouldEqual, 0.5)
	test.That(t, Clamp(5, -1, 1), test.ShouldEqual, 1)
	test.That(t, Clamp(-5, -1, 1), test.ShouldEqual, -1)
	test.That(t, Clamp(0.25, -1, 1), test.ShouldEqual, 0.25)
}
