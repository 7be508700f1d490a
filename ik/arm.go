package ik

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/sixdof/armkin/robot"
	"github.com/sixdof/armkin/utils"
)

const halfPi = math.Pi / 2

// reachSlack is how far an acos/asin argument may overshoot [-1, 1] and
// still be clamped rather than rejected. Overshoot within this band is
// floating-point noise at the reachability boundary, not unreachability.
const reachSlack = 1e-9

func almostEqual(a, b, eps float64) bool {
	return utils.Float64AlmostEqual(a, b, eps)
}

// armCandidate is a joints-1-3 placement produced by the planar sub-solver.
type armCandidate struct {
	theta1 float64
	theta2 float64
	theta3 float64
}

// solvePlanarArm solves the shoulder/elbow triangle placing the forearm
// endpoint (the frame-4 origin, offset d4 along z3) at point w. Both
// discrete solvers share it: the analytical solver feeds it the wrist
// center, the scan solver feeds it each circle candidate.
//
// Up to four candidates come back: two base headings (theta1 and its
// mirrored twin) times two elbow configurations. At full extension the
// elbow branches coincide and only one is emitted. When w sits on the base
// axis the heading is unconstrained and fallbackHeading is used.
//
// Out-of-reach points yield fewer (possibly zero) candidates; that is the
// normal signal, not an error.
func solvePlanarArm(m *robot.Model, w r3.Vector, bothHeadings bool, fallbackHeading float64) []armCandidate {
	a2 := m.UpperArm()
	d4 := m.Forearm()
	s := w.Z - m.BaseRise()
	rho := math.Hypot(w.X, w.Y)

	heading := fallbackHeading
	if rho > 1e-9 {
		heading = math.Atan2(w.Y, w.X)
	}

	type branch struct {
		theta1 float64
		r      float64
	}
	branches := []branch{{heading, rho}}
	if bothHeadings && rho > 1e-9 {
		branches = append(branches, branch{utils.NormalizeAngle(heading + math.Pi), -rho})
	}

	var out []armCandidate
	for _, b := range branches {
		// Law of cosines for the elbow deviation from full extension.
		cosGamma := (b.r*b.r + s*s - a2*a2 - d4*d4) / (2 * a2 * d4)
		if cosGamma > 1+reachSlack || cosGamma < -1-reachSlack {
			continue // triangle inequality violated; out of reach on this heading
		}
		gamma := math.Acos(utils.ClampAcosInput(cosGamma))

		elbows := []float64{gamma}
		if gamma > 1e-9 {
			elbows = append(elbows, -gamma)
		}
		for _, g := range elbows {
			theta2 := math.Atan2(s, b.r) - math.Atan2(d4*math.Sin(g), a2+d4*math.Cos(g))
			out = append(out, armCandidate{
				theta1: b.theta1,
				theta2: utils.NormalizeAngle(theta2),
				// The forearm offset d4 rides the z3 axis, perpendicular
				// to the upper arm at theta3 = 90 degrees; gamma is the
				// deviation from full extension.
				theta3: utils.NormalizeAngle(g + halfPi),
			})
		}
	}
	return out
}
