package ik

import (
	"math"

	"github.com/sixdof/armkin/robot"
	"github.com/sixdof/armkin/utils"
)

// SelectClosest picks the candidate whose joints are nearest the reference
// configuration, scored by the sum of shortest angular distances. This is
// the automatic policy for continuous motion: along a smooth pose path it
// keeps the arm in one configuration branch instead of snapping between
// them. An empty candidate set returns ErrNoSolution.
func SelectClosest(candidates []Solution, reference []float64) (Solution, error) {
	best := -1
	bestScore := math.Inf(1)
	for i, c := range candidates {
		if !c.Valid || len(c.Joints) != robot.NumJoints {
			continue
		}
		score := 0.0
		for j, theta := range c.Joints {
			ref := 0.0
			if j < len(reference) {
				ref = reference[j]
			}
			score += math.Abs(utils.AngleDiff(theta, ref))
		}
		if score < bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Solution{}, ErrNoSolution
	}
	return candidates[best], nil
}

// SelectIndex picks a candidate by explicit configuration index, for
// callers that address branches directly. Out-of-range indices clamp to
// the nearest valid one rather than failing; an empty set returns
// ErrNoSolution.
func SelectIndex(candidates []Solution, index int) (Solution, error) {
	if len(candidates) == 0 {
		return Solution{}, ErrNoSolution
	}
	if index < 0 {
		index = 0
	}
	if index >= len(candidates) {
		index = len(candidates) - 1
	}
	return candidates[index], nil
}
