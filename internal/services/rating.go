package services

import "math"

// EloKFactor is the fixed K used for every rating update.
const EloKFactor = 32

// EloFloor is the lowest rating a fighter can fall to.
const EloFloor = 100

// Outcome is a battle result from fighter A's point of view.
type Outcome int

const (
	OutcomeAWon Outcome = iota
	OutcomeBWon
	// OutcomeDraw scores both sides 0.5. Settlement never produces a draw
	// under the current tie-break rule; the case exists for when that rule
	// changes.
	OutcomeDraw
)

// UpdateRatings computes post-battle ratings with the standard logistic
// expected-score formula. Pure function, no side effects.
func UpdateRatings(ratingA, ratingB int, outcome Outcome) (newA, newB int) {
	expectedA := 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/400))
	expectedB := 1 - expectedA

	var scoreA, scoreB float64
	switch outcome {
	case OutcomeAWon:
		scoreA, scoreB = 1, 0
	case OutcomeBWon:
		scoreA, scoreB = 0, 1
	case OutcomeDraw:
		scoreA, scoreB = 0.5, 0.5
	}

	newA = int(math.Round(float64(ratingA) + EloKFactor*(scoreA-expectedA)))
	newB = int(math.Round(float64(ratingB) + EloKFactor*(scoreB-expectedB)))

	if newA < EloFloor {
		newA = EloFloor
	}
	if newB < EloFloor {
		newB = EloFloor
	}
	return newA, newB
}
