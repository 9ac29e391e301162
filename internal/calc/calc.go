// Package calc holds the pure arithmetic of the 5/3/1 method: one-rep-max
// estimation, training-max derivation, the weekly percentage and rep tables,
// warmup ladders, and plate math. Functions here never touch storage.
package calc

import (
	"cmp"
	"math"
	"slices"
)

// DefaultBarWeight is the weight of a standard olympic barbell in pounds.
const DefaultBarWeight = 45.0

// DefaultRoundingIncrement is the fallback rounding step for working weights.
const DefaultRoundingIncrement = 5.0

// DefaultPlates is the standard plate set available per side, heaviest first.
var DefaultPlates = []float64{45, 35, 25, 10, 5, 2.5, 1.0, 0.75, 0.5, 0.25}

// workingPercentages indexes [week-1][set-1] into the 5/3/1 percentage table.
var workingPercentages = [4][3]float64{
	{0.65, 0.75, 0.85}, // week 1: 5s
	{0.70, 0.80, 0.90}, // week 2: 3s
	{0.75, 0.85, 0.95}, // week 3: 5/3/1
	{0.40, 0.50, 0.60}, // week 4: deload
}

// prescribedReps indexes [week-1][set-1] into the 5/3/1 rep scheme.
var prescribedReps = [4][3]int{
	{5, 5, 5},
	{3, 3, 3},
	{5, 3, 1},
	{5, 5, 5},
}

// Estimate1RM estimates a one-rep max from a rep performance using the
// Epley formula: weight × (1 + reps/30). A true single is returned as-is.
func Estimate1RM(weight float64, reps int) float64 {
	if reps == 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

// TrainingMaxFromOneRM derives a training max as 90% of the one-rep max.
func TrainingMaxFromOneRM(oneRM float64) float64 {
	return oneRM * 0.90
}

// WorkingWeight computes the prescribed weight for a main working set.
// week must be 1-4 and setNumber 1-3; out-of-range values return 0.
// The raw weight rounds to the nearest multiple of roundingIncrement with
// ties going to the even multiple, matching IEEE round-half-to-even.
func WorkingWeight(trainingMax float64, week, setNumber int, roundingIncrement float64) float64 {
	if week < 1 || week > 4 || setNumber < 1 || setNumber > 3 {
		return 0
	}
	raw := trainingMax * workingPercentages[week-1][setNumber-1]
	return roundToIncrement(raw, roundingIncrement)
}

// WorkingPercentage returns the fraction of training max for a main set,
// or 0 when week or setNumber is out of range.
func WorkingPercentage(week, setNumber int) float64 {
	if week < 1 || week > 4 || setNumber < 1 || setNumber > 3 {
		return 0
	}
	return workingPercentages[week-1][setNumber-1]
}

// PrescribedReps returns the target rep count for a main set, or 0 when
// week or setNumber is out of range. The final set of non-deload weeks is
// performed AMRAP; the value here is its minimum.
func PrescribedReps(week, setNumber int) int {
	if week < 1 || week > 4 || setNumber < 1 || setNumber > 3 {
		return 0
	}
	return prescribedReps[week-1][setNumber-1]
}

// WarmupSet is one rung of the standard warmup ladder.
type WarmupSet struct {
	Weight     float64
	Reps       int
	Percentage float64
}

// WarmupLadder computes the standard 5/3/1 warmup: empty bar ×5, then
// 40%×5, 50%×5, 60%×3 of the training max, each rounded like working sets.
func WarmupLadder(trainingMax, roundingIncrement, barWeight float64) []WarmupSet {
	steps := []struct {
		percentage float64
		reps       int
	}{
		{0, 5},
		{0.40, 5},
		{0.50, 5},
		{0.60, 3},
	}

	ladder := make([]WarmupSet, 0, len(steps))
	for _, step := range steps {
		weight := barWeight
		if step.percentage > 0 {
			weight = roundToIncrement(trainingMax*step.percentage, roundingIncrement)
		}
		ladder = append(ladder, WarmupSet{
			Weight:     weight,
			Reps:       step.reps,
			Percentage: step.percentage,
		})
	}
	return ladder
}

// PlatesPerSide decomposes the per-side load greedily from the heaviest
// available plate down. The remainder below the smallest plate is dropped;
// a target at or below bar weight yields no plates.
func PlatesPerSide(targetWeight, barWeight float64, availablePlates []float64) []float64 {
	if availablePlates == nil {
		availablePlates = DefaultPlates
	}
	sorted := slices.Clone(availablePlates)
	slices.SortFunc(sorted, func(a, b float64) int { return cmp.Compare(b, a) })

	perSide := (targetWeight - barWeight) / 2
	if perSide <= 0 {
		return nil
	}

	var plates []float64
	remaining := perSide
	for _, plate := range sorted {
		for remaining >= plate {
			plates = append(plates, plate)
			remaining -= plate
		}
	}
	return plates
}

func roundToIncrement(weight, increment float64) float64 {
	if increment <= 0 {
		return weight
	}
	return math.RoundToEven(weight/increment) * increment
}
