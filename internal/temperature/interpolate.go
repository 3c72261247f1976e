package temperature

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoValidSamples is returned when no admissible sample is left to interpolate.
var ErrNoValidSamples = errors.New("no valid samples to interpolate")

// Interpolation holds the IDW channel values for a query point.
type Interpolation struct {
	T21 float64
	T31 float64

	// MeanDistance is the distance averaged with the normalized weights.
	MeanDistance float64

	// Weights are the normalized weights, in input order. They sum to 1.
	Weights []float64
}

// Interpolate combines admitted samples into one value per channel using
// their normalized inverse-distance weights.
func Interpolate(samples []WeightedSample) (Interpolation, error) {
	if len(samples) == 0 {
		return Interpolation{}, ErrNoValidSamples
	}

	weights := make([]float64, len(samples))
	distances := make([]float64, len(samples))
	t21 := make([]float64, len(samples))
	t31 := make([]float64, len(samples))
	for i, s := range samples {
		weights[i] = s.Weight
		distances[i] = s.Distance
		t21[i] = s.CelsiusT21
		t31[i] = s.CelsiusT31
	}

	// A lone sample normalizes to exactly 1.
	sum := floats.Sum(weights)
	for i := range weights {
		weights[i] /= sum
	}

	return Interpolation{
		T21:          floats.Dot(weights, t21),
		T31:          floats.Dot(weights, t31),
		MeanDistance: stat.Mean(distances, weights),
		Weights:      weights,
	}, nil
}
