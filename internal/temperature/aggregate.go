package temperature

import "math"

// Aggregate folds the two interpolated channels into a min/max/average
// temperature range. sampleCount is the number of raw samples handed to the
// estimator, not the number that survived admission.
func Aggregate(in Interpolation, sampleCount int) Outcome {
	minC := round(math.Min(in.T21, in.T31), 2)
	maxC := round(math.Max(in.T21, in.T31), 2)

	return Outcome{
		Kind:        OutcomeSuccess,
		MinC:        minC,
		MaxC:        maxC,
		AvgC:        round((minC+maxC)/2, 2),
		Confidence:  Confidence(in.MeanDistance),
		SampleCount: sampleCount,
	}
}
