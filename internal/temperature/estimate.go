package temperature

// Estimate runs the full decode, weight, interpolate and aggregate pipeline
// for one query point. It performs no I/O and is safe for concurrent use.
// A non-positive power falls back to DefaultPower.
func Estimate(query GeoPoint, raw []RawSample, power float64) Outcome {
	if len(raw) == 0 {
		return Outcome{Kind: OutcomeNoData}
	}
	if power <= 0 {
		power = DefaultPower
	}

	admitted := make([]WeightedSample, 0, len(raw))
	for _, r := range raw {
		if ws, ok := Admit(query, DecodeSample(r), power); ok {
			admitted = append(admitted, ws)
		}
	}

	interp, err := Interpolate(admitted)
	if err != nil {
		return Outcome{Kind: OutcomeNoValidSamples, SampleCount: len(raw)}
	}
	return Aggregate(interp, len(raw))
}
