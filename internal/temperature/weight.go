package temperature

import (
	"math"

	"github.com/paulmach/orb/planar"
)

// DefaultPower is the IDW exponent used when none is configured.
const DefaultPower = 2.0

// Distance is the planar Euclidean distance between two points in degree
// units. There is no great-circle or longitude-convergence correction.
func Distance(query, sample GeoPoint) float64 {
	return planar.Distance(query.Orb(), sample.Orb())
}

// Weight returns 1/distance^power. Callers must not pass a zero distance.
func Weight(distance, power float64) float64 {
	return 1 / math.Pow(distance, power)
}

// Admit computes distance and weight for a decoded sample and reports whether
// it may take part in interpolation. Samples missing a channel or sitting
// exactly on the query point are rejected.
func Admit(query GeoPoint, s DecodedSample, power float64) (WeightedSample, bool) {
	if s.CelsiusT21 == nil || s.CelsiusT31 == nil {
		return WeightedSample{}, false
	}
	d := Distance(query, s.Point())
	if !(d > 0) {
		return WeightedSample{}, false
	}
	w := Weight(d, power)
	// Distances small enough to overflow the weight behave like a zero distance.
	if math.IsInf(w, 0) {
		return WeightedSample{}, false
	}
	return WeightedSample{
		Distance:   d,
		Weight:     w,
		CelsiusT31: *s.CelsiusT31,
		CelsiusT21: *s.CelsiusT21,
	}, true
}
