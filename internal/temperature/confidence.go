package temperature

import (
	"math"
	"strconv"
)

// confidenceScale is applied to a mean distance expressed in degrees, while
// search radii are expressed in meters. The unit mismatch is kept as is.
const confidenceScale = 100000.0

// Confidence maps the weighted mean sample distance to a score in [0, 1],
// rounded to three decimals.
func Confidence(meanDistance float64) float64 {
	c := 1 - meanDistance/confidenceScale
	c = math.Max(0, math.Min(1, c))
	return round(c, 3)
}

// round rounds the exact binary value of v to the given number of decimals.
// Only exact ties go to even, so 2.675 (stored as 2.67499...) becomes 2.67.
func round(v float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}
