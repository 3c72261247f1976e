package temperature

// MODIS brightness temperatures are stored as fixed-point integers.
const (
	fixedPointScale = 0.02
	kelvinOffset    = 273.15
)

// DecodeKelvin converts a raw fixed-point reading to Kelvin.
func DecodeKelvin(raw *int64) *float64 {
	if raw == nil {
		return nil
	}
	k := float64(*raw)*fixedPointScale + kelvinOffset
	return &k
}

// Decode converts a raw fixed-point reading to Celsius, or returns nil when
// the reading is absent. The Kelvin offset cancels, so the result is exactly
// raw*0.02. Out-of-range raw values are not clamped.
func Decode(raw *int64) *float64 {
	if raw == nil {
		return nil
	}
	c := float64(*raw) * fixedPointScale
	return &c
}

// DecodeSample decodes both channels independently.
func DecodeSample(s RawSample) DecodedSample {
	return DecodedSample{
		Lat:        s.Lat,
		Lon:        s.Lon,
		CelsiusT31: Decode(s.EncodedT31),
		CelsiusT21: Decode(s.EncodedT21),
	}
}
