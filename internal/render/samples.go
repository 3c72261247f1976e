package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

// SamplesChart renders an HTML scatter of the samples around query, coloured
// by decoded T31 in degrees Celsius. Samples without T31 are skipped.
func SamplesChart(w io.Writer, query temperature.GeoPoint, radiusMeters int, samples []temperature.RawSample) error {
	data := make([]opts.ScatterData, 0, len(samples))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		t31 := temperature.Decode(s.EncodedT31)
		if t31 == nil {
			continue
		}
		lo = math.Min(lo, *t31)
		hi = math.Max(hi, *t31)
		data = append(data, opts.ScatterData{Value: []interface{}{s.Lon, s.Lat, *t31}})
	}
	if len(data) == 0 {
		lo, hi = 0, 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "MODIS samples", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "MODIS samples (T31 °C)",
			Subtitle: fmt.Sprintf("lat=%.4f lon=%.4f radio=%dm points=%d", query.Lat, query.Lon, radiusMeters, len(data)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Longitude", NameLocation: "middle", NameGap: 25, Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Latitude", NameLocation: "middle", NameGap: 30, Scale: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#313695", "#74add1", "#fee090", "#f46d43", "#a50026"}},
		}),
	)
	scatter.AddSeries("T31", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	return scatter.Render(w)
}
