package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/roastlab/roastsim/internal/sim"
)

// PlotTracking renders the target curve and the measured bean temperature
// as one overlaid terminal chart.
func PlotTracking(samples []sim.Sample, height, width int) string {
	setpoints := make([]float64, len(samples))
	measured := make([]float64, len(samples))
	for i, s := range samples {
		setpoints[i] = s.Setpoint
		measured[i] = s.Measurement
	}

	return asciigraph.PlotMany([][]float64{setpoints, measured},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Gray, asciigraph.Green),
		asciigraph.SeriesLegends("target", "bean probe"),
		asciigraph.Caption("bean temperature vs target (C)"),
	)
}

// PlotPower renders the burner power trace.
func PlotPower(samples []sim.Sample, height, width int) string {
	power := make([]float64, len(samples))
	for i, s := range samples {
		power[i] = s.Power
	}

	return asciigraph.Plot(power,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("burner power (%)"),
	)
}

// PlotRoR renders a rate-of-rise series.
func PlotRoR(ror []float64, height, width int) string {
	return asciigraph.Plot(ror,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("rate of rise (C/min)"),
	)
}
