package roast

import (
	"fmt"
	"math"
	"strings"
)

// Events are the roast milestones, minutes from charge. Zero means the
// milestone was never reached.
type Events struct {
	TurnTime       float64 `json:"turn_time"`
	DryTime        float64 `json:"dry_time"`
	FirstCrackTime float64 `json:"first_crack_time"`
}

// Summary is the post-roast report.
type Summary struct {
	Events
	DropTemp       float64 `json:"drop_temp"`
	BeanCount      int     `json:"bean_count"`
	SurfaceArea    float64 `json:"surface_area"`
	BeanEnergyKJ   float64 `json:"bean_energy_kj"`
	BurnerEnergyMJ float64 `json:"burner_energy_mj"`
	RadiativeKJ    float64 `json:"radiative_kj"`
	Froude         float64 `json:"froude"`
	YellowPct      float64 `json:"yellow_pct"`
	BrownPct       float64 `json:"brown_pct"`
	DevPct         float64 `json:"dev_pct"`
}

// Summary reports the roast totals at the current instant. It is
// normally taken once, at drop.
func (d *Drum) Summary() Summary {
	p := d.params

	beanMass := (4.0 / 3.0) * math.Pi * math.Pow(p.BeanDiameter/2, 3) * p.BeanDensity
	beanCount := 0
	surfaceArea := 0.0
	if beanMass > 0 {
		beanCount = int(d.chargeKg / beanMass)
		surfaceArea = float64(beanCount) * 4 * math.Pi * math.Pow(p.BeanDiameter/2, 2)
	}

	radiative := 0.0
	denom := 1/p.BeanEmissivity + (d.beanArea/d.drumArea)*(1/p.DrumEmissivity-1)
	if denom != 0 {
		radiative = d.radiative * d.beanArea / denom * d.lastDt * 60
	}

	s := Summary{
		Events:         d.Events(),
		DropTemp:       d.probeTemp,
		BeanCount:      beanCount,
		SurfaceArea:    surfaceArea,
		BeanEnergyKJ:   d.chargeKg * p.BeanCp * (d.probeTemp - p.ChargeTemp),
		BurnerEnergyMJ: d.burnerTot * d.lastDt / 60,
		RadiativeKJ:    radiative / 1000,
		Froude:         d.froude,
	}

	if s.DryTime > 0 && s.FirstCrackTime > 0 && p.DropTime > 0 {
		s.YellowPct = s.DryTime * 100 / p.DropTime
		s.BrownPct = (s.FirstCrackTime - s.DryTime) * 100 / p.DropTime
		s.DevPct = (p.DropTime - s.FirstCrackTime) * 100 / p.DropTime
	}

	return s
}

// FormatClock renders minutes as "4m:50s".
func FormatClock(minutes float64) string {
	if minutes <= 0 {
		return "-"
	}
	whole := math.Floor(minutes)
	secs := int(math.Round((minutes - whole) * 60))
	if secs == 60 {
		whole++
		secs = 0
	}
	return fmt.Sprintf("%dm:%02ds", int(whole), secs)
}

func (s Summary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "t_turn: %s, t_yellow: %s, t_fc: %s, T_drop: %.0f°C",
		FormatClock(s.TurnTime), FormatClock(s.DryTime), FormatClock(s.FirstCrackTime), s.DropTemp)

	if s.YellowPct > 0 {
		fmt.Fprintf(&b, "\nyellow: %.1f%%, brown: %.1f%%, dev: %.1f%%",
			s.YellowPct, s.BrownPct, s.DevPct)
	}

	fmt.Fprintf(&b, "\nbeans: %d, bean energy: %.0f kJ, burner: %.3f MJ, radiative: %.0f kJ, froude: %.4f",
		s.BeanCount, s.BeanEnergyKJ, s.BurnerEnergyMJ, s.RadiativeKJ, s.Froude)

	return b.String()
}
