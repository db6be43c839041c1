package roast

import (
	"math"

	"github.com/roastlab/roastsim/internal/sim"
)

const (
	maxTemp = 1000.0 // clamp ceiling, degrees C
	minTemp = -50.0

	evapHeatMJ     = 750.0 // heat drawn per kg of evaporated water
	rorCorrection  = 0.5
	postFCMassFact = 600.0
	postFCHeatFact = 50.0

	stefanBoltzmann = 5.6703e-8
)

// Drum is the thermal model of one roast in progress. The burner heats
// the drum environment, the drum heats the beans, water evaporation and
// the post-first-crack exotherm shift the balance, and the probe trails
// the true bean temperature with first-order lag.
type Drum struct {
	params Params

	// derived constants
	chargeKg float64
	speed    float64
	resp     float64
	wfact    float64
	drumArea float64 // m^2
	beanArea float64 // m^2
	froude   float64

	// state
	beanTemp   float64 // true bean temperature
	probeTemp  float64 // what the probe reads
	drumTemp   float64
	drumEq     float64 // drum equilibrium temperature at current power
	drumEqSlow float64 // slow-moving drum equilibrium driving heat transfer
	burnerMJ   float64
	burnerTot  float64
	water      float64 // kg of water remaining
	coffeeKg   float64 // kg of dry coffee remaining
	radiative  float64
	ror        float64
	prevProbe  float64
	lastDt     float64

	pastFC bool
	dried  bool

	turnTime float64
	dryTime  float64
	fcTime   float64
}

// NewDrum charges a drum with the given batch.
func NewDrum(params Params) (*Drum, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	chargeKg := params.BatchGrams / 1000

	speed := params.SpeedFactor
	if speed > 3 {
		speed = 6 - speed
	}

	drumD := params.DrumDiameter / 1000
	drumL := params.DrumLength / 1000
	coffeeKg := chargeKg * (1 - params.Moisture)

	d := &Drum{
		params:   params,
		chargeKg: chargeKg,
		speed:    speed,
		resp:     10 + (3-params.Response)*3,
		wfact:    0.0012 * chargeKg / 10,
		drumArea: math.Pi * drumD * drumL,
		// crude bean bed area at an assumed packing density of 0.5
		beanArea: 2 * math.Pi * math.Sqrt(2*chargeKg/1000/(math.Pi*drumL)) * drumL,
		froude:   math.Pow(params.DrumRPM/60*2*math.Pi, 2) * drumD / (2 * 9.8),

		beanTemp:  params.ChargeTemp,
		probeTemp: params.PreheatTemp,
		drumTemp:  params.PreheatTemp,
		drumEq:    params.PreheatTemp,
		burnerMJ:  params.BurnerMJ,
		water:     params.Moisture * coffeeKg,
		coffeeKg:  coffeeKg,
		prevProbe: 999,
	}
	return d, nil
}

func (d *Drum) Measurement() float64 { return d.probeTemp }

// Advance steps the model by dt minutes at the given burner power. Power
// beyond the 0-100 range is clamped; temperatures are bounded so a
// runaway configuration saturates instead of overflowing.
func (d *Drum) Advance(power, t, dt float64) {
	tEnd := t + dt
	power = clampf(power, 0, 100)

	d.drumEq = clampf(d.params.AirTemp*(1-(1-power/d.params.InitialPower)*0.2), minTemp, maxTemp)
	if d.drumEqSlow == 0 {
		d.drumEqSlow = d.drumEq
	}

	d.drumTemp += (d.beanTemp - (d.drumTemp - 40 + (d.params.AirTemp - d.drumEq))) / (d.resp * 5)
	d.drumTemp = clampf(d.drumTemp, minTemp, maxTemp)

	burnerEq := d.params.BurnerMJ * power / 100
	d.burnerMJ += (burnerEq - d.burnerMJ) / d.resp
	d.burnerTot += d.burnerMJ

	wloss := math.Max(0, (d.beanTemp-100)*d.wfact*dt)

	if d.beanTemp >= d.params.FirstCrackTemp {
		if d.fcTime == 0 {
			d.fcTime = tEnd
		}
		d.pastFC = true
	}
	if d.beanTemp >= d.params.DryingTemp {
		if d.dryTime == 0 {
			d.dryTime = tEnd
		}
		d.dried = true
	}

	// Evaporation: free after first crack, limited by remaining water
	// before it. Evaporating water steals burner energy from the beans.
	evapMJ := 0.0
	if d.pastFC {
		wloss = (d.water - 0.01*d.coffeeKg) / 10
		d.water = math.Max(d.water-wloss, 0)
		evapMJ = evapHeatMJ * wloss
	} else if d.water > 0 && wloss > 0 {
		wloss = math.Min(wloss, d.water-0.01*d.coffeeKg)
		d.water -= wloss
		evapMJ = evapHeatMJ * wloss
	}

	// Post-first-crack: dry mass burns off and the crack exotherm feeds
	// heat back, growing with temperature past the crack point.
	exoMJ := 0.0
	if d.params.PostFCFactor > 0 && d.pastFC {
		loss := d.coffeeKg * d.params.PostFCFactor / postFCMassFact
		d.coffeeKg = math.Max(d.coffeeKg-loss, 0)
		over := d.beanTemp + 1 - d.params.FirstCrackTemp
		exoMJ = over * over * loss * postFCHeatFact
	}

	batchKg := d.coffeeKg + d.water
	deltaT := 0.0
	if batchKg > 0 {
		deltaT = (d.drumEqSlow - d.beanTemp) * (d.burnerMJ - evapMJ + exoMJ) / batchKg *
			(0.019 + (d.speed-3)*0.0005) * dt
		deltaT = clampf(deltaT, -maxTemp, maxTemp)
	}

	d.drumEqSlow += (d.drumEq - d.drumEqSlow) / 100
	d.beanTemp = clampf(d.beanTemp+deltaT, minTemp, maxTemp)

	lag := (d.beanTemp - d.probeTemp) / d.resp
	d.probeTemp += lag
	if math.IsNaN(d.probeTemp) || math.IsInf(d.probeTemp, 0) {
		d.probeTemp = d.beanTemp
	}

	// turning point: the probe bottoms out and starts reading upward
	if d.probeTemp > d.prevProbe && d.turnTime == 0 {
		d.turnTime = tEnd
	}
	d.prevProbe = d.probeTemp

	if dt > 0 {
		d.ror = clampf(lag/dt*rorCorrection, -50, 50)
	} else {
		d.ror = 0
	}

	rad := stefanBoltzmann * (math.Pow(d.drumEq+273, 4) - math.Pow(d.beanTemp+273, 4))
	d.radiative = clampf(d.radiative+rad, -1e12, 1e12)

	d.lastDt = dt
}

func (d *Drum) Snapshot() sim.Telemetry {
	waterPct := 0.0
	if d.coffeeKg > 0 {
		waterPct = d.water * 100 / d.coffeeKg
	}
	weightPct := 0.0
	if d.chargeKg > 0 {
		weightPct = 100 * (d.coffeeKg + d.water) / d.chargeKg
	}
	return sim.Telemetry{
		BeanTemp:  d.beanTemp,
		DrumTemp:  d.drumTemp,
		WaterPct:  waterPct,
		WeightPct: weightPct,
		RoR:       d.ror,
	}
}

// Events reports milestone timestamps; zero means not reached.
func (d *Drum) Events() Events {
	return Events{
		TurnTime:       d.turnTime,
		DryTime:        d.dryTime,
		FirstCrackTime: d.fcTime,
	}
}

func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
