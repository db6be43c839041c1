package roast

import (
	"errors"
	"math"
	"testing"
)

const testDt = 0.024 // 12 minutes over 500 steps

func runAt(d *Drum, power float64, steps int) {
	for i := 0; i < steps; i++ {
		d.Advance(power, float64(i)*testDt, testDt)
	}
}

func TestNewDrumValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		want   error
	}{
		{"zero batch", func(p *Params) { p.BatchGrams = 0 }, ErrBatchSize},
		{"negative moisture", func(p *Params) { p.Moisture = -0.1 }, ErrMoistureRange},
		{"moisture of one", func(p *Params) { p.Moisture = 1.0 }, ErrMoistureRange},
		{"zero drop time", func(p *Params) { p.DropTime = 0 }, ErrDropTime},
		{"zero initial power", func(p *Params) { p.InitialPower = 0 }, ErrInitialPower},
		{"zero burner", func(p *Params) { p.BurnerMJ = 0 }, ErrBurnerRating},
		{"runaway response", func(p *Params) { p.Response = 7 }, ErrResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams()
			tt.mutate(&params)
			if _, err := NewDrum(params); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := NewDrum(DefaultParams()); err != nil {
		t.Errorf("default params should validate, got %v", err)
	}
}

func TestDrumHeatsUnderPower(t *testing.T) {
	d, err := NewDrum(DefaultParams())
	if err != nil {
		t.Fatalf("new drum: %v", err)
	}

	runAt(d, 90, 200)

	tel := d.Snapshot()
	if tel.BeanTemp <= DefaultParams().ChargeTemp {
		t.Errorf("bean temp should rise under power, got %f", tel.BeanTemp)
	}
	if d.Measurement() <= DefaultParams().ChargeTemp {
		t.Errorf("probe should read above charge temp, got %f", d.Measurement())
	}
}

func TestDrumTurningPoint(t *testing.T) {
	// the probe starts at drum preheat, dips toward the cold beans, then
	// turns upward once the batch heats
	d, err := NewDrum(DefaultParams())
	if err != nil {
		t.Fatalf("new drum: %v", err)
	}

	start := d.Measurement()
	runAt(d, 90, 20)
	if d.Measurement() >= start {
		t.Errorf("probe should dip after charge: start %f, now %f", start, d.Measurement())
	}

	runAt(d, 90, 480)
	ev := d.Events()
	if ev.TurnTime == 0 {
		t.Error("turning point never recorded")
	}
	if d.Measurement() <= start {
		t.Errorf("probe should recover past preheat by drop, got %f", d.Measurement())
	}
}

func TestDrumMilestoneOrdering(t *testing.T) {
	d, err := NewDrum(DefaultParams())
	if err != nil {
		t.Fatalf("new drum: %v", err)
	}

	runAt(d, 100, 500)

	ev := d.Events()
	if ev.DryTime == 0 {
		t.Fatal("drying never reached at full power")
	}
	if ev.FirstCrackTime == 0 {
		t.Fatal("first crack never reached at full power")
	}
	if ev.DryTime >= ev.FirstCrackTime {
		t.Errorf("drying (%f) should precede first crack (%f)", ev.DryTime, ev.FirstCrackTime)
	}
}

func TestDrumLosesWeight(t *testing.T) {
	d, err := NewDrum(DefaultParams())
	if err != nil {
		t.Fatalf("new drum: %v", err)
	}

	runAt(d, 100, 500)

	tel := d.Snapshot()
	if tel.WeightPct >= 100 {
		t.Errorf("batch should lose weight over a full roast, got %.2f%%", tel.WeightPct)
	}
	if tel.WaterPct >= DefaultParams().Moisture*100 {
		t.Errorf("water should evaporate, got %.2f%%", tel.WaterPct)
	}
}

func TestDrumDeterminism(t *testing.T) {
	a, _ := NewDrum(DefaultParams())
	b, _ := NewDrum(DefaultParams())

	for i := 0; i < 300; i++ {
		power := 50 + 40*math.Sin(float64(i)/20)
		t_ := float64(i) * testDt
		a.Advance(power, t_, testDt)
		b.Advance(power, t_, testDt)
		if a.Measurement() != b.Measurement() {
			t.Fatalf("divergence at step %d: %f vs %f", i, a.Measurement(), b.Measurement())
		}
	}
}

func TestDrumTemperatureClamped(t *testing.T) {
	params := DefaultParams()
	params.BurnerMJ = 5000
	params.AirTemp = 900

	d, err := NewDrum(params)
	if err != nil {
		t.Fatalf("new drum: %v", err)
	}

	runAt(d, 100, 2000)

	tel := d.Snapshot()
	if tel.BeanTemp > maxTemp || tel.BeanTemp < minTemp {
		t.Errorf("bean temp escaped clamp range: %f", tel.BeanTemp)
	}
	if math.IsNaN(d.Measurement()) || math.IsInf(d.Measurement(), 0) {
		t.Errorf("probe went non-finite: %f", d.Measurement())
	}
}

func TestDrumZeroDtTick(t *testing.T) {
	d, err := NewDrum(DefaultParams())
	if err != nil {
		t.Fatalf("new drum: %v", err)
	}

	runAt(d, 90, 10)
	before := d.Measurement()

	d.Advance(90, 10*testDt, 0)

	if math.IsNaN(d.Measurement()) {
		t.Error("zero-length tick produced NaN")
	}
	if d.Snapshot().RoR != 0 {
		t.Errorf("zero-length tick should report zero RoR, got %f", d.Snapshot().RoR)
	}
	_ = before
}

func TestSummaryPhaseRatios(t *testing.T) {
	d, err := NewDrum(DefaultParams())
	if err != nil {
		t.Fatalf("new drum: %v", err)
	}

	runAt(d, 100, 500)

	s := d.Summary()
	if s.YellowPct <= 0 || s.BrownPct <= 0 {
		t.Fatalf("expected phase ratios after a full roast: %+v", s)
	}
	total := s.YellowPct + s.BrownPct + s.DevPct
	if math.Abs(total-100) > 1e-6 {
		t.Errorf("phase ratios should sum to 100, got %f", total)
	}
	if s.BeanCount <= 0 {
		t.Error("expected a positive bean count")
	}
	if s.BurnerEnergyMJ <= 0 {
		t.Error("expected positive burner energy")
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		minutes  float64
		expected string
	}{
		{0, "-"},
		{-1, "-"},
		{4.5, "4m:30s"},
		{4 + 50.0/60, "4m:50s"},
		{12, "12m:00s"},
		{0.9999, "1m:00s"},
	}

	for _, tt := range tests {
		if got := FormatClock(tt.minutes); got != tt.expected {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.minutes, got, tt.expected)
		}
	}
}
