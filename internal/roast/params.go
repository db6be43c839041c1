package roast

// Params describes one drum roaster and batch. Temperatures are degrees C,
// masses grams or kilograms as noted, drum dimensions millimetres, times
// minutes.
type Params struct {
	BatchGrams     float64 // green charge weight, grams
	Moisture       float64 // water fraction of the charge, 0-1
	BurnerMJ       float64 // burner rating at full power, MJ
	AirTemp        float64 // inlet air temperature at full power
	ChargeTemp     float64 // bean temperature at charge
	PreheatTemp    float64 // drum temperature at charge
	FirstCrackTemp float64 // bean temperature of first crack
	DryingTemp     float64 // end-of-drying (yellowing) temperature
	PostFCFactor   float64 // post-first-crack mass loss factor
	DropTime       float64 // planned roast length, minutes
	SpeedFactor    float64 // relative drum/air factor, 1-5
	Response       float64 // relative drum and probe responsiveness, 1-5
	InitialPower   float64 // power setting at charge, percent
	BeanDiameter   float64 // mm
	BeanDensity    float64 // kg/m^3
	BeanCp         float64 // specific heat, kJ/kgK
	DrumRPM        float64
	DrumDiameter   float64 // mm
	DrumLength     float64 // mm
	DrumEmissivity float64
	BeanEmissivity float64
}

// DefaultParams is a 250 g batch on a small shop roaster, matching the
// classic 12 minute profile.
func DefaultParams() Params {
	return Params{
		BatchGrams:     250,
		Moisture:       0.11,
		BurnerMJ:       5.0,
		AirTemp:        230,
		ChargeTemp:     20,
		PreheatTemp:    180,
		FirstCrackTemp: 196,
		DryingTemp:     150,
		PostFCFactor:   2.0,
		DropTime:       12.0,
		SpeedFactor:    3.0,
		Response:       3.0,
		InitialPower:   90,
		BeanDiameter:   6.0,
		BeanDensity:    1000,
		BeanCp:         1.2,
		DrumRPM:        50,
		DrumDiameter:   150,
		DrumLength:     150,
		DrumEmissivity: 0.25,
		BeanEmissivity: 0.95,
	}
}

func (p Params) Validate() error {
	if p.BatchGrams <= 0 {
		return ErrBatchSize
	}
	if p.Moisture < 0 || p.Moisture >= 1 {
		return ErrMoistureRange
	}
	if p.DropTime <= 0 {
		return ErrDropTime
	}
	if p.InitialPower <= 0 {
		return ErrInitialPower
	}
	if p.BurnerMJ <= 0 {
		return ErrBurnerRating
	}
	// resp = 10 + (3-Response)*3 must stay positive
	if p.Response >= 6 {
		return ErrResponse
	}
	return nil
}
