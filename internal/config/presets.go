package config

func preset(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

var Presets = map[string]*Config{
	// the stock 12 minute city roast
	"classic": preset(func(c *Config) {}),

	"light": preset(func(c *Config) {
		c.Duration = 10.0
		c.Dt = 0.02
		c.Profile = []CurvePoint{
			{TimeSec: 0, Temp: 20},
			{TimeSec: 240, Temp: 149},
			{TimeSec: 480, Temp: 196},
			{TimeSec: 600, Temp: 205},
		}
		c.Gains = GainsConfig{Kp: 2.5, Ki: 0.05, Kd: 10.0}
	}),

	"dark": preset(func(c *Config) {
		c.Duration = 14.0
		c.Dt = 0.028
		c.Profile = []CurvePoint{
			{TimeSec: 0, Temp: 20},
			{TimeSec: 300, Temp: 149},
			{TimeSec: 600, Temp: 204},
			{TimeSec: 780, Temp: 215},
			{TimeSec: 840, Temp: 238},
		}
		c.Gains = GainsConfig{Kp: 1.5, Ki: 0.03, Kd: 6.0}
	}),

	"manual": preset(func(c *Config) {
		c.Controller = "schedule"
	}),

	"big-batch": preset(func(c *Config) {
		c.Roaster.BatchGrams = 1000
		c.Roaster.BurnerMJ = 12.0
		c.Duration = 14.0
		c.Dt = 0.028
	}),
}

// GetPreset returns a copy of the named preset; callers may override
// fields freely without touching the stored preset.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
