package config

import "sort"

func preset(mod func(c *Config)) *Config {
	c := DefaultConfig()
	mod(c)
	return c
}

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"warm": preset(func(c *Config) {
		c.WarmStart = true
	}),
	"strong": preset(func(c *Config) {
		c.WarmStart = true
		c.Params.Alpha = 0.2
		c.Params.Kappa = 0.5
		c.Params.Gamma = 0.05
	}),
	"edge": preset(func(c *Config) {
		c.WarmStart = true
		c.Particle.Position = 0
	}),
	"long": preset(func(c *Config) {
		c.WarmStart = true
		c.Time.Steps = 2000
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
