package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/physics"
)

const (
	DefaultPoints = 100
	DefaultDx     = 1.0
	DefaultSteps  = 200
	DefaultDt     = 0.01
)

type Config struct {
	Grid       GridConfig         `yaml:"grid"`
	Time       TimeConfig         `yaml:"time"`
	Params     ParamsConfig       `yaml:"params"`
	Particle   ParticleConfig     `yaml:"particle"`
	Background physics.Background `yaml:"background"`
	WarmStart  bool               `yaml:"warm_start"`
}

type GridConfig struct {
	Points int     `yaml:"points"`
	Dx     float64 `yaml:"dx"`
}

type TimeConfig struct {
	Steps int     `yaml:"steps"`
	Dt    float64 `yaml:"dt"`
}

type ParamsConfig struct {
	Alpha      float64 `yaml:"alpha"`
	Beta       float64 `yaml:"beta"`
	Kappa      float64 `yaml:"kappa"`
	Omega      float64 `yaml:"omega"`
	Gamma      float64 `yaml:"gamma"`
	WaveSpeed  float64 `yaml:"wave_speed"`
	Wavenumber float64 `yaml:"wavenumber"`
	RefDensity float64 `yaml:"ref_density"`
	Charge     float64 `yaml:"charge"`
	Mass       float64 `yaml:"mass"`
}

type ParticleConfig struct {
	Position      float64 `yaml:"position"`
	SpeedFraction float64 `yaml:"speed_fraction"` // initial velocity as a fraction of wave_speed
	Width         float64 `yaml:"width"`          // density bump width term
}

func DefaultConfig() *Config {
	p := dynamo.DefaultParams()
	return &Config{
		Grid: GridConfig{Points: DefaultPoints, Dx: DefaultDx},
		Time: TimeConfig{Steps: DefaultSteps, Dt: DefaultDt},
		Params: ParamsConfig{
			Alpha:      p.Alpha,
			Beta:       p.Beta,
			Kappa:      p.Kappa,
			Omega:      p.Omega,
			Gamma:      p.Gamma,
			WaveSpeed:  p.WaveSpeed,
			Wavenumber: p.Wavenumber,
			RefDensity: p.RefDensity,
			Charge:     p.Charge,
			Mass:       p.Mass,
		},
		Particle: ParticleConfig{
			Position:      dynamo.DefaultPosition,
			SpeedFraction: dynamo.DefaultSpeedFraction,
			Width:         dynamo.DefaultWidth,
		},
		Background: physics.DefaultBackground(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields that would otherwise produce a meaningless run.
// Grid and time errors wrap the dynamo sentinels.
func (c *Config) Validate() error {
	if c.Grid.Points < 3 || c.Grid.Dx <= 0 {
		return fmt.Errorf("%w: points=%d dx=%g", dynamo.ErrDegenerateGrid, c.Grid.Points, c.Grid.Dx)
	}
	if c.Time.Dt <= 0 {
		return fmt.Errorf("%w: dt=%g", dynamo.ErrNonPositiveTimeStep, c.Time.Dt)
	}
	if c.Time.Steps < 1 {
		return fmt.Errorf("%w: steps=%d", dynamo.ErrDegenerateGrid, c.Time.Steps)
	}
	if c.Params.WaveSpeed <= 0 {
		return fmt.Errorf("wave_speed must be positive, got %g", c.Params.WaveSpeed)
	}
	if c.Params.RefDensity <= 0 {
		return fmt.Errorf("ref_density must be positive, got %g", c.Params.RefDensity)
	}
	if c.Params.Mass <= 0 {
		return fmt.Errorf("mass must be positive, got %g", c.Params.Mass)
	}
	if c.Particle.Width <= 0 {
		return fmt.Errorf("particle width must be positive, got %g", c.Particle.Width)
	}
	return nil
}

func (c *Config) GetParams() dynamo.Params {
	return dynamo.Params{
		Alpha:      c.Params.Alpha,
		Beta:       c.Params.Beta,
		Kappa:      c.Params.Kappa,
		Omega:      c.Params.Omega,
		Gamma:      c.Params.Gamma,
		WaveSpeed:  c.Params.WaveSpeed,
		Wavenumber: c.Params.Wavenumber,
		RefDensity: c.Params.RefDensity,
		Charge:     c.Params.Charge,
		Mass:       c.Params.Mass,
	}
}

func (c *Config) GetInitial() dynamo.Initial {
	return dynamo.Initial{
		Position:  c.Particle.Position,
		Velocity:  c.Particle.SpeedFraction * c.Params.WaveSpeed,
		Width:     c.Particle.Width,
		WarmStart: c.WarmStart,
	}
}

// Build validates the configuration and returns a seeded state together with
// the parameter record the caller will own. A reset restores that record.
func (c *Config) Build() (*dynamo.State, dynamo.Params, error) {
	if err := c.Validate(); err != nil {
		return nil, dynamo.Params{}, err
	}
	grid, err := dynamo.NewGrid(c.Grid.Points, c.Grid.Dx)
	if err != nil {
		return nil, dynamo.Params{}, err
	}
	axis, err := dynamo.NewTimeAxis(c.Time.Steps, c.Time.Dt)
	if err != nil {
		return nil, dynamo.Params{}, err
	}

	params := c.GetParams()
	st := dynamo.NewState(grid, axis, c.GetInitial(), c.Background.Field(grid, axis))
	st.Defaults = params
	st.Reseed(params.Omega)
	return st, params, nil
}
