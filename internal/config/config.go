// Package config loads the photofit CLI configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leafgas/photofit/dataset"
	"github.com/leafgas/photofit/fit"
	"github.com/leafgas/photofit/fvcb"
)

// DefaultFile is the config file searched for when no path is given.
const DefaultFile = "photofit.yaml"

// Coefficients are the peaked Arrhenius temperature-response coefficients
// applied when temperature correction is enabled. Fields are pointers so a
// partial block overrides only the coefficients it names; absent keys keep
// their defaults.
type Coefficients struct {
	EaV   *float64 `yaml:"eav"`
	EdVC  *float64 `yaml:"edvc"`
	DelsC *float64 `yaml:"delsc"`
	EaJ   *float64 `yaml:"eaj"`
	EdVJ  *float64 `yaml:"edvj"`
	DelsJ *float64 `yaml:"delsj"`
}

// Config is the full CLI configuration.
type Config struct {
	// Method selects the estimation strategy: "default" (nonlinear with
	// bilinear fallback) or "bilinear".
	Method string `yaml:"method"`
	// Tcorrect normalizes fitted rates to 25 °C.
	Tcorrect bool `yaml:"tcorrect"`
	// FitTPU adds the TPU limitation to the model.
	FitTPU bool `yaml:"fit_tpu"`
	// Gmeso enables the mesophyll Ci→Cc transform when positive.
	Gmeso float64 `yaml:"gmeso"`
	// Patm is atmospheric pressure in kPa.
	Patm float64 `yaml:"patm"`
	// Alphag selects the TPU model variant.
	Alphag float64 `yaml:"alphag"`
	// CiTransition forces the bilinear regime partition when positive.
	CiTransition float64 `yaml:"ci_transition"`
	// MaxIterations caps the nonlinear optimizer.
	MaxIterations int `yaml:"max_iterations"`
	// Workers bounds batch concurrency.
	Workers int `yaml:"workers"`
	// VarNames maps quantities to input column names.
	VarNames dataset.VarNames `yaml:"varnames"`
	// Coefficients overrides the temperature-response defaults when present.
	Coefficients *Coefficients `yaml:"coefficients"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Method:        "default",
		Patm:          100,
		MaxIterations: 500,
		Workers:       1,
		VarNames:      dataset.DefaultVarNames(),
	}
}

// Load reads configuration from a file. An explicit path must exist; with an
// empty path the default file is used when present, otherwise defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// constants merges the configured coefficient overrides over the defaults.
func (c *Config) constants() fvcb.Constants {
	constants := fvcb.DefaultConstants()
	constants.Alphag = c.Alphag

	if co := c.Coefficients; co != nil {
		if co.EaV != nil {
			constants.EaV = *co.EaV
		}
		if co.EdVC != nil {
			constants.EdVC = *co.EdVC
		}
		if co.DelsC != nil {
			constants.DelsC = *co.DelsC
		}
		if co.EaJ != nil {
			constants.EaJ = *co.EaJ
		}
		if co.EdVJ != nil {
			constants.EdVJ = *co.EdVJ
		}
		if co.DelsJ != nil {
			constants.DelsJ = *co.DelsJ
		}
	}

	return constants
}

// FitOptions converts the configuration into fit options.
func (c *Config) FitOptions() ([]fit.Option, error) {
	constants := c.constants()

	opts := []fit.Option{
		fit.WithMethodName(c.Method),
		fit.WithTemperatureCorrection(c.Tcorrect),
		fit.WithTPU(c.FitTPU),
		fit.WithConstants(constants),
	}
	if c.Gmeso > 0 {
		opts = append(opts, fit.WithMesophyllConductance(c.Gmeso))
	}
	if c.Patm > 0 {
		opts = append(opts, fit.WithPressure(c.Patm))
	}
	if c.CiTransition > 0 {
		opts = append(opts, fit.WithCiTransition(c.CiTransition))
	}
	if c.MaxIterations > 0 {
		opts = append(opts, fit.WithMaxIterations(c.MaxIterations))
	}
	if c.Workers > 0 {
		opts = append(opts, fit.WithWorkers(c.Workers))
	}

	return opts, nil
}
