package fit

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"

	"github.com/leafgas/photofit/errs"
	"github.com/leafgas/photofit/fvcb"
	"github.com/leafgas/photofit/internal/options"
)

// refPatm is the atmospheric pressure (kPa) at which Ci in µmol mol⁻¹ equals
// Ci in µbar, so no pressure correction is needed.
const refPatm = 100.0

// Config holds the full configuration of a fit. Construct it through options;
// the zero value is not usable.
type Config struct {
	// Method is the initial estimation strategy.
	Method Strategy
	// Tcorrect normalizes fitted Vcmax and Jmax to 25 °C using the peaked
	// Arrhenius coefficients in Constants.
	Tcorrect bool
	// FitTPU adds the TPU limitation and estimates its rate.
	FitTPU bool
	// Gmeso is the mesophyll conductance for the Ci→Cc transform
	// (mol m⁻² s⁻¹); zero disables the transform.
	Gmeso float64
	// Patm is atmospheric pressure in kPa, used to convert Ci from
	// µmol mol⁻¹ to µbar.
	Patm float64
	// CiTransition forces the bilinear regime partition at this Ci;
	// zero selects the partition by minimum residual sum of squares.
	CiTransition float64
	// FixedVcmax, FixedJmax and FixedRd pin parameters instead of
	// estimating them; nil means free.
	FixedVcmax *float64
	FixedJmax  *float64
	FixedRd    *float64
	// Constants are the physiological constants handed to the model.
	Constants fvcb.Constants
	// MaxIterations caps the nonlinear optimizer's major iterations.
	MaxIterations int
	// OptimizerMethod names the gonum optimizer to use
	// (neldermead, lbfgs, gradient, newton).
	OptimizerMethod string
	// CurvePoints is the length of the dense predicted curve attached to
	// results for plotting.
	CurvePoints int
	// Workers bounds batch concurrency; zero or one fits curves serially.
	Workers int
}

func defaultConfig() *Config {
	return &Config{
		Method:          StrategyNonlinear,
		Patm:            refPatm,
		Constants:       fvcb.DefaultConstants(),
		MaxIterations:   500,
		OptimizerMethod: "neldermead",
		CurvePoints:     101,
		Workers:         1,
	}
}

// optimizerFor maps a method name to a gonum optimizer. Nelder-Mead is the
// default: the piecewise objective has gradient discontinuities at regime
// boundaries that derivative-based methods handle less gracefully.
func optimizerFor(name string) (optimize.Method, error) {
	switch name {
	case "", "neldermead", "nelder-mead":
		return &optimize.NelderMead{}, nil
	case "lbfgs":
		return &optimize.LBFGS{}, nil
	case "gradient":
		return &optimize.GradientDescent{}, nil
	case "newton":
		return &optimize.Newton{}, nil
	default:
		return nil, fmt.Errorf("unknown optimizer method: %s", name)
	}
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

// WithMethod sets the initial estimation strategy.
func WithMethod(s Strategy) Option {
	return options.New(func(cfg *Config) error {
		if _, exists := strategyNames[s]; !exists {
			return fmt.Errorf("%w: %d", errs.ErrUnknownStrategy, s)
		}
		cfg.Method = s

		return nil
	})
}

// WithMethodName sets the initial strategy by its configuration name
// ("default", "nonlinear" or "bilinear").
func WithMethodName(name string) Option {
	return options.New(func(cfg *Config) error {
		s := StrategyFromString(name)
		if s == Strategy(-1) {
			return fmt.Errorf("%w: %q", errs.ErrUnknownStrategy, name)
		}
		cfg.Method = s

		return nil
	})
}

// WithTemperatureCorrection enables or disables normalizing fitted rates
// to 25 °C.
func WithTemperatureCorrection(on bool) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Tcorrect = on
	})
}

// WithTPU enables or disables estimating the TPU limitation.
func WithTPU(on bool) Option {
	return options.NoError(func(cfg *Config) {
		cfg.FitTPU = on
	})
}

// WithMesophyllConductance enables the Ci→Cc transform with the given
// mesophyll conductance (mol m⁻² s⁻¹).
func WithMesophyllConductance(gmeso float64) Option {
	return options.New(func(cfg *Config) error {
		if gmeso <= 0 {
			return fmt.Errorf("mesophyll conductance must be positive, got %g", gmeso)
		}
		cfg.Gmeso = gmeso

		return nil
	})
}

// WithPressure sets atmospheric pressure in kPa.
func WithPressure(patm float64) Option {
	return options.New(func(cfg *Config) error {
		if patm <= 0 {
			return fmt.Errorf("atmospheric pressure must be positive, got %g", patm)
		}
		cfg.Patm = patm

		return nil
	})
}

// WithCiTransition forces the bilinear regime partition at the given Ci.
func WithCiTransition(ci float64) Option {
	return options.NoError(func(cfg *Config) {
		cfg.CiTransition = ci
	})
}

// WithFixedVcmax pins Vcmax instead of estimating it.
func WithFixedVcmax(v float64) Option {
	return options.NoError(func(cfg *Config) {
		cfg.FixedVcmax = &v
	})
}

// WithFixedJmax pins Jmax instead of estimating it.
func WithFixedJmax(v float64) Option {
	return options.NoError(func(cfg *Config) {
		cfg.FixedJmax = &v
	})
}

// WithFixedRd pins Rd instead of estimating it.
func WithFixedRd(v float64) Option {
	return options.NoError(func(cfg *Config) {
		cfg.FixedRd = &v
	})
}

// WithConstants replaces the physiological constant set.
func WithConstants(c fvcb.Constants) Option {
	return options.NoError(func(cfg *Config) {
		cfg.Constants = c
	})
}

// WithMaxIterations caps the nonlinear optimizer's major iterations.
func WithMaxIterations(n int) Option {
	return options.New(func(cfg *Config) error {
		if n <= 0 {
			return fmt.Errorf("iteration cap must be positive, got %d", n)
		}
		cfg.MaxIterations = n

		return nil
	})
}

// WithOptimizer selects the gonum optimization method by name.
func WithOptimizer(name string) Option {
	return options.New(func(cfg *Config) error {
		if _, err := optimizerFor(name); err != nil {
			return err
		}
		cfg.OptimizerMethod = name

		return nil
	})
}

// WithWorkers bounds how many curves a batch fits concurrently.
func WithWorkers(n int) Option {
	return options.New(func(cfg *Config) error {
		if n <= 0 {
			return fmt.Errorf("worker count must be positive, got %d", n)
		}
		cfg.Workers = n

		return nil
	})
}

func newConfig(opts ...Option) (*Config, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}
