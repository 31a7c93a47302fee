package reinforcement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	. "gridmdp/grid_world"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ScenarioKind is the only outer config kind understood by FromYaml.
const ScenarioKind = "scenario"

// Training defaults, used when the config omits them.
const (
	DefaultThreshold = 1e-4
	DefaultMaxSweeps = 1000
)

// ErrConfigKind is returned for a config file of some other kind.
var ErrConfigKind = errors.New("unsupported config kind")

// OuterConfig is the envelope of every config file: a kind, and its definition.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// ScenarioConfig describes a grid world and how to train on it.
// Keys are snake_case since viper lower-cases everything it reads.
type ScenarioConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Gamma    float64 `yaml:"gamma"`
	MoveCost float64 `yaml:"move_cost"`
	P1       float64 `yaml:"p1"`
	P2       float64 `yaml:"p2"`
	P3       float64 `yaml:"p3"`
	// P4 is derived from the others when omitted. When normalizing, an omitted P4 takes
	// only the probability the others leave unassigned, if any.
	P4 *float64 `yaml:"p4"`
	// Normalize rescales the probabilities to sum to one instead of rejecting them.
	Normalize bool           `yaml:"normalize"`
	Cells     []CellConfig   `yaml:"cells"`
	Training  TrainingConfig `yaml:"training"`
}

// CellConfig overrides the default Normal(0) cell at X,Y.
type CellConfig struct {
	Kind     string   `yaml:"kind"`
	Value    *float64 `yaml:"value"`
	MoveCost *float64 `yaml:"move_cost"`
	X        int      `yaml:"x"`
	Y        int      `yaml:"y"`
}

// TrainingConfig holds the convergence loop's parameters.
type TrainingConfig struct {
	// Threshold is the sweep error below which the values are considered converged.
	Threshold float64 `yaml:"threshold"`
	// MaxSweeps bounds the number of sweeps whether or not the values converge.
	MaxSweeps int `yaml:"max_sweeps"`
	// Pace is an optional minimum duration between sweeps, e.g. "200ms", for watching progress.
	Pace string `yaml:"pace"`
	// Deadline is an optional duration after which training is abandoned, e.g. "10s".
	Deadline string `yaml:"deadline"`
}

func (cfg *TrainingConfig) GetThresholdOrDefault() float64 {
	if cfg.Threshold > 0 {
		return cfg.Threshold
	}
	return DefaultThreshold
}

func (cfg *TrainingConfig) GetMaxSweepsOrDefault() int {
	if cfg.MaxSweeps > 0 {
		return cfg.MaxSweeps
	}
	return DefaultMaxSweeps
}

// PaceDuration parses Pace; no pace yields zero.
func (cfg *TrainingConfig) PaceDuration() (time.Duration, error) {
	if cfg.Pace == "" {
		return 0, nil
	}
	pace, err := time.ParseDuration(cfg.Pace)
	if err != nil {
		return 0, fmt.Errorf("pace: %w", err)
	}
	return pace, nil
}

// WithTrainingDeadline returns a context extended by the training deadline, if one is specified.
func (cfg *TrainingConfig) WithTrainingDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if cfg.Deadline != "" {
		duration, err := time.ParseDuration(cfg.Deadline)
		if err != nil {
			return nil, nil, fmt.Errorf("deadline: %w", err)
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// Params returns the MDP parameters described by the config, deriving P4 if needed.
func (cfg *ScenarioConfig) Params() Params {
	params := Params{
		Gamma:    cfg.Gamma,
		MoveCost: cfg.MoveCost,
		P1:       cfg.P1,
		P2:       cfg.P2,
		P3:       cfg.P3,
	}
	switch {
	case cfg.P4 != nil:
		params.P4 = *cfg.P4
	case cfg.Normalize:
		// Only the mass left over by the others; an excess is rescaled away below.
		params.P4 = math.Max(0, 1-cfg.P1-cfg.P2-cfg.P3)
	default:
		params.P4 = DeriveP4(cfg.P1, cfg.P2, cfg.P3)
	}
	if cfg.Normalize {
		params = params.Normalized()
	}
	return params
}

// Cell converts the config into a grid cell.
func (cc *CellConfig) Cell() (Cell, error) {
	kind, err := ParseKind(cc.Kind)
	if err != nil {
		return Cell{}, fmt.Errorf("%w: cell (%d,%d): %w", ErrMalformedConfig, cc.X, cc.Y, err)
	}

	contradiction := func(reason string) error {
		return fmt.Errorf("%w: %w: %v cell at (%d,%d) %s",
			ErrMalformedConfig, ErrContradiction, kind, cc.X, cc.Y, reason)
	}
	if kind != SPECIAL && cc.MoveCost != nil {
		return Cell{}, contradiction("has a move cost")
	}

	value := 0.0
	if cc.Value != nil {
		value = *cc.Value
	}

	switch kind {
	case PROHIBITED:
		if cc.Value != nil {
			return Cell{}, contradiction("has a value")
		}
		return Prohibited(), nil
	case START:
		return Start(value), nil
	case TERMINAL:
		if cc.Value == nil {
			return Cell{}, contradiction("has no value")
		}
		return Terminal(value), nil
	case SPECIAL:
		if cc.MoveCost == nil {
			return Cell{}, contradiction("has no move cost")
		}
		return Special(value, *cc.MoveCost), nil
	default:
		return Normal(value), nil
	}
}

// Builder returns a builder populated from the config.
func (cfg *ScenarioConfig) Builder() (*Builder, error) {
	builder := NewBuilder(cfg.Width, cfg.Height).WithParams(cfg.Params())
	for i := range cfg.Cells {
		c, err := cfg.Cells[i].Cell()
		if err != nil {
			return nil, err
		}
		builder.WithCell(c, cfg.Cells[i].X, cfg.Cells[i].Y)
	}
	return builder, nil
}

// Build returns a solver for the scenario.
func (cfg *ScenarioConfig) Build() (*Solver, error) {
	builder, err := cfg.Builder()
	if err != nil {
		return nil, err
	}
	return builder.Build()
}

// FromYaml reads a scenario config. The file is an OuterConfig whose def is the scenario:
//
//	kind: scenario
//	def:
//	  width: 4
//	  ...
func FromYaml(path string) (*ScenarioConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}
	if outerConfig.Kind != ScenarioKind {
		return nil, fmt.Errorf("%w: %w: %q", ErrMalformedConfig, ErrConfigKind, outerConfig.Kind)
	}

	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := &ScenarioConfig{}
	if err = yaml.Unmarshal(spec, innerConfig); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedConfig, err)
	}

	return innerConfig, nil
}
