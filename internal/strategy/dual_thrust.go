package strategy

import (
	"github.com/rxtech-lab/okx-backtest/internal/indicator"
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

const NameDualThrust = "dual_thrust"

type DualThrustConfig struct {
	Lookback      int     `yaml:"lookback" json:"lookback" validate:"gt=0" jsonschema:"title=Lookback,minimum=1,default=20"`
	K1            float64 `yaml:"k1" json:"k1" validate:"gt=0" jsonschema:"title=Upper Multiplier,default=0.7"`
	K2            float64 `yaml:"k2" json:"k2" validate:"gt=0" jsonschema:"title=Lower Multiplier,default=0.7"`
	LegacyOptions `yaml:",inline"`
}

// DualThrust buys on a close above the upper band and sells on a close
// below the lower band.
type DualThrust struct {
	config DualThrustConfig
}

func NewDualThrust() *DualThrust {
	return &DualThrust{
		config: DualThrustConfig{
			Lookback:      20,
			K1:            0.7,
			K2:            0.7,
			LegacyOptions: DefaultLegacyOptions(),
		},
	}
}

func (s *DualThrust) Name() string {
	return NameDualThrust
}

func (s *DualThrust) Initialize(config string) error {
	return parseConfig(s.Name(), config, &s.config)
}

func (s *DualThrust) Options() LegacyOptions {
	return s.config.LegacyOptions
}

func (s *DualThrust) PrepareData(bars []types.Bar) ([]types.Bar, error) {
	prepared, err := indicator.ApplyAll(bars, indicator.NewDualThrustWith(s.config.Lookback, s.config.K1, s.config.K2))
	if err != nil {
		return nil, err
	}

	return indicator.DropIncomplete(prepared, indicator.ColumnDualThrustUpper, indicator.ColumnDualThrustLower), nil
}

func (s *DualThrust) Signal(bar types.Bar) (types.TriState, error) {
	values, err := indicatorValues(s.Name(), bar, indicator.ColumnDualThrustUpper, indicator.ColumnDualThrustLower)
	if err != nil {
		return types.TriStateHold, err
	}

	upper, lower := values[0], values[1]

	switch {
	case bar.Close > upper:
		return types.TriStateBuy, nil
	case bar.Close < lower:
		return types.TriStateSell, nil
	default:
		return types.TriStateHold, nil
	}
}
