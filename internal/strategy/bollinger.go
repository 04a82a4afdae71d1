package strategy

import (
	"github.com/rxtech-lab/okx-backtest/internal/indicator"
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

const NameBollinger = "bollinger"

type BollingerConfig struct {
	Window        int     `yaml:"window" json:"window" validate:"gte=2" jsonschema:"title=Window,minimum=2,default=20"`
	NumStd        float64 `yaml:"num_std" json:"num_std" validate:"gt=0" jsonschema:"title=Standard Deviations,default=2"`
	LegacyOptions `yaml:",inline"`
}

// Bollinger buys when the close falls below the lower band and sells when
// it rises above the upper band.
type Bollinger struct {
	config BollingerConfig
}

func NewBollinger() *Bollinger {
	return &Bollinger{
		config: BollingerConfig{
			Window:        20,
			NumStd:        2,
			LegacyOptions: DefaultLegacyOptions(),
		},
	}
}

func (s *Bollinger) Name() string {
	return NameBollinger
}

func (s *Bollinger) Initialize(config string) error {
	return parseConfig(s.Name(), config, &s.config)
}

func (s *Bollinger) Options() LegacyOptions {
	return s.config.LegacyOptions
}

func (s *Bollinger) PrepareData(bars []types.Bar) ([]types.Bar, error) {
	prepared, err := indicator.ApplyAll(bars, indicator.NewBollingerBandsWith(s.config.Window, s.config.NumStd))
	if err != nil {
		return nil, err
	}

	return indicator.DropIncomplete(prepared, indicator.ColumnBBUpper, indicator.ColumnBBLower), nil
}

func (s *Bollinger) Signal(bar types.Bar) (types.TriState, error) {
	values, err := indicatorValues(s.Name(), bar, indicator.ColumnBBUpper, indicator.ColumnBBLower)
	if err != nil {
		return types.TriStateHold, err
	}

	upper, lower := values[0], values[1]

	switch {
	case bar.Close < lower:
		return types.TriStateBuy, nil
	case bar.Close > upper:
		return types.TriStateSell, nil
	default:
		return types.TriStateHold, nil
	}
}
