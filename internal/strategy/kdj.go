package strategy

import (
	"github.com/rxtech-lab/okx-backtest/internal/indicator"
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

const NameKDJ = "kdj"

type KDJConfig struct {
	FastK         int `yaml:"fast_k" json:"fast_k" validate:"gt=0" jsonschema:"title=Fast K,minimum=1,default=9"`
	SlowK         int `yaml:"slow_k" json:"slow_k" validate:"gt=0" jsonschema:"title=Slow K,minimum=1,default=3"`
	SlowD         int `yaml:"slow_d" json:"slow_d" validate:"gt=0" jsonschema:"title=Slow D,minimum=1,default=3"`
	LegacyOptions `yaml:",inline"`
}

// KDJ buys when K is above D outside the overbought zone (J < 80) and sells
// when K is below D outside the oversold zone (J > 20).
type KDJ struct {
	config KDJConfig
}

func NewKDJ() *KDJ {
	return &KDJ{
		config: KDJConfig{
			FastK:         9,
			SlowK:         3,
			SlowD:         3,
			LegacyOptions: DefaultLegacyOptions(),
		},
	}
}

func (s *KDJ) Name() string {
	return NameKDJ
}

func (s *KDJ) Initialize(config string) error {
	return parseConfig(s.Name(), config, &s.config)
}

func (s *KDJ) Options() LegacyOptions {
	return s.config.LegacyOptions
}

func (s *KDJ) PrepareData(bars []types.Bar) ([]types.Bar, error) {
	prepared, err := indicator.ApplyAll(bars, indicator.NewKDJWithPeriods(s.config.FastK, s.config.SlowK, s.config.SlowD))
	if err != nil {
		return nil, err
	}

	return indicator.DropIncomplete(prepared, indicator.ColumnKDJK, indicator.ColumnKDJD, indicator.ColumnKDJJ), nil
}

func (s *KDJ) Signal(bar types.Bar) (types.TriState, error) {
	values, err := indicatorValues(s.Name(), bar, indicator.ColumnKDJK, indicator.ColumnKDJD, indicator.ColumnKDJJ)
	if err != nil {
		return types.TriStateHold, err
	}

	k, d, j := values[0], values[1], values[2]

	switch {
	case k > d && j < 80:
		return types.TriStateBuy, nil
	case k < d && j > 20:
		return types.TriStateSell, nil
	default:
		return types.TriStateHold, nil
	}
}
