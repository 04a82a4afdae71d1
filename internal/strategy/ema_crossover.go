package strategy

import (
	"github.com/rxtech-lab/okx-backtest/internal/indicator"
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

const NameEMACrossover = "ema_crossover"

type EMACrossoverConfig struct {
	ShortPeriod   int `yaml:"short_period" json:"short_period" validate:"gt=0" jsonschema:"title=Short Period,minimum=1,default=10"`
	LongPeriod    int `yaml:"long_period" json:"long_period" validate:"gtfield=ShortPeriod" jsonschema:"title=Long Period,minimum=2,default=50"`
	LegacyOptions `yaml:",inline"`
}

// EMACrossover buys while the short EMA is above the long EMA and sells
// while it is below.
type EMACrossover struct {
	config EMACrossoverConfig
}

func NewEMACrossover() *EMACrossover {
	return &EMACrossover{
		config: EMACrossoverConfig{
			ShortPeriod:   10,
			LongPeriod:    50,
			LegacyOptions: DefaultLegacyOptions(),
		},
	}
}

func (s *EMACrossover) Name() string {
	return NameEMACrossover
}

func (s *EMACrossover) Initialize(config string) error {
	return parseConfig(s.Name(), config, &s.config)
}

func (s *EMACrossover) Options() LegacyOptions {
	return s.config.LegacyOptions
}

func (s *EMACrossover) PrepareData(bars []types.Bar) ([]types.Bar, error) {
	prepared, err := indicator.ApplyAll(bars,
		indicator.NewEMAWithPeriod(s.config.ShortPeriod),
		indicator.NewEMAWithPeriod(s.config.LongPeriod),
	)
	if err != nil {
		return nil, err
	}

	return indicator.DropIncomplete(prepared, s.columns()...), nil
}

func (s *EMACrossover) Signal(bar types.Bar) (types.TriState, error) {
	values, err := indicatorValues(s.Name(), bar, s.columns()...)
	if err != nil {
		return types.TriStateHold, err
	}

	short, long := values[0], values[1]

	switch {
	case short > long:
		return types.TriStateBuy, nil
	case short < long:
		return types.TriStateSell, nil
	default:
		return types.TriStateHold, nil
	}
}

func (s *EMACrossover) columns() []string {
	return []string{indicator.EMAColumn(s.config.ShortPeriod), indicator.EMAColumn(s.config.LongPeriod)}
}
