package strategy

import (
	"fmt"

	"github.com/rxtech-lab/okx-backtest/internal/indicator"
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

const NameRSI = "rsi"

type RSIConfig struct {
	Period        int     `yaml:"period" json:"period" validate:"gt=0" jsonschema:"title=Period,minimum=1,default=14"`
	Overbought    float64 `yaml:"overbought" json:"overbought" validate:"gt=0,lte=100,gtfield=Oversold" jsonschema:"title=Overbought,default=70"`
	Oversold      float64 `yaml:"oversold" json:"oversold" validate:"gte=0" jsonschema:"title=Oversold,default=30"`
	StopLossPct   float64 `yaml:"stop_loss_pct" json:"stop_loss_pct" validate:"gte=0,lt=1" jsonschema:"title=Stop Loss,default=0.05"`
	TakeProfitPct float64 `yaml:"take_profit_pct" json:"take_profit_pct" validate:"gte=0" jsonschema:"title=Take Profit,default=0.1"`
}

// RSI goes long when the RSI drops below the oversold level and exits when
// it rises above the overbought level. It remembers whether it asked for a
// position and only emits the signal matching that memory.
type RSI struct {
	config     RSIConfig
	inPosition bool
}

func NewRSI() *RSI {
	return &RSI{
		config: RSIConfig{
			Period:        14,
			Overbought:    70,
			Oversold:      30,
			StopLossPct:   0.05,
			TakeProfitPct: 0.10,
		},
	}
}

func (s *RSI) Name() string {
	return NameRSI
}

func (s *RSI) Initialize(config string) error {
	s.inPosition = false

	return parseConfig(s.Name(), config, &s.config)
}

func (s *RSI) PrepareData(bars []types.Bar) ([]types.Bar, error) {
	prepared, err := indicator.ApplyAll(bars, indicator.NewRSIWithPeriod(s.config.Period))
	if err != nil {
		return nil, err
	}

	return indicator.DropIncomplete(prepared, indicator.ColumnRSI), nil
}

func (s *RSI) OnData(bar types.Bar) ([]types.Signal, error) {
	values, err := indicatorValues(s.Name(), bar, indicator.ColumnRSI)
	if err != nil {
		return nil, err
	}

	rsi := values[0]

	switch {
	case rsi < s.config.Oversold && !s.inPosition:
		s.inPosition = true

		return []types.Signal{types.NewLongSignal(
			bar.Close,
			bar.Close*(1-s.config.StopLossPct),
			bar.Close*(1+s.config.TakeProfitPct),
			fmt.Sprintf("rsi %.2f below %.2f", rsi, s.config.Oversold),
		)}, nil
	case rsi > s.config.Overbought && s.inPosition:
		s.inPosition = false

		return []types.Signal{types.NewExitSignal(bar.Close, fmt.Sprintf("rsi %.2f above %.2f", rsi, s.config.Overbought))}, nil
	default:
		return nil, nil
	}
}
