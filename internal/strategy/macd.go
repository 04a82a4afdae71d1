package strategy

import (
	"fmt"

	"github.com/rxtech-lab/okx-backtest/internal/indicator"
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

const NameMACD = "macd"

type MACDConfig struct {
	Fast          int     `yaml:"fast" json:"fast" validate:"gt=0" jsonschema:"title=Fast Period,minimum=1,default=12"`
	Slow          int     `yaml:"slow" json:"slow" validate:"gtfield=Fast" jsonschema:"title=Slow Period,minimum=2,default=26"`
	Signal        int     `yaml:"signal" json:"signal" validate:"gt=0" jsonschema:"title=Signal Period,minimum=1,default=9"`
	StopLossPct   float64 `yaml:"stop_loss_pct" json:"stop_loss_pct" validate:"gte=0,lt=1" jsonschema:"title=Stop Loss,default=0.05"`
	TakeProfitPct float64 `yaml:"take_profit_pct" json:"take_profit_pct" validate:"gte=0" jsonschema:"title=Take Profit,default=0.08"`
}

// MACD goes long on a bullish cross above the zero line and exits on a
// bearish cross below it, remembering whether it asked for a position.
type MACD struct {
	config     MACDConfig
	inPosition bool
}

func NewMACD() *MACD {
	return &MACD{
		config: MACDConfig{
			Fast:          12,
			Slow:          26,
			Signal:        9,
			StopLossPct:   0.05,
			TakeProfitPct: 0.08,
		},
	}
}

func (s *MACD) Name() string {
	return NameMACD
}

func (s *MACD) Initialize(config string) error {
	s.inPosition = false

	return parseConfig(s.Name(), config, &s.config)
}

func (s *MACD) PrepareData(bars []types.Bar) ([]types.Bar, error) {
	prepared, err := indicator.ApplyAll(bars, indicator.NewMACDWithPeriods(s.config.Fast, s.config.Slow, s.config.Signal))
	if err != nil {
		return nil, err
	}

	return indicator.DropIncomplete(prepared, indicator.ColumnMACD, indicator.ColumnMACDSignal), nil
}

func (s *MACD) OnData(bar types.Bar) ([]types.Signal, error) {
	values, err := indicatorValues(s.Name(), bar, indicator.ColumnMACD, indicator.ColumnMACDSignal)
	if err != nil {
		return nil, err
	}

	line, signal := values[0], values[1]

	switch {
	case line > signal && line > 0 && !s.inPosition:
		s.inPosition = true

		return []types.Signal{types.NewLongSignal(
			bar.Close,
			bar.Close*(1-s.config.StopLossPct),
			bar.Close*(1+s.config.TakeProfitPct),
			fmt.Sprintf("macd %.4f crossed above signal %.4f", line, signal),
		)}, nil
	case line < signal && line < 0 && s.inPosition:
		s.inPosition = false

		return []types.Signal{types.NewExitSignal(bar.Close, fmt.Sprintf("macd %.4f crossed below signal %.4f", line, signal))}, nil
	default:
		return nil, nil
	}
}
