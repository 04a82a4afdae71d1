package strategy

import (
	"github.com/rxtech-lab/okx-backtest/internal/indicator"
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

const NameTurtle = "turtle"

type TurtleConfig struct {
	EntryWindow   int `yaml:"entry_window" json:"entry_window" validate:"gt=0" jsonschema:"title=Entry Window,minimum=1,default=20"`
	ExitWindow    int `yaml:"exit_window" json:"exit_window" validate:"gt=0" jsonschema:"title=Exit Window,minimum=1,default=10"`
	LegacyOptions `yaml:",inline"`
}

// Turtle buys on a close above the entry-window high and sells on a close
// below the exit-window low.
type Turtle struct {
	config TurtleConfig
}

func NewTurtle() *Turtle {
	return &Turtle{
		config: TurtleConfig{
			EntryWindow:   20,
			ExitWindow:    10,
			LegacyOptions: DefaultLegacyOptions(),
		},
	}
}

func (s *Turtle) Name() string {
	return NameTurtle
}

func (s *Turtle) Initialize(config string) error {
	return parseConfig(s.Name(), config, &s.config)
}

func (s *Turtle) Options() LegacyOptions {
	return s.config.LegacyOptions
}

func (s *Turtle) PrepareData(bars []types.Bar) ([]types.Bar, error) {
	prepared, err := indicator.ApplyAll(bars,
		indicator.NewDonchianWithPeriod(s.config.EntryWindow),
		indicator.NewDonchianWithPeriod(s.config.ExitWindow),
	)
	if err != nil {
		return nil, err
	}

	return indicator.DropIncomplete(prepared, s.columns()...), nil
}

func (s *Turtle) Signal(bar types.Bar) (types.TriState, error) {
	values, err := indicatorValues(s.Name(), bar, s.columns()...)
	if err != nil {
		return types.TriStateHold, err
	}

	entryHigh, exitLow := values[0], values[1]

	switch {
	case bar.Close > entryHigh:
		return types.TriStateBuy, nil
	case bar.Close < exitLow:
		return types.TriStateSell, nil
	default:
		return types.TriStateHold, nil
	}
}

func (s *Turtle) columns() []string {
	return []string{
		indicator.DonchianHighColumn(s.config.EntryWindow),
		indicator.DonchianLowColumn(s.config.ExitWindow),
	}
}
