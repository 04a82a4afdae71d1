package types

import (
	"maps"
	"time"
)

// Bar is one timestamped OHLC observation, plus any indicator columns
// attached by a preparation pass. A Bar is treated as immutable once produced:
// use WithIndicator to derive a copy carrying an extra column.
type Bar struct {
	Time   time.Time `csv:"time" json:"time" yaml:"time"`
	Symbol string    `csv:"symbol" json:"symbol" yaml:"symbol"`
	Open   float64   `csv:"open" json:"open" yaml:"open"`
	High   float64   `csv:"high" json:"high" yaml:"high"`
	Low    float64   `csv:"low" json:"low" yaml:"low"`
	Close  float64   `csv:"close" json:"close" yaml:"close"`
	Volume float64   `csv:"volume" json:"volume" yaml:"volume"`
	// Indicators holds named indicator values, e.g. "ema_short" or "rsi".
	Indicators map[string]float64 `csv:"-" json:"indicators,omitempty" yaml:"indicators,omitempty"`
}

// Indicator returns the named indicator value and whether it is present.
func (b Bar) Indicator(name string) (float64, bool) {
	if b.Indicators == nil {
		return 0, false
	}

	v, ok := b.Indicators[name]

	return v, ok
}

// WithIndicator returns a copy of the bar with the named indicator set.
// The receiver's indicator map is never modified.
func (b Bar) WithIndicator(name string, value float64) Bar {
	indicators := make(map[string]float64, len(b.Indicators)+1)
	maps.Copy(indicators, b.Indicators)
	indicators[name] = value
	b.Indicators = indicators

	return b
}

// WithIndicators returns a copy of the bar with all the given indicators set.
func (b Bar) WithIndicators(values map[string]float64) Bar {
	indicators := make(map[string]float64, len(b.Indicators)+len(values))
	maps.Copy(indicators, b.Indicators)
	maps.Copy(indicators, values)
	b.Indicators = indicators

	return b
}
