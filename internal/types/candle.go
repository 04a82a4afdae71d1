package types

import "time"

// Candle is one exchange kline as downloaded, before it becomes a Bar.
type Candle struct {
	Time   time.Time `json:"time" yaml:"time"`
	Symbol string    `json:"symbol" yaml:"symbol"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	// Volume is in contracts for derivatives and in base currency for spot.
	Volume float64 `json:"volume" yaml:"volume"`
	// VolumeCcy is in base currency for derivatives and in quote currency for spot.
	VolumeCcy float64 `json:"volume_ccy" yaml:"volume_ccy"`
	// VolumeCcyQuote is in quote currency.
	VolumeCcyQuote float64 `json:"volume_ccy_quote" yaml:"volume_ccy_quote"`
	// Confirmed is false while the candle is still forming.
	Confirmed bool `json:"confirm" yaml:"confirm"`
}

// Bar returns the OHLCV part of the candle.
func (c Candle) Bar() Bar {
	return Bar{
		Time:   c.Time,
		Symbol: c.Symbol,
		Open:   c.Open,
		High:   c.High,
		Low:    c.Low,
		Close:  c.Close,
		Volume: c.Volume,
	}
}
