package types

type IndicatorType string

const (
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeMA             IndicatorType = "ma"
	IndicatorTypeKDJ            IndicatorType = "kdj"
	IndicatorTypeDualThrust     IndicatorType = "dual_thrust"
	IndicatorTypeDonchian       IndicatorType = "donchian"
)
