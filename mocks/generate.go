package mocks

//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/okx-backtest/internal/strategy Strategy
//go:generate mockgen -destination=./mock_legacy_strategy.go -package=mocks github.com/rxtech-lab/okx-backtest/internal/strategy LegacyStrategy
//go:generate mockgen -destination=./mock_risk_manager.go -package=mocks github.com/rxtech-lab/okx-backtest/internal/backtest/engine/engine_v1/risk RiskManager
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/okx-backtest/internal/backtest/engine/engine_v1/datasource DataSource
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/okx-backtest/internal/indicator Indicator
//go:generate mockgen -destination=./mock_log.go -package=mocks github.com/rxtech-lab/okx-backtest/internal/log Log
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/okx-backtest/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_market_data_writer.go -package=mocks github.com/rxtech-lab/okx-backtest/pkg/marketdata/writer MarketDataWriter
