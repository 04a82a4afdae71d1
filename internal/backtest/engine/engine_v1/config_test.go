package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestEmptyConfig() {
	config := EmptyConfig()

	suite.Equal(0.0, config.InitialBalance)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
	suite.True(errors.HasCode(config.Validate(), errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestDefaultConfig() {
	config := DefaultConfig()

	suite.Equal(10000.0, config.InitialBalance)
	suite.Equal(0.02, config.RiskPerTrade)
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestTestConfig() {
	startTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	config := TestConfig(startTime, endTime)

	suite.Equal(10000.0, config.InitialBalance)
	suite.Equal(startTime, config.StartTime.Unwrap())
	suite.Equal(endTime, config.EndTime.Unwrap())
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestUnmarshalYAML() {
	var config BacktestEngineV1Config

	err := yaml.Unmarshal([]byte(`
initial_balance: 5000
risk_per_trade: 0.01
symbol: ETH-USDT
start_time: 2024-01-01T00:00:00Z
`), &config)
	suite.Require().NoError(err)

	suite.Equal(5000.0, config.InitialBalance)
	suite.Equal(0.01, config.RiskPerTrade)
	suite.Equal("ETH-USDT", config.Symbol)
	suite.True(config.StartTime.IsSome())
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), config.StartTime.Unwrap())
	suite.True(config.EndTime.IsNone())
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLDefaults() {
	var config BacktestEngineV1Config

	suite.Require().NoError(yaml.Unmarshal([]byte(`symbol: BTC-USDT`), &config))
	suite.Equal(DefaultInitialBalance, config.InitialBalance)
	suite.Equal(DefaultRiskPerTrade, config.RiskPerTrade)
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLExplicitZeroIsRejected() {
	var config BacktestEngineV1Config

	suite.Require().NoError(yaml.Unmarshal([]byte(`initial_balance: 0`), &config))
	suite.True(errors.HasCode(config.Validate(), errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestValidate() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(c *BacktestEngineV1Config)
		wantErr bool
	}{
		{"defaults", func(c *BacktestEngineV1Config) {}, false},
		{"risk of one", func(c *BacktestEngineV1Config) { c.RiskPerTrade = 1 }, false},
		{"risk above one", func(c *BacktestEngineV1Config) { c.RiskPerTrade = 1.01 }, true},
		{"negative risk", func(c *BacktestEngineV1Config) { c.RiskPerTrade = -0.1 }, true},
		{"negative balance", func(c *BacktestEngineV1Config) { c.InitialBalance = -5 }, true},
		{"end before start", func(c *BacktestEngineV1Config) {
			*c = TestConfig(start, start.Add(-time.Hour))
		}, true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := DefaultConfig()
			tc.mutate(&config)

			err := config.Validate()
			if tc.wantErr {
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
			} else {
				suite.NoError(err)
			}
		})
	}
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := &BacktestEngineV1Config{}
	schemaJSON, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schemaJSON), &schema))

	suite.Equal("backtest-engine-v1-config", schema["title"])

	properties, ok := schema["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "initial_balance")
	suite.Contains(properties, "risk_per_trade")

	startTime, ok := properties["start_time"].(map[string]any)
	suite.Require().True(ok)
	suite.Equal("date-time", startTime["format"])
}
