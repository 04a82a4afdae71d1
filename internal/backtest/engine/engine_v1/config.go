package engine

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

const (
	DefaultInitialBalance = 10000.0
	DefaultRiskPerTrade   = 0.02
)

type BacktestEngineV1Config struct {
	InitialBalance float64                    `yaml:"initial_balance" json:"initial_balance" validate:"gt=0" jsonschema:"title=Initial Balance,description=Starting account balance in quote currency,exclusiveMinimum=0,default=10000"`
	RiskPerTrade   float64                    `yaml:"risk_per_trade" json:"risk_per_trade" validate:"gt=0,lte=1" jsonschema:"title=Risk Per Trade,description=Fraction of the balance lost when a stop loss is hit,exclusiveMinimum=0,maximum=1,default=0.02"`
	Symbol         string                     `yaml:"symbol" json:"symbol,omitempty" jsonschema:"title=Symbol,description=Instrument id written into the report (e.g. BTC-USDT). Taken from the bars when empty"`
	StartTime      optional.Option[time.Time] `yaml:"start_time" json:"start_time,omitempty" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime        optional.Option[time.Time] `yaml:"end_time" json:"end_time,omitempty" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
}

// UnmarshalYAML fills omitted numeric fields with their defaults.
// An explicit zero is kept so that Validate rejects it.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		InitialBalance *float64   `yaml:"initial_balance"`
		RiskPerTrade   *float64   `yaml:"risk_per_trade"`
		Symbol         string     `yaml:"symbol"`
		StartTime      *time.Time `yaml:"start_time"`
		EndTime        *time.Time `yaml:"end_time"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	*c = DefaultConfig()

	if config.InitialBalance != nil {
		c.InitialBalance = *config.InitialBalance
	}

	if config.RiskPerTrade != nil {
		c.RiskPerTrade = *config.RiskPerTrade
	}

	c.Symbol = config.Symbol

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate checks the numeric bounds and the time window.
func (c BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest configuration", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && !c.EndTime.Unwrap().After(c.StartTime.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "end_time %s must be after start_time %s",
			c.EndTime.Unwrap().Format(time.RFC3339), c.StartTime.Unwrap().Format(time.RFC3339))
	}

	return nil
}

// InWindow reports whether t falls into the configured [start, end] window.
func (c BacktestEngineV1Config) InWindow(t time.Time) bool {
	if c.StartTime.IsSome() && t.Before(c.StartTime.Unwrap()) {
		return false
	}

	if c.EndTime.IsSome() && t.After(c.EndTime.Unwrap()) {
		return false
	}

	return true
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(optional.Option[time.Time]{}) {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns the configuration used when a field is omitted.
func DefaultConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialBalance: DefaultInitialBalance,
		RiskPerTrade:   DefaultRiskPerTrade,
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
	}
}

func TestConfig(startTime time.Time, endTime time.Time) BacktestEngineV1Config {
	config := DefaultConfig()
	config.StartTime = optional.Some(startTime)
	config.EndTime = optional.Some(endTime)

	return config
}

// EmptyConfig returns a zero config. It does not pass Validate.
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		StartTime: optional.None[time.Time](),
		EndTime:   optional.None[time.Time](),
	}
}
