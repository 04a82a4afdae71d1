package strategy

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// parseConfig decodes YAML over the defaults already held by target and
// validates the result. An empty config keeps the defaults.
func parseConfig[T any](name string, config string, target *T) error {
	if strings.TrimSpace(config) != "" {
		if err := yaml.Unmarshal([]byte(config), target); err != nil {
			return errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to parse %s config", name)
		}
	}

	if err := validate.Struct(target); err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "invalid %s config", name)
	}

	return nil
}

// indicatorValues returns the named columns of bar in order.
func indicatorValues(strategy string, bar types.Bar, columns ...string) ([]float64, error) {
	values := make([]float64, len(columns))

	for i, column := range columns {
		value, ok := bar.Indicator(column)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeMissingIndicator,
				"%s: bar at %s has no %s column, was PrepareData called?", strategy, bar.Time.Format("2006-01-02 15:04:05"), column)
		}

		values[i] = value
	}

	return values, nil
}
