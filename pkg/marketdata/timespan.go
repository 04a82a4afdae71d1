package marketdata

import (
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/rxtech-lab/okx-backtest/pkg/marketdata/provider"
)

type Timespan = provider.Timespan

// ParseTimespan checks that s is one of provider.Timespans.
func ParseTimespan(s string) (Timespan, error) {
	for _, timespan := range provider.Timespans {
		if string(timespan) == s {
			return timespan, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval: %s", s)
}
