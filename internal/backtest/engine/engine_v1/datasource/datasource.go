package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

type DataSource interface {
	// Initialize loads the bars stored at path (CSV or Parquet).
	Initialize(path string) error
	// ReadAll yields the bars within [start, end] in ascending time order.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool)
	// Count returns the number of bars within [start, end].
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close closes the data source and releases any resources
	Close() error
}

// LoadBars materializes every bar of the data source within [start, end].
func LoadBars(ds DataSource, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	var bars []types.Bar

	for bar, err := range ds.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}
