package indicator

import (
	"math"

	"github.com/rxtech-lab/okx-backtest/internal/types"
)

func closes(bars []types.Bar) []float64 {
	values := make([]float64, len(bars))
	for i, bar := range bars {
		values[i] = bar.Close
	}

	return values
}

func nanSeries(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}

	return values
}

// ewm is an exponentially weighted mean with alpha = 2/(span+1), seeded with
// the first value and without bias adjustment.
func ewm(values []float64, span int) []float64 {
	result := make([]float64, len(values))
	if len(values) == 0 {
		return result
	}

	alpha := 2.0 / float64(span+1)
	result[0] = values[0]

	for i := 1; i < len(values); i++ {
		result[i] = values[i]*alpha + result[i-1]*(1-alpha)
	}

	return result
}

// rollingMean is NaN until a full window of non-NaN values is available.
func rollingMean(values []float64, window int) []float64 {
	result := nanSeries(len(values))

	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		valid := true

		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				valid = false

				break
			}

			sum += values[j]
		}

		if valid {
			result[i] = sum / float64(window)
		}
	}

	return result
}

// rollingStd is the sample standard deviation (n-1 denominator).
func rollingStd(values []float64, window int) []float64 {
	result := nanSeries(len(values))
	if window < 2 {
		return result
	}

	means := rollingMean(values, window)

	for i := window - 1; i < len(values); i++ {
		if math.IsNaN(means[i]) {
			continue
		}

		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - means[i]
			sum += d * d
		}

		result[i] = math.Sqrt(sum / float64(window-1))
	}

	return result
}

// rollingExtreme returns the max (or min) over the window ending at i-lag.
func rollingExtreme(values []float64, window int, lag int, max bool) []float64 {
	result := nanSeries(len(values))

	for i := window - 1 + lag; i < len(values); i++ {
		end := i - lag
		extreme := values[end]

		for j := end - window + 1; j <= end; j++ {
			if (max && values[j] > extreme) || (!max && values[j] < extreme) {
				extreme = values[j]
			}
		}

		result[i] = extreme
	}

	return result
}
