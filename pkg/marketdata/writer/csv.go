package writer

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

// CSVHeader is the column order of files written by CSVWriter. The
// timestamp is in epoch milliseconds, as returned by the exchange.
var CSVHeader = []string{
	"timestamp", "open", "high", "low", "close", "volume", "volume_ccy", "volume_ccy_quote", "confirm",
}

// CSVWriter collects candles in memory and writes them to a CSV file on Finalize.
type CSVWriter struct {
	outputPath string
	candles    map[int64]types.Candle
}

// NewCSVWriter creates a writer producing the CSV file at outputPath.
func NewCSVWriter(outputPath string) MarketDataWriter {
	return &CSVWriter{
		outputPath: outputPath,
	}
}

func (w *CSVWriter) Initialize() error {
	w.candles = make(map[int64]types.Candle)

	return nil
}

// Write keeps the candle, replacing any earlier candle with the same timestamp.
func (w *CSVWriter) Write(candle types.Candle) error {
	if w.candles == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	w.candles[candle.Time.UnixMilli()] = candle

	return nil
}

func (w *CSVWriter) Finalize() (string, error) {
	if w.candles == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	timestamps := make([]int64, 0, len(w.candles))
	for ts := range w.candles {
		timestamps = append(timestamps, ts)
	}

	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	file, err := os.Create(w.outputPath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create CSV file", err)
	}
	defer file.Close()

	out := csv.NewWriter(file)
	if err := out.Write(CSVHeader); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write CSV header", err)
	}

	for _, ts := range timestamps {
		candle := w.candles[ts]
		confirm := "0"

		if candle.Confirmed {
			confirm = "1"
		}

		record := []string{
			strconv.FormatInt(ts, 10),
			formatFloat(candle.Open),
			formatFloat(candle.High),
			formatFloat(candle.Low),
			formatFloat(candle.Close),
			formatFloat(candle.Volume),
			formatFloat(candle.VolumeCcy),
			formatFloat(candle.VolumeCcyQuote),
			confirm,
		}

		if err := out.Write(record); err != nil {
			return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write CSV record", err)
		}
	}

	out.Flush()

	if err := out.Error(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to flush CSV file", err)
	}

	return w.outputPath, nil
}

func (w *CSVWriter) Close() error {
	w.candles = nil

	return nil
}

func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
