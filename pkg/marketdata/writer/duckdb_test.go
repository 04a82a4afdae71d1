package writer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

var baseTime = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

func candleAt(hour int, close float64) types.Candle {
	return types.Candle{
		Time:           baseTime.Add(time.Duration(hour) * time.Hour),
		Symbol:         "BTC-USDT",
		Open:           close - 1,
		High:           close + 1,
		Low:            close - 2,
		Close:          close,
		Volume:         10,
		VolumeCcy:      10 * close,
		VolumeCcyQuote: 10 * close,
		Confirmed:      true,
	}
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "test.parquet")
	writer := NewDuckDBWriter(outputPath)

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.True(ok)
	suite.Equal(outputPath, duckWriter.GetOutputPath())
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "no_init.parquet"))

	err := writer.Write(candleAt(0, 100))
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")

	_, err = writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")
}

func (suite *DuckDBWriterTestSuite) TestFinalizeSortsAndDeduplicates() {
	outputPath := filepath.Join(suite.tempDir, "sorted.parquet")
	writer := NewDuckDBWriter(outputPath)
	suite.Require().NoError(writer.Initialize())

	defer writer.Close()

	// newest first, as paginated backward
	for _, candle := range []types.Candle{candleAt(2, 102), candleAt(1, 101), candleAt(1, 101), candleAt(0, 100)} {
		suite.Require().NoError(writer.Write(candle))
	}

	path, err := writer.Finalize()
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)

	defer db.Close()

	rows, err := db.Query(fmt.Sprintf("SELECT time, symbol, close, confirm FROM read_parquet('%s')", outputPath))
	suite.Require().NoError(err)

	defer rows.Close()

	var closes []float64

	for rows.Next() {
		var (
			ts      time.Time
			symbol  string
			close   float64
			confirm bool
		)

		suite.Require().NoError(rows.Scan(&ts, &symbol, &close, &confirm))
		suite.Equal("BTC-USDT", symbol)
		suite.True(confirm)

		closes = append(closes, close)
	}

	suite.Equal([]float64{100, 101, 102}, closes)
}

func (suite *DuckDBWriterTestSuite) TestDoubleFinalize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "double.parquet"))
	suite.Require().NoError(writer.Initialize())

	defer writer.Close()

	suite.Require().NoError(writer.Write(candleAt(0, 100)))

	_, err := writer.Finalize()
	suite.NoError(err)

	_, err = writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")
}

func (suite *DuckDBWriterTestSuite) TestCloseClearsState() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "close.parquet"))
	suite.Require().NoError(writer.Initialize())

	suite.NoError(writer.Close())
	suite.NoError(writer.Close())

	duckWriter := writer.(*DuckDBWriter)
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)

	err := writer.Write(candleAt(0, 100))
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestFinalizeExportError() {
	writer := NewDuckDBWriter("/nonexistent/directory/test.parquet")
	suite.Require().NoError(writer.Initialize())

	defer writer.Close()

	suite.Require().NoError(writer.Write(candleAt(0, 100)))

	_, err := writer.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "failed to export to Parquet")

	_, statErr := os.Stat("/nonexistent/directory/test.parquet")
	suite.True(os.IsNotExist(statErr))
}
