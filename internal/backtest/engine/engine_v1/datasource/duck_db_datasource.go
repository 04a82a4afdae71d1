package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/okx-backtest/internal/logger"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"go.uber.org/zap"
)

// auxiliaryColumns are exchange columns that are neither OHLC nor indicators.
var auxiliaryColumns = []string{
	"time", "timestamp", "symbol", "open", "high", "low", "close", "volume",
	"volume_ccy", "volume_ccy_quote", "confirm", "volume1", "volume2", "volume3", "f",
}

type DuckDBDataSource struct {
	db               *sql.DB
	logger           *logger.Logger
	sq               squirrel.StatementBuilderType
	indicatorColumns []string
}

// NewDataSource creates a new DuckDB data source backed by the database at
// path (":memory:" for an in-memory database). Bars are loaded by Initialize.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open database", err)
	}

	return &DuckDBDataSource{
		db:               db,
		logger:           logger,
		sq:               squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		indicatorColumns: nil,
	}, nil
}

// Initialize implements DataSource. Parquet files are expected to carry
// time and symbol columns. CSV files may carry an epoch millisecond
// timestamp instead, and the symbol is then taken from the file name
// (BTC-USDT_1H.csv → BTC-USDT). Extra numeric columns become bar indicators.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	_, err := d.db.Exec(`DROP VIEW IF EXISTS market_data; DROP VIEW IF EXISTS raw_bars;`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing views", err)
	}

	var reader string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		reader = fmt.Sprintf("read_parquet('%s')", escapeLiteral(path))
	case ".csv":
		reader = fmt.Sprintf("read_csv_auto('%s', header=true)", escapeLiteral(path))
	default:
		return errors.Newf(errors.ErrCodeBacktestDataPathError, "unsupported data file %s, expected .csv or .parquet", path)
	}

	// Squirrel doesn't support CREATE VIEW
	_, err = d.db.Exec(fmt.Sprintf(`CREATE VIEW raw_bars AS SELECT * FROM %s;`, reader))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read %s", path)
	}

	columns, err := d.describe()
	if err != nil {
		return err
	}

	selectList, indicators, err := buildSelectList(columns, symbolFromPath(path))
	if err != nil {
		return err
	}

	_, err = d.db.Exec(fmt.Sprintf(`CREATE VIEW market_data AS SELECT %s FROM raw_bars;`, strings.Join(selectList, ", ")))
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create market data view", err)
	}

	d.indicatorColumns = indicators

	d.logger.Debug("DuckDB data source ready",
		zap.String("path", path),
		zap.Strings("indicators", indicators),
	)

	return nil
}

// describe returns the lower-cased column names of raw_bars mapped to their DuckDB types.
func (d *DuckDBDataSource) describe() (map[string]string, error) {
	rows, err := d.db.Query(`SELECT column_name, column_type FROM (DESCRIBE raw_bars)`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe bars", err)
	}
	defer rows.Close()

	columns := make(map[string]string)

	for rows.Next() {
		var name, columnType string
		if err := rows.Scan(&name, &columnType); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column", err)
		}

		columns[strings.ToLower(name)] = strings.ToUpper(columnType)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate columns", err)
	}

	return columns, nil
}

func buildSelectList(columns map[string]string, fallbackSymbol string) ([]string, []string, error) {
	var selectList []string

	switch {
	case columns["time"] != "":
		selectList = append(selectList, `CAST("time" AS TIMESTAMP) AS "time"`)
	case isIntegerType(columns["timestamp"]):
		selectList = append(selectList, `epoch_ms(CAST("timestamp" AS BIGINT)) AS "time"`)
	case columns["timestamp"] != "":
		selectList = append(selectList, `CAST("timestamp" AS TIMESTAMP) AS "time"`)
	default:
		return nil, nil, errors.New(errors.ErrCodeDataNotFound, "bars have neither a time nor a timestamp column")
	}

	if columns["symbol"] != "" {
		selectList = append(selectList, `CAST("symbol" AS VARCHAR) AS "symbol"`)
	} else {
		selectList = append(selectList, fmt.Sprintf(`'%s' AS "symbol"`, escapeLiteral(fallbackSymbol)))
	}

	for _, name := range []string{"open", "high", "low", "close"} {
		if columns[name] == "" {
			return nil, nil, errors.Newf(errors.ErrCodeDataNotFound, "bars have no %s column", name)
		}

		selectList = append(selectList, fmt.Sprintf(`CAST("%s" AS DOUBLE) AS "%s"`, name, name))
	}

	switch {
	case columns["volume"] != "":
		selectList = append(selectList, `CAST("volume" AS DOUBLE) AS "volume"`)
	case columns["volume1"] != "":
		selectList = append(selectList, `CAST("volume1" AS DOUBLE) AS "volume"`)
	default:
		selectList = append(selectList, `CAST(0 AS DOUBLE) AS "volume"`)
	}

	var indicators []string

	for name, columnType := range columns {
		if slices.Contains(auxiliaryColumns, name) || !isNumericType(columnType) {
			continue
		}

		indicators = append(indicators, name)
	}

	slices.Sort(indicators)

	for _, name := range indicators {
		selectList = append(selectList, fmt.Sprintf(`CAST("%s" AS DOUBLE) AS "%s"`, name, name))
	}

	return selectList, indicators, nil
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.withRange(d.sq.Select("COUNT(*)").From("market_data"), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		columns := []string{"time", "symbol", "open", "high", "low", "close", "volume"}
		for _, name := range d.indicatorColumns {
			columns = append(columns, fmt.Sprintf(`"%s"`, name))
		}

		query, args, err := d.withRange(d.sq.Select(columns...).From("market_data"), start, end).
			OrderBy("time ASC").
			ToSql()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			bar, err := d.scanBar(rows)
			if err != nil {
				yield(types.Bar{}, err)

				return
			}

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bars", err))
		}
	}
}

func (d *DuckDBDataSource) scanBar(rows *sql.Rows) (types.Bar, error) {
	var bar types.Bar

	indicatorValues := make([]sql.NullFloat64, len(d.indicatorColumns))
	dest := []any{&bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume}

	for i := range indicatorValues {
		dest = append(dest, &indicatorValues[i])
	}

	if err := rows.Scan(dest...); err != nil {
		return types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
	}

	if len(d.indicatorColumns) > 0 {
		bar.Indicators = make(map[string]float64, len(d.indicatorColumns))

		for i, name := range d.indicatorColumns {
			if indicatorValues[i].Valid {
				bar.Indicators[name] = indicatorValues[i].Float64
			}
		}
	}

	return bar, nil
}

func (d *DuckDBDataSource) withRange(query squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		query = query.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		query = query.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return query
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}

func symbolFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.Index(name, "_"); i > 0 {
		return name[:i]
	}

	return name
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func isIntegerType(columnType string) bool {
	switch columnType {
	case "TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT", "UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT":
		return true
	default:
		return false
	}
}

func isNumericType(columnType string) bool {
	return isIntegerType(columnType) ||
		columnType == "DOUBLE" || columnType == "FLOAT" || strings.HasPrefix(columnType, "DECIMAL")
}
