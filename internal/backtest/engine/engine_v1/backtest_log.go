package engine

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/okx-backtest/internal/log"
	"github.com/rxtech-lab/okx-backtest/internal/logger"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"go.uber.org/zap"
)

const signalsFileName = "signals.parquet"

// BacktestLog is the signal journal of a run, kept in an in-memory DuckDB
// table so it can be exported to Parquet next to the trades.
type BacktestLog struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewBacktestLog(logger *logger.Logger) (*BacktestLog, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to connect to database", err)
	}

	journal := &BacktestLog{
		logger: logger,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := journal.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return journal, nil
}

// Log appends one entry. The kind and reason fields get their own columns.
func (l *BacktestLog) Log(entry log.LogEntry) error {
	if l == nil || l.db == nil {
		return errors.New(errors.ErrCodeResultsWriteFailed, "signal journal is closed")
	}

	var fieldsJSON sql.NullString

	if len(entry.Fields) > 0 {
		fieldsBytes, err := json.Marshal(entry.Fields)
		if err != nil {
			return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to marshal fields to JSON", err)
		}

		fieldsJSON = sql.NullString{String: string(fieldsBytes), Valid: true}
	}

	_, err := l.sq.
		Insert("signals").
		Columns("id", "timestamp", "symbol", "strategy", "level", "kind", "reason", "message", "fields").
		Values(squirrel.Expr("nextval('signal_id_seq')"), entry.Timestamp, entry.Symbol, entry.Strategy,
			string(entry.Level), entry.Fields["kind"], entry.Fields["reason"], entry.Message, fieldsJSON).
		RunWith(l.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to insert journal entry", err)
	}

	return nil
}

// GetLogs returns the entries in insertion order.
func (l *BacktestLog) GetLogs() ([]log.LogEntry, error) {
	if l == nil || l.db == nil {
		return nil, errors.New(errors.ErrCodeQueryFailed, "signal journal is closed")
	}

	rows, err := l.sq.
		Select("timestamp", "symbol", "strategy", "level", "message", "fields").
		From("signals").
		OrderBy("id ASC").
		RunWith(l.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query journal", err)
	}
	defer rows.Close()

	var entries []log.LogEntry

	for rows.Next() {
		var (
			entry      log.LogEntry
			level      string
			fieldsJSON sql.NullString
		)

		if err := rows.Scan(&entry.Timestamp, &entry.Symbol, &entry.Strategy, &level, &entry.Message, &fieldsJSON); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan journal entry", err)
		}

		entry.Timestamp = entry.Timestamp.UTC()
		entry.Level = types.LogLevel(level)

		if fieldsJSON.Valid && fieldsJSON.String != "" {
			if err := json.Unmarshal([]byte(fieldsJSON.String), &entry.Fields); err != nil {
				return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to unmarshal fields from JSON", err)
			}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating journal", err)
	}

	return entries, nil
}

// Count returns the number of journal entries per signal kind.
func (l *BacktestLog) Count() (map[types.SignalKind]int, error) {
	if l == nil || l.db == nil {
		return nil, errors.New(errors.ErrCodeQueryFailed, "signal journal is closed")
	}

	rows, err := l.sq.
		Select("kind", "COUNT(*)").
		From("signals").
		GroupBy("kind").
		RunWith(l.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count journal entries", err)
	}
	defer rows.Close()

	counts := make(map[types.SignalKind]int)

	for rows.Next() {
		var (
			kind  sql.NullString
			count int
		)

		if err := rows.Scan(&kind, &count); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan journal count", err)
		}

		counts[types.SignalKind(kind.String)] = count
	}

	return counts, rows.Err()
}

// Write exports the journal to signals.parquet in folder and returns the path.
func (l *BacktestLog) Write(folder string) (string, error) {
	if l == nil || l.db == nil {
		return "", errors.New(errors.ErrCodeResultsWriteFailed, "signal journal is closed")
	}

	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create directory", err)
	}

	path := filepath.Join(folder, signalsFileName)

	_, err := l.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM signals ORDER BY id) TO '%s' (FORMAT PARQUET)`, path))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to export journal to Parquet", err)
	}

	l.logger.Info("Successfully exported signal journal to Parquet file",
		zap.String("signals", path),
	)

	return path, nil
}

// Cleanup empties the journal for the next run.
func (l *BacktestLog) Cleanup() error {
	if l == nil || l.db == nil {
		return errors.New(errors.ErrCodeResultsWriteFailed, "signal journal is closed")
	}

	_, err := l.db.Exec(`
		DROP TABLE IF EXISTS signals;
		DROP SEQUENCE IF EXISTS signal_id_seq;
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to cleanup journal", err)
	}

	return l.initialize()
}

func (l *BacktestLog) Close() error {
	if l == nil || l.db == nil {
		return nil
	}

	err := l.db.Close()
	l.db = nil

	return err
}

func (l *BacktestLog) initialize() error {
	_, err := l.db.Exec(`CREATE SEQUENCE IF NOT EXISTS signal_id_seq`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create sequence", err)
	}

	_, err = l.db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			id INTEGER PRIMARY KEY,
			timestamp TIMESTAMP,
			symbol TEXT,
			strategy TEXT,
			level TEXT,
			kind TEXT,
			reason TEXT,
			message TEXT,
			fields TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create signals table", err)
	}

	return nil
}
