package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/okx-backtest/internal/logger"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"go.uber.org/zap"
)

// tradeIDNamespace scopes the name-based trade IDs so they never collide
// with IDs generated elsewhere.
var tradeIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("okx-backtest/trade"))

// BacktestState owns the account balance, the single position slot, the
// trade log and the equity curve of one run. It is not safe for concurrent use.
type BacktestState struct {
	logger   *logger.Logger
	symbol   string
	balance  float64
	position optional.Option[types.Position]
	trades   []types.TradeRecord
	equity   []types.EquitySample
}

func NewBacktestState(logger *logger.Logger, symbol string, initialBalance float64) *BacktestState {
	return &BacktestState{
		logger:   logger,
		symbol:   symbol,
		balance:  initialBalance,
		position: optional.None[types.Position](),
		trades:   nil,
		equity:   nil,
	}
}

// Balance returns the realized account balance.
func (b *BacktestState) Balance() float64 {
	return b.balance
}

// Position returns the open position, if any.
func (b *BacktestState) Position() optional.Option[types.Position] {
	return b.position
}

func (b *BacktestState) HasOpenPosition() bool {
	return b.position.IsSome()
}

// OpenPosition fills the position slot and appends a BUY record.
// The balance is not changed.
func (b *BacktestState) OpenPosition(t time.Time, price, stopLoss, takeProfit, size float64) error {
	if b.position.IsSome() {
		return errors.New(errors.ErrCodePositionAlreadyOpen, "a position is already open")
	}

	b.position = optional.Some(types.Position{
		EntryTime:    t,
		EntryPrice:   price,
		StopLoss:     stopLoss,
		TakeProfit:   takeProfit,
		Size:         size,
		EntryBalance: b.balance,
	})

	b.trades = append(b.trades, types.TradeRecord{
		ID:      b.nextTradeID(),
		Side:    types.PurchaseTypeBuy,
		Time:    t,
		Price:   price,
		Size:    size,
		Balance: b.balance,
	})

	b.logger.Debug("Position opened",
		zap.String("symbol", b.symbol),
		zap.Time("time", t),
		zap.Float64("price", price),
		zap.Float64("stop_loss", stopLoss),
		zap.Float64("take_profit", takeProfit),
		zap.Float64("size", size),
	)

	return nil
}

// ClosePosition realizes the open position at exitPrice, appends a SELL
// record, clears the slot and returns the realized profit.
func (b *BacktestState) ClosePosition(t time.Time, exitPrice float64, reason types.CloseReason) (float64, error) {
	if b.position.IsNone() {
		return 0, errors.New(errors.ErrCodePositionNotFound, "no open position to close")
	}

	position := b.position.Unwrap()
	profit := (exitPrice - position.EntryPrice) * position.Size
	b.balance += profit

	b.trades = append(b.trades, types.TradeRecord{
		ID:         b.nextTradeID(),
		Side:       types.PurchaseTypeSell,
		Time:       t,
		Price:      exitPrice,
		Size:       position.Size,
		Balance:    b.balance,
		EntryTime:  position.EntryTime,
		EntryPrice: position.EntryPrice,
		ExitPrice:  exitPrice,
		Profit:     profit,
		Reason:     reason,
	})
	b.position = optional.None[types.Position]()

	b.logger.Debug("Position closed",
		zap.String("symbol", b.symbol),
		zap.Time("time", t),
		zap.Float64("exit_price", exitPrice),
		zap.Float64("profit", profit),
		zap.Float64("balance", b.balance),
		zap.String("reason", string(reason)),
	)

	return profit, nil
}

// RecordEquity appends the current balance to the equity curve.
func (b *BacktestState) RecordEquity(t time.Time) {
	b.equity = append(b.equity, types.EquitySample{Time: t, Balance: b.balance})
}

// Trades returns a copy of the trade log.
func (b *BacktestState) Trades() []types.TradeRecord {
	trades := make([]types.TradeRecord, len(b.trades))
	copy(trades, b.trades)

	return trades
}

// EquityCurve returns a copy of the equity curve.
func (b *BacktestState) EquityCurve() []types.EquitySample {
	equity := make([]types.EquitySample, len(b.equity))
	copy(equity, b.equity)

	return equity
}

// Reset prepares the state for a new run.
func (b *BacktestState) Reset(symbol string, initialBalance float64) {
	b.symbol = symbol
	b.balance = initialBalance
	b.position = optional.None[types.Position]()
	b.trades = nil
	b.equity = nil
}

func (b *BacktestState) nextTradeID() string {
	name := fmt.Sprintf("%s/%d", b.symbol, len(b.trades))

	return uuid.NewSHA1(tradeIDNamespace, []byte(name)).String()
}

// Write exports the trade log and the equity curve to trades.parquet and
// equity_curve.parquet inside folder and returns both paths.
func (b *BacktestState) Write(folder string) (string, string, error) {
	return WriteRunResults(b.logger, folder, b.trades, b.equity)
}

// WriteRunResults exports trades and equity to trades.parquet and
// equity_curve.parquet inside folder and returns both paths.
func WriteRunResults(log *logger.Logger, folder string, trades []types.TradeRecord, equity []types.EquitySample) (string, string, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create results folder", err)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to open database", err)
	}
	defer db.Close()

	if err := createResultTables(db); err != nil {
		return "", "", err
	}

	if err := insertResults(db, trades, equity); err != nil {
		return "", "", err
	}

	tradesPath := filepath.Join(folder, "trades.parquet")
	equityPath := filepath.Join(folder, "equity_curve.parquet")

	// Squirrel has no COPY support
	_, err = db.Exec(fmt.Sprintf(`COPY (SELECT * FROM trades ORDER BY seq) TO '%s' (FORMAT PARQUET)`, tradesPath))
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to export trades to Parquet", err)
	}

	_, err = db.Exec(fmt.Sprintf(`COPY (SELECT * FROM equity_curve ORDER BY seq) TO '%s' (FORMAT PARQUET)`, equityPath))
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to export equity curve to Parquet", err)
	}

	log.Info("Successfully exported run state to Parquet files",
		zap.String("trades", tradesPath),
		zap.String("equity_curve", equityPath),
	)

	return tradesPath, equityPath, nil
}

func createResultTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE trades (
			seq INTEGER,
			id TEXT,
			side TEXT,
			time TIMESTAMP,
			price DOUBLE,
			size DOUBLE,
			balance DOUBLE,
			entry_time TIMESTAMP,
			entry_price DOUBLE,
			exit_price DOUBLE,
			profit DOUBLE,
			reason TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create trades table", err)
	}

	_, err = db.Exec(`
		CREATE TABLE equity_curve (
			seq INTEGER,
			time TIMESTAMP,
			balance DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create equity curve table", err)
	}

	return nil
}

func insertResults(db *sql.DB, trades []types.TradeRecord, equity []types.EquitySample) error {
	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to begin transaction", err)
	}

	for i, trade := range trades {
		var entryTime sql.NullTime
		if trade.IsClose() {
			entryTime = sql.NullTime{Time: trade.EntryTime, Valid: true}
		}

		_, err := sq.Insert("trades").
			Columns("seq", "id", "side", "time", "price", "size", "balance",
				"entry_time", "entry_price", "exit_price", "profit", "reason").
			Values(i, trade.ID, string(trade.Side), trade.Time, trade.Price, trade.Size, trade.Balance,
				entryTime, trade.EntryPrice, trade.ExitPrice, trade.Profit, string(trade.Reason)).
			RunWith(tx).
			Exec()
		if err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to insert trade", err)
		}
	}

	for i, sample := range equity {
		_, err := sq.Insert("equity_curve").
			Columns("seq", "time", "balance").
			Values(i, sample.Time, sample.Balance).
			RunWith(tx).
			Exec()
		if err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to insert equity sample", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to commit results", err)
	}

	return nil
}

// ReadTrades loads a trades.parquet file written by WriteRunResults.
func ReadTrades(path string) ([]types.TradeRecord, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open database", err)
	}
	defer db.Close()

	rows, err := squirrel.Select("id", "side", "time", "price", "size", "balance",
		"entry_time", "entry_price", "exit_price", "profit", "reason").
		From(fmt.Sprintf("read_parquet('%s')", strings.ReplaceAll(path, "'", "''"))).
		OrderBy("seq").
		RunWith(db).
		Query()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read trades from %s", path)
	}
	defer rows.Close()

	trades := make([]types.TradeRecord, 0)

	for rows.Next() {
		var (
			trade     types.TradeRecord
			side      string
			reason    string
			entryTime sql.NullTime
		)

		if err := rows.Scan(&trade.ID, &side, &trade.Time, &trade.Price, &trade.Size, &trade.Balance,
			&entryTime, &trade.EntryPrice, &trade.ExitPrice, &trade.Profit, &reason); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade", err)
		}

		trade.Side = types.PurchaseType(side)
		trade.Reason = types.CloseReason(reason)
		trade.Time = trade.Time.UTC()

		if entryTime.Valid {
			trade.EntryTime = entryTime.Time.UTC()
		}

		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate trades", err)
	}

	return trades, nil
}
