package store

import (
	"time"

	"github.com/rxtech-lab/okx-backtest/internal/types"
)

// RunRecord is the archived summary of one strategy run over one data file.
type RunRecord struct {
	ID               string    `gorm:"primaryKey;size:36"`
	Strategy         string    `gorm:"index;not null"`
	StrategyConfig   string    `gorm:"type:text"`
	Symbol           string    `gorm:"index;not null"`
	DataPath         string    `gorm:"not null"`
	ResultPath       string
	EngineVersion    string    `gorm:"not null"`
	RunAt            time.Time `gorm:"index;not null"`
	InitialBalance   float64   `gorm:"type:decimal(20,8);not null"`
	FinalBalance     float64   `gorm:"type:decimal(20,8);not null"`
	TotalReturn      float64   `gorm:"type:decimal(20,8)"`
	TotalTrades      int       `gorm:"not null"`
	ProfitableTrades int       `gorm:"not null"`
	LosingTrades     int       `gorm:"not null"`
	WinRate          float64   `gorm:"type:decimal(20,8)"`
	ProfitFactor     float64   `gorm:"type:decimal(20,8)"`
	MaxDrawdown      float64   `gorm:"type:decimal(20,8)"`

	Trades []TradeRow `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (RunRecord) TableName() string {
	return "backtest_runs"
}

// TradeRow is one trade record of an archived run.
type TradeRow struct {
	ID         uint      `gorm:"primaryKey"`
	RunID      string    `gorm:"index;size:36;not null"`
	TradeID    string    `gorm:"size:36;not null"`
	Side       string    `gorm:"not null"`
	Time       time.Time `gorm:"index;not null"`
	Price      float64   `gorm:"type:decimal(20,8);not null"`
	Size       float64   `gorm:"type:decimal(20,8);not null"`
	Balance    float64   `gorm:"type:decimal(20,8);not null"`
	EntryTime  *time.Time
	EntryPrice float64 `gorm:"type:decimal(20,8)"`
	ExitPrice  float64 `gorm:"type:decimal(20,8)"`
	Profit     float64 `gorm:"type:decimal(20,8)"`
	Reason     string
}

func (TradeRow) TableName() string {
	return "backtest_trades"
}

// NewRunRecord maps a run result onto its archive rows.
func NewRunRecord(result types.BacktestResult, resultPath string) RunRecord {
	report := result.Report

	record := RunRecord{
		ID:               report.ID,
		Strategy:         report.Strategy.Name,
		StrategyConfig:   report.Strategy.Config,
		Symbol:           report.Symbol,
		DataPath:         report.DataPath,
		ResultPath:       resultPath,
		EngineVersion:    report.EngineVersion,
		RunAt:            report.Timestamp,
		InitialBalance:   report.InitialBalance,
		FinalBalance:     report.FinalBalance,
		TotalReturn:      report.TotalReturn,
		TotalTrades:      report.TotalTrades,
		ProfitableTrades: report.ProfitableTrades,
		LosingTrades:     report.LosingTrades,
		WinRate:          report.WinRate,
		ProfitFactor:     report.ProfitFactor,
		MaxDrawdown:      report.MaxDrawdown,
		Trades:           make([]TradeRow, 0, len(result.Trades)),
	}

	for _, trade := range result.Trades {
		row := TradeRow{
			RunID:      report.ID,
			TradeID:    trade.ID,
			Side:       string(trade.Side),
			Time:       trade.Time,
			Price:      trade.Price,
			Size:       trade.Size,
			Balance:    trade.Balance,
			EntryPrice: trade.EntryPrice,
			ExitPrice:  trade.ExitPrice,
			Profit:     trade.Profit,
			Reason:     string(trade.Reason),
		}

		if trade.IsClose() {
			entryTime := trade.EntryTime
			row.EntryTime = &entryTime
		}

		record.Trades = append(record.Trades, row)
	}

	return record
}
