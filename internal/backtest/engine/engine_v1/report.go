package engine

import (
	"math"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/shopspring/decimal"
)

// GenerateReport reduces a trade log and an equity curve into summary
// statistics. An empty trade log yields a zero report that only carries the
// initial and final balances.
func GenerateReport(initialBalance, finalBalance float64, trades []types.TradeRecord, equity []types.EquitySample) types.Report {
	report := types.Report{
		InitialBalance: initialBalance,
		FinalBalance:   finalBalance,
	}

	if len(trades) == 0 {
		return report
	}

	profitSum := decimal.Zero
	lossSum := decimal.Zero
	profitable := 0
	losing := 0

	for _, trade := range trades {
		if !trade.IsClose() {
			continue
		}

		profit := decimal.NewFromFloat(trade.Profit)
		if trade.Profit > 0 {
			profitSum = profitSum.Add(profit)
			profitable++
		} else {
			lossSum = lossSum.Add(profit)
			losing++
		}
	}

	report.TotalTrades = len(trades) / 2
	report.ProfitableTrades = profitable
	report.LosingTrades = losing
	// all records, opens included
	report.WinRate = float64(profitable) / float64(len(trades)) * 100

	if profitable > 0 {
		report.AverageProfit = profitSum.Div(decimal.NewFromInt(int64(profitable))).InexactFloat64()
	}

	if losing > 0 {
		report.AverageLoss = lossSum.Div(decimal.NewFromInt(int64(losing))).InexactFloat64()
	}

	if report.AverageLoss != 0 {
		report.ProfitFactor = math.Abs(report.AverageProfit / report.AverageLoss)
	}

	report.MaxDrawdown = MaxDrawdown(initialBalance, equity)

	if initialBalance != 0 {
		report.TotalReturn = decimal.NewFromFloat(finalBalance).
			Sub(decimal.NewFromFloat(initialBalance)).
			Div(decimal.NewFromFloat(initialBalance)).
			Mul(decimal.NewFromInt(100)).
			InexactFloat64()
	}

	report.TradeHoldingTime = holdingTime(trades)

	return report
}

// MaxDrawdown returns the largest drop from a running peak in percent of that
// peak. The peak starts at initialBalance.
func MaxDrawdown(initialBalance float64, equity []types.EquitySample) float64 {
	peak := initialBalance
	maxDrawdown := 0.0

	for _, sample := range equity {
		if sample.Balance > peak {
			peak = sample.Balance
		}

		if peak <= 0 {
			continue
		}

		drawdown := (peak - sample.Balance) / peak * 100
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}

func holdingTime(trades []types.TradeRecord) types.TradeHoldingTime {
	var result types.TradeHoldingTime

	total := 0
	count := 0

	for _, trade := range trades {
		if !trade.IsClose() {
			continue
		}

		seconds := int(trade.HoldingTime().Seconds())
		if count == 0 || seconds < result.Min {
			result.Min = seconds
		}

		if seconds > result.Max {
			result.Max = seconds
		}

		total += seconds
		count++
	}

	if count > 0 {
		result.Avg = total / count
	}

	return result
}
