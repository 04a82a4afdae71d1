package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

// runItem implements list.Item for a run.
type runItem struct {
	run RunEntry
}

func (i runItem) Title() string {
	title := fmt.Sprintf("%s · %s", i.run.Report.Strategy.Name, i.run.Report.Symbol)
	if i.run.Incompatible != nil {
		title += " (incompatible)"
	}

	return title
}

func (i runItem) Description() string {
	report := i.run.Report

	return fmt.Sprintf("return %s | trades %d | win rate %.2f%% | %s",
		FormatSigned(report.TotalReturn, "%.2f%%"), report.TotalTrades, report.WinRate, filepath.Base(i.run.Folder))
}

func (i runItem) FilterValue() string { return i.run.Report.Strategy.Name }

func runItems(runs []RunEntry) []list.Item {
	items := make([]list.Item, len(runs))
	for i, run := range runs {
		items[i] = runItem{run: run}
	}

	return items
}

func NewRunList(runs []RunEntry) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(runItems(runs), delegate, 0, 0)
	l.Title = "Backtest Runs"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

func NewFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "rsi,BTC-USDT"
	ti.CharLimit = 200
	ti.Width = 50
	ti.Prompt = "> "

	return ti
}

func NewTradesTable() table.Model {
	columns := []table.Column{
		{Title: "Side", Width: 6},
		{Title: "Time", Width: 17},
		{Title: "Price", Width: 12},
		{Title: "Size", Width: 12},
		{Title: "Profit", Width: 14},
		{Title: "Balance", Width: 14},
		{Title: "Reason", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateTradeRows fills the table with one row per trade record.
func UpdateTradeRows(t table.Model, trades []types.TradeRecord) table.Model {
	rows := make([]table.Row, 0, len(trades))

	for _, trade := range trades {
		profit := ""
		if trade.IsClose() {
			profit = FormatSigned(trade.Profit, "%.2f")
		}

		rows = append(rows, table.Row{
			string(trade.Side),
			trade.Time.UTC().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.4f", trade.Price),
			fmt.Sprintf("%.6f", trade.Size),
			profit,
			fmt.Sprintf("%.2f", trade.Balance),
			string(trade.Reason),
		})
	}

	t.SetRows(rows)

	return t
}

// RenderSummary renders the headline numbers of a report.
func RenderSummary(report types.Report) string {
	return fmt.Sprintf(
		"Balance   %.2f → %.2f (%s)\n"+
			"Trades    %d (%d profitable, %d losing, win rate %.2f%%)\n"+
			"Average   profit %.2f | loss %.2f | profit factor %.2f\n"+
			"Drawdown  %.2f%%\n"+
			"Holding   min %s | max %s | avg %s",
		report.InitialBalance, report.FinalBalance, FormatSigned(report.TotalReturn, "%.2f%%"),
		report.TotalTrades, report.ProfitableTrades, report.LosingTrades, report.WinRate,
		report.AverageProfit, report.AverageLoss, report.ProfitFactor,
		report.MaxDrawdown,
		seconds(report.TradeHoldingTime.Min), seconds(report.TradeHoldingTime.Max), seconds(report.TradeHoldingTime.Avg),
	)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
