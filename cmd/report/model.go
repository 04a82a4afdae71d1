package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	engine "github.com/rxtech-lab/okx-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/okx-backtest/internal/types"
)

const (
	StateRunList = iota
	StateFilterInput
	StateRunDetail
)

// Model is the Bubble Tea model of the results viewer.
type Model struct {
	state       int
	allRuns     []RunEntry
	runs        []RunEntry
	terms       []string
	runList     list.Model
	filterInput textinput.Model
	tradesTable table.Model
	selected    *RunEntry
	trades      []types.TradeRecord
	loading     bool
	err         error
	width       int
	height      int
}

func NewModel(runs []RunEntry) Model {
	return Model{
		state:       StateRunList,
		allRuns:     runs,
		runs:        runs,
		runList:     NewRunList(runs),
		filterInput: NewFilterInput(),
		tradesTable: NewTradesTable(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != StateFilterInput {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.runList.SetSize(msg.Width, msg.Height-4)
		m.tradesTable.SetWidth(msg.Width)
		m.tradesTable.SetHeight(msg.Height - 14)

		return m, nil

	case TradesLoadedMsg:
		if m.selected == nil || m.selected.Folder != msg.Folder {
			return m, nil
		}

		m.loading = false
		m.trades = msg.Trades
		m.tradesTable = UpdateTradeRows(m.tradesTable, msg.Trades)

		return m, nil

	case LoadErrorMsg:
		m.loading = false
		m.err = msg.Err

		return m, nil
	}

	switch m.state {
	case StateRunList:
		return m.updateRunList(msg)
	case StateFilterInput:
		return m.updateFilterInput(msg)
	case StateRunDetail:
		return m.updateRunDetail(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateFilterInput:
		m.filterInput.Blur()
		m.state = StateRunList
	case StateRunDetail:
		m.selected = nil
		m.trades = nil
		m.err = nil
		m.loading = false
		m.tradesTable = UpdateTradeRows(m.tradesTable, nil)
		m.state = StateRunList
	}

	return m, nil
}

func (m Model) updateRunList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			if item, ok := m.runList.SelectedItem().(runItem); ok {
				run := item.run
				m.selected = &run
				m.loading = true
				m.err = nil
				m.state = StateRunDetail

				return m, loadTrades(run)
			}
		case "/":
			m.state = StateFilterInput
			m.filterInput.SetValue(strings.Join(m.terms, ","))
			m.filterInput.Focus()

			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.runList, cmd = m.runList.Update(msg)

	return m, cmd
}

func (m Model) updateFilterInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		m.terms = ParseTerms(m.filterInput.Value())
		m.runs = FilterRuns(m.allRuns, m.terms)
		cmd := m.runList.SetItems(runItems(m.runs))
		m.runList.ResetSelected()
		m.filterInput.Blur()
		m.state = StateRunList

		return m, cmd
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)

	return m, cmd
}

func (m Model) updateRunDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.tradesTable, cmd = m.tradesTable.Update(msg)

	return m, cmd
}

// loadTrades reads the trades of run off the UI goroutine.
func loadTrades(run RunEntry) tea.Cmd {
	return func() tea.Msg {
		path := run.Report.TradesFilePath
		if path == "" {
			path = filepath.Join(run.Folder, "trades.parquet")
		}

		trades, err := engine.ReadTrades(path)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}

		return TradesLoadedMsg{Folder: run.Folder, Trades: trades}
	}
}

func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateRunList:
		if len(m.terms) > 0 {
			s.WriteString(HelpStyle.Render(fmt.Sprintf("Filter: %s", strings.Join(m.terms, ", "))))
			s.WriteString("\n")
		}

		if len(m.runs) == 0 {
			s.WriteString(TitleStyle.Render("Backtest Runs"))
			s.WriteString("\n\nNo runs found.\n\n")
		} else {
			s.WriteString(m.runList.View())
			s.WriteString("\n")
		}

		s.WriteString(HelpStyle.Render("Enter: open | /: filter | q: quit"))

	case StateFilterInput:
		s.WriteString(TitleStyle.Render("Filter Runs"))
		s.WriteString("\n\n")
		s.WriteString("Enter comma-separated strategy or symbol terms (e.g., rsi,BTC-USDT):\n\n")
		s.WriteString(m.filterInput.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Press Enter to apply, Esc to go back"))

	case StateRunDetail:
		if m.selected == nil {
			break
		}

		report := m.selected.Report
		s.WriteString(TitleStyle.Render(fmt.Sprintf("%s · %s", report.Strategy.Name, report.Symbol)))
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("run %s | engine %s | %s", report.ID, report.EngineVersion, m.selected.Folder)))
		s.WriteString("\n\n")

		if m.selected.Incompatible != nil {
			s.WriteString(WarningStyle.Render(fmt.Sprintf("Warning: %v", m.selected.Incompatible)))
			s.WriteString("\n\n")
		}

		s.WriteString(RenderSummary(report))
		s.WriteString("\n\n")

		switch {
		case m.err != nil:
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n")
		case m.loading:
			s.WriteString("Loading trades...\n")
		case len(m.trades) == 0:
			s.WriteString("No trades.\n")
		default:
			s.WriteString(m.tradesTable.View())
			s.WriteString("\n")
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("q: quit | Esc: back"))
	}

	return s.String()
}
