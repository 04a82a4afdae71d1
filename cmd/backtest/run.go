package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rxtech-lab/okx-backtest/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/okx-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/okx-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/okx-backtest/internal/logger"
	"github.com/rxtech-lab/okx-backtest/internal/store"
	"github.com/rxtech-lab/okx-backtest/internal/strategy"
	"github.com/rxtech-lab/okx-backtest/internal/trace"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/internal/version"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// strategySpec is one --strategy value: NAME or NAME=PARAMS.yaml.
type strategySpec struct {
	name       string
	configPath string
}

func parseStrategySpec(value string) (strategySpec, error) {
	name, configPath, _ := strings.Cut(value, "=")
	name = strings.TrimSpace(name)

	if name == "" {
		return strategySpec{}, errors.Newf(errors.ErrCodeInvalidParameter, "invalid strategy %q, expected NAME or NAME=PARAMS.yaml", value)
	}

	return strategySpec{name: name, configPath: strings.TrimSpace(configPath)}, nil
}

func (s strategySpec) readConfig() (string, error) {
	if s.configPath == "" {
		return "", nil
	}

	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to read parameters of %s", s.name)
	}

	return string(content), nil
}

func readEngineConfig(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeBacktestConfigError, err, "failed to read %s", path)
	}

	return string(content), nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run every strategy over every data file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Engine config YAML (initial_balance, risk_per_trade, start_time, end_time)",
			},
			&cli.StringSliceFlag{
				Name:     "strategy",
				Aliases:  []string{"s"},
				Usage:    "Strategy as `NAME` or NAME=PARAMS.yaml, repeatable",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Glob of Parquet or CSV bar files",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Results folder, recreated on every run",
				Value:   "results",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "info",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "Export spans to stderr",
			},
			&cli.BoolFlag{
				Name:  "archive",
				Usage: "Save every run to Postgres (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Hide the per-run progress bar",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) (err error) {
	log, err := logger.NewLoggerWithLevel(logger.ParseLevel(cmd.String("log-level")))
	if err != nil {
		return err
	}

	defer func() {
		_ = log.Sync()
	}()

	if err := trace.Init(trace.Config{
		Enabled:        cmd.Bool("trace"),
		ServiceName:    "okx-backtest",
		ServiceVersion: version.GetVersion(),
		Writer:         os.Stderr,
	}); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to initialize tracing", err)
	}

	defer func() {
		if shutdownErr := trace.Shutdown(context.Background()); shutdownErr != nil {
			log.Warn("Failed to flush spans", zap.Error(shutdownErr))
		}
	}()

	backtester := engine_v1.NewBacktestEngineV1WithLogger(log)
	defer backtester.Close()

	engineConfig, err := readEngineConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if err := backtester.Initialize(engineConfig); err != nil {
		return err
	}

	for _, value := range cmd.StringSlice("strategy") {
		spec, err := parseStrategySpec(value)
		if err != nil {
			return err
		}

		params, err := spec.readConfig()
		if err != nil {
			return err
		}

		if err := backtester.LoadStrategyFromConfig(spec.name, params); err != nil {
			return err
		}
	}

	if err := backtester.SetDataPath(cmd.String("data")); err != nil {
		return err
	}

	if err := backtester.SetResultsFolder(cmd.String("results")); err != nil {
		return err
	}

	bars, err := datasource.NewDataSource(":memory:", log)
	if err != nil {
		return err
	}
	defer bars.Close()

	if err := backtester.SetDataSource(bars); err != nil {
		return err
	}

	var archive *store.RunStore

	if cmd.Bool("archive") {
		dbConfig, err := store.LoadDatabaseConfig("")
		if err != nil {
			return err
		}

		archive, err = store.OpenPostgres(dbConfig, log)
		if err != nil {
			return err
		}
		defer archive.Close()
	}

	callbacks := newRunCallbacks(ctx, log, archive, !cmd.Bool("no-progress"))

	return backtester.Run(ctx, callbacks.lifecycle())
}

// runCallbacks renders progress and archives finished runs.
type runCallbacks struct {
	ctx          context.Context
	log          *logger.Logger
	archive      *store.RunStore
	showProgress bool
	bar          *progressbar.ProgressBar
	summaries    []types.Report
}

func newRunCallbacks(ctx context.Context, log *logger.Logger, archive *store.RunStore, showProgress bool) *runCallbacks {
	return &runCallbacks{
		ctx:          ctx,
		log:          log,
		archive:      archive,
		showProgress: showProgress,
	}
}

func (r *runCallbacks) lifecycle() engine.LifecycleCallbacks {
	onRunStart := engine.OnRunStartCallback(r.onRunStart)
	onProcessData := engine.OnProcessDataCallback(r.onProcessData)
	onRunEnd := engine.OnRunEndCallback(r.onRunEnd)
	onBacktestEnd := engine.OnBacktestEndCallback(r.onBacktestEnd)

	return engine.LifecycleCallbacks{
		OnRunStart:    &onRunStart,
		OnProcessData: &onProcessData,
		OnRunEnd:      &onRunEnd,
		OnBacktestEnd: &onBacktestEnd,
	}
}

func (r *runCallbacks) onRunStart(runID string, strategyName string, dataFileIndex int, dataFilePath string, totalDataPoints int) error {
	if r.showProgress {
		r.bar = progressbar.NewOptions(totalDataPoints,
			progressbar.OptionSetDescription(fmt.Sprintf("%s %s", strategyName, dataFilePath)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
		)
	}

	return nil
}

func (r *runCallbacks) onProcessData(current int, total int) error {
	if r.bar != nil {
		return r.bar.Set(current)
	}

	return nil
}

func (r *runCallbacks) onRunEnd(result types.BacktestResult, resultFolderPath string) error {
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}

	r.summaries = append(r.summaries, result.Report)

	if r.archive == nil {
		return nil
	}

	return r.archive.SaveRun(r.ctx, result, resultFolderPath)
}

func (r *runCallbacks) onBacktestEnd(err error) {
	if err != nil {
		return
	}

	for _, report := range r.summaries {
		fmt.Printf("%-16s %-12s trades=%-4d win_rate=%6.2f%% return=%7.2f%% final=%.2f\n",
			report.Strategy.Name, report.Symbol, report.TotalTrades, report.WinRate, report.TotalReturn, report.FinalBalance)
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the engine config or of a strategy's parameters",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Strategy name; omit for the engine config",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var (
				schema string
				err    error
			)

			if name := cmd.String("strategy"); name != "" {
				schema, err = strategy.ConfigSchema(name)
			} else {
				schema, err = engine_v1.NewBacktestEngineV1().GetConfigSchema()
			}

			if err != nil {
				return err
			}

			fmt.Println(schema)

			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the built-in strategies",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, name := range strategy.Names() {
				fmt.Println(name)
			}

			return nil
		},
	}
}
