package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rxtech-lab/okx-backtest/internal/logger"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/rxtech-lab/okx-backtest/pkg/marketdata"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// flagConfig mirrors the JSON download config accepted by the provider registry.
type flagConfig struct {
	Ticker    string `json:"ticker"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Interval  string `json:"interval"`
	Format    string `json:"format,omitempty"`
	BaseURL   string `json:"baseUrl,omitempty"`
	Retries   int    `json:"retries,omitempty"`
}

// loadDownloadConfig reads --config when given, otherwise builds the config
// from the individual flags.
func loadDownloadConfig(cmd *cli.Command) (marketdata.DownloadConfig, error) {
	providerName := cmd.String("provider")

	if path := cmd.String("config"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read %s", path)
		}

		return marketdata.ParseDownloadConfig(providerName, string(content))
	}

	if cmd.String("ticker") == "" || cmd.Timestamp("start").IsZero() {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "--ticker and --start are required without --config")
	}

	flags := flagConfig{
		Ticker:    cmd.String("ticker"),
		StartDate: cmd.Timestamp("start").UTC().Format(time.RFC3339),
		EndDate:   cmd.Timestamp("end").UTC().Format(time.RFC3339),
		Interval:  cmd.String("interval"),
		Format:    cmd.String("writer"),
	}

	if providerName == string(marketdata.ProviderOKX) {
		flags.BaseURL = cmd.String("base-url")
		flags.Retries = int(cmd.Int("retries"))
	}

	return buildDownloadConfig(providerName, flags)
}

func buildDownloadConfig(providerName string, flags flagConfig) (marketdata.DownloadConfig, error) {
	content, err := json.Marshal(flags)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode download config", err)
	}

	return marketdata.ParseDownloadConfig(providerName, string(content))
}

// progressReporter draws a bar sized by the first progress report.
type progressReporter struct {
	bar *progressbar.ProgressBar
}

func (p *progressReporter) report(current float64, total float64, message string) {
	if total <= 0 {
		return
	}

	if p.bar == nil {
		p.bar = progressbar.NewOptions64(int64(total),
			progressbar.OptionSetDescription(message),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
	}

	p.bar.Describe(message)
	_ = p.bar.Set64(int64(current))
}

func (p *progressReporter) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLoggerWithLevel(logger.ParseLevel(cmd.String("log-level")))
	if err != nil {
		return err
	}

	defer func() {
		_ = log.Sync()
	}()

	downloadConfig, err := loadDownloadConfig(cmd)
	if err != nil {
		return err
	}

	if err := downloadConfig.Validate(); err != nil {
		return err
	}

	params, err := downloadConfig.ToDownloadParams()
	if err != nil {
		return err
	}

	clientConfig := downloadConfig.ToClientConfig(cmd.String("data"))
	clientConfig.Logger = log

	progress := &progressReporter{}
	defer progress.finish()

	client, err := marketdata.NewClient(clientConfig, progress.report)
	if err != nil {
		return err
	}

	log.Info("Starting download",
		zap.String("provider", string(clientConfig.ProviderType)),
		zap.String("ticker", params.Ticker),
		zap.Time("start", params.StartDate),
		zap.Time("end", params.EndDate),
		zap.String("interval", string(params.Timespan)),
		zap.String("writer", string(clientConfig.WriterType)),
	)

	path, err := client.Download(ctx, params)
	if err != nil {
		return err
	}

	fmt.Printf("Downloaded data to %s\n", path)

	return nil
}

func providersCommand() *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "List the supported market data providers",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, name := range marketdata.GetSupportedProviders() {
				info, err := marketdata.GetProviderInfo(name)
				if err != nil {
					return err
				}

				fmt.Printf("%-10s %s\n", info.Name, info.Description)
			}

			return nil
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:      "schema",
		Usage:     "Print the JSON schema of a provider's download config",
		ArgsUsage: "PROVIDER",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			schema, err := marketdata.GetDownloadConfigSchema(cmd.Args().First())
			if err != nil {
				return err
			}

			fmt.Println(schema)

			return nil
		},
	}
}

func main() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical OHLCV bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "JSON download config; replaces the ticker, date, interval and writer flags",
			},
			&cli.StringFlag{
				Name:    "ticker",
				Aliases: []string{"t"},
				Usage:   "Instrument, e.g. BTC-USDT on OKX or BTCUSDT on Binance",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format (or RFC3339)",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format (or RFC3339). Defaults to now.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02", time.RFC3339},
				},
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Bar interval (1m, 5m, 15m, 1h, 4h, 1d, ...)",
				Value:   "1h",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s)", strings.Join(marketdata.GetSupportedProviders(), ", ")),
				Value:   string(marketdata.ProviderOKX),
			},
			&cli.StringFlag{
				Name:    "writer",
				Aliases: []string{"w"},
				Usage:   fmt.Sprintf("Output format (%s, %s)", marketdata.WriterDuckDB, marketdata.WriterCSV),
				Value:   string(marketdata.WriterDuckDB),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Output directory",
				Value:   "data",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "OKX REST endpoint override",
			},
			&cli.IntFlag{
				Name:  "retries",
				Usage: "OKX attempts per request",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			providersCommand(),
			schemaCommand(),
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
