package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:      "report",
		Usage:     "Browse backtest results",
		ArgsUsage: "[RESULTS_DIR]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				dir = "results"
			}

			runs, err := LoadRuns(dir)
			if err != nil {
				return fmt.Errorf("failed to load runs from %s: %w", dir, err)
			}

			_, err = tea.NewProgram(NewModel(runs), tea.WithAltScreen()).Run()

			return err
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
