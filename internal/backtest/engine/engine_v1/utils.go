package engine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// getResultFolder returns <results>/<strategy>[/<start>_<end>]/<data file name>.
func getResultFolder(resultsFolder string, strategyLabel string, dataPath string, config BacktestEngineV1Config) string {
	strategyFolder := filepath.Join(resultsFolder, strategyLabel)

	var dataFolder string

	if config.StartTime.IsSome() || config.EndTime.IsSome() {
		startTimeStr := "all"
		endTimeStr := "all"

		if config.StartTime.IsSome() {
			startTimeStr = config.StartTime.Unwrap().Format("20060102")
		}

		if config.EndTime.IsSome() {
			endTimeStr = config.EndTime.Unwrap().Format("20060102")
		}

		dataFolder = filepath.Join(strategyFolder, fmt.Sprintf("%s_%s", startTimeStr, endTimeStr))
	} else {
		dataFolder = strategyFolder
	}

	dataFileName := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))

	return filepath.Join(dataFolder, dataFileName)
}

// strategyLabels names the strategies for their result folders. A name
// loaded more than once gets a numeric suffix from its second occurrence on.
func strategyLabels(names []string) []string {
	seen := make(map[string]int, len(names))
	labels := make([]string, len(names))

	for i, name := range names {
		seen[name]++
		if seen[name] == 1 {
			labels[i] = name
		} else {
			labels[i] = fmt.Sprintf("%s_%d", name, seen[name])
		}
	}

	return labels
}
