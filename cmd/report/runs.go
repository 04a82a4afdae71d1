package main

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/internal/version"
)

const statsFileName = "stats.yaml"

// RunEntry is one run found below the results folder.
type RunEntry struct {
	Folder string
	Report types.Report
	// Incompatible is set when the report was written by an engine whose
	// version cannot be read reliably by this one.
	Incompatible error
}

// LoadRuns finds every stats.yaml below dir, newest run first.
func LoadRuns(dir string) ([]RunEntry, error) {
	var runs []RunEntry

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || d.Name() != statsFileName {
			return nil
		}

		report, err := types.ReadReport(path)
		if err != nil {
			return err
		}

		runs = append(runs, RunEntry{
			Folder:       filepath.Dir(path),
			Report:       report,
			Incompatible: version.CheckReport(report.EngineVersion),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Report.Timestamp.After(runs[j].Report.Timestamp)
	})

	return runs, nil
}

// FilterRuns keeps the runs whose strategy or symbol contains every term.
func FilterRuns(runs []RunEntry, terms []string) []RunEntry {
	if len(terms) == 0 {
		return runs
	}

	filtered := make([]RunEntry, 0, len(runs))

	for _, run := range runs {
		haystack := strings.ToUpper(run.Report.Strategy.Name + " " + run.Report.Symbol)
		matches := true

		for _, term := range terms {
			if !strings.Contains(haystack, term) {
				matches = false

				break
			}
		}

		if matches {
			filtered = append(filtered, run)
		}
	}

	return filtered
}

// ParseTerms splits a comma separated filter into upper case terms.
func ParseTerms(input string) []string {
	parts := strings.Split(input, ",")
	terms := make([]string, 0, len(parts))

	for _, p := range parts {
		s := strings.TrimSpace(strings.ToUpper(p))
		if s != "" {
			terms = append(terms, s)
		}
	}

	return terms
}
