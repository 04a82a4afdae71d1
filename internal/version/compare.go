package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

// CheckVersionCompatibility reports whether results written by
// reportVersion can be read by engineVersion.
//
// Major and minor must match; patch may differ. A "main" build on either
// side skips the check.
//
//   - engine 0.3.0, report 0.3.4 -> OK
//   - engine 0.4.0, report 0.3.0 -> minor version mismatch
//   - engine main, report 0.1.0  -> OK
func CheckVersionCompatibility(engineVersion, reportVersion string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	reportVersion = strings.TrimPrefix(reportVersion, "v")

	if engineVersion == "main" || reportVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeVersionMismatch, err, "invalid engine version '%s'", engineVersion)
	}

	reportSemver, err := semver.NewVersion(reportVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeVersionMismatch, err, "invalid report version '%s'", reportVersion)
	}

	if engineSemver.Major() != reportSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: engine is %d.x.x but results were written by %d.x.x",
			engineSemver.Major(), reportSemver.Major())
	}

	if engineSemver.Minor() != reportSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"minor version mismatch: engine is %d.%d.x but results were written by %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(),
			reportSemver.Major(), reportSemver.Minor())
	}

	return nil
}

// CheckReport checks a report's engine version against the running engine.
func CheckReport(reportVersion string) error {
	return CheckVersionCompatibility(GetVersion(), reportVersion)
}
