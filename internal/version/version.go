package version

// Version is the engine version stamped into every stats.yaml. It is set at
// build time with
// -ldflags "-X github.com/rxtech-lab/okx-backtest/internal/version.Version=1.2.3".
// "main" marks a development build.
var Version = "v0.3.0"

func GetVersion() string {
	return Version
}
