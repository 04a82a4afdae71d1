package strategy

import (
	"sort"

	"github.com/rxtech-lab/okx-backtest/pkg/errors"
)

type factoryEntry struct {
	build  func() Strategy
	config func() any
}

var factories = map[string]factoryEntry{
	NameEMACrossover: {
		build:  func() Strategy { return FromLegacy(NewEMACrossover(), DefaultLegacyOptions()) },
		config: func() any { return NewEMACrossover().config },
	},
	NameBollinger: {
		build:  func() Strategy { return FromLegacy(NewBollinger(), DefaultLegacyOptions()) },
		config: func() any { return NewBollinger().config },
	},
	NameDualThrust: {
		build:  func() Strategy { return FromLegacy(NewDualThrust(), DefaultLegacyOptions()) },
		config: func() any { return NewDualThrust().config },
	},
	NameKDJ: {
		build:  func() Strategy { return FromLegacy(NewKDJ(), DefaultLegacyOptions()) },
		config: func() any { return NewKDJ().config },
	},
	NameTurtle: {
		build:  func() Strategy { return FromLegacy(NewTurtle(), DefaultLegacyOptions()) },
		config: func() any { return NewTurtle().config },
	},
	NameRSI: {
		build:  func() Strategy { return NewRSI() },
		config: func() any { return NewRSI().config },
	},
	NameMACD: {
		build:  func() Strategy { return NewMACD() },
		config: func() any { return NewMACD().config },
	},
}

// Names returns the names of the built-in strategies in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// NewFromConfig builds the named strategy and initializes it with the YAML config.
func NewFromConfig(name string, config string) (Strategy, error) {
	entry, ok := factories[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unknown strategy %q, available: %v", name, Names())
	}

	strategy := entry.build()
	if err := strategy.Initialize(config); err != nil {
		return nil, err
	}

	return strategy, nil
}

// ConfigSchema returns the JSON schema of the named strategy's parameters.
func ConfigSchema(name string) (string, error) {
	entry, ok := factories[name]
	if !ok {
		return "", errors.Newf(errors.ErrCodeUnsupportedStrategy, "unknown strategy %q", name)
	}

	return ToJSONSchema(entry.config())
}
