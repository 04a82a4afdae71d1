package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	engine "github.com/rxtech-lab/okx-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/okx-backtest/internal/strategy"
	"gopkg.in/yaml.v3"
)

const (
	engineSchemaName = "backtest-engine-v1-config.json"
	engineSampleName = "backtest-engine-v1-config.yaml"
	strategiesDir    = "strategies"
)

// sampleConfig is the engine config written for new projects. The time
// window is left out so the whole data file is used.
type sampleConfig struct {
	InitialBalance float64 `yaml:"initial_balance"`
	RiskPerTrade   float64 `yaml:"risk_per_trade"`
}

func main() {
	if err := generate("./config"); err != nil {
		log.Fatal(err)
	}
}

// generate writes the engine config schema, a sample engine config and one
// parameter schema per built-in strategy below dir.
func generate(dir string) error {
	config := engine.EmptyConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	schemaPath := filepath.Join(dir, engineSchemaName)
	if err := generateSchemaFile(schemaJSON, schemaPath); err != nil {
		return err
	}

	log.Printf("Schema successfully generated at %s", schemaPath)

	samplePath := filepath.Join(dir, engineSampleName)
	if err := generateSampleConfig(samplePath, engineSchemaName); err != nil {
		return err
	}

	for _, name := range strategy.Names() {
		schema, err := strategy.ConfigSchema(name)
		if err != nil {
			return fmt.Errorf("failed to generate schema of %s: %w", name, err)
		}

		if err := generateSchemaFile(schema, filepath.Join(dir, strategiesDir, name+".json")); err != nil {
			return err
		}
	}

	return nil
}

func generateSchemaFile(schemaJSON string, schemaPath string) error {
	if err := os.MkdirAll(filepath.Dir(schemaPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

// generateSampleConfig never overwrites an existing file.
func generateSampleConfig(samplePath string, schemaName string) error {
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	yamlBytes, err := yaml.Marshal(sampleConfig{
		InitialBalance: engine.DefaultInitialBalance,
		RiskPerTrade:   engine.DefaultRiskPerTrade,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaName+"\n"), yamlBytes...)

	if err := os.MkdirAll(filepath.Dir(samplePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	log.Printf("Sample config successfully generated at %s", samplePath)

	return nil
}
