// Command forecast runs one batch of observations through the forecast engine
// and writes the forecast CSV. Any failing row aborts the run with no output.
//
// Usage:
//
//	go run ./cmd/forecast -input data/processed/trial_data.csv -output report.csv
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/kjstillabower/overnight-forecast-service/internal/forecast"
	"github.com/kjstillabower/overnight-forecast-service/internal/observability"
	"github.com/kjstillabower/overnight-forecast-service/internal/reference"
	"github.com/kjstillabower/overnight-forecast-service/internal/tabular"
)

func main() {
	logger, err := observability.NewCLILogger("forecast")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		logger.Error("forecast failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, logger *zap.Logger) error {
	fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
	input := fs.String("input", "", "observation CSV file (required)")
	refPath := fs.String("reference", "", "long-form reference CSV (default: built-in grid)")
	output := fs.String("output", "", "forecast CSV file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		fs.Usage()
		return errors.New("missing required flag: -input")
	}

	table, err := loadReference(*refPath)
	if err != nil {
		return fmt.Errorf("load reference: %w", err)
	}

	f, err := os.Open(*input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	columns, observations, err := tabular.ReadObservations(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", *input, err)
	}

	rows, err := forecast.Process(observations, table)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tabular.WriteForecasts(&buf, columns, rows); err != nil {
		return fmt.Errorf("encode forecasts: %w", err)
	}
	if *output == "" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(*output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("forecasts written", zap.String("path", *output), zap.Int("rows", len(rows)))
	return nil
}

func loadReference(path string) (*reference.Table, error) {
	if path == "" {
		return reference.CanonicalTable()
	}
	return reference.LoadTable(path)
}
