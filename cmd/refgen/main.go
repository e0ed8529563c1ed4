// Command refgen writes the reference data files used by the service and the
// forecast CLI: the wide K grid, its long-form table and the trial dataset.
//
// Usage:
//
//	go run ./cmd/refgen -out data/processed
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kjstillabower/overnight-forecast-service/internal/observability"
	"github.com/kjstillabower/overnight-forecast-service/internal/reference"
	"github.com/kjstillabower/overnight-forecast-service/internal/tabular"
)

// Output file names under -out.
const (
	gridFile  = "reference.csv"
	longFile  = "transformed_reference.csv"
	trialFile = "trial_data.csv"
)

func main() {
	logger, err := observability.NewCLILogger("refgen")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(os.Args[1:], logger); err != nil {
		logger.Error("refgen failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("refgen", flag.ContinueOnError)
	outDir := fs.String("out", filepath.Join("data", "processed"), "directory to write reference and trial CSV files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	grid := reference.BuildGrid()
	entries := grid.Long()
	columns, trial := tabular.TrialData()

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{gridFile, func(w io.Writer) error { return reference.WriteGrid(w, grid) }},
		{longFile, func(w io.Writer) error { return reference.WriteTable(w, entries) }},
		{trialFile, func(w io.Writer) error { return tabular.WriteObservations(w, columns, trial) }},
	}
	for _, f := range files {
		path := filepath.Join(*outDir, f.name)
		if err := writeFile(path, f.write); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		logger.Info("wrote file", zap.String("path", path))
	}

	// the long table must load cleanly; the service refuses to start otherwise
	tbl, err := reference.LoadTable(filepath.Join(*outDir, longFile))
	if err != nil {
		return fmt.Errorf("verify %s: %w", longFile, err)
	}
	logger.Info("reference data generated", zap.Int("entries", tbl.Len()), zap.Int("trialRows", len(trial)))
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
