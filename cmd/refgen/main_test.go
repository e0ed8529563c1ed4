package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kjstillabower/overnight-forecast-service/internal/reference"
	"github.com/kjstillabower/overnight-forecast-service/internal/tabular"
)

func TestRun_WritesAllFiles(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "processed")

	require.NoError(t, run([]string{"-out", out}, zap.NewNop()))

	gridData, err := os.ReadFile(filepath.Join(out, gridFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(gridData), "Wind Speed (knots),0-2,2-4,4-6,6-8\n"))

	grid, err := reference.ReadGrid(strings.NewReader(string(gridData)))
	require.NoError(t, err)
	assert.Equal(t, reference.BuildGrid(), grid)

	tbl, err := reference.LoadTable(filepath.Join(out, longFile))
	require.NoError(t, err)
	assert.Equal(t, 15, tbl.Len())

	f, err := os.Open(filepath.Join(out, trialFile))
	require.NoError(t, err)
	defer f.Close()
	cols, obs, err := tabular.ReadObservations(f)
	require.NoError(t, err)
	wantCols, wantObs := tabular.TrialData()
	assert.Equal(t, wantCols, cols)
	assert.Equal(t, wantObs, obs)
}

func TestRun_BadFlag(t *testing.T) {
	assert.Error(t, run([]string{"-nope"}, zap.NewNop()))
}
