package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/iv-calculator/internal/data"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSinglePrice(t *testing.T) {
	out, _, err := runCLI(t, "--call", "--asset", "100", "--strike", "100", "--time", "1", "--rate", "0.05", "--volatility", "0.2")
	require.NoError(t, err)
	assert.Contains(t, out, "Option: Call\n")
	assert.Contains(t, out, "Volatility: 0.2\n")
	assert.Contains(t, out, "Option price: 10.450584\n")
}

func TestSingleImpliedVolatility(t *testing.T) {
	for _, method := range []string{"bisection", "newton"} {
		t.Run(method, func(t *testing.T) {
			out, _, err := runCLI(t, "--put", "--asset", "100", "--strike", "100", "--time", "1",
				"--rate", "0.05", "--price", "5.573526022256971", "--method", method)
			require.NoError(t, err)
			assert.Contains(t, out, "Option: Put\n")
			assert.Contains(t, out, "Implied volatility: 0.200000\n")
		})
	}
}

func TestSingleBothGiven(t *testing.T) {
	out, errOut, err := runCLI(t, "--asset", "100", "--strike", "100", "--time", "1", "--rate", "0.05",
		"--price", "3", "--volatility", "0.2")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Warning: both option price and volatility provided")
	assert.Contains(t, out, "Option price: 10.450584\n")
}

func TestSingleErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing price and volatility", []string{"--asset", "100", "--strike", "100", "--time", "1"}, "either option price or volatility"},
		{"zero asset", []string{"--asset", "0", "--strike", "100", "--time", "1", "--price", "5"}, "must be positive"},
		{"negative time", []string{"--asset", "100", "--strike", "100", "--time=-1", "--price", "5"}, "must be positive"},
		{"call and put", []string{"--call", "--put", "--asset", "100", "--strike", "100", "--time", "1", "--price", "5"}, "call"},
		{"unknown method", []string{"--asset", "100", "--strike", "100", "--time", "1", "--price", "5", "--method", "secant"}, "unknown solver method"},
		{"no solution", []string{"--asset", "100", "--strike", "80", "--time", "1", "--rate", "0.05", "--price", "20.5"}, "did not converge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSingleWritesOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single.csv")
	out, _, err := runCLI(t, "--asset", "100", "--strike", "100", "--time", "1", "--rate", "0.05",
		"--volatility", "0.2", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Results written to "+path)

	records, err := data.Read(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 10.450583572185565, *records[0].Price, 1e-9)
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "options.csv")
	require.NoError(t, os.WriteFile(in, []byte(
		"Type,Asset,Strike,Time,Rate,Price,Volatility\n"+
			"Call,100,100,1,0.05,10.450583572185565,\n"+
			"Put,100,100,1,0.05,,0.2\n"+
			"Call,-5,100,1,0.05,3,\n"), 0644))
	outPath := filepath.Join(dir, "results", "out.json")

	out, _, err := runCLI(t, "--batch", in, "--output", outPath, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Option: Call, S=100, K=100, T=1, r=0.05, price=10.4506, implied volatility=0.2\n")
	assert.Contains(t, out, "Option: Put, S=100, K=100, T=1, r=0.05, volatility=0.2, price=5.57353\n")
	assert.Contains(t, out, "Error processing option Call, S=-5")
	assert.Contains(t, out, "Batch processing complete. Processed 2 items with 1 errors.\n")

	records, err := data.Read(outPath)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, data.FieldVolatility, records[0].Computed)
	assert.NotEmpty(t, records[2].Error)
}

func TestBatchMissingFile(t *testing.T) {
	_, _, err := runCLI(t, "--batch", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNoFlagsPrintsHelp(t *testing.T) {
	out, _, err := runCLI(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestGenerateThenBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synthetic.json")
	out, _, err := runCLI(t, "generate", path, "--count", "20", "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 20 records to "+path)

	out, _, err = runCLI(t, "--batch", path, "--method", "newton")
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 20 items with 0 errors.")
}
