package data

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/iv-calculator/internal/pricing"
)

func TestSyntheticRecordsAreRepeatable(t *testing.T) {
	a, err := NewSyntheticGenerator(7).Records(20, ModeImpliedVol)
	require.NoError(t, err)
	b, err := NewSyntheticGenerator(7).Records(20, ModeImpliedVol)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSyntheticImpliedVolRecords(t *testing.T) {
	records, err := NewSyntheticGenerator(1).Records(50, ModeImpliedVol)
	require.NoError(t, err)
	require.Len(t, records, 50)

	for i, rec := range records {
		require.NoError(t, rec.Validate())
		assert.Equal(t, i%2 == 0, rec.IsCall())
		assert.Equal(t, ModeImpliedVol, rec.Mode())
		require.NotNil(t, rec.Price)

		sigma, err := pricing.ImpliedVolatility(rec.IsCall(), rec.Asset, rec.Strike, rec.Time, rec.Rate, *rec.Price, pricing.Bisection)
		require.NoError(t, err)
		assert.True(t, sigma >= 0.15-1e-4 && sigma <= 0.35+1e-4, "sigma %v out of range", sigma)
	}
}

func TestSyntheticPriceRecords(t *testing.T) {
	records, err := NewSyntheticGenerator(1).Records(10, ModePrice)
	require.NoError(t, err)
	for _, rec := range records {
		assert.Nil(t, rec.Price)
		require.NotNil(t, rec.Volatility)
		assert.Equal(t, ModePrice, rec.Mode())
	}
}

func benchmarkRecords(b *testing.B) []OptionRecord {
	b.Helper()

	records, err := NewSyntheticGenerator(42).Records(1000, ModeImpliedVol)
	if err != nil {
		b.Fatal(err)
	}
	return records
}

func BenchmarkWriteCSV(b *testing.B) {
	records := benchmarkRecords(b)
	var buf bytes.Buffer
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := WriteCSV(&buf, records); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReadCSV(b *testing.B) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, benchmarkRecords(b)); err != nil {
		b.Fatal(err)
	}
	raw := buf.Bytes()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadCSV(bytes.NewReader(raw)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReadJSON(b *testing.B) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, benchmarkRecords(b)); err != nil {
		b.Fatal(err)
	}
	raw := buf.Bytes()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadJSON(bytes.NewReader(raw)); err != nil {
			b.Fatal(err)
		}
	}
}
