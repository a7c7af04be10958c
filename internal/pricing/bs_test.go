package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

// Reference case: S=100, K=100, T=1, r=0.05, sigma=0.2
func TestBlackScholesPriceKnownValues(t *testing.T) {
	call, err := BlackScholesPrice(true, 100, 100, 1, 0.05, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 10.45, call, 0.01)
	assert.InDelta(t, 10.450583572185565, call, 1e-9)

	put, err := BlackScholesPrice(false, 100, 100, 1, 0.05, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 5.57, put, 0.01)
	assert.InDelta(t, 5.573526022256971, put, 1e-9)
}

func TestBlackScholesVegaKnownValue(t *testing.T) {
	vega, err := BlackScholesVega(100, 100, 1, 0.05, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 0.375, vega, 0.01)
	assert.InDelta(t, 0.3752403469169379, vega, 1e-12)
}

func TestBlackScholesPutCallParity(t *testing.T) {
	cases := []struct {
		S, K, T, r, sigma float64
	}{
		{100, 100, 1, 0.05, 0.2},
		{100, 100, 45.0 / 365.0, 0.03, 0.25},
		{80, 100, 0.5, 0.01, 0.6},
		{150, 100, 2, -0.01, 0.35},
		{95, 90, 5, 0.07, 0.9},
	}

	for _, c := range cases {
		call, err := BlackScholesPrice(true, c.S, c.K, c.T, c.r, c.sigma)
		require.NoError(t, err)
		put, err := BlackScholesPrice(false, c.S, c.K, c.T, c.r, c.sigma)
		require.NoError(t, err)

		lhs := call - put
		rhs := c.S - c.K*math.Exp(-c.r*c.T)
		assert.InDeltaf(t, rhs, lhs, 1e-9, "put-call parity violated for %+v", c)
	}
}

func TestBlackScholesPriceMonotonicInVolatility(t *testing.T) {
	for _, isCall := range []bool{true, false} {
		prev := -1.0
		for sigma := 0.05; sigma <= 3.0; sigma += 0.05 {
			p, err := BlackScholesPrice(isCall, 100, 110, 0.5, 0.03, sigma)
			require.NoError(t, err)
			require.Greaterf(t, p, prev, "price not increasing at sigma=%.2f call=%v", sigma, isCall)
			prev = p
		}
	}
}

func TestBlackScholesRejectsInvalidInput(t *testing.T) {
	priceCases := []struct {
		name              string
		S, K, T, r, sigma float64
	}{
		{"negative spot", -100, 100, 1, 0.05, 0.2},
		{"zero spot", 0, 100, 1, 0.05, 0.2},
		{"zero strike", 100, 0, 1, 0.05, 0.2},
		{"negative strike", 100, -5, 1, 0.05, 0.2},
		{"zero expiry", 100, 100, 0, 0.05, 0.2},
		{"negative expiry", 100, 100, -1, 0.05, 0.2},
		{"negative volatility", 100, 100, 1, 0.05, -0.2},
		{"nan spot", math.NaN(), 100, 1, 0.05, 0.2},
	}

	for _, c := range priceCases {
		t.Run("price/"+c.name, func(t *testing.T) {
			_, err := BlackScholesPrice(true, c.S, c.K, c.T, c.r, c.sigma)
			require.Error(t, err)
			assert.True(t, IsInvalidInput(err))
		})
	}

	vegaCases := []struct {
		name              string
		S, K, T, r, sigma float64
	}{
		{"zero spot", 0, 100, 1, 0.05, 0.2},
		{"zero strike", 100, 0, 1, 0.05, 0.2},
		{"zero expiry", 100, 100, 0, 0.05, 0.2},
		{"zero volatility", 100, 100, 1, 0.05, 0},
		{"negative volatility", 100, 100, 1, 0.05, -0.1},
	}

	for _, c := range vegaCases {
		t.Run("vega/"+c.name, func(t *testing.T) {
			_, err := BlackScholesVega(c.S, c.K, c.T, c.r, c.sigma)
			require.Error(t, err)
			assert.True(t, IsInvalidInput(err))
		})
	}
}

// sigma = 0 is accepted by validation; the formula itself degenerates.
func TestBlackScholesPriceZeroVolatilityIsAccepted(t *testing.T) {
	_, err := BlackScholesPrice(true, 100, 100, 1, 0.05, 0)
	assert.NoError(t, err)
}

func TestNormalDistributionAgainstGonum(t *testing.T) {
	ref := distuv.UnitNormal
	for x := -8.0; x <= 8.0; x += 0.25 {
		assert.InDeltaf(t, ref.CDF(x), normCDF(x), 1e-14, "normCDF(%v)", x)
		assert.InDeltaf(t, ref.Prob(x), normPDF(x), 1e-14, "normPDF(%v)", x)
	}
}

func TestOptionSpecMatchesFunctions(t *testing.T) {
	spec := OptionSpec{IsCall: false, Spot: 105, Strike: 100, Expiry: 0.75, Rate: 0.02, Volatility: 0.3}

	p, err := spec.Price()
	require.NoError(t, err)
	want, _ := BlackScholesPrice(false, 105, 100, 0.75, 0.02, 0.3)
	assert.Equal(t, want, p)

	v, err := spec.Vega()
	require.NoError(t, err)
	wantVega, _ := BlackScholesVega(105, 100, 0.75, 0.02, 0.3)
	assert.Equal(t, wantVega, v)
}
