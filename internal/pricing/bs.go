package pricing

import (
	"math"

	"github.com/pkg/errors"
)

const sqrt2Pi = 2.5066282746310002

// BlackScholesPrice calculates the price of a European option using the Black-Scholes model.
//
// Parameters:
//   - isCall: true for call option, false for put option
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual, continuously compounded)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// Returns:
//
//	The theoretical price of the option, or an ErrInvalidInput error when S, K or T is
//	not positive or sigma is negative.
//
// Note: sigma == 0 passes validation but divides by zero inside d1, so the result follows
// IEEE rules (±Inf/NaN through normCDF). The solver never evaluates at zero volatility.
func BlackScholesPrice(
	isCall bool,
	S float64, // spot
	K float64, // strike
	T float64, // time to expiry in years
	r float64, // risk-free rate
	sigma float64, // volatility
) (float64, error) {

	if err := validateContract(S, K, T); err != nil {
		return 0, err
	}
	if sigma < 0 {
		return 0, errors.Wrapf(ErrInvalidInput, "volatility must be non-negative, got %v", sigma)
	}

	d1, d2 := dParams(S, K, T, r, sigma)

	if isCall {
		return S*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2), nil
	}
	return K*math.Exp(-r*T)*normCDF(-d2) - S*normCDF(-d1), nil
}

// BlackScholesVega calculates the vega of a European option using the Black-Scholes model.
// Vega measures the sensitivity of the option price to changes in the underlying asset's volatility.
//
// Parameters:
//   - S: Current price of the underlying asset
//   - K: Strike price of the option
//   - T: Time to expiration in years
//   - r: Risk-free interest rate
//   - sigma: Volatility (standard deviation) of the underlying asset's returns, strictly positive
//
// Returns:
//
//	The vega value, representing the change in option price per 1 percentage point change
//	in volatility (S·√T·φ(d1)/100). Calls and puts share the same vega.
func BlackScholesVega(
	S float64,
	K float64,
	T float64,
	r float64,
	sigma float64,
) (float64, error) {

	if err := validateContract(S, K, T); err != nil {
		return 0, err
	}
	if sigma <= 0 {
		return 0, errors.Wrapf(ErrInvalidInput, "volatility must be positive for vega, got %v", sigma)
	}

	d1, _ := dParams(S, K, T, r, sigma)
	return S * math.Sqrt(T) * normPDF(d1) / 100, nil
}

// validateContract checks the inputs shared by every public operation.
func validateContract(S, K, T float64) error {
	switch {
	case !(S > 0):
		return errors.Wrapf(ErrInvalidInput, "spot price must be positive, got %v", S)
	case !(K > 0):
		return errors.Wrapf(ErrInvalidInput, "strike price must be positive, got %v", K)
	case !(T > 0):
		return errors.Wrapf(ErrInvalidInput, "time to expiry must be positive, got %v", T)
	}
	return nil
}

// dParams returns the standardized Black-Scholes arguments d1 and d2.
func dParams(S, K, T, r, sigma float64) (d1, d2 float64) {
	sqrtT := math.Sqrt(T)
	d1 = (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 = d1 - sigma*sqrtT
	return d1, d2
}

// normPDF calculates the probability density function (PDF) of the standard normal distribution.
// The formula used is: exp(-0.5 * x^2) / sqrt(2π)
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// normCDF computes the cumulative distribution function of the standard normal distribution
// through the error function: Φ(x) = 0.5·(1 + erf(x/√2)).
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
