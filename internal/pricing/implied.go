package pricing

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/contactkeval/iv-calculator/internal/logger"
)

// Method selects the numerical strategy used to invert the pricing formula.
type Method int

const (
	// Bisection brackets the root in [0.001, 10] and halves the interval.
	Bisection Method = iota
	// NewtonRaphson follows vega-scaled steps and falls back to Bisection on failure.
	NewtonRaphson
)

// String returns the canonical name of the method.
func (m Method) String() string {
	switch m {
	case Bisection:
		return "bisection"
	case NewtonRaphson:
		return "newton"
	default:
		return "unknown"
	}
}

// ParseMethod converts a user supplied name into a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bisection", "bisect":
		return Bisection, nil
	case "newton", "newton-raphson", "newton_raphson", "nr":
		return NewtonRaphson, nil
	}
	return Bisection, errors.Errorf("unknown solver method %q", s)
}

const (
	bisectionLow     = 0.001
	bisectionHigh    = 10.0
	bisectionMaxIter = 1000
	bisectionTol     = 1e-8

	newtonMaxIter = 100
	newtonTol     = 1e-6
	newtonMinVega = 1e-10
	newtonMinVol  = 0.0001
	newtonMaxVol  = 5.0
	// newtonAcceptTol is the looser bar for the best approximation seen in the loop.
	newtonAcceptTol = newtonTol * 100

	shortDated = 0.1
)

// Solution is the outcome of a successful implied volatility search.
type Solution struct {
	Volatility float64 // implied volatility
	Method     Method  // method that produced Volatility
	Iterations int     // price evaluations spent by the producing method
}

// ImpliedVolatility recovers the volatility that reproduces price under Black-Scholes.
//
// It fails with ErrInvalidInput when S, K, T or price is not positive, and with
// ErrNonConvergence when every strategy available to method is exhausted.
func ImpliedVolatility(isCall bool, S, K, T, r, price float64, method Method) (float64, error) {
	sol, err := Solve(isCall, S, K, T, r, price, method)
	if err != nil {
		return 0, err
	}
	return sol.Volatility, nil
}

// Solve is ImpliedVolatility with the solver details attached.
func Solve(isCall bool, S, K, T, r, price float64, method Method) (Solution, error) {
	if err := validateContract(S, K, T); err != nil {
		return Solution{}, err
	}
	if !(price > 0) {
		return Solution{}, errors.Wrapf(ErrInvalidInput, "option price must be positive, got %v", price)
	}

	switch method {
	case Bisection:
		return bisection(isCall, S, K, T, r, price)
	case NewtonRaphson:
		sol, err := newtonRaphson(isCall, S, K, T, r, price)
		if IsNonConvergence(err) {
			// second chance, independent of the fallback inside newtonRaphson
			logger.Tracef("newton: %v, retrying with bisection", err)
			return bisection(isCall, S, K, T, r, price)
		}
		return sol, err
	}
	return Solution{}, errors.Wrapf(ErrInvalidInput, "unknown solver method %d", int(method))
}

// bisection halves [bisectionLow, bisectionHigh] until the midpoint reprices within bisectionTol.
// The bracket is not checked up front: a root outside it converges towards the nearest bound
// or exhausts the iteration budget.
func bisection(isCall bool, S, K, T, r, target float64) (Solution, error) {
	low, high := bisectionLow, bisectionHigh

	for i := 0; i < bisectionMaxIter; i++ {
		mid := (low + high) / 2

		price, err := BlackScholesPrice(isCall, S, K, T, r, mid)
		if err != nil {
			return Solution{}, err
		}

		if math.Abs(price-target) < bisectionTol {
			return Solution{Volatility: mid, Method: Bisection, Iterations: i + 1}, nil
		}

		if price < target {
			low = mid
		} else {
			high = mid
		}
	}

	return Solution{}, errors.Wrapf(ErrNonConvergence, "bisection exhausted %d iterations", bisectionMaxIter)
}

// newtonRaphson iterates damped Newton steps from a moneyness-based initial guess.
// When the loop ends without meeting newtonTol it accepts the best approximation within
// newtonAcceptTol, and otherwise hands the problem to bisection.
func newtonRaphson(isCall bool, S, K, T, r, target float64) (Solution, error) {
	sigma := initialGuess(isCall, S, K, T, target)
	lastValid := sigma

	bestSigma, bestDiff := sigma, math.Inf(1)

	maxStep := 0.3
	if T < shortDated {
		maxStep = 0.1
	}

	evals := 0
	for i := 0; i < newtonMaxIter; i++ {
		price, err := BlackScholesPrice(isCall, S, K, T, r, sigma)
		if err != nil {
			return Solution{}, err
		}
		evals++

		diff := math.Abs(price - target)
		if diff < bestDiff {
			bestSigma, bestDiff = sigma, diff
		}
		if diff < newtonTol {
			return Solution{Volatility: sigma, Method: NewtonRaphson, Iterations: evals}, nil
		}

		vega, err := BlackScholesVega(S, K, T, r, sigma)
		if err != nil {
			return Solution{}, err
		}
		if math.Abs(vega) < newtonMinVega {
			// flat region: a step would be unstable
			sigma = lastValid
			break
		}

		adjustment := (price - target) / vega
		limit := maxStep * sigma
		adjustment = math.Max(-limit, math.Min(limit, adjustment))

		lastValid = sigma
		sigma = math.Max(newtonMinVol, math.Min(newtonMaxVol, sigma-adjustment))
	}

	if bestDiff < newtonAcceptTol {
		return Solution{Volatility: bestSigma, Method: NewtonRaphson, Iterations: evals}, nil
	}

	logger.Tracef("newton: best diff %g after %d iterations, falling back to bisection", bestDiff, evals)
	return bisection(isCall, S, K, T, r, target)
}

// initialGuess picks the Newton-Raphson starting volatility.
//
// Priority: short-dated options start at 0.5; near-the-money options use the
// Brenner-Subrahmanyam approximation clamped to [0.1, 1.0]; in-the-money options
// start at 0.2 and out-of-the-money options at 0.4.
func initialGuess(isCall bool, S, K, T, price float64) float64 {
	switch {
	case T < shortDated:
		return 0.5
	case math.Abs(S/K-1) < 0.1:
		guess := math.Sqrt(2*math.Pi/T) * price / S
		return math.Max(0.1, math.Min(1.0, guess))
	case (isCall && S > K) || (!isCall && S < K):
		return 0.2
	default:
		return 0.4
	}
}
