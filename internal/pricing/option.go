package pricing

// OptionSpec describes a European option with a known volatility.
type OptionSpec struct {
	IsCall     bool    // true for call, false for put
	Spot       float64 // underlying price
	Strike     float64 // strike price
	Expiry     float64 // time to expiry in years
	Rate       float64 // risk-free rate, continuously compounded
	Volatility float64 // annualized volatility as a decimal
}

// Price returns the Black-Scholes price of the option.
func (o OptionSpec) Price() (float64, error) {
	return BlackScholesPrice(o.IsCall, o.Spot, o.Strike, o.Expiry, o.Rate, o.Volatility)
}

// Vega returns the option vega per volatility point.
func (o OptionSpec) Vega() (float64, error) {
	return BlackScholesVega(o.Spot, o.Strike, o.Expiry, o.Rate, o.Volatility)
}

// MarketObservation is an option quote whose volatility is unknown.
type MarketObservation struct {
	IsCall bool
	Spot   float64
	Strike float64
	Expiry float64
	Rate   float64
	Price  float64 // observed market price
}

// Solve recovers the implied volatility of the observation.
func (m MarketObservation) Solve(method Method) (Solution, error) {
	return Solve(m.IsCall, m.Spot, m.Strike, m.Expiry, m.Rate, m.Price, method)
}

// WithVolatility returns the specification of the observed option priced at sigma.
func (m MarketObservation) WithVolatility(sigma float64) OptionSpec {
	return OptionSpec{
		IsCall:     m.IsCall,
		Spot:       m.Spot,
		Strike:     m.Strike,
		Expiry:     m.Expiry,
		Rate:       m.Rate,
		Volatility: sigma,
	}
}
