// Package data reads and writes batches of option records.
//
// A record carries the contract terms plus a price and a volatility, exactly
// one of which is normally unknown on input. Unknown values are nil.
package data

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/contactkeval/iv-calculator/internal/pricing"
)

// Mode tells which field of a record has to be computed.
type Mode int

const (
	// ModePrice computes the option price from a known volatility.
	ModePrice Mode = iota
	// ModeImpliedVol recovers the volatility from a known price.
	ModeImpliedVol
)

const (
	TypeCall = "call"
	TypePut  = "put"
)

// Values of OptionRecord.Computed.
const (
	FieldPrice      = "price"
	FieldVolatility = "volatility"
)

// OptionRecord is one row of a batch.
type OptionRecord struct {
	Type       string   `json:"type" validate:"oneof=call put"` // "call" or "put"
	Asset      float64  `json:"asset_price"`                    // underlying price
	Strike     float64  `json:"strike_price"`                   // strike price
	Time       float64  `json:"time_to_expiry"`                 // years
	Rate       float64  `json:"risk_free_rate"`                 // decimal
	Price      *float64 `json:"price,omitempty"`
	Volatility *float64 `json:"volatility,omitempty"`
	Computed   string   `json:"computed,omitempty"` // FieldPrice or FieldVolatility once evaluated
	Error      string   `json:"error,omitempty"`    // set when the record could not be read or evaluated
}

var validate = validator.New()

// Float returns a pointer to v, for building records in code.
func Float(v float64) *float64 {
	return &v
}

// IsCall reports whether the record is a call option.
func (r *OptionRecord) IsCall() bool {
	return r.Type == TypeCall
}

// Mode reports which value the record is missing. When both are present the
// price is recomputed from the volatility.
func (r *OptionRecord) Mode() Mode {
	if r.Volatility != nil {
		return ModePrice
	}
	return ModeImpliedVol
}

// Validate normalises the option type and checks that the record has a type
// and at least one of price and volatility. Numeric ranges are left to the
// pricing engine.
func (r *OptionRecord) Validate() error {
	r.Type = normaliseType(r.Type)
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(err, "invalid option record")
	}
	// zero is a valid volatility, so presence is checked on the pointers
	if r.Price == nil && r.Volatility == nil {
		return errors.New("invalid option record: price or volatility is required")
	}
	return nil
}

// Spec returns the record's contract priced at volatility sigma.
func (r *OptionRecord) Spec(sigma float64) pricing.OptionSpec {
	return pricing.OptionSpec{
		IsCall:     r.IsCall(),
		Spot:       r.Asset,
		Strike:     r.Strike,
		Expiry:     r.Time,
		Rate:       r.Rate,
		Volatility: sigma,
	}
}

// Observation returns the record's contract quoted at price.
func (r *OptionRecord) Observation(price float64) pricing.MarketObservation {
	return pricing.MarketObservation{
		IsCall: r.IsCall(),
		Spot:   r.Asset,
		Strike: r.Strike,
		Expiry: r.Time,
		Rate:   r.Rate,
		Price:  price,
	}
}

// DisplayType returns "Call" or "Put", or the raw type when it is neither.
func (r *OptionRecord) DisplayType() string {
	switch normaliseType(r.Type) {
	case TypeCall:
		return "Call"
	case TypePut:
		return "Put"
	}
	return r.Type
}

func normaliseType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
