// Package report renders evaluated option records for the console.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/contactkeval/iv-calculator/internal/batch"
	"github.com/contactkeval/iv-calculator/internal/data"
)

// WriteSingle prints the full result block for one evaluated record.
func WriteSingle(w io.Writer, rec *data.OptionRecord) error {
	if !evaluated(rec) {
		return errors.New("record is not evaluated")
	}

	lines := []string{
		"Option: " + rec.DisplayType(),
		"Asset price: " + num(rec.Asset),
		"Strike price: " + num(rec.Strike),
		"Time to expiry: " + num(rec.Time) + " years",
		"Risk-free rate: " + num(rec.Rate),
	}
	if rec.Computed == data.FieldPrice {
		lines = append(lines,
			"Volatility: "+num(*rec.Volatility),
			"Option price: "+fixed(*rec.Price),
		)
	} else {
		lines = append(lines,
			"Option price: "+num(*rec.Price),
			"Implied volatility: "+fixed(*rec.Volatility),
		)
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatchLine prints the one-line result of a batch record, or its error.
func WriteBatchLine(w io.Writer, rec *data.OptionRecord) error {
	terms := fmt.Sprintf("%s, S=%s, K=%s, T=%s, r=%s",
		rec.DisplayType(), num(rec.Asset), num(rec.Strike), num(rec.Time), num(rec.Rate))

	var err error
	switch {
	case rec.Error != "":
		_, err = fmt.Fprintf(w, "Error processing option %s: %s\n", terms, rec.Error)
	case !evaluated(rec):
		_, err = fmt.Fprintf(w, "Error processing option %s: record is not evaluated\n", terms)
	case rec.Computed == data.FieldPrice:
		_, err = fmt.Fprintf(w, "Option: %s, volatility=%s, price=%s\n", terms, num(*rec.Volatility), num(*rec.Price))
	default:
		_, err = fmt.Fprintf(w, "Option: %s, price=%s, implied volatility=%s\n", terms, num(*rec.Price), num(*rec.Volatility))
	}
	return err
}

// WriteSummary prints the closing line of a batch run.
func WriteSummary(w io.Writer, s batch.Summary) error {
	_, err := fmt.Fprintf(w, "Batch processing complete. Processed %d items with %d errors.\n", s.Processed, s.Errors)
	return err
}

func evaluated(rec *data.OptionRecord) bool {
	return rec.Computed != "" && rec.Price != nil && rec.Volatility != nil
}

// num renders v with six significant digits.
func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// fixed renders v with six decimal places.
func fixed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return num(v)
	}
	return decimal.NewFromFloat(v).StringFixed(6)
}
