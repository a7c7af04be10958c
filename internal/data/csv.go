package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// CSVHeader is written as the first row of every CSV output and skipped on input.
var CSVHeader = []string{"Type", "Asset", "Strike", "Time", "Rate", "Price", "Volatility"}

// minCSVFields is type, asset, strike, time, rate and price.
const minCSVFields = 6

// ReadCSV parses option records. The first row is treated as a header.
//
// Rows with six fields carry a price; rows with seven carry price and
// volatility, where an empty cell marks the unknown value. A row that cannot be
// parsed is returned as a record with Error set so that batch processing can
// count it and move on.
func ReadCSV(r io.Reader) ([]OptionRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read csv header")
	}

	var out []OptionRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, errors.Wrap(err, "read csv")
		}
		line, _ := cr.FieldPos(0)

		if isBlank(row) {
			continue
		}

		rec, err := parseCSVRow(row)
		if err != nil {
			rec.Error = fmt.Sprintf("line %d: %v", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseCSVRow(row []string) (OptionRecord, error) {
	var rec OptionRecord
	if len(row) < minCSVFields {
		return rec, errors.Errorf("expected at least %d fields, got %d", minCSVFields, len(row))
	}

	rec.Type = normaliseType(row[0])

	targets := []struct {
		name string
		dst  *float64
	}{
		{"asset price", &rec.Asset},
		{"strike price", &rec.Strike},
		{"time to expiry", &rec.Time},
		{"risk-free rate", &rec.Rate},
	}
	for i, t := range targets {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return rec, errors.Errorf("invalid %s %q", t.name, row[i+1])
		}
		*t.dst = v
	}

	var err error
	if rec.Price, err = optionalFloat(row[5]); err != nil {
		return rec, errors.Errorf("invalid price %q", row[5])
	}
	if len(row) > minCSVFields {
		if rec.Volatility, err = optionalFloat(row[6]); err != nil {
			return rec, errors.Errorf("invalid volatility %q", row[6])
		}
	}
	return rec, nil
}

func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// WriteCSV writes records with CSVHeader. Unknown values become empty cells.
func WriteCSV(w io.Writer, records []OptionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, rec := range records {
		row := []string{
			rec.DisplayType(),
			formatFloat(rec.Asset),
			formatFloat(rec.Strike),
			formatFloat(rec.Time),
			formatFloat(rec.Rate),
			formatOptional(rec.Price),
			formatOptional(rec.Volatility),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// formatFloat renders the shortest decimal that reads back to v, without exponent.
func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return decimal.NewFromFloat(v).String()
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
