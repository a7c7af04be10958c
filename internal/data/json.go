package data

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ReadJSON parses a JSON array of option records.
func ReadJSON(r io.Reader) ([]OptionRecord, error) {
	var out []OptionRecord
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decode json")
	}
	for i := range out {
		out[i].Type = normaliseType(out[i].Type)
	}
	return out, nil
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []OptionRecord) error {
	if records == nil {
		records = []OptionRecord{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode json")
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return errors.Wrap(err, "write json")
}
