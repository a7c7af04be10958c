package data

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Format identifies a batch file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatFromPath infers the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.Errorf("unsupported file extension %q (want .csv or .json)", filepath.Ext(path))
}

// Read loads option records from a .csv or .json file.
func Read(path string) ([]OptionRecord, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	if format == FormatJSON {
		return ReadJSON(f)
	}
	return ReadCSV(f)
}

// Write stores option records in a .csv or .json file, creating parent directories.
func Write(path string, records []OptionRecord) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create output dir %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	if format == FormatJSON {
		err = WriteJSON(f, records)
	} else {
		err = WriteCSV(f, records)
	}
	if err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}
