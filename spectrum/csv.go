package spectrum

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/farcloser/primordium/fault"
)

var (
	errMissingHeader = errors.New("missing header row")
	errUnknownColumn = errors.New("value column must be magnitude or level_db")
)

// ReadCSV reads a two-column spectrum. The header row names the columns: the first is the
// frequency in Hz, the second is either "magnitude" (linear) or "level_db" (decibels).
// Lines starting with '#' are ignored.
func ReadCSV(reader io.Reader) (*Spectrum, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comment = '#'
	csvReader.FieldsPerRecord = 2
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpectrum, errMissingHeader)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	repr, err := parseValueColumn(header[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSpectrum, header[1], err)
	}

	var freqs, values []float64

	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}

		line, _ := csvReader.FieldPos(0)

		freq, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: frequency: %w", ErrInvalidSpectrum, line, err)
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %w", ErrInvalidSpectrum, line, repr, err)
		}

		freqs = append(freqs, freq)
		values = append(values, value)
	}

	return build(repr, freqs, values)
}

func parseValueColumn(name string) (Representation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "magnitude", "mag", "amplitude":
		return Magnitude, nil
	case "level_db", "db", "level", "magnitude_db":
		return LevelDb, nil
	default:
		return 0, errUnknownColumn
	}
}
