// Package psgccsv reads the PSA PSGC publication datafile exported as CSV.
package psgccsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sismika/psgc-geo-etl/internal/domain"
)

// Column names in the datafile header.
const (
	colCode        = "psgc"
	colName        = "name"
	colLevel       = "geog"
	colOldNames    = "old_names"
	colCityClass   = "city_class"
	colIncomeClass = "income_class"
	colUrbanRural  = "urban_rural"
	colPopulation  = "population_2020"
)

// Reader yields location records from a PSGC CSV. Columns are located by
// header name; missing optional columns read as empty.
type Reader struct {
	csv    *csv.Reader
	index  map[string]int
	line   int
	header bool
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &Reader{csv: cr}
}

// Read returns the next record with a non-empty code, or io.EOF. Records
// carry StatusAddressParsed and an empty long name.
func (r *Reader) Read() (domain.LocationRecord, error) {
	if !r.header {
		if err := r.readHeader(); err != nil {
			return domain.LocationRecord{}, err
		}
	}

	for {
		row, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return domain.LocationRecord{}, io.EOF
			}
			return domain.LocationRecord{}, fmt.Errorf("read psgc csv: %w", err)
		}
		r.line++

		code := r.field(row, colCode)
		if code == "" {
			continue
		}
		return domain.LocationRecord{
			Code:            domain.Code(code),
			Name:            r.field(row, colName),
			GeographicLevel: r.field(row, colLevel),
			OldNames:        r.field(row, colOldNames),
			CityClass:       r.field(row, colCityClass),
			IncomeClass:     r.field(row, colIncomeClass),
			IsRural:         r.field(row, colUrbanRural) == "R",
			Population:      parsePopulation(r.field(row, colPopulation)),
			Status:          domain.StatusAddressParsed,
		}, nil
	}
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("read psgc csv header: empty file")
		}
		return fmt.Errorf("read psgc csv header: %w", err)
	}
	r.index = make(map[string]int, len(header))
	for i, name := range header {
		// Excel exports prefix the first column with a byte order mark.
		name = strings.TrimPrefix(name, "\uFEFF")
		r.index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := r.index[colCode]; !ok {
		return fmt.Errorf("read psgc csv header: missing %q column", colCode)
	}
	r.header = true
	return nil
}

func (r *Reader) field(row []string, col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parsePopulation reads the leading integer of s after removing thousands
// separators. Anything without leading digits is 0.
func parsePopulation(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
