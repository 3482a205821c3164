package zipstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func loadCSVFile(path string) (*builder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f)
}

// readCSV parses a header-led CSV with zip, latitude, and longitude columns
// in any position. Extra columns are ignored.
func readCSV(r io.Reader) (*builder, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty dataset")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	zipIdx := columnIndex(header, zipColumns)
	latIdx := columnIndex(header, latColumns)
	lonIdx := columnIndex(header, lonColumns)
	if zipIdx < 0 || latIdx < 0 || lonIdx < 0 {
		return nil, fmt.Errorf("header %v must name zip, lat, and lng columns", header)
	}
	width := max(zipIdx, latIdx, lonIdx) + 1

	b := newBuilder()
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) < width {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, width, len(rec))
		}

		if strings.TrimSpace(rec[latIdx]) == "" || strings.TrimSpace(rec[lonIdx]) == "" {
			b.skipped++
			continue
		}
		lat, err := parseCoord(rec[latIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := parseCoord(rec[lonIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}
		b.add(rec[zipIdx], lat, lon)
	}
	return b, nil
}

func parseCoord(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
