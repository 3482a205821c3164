package zipstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Valentin-Kaiser/go-dbase/dbase"
)

// loadDBF reads a dBase attribute table such as the Census ZCTA shapefile
// .dbf, where coordinates are stored as signed text ("+40.7506"). Shapefile
// tables are dBase III (0x03), which go-dbase treats as untested.
func loadDBF(path string) (*builder, error) {
	table, err := dbase.OpenTable(&dbase.Config{
		Filename:   path,
		TrimSpaces: true,
		Untested:   true,
		ReadOnly:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("open dbf: %w", err)
	}
	defer table.Close()

	cols, err := resolveDBFColumns(table.Columns())
	if err != nil {
		return nil, err
	}

	b := newBuilder()
	for !table.EOF() {
		row, err := table.Next()
		if err != nil {
			return nil, fmt.Errorf("read dbf row: %w", err)
		}
		if row.Deleted {
			continue
		}
		if err := cols.add(b, row.Values()); err != nil {
			return nil, fmt.Errorf("dbf row %d: %w", row.Position, err)
		}
	}
	return b, nil
}

// dbfColumns holds the field positions of the zip, latitude, and longitude
// columns, resolved once from the table header.
type dbfColumns struct {
	zip, lat, lon int
}

func resolveDBFColumns(columns []*dbase.Column) (dbfColumns, error) {
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Name()
	}
	cols := dbfColumns{
		zip: columnIndex(header, zipColumns),
		lat: columnIndex(header, latColumns),
		lon: columnIndex(header, lonColumns),
	}
	if cols.zip < 0 || cols.lat < 0 || cols.lon < 0 {
		return dbfColumns{}, fmt.Errorf("fields %v must include zip, lat, and lng", header)
	}
	return cols, nil
}

// add decodes one row's values. Blank coordinates are skipped like any other
// unusable record.
func (c dbfColumns) add(b *builder, values []any) error {
	if len(values) <= max(c.zip, c.lat, c.lon) {
		return fmt.Errorf("expected at least %d fields, got %d", max(c.zip, c.lat, c.lon)+1, len(values))
	}
	if blankCell(values[c.lat]) || blankCell(values[c.lon]) {
		b.skipped++
		return nil
	}
	lat, err := dbfFloat(values[c.lat])
	if err != nil {
		return fmt.Errorf("latitude: %w", err)
	}
	lon, err := dbfFloat(values[c.lon])
	if err != nil {
		return fmt.Errorf("longitude: %w", err)
	}
	b.add(dbfString(values[c.zip]), lat, lon)
	return nil
}

func blankCell(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func dbfString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func dbfFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, fmt.Errorf("unsupported field type %T", v)
	}
}
