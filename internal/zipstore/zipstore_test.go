package zipstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Valentin-Kaiser/go-dbase/dbase"
	"github.com/couchcryptid/shipping-estimate-service/internal/domain"
	"github.com/couchcryptid/shipping-estimate-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// uszips mirrors the column layout of the simplemaps US ZIP export.
const uszips = `"zip","lat","lng","city","state_id"
"00601",18.18027,-66.75266,"Adjuntas","PR"
"1001",42.06262,-72.62521,"Agawam","MA"
2134.0,42.35977,-71.13285,"Allston","MA"
"10001",40.75064,-73.99718,"New York","NY"
"10002",40.71571,-73.98633,"New York","NY"
"90210",34.10307,-118.41050,"Beverly Hills","CA"
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadCSV_NormalizesZipField(t *testing.T) {
	b, err := readCSV(strings.NewReader(uszips))
	require.NoError(t, err)

	assert.Len(t, b.coords, 6)
	assert.Zero(t, b.skipped)
	assert.Contains(t, b.coords, domain.PostalCode("00601"))
	assert.Contains(t, b.coords, domain.PostalCode("01001"))
	assert.Contains(t, b.coords, domain.PostalCode("02134"))
	assert.Equal(t, domain.Coordinate{Lat: 34.10307, Lon: -118.41050}, b.coords["90210"])
}

func TestReadCSV_ColumnOrderAndAliases(t *testing.T) {
	data := "Longitude,ZIP,Latitude\n-73.99718,10001,40.75064\n"
	b, err := readCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinate{Lat: 40.75064, Lon: -73.99718}, b.coords["10001"])
}

func TestReadCSV_SkipsUnnormalizableZips(t *testing.T) {
	data := "zip,lat,lng\n123456,1,2\nABCDE,1,2\n10001,40.7,-74.0\n"
	b, err := readCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, b.coords, 1)
	assert.Equal(t, 2, b.skipped)
}

func TestReadCSV_SkipsImpossibleCoordinates(t *testing.T) {
	data := "zip,lat,lng\n10001,91,-74.0\n10002,40.7,-181\n10003,NaN,-74.0\n10004,40.7,-74.0\n"
	b, err := readCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, b.coords, 1)
	assert.Contains(t, b.coords, domain.PostalCode("10004"))
	assert.Equal(t, 3, b.skipped)
}

func TestReadCSV_SkipsBlankCoordinates(t *testing.T) {
	data := "zip,lat,lng\n10001,40.7,-74.0\n10002,40.7,\n10003, ,-73.9\n"
	b, err := readCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, b.coords, 1)
	assert.Contains(t, b.coords, domain.PostalCode("10001"))
	assert.Equal(t, 2, b.skipped)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{"empty", "", "empty dataset"},
		{"missing longitude column", "zip,lat\n10001,40.7\n", "must name zip, lat, and lng"},
		{"bad latitude", "zip,lat,lng\n10001,north,-74\n", "line 2: latitude"},
		{"bad longitude", "zip,lat,lng\n10001,40.7,-74\n10002,40.7,west\n", "line 3: longitude"},
		{"short row", "zip,lat,lng\n10001,40.7\n", "line 2: expected at least 3 fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readCSV(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_CSVFile(t *testing.T) {
	path := writeFile(t, "uszips.csv", uszips)

	store, err := Load(context.Background(), path, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 6, store.Len())
	assert.Equal(t, path, store.Source())

	c, ok := store.Lookup("10001")
	require.True(t, ok)
	assert.InDelta(t, 40.75064, c.Lat, 1e-9)
}

func TestLoad_MissingFileIsDatasetLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")

	_, err := Load(context.Background(), path, discardLogger())

	var loadErr *domain.DatasetLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, path, loadErr.Source)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_CorruptFileIsDatasetLoadError(t *testing.T) {
	path := writeFile(t, "bad.csv", "zip,lat,lng\n10001,x,y\n")

	_, err := Load(context.Background(), path, discardLogger())

	var loadErr *domain.DatasetLoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestLoad_HeaderOnlyIsDatasetLoadError(t *testing.T) {
	path := writeFile(t, "empty.csv", "zip,lat,lng\n")

	_, err := Load(context.Background(), path, discardLogger())

	var loadErr *domain.DatasetLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, errEmptyDataset)
}

func TestSourceLoader_RecordsMetrics(t *testing.T) {
	path := writeFile(t, "uszips.csv", uszips)
	metrics := observability.NewMetricsForTesting()

	store, err := SourceLoader(path, discardLogger(), metrics)(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, float64(store.Len()), testutil.ToFloat64(metrics.PostalCodesLoaded), 0)
}

func TestStore_LookupNormalizesInput(t *testing.T) {
	store := NewStore("test", map[domain.PostalCode]domain.Coordinate{
		"01001": {Lat: 42.06, Lon: -72.62},
	})

	for _, in := range []string{"01001", "1001", " 1001 ", `"01001"`, "1001.0"} {
		_, ok := store.Lookup(in)
		assert.True(t, ok, in)
	}

	_, ok := store.Lookup("99999")
	assert.False(t, ok)
}

func TestStore_Codes(t *testing.T) {
	store := NewStore("test", map[domain.PostalCode]domain.Coordinate{
		"90210": {}, "00601": {}, "10001": {},
	})
	assert.Equal(t, []domain.PostalCode{"00601", "10001", "90210"}, store.Codes())
	assert.Equal(t, 0, NewStore("nil", nil).Len())
}

// writeDBF creates a dBase III table like the Census ZCTA shapefile
// attribute file, with every field stored as character data.
func writeDBF(t *testing.T, names []string, rows [][]string) string {
	t.Helper()
	// go-dbase upper-cases the whole Filename on create, directories
	// included, so create the table relative to the temp dir.
	dir := t.TempDir()
	t.Chdir(dir)

	columns := make([]*dbase.Column, len(names))
	for i, name := range names {
		col, err := dbase.NewColumn(name, dbase.Character, 12, 0, false)
		require.NoError(t, err)
		columns[i] = col
	}
	table, err := dbase.NewTable(dbase.FoxBasePlus, &dbase.Config{
		Filename:   "zcta.dbf",
		Converter:  dbase.NewDefaultConverter(charmap.Windows1252),
		TrimSpaces: true,
	}, columns, 0, nil)
	require.NoError(t, err)

	for _, values := range rows {
		// Row maps are keyed by the stored, space-padded column names.
		fields := make(map[string]any, len(values))
		for i, col := range table.Columns() {
			fields[col.Name()] = values[i]
		}
		row, err := table.RowFromMap(fields)
		require.NoError(t, err)
		require.NoError(t, row.Add())
	}
	require.NoError(t, table.Close())
	return filepath.Join(dir, "ZCTA.DBF")
}

func TestLoad_DBaseIIITable(t *testing.T) {
	path := writeDBF(t,
		[]string{"ZCTA5CE20", "INTPTLAT20", "INTPTLON20"},
		[][]string{
			{"10001", "+40.7506", "-073.9972"},
			{"2109", "+42.3555", "-071.0565"},
			{"10003", "", ""},
		},
	)
	require.NoError(t, os.Chmod(path, 0o400))

	store, err := Load(context.Background(), path, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	boston, ok := store.Lookup("02109")
	require.True(t, ok, "short codes are padded on load")
	assert.InDelta(t, 42.3555, boston.Lat, 1e-9)
	assert.InDelta(t, -71.0565, boston.Lon, 1e-9)

	ny, ok := store.Lookup("10001")
	require.True(t, ok)
	assert.InDelta(t, 40.7506, ny.Lat, 1e-9)
	assert.InDelta(t, -73.9972, ny.Lon, 1e-9)

	_, ok = store.Lookup("10003")
	assert.False(t, ok, "rows without coordinates are skipped")
}

func TestLoad_DBFAliasColumnsResolvedOnce(t *testing.T) {
	// Both LAT and INTPTLAT20 are latitude aliases; the leftmost column
	// wins for every row.
	path := writeDBF(t,
		[]string{"ZIP", "LAT", "INTPTLAT20", "LNG"},
		[][]string{
			{"10001", "40.7506", "+1.0", "-73.9972"},
			{"10002", "40.7157", "+2.0", "-73.9863"},
			{"10003", "40.7317", "+3.0", "-73.9892"},
		},
	)

	store, err := Load(context.Background(), path, discardLogger())
	require.NoError(t, err)

	for _, code := range []string{"10001", "10002", "10003"} {
		c, ok := store.Lookup(code)
		require.True(t, ok, code)
		assert.InDelta(t, 40.7, c.Lat, 0.05, code)
	}
}

func TestLoad_DBFMissingCoordinateColumn(t *testing.T) {
	path := writeDBF(t, []string{"ZCTA5CE20", "INTPTLAT20"}, [][]string{{"10001", "+40.7506"}})

	_, err := Load(context.Background(), path, discardLogger())

	var loadErr *domain.DatasetLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "must include zip, lat, and lng")
}

func TestDBFColumns_Add(t *testing.T) {
	cols := dbfColumns{zip: 0, lat: 1, lon: 2}

	t.Run("numeric fields", func(t *testing.T) {
		b := newBuilder()
		require.NoError(t, cols.add(b, []any{float64(1001), float64(42.06), float64(-72.62)}))
		assert.Equal(t, domain.Coordinate{Lat: 42.06, Lon: -72.62}, b.coords["01001"])
	})

	t.Run("blank coordinate is skipped", func(t *testing.T) {
		b := newBuilder()
		require.NoError(t, cols.add(b, []any{"10001", "  ", "-74.0"}))
		require.NoError(t, cols.add(b, []any{"10002", "40.7", nil}))
		assert.Empty(t, b.coords)
		assert.Equal(t, 2, b.skipped)
	})

	t.Run("unparseable latitude", func(t *testing.T) {
		err := cols.add(newBuilder(), []any{"10001", "n/a", "-74.0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "latitude")
	})

	t.Run("short row", func(t *testing.T) {
		require.Error(t, cols.add(newBuilder(), []any{"10001", "40.7"}))
	})
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres://db:5432/zips", redact("postgres://user:secret@db:5432/zips"))
	assert.Equal(t, "postgresql://db/zips", redact("postgresql://db/zips"))
	assert.Equal(t, "Data/uszips.csv", redact("Data/uszips.csv"))
}

func TestLazy_LoadsOnceUnderConcurrency(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	want := NewStore("test", map[domain.PostalCode]domain.Coordinate{"10001": {}})

	lazy := NewLazy(func(context.Context) (*Store, error) {
		calls.Add(1)
		<-release
		return want, nil
	})
	assert.False(t, lazy.Loaded())
	require.Error(t, lazy.CheckReadiness(context.Background()))

	var wg sync.WaitGroup
	results := make([]*Store, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := lazy.Get(context.Background())
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, s := range results {
		assert.Same(t, want, s)
	}
	assert.True(t, lazy.Loaded())
	assert.NoError(t, lazy.CheckReadiness(context.Background()))
}

func TestLazy_FailureIsSticky(t *testing.T) {
	var calls atomic.Int32
	boom := &domain.DatasetLoadError{Source: "x.csv", Err: errors.New("boom")}
	lazy := NewLazy(func(context.Context) (*Store, error) {
		calls.Add(1)
		return nil, boom
	})

	_, err1 := lazy.Get(context.Background())
	_, err2 := lazy.Get(context.Background())

	assert.Same(t, boom, err1)
	assert.Same(t, boom, err2)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, lazy.Loaded())
}
