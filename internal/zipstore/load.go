package zipstore

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/shipping-estimate-service/internal/domain"
	"github.com/couchcryptid/shipping-estimate-service/internal/observability"
)

// Accepted column names, matched case-insensitively.
var (
	zipColumns = []string{"zip", "zipcode", "zip_code", "zcta5ce10", "zcta5ce20", "geoid10", "geoid20"}
	latColumns = []string{"lat", "latitude", "intptlat10", "intptlat20", "intptlat"}
	lonColumns = []string{"lng", "lon", "long", "longitude", "intptlon10", "intptlon20", "intptlon"}
)

var errEmptyDataset = errors.New("dataset contains no valid postal codes")

// Load reads the dataset named by source into a Store. The source kind is
// picked from its shape: a postgres:// or postgresql:// DSN reads a PostGIS
// zipcodes table, a .dbf path reads a dBase attribute table, and anything
// else is read as CSV. Every failure is returned as *domain.DatasetLoadError.
func Load(ctx context.Context, source string, logger *slog.Logger) (*Store, error) {
	start := time.Now()

	var (
		b   *builder
		err error
	)
	switch {
	case isPostgresDSN(source):
		b, err = loadPostGIS(ctx, source)
	case strings.EqualFold(filepath.Ext(source), ".dbf"):
		b, err = loadDBF(source)
	default:
		b, err = loadCSVFile(source)
	}
	if err != nil {
		return nil, &domain.DatasetLoadError{Source: redact(source), Err: err}
	}
	if len(b.coords) == 0 {
		return nil, &domain.DatasetLoadError{Source: redact(source), Err: errEmptyDataset}
	}

	logger.Info("postal code dataset loaded",
		"source", redact(source),
		"postal_codes", len(b.coords),
		"skipped", b.skipped,
		"duration", time.Since(start),
	)
	return NewStore(redact(source), b.coords), nil
}

// SourceLoader returns a Loader reading source and recording dataset metrics.
func SourceLoader(source string, logger *slog.Logger, metrics *observability.Metrics) Loader {
	return func(ctx context.Context) (*Store, error) {
		start := time.Now()
		store, err := Load(ctx, source, logger)
		if err != nil {
			return nil, err
		}
		metrics.PostalCodesLoaded.Set(float64(store.Len()))
		metrics.DatasetLoadDuration.Set(time.Since(start).Seconds())
		return store, nil
	}
}

// builder accumulates normalized records. Records whose ZIP does not
// normalize to five digits are counted and dropped; later duplicates win.
type builder struct {
	coords  map[domain.PostalCode]domain.Coordinate
	skipped int
}

func newBuilder() *builder {
	return &builder{coords: make(map[domain.PostalCode]domain.Coordinate)}
}

func (b *builder) add(rawZip string, lat, lon float64) {
	code := domain.NormalizePostalCode(rawZip)
	if !code.Valid() || !validCoordinate(lat, lon) {
		b.skipped++
		return
	}
	b.coords[code] = domain.Coordinate{Lat: lat, Lon: lon}
}

// validCoordinate rejects NaN and out-of-range values; NaN fails both comparisons.
func validCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// columnIndex returns the position of the first header matching any alias.
func columnIndex(header []string, aliases []string) int {
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.Trim(h, "\ufeff\"")))
		for _, a := range aliases {
			if name == a {
				return i
			}
		}
	}
	return -1
}

func isPostgresDSN(source string) bool {
	return strings.HasPrefix(source, "postgres://") || strings.HasPrefix(source, "postgresql://")
}

// redact strips credentials from DSNs before they reach logs or errors.
func redact(source string) string {
	if !isPostgresDSN(source) {
		return source
	}
	scheme, rest, _ := strings.Cut(source, "://")
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	return scheme + "://" + rest
}
