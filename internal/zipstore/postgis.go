package zipstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostGIS stores points as (x=longitude, y=latitude).
const selectZipcodes = `SELECT zip, ST_Y(location), ST_X(location) FROM zipcodes;`

// loadPostGIS reads every row of a PostGIS zipcodes(zip, location geometry(Point, 4326)) table.
func loadPostGIS(ctx context.Context, dsn string) (*builder, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, selectZipcodes)
	if err != nil {
		return nil, fmt.Errorf("query zipcodes: %w", err)
	}
	defer rows.Close()

	b := newBuilder()
	for rows.Next() {
		var (
			zip      string
			lat, lon float64
		)
		if err := rows.Scan(&zip, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan zipcode: %w", err)
		}
		b.add(zip, lat, lon)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zipcodes: %w", err)
	}
	return b, nil
}
