// Command quote computes a single shipping estimate from a local postal code
// dataset and prints it as JSON. It runs the same estimator the service uses,
// so it is handy for checking a dataset or reproducing a customer quote.
//
// Usage:
//
//	go run ./cmd/quote \
//	  -data Data/uszips.csv \
//	  -origin 10001 -dest 90210 \
//	  -date 2024-12-20
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/shipping-estimate-service/internal/distance"
	"github.com/couchcryptid/shipping-estimate-service/internal/domain"
	"github.com/couchcryptid/shipping-estimate-service/internal/estimate"
	"github.com/couchcryptid/shipping-estimate-service/internal/observability"
	"github.com/couchcryptid/shipping-estimate-service/internal/zipstore"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	data := flag.String("data", "Data/uszips.csv", "postal code dataset: CSV, DBF, or postgres:// DSN")
	origin := flag.String("origin", "", "origin 5-digit postal code")
	dest := flag.String("dest", "", "destination 5-digit postal code")
	date := flag.String("date", "", "ship date as YYYY-MM-DD (defaults to today)")
	zone := flag.String("tz", "UTC", "time zone the ship date is taken in")
	flag.Parse()

	originCode, destCode, err := domain.ValidateRoute(*origin, *dest)
	if err != nil {
		flag.Usage()
		return err
	}

	loc, err := time.LoadLocation(*zone)
	if err != nil {
		return fmt.Errorf("invalid -tz %q: %w", *zone, err)
	}

	opts := []estimate.Option{estimate.WithLocation(loc)}
	if *date != "" {
		shipDate, err := time.ParseInLocation(time.DateOnly, *date, loc)
		if err != nil {
			return fmt.Errorf("invalid -date %q: %w", *date, err)
		}
		opts = append(opts, estimate.WithClock(clockwork.NewFakeClockAt(shipDate)))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewMetricsForTesting()

	coords := zipstore.NewLazy(zipstore.SourceLoader(*data, logger, metrics))
	est := estimate.New(coords, distance.NewEngine(distance.DefaultCacheSize, metrics), logger, metrics, opts...)

	result, err := est.Estimate(context.Background(), string(originCode), string(destCode))
	if errors.Is(err, domain.ErrUnknownPostalCode) {
		return fmt.Errorf("%s or %s is not in %s", originCode, destCode, *data)
	}
	if err != nil {
		return err
	}
	return writeQuote(os.Stdout, result)
}

func writeQuote(w io.Writer, est domain.ShippingEstimate) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(est)
}
