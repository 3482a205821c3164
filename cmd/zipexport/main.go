// Command zipexport loads a postal code dataset from any supported source and
// writes it as a canonical zip,lat,lng CSV, the format the service loads
// fastest. Codes are normalized and invalid rows dropped on the way through.
//
// Usage:
//
//	go run ./cmd/zipexport \
//	  -source data/tl_2020_us_zcta520.dbf \
//	  -out Data/uszips.csv
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/couchcryptid/shipping-estimate-service/internal/zipstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	source := flag.String("source", "", "postal code dataset: CSV, DBF, or postgres:// DSN")
	out := flag.String("out", "", "output CSV path")
	flag.Parse()

	if *source == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -source, -out")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store, err := zipstore.Load(context.Background(), *source, logger)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close()

	if err := writeCSV(f, store); err != nil {
		return err
	}
	fmt.Printf("Wrote %d postal codes to %s\n", store.Len(), *out)
	return f.Close()
}

// writeCSV emits codes in sorted order so exports diff cleanly.
func writeCSV(w io.Writer, store *zipstore.Store) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"zip", "lat", "lng"}); err != nil {
		return err
	}
	for _, code := range store.Codes() {
		c, _ := store.Lookup(string(code))
		if err := cw.Write([]string{
			string(code),
			strconv.FormatFloat(c.Lat, 'f', -1, 64),
			strconv.FormatFloat(c.Lon, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
