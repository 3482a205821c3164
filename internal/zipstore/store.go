// Package zipstore resolves postal codes to coordinates from an in-memory
// table built once from a dataset.
package zipstore

import (
	"slices"

	"github.com/couchcryptid/shipping-estimate-service/internal/domain"
)

// Store is an immutable postal code to coordinate table. Lookups are safe
// for concurrent use without locking.
type Store struct {
	source string
	coords map[domain.PostalCode]domain.Coordinate
}

// NewStore takes ownership of coords; the caller must not modify it afterwards.
func NewStore(source string, coords map[domain.PostalCode]domain.Coordinate) *Store {
	if coords == nil {
		coords = map[domain.PostalCode]domain.Coordinate{}
	}
	return &Store{source: source, coords: coords}
}

// Lookup normalizes code and returns its coordinate. A miss is reported with
// ok == false rather than an error.
func (s *Store) Lookup(code string) (domain.Coordinate, bool) {
	c, ok := s.coords[domain.NormalizePostalCode(code)]
	return c, ok
}

// Len returns the number of postal codes held.
func (s *Store) Len() int { return len(s.coords) }

// Source returns the dataset the store was loaded from.
func (s *Store) Source() string { return s.source }

// Codes returns every postal code in ascending order.
func (s *Store) Codes() []domain.PostalCode {
	codes := make([]domain.PostalCode, 0, len(s.coords))
	for c := range s.coords {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}
