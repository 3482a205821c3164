// Package estimate composes the coordinate store, distance engine, tariff
// table, and calendar rules into end-to-end shipping estimates.
package estimate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/couchcryptid/shipping-estimate-service/internal/domain"
	"github.com/couchcryptid/shipping-estimate-service/internal/observability"
	"github.com/couchcryptid/shipping-estimate-service/internal/zipstore"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// CoordinateSource supplies the loaded coordinate store.
type CoordinateSource interface {
	Get(ctx context.Context) (*zipstore.Store, error)
}

// DistanceCalculator returns the distance in miles between two coordinates.
type DistanceCalculator interface {
	Distance(a, b domain.Coordinate) float64
}

// Publisher receives every successful estimate. Implementations must not block.
type Publisher interface {
	Publish(ctx context.Context, est domain.ShippingEstimate)
}

// Estimator produces shipping estimates. It holds no per-request state and
// is safe for concurrent use.
type Estimator struct {
	coords    CoordinateSource
	distance  DistanceCalculator
	publisher Publisher
	clock     clockwork.Clock
	location  *time.Location
	newID     func() string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// Option customizes an Estimator.
type Option func(*Estimator)

// WithClock sets the time source for ship dates.
func WithClock(c clockwork.Clock) Option {
	return func(e *Estimator) { e.clock = c }
}

// WithLocation sets the zone in which ship dates are evaluated.
func WithLocation(loc *time.Location) Option {
	return func(e *Estimator) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithPublisher forwards successful estimates to p.
func WithPublisher(p Publisher) Option {
	return func(e *Estimator) { e.publisher = p }
}

// New creates an Estimator. Ship dates default to the real clock in UTC.
func New(coords CoordinateSource, distance DistanceCalculator, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Estimator {
	e := &Estimator{
		coords:   coords,
		distance: distance,
		clock:    clockwork.NewRealClock(),
		location: time.UTC,
		newID:    uuid.NewString,
		logger:   logger,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate quotes every service for the route between two postal codes,
// shipping today.
//
// Errors:
//   - domain.ErrUnknownPostalCode when either code is not in the dataset.
//   - *domain.DatasetLoadError when the dataset could not be loaded.
//   - domain.ErrCalculation for any other fault; details are logged only.
func (e *Estimator) Estimate(ctx context.Context, origin, destination string) (domain.ShippingEstimate, error) {
	start := time.Now()
	defer func() { e.metrics.EstimateDuration.Observe(time.Since(start).Seconds()) }()

	store, err := e.coords.Get(ctx)
	if err != nil {
		e.metrics.EstimateRequests.WithLabelValues("unavailable").Inc()
		return domain.ShippingEstimate{}, err
	}

	originCode := domain.NormalizePostalCode(origin)
	destCode := domain.NormalizePostalCode(destination)
	originCoord, okOrigin := store.Lookup(string(originCode))
	destCoord, okDest := store.Lookup(string(destCode))
	if !okOrigin || !okDest {
		e.metrics.EstimateRequests.WithLabelValues("unknown_postal_code").Inc()
		return domain.ShippingEstimate{}, fmt.Errorf("%w: %s -> %s", domain.ErrUnknownPostalCode, originCode, destCode)
	}

	shipDate := e.clock.Now().In(e.location)
	est, err := e.calculate(originCoord, destCoord, shipDate)
	if err != nil {
		e.logger.Error("estimate calculation failed",
			"origin", originCode,
			"destination", destCode,
			"ship_date", shipDate.Format(time.DateOnly),
			"error", err,
		)
		e.metrics.EstimateRequests.WithLabelValues("error").Inc()
		return domain.ShippingEstimate{}, domain.ErrCalculation
	}

	est.ID = e.newID()
	est.Origin = originCode
	est.Destination = destCode

	e.metrics.EstimateRequests.WithLabelValues("success").Inc()
	e.metrics.EstimatesByTier.WithLabelValues(string(est.Tier)).Inc()
	e.logger.Debug("estimate computed",
		"estimate_id", est.ID,
		"origin", originCode,
		"destination", destCode,
		"distance_miles", est.DistanceMiles,
		"tier", est.Tier,
		"peak_season", est.PeakSeason,
	)

	if e.publisher != nil {
		e.publisher.Publish(ctx, est)
	}
	return est, nil
}

var errNoOfferings = errors.New("no service offerings")

// calculate runs the distance, tariff, and calendar steps. Panics are
// recovered and returned as errors so one bad request cannot take down the
// process.
func (e *Estimator) calculate(origin, dest domain.Coordinate, shipDate time.Time) (est domain.ShippingEstimate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	miles := e.distance.Distance(origin, dest)
	if math.IsNaN(miles) || math.IsInf(miles, 0) || miles < 0 {
		return domain.ShippingEstimate{}, fmt.Errorf("invalid distance %v", miles)
	}

	tier := domain.TierForDistance(miles)
	offerings := domain.OfferingsFor(tier)
	if len(offerings) == 0 {
		return domain.ShippingEstimate{}, fmt.Errorf("%w for tier %q", errNoOfferings, tier)
	}

	ship := domain.NewShipContext(shipDate, origin, dest)
	estimates := make([]domain.ServiceEstimate, 0, len(offerings))
	for _, o := range offerings {
		days := ship.AdjustedDays(o.BaseDays, miles)
		deliverBy := domain.BusinessDayAfter(shipDate, days)
		estimates = append(estimates, domain.ServiceEstimate{
			ServiceName:  o.Name,
			DeliveryDate: deliverBy.Format(domain.DeliveryDateLayout),
			DeliveryDays: days,
			Cost:         o.Price,
			DeliverBy:    deliverBy,
		})
	}

	est = domain.ShippingEstimate{
		Tier:          tier,
		ShipDate:      shipDate,
		DistanceMiles: roundTenth(miles),
		Estimates:     estimates,
		PeakSeason:    ship.InPeak,
	}
	if ship.InPeak {
		name := ship.Peak.Name
		est.PeakType = &name
	}
	return est, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
