package domain

import "time"

// DeliveryDateLayout renders delivery dates as "January 02, 2006".
const DeliveryDateLayout = "January 02, 2006"

// ServiceEstimate is the quote for one service on one route.
type ServiceEstimate struct {
	ServiceName  string    `json:"service_name"`
	DeliveryDate string    `json:"delivery_date"`
	DeliveryDays int       `json:"delivery_days"`
	Cost         float64   `json:"cost"`
	DeliverBy    time.Time `json:"-"`
}

// ShippingEstimate is the full answer for an origin/destination pair. It is
// computed per request and never stored.
type ShippingEstimate struct {
	ID            string            `json:"-"`
	Origin        PostalCode        `json:"-"`
	Destination   PostalCode        `json:"-"`
	Tier          Tier              `json:"-"`
	ShipDate      time.Time         `json:"-"`
	DistanceMiles float64           `json:"distance_miles"`
	Estimates     []ServiceEstimate `json:"estimates"`
	PeakSeason    bool              `json:"peak_season"`
	PeakType      *string           `json:"peak_type"`
}
