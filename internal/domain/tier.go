package domain

// Tier groups routes by distance for pricing.
type Tier string

const (
	TierLocal       Tier = "local"       // up to 150 miles
	TierRegional    Tier = "regional"    // up to 500 miles
	TierNational    Tier = "national"    // up to 1500 miles
	TierContinental Tier = "continental" // beyond 1500 miles
)

// Tier upper bounds in miles, inclusive.
const (
	localMaxMiles    = 150
	regionalMaxMiles = 500
	nationalMaxMiles = 1500
)

// TierForDistance maps a distance in miles to its tier. Boundaries are
// inclusive: exactly 150 miles is still local.
func TierForDistance(miles float64) Tier {
	switch {
	case miles <= localMaxMiles:
		return TierLocal
	case miles <= regionalMaxMiles:
		return TierRegional
	case miles <= nationalMaxMiles:
		return TierNational
	default:
		return TierContinental
	}
}
