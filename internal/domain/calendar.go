package domain

import "time"

// PeakSeason is a yearly window of elevated carrier volume.
type PeakSeason struct {
	Name      string
	Month     time.Month
	StartDay  int
	EndDay    int
	ExtraDays int // 0 means defaultPeakPenalty
}

const defaultPeakPenalty = 1

// peakSeasons is scanned in order and the first match wins. Thanksgiving
// precedes black_friday, so the black_friday window is currently shadowed.
var peakSeasons = []PeakSeason{
	{Name: "thanksgiving", Month: time.November, StartDay: 22, EndDay: 29, ExtraDays: 2},
	{Name: "christmas", Month: time.December, StartDay: 15, EndDay: 25, ExtraDays: 2},
	{Name: "black_friday", Month: time.November, StartDay: 24, EndDay: 27, ExtraDays: 1},
	{Name: "valentines", Month: time.February, StartDay: 10, EndDay: 14, ExtraDays: 1},
	{Name: "mothers_day", Month: time.May, StartDay: 8, EndDay: 12},
}

// Contains reports whether t's month and day fall inside the window.
func (p PeakSeason) Contains(t time.Time) bool {
	day := t.Day()
	return t.Month() == p.Month && day >= p.StartDay && day <= p.EndDay
}

// Penalty is the number of extra transit days added during the season.
func (p PeakSeason) Penalty() int {
	if p.ExtraDays > 0 {
		return p.ExtraDays
	}
	return defaultPeakPenalty
}

// PeakSeasonFor returns the first peak season containing t.
func PeakSeasonFor(t time.Time) (PeakSeason, bool) {
	for _, s := range peakSeasons {
		if s.Contains(t) {
			return s, true
		}
	}
	return PeakSeason{}, false
}

// WeatherZone is a coarse US climate region used for winter delays.
type WeatherZone string

const (
	ZoneNortheast WeatherZone = "northeast"
	ZoneMidwest   WeatherZone = "midwest"
	ZoneSouth     WeatherZone = "south"
	ZoneWest      WeatherZone = "west"
)

// WeatherZoneFor classifies a coordinate. Rules are evaluated in order and
// anything unmatched is west, including the band between 37 and 41 degrees
// north east of -100.
func WeatherZoneFor(c Coordinate) WeatherZone {
	switch {
	case c.Lat > 41 && c.Lon > -100:
		return ZoneNortheast
	case c.Lat > 37 && c.Lon < -100:
		return ZoneMidwest
	case c.Lat < 37 && c.Lon > -100:
		return ZoneSouth
	default:
		return ZoneWest
	}
}

// HasWinterDelay reports whether winter weather slows shipments in the zone.
func (z WeatherZone) HasWinterDelay() bool {
	return z == ZoneMidwest || z == ZoneNortheast
}

func isWinterMonth(m time.Month) bool {
	switch m {
	case time.December, time.January, time.February, time.March:
		return true
	}
	return false
}

const longHaulMiles = 2000

// ShipContext holds the per-shipment factors shared by every service quoted
// for one route and ship date.
type ShipContext struct {
	ShipDate   time.Time
	Peak       PeakSeason
	InPeak     bool
	OriginZone WeatherZone
	DestZone   WeatherZone
}

// NewShipContext evaluates peak season and weather zones once for a route.
func NewShipContext(shipDate time.Time, origin, dest Coordinate) ShipContext {
	peak, inPeak := PeakSeasonFor(shipDate)
	return ShipContext{
		ShipDate:   shipDate,
		Peak:       peak,
		InPeak:     inPeak,
		OriginZone: WeatherZoneFor(origin),
		DestZone:   WeatherZoneFor(dest),
	}
}

// AdjustedDays applies peak, winter, long-haul, and Friday penalties to a
// service's base transit days. The result is never below 1.
func (c ShipContext) AdjustedDays(baseDays int, miles float64) int {
	days := baseDays
	if c.InPeak {
		days += c.Peak.Penalty()
	}
	if isWinterMonth(c.ShipDate.Month()) && (c.OriginZone.HasWinterDelay() || c.DestZone.HasWinterDelay()) {
		days++
	}
	if miles > longHaulMiles {
		days++
	}
	if c.ShipDate.Weekday() == time.Friday {
		days++
	}
	return max(days, 1)
}

// AdjustedDays is the one-off form of ShipContext.AdjustedDays.
func AdjustedDays(baseDays int, miles float64, shipDate time.Time, origin, dest Coordinate) int {
	return NewShipContext(shipDate, origin, dest).AdjustedDays(baseDays, miles)
}

// BusinessDayAfter walks forward from start one calendar day at a time and
// returns the date on which the n-th weekday is reached. n <= 0 returns
// start unchanged.
func BusinessDayAfter(start time.Time, n int) time.Time {
	current := start
	for added := 0; added < n; {
		current = current.AddDate(0, 0, 1)
		if isBusinessDay(current) {
			added++
		}
	}
	return current
}

func isBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
