// Package domain holds the rules behind a shipping estimate. Everything here
// is pure: no I/O, no clocks, no shared mutable state.
//
// # Postal codes
//
// Dataset ZIP values arrive in several shapes depending on the export tool:
//
//	"01001"   quoted string
//	1001      integer with the leading zero lost
//	1001.0    float artifact from spreadsheet exports
//
// NormalizePostalCode folds all of these to "01001". Client input is held to
// a stricter standard by ValidatePostalCode: exactly five digits after
// trimming whitespace, no padding.
//
// # Distance tiers
//
//	local        <= 150 mi
//	regional     <= 500 mi
//	national     <= 1500 mi
//	continental  >  1500 mi
//
// Each tier sells three services, listed fastest-first (see OfferingsFor).
//
// # Transit adjustments
//
// A service's base days are adjusted per shipment:
//
//	peak season     +2 thanksgiving, christmas; +1 otherwise
//	winter weather  +1 Dec-Mar when either end is midwest or northeast
//	long haul       +1 beyond 2000 mi
//	Friday ship     +1
//
// The adjusted count is floored at 1 and projected onto the calendar by
// BusinessDayAfter, which counts Monday through Friday only. Holidays are not
// modelled.
//
// # Weather zones
//
// Zones come from a fixed rule list evaluated top to bottom:
//
//	lat > 41 and lon > -100   northeast
//	lat > 37 and lon < -100   midwest
//	lat < 37 and lon > -100   south
//	otherwise                 west
//
// The list leaves New York City, Philadelphia and most of the mid-Atlantic in
// "west", so zone names are labels for delay rules, not geography.
package domain
