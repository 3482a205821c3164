package domain

import (
	"regexp"
	"strings"
)

// postalCodeRe matches a normalized five-digit US ZIP code.
var postalCodeRe = regexp.MustCompile(`^[0-9]{5}$`)

// PostalCode is a five-digit US ZIP code in normalized form.
type PostalCode string

// NormalizePostalCode cleans a ZIP value as it appears in source datasets
// and in lookups: surrounding whitespace and quotes are stripped, a trailing
// ".0" left behind by numeric spreadsheet exports is removed, and the result
// is left-padded with zeros to five characters ("1001.0" -> "01001").
func NormalizePostalCode(raw string) PostalCode {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSuffix(s, ".0")
	if n := len(s); n < 5 {
		s = strings.Repeat("0", 5-n) + s
	}
	return PostalCode(s)
}

// Valid reports whether p is exactly five ASCII digits.
func (p PostalCode) Valid() bool {
	return postalCodeRe.MatchString(string(p))
}

func (p PostalCode) String() string { return string(p) }

// ValidatePostalCode checks a client-supplied postal code after trimming
// whitespace. Unlike NormalizePostalCode it never pads: "1001" is rejected.
func ValidatePostalCode(raw string) (PostalCode, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrMissingPostalCode
	}
	if !postalCodeRe.MatchString(s) {
		return "", ErrMalformedPostalCode
	}
	return PostalCode(s), nil
}

// ValidateRoute validates an origin/destination pair. Missing values are
// reported before malformed ones, matching the order clients see them in.
func ValidateRoute(origin, destination string) (PostalCode, PostalCode, error) {
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return "", "", ErrMissingPostalCode
	}
	o, err := ValidatePostalCode(origin)
	if err != nil {
		return "", "", err
	}
	d, err := ValidatePostalCode(destination)
	if err != nil {
		return "", "", err
	}
	return o, d, nil
}
