package filler

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Country codes with a known postal code length.
const (
	CountryAustria     = "AT"
	CountrySwitzerland = "CH"
	CountryGermany     = "DE"
)

var postalCodeLengths = map[string]int{
	CountryAustria:     4,
	CountrySwitzerland: 4,
	CountryGermany:     5,
}

// PostalCode returns a numeric postal code shaped for country.
func PostalCode(r *rand.Rand, country string) (string, error) {
	n, ok := postalCodeLengths[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}
	return randomDigits(r, n), nil
}
