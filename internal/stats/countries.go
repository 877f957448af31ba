package stats

import (
	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownCountry labels visits without a resolved country code.
const UnknownCountry = "Unknown"

var countryQuery = gountries.New()

// convertCountryStats replaces ISO codes with common English country names.
// Codes gountries does not know are upper-cased and kept.
func convertCountryStats(items []CountryCount) []CountryCount {
	caser := cases.Upper(language.AmericanEnglish)

	result := make([]CountryCount, 0, len(items))
	for _, item := range items {
		name := UnknownCountry
		if item.Country != "" {
			if country, err := countryQuery.FindCountryByAlpha(item.Country); err == nil {
				name = country.Name.Common
			} else {
				name = caser.String(item.Country)
			}
		}
		result = append(result, CountryCount{Country: name, Count: item.Count})
	}
	return result
}
