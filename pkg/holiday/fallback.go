package holiday

import (
	"fmt"
	"time"
)

// fixedHoliday is a holiday that falls on the same calendar day every year.
// Movable holidays (Easter, Thanksgiving, lunar calendar dates) are served by
// the remote API; the fallback dataset deliberately covers only the fixed
// national days so an API outage degrades rather than misfires.
type fixedHoliday struct {
	Month time.Month
	Day   int
	Name  string
}

// fallbackHolidays is the built-in local dataset used when the remote lookup
// is exhausted. Keyed by ISO 3166-1 alpha-2 country code.
var fallbackHolidays = map[string][]fixedHoliday{
	"US": {
		{time.January, 1, "New Year's Day"},
		{time.June, 19, "Juneteenth National Independence Day"},
		{time.July, 4, "Independence Day"},
		{time.November, 11, "Veterans Day"},
		{time.December, 25, "Christmas Day"},
	},
	"CA": {
		{time.January, 1, "New Year's Day"},
		{time.July, 1, "Canada Day"},
		{time.December, 25, "Christmas Day"},
		{time.December, 26, "Boxing Day"},
	},
	"GB": {
		{time.January, 1, "New Year's Day"},
		{time.December, 25, "Christmas Day"},
		{time.December, 26, "Boxing Day"},
	},
	"BR": {
		{time.January, 1, "Confraternização Universal"},
		{time.April, 21, "Tiradentes"},
		{time.May, 1, "Dia do Trabalhador"},
		{time.September, 7, "Independência do Brasil"},
		{time.October, 12, "Nossa Senhora Aparecida"},
		{time.November, 2, "Finados"},
		{time.November, 15, "Proclamação da República"},
		{time.December, 25, "Natal"},
	},
	"DE": {
		{time.January, 1, "Neujahr"},
		{time.May, 1, "Tag der Arbeit"},
		{time.October, 3, "Tag der Deutschen Einheit"},
		{time.December, 25, "1. Weihnachtstag"},
		{time.December, 26, "2. Weihnachtstag"},
	},
	"FR": {
		{time.January, 1, "Jour de l'An"},
		{time.May, 1, "Fête du Travail"},
		{time.May, 8, "Victoire 1945"},
		{time.July, 14, "Fête Nationale"},
		{time.August, 15, "Assomption"},
		{time.November, 1, "Toussaint"},
		{time.November, 11, "Armistice 1918"},
		{time.December, 25, "Noël"},
	},
	"IN": {
		{time.January, 26, "Republic Day"},
		{time.August, 15, "Independence Day"},
		{time.October, 2, "Gandhi Jayanti"},
	},
	"JP": {
		{time.January, 1, "元日"},
		{time.February, 11, "建国記念の日"},
		{time.May, 3, "憲法記念日"},
		{time.May, 4, "みどりの日"},
		{time.May, 5, "こどもの日"},
		{time.November, 3, "文化の日"},
		{time.November, 23, "勤労感謝の日"},
	},
	"MX": {
		{time.January, 1, "Año Nuevo"},
		{time.May, 1, "Día del Trabajo"},
		{time.September, 16, "Día de la Independencia"},
		{time.December, 25, "Navidad"},
	},
	"AU": {
		{time.January, 1, "New Year's Day"},
		{time.January, 26, "Australia Day"},
		{time.April, 25, "Anzac Day"},
		{time.December, 25, "Christmas Day"},
		{time.December, 26, "Boxing Day"},
	},
}

// fallbackLookup reports whether day is a fixed-date holiday in the local
// dataset for the given country.
func fallbackLookup(day time.Time, countryCode string) (string, bool) {
	for _, h := range fallbackHolidays[countryCode] {
		if day.Month() == h.Month && day.Day() == h.Day {
			return h.Name, true
		}
	}
	return "", false
}

// fallbackRecords materializes the fixed-date dataset for a country and year
// so a failed remote fetch can still populate the cache.
func fallbackRecords(year int, countryCode string) ([]Record, bool) {
	fixed, ok := fallbackHolidays[countryCode]
	if !ok {
		return nil, false
	}
	records := make([]Record, 0, len(fixed))
	for _, h := range fixed {
		records = append(records, Record{
			Date:        time.Date(year, h.Month, h.Day, 0, 0, 0, 0, time.UTC),
			Name:        h.Name,
			CountryCode: countryCode,
		})
	}
	return records, true
}

// dateKey collapses a timestamp to its calendar day for comparisons.
func dateKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}
