package timezone

// Record describes the authoritative timezone for a country. Offsets are
// canonical standard-time offsets in hours east of UTC; fractional values
// (e.g. +5.5 for India) are supported down to minute precision.
type Record struct {
	CountryCode string  `json:"country_code"`
	CountryName string  `json:"country_name"`
	Zone        string  `json:"zone"`
	OffsetHours float64 `json:"offset_hours"`
}

// countries is the static, append-only mapping table keyed by ISO 3166-1
// alpha-2 code. Offsets are standard time; the reference clock is a fixed
// offset so no DST math is applied on either side of a conversion.
var countries = map[string]Record{
	"AE": {"AE", "United Arab Emirates", "Asia/Dubai", 4},
	"AF": {"AF", "Afghanistan", "Asia/Kabul", 4.5},
	"AR": {"AR", "Argentina", "America/Argentina/Buenos_Aires", -3},
	"AT": {"AT", "Austria", "Europe/Vienna", 1},
	"AU": {"AU", "Australia", "Australia/Sydney", 10},
	"BD": {"BD", "Bangladesh", "Asia/Dhaka", 6},
	"BE": {"BE", "Belgium", "Europe/Brussels", 1},
	"BR": {"BR", "Brazil", "America/Sao_Paulo", -3},
	"CA": {"CA", "Canada", "America/Toronto", -5},
	"CH": {"CH", "Switzerland", "Europe/Zurich", 1},
	"CL": {"CL", "Chile", "America/Santiago", -4},
	"CN": {"CN", "China", "Asia/Shanghai", 8},
	"CO": {"CO", "Colombia", "America/Bogota", -5},
	"CZ": {"CZ", "Czechia", "Europe/Prague", 1},
	"DE": {"DE", "Germany", "Europe/Berlin", 1},
	"DK": {"DK", "Denmark", "Europe/Copenhagen", 1},
	"EG": {"EG", "Egypt", "Africa/Cairo", 2},
	"ES": {"ES", "Spain", "Europe/Madrid", 1},
	"FI": {"FI", "Finland", "Europe/Helsinki", 2},
	"FR": {"FR", "France", "Europe/Paris", 1},
	"GB": {"GB", "United Kingdom", "Europe/London", 0},
	"GR": {"GR", "Greece", "Europe/Athens", 2},
	"HK": {"HK", "Hong Kong", "Asia/Hong_Kong", 8},
	"ID": {"ID", "Indonesia", "Asia/Jakarta", 7},
	"IE": {"IE", "Ireland", "Europe/Dublin", 0},
	"IL": {"IL", "Israel", "Asia/Jerusalem", 2},
	"IN": {"IN", "India", "Asia/Kolkata", 5.5},
	"IR": {"IR", "Iran", "Asia/Tehran", 3.5},
	"IT": {"IT", "Italy", "Europe/Rome", 1},
	"JP": {"JP", "Japan", "Asia/Tokyo", 9},
	"KE": {"KE", "Kenya", "Africa/Nairobi", 3},
	"KR": {"KR", "South Korea", "Asia/Seoul", 9},
	"LK": {"LK", "Sri Lanka", "Asia/Colombo", 5.5},
	"MM": {"MM", "Myanmar", "Asia/Yangon", 6.5},
	"MX": {"MX", "Mexico", "America/Mexico_City", -6},
	"MY": {"MY", "Malaysia", "Asia/Kuala_Lumpur", 8},
	"NG": {"NG", "Nigeria", "Africa/Lagos", 1},
	"NL": {"NL", "Netherlands", "Europe/Amsterdam", 1},
	"NO": {"NO", "Norway", "Europe/Oslo", 1},
	"NP": {"NP", "Nepal", "Asia/Kathmandu", 5.75},
	"NZ": {"NZ", "New Zealand", "Pacific/Auckland", 12},
	"PE": {"PE", "Peru", "America/Lima", -5},
	"PH": {"PH", "Philippines", "Asia/Manila", 8},
	"PL": {"PL", "Poland", "Europe/Warsaw", 1},
	"PT": {"PT", "Portugal", "Europe/Lisbon", 0},
	"RO": {"RO", "Romania", "Europe/Bucharest", 2},
	"RU": {"RU", "Russia", "Europe/Moscow", 3},
	"SA": {"SA", "Saudi Arabia", "Asia/Riyadh", 3},
	"SE": {"SE", "Sweden", "Europe/Stockholm", 1},
	"SG": {"SG", "Singapore", "Asia/Singapore", 8},
	"TH": {"TH", "Thailand", "Asia/Bangkok", 7},
	"TR": {"TR", "Turkey", "Europe/Istanbul", 3},
	"TW": {"TW", "Taiwan", "Asia/Taipei", 8},
	"US": {"US", "United States", "America/New_York", -5},
	"VN": {"VN", "Vietnam", "Asia/Ho_Chi_Minh", 7},
	"ZA": {"ZA", "South Africa", "Africa/Johannesburg", 2},
}

// Lookup returns the Record for an already-normalized country code.
func Lookup(countryCode string) (Record, bool) {
	rec, ok := countries[countryCode]
	return rec, ok
}

// Countries returns the list of mapped country codes. The result is a copy;
// the underlying table is never mutated at runtime.
func Countries() []string {
	codes := make([]string, 0, len(countries))
	for code := range countries {
		codes = append(codes, code)
	}
	return codes
}
