package validate

import "strings"

// countryCodes maps common country names and spellings to ISO-3166 alpha-2
// codes. Unknown names yield "" rather than an error: a miss simply means the
// field stays unset.
var countryCodes = map[string]string{
	"united states":            "US",
	"united states of america": "US",
	"usa":                      "US",
	"u.s.":                     "US",
	"u.s.a.":                   "US",
	"america":                  "US",
	"united kingdom":           "GB",
	"uk":                       "GB",
	"great britain":            "GB",
	"england":                  "GB",
	"scotland":                 "GB",
	"wales":                    "GB",
	"canada":                   "CA",
	"australia":                "AU",
	"germany":                  "DE",
	"deutschland":              "DE",
	"france":                   "FR",
	"spain":                    "ES",
	"españa":                   "ES",
	"italy":                    "IT",
	"italia":                   "IT",
	"netherlands":              "NL",
	"the netherlands":          "NL",
	"holland":                  "NL",
	"belgium":                  "BE",
	"switzerland":              "CH",
	"austria":                  "AT",
	"sweden":                   "SE",
	"norway":                   "NO",
	"denmark":                  "DK",
	"finland":                  "FI",
	"ireland":                  "IE",
	"portugal":                 "PT",
	"poland":                   "PL",
	"czech republic":           "CZ",
	"czechia":                  "CZ",
	"greece":                   "GR",
	"romania":                  "RO",
	"hungary":                  "HU",
	"ukraine":                  "UA",
	"russia":                   "RU",
	"turkey":                   "TR",
	"israel":                   "IL",
	"united arab emirates":     "AE",
	"uae":                      "AE",
	"saudi arabia":             "SA",
	"india":                    "IN",
	"china":                    "CN",
	"hong kong":                "HK",
	"taiwan":                   "TW",
	"japan":                    "JP",
	"south korea":              "KR",
	"korea":                    "KR",
	"singapore":                "SG",
	"malaysia":                 "MY",
	"indonesia":                "ID",
	"thailand":                 "TH",
	"vietnam":                  "VN",
	"philippines":              "PH",
	"pakistan":                 "PK",
	"bangladesh":               "BD",
	"new zealand":              "NZ",
	"south africa":             "ZA",
	"nigeria":                  "NG",
	"kenya":                    "KE",
	"egypt":                    "EG",
	"morocco":                  "MA",
	"brazil":                   "BR",
	"brasil":                   "BR",
	"mexico":                   "MX",
	"méxico":                   "MX",
	"argentina":                "AR",
	"chile":                    "CL",
	"colombia":                 "CO",
	"peru":                     "PE",
	"venezuela":                "VE",
	"uruguay":                  "UY",
	"ecuador":                  "EC",
}

// CountryCode maps a country name to an ISO-3166 alpha-2 code. Values that
// already look like a code pass through uppercased; unknown names return "".
func CountryCode(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Trim(s, ".,")
	if s == "" {
		return ""
	}
	if code, ok := countryCodes[s]; ok {
		return code
	}
	// Already a plausible alpha-2 code.
	if len(s) == 2 && s[0] >= 'a' && s[0] <= 'z' && s[1] >= 'a' && s[1] <= 'z' {
		return strings.ToUpper(s)
	}
	return ""
}
