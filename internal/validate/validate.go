// Package validate provides per-field cleaning and type coercion. All
// functions are pure: a rejected value yields ok=false, never an error or a
// panic, because rejection is the normal fate of scraped noise.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/entitylens/entitylens-api/internal/schema"
)

const (
	minNameLen = 2
	maxNameLen = 200

	minTextLen = 10
	maxTextLen = 2000

	// Accepted founding-year window. Years outside it are almost always
	// extraction noise (street numbers, pixel sizes, future dates).
	minYear = 1800
	maxYear = 2024

	minPhoneDigits = 10
)

// Field validates and normalizes a raw candidate value according to the field
// spec. Returns the cleaned value and whether it was accepted.
func Field(spec schema.Field, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	switch spec.Type {
	case schema.TypeName:
		return Name(raw)
	case schema.TypeText:
		return Text(raw)
	case schema.TypeCount:
		n, ok := Count(raw)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(n, 10), true
	case schema.TypeDecimal:
		return Decimal(raw)
	case schema.TypeRange:
		n, ok := EmployeeCount(raw)
		if !ok {
			return "", false
		}
		return strconv.Itoa(n), true
	case schema.TypeYear:
		return Year(raw)
	case schema.TypeURL:
		return WebsiteURL(raw)
	case schema.TypeCategory:
		return Category(raw)
	case schema.TypeList:
		return List(raw)
	case schema.TypeLocation:
		return Location(raw)
	case schema.TypeCountry:
		code := CountryCode(raw)
		return code, code != ""
	case schema.TypePhone:
		return Phone(raw)
	}
	return "", false
}

// nameNoise lists trailing platform-branding fragments stripped from names.
// Titles scraped from social pages routinely carry these suffixes.
var nameNoise = []string{
	"| LinkedIn",
	"- LinkedIn",
	"| Facebook",
	"- Facebook",
	"| Instagram",
	"• Instagram photos and videos",
	"(@",
	"on Instagram",
	"- Google Maps",
	"| Crunchbase",
	"- Overview",
}

// Name validates a company/person/business name: 2-200 chars after stripping
// known platform suffix noise.
func Name(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	for _, noise := range nameNoise {
		if idx := strings.Index(name, noise); idx > 0 {
			name = strings.TrimSpace(name[:idx])
		}
	}
	name = strings.Trim(name, "|•-– ")
	if len(name) < minNameLen || len(name) > maxNameLen {
		return "", false
	}
	return name, true
}

// Text validates free text such as descriptions and bios: 10-2000 chars.
func Text(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	text = whitespaceRe.ReplaceAllString(text, " ")
	if len(text) < minTextLen || len(text) > maxTextLen {
		return "", false
	}
	return text, true
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	yearRe       = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)
	rangeRe      = regexp.MustCompile(`^(\d[\d,.]*)\s*[-–]\s*(\d[\d,.]*)\+?$`)
	numberRe     = regexp.MustCompile(`^\d[\d,.]*\+?$`)
	countRe      = regexp.MustCompile(`^([\d]+(?:[.,]\d+)?)\s*([KMBkmb])?$`)
)

// Year extracts a 4-digit year within the accepted window from a string that
// may carry surrounding prose ("Founded in 1998 by...").
func Year(raw string) (string, bool) {
	m := yearRe.FindString(raw)
	if m == "" {
		return "", false
	}
	y, err := strconv.Atoi(m)
	if err != nil || y < minYear || y > maxYear {
		return "", false
	}
	return m, true
}

// EmployeeCount normalizes an employee-count string. Ranges such as "120-450"
// average to the integer midpoint via (min+max)/2; plain numbers (with
// optional thousands separators and trailing +) pass through.
func EmployeeCount(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(strings.ToLower(s), "employees")
	s = strings.TrimSpace(s)

	if m := rangeRe.FindStringSubmatch(s); m != nil {
		lo, okLo := plainInt(m[1])
		hi, okHi := plainInt(m[2])
		if !okLo || !okHi || hi < lo {
			return 0, false
		}
		return (lo + hi) / 2, true
	}

	if numberRe.MatchString(s) {
		if n, ok := plainInt(strings.TrimSuffix(s, "+")); ok {
			return n, true
		}
	}
	return 0, false
}

// Count parses a count string with an optional K/M/B suffix (case-
// insensitive). With a suffix, both "." and "," act as the decimal separator
// ("1,2K" is 1200); without one, "," and "." act as thousands separators
// ("3,400" is 3400). The result is rounded down to an integer.
func Count(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")

	m := countRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	num, suffix := m[1], m[2]
	if suffix == "" {
		// Separators are thousands markers here.
		n, ok := plainInt(num)
		if !ok {
			return 0, false
		}
		return int64(n), true
	}

	num = strings.ReplaceAll(num, ",", ".")
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}

	var mult float64
	switch strings.ToUpper(suffix) {
	case "K":
		mult = 1e3
	case "M":
		mult = 1e6
	case "B":
		mult = 1e9
	}
	return int64(f * mult), true
}

// plainInt parses an integer that may contain "," or "." thousands separators.
func plainInt(s string) (int, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, ".", "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

var decimalRe = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{1,2})?$`)

// Decimal validates a small decimal value such as a review rating, keeping a
// "." separator.
func Decimal(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if !decimalRe.MatchString(s) {
		return "", false
	}
	return strings.ReplaceAll(s, ",", "."), true
}

// Phone strips a phone-like value to digits and a leading "+". Values with
// fewer than 10 digits are rejected as fragments.
func Phone(raw string) (string, bool) {
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	phone := b.String()
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < minPhoneDigits {
		return "", false
	}
	return phone, true
}

// Category validates a short enum-like label.
func Category(raw string) (string, bool) {
	c := strings.TrimSpace(raw)
	c = strings.Trim(c, ".,;:")
	if len(c) < 2 || len(c) > 100 {
		return "", false
	}
	return c, true
}

// List normalizes a comma/semicolon separated list into "a, b, c" form.
func List(raw string) (string, bool) {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '•' || r == '\n'
	})
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "", false
	}
	return strings.Join(out, ", "), true
}

// Location validates a free-form place string.
func Location(raw string) (string, bool) {
	loc := strings.TrimSpace(raw)
	loc = whitespaceRe.ReplaceAllString(loc, " ")
	if len(loc) < 2 || len(loc) > 200 {
		return "", false
	}
	return loc, true
}
