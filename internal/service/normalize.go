package service

import (
	"net/url"
	"strings"

	"github.com/entitylens/entitylens-api/internal/models"
)

// Canonical profile URL prefixes for bare usernames, per entity type.
var usernameBases = map[models.EntityType]string{
	models.EntityCompany: "https://www.linkedin.com/company/",
	models.EntityProfile: "https://www.instagram.com/",
	models.EntityListing: "https://www.google.com/maps/search/",
}

// NormalizeTarget turns whatever the caller passed into a canonical URL.
// Accepted inputs: a full URL, a scheme-less domain or path, a bare
// username, or an @handle. Tracking query parameters and fragments are
// stripped so the same page always canonicalizes to the same target.
func NormalizeTarget(entity models.EntityType, raw string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		return target
	}

	if !strings.Contains(target, "://") {
		if looksLikeUsername(target) {
			return usernameBases[entity] + url.PathEscape(strings.TrimPrefix(target, "@"))
		}
		target = "https://" + target
	}

	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return target
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	stripTrackingParams(u)

	return u.String()
}

// looksLikeUsername reports whether the input is a bare handle rather than a
// domain or path.
func looksLikeUsername(s string) bool {
	if strings.HasPrefix(s, "@") {
		return true
	}
	return !strings.ContainsAny(s, "./ ")
}

func stripTrackingParams(u *url.URL) {
	query := u.Query()
	changed := false
	for key := range query {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") || lower == "fbclid" || lower == "gclid" || lower == "ref" {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}
