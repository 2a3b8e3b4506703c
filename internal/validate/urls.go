package validate

import (
	"net/url"
	"strings"
)

// cdnHosts are hosts that serve profile pictures, icons and other static
// resources. A "website" value pointing at one of these is a scraped image
// URL, not the entity's site.
var cdnHosts = []string{
	"cdninstagram.com",
	"fbcdn.net",
	"akamaihd.net",
	"cloudfront.net",
	"twimg.com",
	"licdn.com",
	"googleusercontent.com",
	"gstatic.com",
	"staticflickr.com",
	"wixstatic.com",
	"cdn.shopify.com",
}

// resourceExtensions mark URLs that point at files rather than pages.
var resourceExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico",
	".css", ".js",
}

// WebsiteURL validates a website URL. The value must carry an http(s) scheme
// and must not point at a known CDN host or a static resource file; such
// values are false positives.
func WebsiteURL(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"'<>`)

	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return "", false
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	for _, cdn := range cdnHosts {
		if host == cdn || strings.HasSuffix(host, "."+cdn) {
			return "", false
		}
	}

	path := strings.ToLower(u.Path)
	for _, ext := range resourceExtensions {
		if strings.HasSuffix(path, ext) {
			return "", false
		}
	}

	return s, true
}
