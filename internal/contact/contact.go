// Package contact implements the multi-value contact accumulator. Unlike the
// single-value consolidation of entity fields, contact info legitimately has
// multiple values, so every email, phone number and WhatsApp handle seen
// across every text blob and acquisition attempt is collected into one
// deduplicated bundle.
package contact

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/entitylens/entitylens-api/internal/models"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// International and national phone shapes. The looser national shape
	// requires grouping punctuation so that bare long numbers (IDs,
	// timestamps) don't match.
	phoneIntlRe     = regexp.MustCompile(`\+\d{1,3}[\s.\-]?\(?\d{1,4}\)?(?:[\s.\-]?\d{2,4}){2,4}`)
	phoneNationalRe = regexp.MustCompile(`\(?\d{2,4}\)?[\s.\-]?\d{3,5}[\s.\-]\d{4}\b`)

	// WhatsApp deep links: wa.me/<digits> and api.whatsapp.com/send?phone=<digits>.
	waLinkRe = regexp.MustCompile(`(?:wa\.me/|api\.whatsapp\.com/send\?phone=)(\+?\d{7,15})`)

	// Labeled numbers: "WhatsApp: +55 11 91234-5678".
	waLabelRe = regexp.MustCompile(`(?i)whatsapp\W{0,3}(\+?\d[\d\s.\-()]{7,18}\d)`)
)

// Accumulator scans text blobs for contact identifiers and adds them to a
// bundle. Accumulation is union-only and idempotent: the same value seen in
// two blobs lands once, and processing order does not matter.
type Accumulator struct {
	// defaultPrefix is prepended to phone numbers that match a national
	// format without a country code, e.g. "+1".
	defaultPrefix string

	logger *slog.Logger
}

// NewAccumulator creates a contact accumulator. defaultPrefix supplies the
// country code for national-format numbers ("+1" when empty).
func NewAccumulator(defaultPrefix string, logger *slog.Logger) *Accumulator {
	if defaultPrefix == "" {
		defaultPrefix = "+1"
	}
	return &Accumulator{defaultPrefix: defaultPrefix, logger: logger}
}

// Accumulate scans one text blob and adds every contact identifier found to
// the bundle. Never removes previously accumulated values.
func (a *Accumulator) Accumulate(text string, bundle *models.ContactBundle) {
	if text == "" || bundle == nil {
		return
	}

	for _, m := range emailRe.FindAllString(text, -1) {
		bundle.AddEmail(strings.Trim(m, "."))
	}

	// WhatsApp deep links and labeled numbers are consumed first and
	// scrubbed from the text, so their digits cannot re-match as plain
	// phones. The same goes for international matches before the looser
	// national pass.
	scrubbed := text
	for _, m := range waLinkRe.FindAllStringSubmatch(scrubbed, -1) {
		if n := a.normalizePhone(m[1]); n != "" {
			bundle.AddWhatsApp(n)
		}
	}
	scrubbed = waLinkRe.ReplaceAllString(scrubbed, " ")

	for _, m := range waLabelRe.FindAllStringSubmatch(scrubbed, -1) {
		if n := a.normalizePhone(m[1]); n != "" {
			bundle.AddWhatsApp(n)
		}
	}
	scrubbed = waLabelRe.ReplaceAllString(scrubbed, " ")

	for _, m := range phoneIntlRe.FindAllString(scrubbed, -1) {
		if n := a.normalizePhone(m); n != "" {
			bundle.AddPhone(n)
		}
	}
	scrubbed = phoneIntlRe.ReplaceAllString(scrubbed, " ")

	for _, m := range phoneNationalRe.FindAllString(scrubbed, -1) {
		if n := a.normalizePhone(m); n != "" {
			bundle.AddPhone(n)
		}
	}
}

// AccumulateHTML harvests tel:/mailto:/WhatsApp links from markup before
// running the plain-text pass over the document body.
func (a *Accumulator) AccumulateHTML(html string, bundle *models.ContactBundle) {
	if html == "" || bundle == nil {
		return
	}

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		gq.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			addr := strings.TrimPrefix(href, "mailto:")
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			if emailRe.MatchString(addr) {
				bundle.AddEmail(addr)
			}
		})
		gq.Find(`a[href^="tel:"]`).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if n := a.normalizePhone(strings.TrimPrefix(href, "tel:")); n != "" {
				bundle.AddPhone(n)
			}
		})
		gq.Find(`a[href*="wa.me/"], a[href*="api.whatsapp.com"]`).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if m := waLinkRe.FindStringSubmatch(href); m != nil {
				if n := a.normalizePhone(m[1]); n != "" {
					bundle.AddWhatsApp(n)
				}
			}
		})
	} else if a.logger != nil {
		a.logger.Debug("contact link harvesting skipped", "error", err)
	}

	a.Accumulate(html, bundle)
}

// normalizePhone strips a candidate to digits and a leading +, applies the
// default country prefix to recognizable national formats, and rejects
// fragments.
func (a *Accumulator) normalizePhone(raw string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	phone := b.String()

	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return ""
	}

	if !strings.HasPrefix(phone, "+") {
		// A 10-digit bare number is a national format; anything longer
		// already carries its country code.
		if len(digits) == 10 {
			return a.defaultPrefix + digits
		}
		return "+" + digits
	}
	return phone
}
