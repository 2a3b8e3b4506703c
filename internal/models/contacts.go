package models

import "strings"

// ContactBundle accumulates every contact identifier seen across all passes
// of all strategies and all acquisition attempts for one target. Each list is
// a set: once a value is recorded it is never removed within a session, and
// later passes strictly add.
type ContactBundle struct {
	Emails   []string `json:"emails"`
	Phones   []string `json:"phones"`
	WhatsApp []string `json:"whatsapp"`

	seen map[string]struct{}
}

// NewContactBundle creates an empty bundle.
func NewContactBundle() *ContactBundle {
	return &ContactBundle{seen: make(map[string]struct{})}
}

// AddEmail records an email address. Deduplication is case-insensitive but
// the first-seen casing is kept.
func (b *ContactBundle) AddEmail(email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return
	}
	if b.add("email:" + strings.ToLower(email)) {
		b.Emails = append(b.Emails, email)
	}
}

// AddPhone records a normalized phone number.
func (b *ContactBundle) AddPhone(phone string) {
	if phone == "" {
		return
	}
	if b.add("phone:" + phone) {
		b.Phones = append(b.Phones, phone)
	}
}

// AddWhatsApp records a normalized WhatsApp number.
func (b *ContactBundle) AddWhatsApp(number string) {
	if number == "" {
		return
	}
	if b.add("wa:" + number) {
		b.WhatsApp = append(b.WhatsApp, number)
	}
}

// Size returns the total number of accumulated contact values.
func (b *ContactBundle) Size() int {
	return len(b.Emails) + len(b.Phones) + len(b.WhatsApp)
}

func (b *ContactBundle) add(key string) bool {
	if b.seen == nil {
		b.seen = make(map[string]struct{})
	}
	if _, ok := b.seen[key]; ok {
		return false
	}
	b.seen[key] = struct{}{}
	return true
}
