package service

import (
	"testing"

	"github.com/entitylens/entitylens-api/internal/models"
)

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		name   string
		entity models.EntityType
		in     string
		want   string
	}{
		{
			"bare username becomes company url",
			models.EntityCompany,
			"acme",
			"https://www.linkedin.com/company/acme",
		},
		{
			"at-handle becomes profile url",
			models.EntityProfile,
			"@acme_official",
			"https://www.instagram.com/acme_official",
		},
		{
			"scheme-less domain gets https",
			models.EntityCompany,
			"acme.example/about",
			"https://acme.example/about",
		},
		{
			"tracking params stripped",
			models.EntityCompany,
			"https://acme.example/about?utm_source=newsletter&utm_campaign=q3&page=2",
			"https://acme.example/about?page=2",
		},
		{
			"fragment and trailing slash stripped",
			models.EntityProfile,
			"https://www.instagram.com/acme_official/#reels",
			"https://www.instagram.com/acme_official",
		},
		{
			"host lowercased",
			models.EntityCompany,
			"https://Acme.Example/About",
			"https://acme.example/About",
		},
		{
			"whitespace trimmed",
			models.EntityCompany,
			"  https://acme.example  ",
			"https://acme.example",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTarget(tt.entity, tt.in); got != tt.want {
				t.Errorf("NormalizeTarget(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTargetIdempotent(t *testing.T) {
	inputs := []string{
		"acme",
		"https://acme.example/about?utm_source=x",
		"@handle",
	}
	for _, in := range inputs {
		once := NormalizeTarget(models.EntityCompany, in)
		twice := NormalizeTarget(models.EntityCompany, once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
