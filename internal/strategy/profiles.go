package strategy

import (
	"fmt"
	"regexp"

	"github.com/entitylens/entitylens-api/internal/models"
)

// ForEntity builds the full strategy set for one entity type. The rule tables
// below are the entity-specific knowledge of the system: which metadata
// types, DOM paths, meta tags and text cues carry each field on that kind of
// page.
func ForEntity(entity models.EntityType) ([]Strategy, error) {
	switch entity {
	case models.EntityCompany:
		return companyStrategies(), nil
	case models.EntityProfile:
		return profileStrategies(), nil
	case models.EntityListing:
		return listingStrategies(), nil
	}
	return nil, fmt.Errorf("no strategy profile for entity type %q", entity)
}

func companyStrategies() []Strategy {
	return []Strategy{
		NewJSONLD(
			[]string{"Organization", "Corporation", "LocalBusiness"},
			[]PathSpec{
				{Field: "company_name", Paths: [][]string{{"name"}, {"legalName"}, {"alternateName"}}},
				{Field: "description", Paths: [][]string{{"description"}, {"slogan"}}},
				{Field: "founded", Paths: [][]string{{"foundingDate"}}},
				{Field: "website", Paths: [][]string{{"url"}, {"sameAs"}}},
				{Field: "industry", Paths: [][]string{{"industry"}, {"knowsAbout"}}},
				{Field: "company_size", Paths: [][]string{{"numberOfEmployees", "value"}, {"numberOfEmployees"}}},
				{Field: "city", Paths: [][]string{{"address", "addressLocality"}}},
				{Field: "region", Paths: [][]string{{"address", "addressRegion"}}},
				{Field: "country", Paths: [][]string{{"address", "addressCountry"}}},
			},
			&AddressSpec{
				Field: "headquarters",
				Parts: []string{"addressLocality", "addressRegion", "addressCountry"},
			},
		),
		NewSelector([]SelectorRule{
			{Field: "company_name", Selectors: []string{
				`h1[data-test-id="org-name"]`,
				"h1.org-top-card-summary__title",
				".company-header h1",
				"h1",
			}},
			{Field: "description", Selectors: []string{
				`p[data-test-id="about-us__description"]`,
				"p.org-top-card-summary__tagline",
				"section.about-us p",
				".company-description",
			}},
			{Field: "industry", Selectors: []string{
				`dd[data-test-id="about-us__industry"]`,
				".org-top-card-summary-info-list__info-item",
				"li.industry",
				".industry",
			}, StripLabel: "Industry"},
			{Field: "website", Selectors: []string{
				`a[data-test-id="about-us__website"]`,
				"a.company-website",
				`.org-about-company-module a[rel~="noopener"]`,
			}, Attr: "href"},
			{Field: "company_size", Selectors: []string{
				`dd[data-test-id="about-us__size"]`,
				".company-size",
			}, StripLabel: "Company size"},
			{Field: "headquarters", Selectors: []string{
				`dd[data-test-id="about-us__headquarters"]`,
				".company-headquarters",
			}, StripLabel: "Headquarters"},
			{Field: "founded", Selectors: []string{
				`dd[data-test-id="about-us__foundedOn"]`,
				".company-founded",
			}, StripLabel: "Founded"},
			{Field: "specialties", Selectors: []string{
				`dd[data-test-id="about-us__specialties"]`,
				".company-specialties",
			}, StripLabel: "Specialties"},
		}),
		NewMetaTag([]MetaRule{
			{Field: "company_name", Tags: []string{"og:title", "twitter:title", "title"}},
			{Field: "description", Tags: []string{"og:description", "twitter:description", "description"}},
			{Field: "website", Tags: []string{"og:see_also"}},
		}),
		NewPattern([]PatternRule{
			{Field: "company_size", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(\d[\d,]*)\s*[-–]\s*(\d[\d,]*)\s+employees`),
				regexp.MustCompile(`(?i)([\d,]+)\+?\s+employees`),
			}},
			{Field: "founded", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)founded[^0-9<>]{0,20}(\d{4})`),
			}},
			{Field: "industry", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)industry\s*[:\-]\s*([A-Za-z][A-Za-z &/,\-]{2,60})`),
			}},
			{Field: "website", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)website\s*[:\-]\s*"?(https?://[^\s"'<>]+)`),
			}},
		}),
		NewContext([]PatternRule{
			{Field: "founded", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)founded in (\d{4})`),
				regexp.MustCompile(`(?i)established in (\d{4})`),
				regexp.MustCompile(`(?i)since (\d{4})`),
			}},
			{Field: "headquarters", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)headquartered in ([A-Z][A-Za-z .'\-]+(?:, [A-Z][A-Za-z .'\-]+){0,2})`),
				regexp.MustCompile(`(?i)based in ([A-Z][A-Za-z .'\-]+(?:, [A-Z][A-Za-z .'\-]+){0,2})`),
			}},
			{Field: "company_size", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:we have|team of|over|more than) ([\d,]+)\+? employees`),
			}},
		}),
	}
}

func profileStrategies() []Strategy {
	return []Strategy{
		NewJSONLD(
			[]string{"Person", "ProfilePage", "Organization"},
			[]PathSpec{
				{Field: "full_name", Paths: [][]string{{"name"}, {"mainEntity", "name"}}},
				{Field: "username", Paths: [][]string{{"alternateName"}, {"mainEntity", "alternateName"}, {"identifier"}}},
				{Field: "bio", Paths: [][]string{{"description"}, {"mainEntity", "description"}}},
				{Field: "website", Paths: [][]string{{"url"}, {"sameAs"}}},
				{Field: "followers", Paths: [][]string{
					{"interactionStatistic", "userInteractionCount"},
					{"mainEntity", "interactionStatistic", "userInteractionCount"},
				}},
				{Field: "category", Paths: [][]string{{"jobTitle"}, {"mainEntity", "jobTitle"}}},
				{Field: "location", Paths: [][]string{{"homeLocation", "name"}, {"address", "addressLocality"}}},
			},
			nil,
		),
		NewSelector([]SelectorRule{
			{Field: "full_name", Selectors: []string{
				"header h1",
				"h1.profile-name",
				`span[data-test-id="profile-name"]`,
				"h1",
			}},
			{Field: "username", Selectors: []string{
				"header h2",
				".profile-username",
			}},
			{Field: "bio", Selectors: []string{
				".profile-bio",
				"div.-vDIg span",
				`div[data-test-id="profile-bio"]`,
			}},
			{Field: "category", Selectors: []string{
				".profile-category",
				`div[data-test-id="profile-category"]`,
			}},
			{Field: "website", Selectors: []string{
				`a[rel~="me"]`,
				"a.profile-link",
			}, Attr: "href"},
		}),
		NewMetaTag([]MetaRule{
			{Field: "full_name", Tags: []string{"og:title", "twitter:title", "title"}},
			{Field: "bio", Tags: []string{"og:description", "twitter:description", "description"}},
			{Field: "username", Tags: []string{"al:ios:url"}},
		}),
		NewPattern([]PatternRule{
			{Field: "followers", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)"edge_followed_by"\s*:\s*\{"count"\s*:\s*(\d+)`),
				regexp.MustCompile(`(?i)([\d.,]+\s*[KMB]?)\s+Followers`),
			}},
			{Field: "following", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)"edge_follow"\s*:\s*\{"count"\s*:\s*(\d+)`),
				regexp.MustCompile(`(?i)([\d.,]+\s*[KMB]?)\s+Following`),
			}},
			{Field: "posts_count", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)([\d.,]+\s*[KMB]?)\s+Posts`),
			}},
			{Field: "username", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\(@([A-Za-z0-9_.]{2,30})\)`),
			}},
		}),
		NewContext([]PatternRule{
			{Field: "category", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)category[:\s]+([A-Za-z][A-Za-z &/]{2,40})`),
			}},
			{Field: "location", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)based in ([A-Z][A-Za-z .'\-]+(?:, [A-Z][A-Za-z .'\-]+)?)`),
			}},
		}),
	}
}

func listingStrategies() []Strategy {
	return []Strategy{
		NewJSONLD(
			[]string{"LocalBusiness", "Restaurant", "Store", "Hotel", "Organization"},
			[]PathSpec{
				{Field: "business_name", Paths: [][]string{{"name"}}},
				{Field: "description", Paths: [][]string{{"description"}}},
				{Field: "website", Paths: [][]string{{"url"}}},
				{Field: "phone", Paths: [][]string{{"telephone"}}},
				{Field: "category", Paths: [][]string{{"servesCuisine"}, {"@type"}}},
				{Field: "rating", Paths: [][]string{{"aggregateRating", "ratingValue"}}},
				{Field: "reviews_count", Paths: [][]string{{"aggregateRating", "reviewCount"}, {"aggregateRating", "ratingCount"}}},
				{Field: "hours", Paths: [][]string{{"openingHours"}}},
			},
			&AddressSpec{
				Field: "address",
				Parts: []string{"streetAddress", "addressLocality", "addressRegion", "postalCode"},
			},
		),
		NewSelector([]SelectorRule{
			{Field: "business_name", Selectors: []string{
				`h1[data-attrid="title"]`,
				"h1.business-name",
				"h1",
			}},
			{Field: "category", Selectors: []string{
				`button[jsaction*="category"]`,
				".business-category",
			}},
			{Field: "address", Selectors: []string{
				`button[data-item-id="address"]`,
				".business-address",
				`address`,
			}},
			{Field: "phone", Selectors: []string{
				`button[data-item-id^="phone"]`,
				`a[href^="tel:"]`,
				".business-phone",
			}},
			{Field: "website", Selectors: []string{
				`a[data-item-id="authority"]`,
				"a.business-website",
			}, Attr: "href"},
			{Field: "hours", Selectors: []string{
				`div[aria-label*="Hours"]`,
				".business-hours",
			}},
		}),
		NewMetaTag([]MetaRule{
			{Field: "business_name", Tags: []string{"og:title", "twitter:title", "title"}},
			{Field: "description", Tags: []string{"og:description", "description"}},
		}),
		NewPattern([]PatternRule{
			{Field: "rating", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(\d[.,]\d)\s*(?:stars|★|out of 5)`),
				regexp.MustCompile(`(?i)rating"?\s*[:\-]\s*"?(\d[.,]\d)`),
			}},
			{Field: "reviews_count", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\(?([\d.,]+[KMB]?)\)?\s+reviews`),
			}},
			{Field: "phone", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`tel:(\+?[\d\-(). ]{10,20})`),
			}},
		}),
		NewContext([]PatternRule{
			{Field: "hours", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)open (?:daily )?([\d:apm \-–]+[apm]{2})`),
			}},
			{Field: "category", Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:a|an) ([A-Za-z ]{3,40}?) (?:restaurant|shop|store|cafe|bar) in`),
			}},
		}),
	}
}
