package schema

import "github.com/entitylens/entitylens-api/internal/models"

// Well-known field names shared by components that need to reference specific
// fields (composite headquarters splitting, contact merge).
const (
	FieldHeadquarters = "headquarters"
	FieldCity         = "city"
	FieldRegion       = "region"
	FieldCountry      = "country"
)

// Company is the schema for company pages.
func Company() Schema {
	return New(models.EntityCompany, []Field{
		{Name: "company_name", Type: TypeName, Weight: 0.25,
			Hint: "The official company name"},
		{Name: "description", Type: TypeText, Weight: 0.20,
			Hint: "Short description of what the company does"},
		{Name: "industry", Type: TypeCategory, Weight: 0.15,
			Hint: "Primary industry or sector, e.g. Software"},
		{Name: "company_size", Type: TypeRange, Weight: 0.10,
			Hint: "Employee count or range, e.g. 120-450"},
		{Name: FieldHeadquarters, Type: TypeLocation, Weight: 0.10,
			Hint: "Headquarters location as city, region, country"},
		{Name: "founded", Type: TypeYear, Weight: 0.08,
			Hint: "Founding year, 4 digits"},
		{Name: "website", Type: TypeURL, Weight: 0.07,
			Hint: "The company's own website URL"},
		{Name: "specialties", Type: TypeList, Weight: 0.05,
			Hint: "Comma-separated list of specialties or focus areas"},
		{Name: FieldCity, Type: TypeLocation,
			Hint: "Headquarters city"},
		{Name: FieldRegion, Type: TypeLocation,
			Hint: "Headquarters state or region"},
		{Name: FieldCountry, Type: TypeCountry,
			Hint: "Headquarters country"},
	})
}

// Profile is the schema for social profile pages.
func Profile() Schema {
	return New(models.EntityProfile, []Field{
		{Name: "full_name", Type: TypeName, Weight: 0.20,
			Hint: "The profile's display name"},
		{Name: "username", Type: TypeName, Weight: 0.15,
			Hint: "The profile handle without @"},
		{Name: "bio", Type: TypeText, Weight: 0.15,
			Hint: "The profile biography text"},
		{Name: "followers", Type: TypeCount, Weight: 0.15,
			Hint: "Follower count, may use K/M suffixes"},
		{Name: "category", Type: TypeCategory, Weight: 0.10,
			Hint: "Profile category, e.g. Musician, Restaurant"},
		{Name: "website", Type: TypeURL, Weight: 0.10,
			Hint: "External link in the profile"},
		{Name: "location", Type: TypeLocation, Weight: 0.10,
			Hint: "Location shown on the profile"},
		{Name: "posts_count", Type: TypeCount, Weight: 0.05,
			Hint: "Number of posts"},
		{Name: "following", Type: TypeCount,
			Hint: "Following count"},
	})
}

// Listing is the schema for business-listing pages.
func Listing() Schema {
	return New(models.EntityListing, []Field{
		{Name: "business_name", Type: TypeName, Weight: 0.25,
			Hint: "The business name as listed"},
		{Name: "category", Type: TypeCategory, Weight: 0.15,
			Hint: "Business category, e.g. Italian restaurant"},
		{Name: "description", Type: TypeText, Weight: 0.15,
			Hint: "Description of the business"},
		{Name: "address", Type: TypeLocation, Weight: 0.15,
			Hint: "Full street address"},
		{Name: "website", Type: TypeURL, Weight: 0.10,
			Hint: "The business website URL"},
		{Name: "phone", Type: TypePhone, Weight: 0.05,
			Hint: "Primary listed phone number"},
		{Name: "hours", Type: TypeList, Weight: 0.05,
			Hint: "Opening hours"},
		{Name: "rating", Type: TypeDecimal, Weight: 0.05,
			Hint: "Average review rating"},
		{Name: "reviews_count", Type: TypeCount, Weight: 0.05,
			Hint: "Number of reviews, may use K suffix"},
	})
}
