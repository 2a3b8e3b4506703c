package schema

import (
	"testing"

	"github.com/entitylens/entitylens-api/internal/models"
)

func TestForEntity(t *testing.T) {
	for _, entity := range []models.EntityType{models.EntityCompany, models.EntityProfile, models.EntityListing} {
		t.Run(string(entity), func(t *testing.T) {
			sch, err := ForEntity(entity)
			if err != nil {
				t.Fatalf("ForEntity(%s) error: %v", entity, err)
			}
			if sch.Entity != entity {
				t.Errorf("Entity = %s", sch.Entity)
			}
			if len(sch.Fields) == 0 {
				t.Fatal("schema has no fields")
			}
		})
	}

	if _, err := ForEntity("widget"); err == nil {
		t.Error("expected error for unknown entity")
	}
}

func TestWeightsSumAtMostOne(t *testing.T) {
	for _, sch := range []Schema{Company(), Profile(), Listing()} {
		total := 0.0
		for _, f := range sch.Fields {
			if f.Weight < 0 {
				t.Errorf("%s/%s has negative weight", sch.Entity, f.Name)
			}
			total += f.Weight
		}
		if total > 1.0+1e-9 {
			t.Errorf("%s weights sum to %v, must not exceed 1.0", sch.Entity, total)
		}
	}
}

func TestFieldLookup(t *testing.T) {
	sch := Company()

	f, ok := sch.Field("company_name")
	if !ok || f.Type != TypeName {
		t.Errorf("company_name lookup = %+v, %v", f, ok)
	}
	if _, ok := sch.Field("nonexistent"); ok {
		t.Error("unexpected hit for unknown field")
	}
	if w := sch.Weight("company_name"); w != 0.25 {
		t.Errorf("company_name weight = %v, want 0.25", w)
	}
}

func TestFieldNamesPreserveOrder(t *testing.T) {
	sch := Listing()
	names := sch.FieldNames()
	if len(names) != len(sch.Fields) {
		t.Fatalf("len = %d, want %d", len(names), len(sch.Fields))
	}
	if names[0] != "business_name" {
		t.Errorf("first field = %q, want business_name", names[0])
	}
	for i, f := range sch.Fields {
		if names[i] != f.Name {
			t.Errorf("names[%d] = %q, want %q", i, names[i], f.Name)
		}
	}
}

func TestEveryFieldHasHint(t *testing.T) {
	// Hints feed remote structured extraction; a weighted field without
	// one extracts blind.
	for _, sch := range []Schema{Company(), Profile(), Listing()} {
		for _, f := range sch.Fields {
			if f.Weight > 0 && f.Hint == "" {
				t.Errorf("%s/%s has weight but no hint", sch.Entity, f.Name)
			}
		}
	}
}
