package menu

import (
	"errors"
	"testing"
)

func TestSanitizeCategories_DropsEmptyItemsAndCategories(t *testing.T) {
	in := []Category{
		{Name: " Drinks ", Items: []Item{
			{Name: "  Tea  ", Price: 30},
			{Name: "   "},
		}},
		{Name: "Empty", Items: []Item{{Name: ""}}},
	}

	out, err := SanitizeCategories(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 category, got %d", len(out))
	}
	if out[0].Name != "Drinks" || len(out[0].Items) != 1 || out[0].Items[0].Name != "Tea" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestSanitizeCategories_AllEmptyFails(t *testing.T) {
	_, err := SanitizeCategories([]Category{
		{Name: "Drinks", Items: []Item{{Name: "  "}}},
	})
	if !errors.Is(err, ErrEmptyMenu) {
		t.Fatalf("expected ErrEmptyMenu, got %v", err)
	}

	_, err = SanitizeCategories(nil)
	if !errors.Is(err, ErrEmptyMenu) {
		t.Fatalf("expected ErrEmptyMenu for nil input, got %v", err)
	}
}

func TestSanitizeCategories_ClampsNegativePrices(t *testing.T) {
	out, err := SanitizeCategories([]Category{
		{Name: "Drinks", Items: []Item{{Name: "Tea", Price: -5}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Items[0].Price != 0 {
		t.Fatalf("expected price clamped to 0, got %d", out[0].Items[0].Price)
	}
}

func TestNormalizeProfile_AllEmptyBecomesNil(t *testing.T) {
	if p := NormalizeProfile(&StoreProfile{Name: "  ", Phone: ""}); p != nil {
		t.Fatalf("expected nil for all-empty profile, got %+v", p)
	}
	if p := NormalizeProfile(nil); p != nil {
		t.Fatal("expected nil for nil profile")
	}
	p := NormalizeProfile(&StoreProfile{Name: " Cafe A "})
	if p == nil || p.Name != "Cafe A" {
		t.Fatalf("expected trimmed profile, got %+v", p)
	}
}
