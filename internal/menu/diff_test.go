package menu

import "testing"

func menuOf(items ...Item) *RecognizedMenu {
	return &RecognizedMenu{
		Categories: []Category{{Name: "Drinks", Items: items}},
	}
}

func TestDiffMenus_AddedAndModified(t *testing.T) {
	existing := menuOf(Item{Name: "Tea", Price: 30})
	recognized := menuOf(
		Item{Name: "Tea", Price: 35},
		Item{Name: "Coffee", Price: 50},
	)

	diff := DiffMenus(recognized, existing)

	if len(diff.Added) != 1 || diff.Added[0].Name != "Coffee" || diff.Added[0].Price != 50 {
		t.Fatalf("expected added [Coffee/50], got %+v", diff.Added)
	}
	if len(diff.Modified) != 1 {
		t.Fatalf("expected 1 modified, got %+v", diff.Modified)
	}
	if diff.Modified[0].Old.Price != 30 || diff.Modified[0].New.Price != 35 {
		t.Fatalf("expected Tea 30 -> 35, got %+v", diff.Modified[0])
	}
	if len(diff.Removed) != 0 {
		t.Fatalf("expected no removed, got %+v", diff.Removed)
	}
}

func TestDiffMenus_Removed(t *testing.T) {
	existing := menuOf(
		Item{Name: "Tea", Price: 30},
		Item{Name: "Juice", Price: 40},
	)
	recognized := menuOf(Item{Name: "Tea", Price: 30})

	diff := DiffMenus(recognized, existing)

	if len(diff.Removed) != 1 || diff.Removed[0].Name != "Juice" {
		t.Fatalf("expected removed [Juice], got %+v", diff.Removed)
	}
	if len(diff.Unchanged) != 1 || diff.Unchanged[0].Name != "Tea" {
		t.Fatalf("expected unchanged [Tea], got %+v", diff.Unchanged)
	}
	if diff.HasChanges() == false {
		t.Fatal("a removal is a change")
	}
}

func TestDiffMenus_IdenticalMenusHaveNoChanges(t *testing.T) {
	existing := menuOf(Item{Name: "Tea", Price: 30, Description: "hot"})
	recognized := menuOf(Item{Name: "Tea", Price: 30, Description: "hot"})

	diff := DiffMenus(recognized, existing)

	if diff.HasChanges() {
		t.Fatalf("expected no changes, got %+v", diff)
	}
	if len(diff.Unchanged) != 1 {
		t.Fatalf("expected 1 unchanged, got %+v", diff.Unchanged)
	}
}

func TestDiffMenus_VariantSetDifferenceIsModified(t *testing.T) {
	existing := menuOf(Item{Name: "Tea", Price: 30, Variants: []Variant{{Name: "L", Price: 40}}})
	recognized := menuOf(Item{Name: "Tea", Price: 30, Variants: []Variant{{Name: "L", Price: 45}}})

	diff := DiffMenus(recognized, existing)

	if len(diff.Modified) != 1 {
		t.Fatalf("expected variant change to be modified, got %+v", diff)
	}
}

func TestDiffMenus_NameMatchingIsExactAfterTrim(t *testing.T) {
	existing := menuOf(Item{Name: "Tea ", Price: 30})
	recognized := menuOf(Item{Name: " Tea", Price: 30})

	diff := DiffMenus(recognized, existing)

	if len(diff.Unchanged) != 1 {
		t.Fatalf("trimmed names should match, got %+v", diff)
	}

	// Case differences do not match.
	diff = DiffMenus(menuOf(Item{Name: "tea", Price: 30}), existing)
	if len(diff.Added) != 1 || len(diff.Removed) != 1 {
		t.Fatalf("case-different names must not match, got %+v", diff)
	}
}

func TestDiffMenus_DoesNotMutateInputs(t *testing.T) {
	existing := menuOf(Item{Name: "Tea", Price: 30})
	recognized := menuOf(Item{Name: "Tea", Price: 35})

	_ = DiffMenus(recognized, existing)

	if existing.Categories[0].Items[0].Price != 30 {
		t.Fatal("existing menu was mutated")
	}
	if recognized.Categories[0].Items[0].Price != 35 {
		t.Fatal("recognized menu was mutated")
	}
}

func TestDiffMenus_NilExistingMarksEverythingAdded(t *testing.T) {
	recognized := menuOf(Item{Name: "Tea", Price: 30})

	diff := DiffMenus(recognized, nil)

	if len(diff.Added) != 1 || len(diff.Removed) != 0 {
		t.Fatalf("expected everything added, got %+v", diff)
	}
}
