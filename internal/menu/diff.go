package menu

import "strings"

// DiffMenus classifies every item of the recognized menu against the
// existing stored menu. Matching is by trimmed name, exact string.
// Neither input is mutated.
func DiffMenus(recognized, existing *RecognizedMenu) *Diff {
	diff := &Diff{
		Added:     []Item{},
		Modified:  []ModifiedItem{},
		Removed:   []Item{},
		Unchanged: []Item{},
	}

	type oldEntry struct {
		item    Item
		matched bool
	}

	oldByName := make(map[string]*oldEntry)
	oldOrder := []string{}
	if existing != nil {
		for _, cat := range existing.Categories {
			for _, item := range cat.Items {
				name := strings.TrimSpace(item.Name)
				if name == "" {
					continue
				}
				if _, ok := oldByName[name]; ok {
					continue
				}
				it := item
				if it.Category == "" {
					it.Category = cat.Name
				}
				oldByName[name] = &oldEntry{item: it}
				oldOrder = append(oldOrder, name)
			}
		}
	}

	if recognized != nil {
		for _, cat := range recognized.Categories {
			for _, item := range cat.Items {
				name := strings.TrimSpace(item.Name)
				if name == "" {
					continue
				}
				it := item
				if it.Category == "" {
					it.Category = cat.Name
				}

				old, ok := oldByName[name]
				if !ok {
					diff.Added = append(diff.Added, it)
					continue
				}
				old.matched = true
				if sameItem(old.item, it) {
					diff.Unchanged = append(diff.Unchanged, it)
				} else {
					diff.Modified = append(diff.Modified, ModifiedItem{Old: old.item, New: it})
				}
			}
		}
	}

	for _, name := range oldOrder {
		if entry := oldByName[name]; !entry.matched {
			diff.Removed = append(diff.Removed, entry.item)
		}
	}

	return diff
}

// sameItem compares the fields that matter for reconciliation:
// price, description and the variant set. Category is display-only.
func sameItem(a, b Item) bool {
	if a.Price != b.Price || a.Description != b.Description {
		return false
	}
	if len(a.Variants) != len(b.Variants) {
		return false
	}
	for i := range a.Variants {
		if a.Variants[i] != b.Variants[i] {
			return false
		}
	}
	return true
}
