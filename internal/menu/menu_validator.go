package menu

import (
	"errors"
	"strings"
)

// ErrEmptyMenu is returned when an edited submission contains no item
// with a non-empty name.
var ErrEmptyMenu = errors.New("menu has no valid items")

// SanitizeCategories normalizes an edited category set before a save:
// names are trimmed, items without a name are dropped, negative prices
// are clamped to zero and categories left without items are removed.
// Returns ErrEmptyMenu when nothing valid remains.
func SanitizeCategories(categories []Category) ([]Category, error) {
	out := make([]Category, 0, len(categories))

	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			name = "Unnamed"
		}

		items := make([]Item, 0, len(cat.Items))
		for _, item := range cat.Items {
			itemName := strings.TrimSpace(item.Name)
			if itemName == "" {
				continue
			}
			it := item
			it.Name = itemName
			it.Description = strings.TrimSpace(it.Description)
			if it.Price < 0 {
				it.Price = 0
			}
			for i := range it.Variants {
				if it.Variants[i].Price < 0 {
					it.Variants[i].Price = 0
				}
			}
			items = append(items, it)
		}

		if len(items) == 0 {
			continue
		}
		out = append(out, Category{Name: name, Items: items})
	}

	if len(out) == 0 {
		return nil, ErrEmptyMenu
	}
	return out, nil
}

// NormalizeProfile trims an edited store profile and collapses an
// all-empty profile to nil, so it is treated as "no profile change"
// rather than a profile-clearing instruction.
func NormalizeProfile(p *StoreProfile) *StoreProfile {
	if p == nil {
		return nil
	}
	trimmed := &StoreProfile{
		Name:        strings.TrimSpace(p.Name),
		Phone:       strings.TrimSpace(p.Phone),
		Address:     strings.TrimSpace(p.Address),
		Description: strings.TrimSpace(p.Description),
	}
	if trimmed.Empty() {
		return nil
	}
	return trimmed
}
