package menu

// Variant is a named price option of a single item (e.g. small / large).
type Variant struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// Item is a single sellable entry of a menu category.
// Identity for diffing is the trimmed name, exact match.
type Item struct {
	Name        string    `json:"name"`
	Price       int       `json:"price"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
}

// Category groups items in display order.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// StoreProfile holds the free-text store fields the recognizer may extract.
// Empty string means the field is unknown.
type StoreProfile struct {
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
}

// Empty reports whether no field carries a value.
func (p *StoreProfile) Empty() bool {
	if p == nil {
		return true
	}
	return p.Name == "" && p.Phone == "" && p.Address == "" && p.Description == ""
}

// RecognizedMenu is the structured result of one recognition call.
type RecognizedMenu struct {
	Categories []Category    `json:"categories"`
	StoreInfo  *StoreProfile `json:"store_info,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// ModifiedItem carries both snapshots of an item whose fields changed.
type ModifiedItem struct {
	Old Item `json:"old"`
	New Item `json:"new"`
}

// Diff classifies recognized items against an existing stored menu.
type Diff struct {
	Added     []Item         `json:"added"`
	Modified  []ModifiedItem `json:"modified"`
	Removed   []Item         `json:"removed"`
	Unchanged []Item         `json:"unchanged"`
}

// HasChanges reports whether the diff contains anything to reconcile.
// A diff with only unchanged entries is treated as no diff.
func (d *Diff) HasChanges() bool {
	if d == nil {
		return false
	}
	return len(d.Added) > 0 || len(d.Modified) > 0 || len(d.Removed) > 0
}
