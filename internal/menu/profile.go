package menu

// ProfileField is the comparison result for one store-profile field.
type ProfileField struct {
	Field   string `json:"field"`
	Old     string `json:"old,omitempty"`
	New     string `json:"new,omitempty"`
	Display string `json:"display,omitempty"`
	Changed bool   `json:"changed"`
}

// CompareProfiles compares a recognized store profile against the existing
// one field by field. A field is marked changed only when an existing
// profile is present and its value differs from the recognized value; with
// no existing profile (new-store path) nothing is marked changed.
// Display precedence: recognized value if non-empty, else existing value.
func CompareProfiles(recognized, existing *StoreProfile) []ProfileField {
	var newInfo, oldInfo StoreProfile
	if recognized != nil {
		newInfo = *recognized
	}
	if existing != nil {
		oldInfo = *existing
	}
	hasExisting := existing != nil

	fields := []struct {
		name     string
		old, new string
	}{
		{"name", oldInfo.Name, newInfo.Name},
		{"phone", oldInfo.Phone, newInfo.Phone},
		{"address", oldInfo.Address, newInfo.Address},
		{"description", oldInfo.Description, newInfo.Description},
	}

	out := make([]ProfileField, 0, len(fields))
	for _, f := range fields {
		display := f.new
		if display == "" {
			display = f.old
		}
		out = append(out, ProfileField{
			Field:   f.name,
			Old:     f.old,
			New:     f.new,
			Display: display,
			Changed: hasExisting && f.old != f.new,
		})
	}
	return out
}
