package backend

import "github.com/yazelin/jaba-ai/internal/menu"

// RecognizeResponse is the recognition collaborator's reply. For a known
// store the backend wraps the result in a recognized_menu envelope with a
// precomputed comparison against the stored menu; for the new-store case
// the menu fields appear at the top level.
type RecognizeResponse struct {
	Error string `json:"error,omitempty"`

	RecognizedMenu *menu.RecognizedMenu `json:"recognized_menu,omitempty"`
	ExistingMenu   *menu.RecognizedMenu `json:"existing_menu,omitempty"`
	Diff           *menu.Diff           `json:"diff,omitempty"`

	// Bare-menu shape (no comparison possible).
	Categories []menu.Category    `json:"categories,omitempty"`
	StoreInfo  *menu.StoreProfile `json:"store_info,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// Enveloped reports whether the reply carries the recognized_menu envelope.
func (r *RecognizeResponse) Enveloped() bool {
	return r.RecognizedMenu != nil
}

// BareMenu rebuilds a RecognizedMenu from a top-level reply.
func (r *RecognizeResponse) BareMenu() *menu.RecognizedMenu {
	return &menu.RecognizedMenu{
		Categories: r.Categories,
		StoreInfo:  r.StoreInfo,
		Warnings:   r.Warnings,
	}
}

// ReplaceMenuRequest is the full menu write body.
type ReplaceMenuRequest struct {
	Categories []menu.Category    `json:"categories"`
	StoreInfo  *menu.StoreProfile `json:"store_info,omitempty"`
}

// ApplyDiffRequest is the partial-update body sent in diff mode.
type ApplyDiffRequest struct {
	DiffMode    bool               `json:"diff_mode"`
	ApplyItems  []menu.Item        `json:"apply_items"`
	RemoveItems []string           `json:"remove_items"`
	StoreInfo   *menu.StoreProfile `json:"store_info,omitempty"`
}

// CreateStoreRequest creates a store ahead of the first menu write.
// Scope is set to "global" only outside group context.
type CreateStoreRequest struct {
	Name  string `json:"name"`
	Scope string `json:"scope,omitempty"`
}

// Store is one entry of the collaborator's store directory.
type Store struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
}

// Profile extracts the comparable profile fields of a directory entry.
func (s Store) Profile() *menu.StoreProfile {
	return &menu.StoreProfile{
		Name:        s.Name,
		Phone:       s.Phone,
		Address:     s.Address,
		Description: s.Description,
	}
}
