package session

import (
	"github.com/yazelin/jaba-ai/internal/menu"
)

// StoreOption is one entry of the store selector.
type StoreOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TargetView mirrors the tagged target choice for rendering.
type TargetView struct {
	StoreID      string `json:"store_id,omitempty"`
	NewStoreName string `json:"new_store_name,omitempty"`
}

// ResultView is everything the result step renders: the editable menu in
// normal mode, the selectable diff in diff mode, and the store-profile
// comparison rows in both.
type ResultView struct {
	DiffMode   bool                `json:"diff_mode"`
	Warnings   []string            `json:"warnings,omitempty"`
	Categories []menu.Category     `json:"categories"`
	Diff       *menu.Diff          `json:"diff,omitempty"`
	StoreInfo  []menu.ProfileField `json:"store_info"`
}

// ViewModel is the full data-to-view mapping of the session state. The
// rendering technology consumes it as-is; nothing here is markup.
type ViewModel struct {
	ID             string        `json:"id"`
	Phase          Phase         `json:"phase"`
	GroupCode      string        `json:"group_code,omitempty"`
	CanCreateStore bool          `json:"can_create_store"`
	SelectedImage  string        `json:"selected_image,omitempty"`
	Target         *TargetView   `json:"target,omitempty"`
	Stores         []StoreOption `json:"stores"`
	Result         *ResultView   `json:"result,omitempty"`
}

// View renders the current session state.
func (s *Session) View() *ViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	vm := &ViewModel{
		ID:             s.id,
		Phase:          s.phase,
		GroupCode:      s.scope.GroupCode,
		CanCreateStore: s.canCreateStore,
		SelectedImage:  s.selectedImage,
		Stores:         []StoreOption{},
	}

	if !s.target.IsZero() {
		vm.Target = &TargetView{
			StoreID:      s.target.StoreID(),
			NewStoreName: s.target.NewName(),
		}
	}

	if s.deps.Directory != nil {
		for _, st := range s.deps.Directory.Editable() {
			vm.Stores = append(vm.Stores, StoreOption{ID: st.ID, Name: st.Name})
		}
	}

	if s.phase == PhaseResult && s.recognized != nil {
		result := &ResultView{
			DiffMode:   s.diffMode,
			Warnings:   s.recognized.Warnings,
			Categories: s.recognized.Categories,
			StoreInfo:  menu.CompareProfiles(s.recognizedStoreInfo, s.existingStoreInfo),
		}
		if s.diffMode {
			result.Diff = s.diff
		}
		vm.Result = result
	}

	return vm
}
