package session

import (
	"context"
	"fmt"
	"time"

	"github.com/yazelin/jaba-ai/internal/backend"
	"github.com/yazelin/jaba-ai/internal/menu"
)

// DiffSelection indexes the entries of the previously-listed diff the
// user checked for application.
type DiffSelection struct {
	Added    []int `json:"added"`
	Modified []int `json:"modified"`
	Removed  []int `json:"removed"`
}

// SaveInput is what the presentation layer reads back out of its edited
// controls at save time. Categories is used in normal mode, Selection in
// diff mode; StoreInfo accompanies either.
type SaveInput struct {
	Categories []menu.Category    `json:"categories,omitempty"`
	Selection  *DiffSelection     `json:"selection,omitempty"`
	StoreInfo  *menu.StoreProfile `json:"store_info,omitempty"`
}

// Save commits the reconciled state. In normal mode the edited category
// set replaces the store's menu, creating the store first on the
// new-store path; in diff mode the checked changes are sent as a partial
// update. Every failure resolves to a user-visible message and leaves
// the session in the result phase; a successful save closes the session
// and fires the completion callback exactly once.
func (s *Session) Save(ctx context.Context, input SaveInput) error {
	s.mu.Lock()
	if err := s.guard(PhaseResult); err != nil {
		s.mu.Unlock()
		return err
	}
	diffMode := s.diffMode
	s.mu.Unlock()

	if diffMode {
		return s.saveDiff(ctx, input)
	}
	return s.saveNormal(ctx, input)
}

func (s *Session) saveNormal(ctx context.Context, input SaveInput) error {
	categories, err := menu.SanitizeCategories(input.Categories)
	if err != nil {
		return s.fail(validationf("no valid menu content to save"))
	}
	profile := menu.NormalizeProfile(input.StoreInfo)

	s.mu.Lock()
	if err := s.guard(PhaseResult); err != nil {
		s.mu.Unlock()
		return err
	}
	target, scope := s.target, s.scope
	storeID := target.StoreID()
	if storeID == "" {
		if target.NewName() == "" {
			err := validationf("select a store or enter a new store name")
			s.mu.Unlock()
			return s.fail(err)
		}
		if !s.canCreateStore {
			err := validationf("store creation is not available here")
			s.mu.Unlock()
			return s.fail(err)
		}
	}
	s.inFlight = true
	s.mu.Unlock()

	started := time.Now()

	if storeID == "" {
		id, err := s.deps.Backend.CreateStore(ctx, scope, target.NewName())
		if err != nil {
			// A failed create aborts the save; the menu write is never attempted.
			return s.saveFailed(ctx, "", started, "store creation failed: "+err.Error(), err)
		}
		storeID = id
		s.notify(fmt.Sprintf("store %q created, saving menu...", target.NewName()), SeverityInfo)
	}

	req := backend.ReplaceMenuRequest{Categories: categories, StoreInfo: profile}
	if err := s.deps.Backend.ReplaceMenu(ctx, scope, storeID, req); err != nil {
		return s.saveFailed(ctx, storeID, started, err.Error(), err)
	}

	return s.saveSucceeded(ctx, storeID, started, "menu saved")
}

func (s *Session) saveDiff(ctx context.Context, input SaveInput) error {
	s.mu.Lock()
	if err := s.guard(PhaseResult); err != nil {
		s.mu.Unlock()
		return err
	}
	storeID, scope, diff := s.target.StoreID(), s.scope, s.diff
	if storeID == "" {
		err := validationf("no store selected, start over")
		s.mu.Unlock()
		return s.fail(err)
	}

	apply := []menu.Item{}
	remove := []string{}
	if sel := input.Selection; sel != nil && diff != nil {
		for _, idx := range sel.Added {
			if idx >= 0 && idx < len(diff.Added) {
				apply = append(apply, diff.Added[idx])
			}
		}
		for _, idx := range sel.Modified {
			if idx >= 0 && idx < len(diff.Modified) {
				apply = append(apply, diff.Modified[idx].New)
			}
		}
		for _, idx := range sel.Removed {
			if idx >= 0 && idx < len(diff.Removed) {
				remove = append(remove, diff.Removed[idx].Name)
			}
		}
	}

	if len(apply) == 0 && len(remove) == 0 {
		err := validationf("select at least one change")
		s.mu.Unlock()
		return s.fail(err)
	}

	s.inFlight = true
	s.mu.Unlock()

	started := time.Now()

	req := backend.ApplyDiffRequest{
		DiffMode:    true,
		ApplyItems:  apply,
		RemoveItems: remove,
		StoreInfo:   menu.NormalizeProfile(input.StoreInfo),
	}
	if err := s.deps.Backend.ApplyMenuDiff(ctx, scope, storeID, req); err != nil {
		return s.saveFailed(ctx, storeID, started, err.Error(), err)
	}

	return s.saveSucceeded(ctx, storeID, started, "menu updated")
}

// saveFailed surfaces the collaborator's reported reason and leaves the
// session in the result phase so the user can correct and retry.
func (s *Session) saveFailed(ctx context.Context, storeID string, started time.Time, msg string, err error) error {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()

	s.notify(msg, SeverityError)
	s.record(ctx, "save", storeID, "failed", msg, time.Since(started))
	return &PersistenceError{Message: msg, Err: err}
}

func (s *Session) saveSucceeded(ctx context.Context, storeID string, started time.Time, msg string) error {
	s.mu.Lock()
	s.inFlight = false
	s.closed = true
	s.mu.Unlock()

	s.notify(msg, SeverityInfo)
	s.record(ctx, "save", storeID, "ok", "", time.Since(started))
	if s.deps.OnMenuSaved != nil {
		s.deps.OnMenuSaved()
	}
	return nil
}
