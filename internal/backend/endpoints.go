package backend

import (
	"fmt"
	"net/url"
)

// Scope selects how collaborator endpoints are addressed. A group-scoped
// deployment (e.g. a messaging-platform account) namespaces store routes
// under an opaque group code; the flat admin deployment does not.
type Scope struct {
	APIPrefix string
	GroupCode string
}

func (s Scope) grouped() bool {
	return s.GroupCode != ""
}

func (s Scope) code() string {
	return url.PathEscape(s.GroupCode)
}

// RecognizeURL returns the recognition endpoint. With no target store the
// observed routing collapses to the same ungrouped path whether or not a
// group code is present.
func (s Scope) RecognizeURL(storeID string) string {
	if storeID == "" {
		return fmt.Sprintf("%s/menu/recognize", s.APIPrefix)
	}
	if s.grouped() {
		return fmt.Sprintf("%s/stores/by-code/%s/%s/menu/recognize", s.APIPrefix, s.code(), storeID)
	}
	return fmt.Sprintf("%s/stores/%s/menu/recognize", s.APIPrefix, storeID)
}

// MenuURL returns the full-replace menu write endpoint for a store.
func (s Scope) MenuURL(storeID string) string {
	if s.grouped() {
		return fmt.Sprintf("%s/stores/by-code/%s/%s/menu", s.APIPrefix, s.code(), storeID)
	}
	return fmt.Sprintf("%s/stores/%s/menu", s.APIPrefix, storeID)
}

// MenuSaveURL returns the partial-update endpoint used in diff mode.
func (s Scope) MenuSaveURL(storeID string) string {
	if s.grouped() {
		return fmt.Sprintf("%s/stores/by-code/%s/%s/menu/save", s.APIPrefix, s.code(), storeID)
	}
	return fmt.Sprintf("%s/stores/%s/menu/save", s.APIPrefix, storeID)
}

// MenuFetchURL returns the endpoint serving a store's current menu.
func (s Scope) MenuFetchURL(storeID string) string {
	if s.grouped() {
		return fmt.Sprintf("%s/stores/by-code/%s/%s/menu", s.APIPrefix, s.code(), storeID)
	}
	return fmt.Sprintf("%s/stores/%s/menu/compare", s.APIPrefix, storeID)
}

// StoresURL returns the store collection endpoint (list and create).
func (s Scope) StoresURL() string {
	if s.grouped() {
		return fmt.Sprintf("%s/stores/by-code/%s", s.APIPrefix, s.code())
	}
	return fmt.Sprintf("%s/stores", s.APIPrefix)
}
