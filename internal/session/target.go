package session

import "strings"

// Target is the tagged store choice of a session: either an existing
// store identifier or the name of a store to create at save time.
type Target struct {
	storeID string
	newName string
}

// ExistingStore targets a store already in the directory.
func ExistingStore(id string) Target {
	return Target{storeID: id}
}

// NewStore targets a store that does not exist yet.
func NewStore(name string) Target {
	return Target{newName: strings.TrimSpace(name)}
}

func (t Target) StoreID() string { return t.storeID }
func (t Target) NewName() string { return t.newName }

func (t Target) IsNew() bool  { return t.storeID == "" && t.newName != "" }
func (t Target) IsZero() bool { return t.storeID == "" && t.newName == "" }
