package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yazelin/jaba-ai/internal/audit"
	"github.com/yazelin/jaba-ai/internal/backend"
	"github.com/yazelin/jaba-ai/internal/imaging"
	"github.com/yazelin/jaba-ai/internal/menu"
	"github.com/yazelin/jaba-ai/internal/store"
)

// Phase of the upload-to-save cycle.
type Phase string

const (
	PhaseUpload      Phase = "upload"
	PhaseRecognizing Phase = "recognizing"
	PhaseResult      Phase = "result"
)

// Backend is the subset of the recognition collaborator the session uses.
type Backend interface {
	Recognize(ctx context.Context, scope backend.Scope, storeID string, image []byte) (*backend.RecognizeResponse, error)
	CreateStore(ctx context.Context, scope backend.Scope, name string) (string, error)
	ReplaceMenu(ctx context.Context, scope backend.Scope, storeID string, req backend.ReplaceMenuRequest) error
	ApplyMenuDiff(ctx context.Context, scope backend.Scope, storeID string, req backend.ApplyDiffRequest) error
	FetchMenu(ctx context.Context, scope backend.Scope, storeID string) (*menu.RecognizedMenu, error)
}

// Archiver stores a copy of the uploaded image for later reference.
type Archiver interface {
	Archive(ctx context.Context, key string, contentType string, data []byte) (string, error)
}

// Deps are the collaborators a session talks to. Backend, Directory and
// Notifier are required; the rest are optional.
type Deps struct {
	Backend     Backend
	Directory   *store.Directory
	Notifier    Notifier
	Audit       audit.Recorder
	Archive     Archiver
	Compressor  *imaging.Compressor
	Logger      *zap.Logger
	OnMenuSaved func()
}

// Options fix the scope a session operates in.
type Options struct {
	Scope          backend.Scope
	CanCreateStore bool
}

// Session holds all transient state for one upload-to-save cycle and
// owns the phase transitions. At most one recognize or save may be in
// flight; overlapping calls are rejected. A session is discarded after
// a successful save.
type Session struct {
	id    string
	scope backend.Scope

	mu       sync.Mutex
	inFlight bool
	closed   bool

	phase         Phase
	diffMode      bool
	selectedImage string
	target        Target

	recognized          *menu.RecognizedMenu
	existingMenu        *menu.RecognizedMenu
	diff                *menu.Diff
	recognizedStoreInfo *menu.StoreProfile
	existingStoreInfo   *menu.StoreProfile

	canCreateStore bool

	deps Deps
	log  *zap.Logger
}

func New(deps Deps, opts Options) *Session {
	if deps.Compressor == nil {
		deps.Compressor = imaging.NewCompressor()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Session{
		id:             uuid.New().String(),
		scope:          opts.Scope,
		phase:          PhaseUpload,
		canCreateStore: opts.CanCreateStore,
		deps:           deps,
		log:            deps.Logger,
	}
}

func (s *Session) ID() string {
	return s.id
}

// GroupCode returns the opaque group code the session is scoped to, if any.
func (s *Session) GroupCode() string {
	return s.scope.GroupCode
}

// Closed reports whether the session has ended (saved or closed) and must
// not be reused.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// AttachImage compresses a user-selected image and stores the embeddable
// result. Oversized sources are rejected before any decode attempt.
func (s *Session) AttachImage(ctx context.Context, src []byte) error {
	s.mu.Lock()
	if err := s.guard(PhaseUpload); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if len(src) > imaging.MaxUploadBytes {
		return s.fail(validationf("image must be 10MB or smaller"))
	}

	embedded, err := s.deps.Compressor.Compress(src)
	if err != nil {
		s.notify("image processing failed", SeverityError)
		return fmt.Errorf("compress image: %w", err)
	}

	s.mu.Lock()
	s.selectedImage = embedded
	s.mu.Unlock()

	s.archiveImage(ctx, embedded)
	return nil
}

// ClearImage removes the selected image so another can be chosen.
func (s *Session) ClearImage() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(PhaseUpload); err != nil {
		return err
	}
	s.selectedImage = ""
	return nil
}

// SelectTarget picks the store the menu belongs to: an existing store or
// a trimmed non-empty new-store name. Selecting an existing store
// snapshots its current profile from the cached directory for later
// comparison; selecting a new store clears that snapshot. Any previously
// computed recognition result is stale and discarded.
func (s *Session) SelectTarget(t Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(""); err != nil {
		return err
	}

	if t.IsZero() {
		return s.failLocked(validationf("select a store or enter a new store name"))
	}
	if t.IsNew() && !s.canCreateStore {
		return s.failLocked(validationf("store creation is not available here"))
	}

	if id := t.StoreID(); id != "" {
		s.existingStoreInfo = nil
		if s.deps.Directory != nil {
			if st, ok := s.deps.Directory.Find(id); ok {
				s.existingStoreInfo = st.Profile()
			}
		}
	} else {
		s.existingStoreInfo = nil
	}

	if s.target != t && s.phase == PhaseResult {
		// The computed result belongs to the previous target. Discard it
		// and return to the upload phase so a new recognition can start.
		s.clearResultLocked()
		s.phase = PhaseUpload
	}
	s.target = t
	return nil
}

// Recognize dispatches the selected image to the recognition backend and
// enters the result phase. Backend-reported errors and transport failures
// return the session to the upload phase with the image preserved so the
// user may retry without re-uploading.
func (s *Session) Recognize(ctx context.Context) error {
	s.mu.Lock()
	if err := s.guard(PhaseUpload); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.selectedImage == "" {
		err := validationf("select a menu image first")
		s.mu.Unlock()
		return s.fail(err)
	}
	if s.target.IsZero() {
		err := validationf("select a store or enter a new store name")
		s.mu.Unlock()
		return s.fail(err)
	}

	s.inFlight = true
	s.phase = PhaseRecognizing
	scope, storeID, embedded := s.scope, s.target.StoreID(), s.selectedImage
	s.mu.Unlock()

	started := time.Now()

	_, raw, err := imaging.Decode(embedded)
	if err == nil {
		var resp *backend.RecognizeResponse
		resp, err = s.deps.Backend.Recognize(ctx, scope, storeID, raw)
		if err == nil && resp.Error != "" {
			err = fmt.Errorf("%s", resp.Error)
		}
		if err == nil {
			s.applyRecognition(resp)
			s.record(ctx, "recognize", storeID, "ok", "", time.Since(started))
			return nil
		}
	}

	s.mu.Lock()
	s.inFlight = false
	s.phase = PhaseUpload
	s.mu.Unlock()

	msg := "recognition failed: " + err.Error()
	s.notify(msg, SeverityError)
	s.record(ctx, "recognize", storeID, "failed", err.Error(), time.Since(started))
	return &RecognitionError{Message: msg, Err: err}
}

func (s *Session) applyRecognition(resp *backend.RecognizeResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if resp.Enveloped() {
		// The backend already compared against the stored menu.
		s.recognized = resp.RecognizedMenu
		s.recognizedStoreInfo = resp.RecognizedMenu.StoreInfo
		s.existingMenu = resp.ExistingMenu
		s.diff = resp.Diff
		if s.diff == nil && s.existingMenu != nil {
			s.diff = menu.DiffMenus(s.recognized, s.existingMenu)
		}
		s.diffMode = s.existingMenu != nil && s.diff.HasChanges()
	} else {
		// New-store case: no comparison possible.
		m := resp.BareMenu()
		s.recognized = m
		s.recognizedStoreInfo = m.StoreInfo
		s.existingMenu = nil
		s.diff = nil
		s.diffMode = false
	}
	s.phase = PhaseResult
}

// OpenExisting enters the result phase directly on a store's current
// menu, without recognition. Profile fields are prefilled from the
// directory entry; no change markers are produced.
func (s *Session) OpenExisting(ctx context.Context, storeID string) error {
	s.mu.Lock()
	if err := s.guard(PhaseUpload); err != nil {
		s.mu.Unlock()
		return err
	}
	s.inFlight = true
	scope := s.scope
	s.mu.Unlock()

	m, err := s.deps.Backend.FetchMenu(ctx, scope, storeID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		s.notifyLocked("failed to load menu", SeverityError)
		return &PersistenceError{Message: "failed to load menu", Err: err}
	}

	s.target = ExistingStore(storeID)
	s.recognized = m
	s.existingMenu = nil
	s.diff = nil
	s.diffMode = false
	s.existingStoreInfo = nil
	s.recognizedStoreInfo = nil
	if s.deps.Directory != nil {
		if st, ok := s.deps.Directory.Find(storeID); ok {
			s.recognizedStoreInfo = st.Profile()
		}
	}
	s.phase = PhaseResult
	return nil
}

// BackToUpload returns to the upload phase for a re-upload. The selected
// image and any computed result are discarded; the target store is kept.
func (s *Session) BackToUpload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(""); err != nil {
		return err
	}
	s.phase = PhaseUpload
	s.selectedImage = ""
	s.clearResultLocked()
	return nil
}

// Close discards the session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// guard rejects operations on closed or busy sessions, and optionally
// enforces the phase. Callers hold the lock.
func (s *Session) guard(phase Phase) error {
	if s.closed {
		return validationf("session is closed")
	}
	if s.inFlight {
		return validationf("another operation is in progress")
	}
	if phase != "" && s.phase != phase {
		return validationf("operation not allowed in the %s phase", s.phase)
	}
	return nil
}

func (s *Session) clearResultLocked() {
	s.recognized = nil
	s.existingMenu = nil
	s.diff = nil
	s.diffMode = false
	s.recognizedStoreInfo = nil
}

// fail surfaces a validation problem through the notifier and returns it.
func (s *Session) fail(err *ValidationError) error {
	s.notify(err.Message, SeverityError)
	return err
}

func (s *Session) failLocked(err *ValidationError) error {
	s.notifyLocked(err.Message, SeverityError)
	return err
}

func (s *Session) notify(message string, severity Severity) {
	if s.deps.Notifier != nil {
		s.deps.Notifier.Notify(message, severity)
	}
}

// notifyLocked exists only to document call sites that hold the session
// lock; the notifier itself is never called with session state.
func (s *Session) notifyLocked(message string, severity Severity) {
	s.notify(message, severity)
}

func (s *Session) record(ctx context.Context, action, storeID, outcome, detail string, d time.Duration) {
	if s.deps.Audit == nil {
		return
	}
	err := s.deps.Audit.Record(ctx, audit.Event{
		SessionID: s.id,
		StoreID:   storeID,
		Action:    action,
		Outcome:   outcome,
		Detail:    detail,
		Duration:  d,
	})
	if err != nil {
		s.log.Warn("audit record failed", zap.Error(err))
	}
}

func (s *Session) archiveImage(ctx context.Context, embedded string) {
	if s.deps.Archive == nil {
		return
	}
	contentType, data, err := imaging.Decode(embedded)
	if err != nil {
		return
	}
	key := fmt.Sprintf("menu-images/%s/%s.jpg", s.id, uuid.New().String())
	if _, err := s.deps.Archive.Archive(ctx, key, contentType, data); err != nil {
		s.log.Warn("image archive failed", zap.Error(err))
	}
}
