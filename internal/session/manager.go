package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yazelin/jaba-ai/internal/audit"
	"github.com/yazelin/jaba-ai/internal/backend"
	"github.com/yazelin/jaba-ai/internal/imaging"
	"github.com/yazelin/jaba-ai/internal/store"
)

// ManagerConfig carries the shared collaborators sessions are built from.
type ManagerConfig struct {
	Backend        Backend
	Directory      *store.Directory
	Audit          audit.Recorder
	Archive        Archiver
	Compressor     *imaging.Compressor
	Logger         *zap.Logger
	APIPrefix      string
	CanCreateStore bool
}

type managed struct {
	session *Session
	notices *NoticeBuffer
}

// Manager owns the live sessions, one per open upload surface. There is
// no hidden current-session singleton: every operation addresses a
// session by identifier.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*managed
	cfg      ManagerConfig
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*managed),
		cfg:      cfg,
	}
}

// Open creates an empty session. A non-empty group code scopes every
// collaborator endpoint the session will hit.
func (m *Manager) Open(groupCode string) (*Session, *NoticeBuffer) {
	notices := NewNoticeBuffer()

	var sess *Session
	sess = New(Deps{
		Backend:    m.cfg.Backend,
		Directory:  m.cfg.Directory,
		Notifier:   notices,
		Audit:      m.cfg.Audit,
		Archive:    m.cfg.Archive,
		Compressor: m.cfg.Compressor,
		Logger:     m.cfg.Logger,
		OnMenuSaved: func() {
			m.menuSaved(sess)
		},
	}, Options{
		Scope: backend.Scope{
			APIPrefix: m.cfg.APIPrefix,
			GroupCode: groupCode,
		},
		CanCreateStore: m.cfg.CanCreateStore,
	})

	m.mu.Lock()
	m.sessions[sess.ID()] = &managed{session: sess, notices: notices}
	m.mu.Unlock()

	m.cfg.Logger.Info("session opened",
		zap.String("session_id", sess.ID()),
		zap.String("group_code", groupCode),
	)
	return sess, notices
}

// Get returns a live session by identifier.
func (m *Manager) Get(id string) (*Session, *NoticeBuffer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		return nil, nil, false
	}
	return entry.session, entry.notices, true
}

// Close discards a session.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		entry.session.Close()
	}
}

// menuSaved runs once per successful save: the session is discarded and
// the store directory is re-fetched so a new store shows up before the
// surface is reused.
func (m *Manager) menuSaved(sess *Session) {
	m.mu.Lock()
	delete(m.sessions, sess.ID())
	m.mu.Unlock()

	if m.cfg.Directory != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.cfg.Directory.Refresh(ctx); err != nil {
			m.cfg.Logger.Warn("store directory refresh after save failed", zap.Error(err))
		}
	}

	m.cfg.Logger.Info("menu saved", zap.String("session_id", sess.ID()))
}
