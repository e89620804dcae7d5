package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ragserve/internal/workflow"
)

// WorkflowFactory builds the per-session workflow pair. The ingest workflow
// may be shared between sessions; the query workflow must be a fresh instance
// since it owns the session's conversation state.
type WorkflowFactory func() (*workflow.IngestWorkflow, *workflow.QueryWorkflow)

// Manager upgrades HTTP connections into sessions and tracks them for
// shutdown fan-out. Each session runs independently; the registry exists only
// so Close can tear everything down deterministically.
type Manager struct {
	factory  WorkflowFactory
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// NewManager creates a session manager.
func NewManager(factory WorkflowFactory, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		factory: factory,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// ServeHTTP upgrades the connection and runs the session until disconnect.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ingest, query := m.factory()
	sess := newSession(uuid.NewString(), conn, ingest, query, m.logger)

	if !m.register(sess) {
		conn.Close()
		return
	}
	m.logger.Info("session connected", "session_id", sess.ID())

	// The session context is bound to the connection: a disconnect cancels
	// only this session's in-flight workflow.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer m.unregister(sess)
	defer sess.close()

	sess.run(ctx)
}

func (m *Manager) register(sess *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.sessions[sess.ID()] = sess
	return true
}

func (m *Manager) unregister(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sess.ID())
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close rejects new sessions and closes every live connection, which unblocks
// each session's read loop.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
}
