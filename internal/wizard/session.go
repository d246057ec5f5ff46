package wizard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kerem-kaynak/kolektor/internal/entity"
	"github.com/kerem-kaynak/kolektor/internal/metrics"
)

const (
	DefaultSessionTTL = time.Hour

	janitorInterval = time.Minute
)

// Submitter sends a finished collection to the ML engine. The session
// manager never talks HTTP itself.
type Submitter interface {
	CreateCollection(ctx context.Context, collection *entity.DatasetCollection) (*entity.CollectionResource, error)
}

type session struct {
	id          string
	createdAt   time.Time
	lastActive  time.Time
	store       *Store
	unsubscribe func()
}

// Manager owns every open wizard session. Sessions live in memory only and
// disappear on submission, close or idle eviction.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	engine   Submitter
	logger   *zap.Logger
	ttl      time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

func NewManager(engine Submitter, logger *zap.Logger, ttl time.Duration) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	m := &Manager{
		sessions: make(map[string]*session),
		engine:   engine,
		logger:   logger,
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Open starts a new wizard session scoped to a project and returns its id
// with the initial state.
func (m *Manager) Open(projectID, name, description string) (string, State, error) {
	if strings.TrimSpace(projectID) == "" {
		return "", State{}, invalidf("projectId is required")
	}

	id := uuid.NewString()
	store := NewStore(State{
		ProjectID:   projectID,
		Name:        name,
		Description: description,
	})

	sess := &session{
		id:         id,
		createdAt:  time.Now(),
		lastActive: time.Now(),
		store:      store,
	}
	sess.unsubscribe = store.Subscribe(func(s State) {
		m.logger.Debug("wizard state changed",
			zap.String("session_id", id),
			zap.String("step", string(s.Step)),
			zap.Int("tables", len(s.Tables)),
			zap.Int("relationships", len(s.Relationships)),
			zap.Int("aggregations", len(s.Aggregations)),
		)
	})

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	metrics.SessionsOpened.Inc()
	metrics.SessionsOpen.Inc()
	m.logger.Info("wizard session opened", zap.String("session_id", id), zap.String("project_id", projectID))

	return id, store.State(), nil
}

// StateFor returns the current state of a session.
func (m *Manager) StateFor(id string) (State, error) {
	sess, err := m.lookup(id)
	if err != nil {
		return State{}, err
	}
	return sess.store.State(), nil
}

// Dispatch routes an action to a session's store.
func (m *Manager) Dispatch(id string, action Action) (State, error) {
	sess, err := m.lookup(id)
	if err != nil {
		return State{}, err
	}
	state, err := sess.store.Dispatch(action)
	if err != nil {
		m.logger.Warn("wizard action rejected",
			zap.String("session_id", id),
			zap.String("action", action.name()),
			zap.Error(err),
		)
	}
	return state, err
}

// Close discards a session. A session that already holds uploaded tables is
// only discarded when force is set, the console uses that for its
// confirmation prompt.
func (m *Manager) Close(id string, force bool) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	if !force && len(sess.store.State().Tables) > 0 {
		m.mu.Unlock()
		return conflictf("session has uploaded tables, pass force=true to discard them")
	}
	m.remove(id)
	m.mu.Unlock()

	m.logger.Info("wizard session closed",
		zap.String("session_id", id),
		zap.Duration("session_age", time.Since(sess.createdAt)),
	)
	return nil
}

// Submit builds the collection payload and sends it to the engine. Success
// discards the session. Failure keeps the session on the review step with
// the error recorded, nothing is lost.
func (m *Manager) Submit(ctx context.Context, id string) (*entity.CollectionResource, error) {
	sess, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	state, err := sess.store.Dispatch(submitStarted{})
	if err != nil {
		return nil, err
	}

	collection, err := BuildCollection(state)
	if err != nil {
		m.failSubmit(id, sess, err)
		return nil, err
	}

	start := time.Now()
	resource, err := m.engine.CreateCollection(ctx, collection)
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Submissions.WithLabelValues("failure").Inc()
		m.failSubmit(id, sess, err)
		m.logger.Error("collection submission failed", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	metrics.Submissions.WithLabelValues("success").Inc()

	m.mu.Lock()
	if current, ok := m.sessions[id]; ok && current == sess {
		m.remove(id)
	}
	m.mu.Unlock()

	m.logger.Info("collection submitted",
		zap.String("session_id", id),
		zap.String("collection_id", resource.ID),
		zap.String("status", string(resource.Status)),
	)
	return resource, nil
}

// Count reports how many sessions are open.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Stop halts the janitor. Open sessions are left to die with the process.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
}

// failSubmit records a submission failure unless the session was closed
// while the request was in flight. A closed session must see no further
// state changes.
func (m *Manager) failSubmit(id string, sess *session, cause error) {
	m.mu.Lock()
	current, alive := m.sessions[id]
	m.mu.Unlock()
	if !alive || current != sess {
		return
	}
	if _, err := sess.store.Dispatch(submitFailed{reason: cause.Error()}); err != nil {
		m.logger.Warn("failed to record submission error", zap.String("session_id", id), zap.Error(err))
	}
}

func (m *Manager) lookup(id string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastActive = time.Now()
	return sess, nil
}

// remove deletes a session from the map. Callers hold m.mu.
func (m *Manager) remove(id string) {
	sess, ok := m.sessions[id]
	if !ok {
		return
	}
	if sess.unsubscribe != nil {
		sess.unsubscribe()
	}
	delete(m.sessions, id)
	metrics.SessionsOpen.Dec()
}

func (m *Manager) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if n := m.evictIdle(time.Now().Add(-m.ttl)); n > 0 {
				m.logger.Info("evicted idle wizard sessions", zap.Int("count", n))
			}
		}
	}
}

// evictIdle drops sessions untouched since before the cutoff. Sessions with
// a submission in flight are spared.
func (m *Manager) evictIdle(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, sess := range m.sessions {
		if !sess.lastActive.Before(cutoff) {
			continue
		}
		if sess.store.State().Submitting {
			continue
		}
		m.remove(id)
		metrics.SessionsEvicted.Inc()
		evicted++
	}
	return evicted
}
