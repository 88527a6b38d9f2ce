package playback

import (
	"context"
	"errors"
	"sync"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"
	"LiqLearns/pkg/logger"

	"github.com/google/uuid"
)

type presentationRepo interface {
	PresentationByID(ctx context.Context, id uuid.UUID) (*models.Presentation, error)
}

type Session struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	PresentationID uuid.UUID
	Engine         *Engine
}

// PlaybackService owns the live playback sessions of this process.
type PlaybackService struct {
	log   logger.Log
	repo  presentationRepo
	store ProgressStore
	cfg   Config

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewPlaybackService(log logger.Log, repo presentationRepo, store ProgressStore, cfg Config) *PlaybackService {
	return &PlaybackService{
		log:      log,
		repo:     repo,
		store:    store,
		cfg:      cfg,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Start loads the deck and the learner's progress and registers a Ready
// session. cb overrides the service-wide callbacks for this session.
func (s *PlaybackService) Start(ctx context.Context, userID, presentationID uuid.UUID, cb Callbacks) (*Session, error) {
	p, err := s.repo.PresentationByID(ctx, presentationID)
	if err != nil {
		return nil, err
	}
	cfg := s.cfg
	cfg.Callbacks = cb
	engine, err := NewEngine(s.log, p, userID, s.store, cfg)
	if err != nil {
		return nil, err
	}
	if err := engine.Load(ctx); err != nil {
		return nil, err
	}

	session := &Session{
		ID:             uuid.New(),
		UserID:         userID,
		PresentationID: presentationID,
		Engine:         engine,
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.log.Info("playback started", "session_id", session.ID, "presentation_id", presentationID, "user_id", userID)
	return session, nil
}

func (s *PlaybackService) Session(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, app_errors.ErrSessionNotFound
	}
	return session, nil
}

// End closes the engine, flushing its final progress, and forgets the session.
func (s *PlaybackService) End(id uuid.UUID) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return app_errors.ErrSessionNotFound
	}
	s.log.Info("playback ended", "session_id", id)
	return session.Engine.Close()
}

// Shutdown ends every live session.
func (s *PlaybackService) Shutdown() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[uuid.UUID]*Session)
	s.mu.Unlock()

	var errs []error
	for _, session := range sessions {
		if err := session.Engine.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
