// Package session persists the panel session identity across restarts.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	statex "github.com/pokus-ai/taskpanel/engine/state"
)

type Session struct {
	ID      string    `json:"id"`
	StartAt time.Time `json:"start_at"`
}

// Manager stores the session id and start time under independent keys so
// either can be read without parsing the other.
type Manager struct {
	store statex.DocumentStore
	now   func() time.Time
}

func NewManager(store statex.DocumentStore) (*Manager, error) {
	if store == nil {
		return nil, errors.New("document store is required")
	}
	return &Manager{store: store, now: time.Now}, nil
}

// LoadOrCreate returns the persisted session, minting a new one when either
// key is missing or unreadable.
func (m *Manager) LoadOrCreate(ctx context.Context) (Session, error) {
	idDoc, idErr := m.store.Get(ctx, statex.KeySessionID)
	startDoc, startErr := m.store.Get(ctx, statex.KeySessionStart)
	if idErr == nil && startErr == nil {
		start, err := time.Parse(time.RFC3339, string(startDoc))
		if err == nil && len(idDoc) > 0 {
			return Session{ID: string(idDoc), StartAt: start}, nil
		}
		log.Warn().Err(err).Msg("session: stored start time unreadable, starting fresh")
	} else if !errors.Is(idErr, statex.ErrDocumentNotFound) && idErr != nil {
		return Session{}, idErr
	}
	return m.create(ctx)
}

// Reset discards the stored session and mints a new one.
func (m *Manager) Reset(ctx context.Context) (Session, error) {
	if err := m.store.Delete(ctx, statex.KeySessionID); err != nil {
		log.Warn().Err(err).Msg("session: id delete failed")
	}
	if err := m.store.Delete(ctx, statex.KeySessionStart); err != nil {
		log.Warn().Err(err).Msg("session: start delete failed")
	}
	return m.create(ctx)
}

func (m *Manager) create(ctx context.Context) (Session, error) {
	s := Session{ID: uuid.NewString(), StartAt: m.now().UTC().Truncate(time.Second)}
	if err := m.store.Set(ctx, statex.KeySessionID, []byte(s.ID)); err != nil {
		return Session{}, err
	}
	if err := m.store.Set(ctx, statex.KeySessionStart, []byte(s.StartAt.Format(time.RFC3339))); err != nil {
		return Session{}, err
	}
	return s, nil
}
