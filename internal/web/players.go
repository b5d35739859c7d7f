package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typist/internal/session"
)

// DefaultSessionTTL is how long an idle player session lives.
const DefaultSessionTTL = 72 * time.Hour

// Player is the per-cookie activity state. Handlers hold mu while they
// touch any of the activity fields.
type Player struct {
	ID string

	mu        sync.Mutex
	trainer   *session.Trainer
	drills    *session.Run
	sprints   *session.Run
	storyRun  *session.Run
	storyNode string
	boss      *session.Boss
	expiresAt time.Time
}

// Players is the in-memory player session store.
type Players struct {
	mu      sync.RWMutex
	players map[string]*Player
	ttl     time.Duration
	now     func() time.Time
	trainer func() *session.Trainer
}

// NewPlayers returns an empty store. newTrainer builds each player's trainer.
func NewPlayers(ttl time.Duration, now func() time.Time, newTrainer func() *session.Trainer) *Players {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Players{
		players: make(map[string]*Player),
		ttl:     ttl,
		now:     now,
		trainer: newTrainer,
	}
}

// Create registers a new player with a fresh id.
func (s *Players) Create() *Player {
	p := &Player{
		ID:        uuid.NewString(),
		trainer:   s.trainer(),
		expiresAt: s.now().Add(s.ttl),
	}
	s.mu.Lock()
	s.players[p.ID] = p
	s.mu.Unlock()
	return p
}

// Get returns a live player and extends its expiry.
func (s *Players) Get(id string) (*Player, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.After(p.expiresAt) {
		delete(s.players, id)
		return nil, false
	}
	p.expiresAt = now.Add(s.ttl)
	return p, true
}

// Len returns the number of stored players, expired or not.
func (s *Players) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Sweep drops expired players and returns how many were removed.
func (s *Players) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cleaned := 0
	for id, p := range s.players {
		if now.After(p.expiresAt) {
			delete(s.players, id)
			cleaned++
		}
	}
	return cleaned
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Players) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
