package memory

import (
	"sync"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/app"
)

// RoundStore is an in-memory implementation of app.RoundStore.
type RoundStore struct {
	mu     sync.RWMutex
	rounds map[string]*app.Round
}

func NewRoundStore() *RoundStore {
	return &RoundStore{rounds: make(map[string]*app.Round)}
}

func (s *RoundStore) Put(round *app.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[round.ID()] = round
}

func (s *RoundStore) Get(id string) (*app.Round, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	round, ok := s.rounds[id]
	return round, ok
}

func (s *RoundStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rounds, id)
}
