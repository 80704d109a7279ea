package memory

import (
	"context"
	"sync"
)

// SolvedStore keeps the answered-question IDs in memory. Durable variants
// live in the redis package; this one backs tests and the standalone server.
type SolvedStore struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

func NewSolvedStore() *SolvedStore {
	return &SolvedStore{ids: make(map[int64]struct{})}
}

func (s *SolvedStore) SolvedIDs(context.Context) (map[int64]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]struct{}, len(s.ids))
	for id := range s.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *SolvedStore) MarkSolved(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
	return nil
}
