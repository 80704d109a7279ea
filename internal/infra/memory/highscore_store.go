package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
)

// HighScoreStore keeps game results in memory, best first.
type HighScoreStore struct {
	mu      sync.RWMutex
	entries []domain.HighScoreEntry
}

func NewHighScoreStore() *HighScoreStore {
	return &HighScoreStore{}
}

func (s *HighScoreStore) Record(_ context.Context, entry domain.HighScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Score > s.entries[j].Score
	})
	return nil
}

func (s *HighScoreStore) Top(_ context.Context, n int) ([]domain.HighScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]domain.HighScoreEntry, n)
	copy(out, s.entries[:n])
	return out, nil
}
