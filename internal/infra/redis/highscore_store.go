package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
)

const highScoreKey = "quiz:highscores"

// HighScoreStore keeps game results in a Redis sorted set, points as score.
type HighScoreStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewHighScoreStore(client *redis.Client) *HighScoreStore {
	return &HighScoreStore{client: client, now: time.Now}
}

// member carries the entry fields plus a timestamp so identical results do
// not collapse into one sorted-set member.
type member struct {
	Name     string          `json:"name"`
	GameMode domain.GameMode `json:"gameMode"`
	QuizMode domain.QuizMode `json:"quizMode,omitempty"`
	At       int64           `json:"at"`
}

func (s *HighScoreStore) Record(ctx context.Context, entry domain.HighScoreEntry) error {
	raw, err := json.Marshal(member{
		Name:     entry.Name,
		GameMode: entry.GameMode,
		QuizMode: entry.QuizMode,
		At:       s.now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("encode high score: %w", err)
	}
	if err := s.client.ZAdd(ctx, highScoreKey, redis.Z{
		Score:  float64(entry.Score),
		Member: string(raw),
	}).Err(); err != nil {
		return fmt.Errorf("record high score: %w", err)
	}
	return nil
}

func (s *HighScoreStore) Top(ctx context.Context, n int) ([]domain.HighScoreEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := s.client.ZRevRangeWithScores(ctx, highScoreKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("load high scores: %w", err)
	}
	out := make([]domain.HighScoreEntry, 0, len(zs))
	for _, z := range zs {
		raw, ok := z.Member.(string)
		if !ok {
			continue
		}
		var m member
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			continue
		}
		out = append(out, domain.HighScoreEntry{
			Name:     m.Name,
			Score:    int(z.Score),
			GameMode: m.GameMode,
			QuizMode: m.QuizMode,
		})
	}
	return out, nil
}
