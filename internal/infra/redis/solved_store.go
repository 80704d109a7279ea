package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const solvedKey = "quiz:solved"

// SolvedStore persists answered-question IDs in a Redis set. This is the only
// engine state required to survive sessions; everything else is ephemeral per
// playthrough.
type SolvedStore struct {
	client *redis.Client
}

func NewSolvedStore(client *redis.Client) *SolvedStore {
	return &SolvedStore{client: client}
}

func (s *SolvedStore) SolvedIDs(ctx context.Context) (map[int64]struct{}, error) {
	members, err := s.client.SMembers(ctx, solvedKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load solved ids: %w", err)
	}
	out := make(map[int64]struct{}, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue // skip malformed members rather than failing the round
		}
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *SolvedStore) MarkSolved(ctx context.Context, id int64) error {
	if err := s.client.SAdd(ctx, solvedKey, strconv.FormatInt(id, 10)).Err(); err != nil {
		return fmt.Errorf("mark solved: %w", err)
	}
	return nil
}
