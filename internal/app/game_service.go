package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
)

// CatalogueRepository loads the question catalogue (from cache/backing store).
type CatalogueRepository interface {
	Catalogue(ctx context.Context) ([]domain.Question, error)
}

// SolvedStore is the one durable piece of engine state: the set of question
// IDs already answered across sessions.
type SolvedStore interface {
	SolvedIDs(ctx context.Context) (map[int64]struct{}, error)
	MarkSolved(ctx context.Context, id int64) error
}

// HighScoreStore records game-end results for the high-score list.
type HighScoreStore interface {
	Record(ctx context.Context, entry domain.HighScoreEntry) error
	Top(ctx context.Context, n int) ([]domain.HighScoreEntry, error)
}

// RoundStore abstracts how active rounds are held (in-memory, Redis-marked).
type RoundStore interface {
	Put(round *Round)
	Get(id string) (*Round, bool)
	Delete(id string)
}

// GameService contains the play-time use cases: starting rounds from the
// catalogue, routing submissions, and recording results.
type GameService struct {
	rounds    RoundStore
	catalogue CatalogueRepository
	solved    SolvedStore
	scores    HighScoreStore
	sound     Sound
	sched     Scheduler
}

func NewGameService(rounds RoundStore, catalogue CatalogueRepository, solved SolvedStore, scores HighScoreStore) *GameService {
	return &GameService{
		rounds:    rounds,
		catalogue: catalogue,
		solved:    solved,
		scores:    scores,
		sound:     NopSound{},
		sched:     WallScheduler{},
	}
}

// SetSound installs the audio port handed to new rounds.
func (s *GameService) SetSound(snd Sound) { s.sound = snd }

// SetScheduler substitutes the timer backend handed to new rounds.
func (s *GameService) SetScheduler(sched Scheduler) { s.sched = sched }

// StartResult describes the round drawn by StartRound.
type StartResult struct {
	RoundID       string `json:"roundId"`
	QuestionCount int    `json:"questionCount"`
	Requested     int    `json:"requested,omitempty"`
	Empty         bool   `json:"empty,omitempty"`
	Undersupplied bool   `json:"undersupplied,omitempty"`
}

// StartRound filters the catalogue for the settings and loads a playthrough.
// The round is stored still in its loaded state: the caller subscribes for
// events first and then calls Start, so the first question broadcast cannot
// be missed. An empty selection is reported, not errored; kapisma under-supply
// proceeds with the reduced set and a warning flag.
func (s *GameService) StartRound(ctx context.Context, roundID string, settings domain.GameSettings) (StartResult, error) {
	catalogue, err := s.catalogue.Catalogue(ctx)
	if err != nil {
		return StartResult{}, fmt.Errorf("%w: %v", domain.ErrCatalogueUnavailable, err)
	}
	solved, err := s.solved.SolvedIDs(ctx)
	if err != nil {
		// never block round start on the bookkeeping store
		log.Printf("solved ids unavailable, proceeding without: %v", err)
		solved = nil
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	plan := SelectRound(catalogue, settings, solved, rnd)
	result := StartResult{
		RoundID:       roundID,
		QuestionCount: len(plan.Questions),
		Requested:     plan.Requested,
		Undersupplied: plan.Undersupplied,
	}
	if plan.Empty() {
		result.Empty = true
		return result, nil
	}

	round := NewRound(roundID, settings, plan.Questions,
		WithRand(rnd),
		WithSound(s.sound),
		WithScheduler(s.sched),
		WithSolvedRecorder(func(id int64) {
			if err := s.solved.MarkSolved(context.Background(), id); err != nil {
				log.Printf("mark solved %d: %v", id, err)
			}
		}),
		WithGameEndHook(func(score int, groups *domain.GroupScores) {
			s.recordResult(settings, score, groups)
		}),
	)
	s.rounds.Put(round)
	return result, nil
}

// Round exposes an active round to the transport layer.
func (s *GameService) Round(id string) (*Round, error) {
	round, ok := s.rounds.Get(id)
	if !ok {
		return nil, domain.ErrRoundNotFound
	}
	return round, nil
}

// EndRound terminates and drops a round (explicit "end round" or disconnect).
func (s *GameService) EndRound(id string) {
	round, ok := s.rounds.Get(id)
	if !ok {
		return
	}
	round.End()
	s.rounds.Delete(id)
}

// HighScores returns the recorded top entries.
func (s *GameService) HighScores(ctx context.Context, n int) ([]domain.HighScoreEntry, error) {
	return s.scores.Top(ctx, n)
}

// recordResult writes the high-score entry for a finished playthrough. Group
// ties record the combined label; no points tie-break is applied.
func (s *GameService) recordResult(settings domain.GameSettings, score int, groups *domain.GroupScores) {
	entry := domain.HighScoreEntry{
		Name:     entryName(settings, groups),
		Score:    score,
		GameMode: settings.GameMode,
		QuizMode: settings.QuizMode,
	}
	if err := s.scores.Record(context.Background(), entry); err != nil {
		log.Printf("record high score: %v", err)
	}
}

func entryName(settings domain.GameSettings, groups *domain.GroupScores) string {
	if groups == nil {
		if settings.PlayerName != "" {
			return settings.PlayerName
		}
		return "anonim"
	}
	a, b := settings.TeamAName, settings.TeamBName
	if a == "" {
		a = "A"
	}
	if b == "" {
		b = "B"
	}
	switch {
	case groups.A == groups.B:
		return fmt.Sprintf("%s & %s (berabere)", a, b)
	case groups.A > groups.B:
		return a
	default:
		return b
	}
}
