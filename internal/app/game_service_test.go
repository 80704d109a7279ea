package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/app"
	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
)

type fakeCatalogue struct {
	questions []domain.Question
	err       error
}

func (f *fakeCatalogue) Catalogue(context.Context) ([]domain.Question, error) {
	return f.questions, f.err
}

type fakeSolvedStore struct {
	mu     sync.Mutex
	ids    map[int64]struct{}
	marked []int64
	err    error
}

func (f *fakeSolvedStore) SolvedIDs(context.Context) (map[int64]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ids, f.err
}

func (f *fakeSolvedStore) MarkSolved(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeSolvedStore) markedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.marked...)
}

type fakeScoreStore struct {
	mu      sync.Mutex
	entries []domain.HighScoreEntry
}

func (f *fakeScoreStore) Record(_ context.Context, entry domain.HighScoreEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeScoreStore) Top(_ context.Context, n int) ([]domain.HighScoreEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n > len(f.entries) {
		n = len(f.entries)
	}
	return append([]domain.HighScoreEntry(nil), f.entries[:n]...), nil
}

func (f *fakeScoreStore) recorded() []domain.HighScoreEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.HighScoreEntry(nil), f.entries...)
}

type mapRoundStore struct {
	mu     sync.Mutex
	rounds map[string]*app.Round
}

func newMapRoundStore() *mapRoundStore {
	return &mapRoundStore{rounds: make(map[string]*app.Round)}
}

func (s *mapRoundStore) Put(r *app.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[r.ID()] = r
}

func (s *mapRoundStore) Get(id string) (*app.Round, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[id]
	return r, ok
}

func (s *mapRoundStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rounds, id)
}

func newTestService(catalogue *fakeCatalogue, solved *fakeSolvedStore, scores *fakeScoreStore) (*app.GameService, *fakeScheduler) {
	svc := app.NewGameService(newMapRoundStore(), catalogue, solved, scores)
	sched := newFakeScheduler()
	svc.SetScheduler(sched)
	return svc, sched
}

// waitFor polls until check passes; hooks run off the engine goroutine.
func waitFor(t *testing.T, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}

func TestStartRoundDrawsMatchingQuestions(t *testing.T) {
	catalogue := &fakeCatalogue{questions: []domain.Question{
		quizQuestion(1, "a"), quizQuestion(2, "b"), quizQuestion(3, "c"),
	}}
	svc, _ := newTestService(catalogue, &fakeSolvedStore{}, &fakeScoreStore{})

	res, err := svc.StartRound(context.Background(), "r1", classicSettings())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if res.Empty || res.QuestionCount != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	round, err := svc.Round("r1")
	if err != nil {
		t.Fatalf("round lookup: %v", err)
	}
	if round.Len() != 3 {
		t.Fatalf("expected 3 questions, got %d", round.Len())
	}
}

func TestSubscriberAttachedAfterStartRoundSeesFirstQuestion(t *testing.T) {
	catalogue := &fakeCatalogue{questions: []domain.Question{quizQuestion(1, "a")}}
	svc, _ := newTestService(catalogue, &fakeSolvedStore{}, &fakeScoreStore{})

	if _, err := svc.StartRound(context.Background(), "r1", classicSettings()); err != nil {
		t.Fatalf("start: %v", err)
	}
	round, err := svc.Round("r1")
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	// StartRound only loads; playback begins when the caller has subscribed
	ch, cancel := round.Subscribe()
	round.Start()

	round.End()
	questionSeen := false
	for _, ev := range drainEvents(ch, cancel) {
		if ev.Type == app.EventQuestion && ev.Index == 0 {
			questionSeen = true
		}
	}
	if !questionSeen {
		t.Fatalf("subscriber attached between load and start missed the first question")
	}
}

func TestSubscriberSeesFirstKapismaMatchup(t *testing.T) {
	catalogue := &fakeCatalogue{questions: []domain.Question{quizQuestion(1, "a")}}
	svc, _ := newTestService(catalogue, &fakeSolvedStore{}, &fakeScoreStore{})

	if _, err := svc.StartRound(context.Background(), "r1", kapismaSettings(1, 1)); err != nil {
		t.Fatalf("start: %v", err)
	}
	round, err := svc.Round("r1")
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	ch, cancel := round.Subscribe()
	round.Start()

	round.End()
	matchupSeen := false
	for _, ev := range drainEvents(ch, cancel) {
		if ev.Type == app.EventMatchup && ev.Index == 0 {
			matchupSeen = true
		}
	}
	if !matchupSeen {
		t.Fatalf("subscriber attached between load and start missed the matchup roll")
	}
}

func TestStartRoundEmptySelectionIsNotAnError(t *testing.T) {
	catalogue := &fakeCatalogue{questions: []domain.Question{quizQuestion(1, "a")}}
	svc, _ := newTestService(catalogue, &fakeSolvedStore{}, &fakeScoreStore{})

	settings := classicSettings()
	settings.Topic = "olmayan konu"
	res, err := svc.StartRound(context.Background(), "r1", settings)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !res.Empty || res.QuestionCount != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
	if _, err := svc.Round("r1"); err != domain.ErrRoundNotFound {
		t.Fatalf("empty selection must not register a round, got %v", err)
	}
}

func TestStartRoundCatalogueFailure(t *testing.T) {
	catalogue := &fakeCatalogue{err: errors.New("db down")}
	svc, _ := newTestService(catalogue, &fakeSolvedStore{}, &fakeScoreStore{})

	_, err := svc.StartRound(context.Background(), "r1", classicSettings())
	if !errors.Is(err, domain.ErrCatalogueUnavailable) {
		t.Fatalf("expected catalogue unavailable, got %v", err)
	}
}

func TestStartRoundSolvedStoreFailureIsIgnored(t *testing.T) {
	catalogue := &fakeCatalogue{questions: []domain.Question{quizQuestion(1, "a")}}
	solved := &fakeSolvedStore{err: errors.New("redis down")}
	svc, _ := newTestService(catalogue, solved, &fakeScoreStore{})

	res, err := svc.StartRound(context.Background(), "r1", classicSettings())
	if err != nil {
		t.Fatalf("solved store failure must not block starts: %v", err)
	}
	if res.QuestionCount != 1 {
		t.Fatalf("expected the full draw, got %+v", res)
	}
}

func TestStartRoundKapismaUndersupply(t *testing.T) {
	var questions []domain.Question
	for i := int64(1); i <= 7; i++ {
		questions = append(questions, quizQuestion(i, "a"))
	}
	catalogue := &fakeCatalogue{questions: questions}
	svc, _ := newTestService(catalogue, &fakeSolvedStore{}, &fakeScoreStore{})

	settings := kapismaSettings(5, 5)
	settings.QuestionCount = 15
	res, err := svc.StartRound(context.Background(), "r1", settings)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if res.Empty || !res.Undersupplied {
		t.Fatalf("expected undersupply warning, got %+v", res)
	}
	if res.QuestionCount != 7 || res.Requested != 15 {
		t.Fatalf("expected 7 of 15, got %+v", res)
	}
}

func TestAnsweringMarksQuestionSolved(t *testing.T) {
	catalogue := &fakeCatalogue{questions: []domain.Question{quizQuestion(7, "a")}}
	solved := &fakeSolvedStore{}
	svc, _ := newTestService(catalogue, solved, &fakeScoreStore{})

	if _, err := svc.StartRound(context.Background(), "r1", classicSettings()); err != nil {
		t.Fatalf("start: %v", err)
	}
	round, err := svc.Round("r1")
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	round.Start()
	if _, err := round.SubmitAnswer("b"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// a wrong answer still marks the question as seen
	waitFor(t, func() bool {
		ids := solved.markedIDs()
		return len(ids) == 1 && ids[0] == 7
	})
}

func TestGameEndRecordsHighScore(t *testing.T) {
	catalogue := &fakeCatalogue{questions: []domain.Question{quizQuestion(1, "a")}}
	scores := &fakeScoreStore{}
	svc, _ := newTestService(catalogue, &fakeSolvedStore{}, scores)

	if _, err := svc.StartRound(context.Background(), "r1", classicSettings()); err != nil {
		t.Fatalf("start: %v", err)
	}
	round, err := svc.Round("r1")
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	round.Start()
	if _, err := round.SubmitAnswer("a"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := round.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	waitFor(t, func() bool { return len(scores.recorded()) == 1 })
	entry := scores.recorded()[0]
	if entry.Name != "Ayşe" || entry.Score != 30 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.QuizMode != domain.QuizClassic {
		t.Fatalf("entry missing the mode: %+v", entry)
	}
}

func TestGameEndRecordsTeamTie(t *testing.T) {
	catalogue := &fakeCatalogue{questions: []domain.Question{quizQuestion(1, "a")}}
	scores := &fakeScoreStore{}
	svc, sched := newTestService(catalogue, &fakeSolvedStore{}, scores)

	settings := kapismaSettings(1, 1)
	if _, err := svc.StartRound(context.Background(), "r1", settings); err != nil {
		t.Fatalf("start: %v", err)
	}
	round, err := svc.Round("r1")
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	round.Start()
	sched.Advance(time.Second)      // matchup settles
	sched.Advance(41 * time.Second) // nobody buzzes, clock runs out
	sched.Advance(2 * time.Second)  // advance delay, last question ends the round
	if !round.Finished() {
		t.Fatalf("expected finished round")
	}

	waitFor(t, func() bool { return len(scores.recorded()) == 1 })
	if got := scores.recorded()[0].Name; got != "Kartallar & Aslanlar (berabere)" {
		t.Fatalf("expected tie label, got %q", got)
	}
}

func TestEndRoundDropsTheRound(t *testing.T) {
	catalogue := &fakeCatalogue{questions: []domain.Question{quizQuestion(1, "a")}}
	svc, _ := newTestService(catalogue, &fakeSolvedStore{}, &fakeScoreStore{})

	if _, err := svc.StartRound(context.Background(), "r1", classicSettings()); err != nil {
		t.Fatalf("start: %v", err)
	}
	round, err := svc.Round("r1")
	if err != nil {
		t.Fatalf("round: %v", err)
	}
	svc.EndRound("r1")
	if !round.Finished() {
		t.Fatalf("EndRound must terminate the playthrough")
	}
	if _, err := svc.Round("r1"); err != domain.ErrRoundNotFound {
		t.Fatalf("expected round dropped, got %v", err)
	}
	svc.EndRound("r1") // second call is a no-op
}

func TestHighScoresDelegatesToStore(t *testing.T) {
	scores := &fakeScoreStore{}
	for _, e := range []domain.HighScoreEntry{
		{Name: "Ayşe", Score: 40},
		{Name: "Ali", Score: 25},
	} {
		if err := scores.Record(context.Background(), e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	svc, _ := newTestService(&fakeCatalogue{}, &fakeSolvedStore{}, scores)

	top, err := svc.HighScores(context.Background(), 1)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].Name != "Ayşe" {
		t.Fatalf("unexpected top: %+v", top)
	}
}
