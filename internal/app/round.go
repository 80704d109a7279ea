package app

import (
	"math/rand"
	"sync"
	"time"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
)

// State is the progression machine phase.
type State int

const (
	StateLoaded State = iota
	StatePlaying
	StateAnswered
	StateFinished
)

// Round drives one playthrough: index progression, clocks, answer records,
// joker state and the mode strategy. All per-round state is owned here and
// discarded with the Round; a retry builds a fresh instance, so no callback
// from a previous playthrough can touch a new one.
type Round struct {
	id        string
	settings  domain.GameSettings
	questions []domain.Question
	strategy  strategy

	mu       sync.Mutex
	state    State
	index    int
	answers  map[int]*domain.AnswerState
	progress map[int]map[string]string // partial matching maps per index
	display  map[int][]int             // per-question display permutation, fixed at load
	disabled map[int][]string          // fifty-fifty hidden options per index
	jokers   JokerState
	notified map[int64]bool

	score       int
	groupScores domain.GroupScores
	streak      int

	remaining       int // per-question clock, seconds
	masterRemaining int // timed-challenge master clock, seconds
	timerSeq        int // invalidates pending tick callbacks
	cancelTick      func()
	cancelDelay     func()
	transitioning   bool // controls locked while a delayed transition runs
	warningOn       bool

	matchA, matchB int // kapisma matched student numbers, re-rolled per question
	answeredBy     map[int]domain.Team

	finished    bool
	finalScore  int
	finalGroups *domain.GroupScores

	sched        Scheduler
	sound        Sound
	rnd          *rand.Rand
	recordSolved func(id int64)
	onGameEnd    func(score int, groups *domain.GroupScores)
	subscribers  map[chan Event]struct{}
}

// RoundOption customizes a Round at construction.
type RoundOption func(*Round)

// WithScheduler substitutes the timer backend (tests use a manual queue).
func WithScheduler(s Scheduler) RoundOption { return func(r *Round) { r.sched = s } }

// WithSound installs the audio side-effect port.
func WithSound(s Sound) RoundOption { return func(r *Round) { r.sound = s } }

// WithRand fixes the random source for deterministic shuffles.
func WithRand(rnd *rand.Rand) RoundOption { return func(r *Round) { r.rnd = rnd } }

// WithSolvedRecorder registers the callback fired the first time each
// question is answered, regardless of correctness.
func WithSolvedRecorder(fn func(id int64)) RoundOption {
	return func(r *Round) { r.recordSolved = fn }
}

// WithGameEndHook registers the single game-end notification.
func WithGameEndHook(fn func(score int, groups *domain.GroupScores)) RoundOption {
	return func(r *Round) { r.onGameEnd = fn }
}

// NewRound builds a loaded, not yet started round over an already selected
// question list.
func NewRound(id string, settings domain.GameSettings, questions []domain.Question, opts ...RoundOption) *Round {
	r := &Round{
		id:          id,
		settings:    settings,
		questions:   questions,
		strategy:    strategyFor(settings),
		state:       StateLoaded,
		answers:     make(map[int]*domain.AnswerState),
		progress:    make(map[int]map[string]string),
		display:     make(map[int][]int),
		disabled:    make(map[int][]string),
		jokers:      newJokerState(),
		notified:    make(map[int64]bool),
		answeredBy:  make(map[int]domain.Team),
		sched:       WallScheduler{},
		sound:       NopSound{},
		subscribers: make(map[chan Event]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rnd == nil {
		r.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	// display order is decided once at load so re-renders never reshuffle
	for i, q := range questions {
		r.display[i] = r.rnd.Perm(len(choicesFor(q)))
	}
	return r
}

// choicesFor returns the selectable values of a question in catalogue order:
// quiz options, the fill-in answer plus its distractors, or the matching
// definitions.
func choicesFor(q domain.Question) []string {
	switch q.Type {
	case domain.TypeFillIn:
		out := make([]string, 0, 1+len(q.Distractors))
		out = append(out, q.Answer)
		return append(out, q.Distractors...)
	case domain.TypeMatching:
		out := make([]string, 0, len(q.Pairs))
		for _, p := range q.Pairs {
			out = append(out, p.Definition)
		}
		return out
	default:
		return q.Options
	}
}

// Start moves the round from Loaded to Playing and arms the mode's clock.
func (r *Round) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateLoaded {
		return
	}
	if len(r.questions) == 0 {
		// valid terminal outcome, not an error
		r.finishLocked()
		return
	}
	r.state = StatePlaying
	r.strategy.begin(r)
	if r.settings.GameMode != domain.ModeKapisma {
		r.broadcastLocked(Event{Type: EventQuestion, Index: 0, Remaining: r.activeRemainingLocked(), MasterClock: r.usesMasterClock()})
	}
}

// SubmitAnswer records a quiz or fill-in submission for the current question.
// A repeat submission outside timed-challenge is a no-op returning the first
// evaluation.
func (r *Round) SubmitAnswer(value string) (domain.AnswerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submitLocked(value, false)
}

// SubmitMatch records one term->definition pairing of a matching question.
// Scoring fires only when the map covers every pair; until then the caller
// gets the local right/wrong cue for that single pairing.
func (r *Round) SubmitMatch(term, definition string) (MatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return MatchResult{}, domain.ErrRoundFinished
	}
	if r.transitioning {
		return MatchResult{}, domain.ErrTransitionPending
	}
	idx := r.index
	q := r.questions[idx]
	if q.Type != domain.TypeMatching {
		return MatchResult{}, domain.ErrWrongQuestionType
	}
	if st := r.answers[idx]; st != nil {
		res := r.resultForLocked(idx, st)
		return MatchResult{Completed: true, Result: &res}, nil
	}
	want, ok := pairDefinition(q, term)
	if !ok {
		return MatchResult{}, domain.ErrUnknownTerm
	}

	prog := r.progress[idx]
	if prog == nil {
		prog = make(map[string]string, len(q.Pairs))
		r.progress[idx] = prog
	}
	prog[term] = definition
	cue := want == definition
	if cue {
		r.sound.PlayTone(ToneCorrect)
	} else {
		r.sound.PlayTone(ToneWrong)
	}
	if len(prog) < len(q.Pairs) {
		return MatchResult{Term: term, Definition: definition, Correct: cue}, nil
	}

	st := &domain.AnswerState{
		Matches:      copyMatches(prog),
		Correct:      evaluateMatches(q, prog),
		DisplayOrder: r.display[idx],
	}
	res := r.recordAnswerLocked(idx, st)
	return MatchResult{Term: term, Definition: definition, Correct: cue, Completed: true, Result: &res}, nil
}

// AnswerTeam records a kapisma buzz. The first buzz from either team locks
// both grids; later buzzes report the lock.
func (r *Round) AnswerTeam(team domain.Team, value string) (domain.AnswerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return domain.AnswerResult{}, domain.ErrRoundFinished
	}
	idx := r.index
	if st := r.answers[idx]; st != nil {
		// the first buzz locked both grids
		return r.resultForLocked(idx, st), domain.ErrAlreadyAnswered
	}
	if r.transitioning {
		return domain.AnswerResult{}, domain.ErrTransitionPending
	}
	r.answeredBy[idx] = team
	return r.submitLocked(value, false)
}

// UseJoker invokes one of the single-use assists for the current question.
func (r *Round) UseJoker(kind JokerKind) (JokerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return JokerResult{}, domain.ErrRoundFinished
	}
	if r.transitioning {
		return JokerResult{}, domain.ErrTransitionPending
	}
	if r.settings.GameMode == domain.ModeKapisma {
		return JokerResult{}, domain.ErrJokerNotApplicable
	}
	idx := r.index
	q := r.questions[idx]
	if r.answers[idx] != nil && !r.strategy.allowReanswer() {
		return JokerResult{}, domain.ErrAlreadyAnswered
	}

	switch kind {
	case JokerFiftyFifty:
		if !r.jokers.FiftyFifty {
			return JokerResult{}, domain.ErrJokerUsed
		}
		if q.Type != domain.TypeQuiz {
			return JokerResult{}, domain.ErrJokerNotApplicable
		}
		r.jokers.FiftyFifty = false
		picks := pickFiftyFifty(q, r.rnd)
		r.disabled[idx] = picks
		return JokerResult{Kind: kind, Disabled: picks}, nil

	case JokerAddTime:
		if !r.jokers.AddTime {
			return JokerResult{}, domain.ErrJokerUsed
		}
		r.jokers.AddTime = false
		var rem int
		if r.usesMasterClock() {
			r.masterRemaining += addTimeSeconds
			rem = r.masterRemaining
		} else {
			r.remaining += addTimeSeconds
			rem = r.remaining
		}
		r.updateWarningLocked(rem)
		r.broadcastLocked(Event{Type: EventTick, Index: idx, Remaining: rem, MasterClock: r.usesMasterClock()})
		return JokerResult{Kind: kind, Remaining: rem}, nil

	case JokerSkip:
		if !r.jokers.Skip {
			return JokerResult{}, domain.ErrJokerUsed
		}
		r.jokers.Skip = false
		if r.settings.QuizMode == domain.QuizSurvival {
			// source behavior: a survival skip scores as a miss and ends the run
			res, err := r.submitLocked("", false)
			if err != nil {
				return JokerResult{}, err
			}
			return JokerResult{Kind: kind, Skipped: true, Result: &res}, nil
		}
		if r.index >= len(r.questions)-1 {
			if r.strategy.pastEndFinishes() {
				r.finishLocked()
			}
			return JokerResult{Kind: kind, Skipped: true}, nil
		}
		r.moveToLocked(r.index + 1)
		return JokerResult{Kind: kind, Skipped: true}, nil
	}
	return JokerResult{}, domain.ErrJokerNotApplicable
}

// Advance moves to the next question if the mode allows it; past the last
// question it finishes the round in the modes that end on exhaustion.
func (r *Round) Advance() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return domain.ErrRoundFinished
	}
	if r.transitioning {
		return domain.ErrTransitionPending
	}
	from := r.index
	if err := r.strategy.allowMove(r, from, from+1); err != nil {
		return err
	}
	if from >= len(r.questions)-1 {
		if r.strategy.pastEndFinishes() {
			r.finishLocked()
		}
		return nil
	}
	r.moveToLocked(from + 1)
	return nil
}

// Back moves to the previous question where the mode allows it.
func (r *Round) Back() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return domain.ErrRoundFinished
	}
	if r.transitioning {
		return domain.ErrTransitionPending
	}
	from := r.index
	if from == 0 {
		return domain.ErrAdvanceBlocked
	}
	if err := r.strategy.allowMove(r, from, from-1); err != nil {
		return err
	}
	r.moveToLocked(from - 1)
	return nil
}

// End terminates the round explicitly. Idempotent.
func (r *Round) End() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishLocked()
}

// Subscribe returns a channel of engine events. The caller must invoke the
// returned cancel function to avoid leaks.
func (r *Round) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

// --- submission path ---

// submitLocked is the single evaluation funnel: user clicks, team buzzes,
// survival skips and timer expiries all land here, so no divergent path can
// double-score a question.
func (r *Round) submitLocked(value string, timedOut bool) (domain.AnswerResult, error) {
	if r.finished {
		return domain.AnswerResult{}, domain.ErrRoundFinished
	}
	if r.transitioning && !timedOut {
		return domain.AnswerResult{}, domain.ErrTransitionPending
	}
	idx := r.index
	q := r.questions[idx]
	if q.Type == domain.TypeMatching && value != "" {
		return domain.AnswerResult{}, domain.ErrWrongQuestionType
	}
	if st := r.answers[idx]; st != nil {
		if timedOut || !r.strategy.allowReanswer() {
			// first evaluation wins, repeats are no-ops
			return r.resultForLocked(idx, st), nil
		}
	}

	correct := false
	if !timedOut {
		correct = evaluateAnswer(q, value)
	}
	st := &domain.AnswerState{
		Selected:     value,
		Correct:      correct,
		TimedOut:     timedOut,
		DisplayOrder: r.display[idx],
	}
	if q.Type == domain.TypeMatching {
		st.Selected = ""
		st.Matches = copyMatches(r.progress[idx])
	}
	return r.recordAnswerLocked(idx, st), nil
}

// recordAnswerLocked stores the AnswerState and dispatches the side effects:
// solved bookkeeping, timer stop, tone, mode scoring, event.
func (r *Round) recordAnswerLocked(idx int, st *domain.AnswerState) domain.AnswerResult {
	r.answers[idx] = st
	r.notifySolvedLocked(r.questions[idx].ID)
	if !r.usesMasterClock() {
		r.stopQuestionTimerLocked()
	}
	switch {
	case st.TimedOut:
		r.sound.PlayTone(ToneTimeout)
	case st.Correct:
		r.sound.PlayTone(ToneCorrect)
	default:
		r.sound.PlayTone(ToneWrong)
	}
	awarded := r.strategy.onAnswer(r, idx, st)
	r.state = StateAnswered

	res := domain.AnswerResult{Index: idx, Correct: st.Correct, Awarded: awarded, TimedOut: st.TimedOut}
	r.broadcastLocked(Event{
		Type:        EventAnswer,
		Index:       idx,
		Result:      &res,
		Score:       r.score,
		GroupScores: r.groupScoresPtrLocked(),
	})
	return res
}

func (r *Round) resultForLocked(idx int, st *domain.AnswerState) domain.AnswerResult {
	return domain.AnswerResult{Index: idx, Correct: st.Correct, TimedOut: st.TimedOut}
}

func (r *Round) notifySolvedLocked(id int64) {
	if r.recordSolved == nil || r.notified[id] {
		return
	}
	r.notified[id] = true
	fn := r.recordSolved
	go fn(id) // persistence is external; keep it off the engine lock
}

// --- clocks ---

func (r *Round) usesMasterClock() bool {
	return r.settings.GameMode != domain.ModeKapisma && r.settings.QuizMode == domain.QuizTimed
}

func (r *Round) activeRemainingLocked() int {
	if r.usesMasterClock() {
		return r.masterRemaining
	}
	return r.remaining
}

func (r *Round) startQuestionTimerLocked() {
	r.stopQuestionTimerLocked()
	q := r.questions[r.index]
	r.remaining = questionDuration(q, r.settings.QuizMode, r.streak)
	r.armTickLocked(false)
}

func (r *Round) armMasterTickLocked() {
	r.armTickLocked(true)
}

func (r *Round) armTickLocked(master bool) {
	r.timerSeq++
	seq := r.timerSeq
	r.cancelTick = r.sched.AfterFunc(tickInterval, func() { r.tick(seq, master) })
}

func (r *Round) tick(seq int, master bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished || seq != r.timerSeq {
		return
	}

	var rem int
	if master {
		r.masterRemaining--
		rem = r.masterRemaining
	} else {
		r.remaining--
		rem = r.remaining
	}
	r.broadcastLocked(Event{Type: EventTick, Index: r.index, Remaining: rem, MasterClock: master})
	r.updateWarningLocked(rem)

	if rem <= 0 {
		if master {
			// master clock expiry ends the round no matter what is answered
			r.finishLocked()
			return
		}
		// per-question expiry submits a timed-out non-answer exactly once,
		// through the normal evaluation path
		r.stopQuestionTimerLocked()
		_, _ = r.submitLocked("", true)
		return
	}
	r.cancelTick = r.sched.AfterFunc(tickInterval, func() { r.tick(seq, master) })
}

func (r *Round) stopQuestionTimerLocked() {
	r.timerSeq++
	if r.cancelTick != nil {
		r.cancelTick()
		r.cancelTick = nil
	}
	if r.warningOn {
		r.warningOn = false
		r.sound.StopRepeatingTone()
	}
}

// updateWarningLocked keeps the repeating countdown tone on exactly while the
// active clock reads <=10 and >0.
func (r *Round) updateWarningLocked(rem int) {
	if rem <= warningThreshold && rem > 0 {
		if !r.warningOn {
			r.warningOn = true
			r.sound.StartRepeatingTone()
		}
		return
	}
	if r.warningOn {
		r.warningOn = false
		r.sound.StopRepeatingTone()
	}
}

// --- transitions ---

func (r *Round) moveToLocked(to int) {
	r.index = to
	if r.answers[to] == nil {
		r.state = StatePlaying
		if !r.usesMasterClock() {
			r.startQuestionTimerLocked()
		}
	} else {
		// re-entering an answered question keeps its clock paused
		r.state = StateAnswered
		if !r.usesMasterClock() {
			r.stopQuestionTimerLocked()
		}
	}
	r.broadcastLocked(Event{Type: EventQuestion, Index: to, Remaining: r.activeRemainingLocked(), MasterClock: r.usesMasterClock()})
}

func (r *Round) beginKapismaQuestionLocked() {
	r.matchA = 1 + r.rnd.Intn(max(1, r.settings.TeamASize))
	r.matchB = 1 + r.rnd.Intn(max(1, r.settings.TeamBSize))
	r.transitioning = true
	r.sound.PlayTone(ToneMatchup)
	r.broadcastLocked(Event{Type: EventMatchup, Index: r.index, MatchA: r.matchA, MatchB: r.matchB})
	r.cancelDelay = r.sched.AfterFunc(kapismaSettleDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.finished {
			return
		}
		r.transitioning = false
		r.state = StatePlaying
		r.startQuestionTimerLocked()
		r.broadcastLocked(Event{Type: EventQuestion, Index: r.index, Remaining: r.remaining})
	})
}

// finishLocked is the single, idempotent termination point. The first trigger
// wins; a master-clock expiry racing the last answer cannot end the round
// twice.
func (r *Round) finishLocked() {
	if r.finished {
		return
	}
	r.finished = true
	r.stopQuestionTimerLocked()
	if r.cancelDelay != nil {
		r.cancelDelay()
		r.cancelDelay = nil
	}
	r.transitioning = false

	score, groups := r.strategy.finalScore(r)
	r.finalScore = score
	r.finalGroups = groups
	r.state = StateFinished
	r.sound.PlayTone(ToneGameOver)
	r.broadcastLocked(Event{Type: EventGameEnd, Index: r.index, Score: score, GroupScores: groups})
	if r.onGameEnd != nil {
		fn := r.onGameEnd
		go fn(score, groups)
	}
}

func (r *Round) groupScoresPtrLocked() *domain.GroupScores {
	if r.settings.Competition != domain.CompetitionGroup && r.settings.GameMode != domain.ModeKapisma {
		return nil
	}
	scores := r.groupScores
	return &scores
}

func (r *Round) broadcastLocked(ev Event) {
	for ch := range r.subscribers {
		select {
		case ch <- ev:
		default:
			// drop the oldest update rather than blocking the engine on a slow client
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func copyMatches(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// --- read side ---

func (r *Round) ID() string { return r.id }

func (r *Round) Settings() domain.GameSettings { return r.settings }

// Len is the number of questions drawn for this round.
func (r *Round) Len() int { return len(r.questions) }

func (r *Round) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Round) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// QuestionAt returns the question at an index. The drawn list is immutable
// for the round's lifetime.
func (r *Round) QuestionAt(idx int) (domain.Question, bool) {
	if idx < 0 || idx >= len(r.questions) {
		return domain.Question{}, false
	}
	return r.questions[idx], true
}

// Current returns the active question and its index.
func (r *Round) Current() (int, domain.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.questions) == 0 {
		return 0, domain.Question{}
	}
	return r.index, r.questions[r.index]
}

// AnswerAt returns a copy of the recorded AnswerState for an index.
func (r *Round) AnswerAt(idx int) (domain.AnswerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.answers[idx]
	if !ok {
		return domain.AnswerState{}, false
	}
	return *st, true
}

func (r *Round) Jokers() JokerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jokers
}

func (r *Round) Score() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.score
}

func (r *Round) GroupScores() domain.GroupScores {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.groupScores
}

func (r *Round) Streak() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streak
}

// Remaining reads the active clock (per-question, or the master clock in
// timed-challenge mode).
func (r *Round) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeRemainingLocked()
}

// Matchup returns the kapisma student numbers rolled for the current question.
func (r *Round) Matchup() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matchA, r.matchB
}

func (r *Round) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// FinalScore is valid once the round is finished.
func (r *Round) FinalScore() (int, *domain.GroupScores) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalScore, r.finalGroups
}

// DisplayedChoices returns the selectable values for a question in their
// frozen display order: shuffled options for quiz, answer plus distractors
// for fill-in, shuffled definitions for matching.
func (r *Round) DisplayedChoices(idx int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx < 0 || idx >= len(r.questions) {
		return nil
	}
	choices := choicesFor(r.questions[idx])
	perm := r.display[idx]
	out := make([]string, len(perm))
	for i, p := range perm {
		out[i] = choices[p]
	}
	return out
}

// DisabledChoices returns the options hidden by fifty-fifty for an index.
func (r *Round) DisabledChoices(idx int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.disabled[idx]...)
}

// MatchResult reports one matching pairing, and the full answer outcome once
// the map is complete.
type MatchResult struct {
	Term       string               `json:"term,omitempty"`
	Definition string               `json:"definition,omitempty"`
	Correct    bool                 `json:"correct"`
	Completed  bool                 `json:"completed"`
	Result     *domain.AnswerResult `json:"result,omitempty"`
}
