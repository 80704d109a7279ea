package app

import "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"

// survivalStrategy: no points, only a streak. The first miss (wrong answer,
// timeout or skip) ends the run after a short delay so the result can render.
type survivalStrategy struct{}

func (survivalStrategy) begin(r *Round) {
	r.startQuestionTimerLocked()
}

func (survivalStrategy) onAnswer(r *Round, idx int, st *domain.AnswerState) int {
	if st.Correct {
		r.streak++
		return 0
	}
	// final score is the streak before this miss; streak is only ever
	// incremented on correct answers, so it already holds that value
	r.transitioning = true
	r.cancelDelay = r.sched.AfterFunc(survivalEndDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.finishLocked()
	})
	return 0
}

func (survivalStrategy) allowMove(r *Round, from, to int) error {
	if to < from {
		return domain.ErrAdvanceBlocked
	}
	st := r.answers[from]
	if st == nil || !st.Correct {
		return domain.ErrAdvanceBlocked
	}
	return nil
}

func (survivalStrategy) pastEndFinishes() bool { return true }
func (survivalStrategy) allowReanswer() bool   { return false }

func (survivalStrategy) finalScore(r *Round) (int, *domain.GroupScores) {
	return r.streak, nil
}
