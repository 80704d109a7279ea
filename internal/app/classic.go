package app

import "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"

// classicStrategy: points on first correct answer, manual advance once the
// current question is answered, "previous" always allowed.
type classicStrategy struct{}

func (classicStrategy) begin(r *Round) {
	r.startQuestionTimerLocked()
}

func (classicStrategy) onAnswer(r *Round, idx int, st *domain.AnswerState) int {
	if !st.Correct {
		return 0
	}
	awarded := 10 + r.remaining/2
	if r.settings.Competition == domain.CompetitionGroup {
		// groups alternate by parity of answers given so far, group A first
		if (len(r.answers)-1)%2 == 0 {
			r.groupScores.A += awarded
		} else {
			r.groupScores.B += awarded
		}
	} else {
		r.score += awarded
	}
	return awarded
}

func (classicStrategy) allowMove(r *Round, from, to int) error {
	if to > from && r.answers[from] == nil {
		return domain.ErrAdvanceBlocked
	}
	return nil
}

func (classicStrategy) pastEndFinishes() bool { return true }
func (classicStrategy) allowReanswer() bool   { return false }

func (classicStrategy) finalScore(r *Round) (int, *domain.GroupScores) {
	if r.settings.Competition == domain.CompetitionGroup {
		scores := r.groupScores
		return scores.Max(), &scores
	}
	return r.score, nil
}
