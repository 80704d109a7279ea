package app

import "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"

// kapismaPoints is the flat winner-take-all award per question.
const kapismaPoints = 100

// kapismaStrategy: two-team buzzer play. The first team to answer locks both
// grids; a correct buzz scores for that team, a wrong one hands the points to
// the other team. Progression is automatic through timed matchup and advance
// sequences; manual navigation is disabled.
type kapismaStrategy struct{}

func (kapismaStrategy) begin(r *Round) {
	r.beginKapismaQuestionLocked()
}

func (kapismaStrategy) onAnswer(r *Round, idx int, st *domain.AnswerState) int {
	awarded := 0
	if !st.TimedOut {
		winner := r.answeredBy[idx]
		if !st.Correct {
			winner = winner.Other()
		}
		if winner == domain.TeamA {
			r.groupScores.A += kapismaPoints
		} else {
			r.groupScores.B += kapismaPoints
		}
		awarded = kapismaPoints
	}

	r.transitioning = true
	r.cancelDelay = r.sched.AfterFunc(kapismaAdvanceDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.finished {
			return
		}
		r.transitioning = false
		if r.index >= len(r.questions)-1 {
			r.finishLocked()
			return
		}
		r.index++
		r.state = StatePlaying
		r.beginKapismaQuestionLocked()
	})
	return awarded
}

func (kapismaStrategy) allowMove(*Round, int, int) error {
	return domain.ErrAdvanceBlocked
}

func (kapismaStrategy) pastEndFinishes() bool { return true }
func (kapismaStrategy) allowReanswer() bool   { return false }

func (kapismaStrategy) finalScore(r *Round) (int, *domain.GroupScores) {
	scores := r.groupScores
	return scores.Max(), &scores
}
