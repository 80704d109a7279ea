package app

import "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"

// timedStrategy: one master clock for the whole round, free navigation,
// re-answering allowed, score settled only at game end.
type timedStrategy struct{}

func (timedStrategy) begin(r *Round) {
	r.masterRemaining = masterClockSeconds
	r.armMasterTickLocked()
}

func (timedStrategy) onAnswer(*Round, int, *domain.AnswerState) int { return 0 }

func (timedStrategy) allowMove(*Round, int, int) error { return nil }

func (timedStrategy) pastEndFinishes() bool { return false }
func (timedStrategy) allowReanswer() bool   { return true }

func (timedStrategy) finalScore(r *Round) (int, *domain.GroupScores) {
	correct := 0
	for _, st := range r.answers {
		if st.Correct {
			correct++
		}
	}
	return correct * 10, nil
}
