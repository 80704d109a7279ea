package app

import "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"

// strategy is the per-mode policy behind the shared progression machine.
// Every method is invoked with the round lock held.
type strategy interface {
	// begin runs the mode's round-start hook (arming the right clock,
	// rolling the first kapisma matchup).
	begin(r *Round)
	// onAnswer applies mode scoring and schedules any delayed transition.
	// Called after the AnswerState for idx has been recorded; returns the
	// points awarded by this submission.
	onAnswer(r *Round, idx int, st *domain.AnswerState) int
	// allowMove vets a manual index move (to is always from±1).
	allowMove(r *Round, from, to int) error
	// pastEndFinishes reports whether advancing beyond the last question
	// terminates the round.
	pastEndFinishes() bool
	// allowReanswer reports whether an existing AnswerState may be replaced.
	allowReanswer() bool
	// finalScore computes the game-end payload.
	finalScore(r *Round) (int, *domain.GroupScores)
}

func strategyFor(settings domain.GameSettings) strategy {
	if settings.GameMode == domain.ModeKapisma {
		return kapismaStrategy{}
	}
	switch settings.QuizMode {
	case domain.QuizTimed:
		return timedStrategy{}
	case domain.QuizSurvival:
		return survivalStrategy{}
	default:
		return classicStrategy{}
	}
}
