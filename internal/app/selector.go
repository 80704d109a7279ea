package app

import (
	"math/rand"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
)

// RoundPlan is the ordered question list drawn for one playthrough.
type RoundPlan struct {
	Questions     []domain.Question
	Requested     int
	Undersupplied bool
}

// Empty reports whether no eligible question was found. This is a valid,
// expected outcome; callers render a "nothing to play" state instead of
// failing.
func (p RoundPlan) Empty() bool { return len(p.Questions) == 0 }

// SelectRound filters the catalogue down to the eligible, not-yet-solved
// subset for the given settings and orders it per mode: classic keeps
// catalogue order, timed-challenge and survival shuffle, kapisma shuffles and
// truncates to the requested count. A populated settings field must match the
// question exactly; an empty one (outcome, difficulty, topic) is the menu's
// "all" choice and matches anything.
func SelectRound(catalogue []domain.Question, settings domain.GameSettings, solved map[int64]struct{}, rnd *rand.Rand) RoundPlan {
	wantType := questionTypeFor(settings.GameMode)

	var eligible []domain.Question
	for _, q := range catalogue {
		if q.Type != wantType {
			continue
		}
		if q.Grade != settings.Grade {
			continue
		}
		if settings.Topic != "" && q.Topic != settings.Topic {
			continue
		}
		if settings.OutcomeID != "" && q.OutcomeID != settings.OutcomeID {
			continue
		}
		if settings.Difficulty != "" && q.Difficulty != settings.Difficulty {
			continue
		}
		if _, done := solved[q.ID]; done {
			continue
		}
		eligible = append(eligible, q)
	}

	plan := RoundPlan{Questions: eligible}
	switch {
	case settings.GameMode == domain.ModeKapisma:
		shuffle(eligible, rnd)
		plan.Requested = settings.QuestionCount
		if plan.Requested > 0 && len(eligible) > plan.Requested {
			plan.Questions = eligible[:plan.Requested]
		} else if plan.Requested > 0 && len(eligible) < plan.Requested {
			// proceed with what is available; the caller surfaces a warning
			plan.Undersupplied = true
		}
	case settings.QuizMode == domain.QuizTimed, settings.QuizMode == domain.QuizSurvival:
		shuffle(eligible, rnd)
	}
	return plan
}

// questionTypeFor maps the selected game to the catalogue type it draws from.
// Kapisma plays plain quiz questions.
func questionTypeFor(mode domain.GameMode) domain.QuestionType {
	switch mode {
	case domain.ModeFillIn:
		return domain.TypeFillIn
	case domain.ModeMatching:
		return domain.TypeMatching
	default:
		return domain.TypeQuiz
	}
}

func shuffle(qs []domain.Question, rnd *rand.Rand) {
	rnd.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}
