package app

import (
	"strings"
	"time"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
)

const (
	durationQuiz      = 40
	durationFillIn    = 35
	durationMatching  = 40
	durationParagraph = 70

	// survival gets harder as the streak grows; never below this floor
	survivalFloorSeconds = 10

	masterClockSeconds = 120
	addTimeSeconds     = 15
	warningThreshold   = 10

	subjectParagraph = "paragraf"
)

const (
	tickInterval        = time.Second
	survivalEndDelay    = time.Second
	kapismaSettleDelay  = 900 * time.Millisecond
	kapismaAdvanceDelay = 1200 * time.Millisecond
)

// questionDuration computes the per-question countdown in seconds.
// Paragraph-flavoured quiz questions (paragraph subject plus a
// double-newline-separated passage and prompt) get the long reading duration.
// Survival mode subtracts the current streak, floored at the minimum.
func questionDuration(q domain.Question, mode domain.QuizMode, streak int) int {
	var base int
	switch q.Type {
	case domain.TypeFillIn:
		base = durationFillIn
	case domain.TypeMatching:
		base = durationMatching
	default:
		base = durationQuiz
		if q.Subject == subjectParagraph && strings.Contains(q.Prompt, "\n\n") {
			base = durationParagraph
		}
	}
	if mode == domain.QuizSurvival {
		base -= streak
		if base < survivalFloorSeconds {
			base = survivalFloorSeconds
		}
	}
	return base
}
