package app

import (
	"testing"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
)

func TestQuestionDurations(t *testing.T) {
	quiz := domain.Question{Type: domain.TypeQuiz, Subject: "sosyal bilgiler", Prompt: "soru"}
	fill := domain.Question{Type: domain.TypeFillIn}
	match := domain.Question{Type: domain.TypeMatching}

	if d := questionDuration(quiz, domain.QuizClassic, 0); d != 40 {
		t.Fatalf("quiz duration: expected 40, got %d", d)
	}
	if d := questionDuration(fill, domain.QuizClassic, 0); d != 35 {
		t.Fatalf("fill-in duration: expected 35, got %d", d)
	}
	if d := questionDuration(match, domain.QuizClassic, 0); d != 40 {
		t.Fatalf("matching duration: expected 40, got %d", d)
	}
}

func TestParagraphQuestionGetsLongDuration(t *testing.T) {
	para := domain.Question{
		Type:    domain.TypeQuiz,
		Subject: subjectParagraph,
		Prompt:  "Uzun bir paragraf metni.\n\nParagrafa göre hangisi doğrudur?",
	}
	if d := questionDuration(para, domain.QuizClassic, 0); d != 70 {
		t.Fatalf("paragraph duration: expected 70, got %d", d)
	}

	// paragraph subject without the passage separator stays a plain quiz
	noBreak := para
	noBreak.Prompt = "Tek satırlık soru"
	if d := questionDuration(noBreak, domain.QuizClassic, 0); d != 40 {
		t.Fatalf("expected 40 without separator, got %d", d)
	}
}

func TestSurvivalDurationShrinksWithStreak(t *testing.T) {
	quiz := domain.Question{Type: domain.TypeQuiz}

	if d := questionDuration(quiz, domain.QuizSurvival, 3); d != 37 {
		t.Fatalf("streak 3: expected 37, got %d", d)
	}
	if d := questionDuration(quiz, domain.QuizSurvival, 50); d != survivalFloorSeconds {
		t.Fatalf("streak 50: expected floor %d, got %d", survivalFloorSeconds, d)
	}
}
