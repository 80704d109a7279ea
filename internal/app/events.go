package app

import "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"

// EventType labels the engine events pushed to subscribers.
type EventType string

const (
	EventQuestion EventType = "question"
	EventTick     EventType = "tick"
	EventAnswer   EventType = "answer"
	EventMatchup  EventType = "matchup"
	EventGameEnd  EventType = "gameEnd"
)

// Event is the single notification shape for the play surface. Fields beyond
// Type and Index are populated per event kind.
type Event struct {
	Type  EventType `json:"type"`
	Index int       `json:"index"`

	Remaining   int  `json:"remaining,omitempty"`
	MasterClock bool `json:"masterClock,omitempty"`

	Result      *domain.AnswerResult `json:"result,omitempty"`
	Score       int                  `json:"score,omitempty"`
	GroupScores *domain.GroupScores  `json:"groupScores,omitempty"`

	// kapisma matchup roll: the student numbers facing off this question
	MatchA int `json:"matchA,omitempty"`
	MatchB int `json:"matchB,omitempty"`
}
