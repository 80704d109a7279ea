package app

import (
	"math/rand"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
)

// JokerKind names the three single-use assists.
type JokerKind string

const (
	JokerFiftyFifty JokerKind = "fifty-fifty"
	JokerAddTime    JokerKind = "add-time"
	JokerSkip       JokerKind = "skip"
)

// JokerState tracks availability for one playthrough. Each flag flips to
// false on first use and never resets.
type JokerState struct {
	FiftyFifty bool `json:"fiftyFifty"`
	AddTime    bool `json:"addTime"`
	Skip       bool `json:"skip"`
}

func newJokerState() JokerState {
	return JokerState{FiftyFifty: true, AddTime: true, Skip: true}
}

// JokerResult reports what a joker invocation did.
type JokerResult struct {
	Kind      JokerKind            `json:"kind"`
	Disabled  []string             `json:"disabled,omitempty"`  // fifty-fifty
	Remaining int                  `json:"remaining,omitempty"` // add-time, clock after the bonus
	Skipped   bool                 `json:"skipped,omitempty"`
	Result    *domain.AnswerResult `json:"result,omitempty"` // survival skip scores as a miss
}

// pickFiftyFifty selects 2 of the incorrect options at random. With 4
// sanitized options this leaves the correct option plus one incorrect one
// enabled.
func pickFiftyFifty(q domain.Question, rnd *rand.Rand) []string {
	var incorrect []string
	for _, opt := range q.Options {
		if opt != q.Answer {
			incorrect = append(incorrect, opt)
		}
	}
	rnd.Shuffle(len(incorrect), func(i, j int) {
		incorrect[i], incorrect[j] = incorrect[j], incorrect[i]
	})
	if len(incorrect) > 2 {
		incorrect = incorrect[:2]
	}
	return incorrect
}
