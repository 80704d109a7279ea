package app

import "github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"

// evaluateAnswer checks a quiz or fill-in submission. Exact string equality,
// no case or whitespace normalization: a malformed record whose answer
// matches no option simply never evaluates true.
func evaluateAnswer(q domain.Question, value string) bool {
	return value != "" && value == q.Answer
}

// pairDefinition returns the correct definition for a term, or "" if the term
// is not part of the question.
func pairDefinition(q domain.Question, term string) (string, bool) {
	for _, p := range q.Pairs {
		if p.Term == term {
			return p.Definition, true
		}
	}
	return "", false
}

// evaluateMatches checks a completed term->definition map. Only called once
// the map covers every pair; partial progress never reaches scoring.
func evaluateMatches(q domain.Question, matches map[string]string) bool {
	if len(matches) != len(q.Pairs) {
		return false
	}
	for _, p := range q.Pairs {
		if matches[p.Term] != p.Definition {
			return false
		}
	}
	return true
}
