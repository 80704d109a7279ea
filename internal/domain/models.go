package domain

// QuestionType discriminates the question variants in the catalogue.
type QuestionType string

const (
	TypeQuiz     QuestionType = "quiz"
	TypeFillIn   QuestionType = "fill-in"
	TypeMatching QuestionType = "matching"
)

// Difficulty bands used by the authoring side and the round filter.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Pair is one term/definition couple of a matching question.
// Terms and definitions are unique within a question.
type Pair struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Question is the catalogue record. One struct carries all three variants;
// Type selects which fields are meaningful. Records are immutable once drawn
// into a round.
type Question struct {
	ID         int64        `json:"id"`
	Type       QuestionType `json:"type"`
	Grade      int          `json:"grade"` // 5-8
	Topic      string       `json:"topic"`
	OutcomeID  string       `json:"outcomeId,omitempty"`
	Difficulty Difficulty   `json:"difficulty"`
	Subject    string       `json:"subject"`
	Image      string       `json:"image,omitempty"` // data URL or asset reference

	// quiz: Answer must equal one of Options verbatim (authoring guarantees it).
	Prompt      string   `json:"prompt,omitempty"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`

	// fill-in: Sentence contains exactly one blank marker.
	Sentence    string   `json:"sentence,omitempty"`
	Distractors []string `json:"distractors,omitempty"`

	// matching
	Instruction string `json:"instruction,omitempty"`
	Pairs       []Pair `json:"pairs,omitempty"`
}

// CompetitionMode separates solo play from two-group play.
type CompetitionMode string

const (
	CompetitionSolo  CompetitionMode = "solo"
	CompetitionGroup CompetitionMode = "group"
)

// GameMode selects the question family (and, for kapisma, the buzzer game).
type GameMode string

const (
	ModeQuiz     GameMode = "quiz"
	ModeFillIn   GameMode = "fill-in"
	ModeMatching GameMode = "matching"
	ModeKapisma  GameMode = "kapisma"
)

// QuizMode selects the scoring policy for the non-kapisma games.
type QuizMode string

const (
	QuizClassic  QuizMode = "classic"
	QuizTimed    QuizMode = "timed-challenge"
	QuizSurvival QuizMode = "survival"
)

// GameSettings is the per-playthrough configuration assembled by the menu
// flow. It is passed by value; screens derive new copies rather than mutating
// a shared bag.
type GameSettings struct {
	Grade       int             `json:"grade"`
	Topic       string          `json:"topic"`
	OutcomeID   string          `json:"outcomeId,omitempty"`
	Difficulty  Difficulty      `json:"difficulty,omitempty"`
	Competition CompetitionMode `json:"competition"`
	GameMode    GameMode        `json:"gameMode"`
	QuizMode    QuizMode        `json:"quizMode,omitempty"`
	PlayerName  string          `json:"playerName,omitempty"`

	// group / kapisma only
	TeamAName     string `json:"teamAName,omitempty"`
	TeamBName     string `json:"teamBName,omitempty"`
	TeamASize     int    `json:"teamASize,omitempty"`
	TeamBSize     int    `json:"teamBSize,omitempty"`
	QuestionCount int    `json:"questionCount,omitempty"`
}

// Team identifies one of the two sides in group and kapisma play.
type Team string

const (
	TeamA Team = "a"
	TeamB Team = "b"
)

// Other returns the opposing team.
func (t Team) Other() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// GroupScores is the running (and final) score pair for group play.
type GroupScores struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Max returns the higher of the two totals.
func (g GroupScores) Max() int {
	if g.A > g.B {
		return g.A
	}
	return g.B
}

// AnswerState freezes the outcome of one question within a round. It is
// created on first submission and never replaced afterwards, except in
// timed-challenge mode where re-answering swaps in a new record.
type AnswerState struct {
	Selected     string            `json:"selected,omitempty"`
	Matches      map[string]string `json:"matches,omitempty"`
	Correct      bool              `json:"correct"`
	TimedOut     bool              `json:"timedOut,omitempty"`
	DisplayOrder []int             `json:"displayOrder"` // frozen option permutation
}

// AnswerResult is what a single submission reports back to the caller.
type AnswerResult struct {
	Index    int  `json:"index"`
	Correct  bool `json:"correct"`
	Awarded  int  `json:"awarded"`
	TimedOut bool `json:"timedOut,omitempty"`
}

// HighScoreEntry is handed to the result recorder exactly once per
// playthrough.
type HighScoreEntry struct {
	Name     string   `json:"name"`
	Score    int      `json:"score"`
	GameMode GameMode `json:"gameMode"`
	QuizMode QuizMode `json:"quizMode,omitempty"`
}
