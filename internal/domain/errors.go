package domain

import "errors"

var (
	// ErrRoundNotFound is returned when no active round matches the given ID.
	ErrRoundNotFound = errors.New("round not found")
	// ErrRoundFinished is returned when input arrives after the game-end event.
	ErrRoundFinished = errors.New("round already finished")
	// ErrAlreadyAnswered is returned for manual re-submission outside timed-challenge.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrAdvanceBlocked is returned when the mode policy forbids the requested navigation.
	ErrAdvanceBlocked = errors.New("advance not allowed")
	// ErrJokerUsed is returned when a single-use joker is invoked twice.
	ErrJokerUsed = errors.New("joker already used")
	// ErrJokerNotApplicable is returned when a joker does not apply to the current question.
	ErrJokerNotApplicable = errors.New("joker not applicable")
	// ErrUnknownTerm is returned when a matching submission names a term not in the question.
	ErrUnknownTerm = errors.New("term not part of question")
	// ErrWrongQuestionType is returned when a submission does not fit the current question variant.
	ErrWrongQuestionType = errors.New("submission does not fit question type")
	// ErrTransitionPending is returned while a delayed transition has the controls locked.
	ErrTransitionPending = errors.New("transition in progress")
	// ErrCatalogueUnavailable indicates the question catalogue could not be loaded.
	ErrCatalogueUnavailable = errors.New("catalogue unavailable")
)
