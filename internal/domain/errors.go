package domain

import "errors"

var (
	// ErrInvalidTopic is returned when a topic label is not in the supported set.
	ErrInvalidTopic = errors.New("invalid topic")
	// ErrNoQuestionsAvailable indicates the topic is known but its bank is empty.
	ErrNoQuestionsAvailable = errors.New("no questions found for this topic")
	// ErrEmptyQuestionSet is returned when a session is started without questions.
	ErrEmptyQuestionSet = errors.New("cannot start a session with no questions")
	// ErrSessionStarted is returned when Start is called twice.
	ErrSessionStarted = errors.New("session already started")
	// ErrSessionNotActive is returned for operations outside the in-progress state.
	ErrSessionNotActive = errors.New("session is not in progress")
	// ErrOptionOutOfRange indicates a selection outside [0, OptionCount).
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrNoOptionSelected is returned by a manual advance with nothing staged.
	ErrNoOptionSelected = errors.New("no option selected")
	// ErrConfigNotFound indicates no quiz configuration was handed off for a session.
	ErrConfigNotFound = errors.New("quiz configuration not found")
	// ErrResultNotFound indicates no completed result is stored for a session.
	ErrResultNotFound = errors.New("quiz result not found")
)
